package extract

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"

	"github.com/oin/wood-inspector/internal/frame"
)

// TimingReport records the actual timestamps an extracted sequence was
// saved under, for later audit of resampling accuracy.
type TimingReport struct {
	Dir        string    `json:"dir"`
	FrameCount int       `json:"frame_count"`
	Timestamps []string  `json:"timestamps"`
	SavedAt    time.Time `json:"saved_at"`
}

// WriteSequence encodes each frame as a lossless BMP under a
// timestamp-named subdirectory of root, named No_0000.bmp, No_0001.bmp,
// ... so the presentation picker's No_(\d+) image-number extraction can
// recover ordering later, and writes both a machine-readable
// timing.json and a human-readable timing.txt report alongside them. It
// returns the directory written to.
func WriteSequence(root string, frames []frame.Frame, decode func([]byte) (image.Image, error), now time.Time) (string, error) {
	dirName := now.Format("20060102_150405")
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("extract: mkdir %s: %w", dir, err)
	}

	timestamps := make([]string, 0, len(frames))
	for i, f := range frames {
		img, err := decode(f.Data)
		if err != nil {
			return "", fmt.Errorf("extract: decode frame %d: %w", i, err)
		}
		name := filepath.Join(dir, fmt.Sprintf("No_%04d.bmp", i))
		out, err := os.Create(name)
		if err != nil {
			return "", fmt.Errorf("extract: create %s: %w", name, err)
		}
		err = bmp.Encode(out, img)
		closeErr := out.Close()
		if err != nil {
			return "", fmt.Errorf("extract: encode %s: %w", name, err)
		}
		if closeErr != nil {
			return "", fmt.Errorf("extract: close %s: %w", name, closeErr)
		}
		timestamps = append(timestamps, f.Timestamp.Format(time.RFC3339Nano))
	}

	report := TimingReport{
		Dir:        dir,
		FrameCount: len(frames),
		Timestamps: timestamps,
		SavedAt:    now,
	}
	reportFile, err := os.Create(filepath.Join(dir, "timing.json"))
	if err != nil {
		return "", fmt.Errorf("extract: create timing report: %w", err)
	}
	defer reportFile.Close()
	enc := json.NewEncoder(reportFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("extract: write timing report: %w", err)
	}

	txtFile, err := os.Create(filepath.Join(dir, "timing.txt"))
	if err != nil {
		return "", fmt.Errorf("extract: create timing summary: %w", err)
	}
	defer txtFile.Close()
	fmt.Fprintf(txtFile, "saved_at: %s\nframe_count: %d\n", now.Format(time.RFC3339), len(frames))
	for i, ts := range timestamps {
		fmt.Fprintf(txtFile, "No_%04d.bmp: %s\n", i, ts)
	}

	return dir, nil
}
