// Package extract implements the time-window filter and fixed-cadence
// resampling algorithm that turns a raw frame buffer snapshot into the
// exact-interval sequence an inspection is analyzed from.
package extract

import (
	"log"
	"time"

	"github.com/oin/wood-inspector/internal/frame"
)

// Extract filters frames to [start, end], then resamples them onto an
// exact 1/targetFPS grid spanning the requested window: ideal_count =
// floor((end-start) * targetFPS) + 1 target slots, each filled by
// picking the filtered frame whose timestamp is closest to that slot's
// target time (start + i*interval). The grid is always filled to
// ideal_count, even when the buffer held far fewer frames than that:
// the same frame is picked for more than one slot in that case, so
// duplicates are expected output, not a bug. If the time-filtered
// result is empty but the buffer itself has frames, the full,
// unfiltered buffer is returned instead (the "emergency" fallback from
// the original implementation), bypassing resampling since the window
// did not actually align with anything in the buffer.
func Extract(all []frame.Frame, start, end time.Time, targetFPS float64, logger *log.Logger) []frame.Frame {
	if logger == nil {
		logger = log.New(log.Writer(), "[extract] ", log.LstdFlags)
	}

	filtered := filterWindow(all, start, end)
	if len(filtered) == 0 {
		if len(all) == 0 {
			return nil
		}
		logger.Printf("emergency fallback: no frames in window, using full buffer (%d frames)", len(all))
		out := make([]frame.Frame, len(all))
		copy(out, all)
		return out
	}

	sortByTimestamp(filtered)

	if targetFPS <= 0 {
		return filtered
	}
	targetInterval := 1.0 / targetFPS
	duration := end.Sub(start).Seconds()
	idealCount := int(duration/targetInterval) + 1
	if idealCount <= 0 {
		return filtered
	}

	logger.Printf("resampling %d frames to %d at %.3fs intervals", len(filtered), idealCount, targetInterval)
	out := make([]frame.Frame, 0, idealCount)
	for i := 0; i < idealCount; i++ {
		targetTime := start.Add(time.Duration(float64(i) * targetInterval * float64(time.Second)))
		out = append(out, closest(filtered, targetTime))
	}
	return out
}

func filterWindow(frames []frame.Frame, start, end time.Time) []frame.Frame {
	var out []frame.Frame
	for _, f := range frames {
		if !f.Timestamp.Before(start) && !f.Timestamp.After(end) {
			out = append(out, f)
		}
	}
	return out
}

func sortByTimestamp(frames []frame.Frame) {
	for i := 1; i < len(frames); i++ {
		for j := i; j > 0 && frames[j].Timestamp.Before(frames[j-1].Timestamp); j-- {
			frames[j], frames[j-1] = frames[j-1], frames[j]
		}
	}
}

func closest(frames []frame.Frame, target time.Time) frame.Frame {
	best := frames[0]
	bestDiff := absDuration(best.Timestamp.Sub(target))
	for _, f := range frames[1:] {
		d := absDuration(f.Timestamp.Sub(target))
		if d < bestDiff {
			best, bestDiff = f, d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
