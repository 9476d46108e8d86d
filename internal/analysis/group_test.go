package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	fail map[string]bool
}

func (s stubDetector) Predict(image []byte) ([]Detection, error) {
	if len(image) > 0 && image[0] == 0xFF {
		return nil, errors.New("bad image")
	}
	return []Detection{{ClassID: ClassLiveKnot, Confidence: 0.9}}, nil
}

func TestGroupIsolatesFailuresButStillCompletes(t *testing.T) {
	orig := loadImage
	defer func() { loadImage = orig }()
	loadImage = func(path string) ([]byte, error) {
		if path == "bad.bmp" {
			return []byte{0xFF}, nil
		}
		return []byte{0x00}, nil
	}

	g := NewGroup("A", []string{"good1.bmp", "bad.bmp", "good2.bmp"}, 2, stubDetector{}, 0.5)
	results := g.Process(nil)

	status, processed, successful, failed, total, _, _ := g.Status()
	assert.Equal(t, GroupCompleted, status)
	assert.Equal(t, 3, processed)
	assert.Equal(t, 2, successful)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, total)
	require.Len(t, results, 2)
}

func TestGroupPoolSizeConstrainedToTwoOrThree(t *testing.T) {
	g := NewGroup("B", nil, 1, stubDetector{}, 0.5)
	assert.Equal(t, 2, g.PoolSize)
	g2 := NewGroup("C", nil, 10, stubDetector{}, 0.5)
	assert.Equal(t, 3, g2.PoolSize)
}

func TestFilterByThreshold(t *testing.T) {
	dets := []Detection{{Confidence: 0.9}, {Confidence: 0.1}}
	kept, above := FilterByThreshold(dets, 0.5)
	require.Len(t, kept, 1)
	assert.True(t, above)
}
