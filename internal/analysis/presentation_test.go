package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathFor(n int) string {
	return fmt.Sprintf("/var/lib/wood-inspector/inspection/2026/No_%04d.bmp", n)
}

func TestPickPresentationCardinalityMatchesFiveGroupsWhenOverfilled(t *testing.T) {
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = pathFor(i)
	}
	p := PickPresentation(paths, nil)
	require.Len(t, p, 5)
}

func TestPickPresentationOneGroupPerImageWhenFiveOrFewer(t *testing.T) {
	paths := []string{pathFor(0), pathFor(1), pathFor(2)}
	p := PickPresentation(paths, nil)
	require.Len(t, p, 3)
}

func TestPickPresentationPrefersKnotOverHoleOverDiscoloration(t *testing.T) {
	paths := []string{pathFor(0), pathFor(1), pathFor(2)}
	dets := map[int][]Detection{
		0: {{ClassID: ClassDiscoloration, W: 900, H: 10}},
		1: {{ClassID: ClassHole, W: 10, H: 10}},
		2: {{ClassID: ClassLiveKnot, W: 10, H: 10}},
	}
	p := PickPresentation(paths, dets)
	require.Len(t, p, 3)
	assert.Greater(t, p[2].Score, p[1].Score)
	assert.Greater(t, p[1].Score, p[0].Score)
}

func TestPickPresentationFallsBackToMiddleWhenGroupHasNoDefects(t *testing.T) {
	paths := make([]string, 15)
	for i := range paths {
		paths[i] = pathFor(i)
	}
	p := PickPresentation(paths, nil)
	require.Len(t, p, 5)
	for _, pres := range p {
		assert.Equal(t, 0.0, pres.Score)
	}
}

func TestPickPresentationDropsUnparsablePaths(t *testing.T) {
	paths := []string{"not_numbered.bmp", pathFor(0)}
	p := PickPresentation(paths, nil)
	require.Len(t, p, 1)
}

func TestPickPresentationNormalizesDataImagesPrefix(t *testing.T) {
	paths := []string{`C:\data\images\inspection\2026\No_0000.bmp`}
	p := PickPresentation(paths, nil)
	require.Len(t, p, 1)
	assert.Equal(t, "inspection/2026/No_0000.bmp", p[0].ImagePath)
}
