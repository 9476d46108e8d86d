package extract

import (
	"testing"
	"time"

	"github.com/oin/wood-inspector/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkFrames(n int, step time.Duration, base time.Time) []frame.Frame {
	out := make([]frame.Frame, n)
	for i := 0; i < n; i++ {
		out[i] = frame.Frame{Seq: uint64(i), Timestamp: base.Add(time.Duration(i) * step), Data: []byte{byte(i)}}
	}
	return out
}

func TestExtractResamplesDownToTargetCadence(t *testing.T) {
	base := time.Now()
	frames := mkFrames(100, 10*time.Millisecond, base) // 1s of frames at 100fps
	out := Extract(frames, base, base.Add(time.Second), 10, nil)
	// window 1s, interval 0.1s -> ideal count floor(1/0.1)+1 = 11
	assert.InDelta(t, 11, len(out), 1)
}

func TestExtractUnderfillDuplicatesFramesToFillIdealGrid(t *testing.T) {
	base := time.Now()
	// 5 sparse frames across a 2s/10fps window: ideal_count =
	// floor(2*10)+1 = 21, filled by duplicating the closest of the 5
	// available frames into each of the 21 slots (seed scenario 3).
	frames := mkFrames(5, 500*time.Millisecond, base)
	out := Extract(frames, base, base.Add(2*time.Second), 10, nil)
	require.Len(t, out, 21)
}

func TestExtractEmergencyFallback(t *testing.T) {
	base := time.Now()
	frames := mkFrames(5, time.Second, base)
	out := Extract(frames, base.Add(100*time.Hour), base.Add(101*time.Hour), 10, nil)
	require.Len(t, out, 5)
}

func TestExtractEmptyBufferReturnsNil(t *testing.T) {
	out := Extract(nil, time.Now(), time.Now(), 10, nil)
	assert.Nil(t, out)
}
