package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBoundedCapacity(t *testing.T) {
	b := NewBuffer(3, 0)
	base := time.Now()
	for i := 0; i < 10; i++ {
		b.Push([]byte{byte(i)}, base.Add(time.Duration(i)*time.Millisecond))
	}
	require.Equal(t, 3, b.Len())
	snap := b.Snapshot()
	assert.Equal(t, []byte{7}, snap[0].Data)
	assert.Equal(t, []byte{9}, snap[2].Data)
}

func TestBufferTimestampMonotonic(t *testing.T) {
	b := NewBuffer(16, 0)
	base := time.Now()
	for i := 0; i < 5; i++ {
		b.Push([]byte{byte(i)}, base.Add(time.Duration(i)*time.Millisecond))
	}
	snap := b.Snapshot()
	for i := 1; i < len(snap); i++ {
		assert.True(t, snap[i].Timestamp.After(snap[i-1].Timestamp) || snap[i].Timestamp.Equal(snap[i-1].Timestamp))
		assert.Greater(t, snap[i].Seq, snap[i-1].Seq)
	}
}

func TestBufferWindow(t *testing.T) {
	b := NewBuffer(16, 0)
	base := time.Now()
	for i := 0; i < 10; i++ {
		b.Push([]byte{byte(i)}, base.Add(time.Duration(i)*time.Second))
	}
	win := b.Window(base.Add(2*time.Second), base.Add(5*time.Second))
	require.Len(t, win, 4)
	assert.Equal(t, []byte{2}, win[0].Data)
	assert.Equal(t, []byte{5}, win[3].Data)
}

func TestBufferMaxAgePrune(t *testing.T) {
	b := NewBuffer(100, 5*time.Second)
	base := time.Now()
	b.Push([]byte{0}, base)
	b.Push([]byte{1}, base.Add(10*time.Second))
	assert.Equal(t, 1, b.Len())
}

func TestBufferClear(t *testing.T) {
	b := NewBuffer(4, 0)
	b.Push([]byte{0}, time.Now())
	b.Clear()
	assert.Equal(t, 0, b.Len())
}
