package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := New(2)
	assert.False(t, q.Push(Event{ID: "1"}))
	assert.False(t, q.Push(Event{ID: "2"}))
	assert.True(t, q.Push(Event{ID: "3"}))

	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "2", e.ID)

	e, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, "3", e.ID)

	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestQueueMinimumCapacity(t *testing.T) {
	q := New(0)
	assert.Equal(t, 1, q.Capacity())
}
