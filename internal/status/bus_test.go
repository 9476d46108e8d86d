package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()
	assert.Equal(t, 2, bus.SubscriberCount())

	bus.Publish(NewEvent(EventInspectionStarted, map[string]string{"id": "x"}))

	ea := <-a
	eb := <-b
	require.Equal(t, EventInspectionStarted, ea.Type)
	require.Equal(t, ea.ID, eb.ID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestEventSSEFormat(t *testing.T) {
	e := NewEvent(EventSensorState, map[string]string{"state": "idle"})
	raw, err := e.SSEFormat()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "event: sensor.state")
	assert.Contains(t, string(raw), "\n\n")
}
