package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPassSavesOnce(t *testing.T) {
	m := NewStateMachine(time.Second)
	now := time.Now()

	o, err := m.Apply(EdgeBRise, now)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, o)
	assert.Equal(t, StateBActive, m.Current())

	o, err = m.Apply(EdgeARise, now.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, o)
	assert.Equal(t, StateBThenA, m.Current())

	o, err = m.Apply(EdgeBFall, now.Add(900*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, o)
	assert.Equal(t, StateAOnlyFromB, m.Current())

	o, err = m.Apply(EdgeAFall, now.Add(1200*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSave, o)
	assert.Equal(t, StateIdle, m.Current())
}

func TestReturnFromLeftDiscards(t *testing.T) {
	m := NewStateMachine(time.Second)
	now := time.Now()
	_, err := m.Apply(EdgeBRise, now)
	require.NoError(t, err)
	o, err := m.Apply(EdgeBFall, now.Add(300*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiscard, o)
	assert.Equal(t, StateIdle, m.Current())
}

func TestBacktrackFromBThenAReturnsToBActiveWithoutSaving(t *testing.T) {
	m := NewStateMachine(time.Second)
	now := time.Now()
	_, err := m.Apply(EdgeBRise, now)
	require.NoError(t, err)
	_, err = m.Apply(EdgeARise, now.Add(200*time.Millisecond))
	require.NoError(t, err)

	// A drops before B clears the left beam: a recoverable backtrack,
	// not a save.
	o, err := m.Apply(EdgeAFall, now.Add(400*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, o)
	assert.Equal(t, StateBActive, m.Current())

	// The pass can still complete cleanly from here.
	_, err = m.Apply(EdgeARise, now.Add(600*time.Millisecond))
	require.NoError(t, err)
	_, err = m.Apply(EdgeBFall, now.Add(800*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, StateAOnlyFromB, m.Current())

	o, err = m.Apply(EdgeAFall, now.Add(1000*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSave, o)
}

func TestUnexpectedAFromIdleIsInvariantViolation(t *testing.T) {
	m := NewStateMachine(time.Second)
	now := time.Now()

	o, err := m.Apply(EdgeARise, now)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiscard, o)
	assert.Equal(t, StateAOnlyError, m.Current())

	o, err = m.Apply(EdgeAFall, now.Add(100*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, o)
	assert.Equal(t, StateIdle, m.Current())
}

func TestTimeoutResetsToIdle(t *testing.T) {
	m := NewStateMachine(200 * time.Millisecond)
	now := time.Now()
	_, err := m.Apply(EdgeBRise, now)
	require.NoError(t, err)
	assert.False(t, m.CheckTimeout(now.Add(100*time.Millisecond)))
	assert.True(t, m.CheckTimeout(now.Add(300*time.Millisecond)))
	assert.Equal(t, StateIdle, m.Current())
}
