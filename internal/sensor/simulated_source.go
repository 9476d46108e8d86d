package sensor

import (
	"sync"
	"time"
)

// SimulatedSource drives the two break-beam lines in software, for use
// when no DIO hardware is attached (config key sensor.simulation_mode).
type SimulatedSource struct {
	mu sync.RWMutex
	a  bool
	b  bool
}

// NewSimulatedSource returns a simulated source with both lines low.
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{}
}

func (s *SimulatedSource) ReadA() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.a, nil
}

func (s *SimulatedSource) ReadB() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.b, nil
}

func (s *SimulatedSource) Close() error { return nil }

// SetA and SetB let a test harness or the HTTP debug endpoint toggle the
// lines directly.
func (s *SimulatedSource) SetA(v bool) {
	s.mu.Lock()
	s.a = v
	s.mu.Unlock()
}

func (s *SimulatedSource) SetB(v bool) {
	s.mu.Lock()
	s.b = v
	s.mu.Unlock()
}

// TriggerLeftToRightPass replays the original simulator's exact timed
// sequence for a clean left-to-right pass: B up, A up, B down, A down,
// each separated by step.
func (s *SimulatedSource) TriggerLeftToRightPass(step time.Duration) {
	s.SetB(false)
	s.SetA(false)
	time.Sleep(step)
	s.SetB(true)
	time.Sleep(step)
	s.SetA(true)
	time.Sleep(step)
	s.SetB(false)
	time.Sleep(step)
	s.SetA(false)
}
