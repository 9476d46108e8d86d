package sensor

import (
	"context"
	"log"
	"time"
)

// PassEvent is emitted on a resolved pass decision, carrying the window
// the capture pipeline should extract frames from.
type PassEvent struct {
	Outcome Outcome
	Start   time.Time
	End     time.Time
}

// Poller samples the two DIO lines at a fixed rate, turns raw level
// changes into edges, and drives a StateMachine, emitting PassEvents on
// channel Events.
type Poller struct {
	src      Source
	sm       *StateMachine
	interval time.Duration
	log      *log.Logger

	Events chan PassEvent

	prevA, prevB bool
	passStart    time.Time
}

// NewPoller samples at interval (spec default 20ms / 50Hz) until ctx is
// canceled.
func NewPoller(src Source, sm *StateMachine, interval time.Duration, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.New(log.Writer(), "[sensor] ", log.LstdFlags)
	}
	return &Poller{
		src:      src,
		sm:       sm,
		interval: interval,
		log:      logger,
		Events:   make(chan PassEvent, 8),
	}
}

// Run blocks, polling until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(p.Events)
			return ctx.Err()
		case now := <-ticker.C:
			if err := p.tick(now); err != nil {
				p.log.Printf("tick error: %v", err)
			}
			if p.sm.CheckTimeout(now) {
				p.log.Printf("pass timed out, resetting to idle")
			}
		}
	}
}

func (p *Poller) tick(now time.Time) error {
	a, err := p.src.ReadA()
	if err != nil {
		return err
	}
	b, err := p.src.ReadB()
	if err != nil {
		return err
	}

	if b != p.prevB {
		edge := EdgeBFall
		if b {
			edge = EdgeBRise
			p.passStart = now
		}
		if err := p.handleEdge(edge, now); err != nil {
			return err
		}
	}
	if a != p.prevA {
		edge := EdgeAFall
		if a {
			edge = EdgeARise
		}
		if err := p.handleEdge(edge, now); err != nil {
			return err
		}
	}
	p.prevA, p.prevB = a, b
	return nil
}

func (p *Poller) handleEdge(edge Edge, now time.Time) error {
	outcome, err := p.sm.Apply(edge, now)
	if err != nil {
		return err
	}
	if outcome == OutcomeNone {
		return nil
	}
	start := p.passStart
	if start.IsZero() {
		start = now
	}
	select {
	case p.Events <- PassEvent{Outcome: outcome, Start: start, End: now}:
	default:
		p.log.Printf("event channel full, dropping pass event")
	}
	return nil
}
