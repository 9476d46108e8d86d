// Package pipeline wires the sensor poller, capture grab loop, event
// queue, analysis scheduler, aggregator, store, and status broker into
// the concurrency model described in spec.md §5.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/oin/wood-inspector/internal/analysis"
	"github.com/oin/wood-inspector/internal/capture"
	"github.com/oin/wood-inspector/internal/config"
	"github.com/oin/wood-inspector/internal/dbpool"
	"github.com/oin/wood-inspector/internal/extract"
	"github.com/oin/wood-inspector/internal/frame"
	"github.com/oin/wood-inspector/internal/metrics"
	"github.com/oin/wood-inspector/internal/queue"
	"github.com/oin/wood-inspector/internal/sensor"
	"github.com/oin/wood-inspector/internal/status"
	"github.com/oin/wood-inspector/internal/store"
)

// Pipeline owns the running subsystems and the channels connecting them.
type Pipeline struct {
	cfg      config.Config
	buf      *frame.Buffer
	sm       *sensor.StateMachine
	poller   *sensor.Poller
	grabber  *capture.Grabber
	tracker  *capture.Tracker
	queue    *queue.Queue
	bus      *status.Bus
	repo     *store.Repository
	detector analysis.Detector
	log      *log.Logger
}

// Deps bundles the constructed dependencies Pipeline needs; callers
// (cmd/inspector) assemble concrete adapters (GPIO vs simulated source,
// real vs stub detector) and pass them in here.
type Deps struct {
	Config   config.Config
	Source   sensor.Source
	Camera   capture.Camera
	Pool     *dbpool.Pool
	Detector analysis.Detector
	Bus      *status.Bus
	Tracker  *capture.Tracker
}

func New(d Deps) *Pipeline {
	buf := frame.NewBuffer(int(d.Config.Buffer.MaxSeconds*d.Config.Camera.TargetFPS), time.Duration(d.Config.Buffer.MaxSeconds*float64(time.Second)))
	sm := sensor.NewStateMachine(5 * time.Second)

	var repo *store.Repository
	if d.Pool != nil {
		repo = store.NewRepository(d.Pool)
	}

	return &Pipeline{
		cfg:      d.Config,
		buf:      buf,
		sm:       sm,
		poller:   sensor.NewPoller(d.Source, sm, 20*time.Millisecond, nil),
		grabber:  capture.NewGrabber(d.Camera, buf, d.Config.Camera.TargetFPS, nil),
		tracker:  d.Tracker,
		queue:    queue.New(16),
		bus:      d.Bus,
		repo:     repo,
		detector: d.Detector,
		log:      log.New(log.Writer(), "[pipeline] ", log.LstdFlags),
	}
}

// Buffer exposes the frame ring buffer for the HTTP preview handler.
func (p *Pipeline) Buffer() *frame.Buffer { return p.buf }

// Run starts the grab loop, the sensor poller, and the pass-event
// consumer, blocking until ctx is canceled.
func (p *Pipeline) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() { errCh <- p.grabber.Run(ctx) }()
	go func() { errCh <- p.poller.Run(ctx) }()
	go p.consumePasses(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (p *Pipeline) consumePasses(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.poller.Events:
			if !ok {
				return
			}
			p.handlePass(ctx, ev)
		}
	}
}

func (p *Pipeline) handlePass(ctx context.Context, ev sensor.PassEvent) {
	inspectionID := uuid.NewString()

	switch ev.Outcome {
	case sensor.OutcomeDiscard:
		if p.tracker != nil {
			p.tracker.Discard()
		}
		if p.bus != nil {
			p.bus.Publish(status.NewEvent(status.EventInspectionDiscarded, map[string]string{"id": inspectionID}))
		}
		return
	case sensor.OutcomeSave:
		if p.tracker != nil {
			p.tracker.StartRecording()
		}
		if p.bus != nil {
			p.bus.Publish(status.NewEvent(status.EventInspectionStarted, map[string]string{"id": inspectionID}))
		}
		p.queue.Push(queue.Event{ID: inspectionID, Payload: ev})
		metrics.QueueDepth.WithLabelValues("inspection").Set(float64(p.queue.Len()))
		next, ok := p.queue.Pop()
		metrics.QueueDepth.WithLabelValues("inspection").Set(float64(p.queue.Len()))
		if !ok {
			return
		}
		p.processInspection(ctx, next.ID, next.Payload.(sensor.PassEvent))
	}
}

func (p *Pipeline) processInspection(ctx context.Context, inspectionID string, ev sensor.PassEvent) {
	started := time.Now()

	raw := p.buf.Window(ev.Start, ev.End)
	frames := extract.Extract(raw, ev.Start, ev.End, p.cfg.Camera.TargetFPS, nil)

	if p.tracker != nil {
		p.tracker.StartProcessing(len(frames))
	}

	dir, err := extract.WriteSequence(p.cfg.Save.RootDir, frames, decodeJPEG, started)
	if err != nil {
		p.log.Printf("inspection %s: write sequence failed: %v", inspectionID, err)
		return
	}

	paths := make([]string, len(frames))
	for i := range frames {
		paths[i] = filepath.Join(dir, fmt.Sprintf("No_%04d.bmp", i))
	}

	groups := analysis.RunAll(paths, p.cfg.Analysis.MinThreads, p.detector, p.cfg.Analysis.ConfidenceThreshold, func(groupName string, processed, total int, _ *analysis.ImageResult) {
		if p.bus != nil {
			p.bus.Publish(status.NewEvent(status.EventGroupProgress, map[string]any{
				"inspection_id": inspectionID,
				"group":         groupName,
				"processed":     processed,
				"total":         total,
			}))
		}
	})

	var allResults []analysis.ImageResult
	detectionsByImageNo := make(map[int][]analysis.Detection)
	for _, g := range groups {
		allResults = append(allResults, g.Results...)
		metrics.GroupProcessingSeconds.WithLabelValues(g.Name).Observe(g.Metrics.ProcessingTime.Seconds())
		for _, r := range g.Results {
			detectionsByImageNo[r.ImageNo] = r.Detections
		}
	}

	verdict := analysis.Aggregate(allResults, p.cfg.Analysis.MinorLengthThresholdMM)
	presentations := analysis.PickPresentation(paths, detectionsByImageNo)

	metrics.InspectionsTotal.WithLabelValues(verdict.String()).Inc()

	if p.repo != nil {
		p.persist(ctx, inspectionID, started, dir, verdict, allResults, presentations)
	}

	if p.tracker != nil {
		p.tracker.Idle()
	}
	if p.bus != nil {
		p.bus.Publish(status.NewEvent(status.EventInspectionCompleted, map[string]any{
			"id":      inspectionID,
			"verdict": verdict.String(),
		}))
	}
}

func (p *Pipeline) persist(ctx context.Context, inspectionID string, started time.Time, dir string, verdict analysis.Verdict, results []analysis.ImageResult, presentations []analysis.Presentation) {
	flags := analysis.BuildResultFlags(results)
	anyAboveThreshold := false

	var details []store.InspectionDetail
	for _, r := range results {
		if r.ConfidenceAboveCutoff {
			anyAboveThreshold = true
		}
		for _, d := range r.Detections {
			details = append(details, store.InspectionDetail{
				InspectionID: inspectionID,
				ClassID:      int(d.ClassID),
				ClassLabel:   d.ClassID.Label(),
				X:            d.X,
				Y:            d.Y,
				W:            d.W,
				H:            d.H,
				Length:       d.Length(),
				Confidence:   d.Confidence,
				ImagePath:    r.ImagePath,
				ImageNo:      r.ImageNo,
			})
		}
	}

	insp := store.Inspection{
		ID:                      inspectionID,
		StartedAt:               started,
		AIThresholdPercent:      p.cfg.Analysis.ConfidenceThreshold * 100,
		FileDirectory:           dir,
		AnyDefectAboveThreshold: anyAboveThreshold,
		Verdict:                 verdict.String(),
		VerdictRank:             int(verdict),
	}

	result := store.InspectionResult{
		InspectionID:  inspectionID,
		Discoloration: flags.Discoloration,
		Hole:          flags.Hole,
		Knot:          flags.Knot,
		DeadKnot:      flags.DeadKnot,
		LiveKnot:      flags.LiveKnot,
		TightKnot:     flags.TightKnot,
		Length:        flags.Length * 100,
	}

	var pres []store.Presentation
	for _, pr := range presentations {
		pres = append(pres, store.Presentation{
			InspectionID: inspectionID,
			GroupName:    pr.GroupName,
			ImagePath:    pr.ImagePath,
		})
	}

	if err := p.repo.SaveInspection(ctx, insp, details, result, pres); err != nil {
		p.log.Printf("inspection %s: persist failed: %v", inspectionID, err)
	}
}
