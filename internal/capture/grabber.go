package capture

import (
	"context"
	"log"
	"time"

	"github.com/oin/wood-inspector/internal/frame"
)

// Camera abstracts the frame source the grab loop pulls from. A real
// implementation wraps a vendor SDK; tests supply a synthetic generator.
type Camera interface {
	Grab(ctx context.Context) ([]byte, error)
}

// Grabber runs a fixed-cadence capture loop, pushing every frame into the
// shared ring buffer regardless of recording state, so that a pass
// decision arriving slightly after the fact can still extract the frames
// leading up to it.
type Grabber struct {
	cam      Camera
	buf      *frame.Buffer
	interval time.Duration
	log      *log.Logger
}

func NewGrabber(cam Camera, buf *frame.Buffer, targetFPS float64, logger *log.Logger) *Grabber {
	if logger == nil {
		logger = log.New(log.Writer(), "[capture] ", log.LstdFlags)
	}
	if targetFPS <= 0 {
		targetFPS = 30
	}
	return &Grabber{
		cam:      cam,
		buf:      buf,
		interval: time.Duration(float64(time.Second) / targetFPS),
		log:      logger,
	}
}

// Run blocks, grabbing frames until ctx is done. Grab errors are logged
// and skipped rather than fatal, matching the original's resilience to
// transient camera hiccups.
func (g *Grabber) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			data, err := g.cam.Grab(ctx)
			if err != nil {
				g.log.Printf("grab failed: %v", err)
				continue
			}
			g.buf.Push(data, now)
		}
	}
}
