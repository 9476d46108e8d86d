// Command inspector runs the wood surface inspection pipeline: sensor
// poller, frame capture, parallel analysis, persistence, and the HTTP/SSE
// status surface.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"

	"github.com/KimMachineGun/automemlimit/memlimit"

	"github.com/oin/wood-inspector/internal/analysis"
	"github.com/oin/wood-inspector/internal/capture"
	"github.com/oin/wood-inspector/internal/config"
	"github.com/oin/wood-inspector/internal/dbpool"
	"github.com/oin/wood-inspector/internal/httpapi"
	"github.com/oin/wood-inspector/internal/pipeline"
	"github.com/oin/wood-inspector/internal/sensor"
	"github.com/oin/wood-inspector/internal/status"
)

func main() {
	_, _ = memlimit.SetGoMemLimitWithOpts()

	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var src sensor.Source
	var simSource *sensor.SimulatedSource
	if cfg.Sensor.SimulationMode {
		simSource = sensor.NewSimulatedSource()
		src = simSource
	} else {
		gpio, err := sensor.NewGPIOSource(cfg.Sensor.BitA, cfg.Sensor.BitB)
		if err != nil {
			log.Fatalf("init GPIO source: %v", err)
		}
		src = gpio
	}

	var pool *dbpool.Pool
	if cfg.Database.DSN != "" {
		pool, err = dbpool.Open(dbpool.DefaultConfig(cfg.Database.DSN), nil)
		if err != nil {
			log.Printf("database unavailable, persistence disabled: %v", err)
			pool = nil
		} else {
			defer pool.Close()
		}
	}

	bus := status.NewBus()
	tracker := capture.NewTracker()

	pl := pipeline.New(pipeline.Deps{
		Config:   cfg,
		Source:   src,
		Camera:   &stubCamera{},
		Pool:     pool,
		Detector: &stubDetector{},
		Bus:      bus,
		Tracker:  tracker,
	})

	go func() {
		if err := pl.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("pipeline stopped: %v", err)
		}
	}()

	srv := httpapi.NewServer(bus, tracker, simSource, pl.Buffer(), cfg.Server.CORSAllowOrigins)
	mux := http.NewServeMux()
	mux.Handle("/", srv.Router())
	mux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{Addr: formatAddr(cfg.Server.Port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", httpSrv.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server: %v", err)
	}
}

// stubCamera and stubDetector are placeholder adapters wired at startup;
// a production deployment replaces these with a vendor camera SDK binding
// and the real defect-detection model client.
type stubCamera struct{}

func (stubCamera) Grab(ctx context.Context) ([]byte, error) {
	return nil, context.Canceled
}

type stubDetector struct{}

func (stubDetector) Predict(image []byte) ([]analysis.Detection, error) {
	return nil, nil
}

func formatAddr(port int) string {
	if port <= 0 {
		port = 8080
	}
	return ":" + strconv.Itoa(port)
}
