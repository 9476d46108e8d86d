// Package optimizer samples system resource usage and derives worker
// pool sizing and queue throttle decisions, matching the exact thresholds
// of the original resource optimizer.
package optimizer

import (
	"context"
	"log"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Config holds the fixed thresholds the original optimizer ships with.
type Config struct {
	CPUHighThreshold      float64
	CPULowThreshold       float64
	MemoryHighThreshold   float64
	MemoryCriticalThresh  float64
	MinThreads            int
	MaxThreads            int
	ThreadAdjustmentStep  int
	MaxQueueSize          int
	QueueThrottleThreshold float64
	MonitoringInterval    time.Duration
}

// DefaultConfig reproduces resource_optimizer.py's OptimizationConfig
// constants exactly.
func DefaultConfig() Config {
	return Config{
		CPUHighThreshold:       85.0,
		CPULowThreshold:        50.0,
		MemoryHighThreshold:    80.0,
		MemoryCriticalThresh:   90.0,
		MinThreads:             5,
		MaxThreads:             15,
		ThreadAdjustmentStep:   2,
		MaxQueueSize:           100,
		QueueThrottleThreshold: 80.0,
		MonitoringInterval:     5 * time.Second,
	}
}

// Sample is one point-in-time resource reading.
type Sample struct {
	CPUPercent    float64
	MemoryPercent float64
	LoadAverage1  float64
	Timestamp     time.Time
}

// Decision is the optimizer's recommendation after evaluating a Sample.
type Decision struct {
	ThreadDelta int  // applied additively to the current worker count
	Critical    bool // memory critical: caller should shed load
	Throttle    bool // queue should stop accepting new work
	ClearThrottle bool
}

// Evaluate implements the exact rule set from the original:
// CPU > high -> shrink by step; CPU < low && mem < high -> grow by step;
// mem > high -> shrink by step; mem > critical -> flag critical.
func Evaluate(cfg Config, s Sample, queueLen int) Decision {
	var d Decision

	switch {
	case s.CPUPercent > cfg.CPUHighThreshold:
		d.ThreadDelta = -cfg.ThreadAdjustmentStep
	case s.CPUPercent < cfg.CPULowThreshold && s.MemoryPercent < cfg.MemoryHighThreshold:
		d.ThreadDelta = cfg.ThreadAdjustmentStep
	case s.MemoryPercent > cfg.MemoryHighThreshold:
		d.ThreadDelta = -cfg.ThreadAdjustmentStep
	}

	if s.MemoryPercent > cfg.MemoryCriticalThresh {
		d.Critical = true
	}

	if cfg.MaxQueueSize > 0 {
		pct := float64(queueLen) / float64(cfg.MaxQueueSize) * 100
		if pct > cfg.QueueThrottleThreshold {
			d.Throttle = true
		} else if pct < 40 {
			d.ClearThrottle = true
		}
	}

	return d
}

// ClampThreads constrains a worker count to [cfg.MinThreads, cfg.MaxThreads].
func ClampThreads(cfg Config, n int) int {
	if n < cfg.MinThreads {
		return cfg.MinThreads
	}
	if n > cfg.MaxThreads {
		return cfg.MaxThreads
	}
	return n
}

// InitialThreadCount estimates a starting worker count from CPU core
// count and available memory, following _detect_initial_thread_count:
// base = cores * 1.5, capped at 6 below 8GB RAM, allowed +2 above 16GB.
func InitialThreadCount(cfg Config, physicalCores int, memGB float64) int {
	base := int(float64(physicalCores) * 1.5)
	switch {
	case memGB < 8:
		if base > 6 {
			base = 6
		}
	case memGB > 16:
		base += 2
	}
	return ClampThreads(cfg, base)
}

// Sampler periodically reads real system stats via gopsutil and emits
// Samples on a channel.
type Sampler struct {
	interval time.Duration
	log      *log.Logger
}

func NewSampler(interval time.Duration, logger *log.Logger) *Sampler {
	if logger == nil {
		logger = log.New(log.Writer(), "[optimizer] ", log.LstdFlags)
	}
	return &Sampler{interval: interval, log: logger}
}

// Stream samples CPU/memory/load at s.interval until ctx is canceled.
func (s *Sampler) Stream(ctx context.Context) <-chan Sample {
	out := make(chan Sample, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sample, err := s.read(now)
				if err != nil {
					s.log.Printf("sample failed: %v", err)
					continue
				}
				select {
				case out <- sample:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (s *Sampler) read(now time.Time) (Sample, error) {
	cpuPct, err := cpu.Percent(0, false)
	if err != nil {
		return Sample{}, err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Sample{}, err
	}
	la, err := load.Avg()
	if err != nil {
		return Sample{}, err
	}
	var cp float64
	if len(cpuPct) > 0 {
		cp = cpuPct[0]
	}
	return Sample{
		CPUPercent:    cp,
		MemoryPercent: vm.UsedPercent,
		LoadAverage1:  la.Load1,
		Timestamp:     now,
	}, nil
}
