package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateShrinksOnHighCPU(t *testing.T) {
	cfg := DefaultConfig()
	d := Evaluate(cfg, Sample{CPUPercent: 90, MemoryPercent: 40}, 0)
	assert.Equal(t, -2, d.ThreadDelta)
	assert.False(t, d.Critical)
}

func TestEvaluateGrowsOnLowCPULowMem(t *testing.T) {
	cfg := DefaultConfig()
	d := Evaluate(cfg, Sample{CPUPercent: 30, MemoryPercent: 50}, 0)
	assert.Equal(t, 2, d.ThreadDelta)
}

func TestEvaluateFlagsCriticalMemory(t *testing.T) {
	cfg := DefaultConfig()
	d := Evaluate(cfg, Sample{CPUPercent: 60, MemoryPercent: 95}, 0)
	assert.True(t, d.Critical)
	assert.Equal(t, -2, d.ThreadDelta)
}

func TestEvaluateThrottlesQueue(t *testing.T) {
	cfg := DefaultConfig()
	d := Evaluate(cfg, Sample{CPUPercent: 10, MemoryPercent: 10}, 85)
	assert.True(t, d.Throttle)
}

func TestEvaluateClearsThrottleBelowFortyPercent(t *testing.T) {
	cfg := DefaultConfig()
	d := Evaluate(cfg, Sample{CPUPercent: 10, MemoryPercent: 10}, 20)
	assert.True(t, d.ClearThrottle)
}

func TestInitialThreadCountCapsLowMemory(t *testing.T) {
	cfg := DefaultConfig()
	n := InitialThreadCount(cfg, 8, 4)
	assert.Equal(t, 6, n)
}

func TestClampThreads(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg.MinThreads, ClampThreads(cfg, 1))
	assert.Equal(t, cfg.MaxThreads, ClampThreads(cfg, 100))
}
