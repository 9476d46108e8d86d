// Package config loads the nested YAML configuration tree, following the
// teacher's config.Config composition pattern, with environment variable
// overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the top-level configuration, composed of one section per
// subsystem named in spec.md §6.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Buffer   BufferConfig   `yaml:"buffer"`
	Sensor   SensorConfig   `yaml:"sensor"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Save     SaveConfig     `yaml:"save"`
	SSE      SSEConfig      `yaml:"sse"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

type CameraConfig struct {
	ExposureUS int     `yaml:"exposure_us"`
	TargetFPS  float64 `yaml:"target_fps"`
}

type BufferConfig struct {
	MaxSeconds float64 `yaml:"max_seconds"`
}

type SensorConfig struct {
	SimulationMode bool   `yaml:"simulation_mode"`
	BitA           string `yaml:"bit_a"`
	BitB           string `yaml:"bit_b"`
}

type AnalysisConfig struct {
	MinThreads             int     `yaml:"min_threads"`
	MaxThreads             int     `yaml:"max_threads"`
	ThreadAdjustmentStep   int     `yaml:"thread_adjustment_step"`
	CPUHighPct             float64 `yaml:"cpu_high_pct"`
	MemoryHighPct          float64 `yaml:"memory_high_pct"`
	ConfidenceThreshold    float64 `yaml:"confidence_threshold"`
	MinorLengthThresholdMM float64 `yaml:"minor_length_threshold_mm"`
}

type SaveConfig struct {
	RootDir string `yaml:"root_dir"`
}

type SSEConfig struct {
	UpdateIntervalMS int `yaml:"update_interval_ms"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Port             int      `yaml:"port"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
}

// Default mirrors the original system's bundled defaults.
func Default() Config {
	return Config{
		Camera:   CameraConfig{ExposureUS: 5000, TargetFPS: 10},
		Buffer:   BufferConfig{MaxSeconds: 30},
		Sensor:   SensorConfig{SimulationMode: true, BitA: "GPIO17", BitB: "GPIO27"},
		Analysis: AnalysisConfig{MinThreads: 5, MaxThreads: 15, ThreadAdjustmentStep: 2, CPUHighPct: 85, MemoryHighPct: 80, ConfidenceThreshold: 0.5, MinorLengthThresholdMM: 10},
		Save:     SaveConfig{RootDir: "./captures"},
		SSE:      SSEConfig{UpdateIntervalMS: 500},
		Database: DatabaseConfig{DSN: "postgres://localhost/wood_inspector?sslmode=disable"},
		Server:   ServerConfig{Port: 8080, CORSAllowOrigins: []string{"*"}},
	}
}

// Load reads path if it exists, overlaying it onto Default, then applies
// a handful of environment variable overrides for deployment secrets.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if dsn := os.Getenv("WOOD_INSPECTOR_DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if port := os.Getenv("WOOD_INSPECTOR_SERVER_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			cfg.Server.Port = p
		}
	}

	return cfg, nil
}
