// Package config loads docscan settings from an optional YAML file and DOCSCAN_*
// environment variables, in that order, on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/docscan/internal/scan"
	"github.com/ironsheep/docscan/internal/stability"
)

// Config represents the complete docscan configuration
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Stability StabilityConfig `yaml:"stability"`
	Scan      ScanConfig      `yaml:"scan"`
	Capture   CaptureConfig   `yaml:"capture"`
}

// StabilityConfig contains the capture trigger thresholds
type StabilityConfig struct {
	Threshold    float64 `yaml:"threshold"`     // summed frame difference still counted as stable
	StableFrames int     `yaml:"stable_frames"` // consecutive stable frames before a capture
}

// ScanConfig contains document detection settings
type ScanConfig struct {
	WorkingHeight     int     `yaml:"working_height"` // 0 disables resizing
	MedianKernel      int     `yaml:"median_kernel"`
	CannyLow          float64 `yaml:"canny_low"`
	CannyHigh         float64 `yaml:"canny_high"`
	DilateKernel      int     `yaml:"dilate_kernel"` // the native backend rounds even sides up
	Tolerance         float64 `yaml:"tolerance"`     // fraction of contour perimeter
	MaxCandidates     int     `yaml:"max_candidates"`
	StrictCornerOrder bool    `yaml:"strict_corner_order"`
}

// CaptureConfig contains capture loop settings
type CaptureConfig struct {
	Device       string        `yaml:"device"` // frame directory, or camera index with gocv
	TickInterval time.Duration `yaml:"tick_interval"`
	FocusDelay   time.Duration `yaml:"focus_delay"`
	FocusValue   float64       `yaml:"focus_value"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := scan.DefaultOptions()
	return &Config{
		LogLevel: "info",
		Stability: StabilityConfig{
			Threshold:    stability.DefaultThreshold,
			StableFrames: stability.DefaultStableFrames,
		},
		Scan: ScanConfig{
			WorkingHeight: opts.WorkingHeight,
			MedianKernel:  opts.MedianKernel,
			CannyLow:      opts.CannyLow,
			CannyHigh:     opts.CannyHigh,
			DilateKernel:  opts.DilateKernel,
			Tolerance:     opts.Tolerance,
			MaxCandidates: opts.MaxCandidates,
		},
		Capture: CaptureConfig{
			Device:       "0",
			TickInterval: 30 * time.Millisecond,
			FocusDelay:   time.Second,
			FocusValue:   0,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only defaults
// and environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnvOrDefault("DOCSCAN_LOG_LEVEL", c.LogLevel)

	c.Stability.Threshold = parseFloatOrDefault("DOCSCAN_STABILITY_THRESHOLD", c.Stability.Threshold)
	c.Stability.StableFrames = parseIntOrDefault("DOCSCAN_STABLE_FRAMES", c.Stability.StableFrames)

	c.Scan.WorkingHeight = parseIntOrDefault("DOCSCAN_WORKING_HEIGHT", c.Scan.WorkingHeight)
	c.Scan.CannyLow = parseFloatOrDefault("DOCSCAN_CANNY_LOW", c.Scan.CannyLow)
	c.Scan.CannyHigh = parseFloatOrDefault("DOCSCAN_CANNY_HIGH", c.Scan.CannyHigh)
	c.Scan.Tolerance = parseFloatOrDefault("DOCSCAN_TOLERANCE", c.Scan.Tolerance)
	c.Scan.MaxCandidates = parseIntOrDefault("DOCSCAN_MAX_CANDIDATES", c.Scan.MaxCandidates)
	c.Scan.StrictCornerOrder = parseBoolOrDefault("DOCSCAN_STRICT_CORNER_ORDER", c.Scan.StrictCornerOrder)

	c.Capture.Device = getEnvOrDefault("DOCSCAN_DEVICE", c.Capture.Device)
	c.Capture.TickInterval = parseDurationOrDefault("DOCSCAN_TICK_INTERVAL", c.Capture.TickInterval)
	c.Capture.FocusDelay = parseDurationOrDefault("DOCSCAN_FOCUS_DELAY", c.Capture.FocusDelay)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Stability.Threshold < 0 {
		return fmt.Errorf("stability.threshold must be >= 0 (got %v)", c.Stability.Threshold)
	}
	if c.Stability.StableFrames < 1 {
		return fmt.Errorf("stability.stable_frames must be > 0 (got %d)", c.Stability.StableFrames)
	}

	s := c.Scan
	if s.WorkingHeight < 0 {
		return fmt.Errorf("scan.working_height must be >= 0 (got %d)", s.WorkingHeight)
	}
	if s.MedianKernel < 1 || s.MedianKernel%2 == 0 {
		return fmt.Errorf("scan.median_kernel must be a positive odd number (got %d)", s.MedianKernel)
	}
	if s.CannyLow < 0 || s.CannyHigh < s.CannyLow {
		return fmt.Errorf("scan canny thresholds must satisfy 0 <= low <= high (got %v/%v)", s.CannyLow, s.CannyHigh)
	}
	if s.DilateKernel < 1 {
		return fmt.Errorf("scan.dilate_kernel must be > 0 (got %d)", s.DilateKernel)
	}
	if s.Tolerance <= 0 || s.Tolerance >= 1 {
		return fmt.Errorf("scan.tolerance must be in (0, 1) (got %v)", s.Tolerance)
	}
	if s.MaxCandidates < 1 {
		return fmt.Errorf("scan.max_candidates must be > 0 (got %d)", s.MaxCandidates)
	}

	if c.Capture.TickInterval <= 0 {
		return fmt.Errorf("capture.tick_interval must be > 0 (got %s)", c.Capture.TickInterval)
	}
	if c.Capture.FocusDelay < 0 {
		return fmt.Errorf("capture.focus_delay must be >= 0 (got %s)", c.Capture.FocusDelay)
	}
	return nil
}

// ScanOptions converts the scan section for scan.NewScanner.
func (c *Config) ScanOptions() scan.Options {
	return scan.Options{
		WorkingHeight:     c.Scan.WorkingHeight,
		MedianKernel:      c.Scan.MedianKernel,
		CannyLow:          c.Scan.CannyLow,
		CannyHigh:         c.Scan.CannyHigh,
		DilateKernel:      c.Scan.DilateKernel,
		Tolerance:         c.Scan.Tolerance,
		MaxCandidates:     c.Scan.MaxCandidates,
		StrictCornerOrder: c.Scan.StrictCornerOrder,
	}
}

// StabilityOptions converts the stability section for stability.NewMonitor.
func (c *Config) StabilityOptions() stability.Config {
	return stability.Config{
		Threshold:    c.Stability.Threshold,
		StableFrames: c.Stability.StableFrames,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
