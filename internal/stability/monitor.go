package stability

import (
	"fmt"
	"image"
)

// Default thresholds for a 640x480 webcam stream.
const (
	DefaultThreshold    = 1_000_000
	DefaultStableFrames = 60
)

// Kind is the outcome of observing one frame.
type Kind int

const (
	// Idle means there is no stable run in progress.
	Idle Kind = iota
	// Accumulating means the scene is stable but no new capture is due.
	Accumulating
	// Trigger means the stable run just reached the required length: capture now.
	Trigger
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Trigger:
		return "trigger"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decision is returned for every observed frame.
type Decision struct {
	Kind Kind `json:"kind"`

	// StableCount is the number of consecutive stable comparisons so far.
	StableCount int `json:"stable_count"`

	// Difference is the measured difference to the previous frame. It is zero
	// for the first frame.
	Difference float64 `json:"difference"`
}

// Config holds the thresholds of the state machine.
type Config struct {
	// Threshold is the largest frame difference still counted as stable.
	Threshold float64 `json:"threshold"`

	// StableFrames is the number of consecutive stable comparisons that fires a trigger.
	StableFrames int `json:"stable_frames"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, StableFrames: DefaultStableFrames}
}

// State is the mutable part of the state machine.
type State struct {
	HasPrevious     bool `json:"has_previous"`
	StableCount     int  `json:"stable_count"`
	FiredThisPeriod bool `json:"fired_this_period"`
}

// Step advances s by one comparison with difference diff.
func Step(s State, diff float64, cfg Config) (State, Decision) {
	if diff > cfg.Threshold {
		s.StableCount = 0
		s.FiredThisPeriod = false
		return s, Decision{Kind: Idle, Difference: diff}
	}

	s.StableCount++
	d := Decision{Kind: Accumulating, StableCount: s.StableCount, Difference: diff}
	if s.StableCount >= cfg.StableFrames && !s.FiredThisPeriod {
		s.FiredThisPeriod = true
		d.Kind = Trigger
	}
	return s, d
}

// Differ measures how different two frames are.
type Differ interface {
	FrameDifference(a, b image.Image) float64
}

// Monitor tracks one stream's stability across frames.
type Monitor struct {
	cfg    Config
	differ Differ
	prev   image.Image
	state  State
}

// NewMonitor creates a monitor that measures frames with differ.
func NewMonitor(differ Differ, cfg Config) *Monitor {
	return &Monitor{cfg: cfg, differ: differ}
}

// Observe compares img with the previously observed frame, advances the state
// machine and stores img as the new previous frame.
//
// The first frame only primes the monitor and returns Idle.
func (m *Monitor) Observe(img image.Image) Decision {
	defer func() {
		m.prev = img
		m.state.HasPrevious = img != nil
	}()

	if !m.state.HasPrevious {
		return Decision{Kind: Idle}
	}

	var d Decision
	m.state, d = Step(m.state, m.differ.FrameDifference(m.prev, img), m.cfg)
	return d
}

// Interrupt ends the current stable period as a dissimilar frame would, without
// replacing the previous frame. Use it when a frame could not be read.
func (m *Monitor) Interrupt() {
	m.state.StableCount = 0
	m.state.FiredThisPeriod = false
}

// Reset forgets the previous frame and all counters.
func (m *Monitor) Reset() {
	m.prev = nil
	m.state = State{}
}

// State returns a copy of the current state.
func (m *Monitor) State() State {
	return m.state
}

// Config returns the monitor's thresholds.
func (m *Monitor) Config() Config {
	return m.cfg
}
