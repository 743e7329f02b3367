package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan/internal/logger"
	"github.com/ironsheep/docscan/internal/scan"
	"github.com/ironsheep/docscan/internal/stability"
)

// Scanner turns a captured frame into a rectified document. *scan.Scanner
// satisfies it.
type Scanner interface {
	Scan(img image.Image) (*scan.Result, error)
}

// Capture is the outcome of one capture-and-scan sequence.
type Capture struct {
	Frame  Frame
	Forced bool
	Result *scan.Result
	Err    error
}

// Handler receives every capture, successful or not.
type Handler func(Capture)

// SessionConfig holds the timing of the capture loop.
type SessionConfig struct {
	TickInterval time.Duration
	FocusDelay   time.Duration
	FocusValue   float64
}

// DefaultSessionConfig returns a 30 ms tick and a one second focus delay.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TickInterval: 30 * time.Millisecond,
		FocusDelay:   time.Second,
	}
}

// Status is a snapshot of the session for display.
type Status struct {
	CameraOpen  bool           `json:"camera_open"`
	Decision    stability.Kind `json:"-"`
	State       string         `json:"state"`
	StableCount int            `json:"stable_count"`
	Frames      uint64         `json:"frames"`
	FPS         float64        `json:"fps"`
	Captures    int            `json:"captures"`
	LastError   string         `json:"last_error,omitempty"`
}

// Session drives a device, a stability monitor and a scanner from a single
// tick loop. Only ForceCapture and Status may be called from other goroutines.
type Session struct {
	device  Device
	monitor *stability.Monitor
	scanner Scanner
	cfg     SessionConfig
	handle  Handler
	wait    FocusWaiter

	triggers chan struct{}
	scanning atomic.Bool

	mu        sync.Mutex
	status    Status
	lastFrame time.Time
}

// NewSession wires a session together. handle may be nil.
func NewSession(dev Device, mon *stability.Monitor, sc Scanner, cfg SessionConfig, handle Handler) *Session {
	if handle == nil {
		handle = func(Capture) {}
	}
	return &Session{
		device:   dev,
		monitor:  mon,
		scanner:  sc,
		cfg:      cfg,
		handle:   handle,
		wait:     Sleep(cfg.FocusDelay),
		triggers: make(chan struct{}, 1),
		status:   Status{CameraOpen: true, State: stability.Idle.String()},
	}
}

// SetFocusWaiter replaces the focus delay.
func (s *Session) SetFocusWaiter(w FocusWaiter) {
	s.wait = w
}

// ForceCapture asks the loop to capture on its next turn regardless of
// stability. It returns false when the request was dropped because a capture is
// already running or pending.
func (s *Session) ForceCapture() bool {
	if s.scanning.Load() {
		logger.Debug("capture already running, manual trigger dropped")
		return false
	}
	select {
	case s.triggers <- struct{}{}:
		return true
	default:
		logger.Debug("manual trigger already pending, dropped")
		return false
	}
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Run ticks until ctx is cancelled or the device runs out of frames. It returns
// nil at end of stream and ctx.Err() on cancellation.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	logger.WithField("tick", s.cfg.TickInterval.String()).Info("capture session started")
	defer s.setCameraOpen(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.triggers:
			s.Capture(ctx, true)
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				if errors.Is(err, ErrEndOfStream) {
					logger.Info("capture session reached end of stream")
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
		}
	}
}

// Tick reads one frame and feeds it to the monitor, capturing when the monitor
// triggers. A read failure ends the current stable period and is returned.
func (s *Session) Tick(ctx context.Context) error {
	frame, err := s.device.ReadFrame(ctx)
	if err != nil {
		if errors.Is(err, ErrEndOfStream) || ctx.Err() != nil {
			return err
		}
		s.monitor.Interrupt()
		s.recordDecision(stability.Decision{Kind: stability.Idle}, err)
		logger.WithError(err).Warn("frame read failed")
		return err
	}

	s.recordFrame(frame)
	d := s.monitor.Observe(frame.Image)
	s.recordDecision(d, nil)

	if d.Kind == stability.Trigger {
		logger.WithFields(logrus.Fields{
			"trace_id":     frame.TraceID,
			"seq":          frame.Seq,
			"stable_count": d.StableCount,
		}).Info("scene stable, capturing")
		s.Capture(ctx, false)
	}
	return nil
}

// Capture focuses, waits for the lens to settle, reads a fresh frame and scans
// it. The result goes to the session handler and is also returned.
func (s *Session) Capture(ctx context.Context, forced bool) Capture {
	s.scanning.Store(true)
	defer s.scanning.Store(false)

	c := Capture{Forced: forced}
	c.Err = s.focus(ctx)
	if c.Err == nil {
		c.Frame, c.Err = s.device.ReadFrame(ctx)
		if c.Err != nil {
			s.monitor.Interrupt()
		}
	}
	if c.Err == nil {
		c.Result, c.Err = s.scanner.Scan(c.Frame.Image)
	}

	log := logger.WithFields(logrus.Fields{
		"trace_id": c.Frame.TraceID,
		"seq":      c.Frame.Seq,
		"forced":   forced,
	})
	s.mu.Lock()
	if c.Err != nil {
		s.status.LastError = c.Err.Error()
	} else {
		s.status.Captures++
		s.status.LastError = ""
	}
	s.mu.Unlock()

	if c.Err != nil {
		log.WithError(c.Err).Warn("capture failed")
	} else {
		log.WithFields(logrus.Fields{
			"scan_id": c.Result.ID,
			"width":   c.Result.Destination.Width,
			"height":  c.Result.Destination.Height,
		}).Info("document captured")
	}

	s.handle(c)
	return c
}

func (s *Session) focus(ctx context.Context) error {
	if err := s.device.SetFocus(s.cfg.FocusValue); err != nil {
		return fmt.Errorf("failed to set focus: %w", err)
	}
	return s.wait(ctx)
}

func (s *Session) recordFrame(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Frames++
	if !s.lastFrame.IsZero() {
		if dt := f.Timestamp.Sub(s.lastFrame).Seconds(); dt > 0 {
			inst := 1 / dt
			if s.status.FPS == 0 {
				s.status.FPS = inst
			} else {
				s.status.FPS = 0.9*s.status.FPS + 0.1*inst
			}
		}
	}
	s.lastFrame = f.Timestamp
}

func (s *Session) recordDecision(d stability.Decision, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Decision = d.Kind
	s.status.State = d.Kind.String()
	s.status.StableCount = d.StableCount
	if err != nil {
		s.status.LastError = err.Error()
	}
}

func (s *Session) setCameraOpen(open bool) {
	s.mu.Lock()
	s.status.CameraOpen = open
	s.mu.Unlock()
}
