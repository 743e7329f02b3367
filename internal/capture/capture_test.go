package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan/internal/scan"
	"github.com/ironsheep/docscan/internal/stability"
	"github.com/ironsheep/docscan/internal/vision"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fakeDevice serves frames from a function of the read index.
type fakeDevice struct {
	mu    sync.Mutex
	next  func(i int) (image.Image, error)
	reads int
	focus []float64
}

func (d *fakeDevice) ReadFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.reads
	d.reads++
	img, err := d.next(i)
	if err != nil {
		return Frame{}, err
	}
	return newFrame(uint64(i+1), img), nil
}

func (d *fakeDevice) SetFocus(v float64) error {
	d.mu.Lock()
	d.focus = append(d.focus, v)
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) Close() error { return nil }

func steadyDevice() *fakeDevice {
	img := createTestImage(8, 8, color.Gray{128})
	return &fakeDevice{next: func(int) (image.Image, error) { return img, nil }}
}

// fakeScanner counts scans and returns err when set.
type fakeScanner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *fakeScanner) Scan(img image.Image) (*scan.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &scan.Result{ID: fmt.Sprintf("scan-%d", s.calls), Image: img}, nil
}

func (s *fakeScanner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func noWait(ctx context.Context) error { return ctx.Err() }

func newTestSession(dev Device, sc Scanner, stableFrames int, handle Handler) (*Session, *stability.Monitor) {
	mon := stability.NewMonitor(vision.NewNative(), stability.Config{Threshold: 100, StableFrames: stableFrames})
	cfg := SessionConfig{TickInterval: time.Millisecond, FocusValue: 0}
	s := NewSession(dev, mon, sc, cfg, handle)
	s.SetFocusWaiter(noWait)
	return s, mon
}

func TestSession_TriggersOncePerStableRun(t *testing.T) {
	dev := steadyDevice()
	sc := &fakeScanner{}
	var captures []Capture
	s, _ := newTestSession(dev, sc, 3, func(c Capture) { captures = append(captures, c) })

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := s.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if sc.count() != 1 {
		t.Fatalf("scanned %d times, want 1", sc.count())
	}
	if len(captures) != 1 || captures[0].Forced || captures[0].Err != nil {
		t.Fatalf("captures = %+v", captures)
	}
	// The capture reads a fresh frame after focusing.
	if captures[0].Frame.Seq != 5 {
		t.Errorf("captured frame seq = %d, want 5", captures[0].Frame.Seq)
	}
	if len(dev.focus) != 1 || dev.focus[0] != 0 {
		t.Errorf("focus calls = %v, want [0]", dev.focus)
	}

	st := s.Status()
	if st.Captures != 1 || st.Frames != 10 || st.State != "accumulating" {
		t.Errorf("status = %+v", st)
	}
}

func TestSession_ReadFailureEndsStablePeriod(t *testing.T) {
	img := createTestImage(8, 8, color.Gray{128})
	dev := &fakeDevice{next: func(i int) (image.Image, error) {
		if i == 2 {
			return nil, fmt.Errorf("%w: unplugged", ErrDeviceRead)
		}
		return img, nil
	}}
	sc := &fakeScanner{}
	s, mon := newTestSession(dev, sc, 3, nil)

	ctx := context.Background()
	s.Tick(ctx)
	s.Tick(ctx)
	if err := s.Tick(ctx); !errors.Is(err, ErrDeviceRead) {
		t.Fatalf("tick error = %v, want ErrDeviceRead", err)
	}
	if st := mon.State(); st.StableCount != 0 || !st.HasPrevious {
		t.Errorf("monitor state after failure = %+v", st)
	}
	if s.Status().LastError == "" {
		t.Error("status does not report the read failure")
	}

	// Two more stable frames are not enough; the third triggers.
	s.Tick(ctx)
	s.Tick(ctx)
	if sc.count() != 0 {
		t.Fatal("triggered before a full stable run after the failure")
	}
	s.Tick(ctx)
	if sc.count() != 1 {
		t.Errorf("scanned %d times, want 1", sc.count())
	}
}

func TestSession_ScanFailureLeavesMonitor(t *testing.T) {
	sc := &fakeScanner{err: scan.ErrNoQuadrilateral}
	var got []Capture
	s, mon := newTestSession(steadyDevice(), sc, 2, func(c Capture) { got = append(got, c) })

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		if err := s.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if len(got) != 1 || !errors.Is(got[0].Err, scan.ErrNoQuadrilateral) {
		t.Fatalf("captures = %+v", got)
	}
	if st := mon.State(); !st.FiredThisPeriod || st.StableCount != 5 {
		t.Errorf("monitor state = %+v, want fired with count 5", st)
	}
	if s.Status().Captures != 0 {
		t.Error("failed scan counted as a capture")
	}
}

func TestSession_ForceCapture(t *testing.T) {
	sc := &fakeScanner{}
	done := make(chan Capture, 1)
	// A huge stable count keeps the monitor from ever triggering.
	s, _ := newTestSession(steadyDevice(), sc, 1_000_000, func(c Capture) { done <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	if !s.ForceCapture() {
		t.Fatal("ForceCapture was dropped")
	}
	select {
	case c := <-done:
		if !c.Forced || c.Err != nil {
			t.Errorf("capture = %+v", c)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("forced capture never ran")
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
	if s.Status().CameraOpen {
		t.Error("camera still reported open after Run returned")
	}
}

func TestSession_ForceCaptureDropped(t *testing.T) {
	s, _ := newTestSession(steadyDevice(), &fakeScanner{}, 3, nil)

	if !s.ForceCapture() {
		t.Fatal("first trigger should be accepted")
	}
	if s.ForceCapture() {
		t.Error("second trigger should be dropped while one is pending")
	}

	<-s.triggers
	s.scanning.Store(true)
	if s.ForceCapture() {
		t.Error("trigger should be dropped while a capture is running")
	}
}

func TestSession_RunStopsAtEndOfStream(t *testing.T) {
	img := createTestImage(8, 8, color.White)
	dev := &fakeDevice{next: func(i int) (image.Image, error) {
		if i >= 4 {
			return nil, ErrEndOfStream
		}
		return img, nil
	}}
	s, _ := newTestSession(dev, &fakeScanner{}, 100, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}
	if st := s.Status(); st.Frames != 4 {
		t.Errorf("frames = %d, want 4", st.Frames)
	}
}

func TestSession_CaptureHonoursCancelledFocusWait(t *testing.T) {
	sc := &fakeScanner{}
	s, _ := newTestSession(steadyDevice(), sc, 3, nil)
	s.SetFocusWaiter(Sleep(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := s.Capture(ctx, true)
	if !errors.Is(c.Err, context.Canceled) {
		t.Errorf("capture error = %v, want context.Canceled", c.Err)
	}
	if sc.count() != 0 {
		t.Error("scan ran after the focus wait was cancelled")
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(0)(context.Background()); err != nil {
		t.Errorf("zero sleep returned %v", err)
	}
	if err := Sleep(time.Millisecond)(context.Background()); err != nil {
		t.Errorf("short sleep returned %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Sleep(time.Hour)(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled sleep returned %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled sleep did not return promptly")
	}
}

func writeFrames(t *testing.T, dir string, names ...string) {
	t.Helper()
	for i, name := range names {
		img := createTestImage(10+i, 6, color.White)
		if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestDirDevice(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, "002.png", "001.png", "003.jpg")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dev, err := OpenDir(dir, false)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	defer dev.Close()
	if dev.Len() != 3 {
		t.Fatalf("Len = %d, want 3", dev.Len())
	}

	ctx := context.Background()
	// 001.png was written second, so it is 11 pixels wide.
	wantWidths := []int{11, 10, 12}
	for i, w := range wantWidths {
		f, err := dev.ReadFrame(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if f.Seq != uint64(i+1) || f.TraceID == "" {
			t.Errorf("frame %d metadata: seq=%d trace=%q", i, f.Seq, f.TraceID)
		}
		if f.Size().Width != w {
			t.Errorf("frame %d width = %d, want %d", i, f.Size().Width, w)
		}
	}
	if _, err := dev.ReadFrame(ctx); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("read past end = %v, want ErrEndOfStream", err)
	}
}

func TestDirDevice_Loop(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, "a.png", "b.png")

	dev, err := OpenDir(dir, true)
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := dev.ReadFrame(context.Background()); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
}

func TestDirDevice_Errors(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		if _, err := OpenDir(t.TempDir(), false); err == nil {
			t.Error("expected error for a directory without images")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := OpenDir(filepath.Join(t.TempDir(), "nope"), false); err == nil {
			t.Error("expected error for a missing directory")
		}
	})

	t.Run("corrupt frame is skipped", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "001.png"), []byte("not a png"), 0o644); err != nil {
			t.Fatal(err)
		}
		writeFrames(t, dir, "002.png")

		dev, err := OpenDir(dir, false)
		if err != nil {
			t.Fatalf("OpenDir failed: %v", err)
		}
		if _, err := dev.ReadFrame(context.Background()); !errors.Is(err, ErrDeviceRead) {
			t.Errorf("corrupt read = %v, want ErrDeviceRead", err)
		}
		if _, err := dev.ReadFrame(context.Background()); err != nil {
			t.Errorf("read after corrupt frame failed: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writeFrames(t, dir, "a.png")
		dev, err := OpenDir(dir, false)
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := dev.ReadFrame(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("read = %v, want context.Canceled", err)
		}
	})

	t.Run("closed", func(t *testing.T) {
		dir := t.TempDir()
		writeFrames(t, dir, "a.png")
		dev, err := OpenDir(dir, false)
		if err != nil {
			t.Fatal(err)
		}
		dev.Close()
		if _, err := dev.ReadFrame(context.Background()); !errors.Is(err, ErrDeviceRead) {
			t.Errorf("read after close = %v, want ErrDeviceRead", err)
		}
	})
}
