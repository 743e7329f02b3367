package capture

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/docscan/internal/geometry"
)

var (
	// ErrDeviceRead means a frame could not be read this tick. The next read may
	// succeed.
	ErrDeviceRead = errors.New("device read failed")

	// ErrEndOfStream means the device has no more frames to give.
	ErrEndOfStream = errors.New("end of stream")
)

// Frame is one image read from a device. It is not modified after ReadFrame
// returns it.
type Frame struct {
	// Seq is the monotonic sequence number
	Seq uint64
	// Timestamp is when the frame was read
	Timestamp time.Time
	// TraceID identifies the frame in logs
	TraceID string
	// Image holds the pixels
	Image image.Image
}

func newFrame(seq uint64, img image.Image) Frame {
	return Frame{
		Seq:       seq,
		Timestamp: time.Now(),
		TraceID:   uuid.New().String(),
		Image:     img,
	}
}

// Size returns the frame dimensions.
func (f Frame) Size() geometry.Size {
	if f.Image == nil {
		return geometry.Size{}
	}
	b := f.Image.Bounds()
	return geometry.Size{Width: b.Dx(), Height: b.Dy()}
}

// Device is a source of frames, typically a camera.
type Device interface {
	// ReadFrame returns the next frame. Failures wrap ErrDeviceRead, or
	// ErrEndOfStream once a finite source is exhausted.
	ReadFrame(ctx context.Context) (Frame, error)

	// SetFocus sets the focus position. Devices without focus control ignore it.
	SetFocus(v float64) error

	Close() error
}
