//go:build gocv

package capture

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// CameraDevice reads frames from an OpenCV video capture.
type CameraDevice struct {
	mu  sync.Mutex
	vc  *gocv.VideoCapture
	mat gocv.Mat
	seq uint64
}

// OpenCamera opens a camera by index ("0") or a video file or stream URL.
func OpenCamera(id string) (Device, error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %q: %w", id, err)
	}
	return &CameraDevice{vc: vc, mat: gocv.NewMat()}, nil
}

func (c *CameraDevice) ReadFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return Frame{}, fmt.Errorf("%w: camera returned no frame", ErrDeviceRead)
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrDeviceRead, err)
	}

	c.seq++
	return newFrame(c.seq, img), nil
}

// SetFocus writes CAP_PROP_FOCUS. Cameras without manual focus ignore it.
func (c *CameraDevice) SetFocus(v float64) error {
	c.mu.Lock()
	c.vc.Set(gocv.VideoCaptureFocus, v)
	c.mu.Unlock()
	return nil
}

func (c *CameraDevice) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mat.Close()
	return c.vc.Close()
}
