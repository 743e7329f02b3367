package capture

import (
	"context"
	"time"
)

// FocusWaiter blocks while the camera settles after a focus change. It returns
// early with ctx.Err() when ctx is cancelled.
type FocusWaiter func(ctx context.Context) error

// Sleep returns a FocusWaiter that waits for d.
func Sleep(d time.Duration) FocusWaiter {
	return func(ctx context.Context) error {
		if d <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}
