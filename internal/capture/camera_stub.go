//go:build !gocv

package capture

import "fmt"

// OpenCamera needs OpenCV; build with -tags gocv to enable live cameras.
func OpenCamera(id string) (Device, error) {
	return nil, fmt.Errorf("camera %q unavailable: built without gocv support", id)
}
