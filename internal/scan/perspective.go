package scan

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/docscan/internal/geometry"
)

// WarpRequest is everything the warp primitive needs to rectify a document.
type WarpRequest struct {
	// Image is the full-resolution frame to resample.
	Image image.Image `json:"-"`

	// Source holds the ordered corners in Image coordinates.
	Source geometry.Quad `json:"source"`

	// Destination holds the matching corners of the output rectangle.
	Destination geometry.Quad `json:"destination"`

	// Size is the output image size.
	Size geometry.Size `json:"size"`
}

// BuildWarpRequest maps ordered corners found on the working-resolution frame
// back to original by multiplying them by scale, and pairs them with dest.
//
// Corners must be ordered already and must not have been scaled before; the
// scale is applied here exactly once.
func BuildWarpRequest(original image.Image, working geometry.Quad, scale float64, dest geometry.Rect) (WarpRequest, error) {
	if original == nil {
		return WarpRequest{}, errors.New("no source image")
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return WarpRequest{}, fmt.Errorf("invalid scale factor %v", scale)
	}
	if dest.Width <= 0 || dest.Height <= 0 {
		return WarpRequest{}, fmt.Errorf("invalid destination size %dx%d", dest.Width, dest.Height)
	}

	return WarpRequest{
		Image:       original,
		Source:      working.Scale(scale),
		Destination: dest.Corners,
		Size:        dest.Size(),
	}, nil
}
