package vision

import (
	"image"

	"github.com/ironsheep/docscan/internal/geometry"
)

// Contour is a closed boundary curve found in a binary image.
type Contour struct {
	// Points is the boundary in traversal order, in pixel coordinates.
	Points []geometry.Point `json:"points"`

	// Area is the area enclosed by Points in square pixels.
	Area float64 `json:"area"`
}

// Perimeter returns the closed arc length of the contour.
func (c Contour) Perimeter() float64 {
	return geometry.Perimeter(c.Points)
}

// Vision is the pixel-processing collaborator consumed by the scanner and the
// stability monitor. Implementations must be safe to call from one goroutine at
// a time; they need not be safe for concurrent use.
type Vision interface {
	// Grayscale converts img to a single-channel luminance image.
	Grayscale(img image.Image) image.Image

	// Denoise applies a median blur with an odd, square kernel of side ksize.
	Denoise(img image.Image, ksize int) image.Image

	// DetectEdges runs Canny edge detection with the given hysteresis thresholds
	// on 0-255 intensities. Edge pixels are white, the rest black.
	DetectEdges(img image.Image, low, high float64) image.Image

	// Dilate grows white regions with a square structuring element of side ksize.
	Dilate(img image.Image, ksize int) image.Image

	// FindContours extracts the outer boundaries of white regions.
	FindContours(img image.Image) []Contour

	// ApproximatePolygon simplifies a closed contour so no dropped point lies
	// farther than epsilon from the result.
	ApproximatePolygon(c Contour, epsilon float64) []geometry.Point

	// PerspectiveTransform computes the homography mapping src[i] onto dst[i].
	PerspectiveTransform(src, dst geometry.Quad) (geometry.Homography, error)

	// Warp resamples img through h into an image of the given size.
	Warp(img image.Image, h geometry.Homography, size geometry.Size) (image.Image, error)

	// FrameDifference returns the sum of absolute per-pixel differences between
	// a and b. Images of different sizes are infinitely different.
	FrameDifference(a, b image.Image) float64

	// Resize scales img to targetHeight keeping its aspect ratio. The returned
	// factor maps coordinates in the resized image back to img.
	Resize(img image.Image, targetHeight int) (image.Image, float64)
}
