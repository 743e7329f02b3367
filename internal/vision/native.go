package vision

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan/internal/geometry"
)

// Native is the pure-Go Vision implementation. The zero value is ready to use.
type Native struct{}

// NewNative returns a pure-Go Vision.
func NewNative() *Native {
	return &Native{}
}

var _ Vision = (*Native)(nil)

// Grayscale converts img to an *image.Gray.
func (n *Native) Grayscale(img image.Image) image.Image {
	return effect.Grayscale(img)
}

// Denoise applies a median filter over a ksize x ksize neighbourhood.
func (n *Native) Denoise(img image.Image, ksize int) image.Image {
	return effect.Median(img, kernelRadius(ksize))
}

// DetectEdges runs Canny on the luminance of img.
func (n *Native) DetectEdges(img image.Image, low, high float64) image.Image {
	return canny(toPlane(img), low, high)
}

// Dilate replaces each pixel with the maximum of its ksize neighbourhood.
func (n *Native) Dilate(img image.Image, ksize int) image.Image {
	return effect.Dilate(img, kernelRadius(ksize))
}

// FindContours returns the convex boundary of every white component in img.
func (n *Native) FindContours(img image.Image) []Contour {
	return findContours(toPlane(img))
}

// ApproximatePolygon simplifies c with Douglas-Peucker.
func (n *Native) ApproximatePolygon(c Contour, epsilon float64) []geometry.Point {
	return approximatePolygon(c.Points, epsilon)
}

// PerspectiveTransform solves for the homography taking src onto dst.
func (n *Native) PerspectiveTransform(src, dst geometry.Quad) (geometry.Homography, error) {
	return geometry.ComputeHomography(src, dst)
}

// Warp resamples img through h with bilinear interpolation.
func (n *Native) Warp(img image.Image, h geometry.Homography, size geometry.Size) (image.Image, error) {
	return warpPerspective(img, h, size)
}

// FrameDifference sums absolute luminance differences.
func (n *Native) FrameDifference(a, b image.Image) float64 {
	return frameDifference(a, b)
}

// Resize scales img to targetHeight with linear filtering.
//
// The width follows the same rescale factor and is truncated, so the returned
// factor (original height / targetHeight) maps both axes back to img.
func (n *Native) Resize(img image.Image, targetHeight int) (image.Image, float64) {
	b := img.Bounds()
	if targetHeight <= 0 || b.Dy() == 0 {
		return img, 1
	}

	rescale := float64(targetHeight) / float64(b.Dy())
	newW := int(float64(b.Dx()) * rescale)
	newH := int(float64(b.Dy()) * rescale)
	if newW < 1 {
		newW = 1
	}

	return imaging.Resize(img, newW, newH, imaging.Linear), 1 / rescale
}

// kernelRadius converts a square kernel side into the radius bild expects.
// bild kernels are always odd-sided, so an even side is rounded up: 2 gives
// a 3x3 element where CV uses 2x2.
func kernelRadius(ksize int) float64 {
	r := ksize / 2
	if r < 1 {
		r = 1
	}
	return float64(r)
}
