//go:build gocv

package vision

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/ironsheep/docscan/internal/geometry"
)

// CV is the OpenCV-backed Vision. Every call converts its input to a gocv.Mat and
// its result back to an image.Image, so each step can be swapped for Native in tests.
type CV struct{}

// NewCV returns an OpenCV Vision.
func NewCV() *CV {
	return &CV{}
}

var _ Vision = (*CV)(nil)

func toMat(img image.Image) gocv.Mat {
	if g, ok := img.(*image.Gray); ok {
		b := g.Bounds()
		p := toPlane(g)
		mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, p.pix)
		if err == nil {
			return mat
		}
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat()
	}
	return mat
}

func fromMat(mat gocv.Mat) image.Image {
	img, err := mat.ToImage()
	if err != nil {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	return img
}

// Grayscale converts with COLOR_BGR2GRAY.
func (c *CV) Grayscale(img image.Image) image.Image {
	src := toMat(img)
	defer src.Close()
	if src.Channels() == 1 {
		return fromMat(src)
	}
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return fromMat(dst)
}

// Denoise applies cv::medianBlur.
func (c *CV) Denoise(img image.Image, ksize int) image.Image {
	src := toMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	if ksize%2 == 0 {
		ksize++
	}
	gocv.MedianBlur(src, &dst, ksize)
	return fromMat(dst)
}

// DetectEdges applies cv::Canny.
func (c *CV) DetectEdges(img image.Image, low, high float64) image.Image {
	src := toMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Canny(src, &dst, float32(low), float32(high))
	return fromMat(dst)
}

// Dilate applies cv::dilate with a rectangular kernel.
func (c *CV) Dilate(img image.Image, ksize int) image.Image {
	src := toMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: ksize, Y: ksize})
	defer kernel.Close()
	gocv.Dilate(src, &dst, kernel)
	return fromMat(dst)
}

// FindContours lists every contour (RETR_LIST, CHAIN_APPROX_SIMPLE).
func (c *CV) FindContours(img image.Image) []Contour {
	src := toMat(img)
	defer src.Close()
	found := gocv.FindContours(src, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pv := found.At(i)
		contours = append(contours, Contour{
			Points: fromImagePoints(pv.ToPoints()),
			Area:   gocv.ContourArea(pv),
		})
	}
	return contours
}

// ApproximatePolygon applies cv::approxPolyDP on the closed contour.
func (c *CV) ApproximatePolygon(ct Contour, epsilon float64) []geometry.Point {
	pts := make([]image.Point, len(ct.Points))
	for i, p := range ct.Points {
		pts[i] = image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
	}
	pv := gocv.NewPointVectorFromPoints(pts)
	defer pv.Close()
	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()
	return fromImagePoints(approx.ToPoints())
}

// PerspectiveTransform applies cv::getPerspectiveTransform.
func (c *CV) PerspectiveTransform(src, dst geometry.Quad) (geometry.Homography, error) {
	sv := gocv.NewPoint2fVectorFromPoints(toPoint2f(src))
	defer sv.Close()
	dv := gocv.NewPoint2fVectorFromPoints(toPoint2f(dst))
	defer dv.Close()

	m := gocv.GetPerspectiveTransform2f(sv, dv)
	defer m.Close()
	if m.Empty() {
		return geometry.Homography{}, geometry.ErrSingular
	}

	var h geometry.Homography
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			h[r*3+col] = m.GetDoubleAt(r, col)
		}
	}
	return h, nil
}

// Warp applies cv::warpPerspective.
func (c *CV) Warp(img image.Image, h geometry.Homography, size geometry.Size) (image.Image, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("invalid warp size %dx%d", size.Width, size.Height)
	}
	src := toMat(img)
	defer src.Close()

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			m.SetDoubleAt(r, col, h[r*3+col])
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspective(src, &dst, m, image.Point{X: size.Width, Y: size.Height})
	return mat2Image(dst)
}

// FrameDifference sums cv::absdiff over the first channel.
func (c *CV) FrameDifference(a, b image.Image) float64 {
	if a == nil || b == nil || a.Bounds().Size() != b.Bounds().Size() {
		return math.Inf(1)
	}
	ma := toMat(a)
	defer ma.Close()
	mb := toMat(b)
	defer mb.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(ma, mb, &diff)
	return diff.Sum().Val1
}

// Resize applies cv::resize with linear interpolation.
func (c *CV) Resize(img image.Image, targetHeight int) (image.Image, float64) {
	b := img.Bounds()
	if targetHeight <= 0 || b.Dy() == 0 {
		return img, 1
	}
	rescale := float64(targetHeight) / float64(b.Dy())
	size := image.Point{X: int(float64(b.Dx()) * rescale), Y: int(float64(b.Dy()) * rescale)}

	src := toMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, size, 0, 0, gocv.InterpolationLinear)
	return fromMat(dst), 1 / rescale
}

func mat2Image(m gocv.Mat) (image.Image, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert warped mat: %w", err)
	}
	return img, nil
}

func fromImagePoints(pts []image.Point) []geometry.Point {
	out := make([]geometry.Point, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

func toPoint2f(q geometry.Quad) []gocv.Point2f {
	out := make([]gocv.Point2f, len(q))
	for i, p := range q {
		out[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return out
}
