package geometry

import (
	"errors"
	"math"
)

// ErrSingular is returned when four point pairs do not define a homography,
// for example when three of the points are collinear.
var ErrSingular = errors.New("point correspondence is singular")

// Homography is a 3x3 projective transform stored row-major with H[8] == 1.
type Homography [9]float64

// ComputeHomography returns the homography mapping src[i] onto dst[i] for all
// four pairs. It solves the 8x8 linear system with Gaussian elimination and
// partial pivoting.
func ComputeHomography(src, dst Quad) (Homography, error) {
	var a [8][8]float64
	var b [8]float64
	for i := 0; i < 4; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		a[r] = [8]float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x}
		b[r] = x
		a[r+1] = [8]float64{0, 0, 0, X, Y, 1, -X * y, -Y * y}
		b[r+1] = y
	}

	h, ok := solve8(a, b)
	if !ok {
		return Homography{}, ErrSingular
	}
	return Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}, nil
}

// Apply maps p through the homography. ok is false when p maps to infinity.
func (h Homography) Apply(p Point) (Point, bool) {
	denom := h[6]*p.X + h[7]*p.Y + h[8]
	if denom == 0 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / denom,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / denom,
	}, true
}

// solve8 solves a*x = b in place using Gauss-Jordan elimination.
func solve8(a [8][8]float64, b [8]float64) ([8]float64, bool) {
	const eps = 1e-12
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < eps {
			return [8]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		div := a[col][col]
		for c := col; c < 8; c++ {
			a[col][c] /= div
		}
		b[col] /= div

		for r := 0; r < 8; r++ {
			if r == col || a[r][col] == 0 {
				continue
			}
			f := a[r][col]
			for c := col; c < 8; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	return b, true
}

// Inverse returns the homography mapping dst back onto src, normalised so the
// last element is 1.
func (h Homography) Inverse() (Homography, error) {
	a, b, c := h[0], h[1], h[2]
	d, e, f := h[3], h[4], h[5]
	g, k, l := h[6], h[7], h[8]

	det := a*(e*l-f*k) - b*(d*l-f*g) + c*(d*k-e*g)
	if math.Abs(det) < 1e-12 {
		return Homography{}, ErrSingular
	}

	inv := Homography{
		e*l - f*k, c*k - b*l, b*f - c*e,
		f*g - d*l, a*l - c*g, c*d - a*f,
		d*k - e*g, b*g - a*k, a*e - b*d,
	}
	if inv[8] == 0 {
		return Homography{}, ErrSingular
	}
	n := inv[8]
	for i := range inv {
		inv[i] /= n
	}
	return inv, nil
}
