package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan/internal/geometry"
)

// warpPerspective maps every destination pixel back through the inverse of h and
// samples src bilinearly. Pixels that land outside src are left transparent black.
func warpPerspective(src image.Image, h geometry.Homography, size geometry.Size) (image.Image, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("invalid warp size %dx%d", size.Width, size.Height)
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert transform: %w", err)
	}

	in := imaging.Clone(src)
	out := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))

	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			sp, ok := inv.Apply(geometry.Point{X: float64(x), Y: float64(y)})
			if !ok {
				continue
			}
			bilinear(in, sp.X, sp.Y, out.Pix[out.PixOffset(x, y):out.PixOffset(x, y)+4])
		}
	}
	return out, nil
}

// bilinear writes the interpolated NRGBA value of src at (fx, fy) into dst.
// dst is untouched when the sample point is outside src.
func bilinear(src *image.NRGBA, fx, fy float64, dst []uint8) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if fx < 0 || fy < 0 || fx > float64(w-1) || fy > float64(h-1) {
		return
	}

	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
	ax, ay := fx-float64(x0), fy-float64(y0)

	p00 := src.PixOffset(x0, y0)
	p10 := src.PixOffset(x1, y0)
	p01 := src.PixOffset(x0, y1)
	p11 := src.PixOffset(x1, y1)
	for c := 0; c < 4; c++ {
		top := float64(src.Pix[p00+c])*(1-ax) + float64(src.Pix[p10+c])*ax
		bottom := float64(src.Pix[p01+c])*(1-ax) + float64(src.Pix[p11+c])*ax
		dst[c] = uint8(math.Round(top*(1-ay) + bottom*ay))
	}
}
