package vision

import (
	"image"
)

// plane is an 8-bit luminance buffer with tight rows.
type plane struct {
	w, h int
	pix  []uint8
}

func (p plane) at(x, y int) uint8 {
	return p.pix[y*p.w+x]
}

// luma converts an RGB triple of 8-bit components to luminance using ITU-R BT.601
// weights (0.299*R + 0.587*G + 0.114*B).
func luma(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}

// toPlane extracts the luminance of img. Gray, YCbCr, RGBA and NRGBA images are read
// straight from their pixel buffers; anything else goes through At.
func toPlane(img image.Image) plane {
	b := img.Bounds()
	p := plane{w: b.Dx(), h: b.Dy(), pix: make([]uint8, b.Dx()*b.Dy())}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < p.h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(p.pix[y*p.w:(y+1)*p.w], src.Pix[off:off+p.w])
		}
	case *image.YCbCr:
		for y := 0; y < p.h; y++ {
			off := src.YOffset(b.Min.X, b.Min.Y+y)
			copy(p.pix[y*p.w:(y+1)*p.w], src.Y[off:off+p.w])
		}
	case *image.RGBA:
		for y := 0; y < p.h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[off : off+4*p.w]
			for x := 0; x < p.w; x++ {
				p.pix[y*p.w+x] = luma(row[4*x], row[4*x+1], row[4*x+2])
			}
		}
	case *image.NRGBA:
		for y := 0; y < p.h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[off : off+4*p.w]
			for x := 0; x < p.w; x++ {
				p.pix[y*p.w+x] = luma(row[4*x], row[4*x+1], row[4*x+2])
			}
		}
	default:
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				p.pix[y*p.w+x] = luma(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			}
		}
	}
	return p
}

// gray wraps the plane as an *image.Gray anchored at the origin.
func (p plane) gray() *image.Gray {
	return &image.Gray{Pix: p.pix, Stride: p.w, Rect: image.Rect(0, 0, p.w, p.h)}
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
