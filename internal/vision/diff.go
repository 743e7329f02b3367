package vision

import (
	"image"
	"math"
)

// frameDifference sums the absolute luminance difference of every pixel pair.
// Frames with different dimensions return +Inf.
func frameDifference(a, b image.Image) float64 {
	if a == nil || b == nil {
		return math.Inf(1)
	}
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return math.Inf(1)
	}

	pa, pb := toPlane(a), toPlane(b)
	var sum uint64
	for i := range pa.pix {
		if pa.pix[i] > pb.pix[i] {
			sum += uint64(pa.pix[i] - pb.pix[i])
		} else {
			sum += uint64(pb.pix[i] - pa.pix[i])
		}
	}
	return float64(sum)
}
