package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateRatio is returned when a height/width ratio cannot size a rectangle.
var ErrDegenerateRatio = errors.New("degenerate aspect ratio")

// Rect is an axis-aligned destination rectangle anchored at the origin.
// Corners are in the same role order as OrderCorners.
type Rect struct {
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Corners Quad `json:"corners"`
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Ratio returns the height/width ratio of an ordered quad: the right edge
// (top-right to bottom-right) over the bottom edge (bottom-right to bottom-left).
func Ratio(ordered Quad) float64 {
	height := Distance(ordered[2], ordered[3])
	width := Distance(ordered[2], ordered[1])
	return height / width
}

// Destination sizes a rectangle with the given height/width ratio inside base.
//
// A ratio of 1 or more keeps base.Height and derives the width as
// floor(height/ratio). A smaller ratio keeps base.Width and derives the height
// as floor(width*ratio).
func Destination(ratio float64, base Size) (Rect, error) {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return Rect{}, fmt.Errorf("%w: %v", ErrDegenerateRatio, ratio)
	}

	w, h := base.Width, base.Height
	if ratio >= 1 {
		w = int(math.Floor(float64(h) / ratio))
	} else {
		h = int(math.Floor(float64(w) * ratio))
	}
	if w <= 0 || h <= 0 {
		return Rect{}, fmt.Errorf("%w: ratio %v gives %dx%d", ErrDegenerateRatio, ratio, w, h)
	}

	size := Size{Width: w, Height: h}
	return Rect{Width: w, Height: h, Corners: ReferenceCorners(size)}, nil
}
