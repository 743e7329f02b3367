package geometry

import (
	"fmt"
	"math"
)

// Point is a 2D point with floating-point coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scale returns p with both coordinates multiplied by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Size is an integer width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// NearestIndex returns the index of the point in pts closest to target.
// Ties resolve to the lowest index. It returns -1 when pts is empty.
func NearestIndex(pts []Point, target Point) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, p := range pts {
		d := Distance(p, target)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Perimeter returns the length of the closed polygon through pts.
func Perimeter(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := range pts {
		sum += Distance(pts[i], pts[(i+1)%len(pts)])
	}
	return sum
}

// Area returns the unsigned area enclosed by the closed polygon through pts (shoelace formula).
func Area(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var twice float64
	for i := range pts {
		j := (i + 1) % len(pts)
		twice += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(twice) / 2
}
