package vision

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/docscan/internal/geometry"
)

// minContourPixels is the smallest component kept by findContours; anything
// smaller is treated as noise.
const minContourPixels = 10

// findContours groups white pixels (value > 127) into 8-connected components and
// returns the convex hull of each as a closed contour.
func findContours(p plane) []Contour {
	visited := make([]bool, p.w*p.h)
	contours := make([]Contour, 0)

	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			i := y*p.w + x
			if visited[i] || p.pix[i] <= 127 {
				continue
			}
			component := floodFill(p, visited, x, y)
			if len(component) < minContourPixels {
				continue
			}
			hull := convexHull(component)
			contours = append(contours, Contour{
				Points: hull,
				Area:   geometry.Area(hull),
			})
		}
	}
	return contours
}

// floodFill performs iterative 8-connected flood fill from (startX, startY),
// marking visited pixels and returning the component.
func floodFill(p plane, visited []bool, startX, startY int) []image.Point {
	component := make([]image.Point, 0, 64)
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		pt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if pt.X < 0 || pt.X >= p.w || pt.Y < 0 || pt.Y >= p.h {
			continue
		}
		i := pt.Y*p.w + pt.X
		if visited[i] || p.pix[i] <= 127 {
			continue
		}

		visited[i] = true
		component = append(component, pt)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: pt.X + dx, Y: pt.Y + dy})
			}
		}
	}
	return component
}

// convexHull returns the convex hull of pts using Andrew's monotone chain.
// Collinear points are dropped.
func convexHull(pts []image.Point) []geometry.Point {
	sorted := make([]image.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(sorted))
	for _, pt := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		pt := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	if len(hull) > 1 {
		hull = hull[:len(hull)-1]
	}

	out := make([]geometry.Point, len(hull))
	for i, pt := range hull {
		out[i] = geometry.Point{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return out
}

// approximatePolygon simplifies a closed polyline with Douglas-Peucker.
//
// The curve is split at two extreme points (the point farthest from the first
// vertex, then the point farthest from that one) so the result does not depend
// on where the traversal happened to start.
func approximatePolygon(pts []geometry.Point, epsilon float64) []geometry.Point {
	n := len(pts)
	if n <= 3 {
		out := make([]geometry.Point, n)
		copy(out, pts)
		return out
	}

	a := farthestIndex(pts, pts[0])
	b := farthestIndex(pts, pts[a])
	if a == b {
		return []geometry.Point{pts[a]}
	}

	seq := make([]geometry.Point, 0, n+1)
	seq = append(seq, pts[a:]...)
	seq = append(seq, pts[:a]...)
	m := (b - a + n) % n

	first := douglasPeucker(seq[:m+1], epsilon)
	closing := append(append([]geometry.Point{}, seq[m:]...), seq[0])
	second := douglasPeucker(closing, epsilon)

	out := append(first, second[1:len(second)-1]...)
	return out
}

func farthestIndex(pts []geometry.Point, from geometry.Point) int {
	best, bestDist := 0, -1.0
	for i, p := range pts {
		if d := geometry.Distance(p, from); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// douglasPeucker simplifies an open polyline, always keeping both endpoints.
func douglasPeucker(pts []geometry.Point, epsilon float64) []geometry.Point {
	if len(pts) <= 2 {
		return append([]geometry.Point{}, pts...)
	}

	start, end := pts[0], pts[len(pts)-1]
	split, maxDist := 0, -1.0
	for i := 1; i < len(pts)-1; i++ {
		if d := segmentDistance(pts[i], start, end); d > maxDist {
			split, maxDist = i, d
		}
	}

	if maxDist <= epsilon {
		return []geometry.Point{start, end}
	}

	left := douglasPeucker(pts[:split+1], epsilon)
	right := douglasPeucker(pts[split:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDistance returns the distance from p to the line through a and b, or to a
// when a and b coincide.
func segmentDistance(p, a, b geometry.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return geometry.Distance(p, a)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
}
