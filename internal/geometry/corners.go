package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotQuadrilateral is returned when a polygon does not have exactly four vertices.
var ErrNotQuadrilateral = errors.New("polygon does not have exactly 4 vertices")

// Quad is a four-point polygon. Until it has been through OrderCorners its vertex
// order carries no corner role.
type Quad [4]Point

// QuadFromPoints copies a 4-vertex polygon into a Quad.
func QuadFromPoints(pts []Point) (Quad, error) {
	var q Quad
	if len(pts) != 4 {
		return q, fmt.Errorf("%w: got %d", ErrNotQuadrilateral, len(pts))
	}
	copy(q[:], pts)
	return q, nil
}

// Points returns the quad's vertices as a slice.
func (q Quad) Points() []Point {
	return q[:]
}

// Scale returns a copy of q with every vertex multiplied by k.
func (q Quad) Scale(k float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Scale(k)
	}
	return out
}

// ReferenceCorners returns the axis-aligned corners of a w x h rectangle in
// role order: top-left, bottom-left, bottom-right, top-right.
func ReferenceCorners(size Size) Quad {
	w := float64(size.Width)
	h := float64(size.Height)
	return Quad{{X: 0, Y: 0}, {X: 0, Y: h}, {X: w, Y: h}, {X: w, Y: 0}}
}

// OrderCorners assigns each corner role of a size-sized rectangle the input point
// nearest to that role's reference position.
//
// Each role is matched independently, so one input point may fill more than one
// role when the quadrilateral is strongly skewed. Use OrderCornersUnique when every
// input point must be used exactly once.
func OrderCorners(q Quad, size Size) Quad {
	var ordered Quad
	for slot, ref := range ReferenceCorners(size) {
		ordered[slot] = q[NearestIndex(q[:], ref)]
	}
	return ordered
}

// OrderCornersUnique assigns corner roles one-to-one, choosing the permutation of
// the input points with the smallest summed distance to the reference corners.
// Ties resolve to the first permutation in lexicographic order.
func OrderCornersUnique(q Quad, size Size) Quad {
	refs := ReferenceCorners(size)
	best := math.MaxFloat64
	var ordered Quad
	for _, perm := range permutations4 {
		var total float64
		for slot, idx := range perm {
			total += Distance(q[idx], refs[slot])
		}
		if total < best {
			best = total
			for slot, idx := range perm {
				ordered[slot] = q[idx]
			}
		}
	}
	return ordered
}

// permutations4 lists every ordering of {0,1,2,3} in lexicographic order.
var permutations4 = func() [][4]int {
	perms := make([][4]int, 0, 24)
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			for c := 0; c < 4; c++ {
				d := 6 - a - b - c
				if a == b || a == c || b == c || d < 0 || d > 3 || d == a || d == b || d == c {
					continue
				}
				perms = append(perms, [4]int{a, b, c, d})
			}
		}
	}
	return perms
}()
