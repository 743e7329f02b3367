// Package geometry provides the plane geometry used to rectify a captured document.
//
// Everything in this package is pure: no state, no image access. Functions operate on
// float64 points in image coordinates, where (0,0) is the top-left corner, X grows to
// the right and Y grows downward.
//
// # Corner Roles
//
// A Quad returned by OrderCorners holds its points in a fixed role order:
//
//	index 0: top-left     (0, 0)
//	index 1: bottom-left  (0, h)
//	index 2: bottom-right (w, h)
//	index 3: top-right    (w, 0)
//
// The same order is used for destination rectangles, so an ordered quad and a Rect's
// corners can be paired index by index to build a perspective transform.
//
// # Duplicate Assignment
//
// OrderCorners picks the nearest input point for each role independently. For heavily
// skewed or near-degenerate quadrilaterals the same input point can win two roles.
// OrderCornersUnique is the strict alternative: it picks the one-to-one assignment with
// the smallest total distance.
package geometry
