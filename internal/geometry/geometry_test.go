package geometry

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{3, 4}, Point{3, 4}, 0},
		{"3-4-5 triangle", Point{0, 0}, Point{3, 4}, 5},
		{"negative coordinates", Point{-1, -1}, Point{2, 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNearestIndex(t *testing.T) {
	pts := []Point{{10, 10}, {0, 1}, {1, 0}}

	if got := NearestIndex(pts, Point{0, 0}); got != 1 {
		t.Errorf("tie should resolve to lowest index: got %d, want 1", got)
	}
	if got := NearestIndex(pts, Point{9, 9}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if got := NearestIndex(nil, Point{0, 0}); got != -1 {
		t.Errorf("empty input: got %d, want -1", got)
	}
}

func TestPerimeterAndArea(t *testing.T) {
	square := []Point{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	if got := Perimeter(square); !almostEqual(got, 40) {
		t.Errorf("Perimeter: got %v, want 40", got)
	}
	if got := Area(square); !almostEqual(got, 100) {
		t.Errorf("Area: got %v, want 100", got)
	}
	if got := Area(square[:2]); got != 0 {
		t.Errorf("Area of a segment: got %v, want 0", got)
	}
}

func TestOrderCorners_ShuffledSquare(t *testing.T) {
	q := Quad{{100, 100}, {0, 0}, {100, 0}, {0, 100}}
	want := Quad{{0, 0}, {0, 100}, {100, 100}, {100, 0}}

	if got := OrderCorners(q, Size{Width: 100, Height: 100}); got != want {
		t.Errorf("OrderCorners = %v, want %v", got, want)
	}
}

func TestOrderCorners_PermutationInvariant(t *testing.T) {
	q := Quad{{12, 8}, {15, 410}, {590, 395}, {570, 20}}
	size := Size{Width: 600, Height: 420}
	want := OrderCorners(q, size)

	for _, perm := range permutations4 {
		var shuffled Quad
		for i, idx := range perm {
			shuffled[i] = q[idx]
		}
		if got := OrderCorners(shuffled, size); got != want {
			t.Errorf("permutation %v: got %v, want %v", perm, got, want)
		}
		if got := OrderCornersUnique(shuffled, size); got != want {
			t.Errorf("unique, permutation %v: got %v, want %v", perm, got, want)
		}
	}
}

func TestOrderCorners_DuplicateAssignment(t *testing.T) {
	// D sits nearest to both bottom references; the independent rule keeps that.
	a, b, c, d := Point{5, 5}, Point{50, 40}, Point{60, 45}, Point{55, 50}
	q := Quad{a, b, c, d}
	size := Size{Width: 100, Height: 100}

	got := OrderCorners(q, size)
	want := Quad{a, d, d, c}
	if got != want {
		t.Fatalf("OrderCorners = %v, want %v", got, want)
	}

	unique := OrderCornersUnique(q, size)
	seen := make(map[Point]bool)
	for _, p := range unique {
		seen[p] = true
	}
	if len(seen) != 4 {
		t.Errorf("OrderCornersUnique reused a point: %v", unique)
	}
	if unique[0] != a {
		t.Errorf("top-left: got %v, want %v", unique[0], a)
	}
}

func TestQuadFromPoints(t *testing.T) {
	if _, err := QuadFromPoints([]Point{{0, 0}, {1, 1}, {2, 2}}); !errors.Is(err, ErrNotQuadrilateral) {
		t.Errorf("3 points: got %v, want ErrNotQuadrilateral", err)
	}
	q, err := QuadFromPoints([]Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q[2] != (Point{1, 1}) {
		t.Errorf("q[2] = %v, want (1,1)", q[2])
	}
}

func TestRatio(t *testing.T) {
	ordered := Quad{{0, 0}, {0, 200}, {150, 200}, {150, 0}}
	if got := Ratio(ordered); !almostEqual(got, 200.0/150.0) {
		t.Errorf("Ratio = %v, want %v", got, 200.0/150.0)
	}
}

func TestRatio_ScaleInvariant(t *testing.T) {
	ordered := Quad{{3, 7}, {11, 260}, {190, 251}, {176, 2}}
	base := Ratio(ordered)

	for _, k := range []float64{0.25, 0.5, 2, 3.7, 1000} {
		if got := Ratio(ordered.Scale(k)); math.Abs(got-base) > 1e-9*base {
			t.Errorf("scale %v: ratio %v, want %v", k, got, base)
		}
	}
}

func TestDestination(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		base  Size
		wantW int
		wantH int
	}{
		{"portrait keeps height", 200.0 / 150.0, Size{150, 200}, 150, 200},
		{"ratio one holds height", 1.0, Size{640, 480}, 480, 480},
		{"tall document narrows", 2.0, Size{640, 480}, 240, 480},
		{"wide document shortens", 0.5, Size{640, 480}, 640, 320},
		{"floors fractional width", 3.0, Size{100, 100}, 33, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Destination(tt.ratio, tt.base)
			if err != nil {
				t.Fatalf("Destination failed: %v", err)
			}
			if r.Width != tt.wantW || r.Height != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", r.Width, r.Height, tt.wantW, tt.wantH)
			}
			want := ReferenceCorners(Size{tt.wantW, tt.wantH})
			if r.Corners != want {
				t.Errorf("corners: got %v, want %v", r.Corners, want)
			}
		})
	}
}

func TestDestination_RatioOneBoundary(t *testing.T) {
	r, err := Destination(1.0, Size{Width: 300, Height: 300})
	if err != nil {
		t.Fatalf("Destination failed: %v", err)
	}
	if r.Width != 300 {
		t.Errorf("width: got %d, want 300", r.Width)
	}
}

func TestDestination_Degenerate(t *testing.T) {
	for _, ratio := range []float64{0, -1, math.NaN(), math.Inf(1), 1e-9} {
		if _, err := Destination(ratio, Size{100, 100}); !errors.Is(err, ErrDegenerateRatio) {
			t.Errorf("ratio %v: got %v, want ErrDegenerateRatio", ratio, err)
		}
	}
}

func TestComputeHomography(t *testing.T) {
	src := Quad{{0, 0}, {0, 100}, {100, 100}, {100, 0}}
	dst := src.Scale(2)

	h, err := ComputeHomography(src, dst)
	if err != nil {
		t.Fatalf("ComputeHomography failed: %v", err)
	}

	for i := range src {
		got, ok := h.Apply(src[i])
		if !ok {
			t.Fatalf("corner %d mapped to infinity", i)
		}
		if !almostEqual(got.X, dst[i].X) || !almostEqual(got.Y, dst[i].Y) {
			t.Errorf("corner %d: got %v, want %v", i, got, dst[i])
		}
	}

	mid, _ := h.Apply(Point{50, 50})
	if !almostEqual(mid.X, 100) || !almostEqual(mid.Y, 100) {
		t.Errorf("centre: got %v, want (100,100)", mid)
	}
}

func TestComputeHomography_Perspective(t *testing.T) {
	src := Quad{{10, 20}, {5, 300}, {280, 310}, {260, 15}}
	dst := ReferenceCorners(Size{200, 250})

	h, err := ComputeHomography(src, dst)
	if err != nil {
		t.Fatalf("ComputeHomography failed: %v", err)
	}
	for i := range src {
		got, _ := h.Apply(src[i])
		if math.Abs(got.X-dst[i].X) > 1e-6 || math.Abs(got.Y-dst[i].Y) > 1e-6 {
			t.Errorf("corner %d: got %v, want %v", i, got, dst[i])
		}
	}
}

func TestComputeHomography_Singular(t *testing.T) {
	collinear := Quad{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	if _, err := ComputeHomography(collinear, ReferenceCorners(Size{10, 10})); !errors.Is(err, ErrSingular) {
		t.Errorf("got %v, want ErrSingular", err)
	}
}

func TestHomography_Inverse(t *testing.T) {
	src := Quad{{10, 20}, {5, 300}, {280, 310}, {260, 15}}
	dst := ReferenceCorners(Size{200, 250})

	h, err := ComputeHomography(src, dst)
	if err != nil {
		t.Fatalf("ComputeHomography failed: %v", err)
	}
	inv, err := h.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	for i := range dst {
		got, ok := inv.Apply(dst[i])
		if !ok {
			t.Fatalf("corner %d mapped to infinity", i)
		}
		if math.Abs(got.X-src[i].X) > 1e-6 || math.Abs(got.Y-src[i].Y) > 1e-6 {
			t.Errorf("corner %d: got %v, want %v", i, got, src[i])
		}
	}
}
