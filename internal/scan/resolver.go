package scan

import (
	"sort"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/vision"
)

// Defaults for quadrilateral resolution.
const (
	DefaultTolerance     = 0.02
	DefaultMaxCandidates = 5
)

// Approximator simplifies a contour to a polygon. vision.Vision satisfies it.
type Approximator interface {
	ApproximatePolygon(c vision.Contour, epsilon float64) []geometry.Point
}

// RankCandidates returns the k largest contours by area, largest first. Contours
// of equal area keep their input order. k <= 0 keeps all of them.
// The input slice is not modified.
func RankCandidates(cands []vision.Contour, k int) []vision.Contour {
	ranked := make([]vision.Contour, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Area > ranked[j].Area
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Resolver picks the document outline from a list of contours.
type Resolver struct {
	Approx Approximator

	// Tolerance is the approximation epsilon as a fraction of each contour's
	// perimeter.
	Tolerance float64
}

// Resolve walks cands in order and returns the first one whose polygon
// approximation has exactly four vertices. The caller ranks and caps cands.
//
// It returns ErrNoQuadrilateral when cands is empty or nothing qualifies.
func (r *Resolver) Resolve(cands []vision.Contour) (geometry.Quad, error) {
	for _, c := range cands {
		approx := r.Approx.ApproximatePolygon(c, r.Tolerance*c.Perimeter())
		if len(approx) != 4 {
			continue
		}
		q, err := geometry.QuadFromPoints(approx)
		if err != nil {
			continue
		}
		return q, nil
	}
	return geometry.Quad{}, ErrNoQuadrilateral
}
