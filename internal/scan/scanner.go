package scan

import (
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/logger"
	"github.com/ironsheep/docscan/internal/vision"
)

// Options tune the preprocessing and resolution pipeline.
type Options struct {
	// WorkingHeight is the height frames are resized to before edge detection.
	// Zero or less processes frames at full resolution.
	WorkingHeight int

	MedianKernel int
	CannyLow     float64
	CannyHigh    float64
	DilateKernel int

	// Tolerance is the polygon approximation epsilon as a fraction of the
	// contour perimeter.
	Tolerance float64

	// MaxCandidates caps how many of the largest contours are tried.
	MaxCandidates int

	// StrictCornerOrder assigns every detected vertex to exactly one corner
	// instead of picking the nearest vertex for each corner independently.
	StrictCornerOrder bool
}

// DefaultOptions returns the tuning used for 640x480 webcam frames.
func DefaultOptions() Options {
	return Options{
		WorkingHeight: 600,
		MedianKernel:  5,
		CannyLow:      50,
		CannyHigh:     200,
		DilateKernel:  2,
		Tolerance:     DefaultTolerance,
		MaxCandidates: DefaultMaxCandidates,
	}
}

// Loader decodes stored images. *imaging.ImageCache satisfies it.
type Loader interface {
	Load(path string) (image.Image, error)
}

// Detection is the document outline found on the working-resolution frame.
type Detection struct {
	// WorkingSize is the size of the frame the outline was found on.
	WorkingSize geometry.Size `json:"working_size"`

	// Scale maps working coordinates back to the original frame.
	Scale float64 `json:"scale"`

	// Candidates is the number of contours that were tried.
	Candidates int `json:"candidates"`

	// Quad is the outline in working coordinates, in the order the
	// approximation produced it.
	Quad geometry.Quad `json:"quad"`
}

// Result describes one successful scan.
type Result struct {
	ID         string        `json:"id"`
	SourceSize geometry.Size `json:"source_size"`
	Detection  Detection     `json:"detection"`

	// Corners holds the ordered outline in original-frame coordinates.
	Corners geometry.Quad `json:"corners"`

	Ratio       float64       `json:"ratio"`
	Destination geometry.Rect `json:"destination"`
	Duration    time.Duration `json:"duration_ns"`

	// Image is the rectified document.
	Image image.Image `json:"-"`
}

// Scanner finds and rectifies a document in a single frame.
//
// A Scanner holds no per-frame state, but its Vision need not be safe for
// concurrent use, so calls should not overlap unless the Vision allows it.
type Scanner struct {
	vision   vision.Vision
	loader   Loader
	opts     Options
	resolver *Resolver
}

// NewScanner creates a scanner. loader may be nil if ScanFile is never used.
func NewScanner(v vision.Vision, loader Loader, opts Options) *Scanner {
	return &Scanner{
		vision: v,
		loader: loader,
		opts:   opts,
		resolver: &Resolver{
			Approx:    v,
			Tolerance: opts.Tolerance,
		},
	}
}

// Options returns the scanner's tuning.
func (s *Scanner) Options() Options {
	return s.opts
}

// Locate resizes img to the working height, extracts contours and resolves the
// document outline.
func (s *Scanner) Locate(img image.Image) (Detection, error) {
	working, scale := s.vision.Resize(img, s.opts.WorkingHeight)
	wb := working.Bounds()

	gray := s.vision.Grayscale(working)
	blurred := s.vision.Denoise(gray, s.opts.MedianKernel)
	edges := s.vision.DetectEdges(blurred, s.opts.CannyLow, s.opts.CannyHigh)
	dilated := s.vision.Dilate(edges, s.opts.DilateKernel)

	cands := RankCandidates(s.vision.FindContours(dilated), s.opts.MaxCandidates)
	det := Detection{
		WorkingSize: geometry.Size{Width: wb.Dx(), Height: wb.Dy()},
		Scale:       scale,
		Candidates:  len(cands),
	}

	quad, err := s.resolver.Resolve(cands)
	if err != nil {
		return det, err
	}
	det.Quad = quad
	return det, nil
}

// Order assigns corner roles relative to a frame of the given size, honouring
// StrictCornerOrder.
func (s *Scanner) Order(q geometry.Quad, size geometry.Size) geometry.Quad {
	if s.opts.StrictCornerOrder {
		return geometry.OrderCornersUnique(q, size)
	}
	return geometry.OrderCorners(q, size)
}

// Scan locates the document in img and returns it rectified.
//
// Corners are ordered on the working frame, then scaled back to img once.
// The destination rectangle is sized inside img's own dimensions.
func (s *Scanner) Scan(img image.Image) (*Result, error) {
	const op = "scan"
	if img == nil {
		return nil, invalidInput(op, errors.New("no image"))
	}
	start := time.Now()
	id := uuid.NewString()
	log := logger.WithField("scan_id", id)

	b := img.Bounds()
	source := geometry.Size{Width: b.Dx(), Height: b.Dy()}

	det, err := s.Locate(img)
	if err != nil {
		log.WithField("candidates", det.Candidates).Debug("no document outline")
		return nil, notFound(op, err)
	}

	ordered := s.Order(det.Quad, det.WorkingSize)
	ratio := geometry.Ratio(ordered)
	dest, err := geometry.Destination(ratio, source)
	if err != nil {
		return nil, processing(op, err)
	}

	req, err := BuildWarpRequest(img, ordered, det.Scale, dest)
	if err != nil {
		return nil, processing(op, err)
	}
	out, err := s.Rectify(req)
	if err != nil {
		return nil, processing(op, err)
	}

	res := &Result{
		ID:          id,
		SourceSize:  source,
		Detection:   det,
		Corners:     req.Source,
		Ratio:       ratio,
		Destination: dest,
		Duration:    time.Since(start),
		Image:       out,
	}
	log.WithFields(logrus.Fields{
		"ratio":  ratio,
		"width":  dest.Width,
		"height": dest.Height,
	}).Debug("document rectified")
	return res, nil
}

// ScanFile scans a stored image. The path is checked before any processing.
func (s *Scanner) ScanFile(path string) (*Result, error) {
	const op = "scan file"
	if path == "" {
		return nil, invalidInput(op, fmt.Errorf("%w: empty path", ErrInvalidSourcePath))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, invalidInput(op, fmt.Errorf("%w: %s: %v", ErrInvalidSourcePath, path, err))
	}
	if info.IsDir() {
		return nil, invalidInput(op, fmt.Errorf("%w: %s is a directory", ErrInvalidSourcePath, path))
	}
	if s.loader == nil {
		return nil, invalidInput(op, errors.New("no image loader configured"))
	}

	img, err := s.loader.Load(path)
	if err != nil {
		return nil, invalidInput(op, fmt.Errorf("%w: %v", ErrInvalidSourcePath, err))
	}
	return s.Scan(img)
}

// Rectify hands req to the vision collaborator's transform and warp.
func (s *Scanner) Rectify(req WarpRequest) (image.Image, error) {
	h, err := s.vision.PerspectiveTransform(req.Source, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to compute transform: %w", err)
	}
	out, err := s.vision.Warp(req.Image, h, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to warp image: %w", err)
	}
	return out, nil
}
