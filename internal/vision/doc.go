// Package vision defines the pixel-level collaborator used by the document scanner
// and provides two implementations of it.
//
// The scanner never touches pixels itself. It asks a Vision for grayscale
// conversion, denoising, edge detection, dilation, contour extraction, polygon
// approximation, homography estimation, warping, frame differencing and resizing,
// and only makes decisions on the results.
//
// # Implementations
//
//   - Native: pure Go. Grayscale, median denoise and dilation come from bild,
//     resizing from disintegration/imaging, and edge detection, contour tracing,
//     polygon approximation and warping are implemented here.
//
//   - CV: OpenCV through gocv. Only compiled with the "gocv" build tag:
//
//     go build -tags gocv ./...
//
// # Contours
//
// FindContours returns one closed contour per 8-connected foreground component.
// The Native implementation uses the component's convex hull as its boundary,
// which is exact for convex documents and ignores holes. Contours are returned in
// detection order; ranking by area is the caller's job.
package vision
