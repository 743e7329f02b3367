// Package scan locates a document in a single frame and rectifies it.
//
// # Pipeline
//
// Scanner.Scan runs these steps:
//
//  1. Resize the frame to the working height (600 px by default) and remember the
//     factor that maps working coordinates back to the frame.
//  2. Grayscale, median blur, Canny edges and a small dilation.
//  3. Find contours, keep the five largest by area (RankCandidates).
//  4. Approximate each with epsilon = 0.02 x perimeter; the first with exactly
//     four vertices is the document (Resolver.Resolve).
//  5. Order the corners top-left, bottom-left, bottom-right, top-right.
//  6. Size the output from the height/width ratio of the ordered corners.
//  7. Scale the corners back to the frame and warp (BuildWarpRequest, Rectify).
//
// All pixel work is delegated to a vision.Vision.
//
// # Errors
//
// Failures are returned as *Error. Use errors.Is with ErrNoQuadrilateral or
// ErrInvalidSourcePath, or KindOf to read the category. No failure leaves the
// Scanner unusable.
package scan
