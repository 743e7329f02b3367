// Package imaging holds the image input and output around a scan: loading stored
// images, encoding results for JSON responses and drawing the detected outline
// for inspection.
//
// # Coordinate System
//
// All pixel coordinates are 0-based and relative to the image's top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Loading
//
// ImageCache decodes PNG, JPEG and GIF through the standard library, plus BMP,
// TIFF and WebP through golang.org/x/image. Flatbed scanners commonly produce
// TIFF, which is why those decoders are registered here and not left to callers.
//
// # Overlay
//
// DrawQuad tints the document area, outlines it and labels the four corner roles
// (TL, BL, BR, TR). Colours are parsed and blended with go-colorful; the tint is
// mixed in Lab space so it reads the same on light and dark paper.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless and
// never modify their input image.
package imaging
