// Package imaging provides the low-level image operations used by the outfit
// analyzer: decoding, normalization, color representations, downsampling,
// grayscale conversion and edge detection.
//
// All operations work with standard Go image types. Analysis code receives
// images normalized to *image.NRGBA anchored at the origin, where (0,0) is
// the top-left corner, X increases rightward and Y increases downward.
//
// # Decoding
//
// Decode accepts PNG, JPEG, GIF, WebP, BMP and TIFF bytes. Every decode or
// normalization failure wraps ErrDecode so callers can classify it with
// errors.Is.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and never mutate their inputs, so several analyses may share
// one decoded image.
//
// # Color Representation
//
// Colors are exchanged as:
//   - Hex: lowercase "#rrggbb"
//   - RGBColor: 8-bit components (0-255)
//   - HSVColor: unit-scale hue, saturation and value (0-1); Scaled() gives the
//     8-bit vision scale (hue 0-180, saturation and value 0-255)
//
// # Edge Detection
//
// Canny produces a binary edge map (0 or 255 per pixel) from a grayscale
// image. EdgeDensity reduces that map to the mean edge intensity in [0, 1].
package imaging
