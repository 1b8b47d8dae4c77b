// Package detection provides line segment detection on binary edge maps.
//
// The outfit analyzer uses it to decide whether a garment is striped: the
// edge map produced by imaging.Canny is passed to DetectSegments and the
// number of long straight segments is compared against a threshold.
//
// # Algorithm Overview
//
// DetectSegments implements the progressive probabilistic Hough transform:
//
//  1. Edge pixels are visited one at a time in a seeded random order
//  2. Each pixel votes in a (rho, theta) accumulator
//  3. As soon as some line collects enough votes it is traced through the
//     edge map, accepted or rejected by length, and its pixels are removed
//     from further consideration
//
// Because pixels are consumed as lines are found, the transform usually
// finishes after touching a fraction of the accumulator a full Hough
// transform would fill.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Determinism
//
// Results depend on the visiting order. HoughParams.Seed fixes that order,
// so identical edge maps always produce identical segments.
package detection
