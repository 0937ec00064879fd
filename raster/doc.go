// Package raster defines the pixel-level value types shared by every other
// package of provmap: points, colors, pixels, rectangles, bounding boxes and
// the in-memory Image produced by the bmp codec.
//
// What:
//
//   - Image stores pixels top-down in R,G,B(,A) order with an explicit
//     width, height and depth (bytes per pixel: 1, 3 or 4).
//   - 1-byte-per-pixel images are palette-indexed and resolve colors
//     through Image.Palette.
//   - Dimensions provides bounds-checked, row-major index helpers and
//     orthogonal neighbor lookup, so callers never compute raw offsets.
//
// Coordinates:
//
//	(0,0) ─── x ───► (W-1,0)
//	  │
//	  y
//	  ▼
//	(0,H-1)
//
// Errors:
//
//   - ErrUnsupportedDepth: depth is not 1, 3 or 4.
//   - ErrPaletteRequired: a 1-byte-per-pixel image has no palette.
//   - ErrDataSize: len(Data) does not match W×H×Depth.
//   - ErrOutOfBounds: a coordinate lies outside the image.
package raster
