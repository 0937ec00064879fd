// Package bmp decodes and encodes Windows bitmap files into raster.Image
// values.
//
// What:
//
//   - A 14-byte file header ("BM", file size, two reserved words, data
//     offset) followed by one of three info headers: V1 (40 bytes),
//     V4 (108 bytes) or V5 (124 bytes). The layouts share a common prefix,
//     so every header is read through the V5 lens and the fields beyond
//     HeaderSize are left zero.
//   - 8-bit palette-indexed, 24-bit BGR and 32-bit BGRA pixel data,
//     rows padded to four bytes.
//   - Positive heights are stored bottom-up and flipped on decode;
//     negative heights are already top-down.
//
// Decoding swaps B and R into raster's R,G,B(,A) order. Encoding does the
// inverse and always writes bottom-up, uncompressed rows.
//
// Options:
//
//   - WithHeaderVersion(v): info header written by Encode (default V1).
//   - WithLogger(l): receives debug records about skipped gaps.
//
// Errors:
//
//   - ErrTruncated: the input ended before a header, table or row.
//   - ErrBadMagic: the file does not start with "BM".
//   - ErrUnsupportedHeader: HeaderSize is not 40, 108 or 124.
//   - ErrUnsupportedDepth: bit count other than 8, 24 or 32.
//   - ErrUnsupportedCompression: neither BI_RGB nor a plain BI_BITFIELDS.
//   - ErrPaletteRequired: an 8-bit image without a colour table.
//   - ErrCorruptHeader: inconsistent sizes or offsets.
//
// Complexity: O(W×H) time, one allocation for the pixel buffer.
package bmp
