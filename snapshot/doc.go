// Package snapshot persists segmentation results so a map can be reloaded
// without segmenting it again.
//
// Format (little-endian):
//
//	magic   [4]byte  "SDAT" (label matrix) or "PDAT" (province IDs)
//	width   uint32
//	height  uint32
//	data    width*height elements: uint32 labels or 16-byte UUIDs
//	end     0x00
//
// WithCompression wraps the whole container in a zstd frame. Readers
// recognise the zstd frame magic and decompress transparently, so callers
// never need to know how a file was written.
//
// Errors:
//
//   - ErrBadMagic: the stream is not a snapshot of the requested kind.
//   - ErrTruncated: the stream ends inside the header or the matrix.
//   - ErrMissingTerminator: the matrix is not followed by a NUL byte.
//   - ErrDimensionMismatch: the matrix does not match the expected size.
//   - ErrTooLarge: the header claims more than MaxPixels elements.
package snapshot
