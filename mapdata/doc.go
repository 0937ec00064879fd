// Package mapdata owns the co-dimensioned rasters derived from one map:
// input pixels, per-pixel province IDs and colours, outline overlay,
// cities, label matrix, state-ID matrix, height map and rivers.
//
// Every layer shares one width/height pair. Resize reallocates all of them
// together, zero-filled, so no layer can diverge in dimension from another.
//
// Layers are handed out as View[T] values, never as owned slices. A view
// records the store generation it was taken at; Acquire fails once the store
// has been resized or closed, forcing callers to take a fresh view instead
// of writing into a stale buffer.
//
// Concurrency:
//   - The store is guarded by a sync.RWMutex. Acquire takes the read lock
//     only to check the generation; the returned slice is shared.
//   - By convention a single writer (segmentation or layer rebuild) mutates
//     a layer at a time. Readers must not hold a slice across a Resize.
package mapdata
