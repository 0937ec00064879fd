// Package shapefinder segments a painted province map into shapes using
// two-pass connected-component labeling (CCL) with union-find, then hands
// every border pixel to a neighbouring shape and computes adjacency.
//
// What:
//
//   - Pass 1 scans in raster order and gives every non-border pixel a
//     provisional label, adopting the label of a same-coloured LEFT or UP
//     neighbour. When both apply and differ, the two label trees are united
//     with the larger root pointing at the smaller.
//   - Pass 2 resolves each label to its root and appends the pixel to the
//     Shape of that root. Border pixels are collected in raster order.
//   - Merge borders assigns every border pixel to the shape of its LEFT, UP
//     or DOWN neighbour, whichever is first to carry a label, or else to the
//     first non-border pixel found scanning forward. An image with no
//     non-border pixel at all is rejected with ErrDegenerateImage.
//   - Finalize relabels shapes 1..N in creation order, rewrites the label
//     matrix to match, recomputes bounding boxes from the final pixel lists,
//     warns about undersized and oversized shapes and fills the adjacency
//     sets, always in both directions.
//
// Stages:
//
//	START → PASS1 → [OUTPUT_PASS1] → PASS2 → [OUTPUT_PASS2]
//	      → MERGE_BORDERS → ERROR_CHECK → DONE
//
// Cancellation:
//
// Estop (or cancelling the context passed with WithContext) is polled once
// per pixel. A cancelled run returns (nil, nil); Canceled reports it.
//
// Options:
//
//   - WithSink(s):           progress callbacks (default NopSink).
//   - WithGenerator(g):      unique colour source (default uniquecolor.New()).
//   - WithMapData(md):       copy the final label matrix into md.
//   - WithMinShapeSize(n):   undersized warning threshold (default 8).
//   - WithStageOutput(dir):  write labels1.bmp / labels2.bmp into dir.
//   - WithLogger(l):         structured logger (default slog.Default()).
//   - WithContext(ctx):      cancellation source.
//
// Errors:
//
//   - ErrNilImage, ErrEmptyImage: nothing to segment.
//   - ErrDimensionMismatch: the MapData store differs in size from the image.
//   - ErrDegenerateImage: every pixel is a border pixel.
//   - ErrLayerUnavailable: the MapData label layer could not be acquired.
//
// Complexity: O(W×H·α(W×H)) time, O(W×H) memory.
// Concurrency: a Finder runs one segmentation at a time; Estop may be called
// from any goroutine. The sink is invoked synchronously.
package shapefinder
