package shapefinder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/provmap/bmp"
	"github.com/katalvlaran/provmap/raster"
)

// finalize relabels shapes 1..N, recomputes bounding boxes, reports
// undersized and oversized shapes and computes adjacency.
func (f *Finder) finalize() {
	f.log.Info("performing error checks", "shapes", len(f.shapes))

	colors := make(map[uint32]raster.Color, len(f.shapes)+1)
	colors[0] = raster.BorderColor
	sizes := make([]float64, len(f.shapes))
	for i, s := range f.shapes {
		if f.stopped() {
			return
		}
		label := uint32(i + 1)
		s.Label = label
		colors[label] = s.UniqueColor
		for _, px := range s.Pixels {
			f.labels[f.dims.Index(px.Point.X, px.Point.Y)] = label
		}
		s.BoundingBox = raster.BoundingBoxOf(s.Pixels)
		sizes[i] = float64(len(s.Pixels))

		f.checkShape(s)
	}
	f.labelColors = colors
	f.shapeIndex = make(map[uint32]int, len(f.shapes))
	for i, s := range f.shapes {
		f.shapeIndex[s.Label] = i
	}

	if len(sizes) > 0 {
		mean, std := stat.MeanStdDev(sizes, nil)
		f.log.Info("shape sizes", "mean", mean, "stddev", std, "min_allowed", f.opts.MinShapeSize+1)
	}

	f.calculateAdjacencies()
}

// checkShape logs the soft warnings for one shape.
func (f *Finder) checkShape(s *Shape) {
	if len(s.Pixels) <= f.opts.MinShapeSize {
		f.report.Undersized++
		f.log.Warn("shape is below the minimum province size",
			"label", s.Label, "pixels", len(s.Pixels), "min", f.opts.MinShapeSize+1)
		if f.log.Enabled(f.opts.Ctx, slog.LevelDebug) {
			var sb strings.Builder
			for _, px := range s.Pixels {
				sb.WriteString(px.Point.String())
				sb.WriteByte(',')
			}
			f.log.Debug("undersized shape pixels", "label", s.Label, "pixels", sb.String())
		}
	}

	w, h := s.BoundingBox.Size()
	if tooLarge(w, h, f.dims) {
		f.report.Oversized++
		f.log.Warn("shape bounding box exceeds 1/8 of the image, check the province borders",
			"label", s.Label,
			"width", w, "height", h,
			"bottom_left", s.BoundingBox.BottomLeft.String(),
			"top_right", s.BoundingBox.TopRight.String())
	}
}

// tooLarge reports a span wider or taller than an eighth of the image.
func tooLarge(w, h uint32, d raster.Dimensions) bool {
	return uint64(w)*8 > uint64(d.W) || uint64(h)*8 > uint64(d.H)
}

// calculateAdjacencies marks two shapes adjacent when an orthogonal pair of
// their pixels differs in colour. Both sets are updated at once.
func (f *Finder) calculateAdjacencies() {
	for _, s := range f.shapes {
		for _, px := range s.Pixels {
			if f.stopped() {
				return
			}
			for _, dir := range raster.Directions {
				n, ok := f.dims.Neighbor(px.Point, dir)
				if !ok || f.img.At(n.X, n.Y) == px.Color {
					continue
				}
				other := f.labels[f.dims.Index(n.X, n.Y)]
				if other == 0 || other == s.Label {
					continue
				}
				s.Adjacent[other] = struct{}{}
				f.shapes[f.shapeIndex[other]].Adjacent[s.Label] = struct{}{}
			}
		}
	}
}

// writeStage stores a preview bitmap in the stage directory.
func (f *Finder) writeStage(name string, img *raster.Image) error {
	if err := os.MkdirAll(f.opts.StageDir, 0o755); err != nil {
		return fmt.Errorf("shapefinder: stage output: %w", err)
	}
	path := filepath.Join(f.opts.StageDir, name)
	if err := bmp.WriteFile(path, img, bmp.WithLogger(f.log)); err != nil {
		return fmt.Errorf("shapefinder: stage output: %w", err)
	}
	f.log.Info("wrote stage output", "path", path)

	return nil
}
