package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/katalvlaran/provmap/bmp"
	"github.com/katalvlaran/provmap/converters"
	"github.com/katalvlaran/provmap/hierarchy"
	"github.com/katalvlaran/provmap/internal/config"
	"github.com/katalvlaran/provmap/internal/metrics"
	"github.com/katalvlaran/provmap/layers"
	"github.com/katalvlaran/provmap/mapdata"
	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
	"github.com/katalvlaran/provmap/shapefinder"
	"github.com/katalvlaran/provmap/snapshot"
)

var errCanceled = errors.New("provmap: segmentation cancelled")

// outlineColor is painted between provinces in the outline layer.
var outlineColor = raster.Color{R: 0xFF, G: 0xFF, B: 0xFF}

type pipeline struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Recorder
}

func (p *pipeline) run(ctx context.Context) error {
	p.metrics = metrics.New()
	defer p.writeMetrics()

	// 1. Input.
	img, err := bmp.ReadFile(p.cfg.Input, bmp.WithLogger(p.log))
	if err != nil {
		return err
	}
	p.log.Info("read input", "path", p.cfg.Input, "width", img.Width, "height", img.Height, "depth", img.Depth)
	md := mapdata.New(img.Width, img.Height)
	defer md.Close()
	if err := md.LoadInput(img); err != nil {
		return err
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return err
	}

	// 2. Segmentation.
	shapes, borders, err := p.segment(ctx, img, md)
	if err != nil {
		return err
	}
	provinces := shapefinder.Provinces(shapes)
	forest := hierarchy.New(provinces...)
	forest.SetLogger(p.log)

	// 3. Derived layers.
	lo := []layers.Option{layers.WithLogger(p.log), layers.WithWorkers(p.cfg.Workers)}
	if err := layers.RebuildProvinceLayers(md, shapes, lo...); err != nil {
		return err
	}
	if err := layers.RebuildOutlines(md, outlineColor, lo...); err != nil {
		return err
	}
	if err := layers.RebuildStateIDs(md, stateOf(forest), lo...); err != nil {
		return err
	}

	land := converters.Landmasses(provinces, converters.IsLand)
	p.log.Info("segmented",
		"provinces", len(provinces),
		"border_pixels", borders,
		"landmasses", len(land))

	// 4. Outputs.
	return p.writeOutputs(md, provinces)
}

// segment runs the finder and records the run.
func (p *pipeline) segment(ctx context.Context, img *raster.Image, md *mapdata.MapData) ([]*shapefinder.Shape, int, error) {
	opts := []shapefinder.Option{
		shapefinder.WithContext(ctx),
		shapefinder.WithMapData(md),
		shapefinder.WithMinShapeSize(p.cfg.MinShapeSize),
		shapefinder.WithLogger(p.log),
	}
	if p.cfg.StageOutput {
		opts = append(opts, shapefinder.WithStageOutput(p.cfg.OutputDir))
	}
	f, err := shapefinder.New(img, opts...)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	shapes, err := f.FindAllShapes()
	elapsed := time.Since(start)
	switch {
	case err != nil:
		p.metrics.ObserveRun(metrics.OutcomeError, elapsed, 0, 0, f.Report())
		return nil, 0, err
	case f.Canceled():
		p.metrics.ObserveRun(metrics.OutcomeCanceled, elapsed, 0, 0, f.Report())
		return nil, 0, errCanceled
	}
	borders := len(f.BorderPixels())
	p.metrics.ObserveRun(metrics.OutcomeOK, elapsed, len(shapes), borders, f.Report())

	return shapes, borders, nil
}

// stateOf resolves a province to the state of its merge root.
func stateOf(forest *hierarchy.Forest) func(province.ID) (province.StateID, bool) {
	return func(id province.ID) (province.StateID, bool) {
		root, err := forest.RootParentOf(id)
		if err != nil {
			return 0, false
		}
		p, ok := forest.Get(root)
		if !ok {
			return 0, false
		}
		return p.State, true
	}
}

func (p *pipeline) writeOutputs(md *mapdata.MapData, provinces []*province.Province) error {
	var snapOpts []snapshot.Option
	if p.cfg.Compress {
		snapOpts = append(snapOpts, snapshot.WithCompression())
	}
	dims := md.Dimensions()

	outputs := []struct {
		name  string
		write func(*os.File) error
	}{
		{"provinces.bmp", func(f *os.File) error {
			img, err := layers.ProvinceColorImage(md)
			if err != nil {
				return err
			}
			return bmp.Write(f, img, bmp.WithLogger(p.log))
		}},
		{"shapedata.bin", func(f *os.File) error {
			labels, ok := md.LabelMatrix().Acquire()
			if !ok {
				return layers.ErrViewExpired
			}
			return snapshot.WriteLabels(f, dims, labels, snapOpts...)
		}},
		{"provdata.bin", func(f *os.File) error {
			ids, ok := md.Provinces().Acquire()
			if !ok {
				return layers.ErrViewExpired
			}
			return snapshot.WriteProvinceIDs(f, dims, ids, snapOpts...)
		}},
		{"definition.csv", func(f *os.File) error {
			return province.WriteRecords(f, provinces)
		}},
	}

	for _, out := range outputs {
		start := time.Now()
		if err := writeFile(filepath.Join(p.cfg.OutputDir, out.name), out.write); err != nil {
			return fmt.Errorf("provmap: write %s: %w", out.name, err)
		}
		p.metrics.ObserveOutput(out.name, time.Since(start))
		p.log.Info("wrote output", "file", out.name)
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func (p *pipeline) writeMetrics() {
	if p.cfg.MetricsFile == "" {
		return
	}
	if err := p.metrics.WriteTextfile(p.cfg.MetricsFile); err != nil {
		p.log.Error("failed to write metrics", "path", p.cfg.MetricsFile, "error", err)
	}
}
