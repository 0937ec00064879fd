package shapefinder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/katalvlaran/provmap/raster"
	"github.com/katalvlaran/provmap/uniquecolor"
)

// Finder segments one image.
type Finder struct {
	img    *raster.Image
	dims   raster.Dimensions
	opts   Options
	log    *slog.Logger
	gen    *uniquecolor.Generator
	ownGen bool // gen was created by New

	labels       []uint32
	forest       *labelForest
	borderPixels []raster.Pixel
	labelColors  map[uint32]raster.Color
	shapes       []*Shape
	shapeIndex   map[uint32]int
	report       Report

	estop    atomic.Bool
	canceled atomic.Bool
	stage    atomic.Int32
}

// New prepares a Finder for img.
func New(img *raster.Image, opts ...Option) (*Finder, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if img.Width == 0 || img.Height == 0 {
		return nil, ErrEmptyImage
	}
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("shapefinder: %w", err)
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ownGen := o.Generator == nil
	if ownGen {
		o.Generator = uniquecolor.New()
	}
	dims := img.Dimensions()
	if o.MapData != nil && o.MapData.Dimensions() != dims {
		return nil, fmt.Errorf("%w: store %dx%d, image %dx%d",
			ErrDimensionMismatch, o.MapData.Dimensions().W, o.MapData.Dimensions().H, dims.W, dims.H)
	}

	return &Finder{
		img:    img,
		dims:   dims,
		opts:   o,
		log:    o.Logger.With("component", "shapefinder"),
		gen:    o.Generator,
		ownGen: ownGen,
		labels: make([]uint32, dims.Area()),
	}, nil
}

// FindAllShapes runs every stage and returns the shapes. A cancelled run
// returns (nil, nil).
func (f *Finder) FindAllShapes() ([]*Shape, error) {
	f.reset()
	if f.opts.Ctx.Err() != nil {
		f.Estop()
	} else {
		stop := context.AfterFunc(f.opts.Ctx, f.Estop)
		defer stop()
	}

	if f.ownGen {
		f.gen.ResetAll()
	}
	mark := f.gen.Mark()

	// 1. Provisional labels.
	f.setStage(StagePass1)
	borders := f.pass1()
	if f.consumeStop() {
		return nil, nil
	}
	f.borderPixels = make([]raster.Pixel, 0, borders)

	if f.opts.StageDir != "" {
		f.setStage(StageOutputPass1)
		f.labelColors[0] = raster.BorderColor
		f.opts.Sink.UpdateRect(raster.Rectangle{})
		if err := f.outputStage("labels1.bmp"); err != nil {
			return nil, err
		}
		if f.consumeStop() {
			return nil, nil
		}
	}

	// 2. Canonical labels and shapes. Preview colours of pass 1 are handed back.
	f.gen.Rewind(mark)
	f.setStage(StagePass2)
	f.pass2()
	if f.consumeStop() {
		return nil, nil
	}

	if f.opts.StageDir != "" {
		f.setStage(StageOutputPass2)
		f.opts.Sink.UpdateRect(raster.Rectangle{})
		if err := f.outputStage("labels2.bmp"); err != nil {
			return nil, err
		}
		if f.consumeStop() {
			return nil, nil
		}
	}

	// 3. Border pixels.
	f.setStage(StageMergeBorders)
	if err := f.mergeBorders(); err != nil {
		f.shapes = nil
		return nil, err
	}
	if f.consumeStop() {
		return nil, nil
	}

	// 4. Relabel, bounding boxes, warnings, adjacency.
	f.setStage(StageErrorCheck)
	f.finalize()
	if f.consumeStop() {
		return nil, nil
	}
	if err := f.publishLabels(); err != nil {
		return nil, err
	}

	f.setStage(StageDone)
	f.log.Info("segmentation done",
		"shapes", len(f.shapes),
		"border_pixels", len(f.borderPixels),
		"undersized", f.report.Undersized,
		"oversized", f.report.Oversized,
		"color_mismatches", f.report.ColorMismatches)

	return f.shapes, nil
}

func (f *Finder) reset() {
	clear(f.labels)
	f.forest = newLabelForest(len(f.labels) / 4)
	f.borderPixels = nil
	f.labelColors = make(map[uint32]raster.Color)
	f.shapes = nil
	f.shapeIndex = make(map[uint32]int)
	f.report = Report{}
	f.estop.Store(false)
	f.canceled.Store(false)
	f.setStage(StageStart)
}

// Estop requests cancellation of the running segmentation.
func (f *Finder) Estop() {
	f.estop.Store(true)
}

// stopped is polled once per pixel.
func (f *Finder) stopped() bool {
	return f.estop.Load()
}

// consumeStop clears a pending stop request and reports whether there was one.
func (f *Finder) consumeStop() bool {
	if !f.estop.CompareAndSwap(true, false) {
		return false
	}
	f.canceled.Store(true)
	f.shapes = nil
	f.log.Info("segmentation cancelled", "stage", f.Stage().String())

	return true
}

// Canceled reports whether the last run ended by cancellation.
func (f *Finder) Canceled() bool {
	return f.canceled.Load()
}

// Stage returns the current stage.
func (f *Finder) Stage() Stage {
	return Stage(f.stage.Load())
}

func (f *Finder) setStage(s Stage) {
	f.stage.Store(int32(s))
	f.log.Debug("stage", "stage", s.String())
}

// LabelMatrix returns the label of every pixel, row-major. The slice is
// owned by the Finder.
func (f *Finder) LabelMatrix() []uint32 {
	return f.labels
}

// BorderPixels returns the border pixels in raster order.
func (f *Finder) BorderPixels() []raster.Pixel {
	return f.borderPixels
}

// LabelColors returns the preview colour of each label.
func (f *Finder) LabelColors() map[uint32]raster.Color {
	return f.labelColors
}

// Shapes returns the shapes of the last completed run.
func (f *Finder) Shapes() []*Shape {
	return f.shapes
}

// Report returns the warning counts of the last run.
func (f *Finder) Report() Report {
	return f.report
}

// Image returns the segmented image.
func (f *Finder) Image() *raster.Image {
	return f.img
}

// publishLabels copies the label matrix into the MapData store, if any.
func (f *Finder) publishLabels() error {
	if f.opts.MapData == nil {
		return nil
	}
	dst, ok := f.opts.MapData.LabelMatrix().Acquire()
	if !ok || len(dst) != len(f.labels) {
		return ErrLayerUnavailable
	}
	copy(dst, f.labels)

	return nil
}
