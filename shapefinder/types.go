package shapefinder

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/katalvlaran/provmap/mapdata"
	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
	"github.com/katalvlaran/provmap/uniquecolor"
)

// Sentinel errors for segmentation.
var (
	// ErrNilImage is returned by New for a nil image.
	ErrNilImage = errors.New("shapefinder: image is nil")

	// ErrEmptyImage is returned by New for a zero-sized image.
	ErrEmptyImage = errors.New("shapefinder: image has no pixels")

	// ErrDimensionMismatch indicates a MapData store of another size.
	ErrDimensionMismatch = errors.New("shapefinder: map data dimensions differ from image")

	// ErrDegenerateImage indicates that no non-border pixel exists to absorb borders.
	ErrDegenerateImage = errors.New("shapefinder: image contains only border pixels")

	// ErrLayerUnavailable indicates the MapData label layer expired.
	ErrLayerUnavailable = errors.New("shapefinder: label layer unavailable")
)

// DefaultMinShapeSize is the pixel count at or below which a shape is reported
// as undersized.
const DefaultMinShapeSize = 8

// Stage is the progress of a Finder.
type Stage int

const (
	StageStart Stage = iota
	StagePass1
	StageOutputPass1
	StagePass2
	StageOutputPass2
	StageMergeBorders
	StageErrorCheck
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "Start"
	case StagePass1:
		return "Pass 1"
	case StageOutputPass1:
		return "Output Pass 1"
	case StagePass2:
		return "Pass 2"
	case StageOutputPass2:
		return "Output Pass 2"
	case StageMergeBorders:
		return "Merge Borders"
	case StageErrorCheck:
		return "Error Checking"
	case StageDone:
		return "Done"
	default:
		return "Invalid"
	}
}

// Shape is one detected region.
type Shape struct {
	// ID is the permanent identity inherited by the derived province.
	ID province.ID
	// Label is the shape's value in the label matrix; 1..N after a run.
	Label  uint32
	Pixels []raster.Pixel
	// Color is the painted colour the shape was detected with.
	Color       raster.Color
	UniqueColor raster.Color
	BoundingBox raster.BoundingBox
	// Adjacent holds the labels of neighbouring shapes.
	Adjacent map[uint32]struct{}
}

// AdjacentLabels returns the neighbouring labels in ascending order.
func (s *Shape) AdjacentLabels() []uint32 {
	return slices.Sorted(maps.Keys(s.Adjacent))
}

// ProgressSink receives live preview updates. Implementations must return
// quickly; they run on the segmentation goroutine.
type ProgressSink interface {
	// WriteDebugColor reports the preview colour of one pixel.
	WriteDebugColor(x, y uint32, c raster.Color)
	// UpdateRect reports that a region of the preview changed.
	UpdateRect(r raster.Rectangle)
}

// NopSink discards progress.
type NopSink struct{}

func (NopSink) WriteDebugColor(uint32, uint32, raster.Color) {}
func (NopSink) UpdateRect(raster.Rectangle) {}

// Report counts the soft warnings of the last run.
type Report struct {
	ColorMismatches int
	Undersized      int
	Oversized       int
}

// Option configures a Finder.
type Option func(*Options)

// Options holds Finder parameters.
type Options struct {
	Sink         ProgressSink
	Generator    *uniquecolor.Generator
	MapData      *mapdata.MapData
	MinShapeSize int
	StageDir     string
	Logger       *slog.Logger
	Ctx          context.Context
}

// DefaultOptions returns a NopSink, no MapData, minimum size 8, no stage
// output, slog.Default() and context.Background(). The generator is created
// by New when none is given.
func DefaultOptions() Options {
	return Options{
		Sink:         NopSink{},
		MinShapeSize: DefaultMinShapeSize,
		Logger:       slog.Default(),
		Ctx:          context.Background(),
	}
}

// WithSink sets the progress sink.
func WithSink(s ProgressSink) Option {
	return func(o *Options) {
		if s != nil {
			o.Sink = s
		}
	}
}

// WithGenerator sets the unique colour generator. Pass the same generator to
// several finders to keep their colours apart: a run only hands back the
// preview colours it drew itself. A generator created by New is rewound at
// the start of every run.
func WithGenerator(g *uniquecolor.Generator) Option {
	return func(o *Options) {
		if g != nil {
			o.Generator = g
		}
	}
}

// WithMapData copies the final label matrix into md's LabelMatrix layer.
func WithMapData(md *mapdata.MapData) Option {
	return func(o *Options) {
		o.MapData = md
	}
}

// WithMinShapeSize sets the undersized warning threshold; negative values are ignored.
func WithMinShapeSize(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MinShapeSize = n
		}
	}
}

// WithStageOutput writes labels1.bmp and labels2.bmp into dir.
func WithStageOutput(dir string) Option {
	return func(o *Options) {
		o.StageDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithContext cancels the run when ctx is done.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}
