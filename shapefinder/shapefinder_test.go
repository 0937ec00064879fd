package shapefinder_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/provmap/bmp"
	"github.com/katalvlaran/provmap/mapdata"
	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
	"github.com/katalvlaran/provmap/shapefinder"
	"github.com/katalvlaran/provmap/uniquecolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = raster.Color{R: 0xFF}
	blue = raster.Color{B: 0xFF}
)

func quiet() shapefinder.Option {
	return shapefinder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// paint builds a w×h RGB image filled with the border colour and paints
// the given rectangles.
func paint(t *testing.T, w, h uint32, rects map[raster.Rectangle]raster.Color) *raster.Image {
	t.Helper()
	img, err := raster.NewImage(w, h, 3)
	require.NoError(t, err)
	for r, c := range rects {
		require.NoError(t, img.Fill(r, c))
	}

	return img
}

// twoFields is a 10×10 map: red on columns 0..3, a border column at 4 and
// blue on columns 5..9, with border pixels at (5,0) and (6,0).
func twoFields(t *testing.T) *raster.Image {
	return paint(t, 10, 10, map[raster.Rectangle]raster.Color{
		{X: 0, Y: 0, W: 4, H: 10}: red,
		{X: 5, Y: 1, W: 5, H: 9}:  blue,
		{X: 7, Y: 0, W: 3, H: 1}:  blue,
	})
}

func run(t *testing.T, img *raster.Image, opts ...shapefinder.Option) (*shapefinder.Finder, []*shapefinder.Shape) {
	t.Helper()
	f, err := shapefinder.New(img, append([]shapefinder.Option{quiet()}, opts...)...)
	require.NoError(t, err)
	shapes, err := f.FindAllShapes()
	require.NoError(t, err)

	return f, shapes
}

func TestNew_Errors(t *testing.T) {
	_, err := shapefinder.New(nil)
	assert.ErrorIs(t, err, shapefinder.ErrNilImage)

	_, err = shapefinder.New(&raster.Image{Depth: 3})
	assert.ErrorIs(t, err, shapefinder.ErrEmptyImage)

	_, err = shapefinder.New(&raster.Image{Width: 2, Height: 2, Depth: 3, Data: make([]byte, 5)})
	assert.ErrorIs(t, err, raster.ErrDataSize)

	img := twoFields(t)
	_, err = shapefinder.New(img, shapefinder.WithMapData(mapdata.New(9, 10)))
	assert.ErrorIs(t, err, shapefinder.ErrDimensionMismatch)
}

// TestFindAllShapes_TwoFields is the end-to-end scenario: two fields split
// by a border column yield two adjacent shapes covering the image.
func TestFindAllShapes_TwoFields(t *testing.T) {
	f, shapes := run(t, twoFields(t))
	require.Len(t, shapes, 2)

	a, b := shapes[0], shapes[1]
	assert.Equal(t, red, a.Color)
	assert.Equal(t, blue, b.Color)
	assert.Equal(t, uint32(1), a.Label)
	assert.Equal(t, uint32(2), b.Label)
	assert.Contains(t, a.Adjacent, b.Label)
	assert.Contains(t, b.Adjacent, a.Label)
	assert.Equal(t, []uint32{2}, a.AdjacentLabels())

	// The border column joins A through LEFT; (5,0) and (6,0) have a border
	// pixel on their left and join B through DOWN.
	assert.Len(t, a.Pixels, 50)
	assert.Len(t, b.Pixels, 50)
	labels := f.LabelMatrix()
	assert.Equal(t, []uint32{1, 1, 1, 1, 1, 2, 2, 2, 2, 2}, labels[:10])
	assert.Equal(t, raster.BoundingBox{
		BottomLeft: raster.Point2D{X: 5, Y: 9},
		TopRight:   raster.Point2D{X: 9, Y: 0},
	}, b.BoundingBox)

	assert.Equal(t, shapefinder.StageDone, f.Stage())
	assert.False(t, f.Canceled())
	assert.Len(t, f.BorderPixels(), 12)
	assert.NotEqual(t, a.UniqueColor, b.UniqueColor)
	assert.Equal(t, a.UniqueColor, f.LabelColors()[1])
}

// TestFindAllShapes_NoBorderLabelsLeft checks that every pixel ends up in
// a shape and that labels and shapes correspond one to one.
func TestFindAllShapes_NoBorderLabelsLeft(t *testing.T) {
	img := paint(t, 16, 12, map[raster.Rectangle]raster.Color{
		{X: 0, Y: 0, W: 7, H: 5}:  red,
		{X: 8, Y: 0, W: 8, H: 5}:  blue,
		{X: 0, Y: 6, W: 16, H: 6}: {G: 0xFF},
		{X: 3, Y: 8, W: 2, H: 2}:  {R: 0x40, G: 0x10, B: 0x33},
	})
	f, shapes := run(t, img)
	require.Len(t, shapes, 4)

	labels := f.LabelMatrix()
	seen := make(map[uint32]int)
	for _, l := range labels {
		require.NotZero(t, l)
		seen[l]++
	}
	assert.Len(t, seen, len(shapes))

	total := 0
	for i, s := range shapes {
		assert.Equal(t, uint32(i+1), s.Label)
		assert.Equal(t, len(s.Pixels), seen[s.Label])
		total += len(s.Pixels)
	}
	assert.Equal(t, 16*12, total)
}

func TestFindAllShapes_AdjacencySymmetric(t *testing.T) {
	img := paint(t, 9, 9, map[raster.Rectangle]raster.Color{
		{X: 0, Y: 0, W: 9, H: 9}: red,
		{X: 4, Y: 4, W: 1, H: 1}: blue,
		{X: 0, Y: 8, W: 9, H: 1}: {R: 0x22, G: 0x22, B: 0x22},
	})
	_, shapes := run(t, img)
	require.Len(t, shapes, 3)

	byLabel := make(map[uint32]*shapefinder.Shape)
	for _, s := range shapes {
		byLabel[s.Label] = s
	}
	for _, s := range shapes {
		for l := range s.Adjacent {
			assert.Contains(t, byLabel[l].Adjacent, s.Label)
		}
	}
	// The single blue pixel only touches the red field.
	assert.Equal(t, []uint32{1}, shapes[1].AdjacentLabels())
}

// TestFindAllShapes_ForwardScan uses a two pixel wide border column. The
// right column has only border pixels to its LEFT, UP and DOWN, so the
// forward scan hands it to the next shape in raster order.
func TestFindAllShapes_ForwardScan(t *testing.T) {
	img := paint(t, 6, 3, map[raster.Rectangle]raster.Color{
		{X: 0, Y: 0, W: 2, H: 3}: red,
		{X: 4, Y: 0, W: 2, H: 3}: blue,
	})
	f, shapes := run(t, img)
	require.Len(t, shapes, 2)

	labels := f.LabelMatrix()
	for y := uint32(0); y < 3; y++ {
		row := labels[y*6 : (y+1)*6]
		assert.Equal(t, []uint32{1, 1, 1, 2, 2, 2}, row, "row %d", y)
	}
	assert.Len(t, shapes[0].Pixels, 9)
	assert.Len(t, shapes[1].Pixels, 9)
}

// TestFindAllShapes_BorderRunNotChained checks that border pixels never
// inherit a label from an earlier border pixel: a bottom border row
// below red and blue splits between them by column.
func TestFindAllShapes_BorderRunNotChained(t *testing.T) {
	img := paint(t, 6, 3, map[raster.Rectangle]raster.Color{
		{X: 0, Y: 0, W: 3, H: 2}: red,
		{X: 3, Y: 0, W: 3, H: 2}: blue,
		{X: 0, Y: 2, W: 1, H: 1}: red,
	})
	f, shapes := run(t, img)
	require.Len(t, shapes, 2)

	// (1,2) joins red through LEFT and (2,2) through UP. (3,2) has a border
	// pixel on its left and joins blue through UP.
	assert.Equal(t, []uint32{1, 1, 1, 2, 2, 2}, f.LabelMatrix()[12:])
	assert.Len(t, shapes[0].Pixels, 9)
	assert.Len(t, shapes[1].Pixels, 9)
}

func TestFindAllShapes_ColorMismatch(t *testing.T) {
	img := paint(t, 3, 1, map[raster.Rectangle]raster.Color{
		{X: 0, Y: 0, W: 1, H: 1}: red,
		{X: 1, Y: 0, W: 1, H: 1}: blue,
		{X: 2, Y: 0, W: 1, H: 1}: red,
	})
	f, shapes := run(t, img)
	require.Len(t, shapes, 3)
	assert.Equal(t, 2, f.Report().ColorMismatches)
	assert.Equal(t, 3, f.Report().Undersized)
}

func TestFindAllShapes_Degenerate(t *testing.T) {
	img := paint(t, 4, 4, nil)
	f, err := shapefinder.New(img, quiet())
	require.NoError(t, err)

	shapes, err := f.FindAllShapes()
	assert.ErrorIs(t, err, shapefinder.ErrDegenerateImage)
	assert.Nil(t, shapes)
	assert.False(t, f.Canceled())
}

func TestFindAllShapes_Oversized(t *testing.T) {
	img := paint(t, 16, 16, map[raster.Rectangle]raster.Color{
		{X: 0, Y: 0, W: 16, H: 16}: red,
		{X: 0, Y: 0, W: 1, H: 1}:   blue,
	})
	f, shapes := run(t, img, shapefinder.WithMinShapeSize(0))
	require.Len(t, shapes, 2)
	assert.Equal(t, 1, f.Report().Oversized)
	assert.Equal(t, 0, f.Report().Undersized)
}

type stopSink struct {
	shapefinder.NopSink
	f     *shapefinder.Finder
	calls int
}

func (s *stopSink) WriteDebugColor(uint32, uint32, raster.Color) {
	s.calls++
	if s.calls == 3 {
		s.f.Estop()
	}
}

func TestFindAllShapes_Estop(t *testing.T) {
	sink := &stopSink{}
	f, err := shapefinder.New(twoFields(t), quiet(), shapefinder.WithSink(sink))
	require.NoError(t, err)
	sink.f = f

	shapes, err := f.FindAllShapes()
	require.NoError(t, err)
	assert.Nil(t, shapes)
	assert.True(t, f.Canceled())
	assert.Equal(t, shapefinder.StagePass1, f.Stage())
	assert.Nil(t, f.Shapes())

	// The stop request was consumed; a second run completes.
	shapes, err = f.FindAllShapes()
	require.NoError(t, err)
	assert.Len(t, shapes, 2)
	assert.False(t, f.Canceled())
}

// TestFindAllShapes_LateEstop: a stop request that arrives between runs
// does not cancel the next run.
func TestFindAllShapes_LateEstop(t *testing.T) {
	f, err := shapefinder.New(twoFields(t), quiet())
	require.NoError(t, err)
	_, err = f.FindAllShapes()
	require.NoError(t, err)

	f.Estop()
	shapes, err := f.FindAllShapes()
	require.NoError(t, err)
	assert.Len(t, shapes, 2)
	assert.False(t, f.Canceled())
	assert.Equal(t, shapefinder.StageDone, f.Stage())
}

func TestFindAllShapes_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, err := shapefinder.New(twoFields(t), quiet(), shapefinder.WithContext(ctx))
	require.NoError(t, err)
	shapes, err := f.FindAllShapes()
	require.NoError(t, err)
	assert.Nil(t, shapes)
	assert.True(t, f.Canceled())
}

// TestFindAllShapes_SharedGenerator runs two finders on one generator and
// expects disjoint unique colours. A finder with its own generator repeats
// its colours on every run.
func TestFindAllShapes_SharedGenerator(t *testing.T) {
	g := uniquecolor.New()
	_, first := run(t, twoFields(t), shapefinder.WithGenerator(g))
	_, second := run(t, twoFields(t), shapefinder.WithGenerator(g))

	used := make(map[raster.Color]struct{})
	for _, s := range first {
		used[s.UniqueColor] = struct{}{}
	}
	for _, s := range second {
		assert.NotContains(t, used, s.UniqueColor)
	}

	f, err := shapefinder.New(twoFields(t), quiet())
	require.NoError(t, err)
	a, err := f.FindAllShapes()
	require.NoError(t, err)
	colors := []raster.Color{a[0].UniqueColor, a[1].UniqueColor}
	b, err := f.FindAllShapes()
	require.NoError(t, err)
	assert.Equal(t, colors, []raster.Color{b[0].UniqueColor, b[1].UniqueColor})
}

func TestFindAllShapes_MapData(t *testing.T) {
	md := mapdata.New(10, 10)
	f, _ := run(t, twoFields(t), shapefinder.WithMapData(md))

	labels, ok := md.LabelMatrix().Acquire()
	require.True(t, ok)
	assert.Equal(t, f.LabelMatrix(), labels)

	require.NoError(t, md.Close())
	_, err := f.FindAllShapes()
	assert.ErrorIs(t, err, shapefinder.ErrLayerUnavailable)
}

func TestFindAllShapes_StageOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stages")
	run(t, twoFields(t), shapefinder.WithStageOutput(dir))

	for _, name := range []string{"labels1.bmp", "labels2.bmp"} {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		require.NoError(t, err, name)

		img, err := bmp.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, uint32(10), img.Width)
		assert.Equal(t, uint32(10), img.Height)
		assert.Equal(t, raster.BorderColor, img.At(4, 0), "border pixels keep the border colour")
		assert.NotEqual(t, raster.BorderColor, img.At(1, 1))
	}
}

func TestFindAllShapes_PaletteImage(t *testing.T) {
	img := &raster.Image{
		Width: 4, Height: 2, Depth: 1,
		Data:    []byte{1, 1, 0, 2, 1, 1, 0, 2},
		Palette: []raster.Color{raster.BorderColor, red, blue},
	}
	_, shapes := run(t, img)
	require.Len(t, shapes, 2)
	assert.Equal(t, red, shapes[0].Color)
	assert.Len(t, shapes[0].Pixels, 6)
	assert.Len(t, shapes[1].Pixels, 2)
}

func TestProvinces(t *testing.T) {
	_, shapes := run(t, twoFields(t))
	provinces := shapefinder.Provinces(shapes)
	require.Len(t, provinces, 2)

	a, b := provinces[0], provinces[1]
	assert.Equal(t, shapes[0].ID, a.ID)
	assert.Equal(t, province.Land, a.Type)
	assert.Equal(t, province.Sea, b.Type)
	assert.Equal(t, shapes[0].UniqueColor, a.UniqueColor)
	assert.Equal(t, red, a.SourceColor)
	assert.Equal(t, shapes[1].BoundingBox, b.BoundingBox)
	assert.True(t, a.Adjacent.Has(b.ID))
	assert.True(t, b.Adjacent.Has(a.ID))
	assert.False(t, a.HasParent())
	assert.Empty(t, a.Children)
}
