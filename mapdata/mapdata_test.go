package mapdata_test

import (
	"sync"
	"testing"

	"github.com/katalvlaran/provmap/mapdata"
	"github.com/katalvlaran/provmap/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LayerSizes(t *testing.T) {
	md := mapdata.New(4, 3)
	assert.Equal(t, raster.Dimensions{W: 4, H: 3}, md.Dimensions())

	want := map[mapdata.Layer]int{
		mapdata.Input:            36,
		mapdata.Provinces:        12,
		mapdata.ProvinceColors:   36,
		mapdata.ProvinceOutlines: 48,
		mapdata.Cities:           36,
		mapdata.LabelMatrix:      12,
		mapdata.StateIDMatrix:    12,
		mapdata.HeightMap:        12,
		mapdata.Rivers:           12,
	}
	for l, n := range want {
		assert.Equal(t, n, md.Size(l), l.String())
	}

	labels, ok := md.LabelMatrix().Acquire()
	require.True(t, ok)
	assert.Len(t, labels, 12)
	ids, ok := md.Provinces().Acquire()
	require.True(t, ok)
	assert.Len(t, ids, 12)
	outlines, ok := md.ProvinceOutlines().Acquire()
	require.True(t, ok)
	assert.Len(t, outlines, 48)
}

// TestResize_ExpiresViews: a view taken before Resize must not hand out the
// old buffer, and all layers follow the new dimensions.
func TestResize_ExpiresViews(t *testing.T) {
	md := mapdata.New(2, 2)
	old := md.StateIDMatrix()
	buf, ok := old.Acquire()
	require.True(t, ok)
	buf[0] = 7

	require.NoError(t, md.Resize(5, 1))
	_, ok = old.Acquire()
	assert.False(t, ok)
	assert.True(t, old.Expired())

	fresh, ok := md.StateIDMatrix().Acquire()
	require.True(t, ok)
	assert.Len(t, fresh, 5)
	assert.Equal(t, uint32(0), fresh[0], "resize zero-fills")
	for l := mapdata.Input; l <= mapdata.Rivers; l++ {
		assert.NotZero(t, md.Size(l), l.String())
	}
	assert.Equal(t, 5*mapdata.InputDepth, md.Size(mapdata.Input))
}

func TestClose(t *testing.T) {
	md := mapdata.New(2, 2)
	v := md.Input()
	require.NoError(t, md.Close())
	require.NoError(t, md.Close())
	assert.True(t, md.IsClosed())
	assert.True(t, v.Expired())
	_, ok := md.Cities().Acquire()
	assert.False(t, ok)
	assert.ErrorIs(t, md.Resize(1, 1), mapdata.ErrClosed)
	assert.Zero(t, md.Size(mapdata.Input))

	var zero mapdata.View[byte]
	assert.True(t, zero.Expired())
}

func TestLoadInput(t *testing.T) {
	img, err := raster.NewImage(2, 1, 1)
	require.NoError(t, err)
	img.Palette = []raster.Color{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}
	img.Data = []byte{1, 0}

	md := mapdata.New(9, 9)
	require.NoError(t, md.LoadInput(img))
	assert.Equal(t, raster.Dimensions{W: 2, H: 1}, md.Dimensions())
	in, ok := md.Input().Acquire()
	require.True(t, ok)
	assert.Equal(t, []byte{4, 5, 6, 1, 2, 3}, in)
}

func TestStateTag(t *testing.T) {
	md := mapdata.New(1, 1)
	assert.Zero(t, md.StateIDTag())
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			md.MarkStateIDsUpdated()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(10), md.StateIDTag())
	assert.Equal(t, "province-outlines", mapdata.ProvinceOutlines.String())
	assert.Equal(t, "layer(99)", mapdata.Layer(99).String())
}

// TestConcurrentReaders acquires views while a writer resizes.
func TestConcurrentReaders(t *testing.T) {
	md := mapdata.New(8, 8)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if ids, ok := md.Provinces().Acquire(); ok {
					assert.NotEmpty(t, ids)
				}
			}
		}()
	}
	for j := 0; j < 10; j++ {
		require.NoError(t, md.Resize(uint32(8+j), 8))
	}
	wg.Wait()
}
