package bmp_test

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/katalvlaran/provmap/bmp"
	"github.com/katalvlaran/provmap/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"
)

// gradient builds a w×h image whose colors encode their coordinates, so any
// flip or channel swap shows up as a mismatch.
func gradient(t *testing.T, w, h uint32, depth uint8) *raster.Image {
	t.Helper()
	img, err := raster.NewImage(w, h, depth)
	require.NoError(t, err)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			require.NoError(t, img.SetColor(x, y, raster.Color{R: uint8(10 + x), G: uint8(100 + y), B: uint8(x*7 + y)}))
		}
	}

	return img
}

func paletted(t *testing.T) *raster.Image {
	t.Helper()
	img, err := raster.NewImage(5, 3, 1)
	require.NoError(t, err)
	img.Palette = []raster.Color{{R: 255}, {G: 255}, {B: 255}, {R: 12, G: 34, B: 56}}
	for i := range img.Data {
		img.Data[i] = byte(i % len(img.Palette))
	}

	return img
}

func TestRoundTrip_HeaderVersions(t *testing.T) {
	versions := []bmp.HeaderVersion{bmp.V1, bmp.V4, bmp.V5}
	for _, depth := range []uint8{3, 4} {
		for _, v := range versions {
			src := gradient(t, 5, 3, depth) // odd width forces row padding
			data, err := bmp.Encode(src, bmp.WithHeaderVersion(v))
			require.NoError(t, err)
			assert.Equal(t, v.Size(), binary.LittleEndian.Uint32(data[14:]))

			got, err := bmp.Decode(data)
			require.NoError(t, err, "depth %d header %d", depth, v)
			assert.Equal(t, src.Width, got.Width)
			assert.Equal(t, src.Height, got.Height)
			assert.Equal(t, src.Depth, got.Depth)
			assert.Equal(t, src.Data, got.Data, "depth %d header %d", depth, v)
		}
	}
}

func TestRoundTrip_Palette(t *testing.T) {
	src := paletted(t)
	data, err := bmp.Encode(src, bmp.WithHeaderVersion(bmp.V5))
	require.NoError(t, err)

	got, err := bmp.Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, src.Palette, got.Palette)
	assert.Equal(t, src.Data, got.Data)
}

// TestEncode_CrossCheck decodes our output with golang.org/x/image/bmp.
func TestEncode_CrossCheck(t *testing.T) {
	cases := map[string]*raster.Image{
		"rgb":     gradient(t, 7, 4, 3),
		"palette": paletted(t),
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := bmp.Encode(src)
			require.NoError(t, err)

			ref, err := xbmp.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, int(src.Width), ref.Bounds().Dx())
			require.Equal(t, int(src.Height), ref.Bounds().Dy())

			for y := uint32(0); y < src.Height; y++ {
				for x := uint32(0); x < src.Width; x++ {
					c := src.At(x, y)
					want := color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
					assert.Equal(t, want, color.RGBAModel.Convert(ref.At(int(x), int(y))), "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestDecode_TopDown(t *testing.T) {
	src := gradient(t, 2, 3, 3)
	data, err := bmp.Encode(src)
	require.NoError(t, err)

	// Negate the height: the stored rows are now read top-down, i.e. mirrored.
	height := int32(-3)
	binary.LittleEndian.PutUint32(data[22:], uint32(height))
	got, err := bmp.Decode(data)
	require.NoError(t, err)
	for y := uint32(0); y < 3; y++ {
		for x := uint32(0); x < 2; x++ {
			assert.Equal(t, src.At(x, 2-y), got.At(x, y))
		}
	}
}

func TestDecode_SkipsGapBeforePixels(t *testing.T) {
	src := gradient(t, 3, 2, 3)
	data, err := bmp.Encode(src)
	require.NoError(t, err)

	offset := binary.LittleEndian.Uint32(data[10:])
	gapped := make([]byte, 0, len(data)+8)
	gapped = append(gapped, data[:offset]...)
	gapped = append(gapped, make([]byte, 8)...)
	gapped = append(gapped, data[offset:]...)
	binary.LittleEndian.PutUint32(gapped[10:], offset+8)

	got, err := bmp.Decode(gapped)
	require.NoError(t, err)
	assert.Equal(t, src.Data, got.Data)
}

func TestDecode_Errors(t *testing.T) {
	rgb, err := bmp.Encode(gradient(t, 3, 2, 3))
	require.NoError(t, err)
	pal, err := bmp.Encode(paletted(t))
	require.NoError(t, err)

	patch := func(src []byte, off int, v uint32, size int) []byte {
		out := bytes.Clone(src)
		if size == 2 {
			binary.LittleEndian.PutUint16(out[off:], uint16(v))
		} else {
			binary.LittleEndian.PutUint32(out[off:], v)
		}

		return out
	}

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, bmp.ErrTruncated},
		{"short file header", rgb[:10], bmp.ErrTruncated},
		{"short info header", rgb[:30], bmp.ErrTruncated},
		{"short pixel data", rgb[:len(rgb)-1], bmp.ErrTruncated},
		{"bad magic", append([]byte("XX"), rgb[2:]...), bmp.ErrBadMagic},
		{"header size", patch(rgb, 14, 64, 4), bmp.ErrUnsupportedHeader},
		{"16 bit", patch(rgb, 28, 16, 2), bmp.ErrUnsupportedDepth},
		{"rle", patch(rgb, 30, 1, 4), bmp.ErrUnsupportedCompression},
		{"bitfields at 24 bit", patch(rgb, 30, 3, 4), bmp.ErrUnsupportedCompression},
		{"offset inside header", patch(rgb, 10, 20, 4), bmp.ErrCorruptHeader},
		{"zero width", patch(rgb, 18, 0, 4), bmp.ErrCorruptHeader},
		{"too many colours", patch(pal, 46, 300, 4), bmp.ErrCorruptHeader},
		{"no palette", patch(patch(pal, 46, 0, 4), 10, bmp.FileHeaderSize+bmp.V1HeaderSize, 4), bmp.ErrPaletteRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bmp.Decode(tc.data)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	noPalette, err := raster.NewImage(2, 2, 1)
	require.NoError(t, err)
	_, err = bmp.Encode(noPalette)
	assert.ErrorIs(t, err, bmp.ErrPaletteRequired)

	_, err = bmp.Encode(&raster.Image{Width: 0, Height: 0, Depth: 3})
	assert.ErrorIs(t, err, bmp.ErrCorruptHeader)

	var buf bytes.Buffer
	require.NoError(t, bmp.Write(&buf, gradient(t, 1, 1, 3)))
	assert.Equal(t, byte('B'), buf.Bytes()[0])
}
