package bmp

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/provmap/raster"
)

var le = binary.LittleEndian

// Read decodes a bitmap from r.
func Read(r io.Reader, opts ...Option) (*raster.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("bmp: read: %w", err)
	}

	return Decode(data, opts...)
}

// ReadFile decodes the bitmap stored at path.
func ReadFile(path string, opts ...Option) (*raster.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bmp: %w", err)
	}

	return Decode(data, opts...)
}

// Decode parses a complete bitmap file held in data into a top-down image.
func Decode(data []byte, opts ...Option) (*raster.Image, error) {
	o := buildOptions(opts)

	fh, err := decodeFileHeader(data)
	if err != nil {
		return nil, err
	}
	ih, err := decodeInfoHeader(data[FileHeaderSize:])
	if err != nil {
		return nil, err
	}

	width, height, topDown, err := ih.dimensions()
	if err != nil {
		return nil, err
	}
	depth, err := ih.depth()
	if err != nil {
		return nil, err
	}

	// 1. Bit fields: V1 headers carry the three masks right after the header.
	cursor := uint64(FileHeaderSize) + uint64(ih.HeaderSize)
	if ih.Compression == compressionBitfields && ih.HeaderSize == V1HeaderSize {
		if uint64(len(data)) < cursor+12 {
			return nil, fmt.Errorf("%w: bit field masks", ErrTruncated)
		}
		ih.RedMask = le.Uint32(data[cursor:])
		ih.GreenMask = le.Uint32(data[cursor+4:])
		ih.BlueMask = le.Uint32(data[cursor+8:])
		cursor += 12
	}
	if err = ih.checkCompression(); err != nil {
		return nil, err
	}

	// 2. Colour table.
	var palette []raster.Color
	if depth == 1 {
		palette, cursor, err = decodePalette(data, ih, fh.DataOffset, cursor)
		if err != nil {
			return nil, err
		}
	}

	// 3. Gap between the tables and the pixels.
	switch off := uint64(fh.DataOffset); {
	case off < cursor:
		return nil, fmt.Errorf("%w: data offset %d inside headers ending at %d", ErrCorruptHeader, off, cursor)
	case off > cursor:
		o.Logger.Debug("bmp: skipping gap before pixel data", "from", cursor, "to", off)
	}

	// 4. Pixel rows.
	stride := rowStride(ih.BitCount, width)
	need := uint64(fh.DataOffset) + stride*uint64(height)
	if uint64(len(data)) < need {
		return nil, fmt.Errorf("%w: have %d bytes, pixel data needs %d", ErrTruncated, len(data), need)
	}

	img, err := raster.NewImage(width, height, depth)
	if err != nil {
		return nil, err
	}
	img.Palette = palette
	pitch := img.Pitch()
	for row := uint32(0); row < height; row++ {
		src := data[uint64(fh.DataOffset)+uint64(row)*stride:]
		y := row
		if !topDown {
			y = height - 1 - row
		}
		dst := img.Data[int(y)*pitch : int(y+1)*pitch]
		copyRow(dst, src, depth)
	}

	return img, nil
}

// copyRow copies one row of pixels swapping the first and third channel.
// The shorter of dst and src bounds the copy; the swap is its own inverse,
// so it serves both directions.
func copyRow(dst, src []byte, depth uint8) {
	n := min(len(dst), len(src))
	switch depth {
	case 1:
		copy(dst, src)
	case 3:
		for i := 0; i+2 < n; i += 3 {
			dst[i], dst[i+1], dst[i+2] = src[i+2], src[i+1], src[i]
		}
	case 4:
		for i := 0; i+3 < n; i += 4 {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
		}
	}
}

func decodeFileHeader(data []byte) (FileHeader, error) {
	var fh FileHeader
	if len(data) < FileHeaderSize {
		return fh, fmt.Errorf("%w: file header", ErrTruncated)
	}
	copy(fh.Type[:], data[0:2])
	if fh.Type != [2]byte{'B', 'M'} {
		return fh, ErrBadMagic
	}
	fh.FileSize = le.Uint32(data[2:])
	fh.Reserved1 = le.Uint16(data[6:])
	fh.Reserved2 = le.Uint16(data[8:])
	fh.DataOffset = le.Uint32(data[10:])

	return fh, nil
}

// decodeInfoHeader reads the common V1 prefix and then as many of the V4/V5
// extensions as HeaderSize announces.
func decodeInfoHeader(b []byte) (InfoHeader, error) {
	var ih InfoHeader
	if len(b) < 4 {
		return ih, fmt.Errorf("%w: info header size", ErrTruncated)
	}
	ih.HeaderSize = le.Uint32(b)
	switch ih.HeaderSize {
	case V1HeaderSize, V4HeaderSize, V5HeaderSize:
	default:
		return ih, fmt.Errorf("%w: %d bytes", ErrUnsupportedHeader, ih.HeaderSize)
	}
	if uint64(len(b)) < uint64(ih.HeaderSize) {
		return ih, fmt.Errorf("%w: info header", ErrTruncated)
	}

	ih.Width = int32(le.Uint32(b[4:]))
	ih.Height = int32(le.Uint32(b[8:]))
	ih.Planes = le.Uint16(b[12:])
	ih.BitCount = le.Uint16(b[14:])
	ih.Compression = le.Uint32(b[16:])
	ih.SizeImage = le.Uint32(b[20:])
	ih.XPelsPerMeter = int32(le.Uint32(b[24:]))
	ih.YPelsPerMeter = int32(le.Uint32(b[28:]))
	ih.ColorsUsed = le.Uint32(b[32:])
	ih.ColorsImportant = le.Uint32(b[36:])

	if ih.HeaderSize >= V4HeaderSize {
		ih.RedMask = le.Uint32(b[40:])
		ih.GreenMask = le.Uint32(b[44:])
		ih.BlueMask = le.Uint32(b[48:])
		ih.AlphaMask = le.Uint32(b[52:])
		ih.CSType = le.Uint32(b[56:])
		copy(ih.Endpoints[:], b[60:96])
		ih.GammaRed = le.Uint32(b[96:])
		ih.GammaGreen = le.Uint32(b[100:])
		ih.GammaBlue = le.Uint32(b[104:])
	}
	if ih.HeaderSize >= V5HeaderSize {
		ih.Intent = le.Uint32(b[108:])
		ih.ProfileData = le.Uint32(b[112:])
		ih.ProfileSize = le.Uint32(b[116:])
		ih.Reserved = le.Uint32(b[120:])
	}

	return ih, nil
}

func (ih InfoHeader) dimensions() (w, h uint32, topDown bool, err error) {
	if ih.Width <= 0 || ih.Height == 0 {
		return 0, 0, false, fmt.Errorf("%w: dimensions %dx%d", ErrCorruptHeader, ih.Width, ih.Height)
	}
	w = uint32(ih.Width)
	if ih.Height < 0 {
		// -MinInt32 overflows; reject it with the other corrupt sizes.
		if ih.Height == -1<<31 {
			return 0, 0, false, fmt.Errorf("%w: height %d", ErrCorruptHeader, ih.Height)
		}

		return w, uint32(-ih.Height), true, nil
	}

	return w, uint32(ih.Height), false, nil
}

func (ih InfoHeader) depth() (uint8, error) {
	switch ih.BitCount {
	case 8:
		return 1, nil
	case 24:
		return 3, nil
	case 32:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %d bits", ErrUnsupportedDepth, ih.BitCount)
	}
}

// checkCompression accepts BI_RGB and 32-bit BI_BITFIELDS with the default
// 8-8-8 channel layout.
func (ih InfoHeader) checkCompression() error {
	switch ih.Compression {
	case compressionRGB:
		return nil
	case compressionBitfields:
		if ih.BitCount == 32 && ih.RedMask == 0xFF0000 && ih.GreenMask == 0xFF00 && ih.BlueMask == 0xFF {
			return nil
		}

		return fmt.Errorf("%w: bit fields R=%#x G=%#x B=%#x at %d bits",
			ErrUnsupportedCompression, ih.RedMask, ih.GreenMask, ih.BlueMask, ih.BitCount)
	default:
		return fmt.Errorf("%w: method %d", ErrUnsupportedCompression, ih.Compression)
	}
}

// decodePalette reads the BGRX colour table at cursor. A zero ColorsUsed
// means 256 entries, limited to what fits before the pixel data.
func decodePalette(data []byte, ih InfoHeader, dataOffset uint32, cursor uint64) ([]raster.Color, uint64, error) {
	n := uint64(ih.ColorsUsed)
	if n > 256 {
		return nil, 0, fmt.Errorf("%w: %d palette entries", ErrCorruptHeader, n)
	}
	if n == 0 {
		if uint64(dataOffset) > cursor {
			n = min(256, (uint64(dataOffset)-cursor)/4)
		}
		if n == 0 {
			return nil, 0, ErrPaletteRequired
		}
	}
	end := cursor + 4*n
	if uint64(len(data)) < end {
		return nil, 0, fmt.Errorf("%w: colour table", ErrTruncated)
	}

	palette := make([]raster.Color, n)
	for i := range palette {
		e := data[cursor+uint64(i)*4:]
		palette[i] = raster.Color{R: e[2], G: e[1], B: e[0]}
	}

	return palette, end, nil
}
