package bmp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/provmap/raster"
)

// Encode serialises img as an uncompressed, bottom-up bitmap.
func Encode(img *raster.Image, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrCorruptHeader)
	}
	if err := img.Validate(); err != nil {
		if errors.Is(err, raster.ErrPaletteRequired) {
			return nil, fmt.Errorf("%w: %w", ErrPaletteRequired, err)
		}

		return nil, fmt.Errorf("bmp: encode: %w", err)
	}
	if img.Width == 0 || img.Height == 0 || img.Width > 1<<31-1 || img.Height > 1<<31-1 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrCorruptHeader, img.Width, img.Height)
	}
	if len(img.Palette) > 256 {
		return nil, fmt.Errorf("%w: %d palette entries", ErrCorruptHeader, len(img.Palette))
	}

	bitCount := uint16(img.Depth) * 8
	headerSize := o.Header.Size()
	var tableSize uint32
	if img.Depth == 1 {
		tableSize = uint32(len(img.Palette)) * 4
	}
	stride := rowStride(bitCount, img.Width)
	imageSize := stride * uint64(img.Height)
	offset := uint64(FileHeaderSize) + uint64(headerSize) + uint64(tableSize)
	if offset+imageSize > 1<<32-1 {
		return nil, fmt.Errorf("%w: %d bytes exceed the format limit", ErrCorruptHeader, offset+imageSize)
	}

	out := make([]byte, offset+imageSize)

	// 1. File header.
	out[0], out[1] = 'B', 'M'
	le.PutUint32(out[2:], uint32(len(out)))
	le.PutUint32(out[10:], uint32(offset))

	// 2. Info header.
	ih := out[FileHeaderSize:]
	le.PutUint32(ih[0:], headerSize)
	le.PutUint32(ih[4:], img.Width)
	le.PutUint32(ih[8:], img.Height)
	le.PutUint16(ih[12:], 1)
	le.PutUint16(ih[14:], bitCount)
	le.PutUint32(ih[16:], compressionRGB)
	le.PutUint32(ih[20:], uint32(imageSize))
	le.PutUint32(ih[24:], pixelsPerMeter)
	le.PutUint32(ih[28:], pixelsPerMeter)
	if img.Depth == 1 {
		le.PutUint32(ih[32:], uint32(len(img.Palette)))
	}
	if o.Header >= V4 {
		if img.Depth == 4 {
			le.PutUint32(ih[40:], 0x00FF0000)
			le.PutUint32(ih[44:], 0x0000FF00)
			le.PutUint32(ih[48:], 0x000000FF)
			le.PutUint32(ih[52:], 0xFF000000)
		}
		le.PutUint32(ih[56:], lcsSRGB)
	}
	if o.Header >= V5 {
		le.PutUint32(ih[108:], lcsGMImages)
	}

	// 3. Colour table, stored as B,G,R,0.
	table := out[FileHeaderSize+headerSize:]
	if img.Depth == 1 {
		for i, c := range img.Palette {
			table[i*4], table[i*4+1], table[i*4+2] = c.B, c.G, c.R
		}
	}

	// 4. Rows, last image row first.
	pitch := img.Pitch()
	for y := uint32(0); y < img.Height; y++ {
		src := img.Data[int(y)*pitch : int(y+1)*pitch]
		row := uint64(img.Height-1-y) * stride
		copyRow(out[offset+row:], src, img.Depth)
	}

	return out, nil
}

// Write encodes img to w.
func Write(w io.Writer, img *raster.Image, opts ...Option) error {
	data, err := Encode(img, opts...)
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("bmp: write: %w", err)
	}

	return nil
}

// WriteFile encodes img into the file at path, replacing it.
func WriteFile(path string, img *raster.Image, opts ...Option) error {
	data, err := Encode(img, opts...)
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("bmp: %w", err)
	}

	return nil
}
