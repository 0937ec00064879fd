package raster

import "fmt"

// Image is a decoded raster held top-down. Depth is the number of bytes per
// pixel: 3 for RGB, 4 for RGBA, 1 for palette indices into Palette.
type Image struct {
	Width   uint32
	Height  uint32
	Depth   uint8
	Data    []byte
	Palette []Color
}

// NewImage allocates a zero-filled image. Depth 1 images receive an empty
// palette; callers must populate it before reading colors.
func NewImage(w, h uint32, depth uint8) (*Image, error) {
	switch depth {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDepth, depth)
	}

	return &Image{
		Width:  w,
		Height: h,
		Depth:  depth,
		Data:   make([]byte, int(w)*int(h)*int(depth)),
	}, nil
}

// Dimensions returns the width and height of img.
func (img *Image) Dimensions() Dimensions {
	return Dimensions{W: img.Width, H: img.Height}
}

// Pitch is the number of bytes in one unpadded row.
func (img *Image) Pitch() int {
	return int(img.Width) * int(img.Depth)
}

// Validate checks depth, buffer size and palette presence.
func (img *Image) Validate() error {
	switch img.Depth {
	case 1:
		if len(img.Palette) == 0 {
			return ErrPaletteRequired
		}
	case 3, 4:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedDepth, img.Depth)
	}
	if want := img.Pitch() * int(img.Height); len(img.Data) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrDataSize, len(img.Data), want)
	}

	return nil
}

// ColorAt returns the color at (x,y). Palette indices outside of the palette
// resolve to BorderColor.
func (img *Image) ColorAt(x, y uint32) (Color, error) {
	if !img.Dimensions().Contains(x, y) {
		return Color{}, fmt.Errorf("%w: %v", ErrOutOfBounds, Point2D{x, y})
	}

	return img.colorAtIndex(img.Dimensions().Index(x, y))
}

// At is ColorAt for callers that have already validated the image and the
// coordinate; it never fails.
func (img *Image) At(x, y uint32) Color {
	c, _ := img.colorAtIndex(img.Dimensions().Index(x, y))

	return c
}

func (img *Image) colorAtIndex(idx int) (Color, error) {
	off := idx * int(img.Depth)
	switch img.Depth {
	case 3, 4:
		return Color{img.Data[off], img.Data[off+1], img.Data[off+2]}, nil
	case 1:
		if len(img.Palette) == 0 {
			return Color{}, ErrPaletteRequired
		}
		i := int(img.Data[off])
		if i >= len(img.Palette) {
			return BorderColor, nil
		}

		return img.Palette[i], nil
	default:
		return Color{}, fmt.Errorf("%w: %d", ErrUnsupportedDepth, img.Depth)
	}
}

// SetColor writes c at (x,y). Alpha of 4-byte images is set to opaque.
// Palette-indexed images cannot be written by color.
func (img *Image) SetColor(x, y uint32, c Color) error {
	if !img.Dimensions().Contains(x, y) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, Point2D{x, y})
	}
	off := img.Dimensions().Index(x, y) * int(img.Depth)
	switch img.Depth {
	case 3:
		img.Data[off], img.Data[off+1], img.Data[off+2] = c.R, c.G, c.B
	case 4:
		img.Data[off], img.Data[off+1], img.Data[off+2], img.Data[off+3] = c.R, c.G, c.B, 0xFF
	default:
		return fmt.Errorf("%w: cannot write colors into depth %d", ErrUnsupportedDepth, img.Depth)
	}

	return nil
}

// Fill paints every pixel of rect with c, clipping to the image.
func (img *Image) Fill(rect Rectangle, c Color) error {
	for y := rect.Y; y < rect.Y+rect.H && y < img.Height; y++ {
		for x := rect.X; x < rect.X+rect.W && x < img.Width; x++ {
			if err := img.SetColor(x, y, c); err != nil {
				return err
			}
		}
	}

	return nil
}
