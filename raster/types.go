package raster

import (
	"errors"
	"fmt"
)

// Sentinel errors for raster operations.
var (
	// ErrUnsupportedDepth indicates a depth other than 1, 3 or 4 bytes per pixel.
	ErrUnsupportedDepth = errors.New("raster: unsupported pixel depth")

	// ErrPaletteRequired indicates a palette-indexed image without a palette.
	ErrPaletteRequired = errors.New("raster: palette required for 1-byte-per-pixel image")

	// ErrDataSize indicates the pixel buffer does not match the dimensions.
	ErrDataSize = errors.New("raster: pixel buffer size does not match dimensions")

	// ErrOutOfBounds indicates a coordinate outside of the image.
	ErrOutOfBounds = errors.New("raster: coordinate out of bounds")
)

// Channel masks for a color packed as 0xRRGGBB.
const (
	RedMask   uint32 = 0xFF0000
	GreenMask uint32 = 0x00FF00
	BlueMask  uint32 = 0x0000FF
	ColorMask uint32 = 0xFFFFFF
)

// Color is a 24-bit RGB color. Equality is exact component match.
type Color struct {
	R, G, B uint8
}

// BorderColor marks pixels that belong to no region until they are
// reconciled by the shape finder.
var BorderColor = Color{0, 0, 0}

// RGB packs c as 0xRRGGBB.
func (c Color) RGB() uint32 {
	return (uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)) & ColorMask
}

// FromRGB unpacks a 0xRRGGBB value.
func FromRGB(rgb uint32) Color {
	return Color{
		R: uint8((rgb & RedMask) >> 16),
		G: uint8((rgb & GreenMask) >> 8),
		B: uint8(rgb & BlueMask),
	}
}

// String formats c as (r,g,b).
func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Point2D is a pixel coordinate.
type Point2D struct {
	X, Y uint32
}

// String formats p as (x,y).
func (p Point2D) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Pixel pairs a coordinate with the color found there.
type Pixel struct {
	Point Point2D
	Color Color
}

// Rectangle is an axis-aligned pixel rectangle anchored at its top-left corner.
type Rectangle struct {
	X, Y, W, H uint32
}

// Direction selects one of the four orthogonal neighbors.
type Direction int

const (
	// Left is (x-1, y).
	Left Direction = iota
	// Up is (x, y-1).
	Up
	// Right is (x+1, y).
	Right
	// Down is (x, y+1).
	Down
)

// Directions lists the four orthogonal directions in a fixed order.
var Directions = [4]Direction{Left, Up, Right, Down}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	default:
		return "invalid"
	}
}

// BoundingBox is the extent of a set of pixels in top-down coordinates.
// BottomLeft holds (min x, max y) and TopRight holds (max x, min y).
type BoundingBox struct {
	BottomLeft Point2D
	TopRight   Point2D
}

// BoundingBoxOf computes the bounding box of pixels directly from the list.
// An empty list yields the zero box.
func BoundingBoxOf(pixels []Pixel) BoundingBox {
	if len(pixels) == 0 {
		return BoundingBox{}
	}
	first := pixels[0].Point
	left, right := first.X, first.X
	top, bottom := first.Y, first.Y
	for _, px := range pixels[1:] {
		p := px.Point
		left = min(left, p.X)
		right = max(right, p.X)
		top = min(top, p.Y)
		bottom = max(bottom, p.Y)
	}

	return BoundingBox{
		BottomLeft: Point2D{X: left, Y: bottom},
		TopRight:   Point2D{X: right, Y: top},
	}
}

// Size returns the inclusive width and height spanned by the box.
func (b BoundingBox) Size() (w, h uint32) {
	return b.TopRight.X - b.BottomLeft.X + 1, b.BottomLeft.Y - b.TopRight.Y + 1
}
