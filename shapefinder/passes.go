package shapefinder

import (
	"fmt"

	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
)

// pass1 assigns provisional labels and returns the number of border pixels.
func (f *Finder) pass1() int {
	f.log.Info("performing pass 1")

	borders := 0
	for y := uint32(0); y < f.dims.H; y++ {
		for x := uint32(0); x < f.dims.W; x++ {
			if f.stopped() {
				return 0
			}
			idx := f.dims.Index(x, y)
			color := f.img.At(x, y)
			if color == raster.BorderColor {
				f.labels[idx] = 0
				borders++
				continue
			}

			fresh := f.forest.next()
			label := fresh

			// 1. LEFT neighbour.
			if l, ok := f.sameColorLabel(raster.Point2D{X: x, Y: y}, raster.Left, color); ok {
				label = l
			}
			// 2. UP neighbour, uniting with LEFT when both apply.
			if u, ok := f.sameColorLabel(raster.Point2D{X: x, Y: y}, raster.Up, color); ok {
				switch {
				case label == fresh:
					label = u
				case label != u:
					label = f.forest.union(label, u)
				}
			}
			// 3. The counter only advances when the fresh label was kept.
			if label == fresh {
				f.forest.add()
			}
			f.labels[idx] = label

			c, seen := f.labelColors[label]
			if !seen {
				c = f.gen.Next(province.TypeOf(color))
				f.labelColors[label] = c
			}
			f.opts.Sink.WriteDebugColor(x, y, c)
		}
		f.opts.Sink.UpdateRect(raster.Rectangle{X: 0, Y: y, W: f.dims.W, H: 1})
	}

	return borders
}

// sameColorLabel returns the label of the neighbour of p in dir when that
// neighbour exists and carries color. A neighbour with another non-border
// colour is logged and treated as a border.
func (f *Finder) sameColorLabel(p raster.Point2D, dir raster.Direction, color raster.Color) (uint32, bool) {
	n, ok := f.dims.Neighbor(p, dir)
	if !ok {
		return 0, false
	}
	nc := f.img.At(n.X, n.Y)
	switch {
	case nc == raster.BorderColor:
		return 0, false
	case nc != color:
		f.report.ColorMismatches++
		f.log.Warn("multiple colours found in shape", "x", n.X, "y", n.Y, "color", nc.String(), "expected", color.String())
		return 0, false
	}

	return f.labels[f.dims.Index(n.X, n.Y)], true
}

// pass2 resolves every label to its root and assembles shapes. Border
// pixels are collected for mergeBorders.
func (f *Finder) pass2() {
	f.log.Info("performing pass 2")

	for y := uint32(0); y < f.dims.H; y++ {
		for x := uint32(0); x < f.dims.W; x++ {
			if f.stopped() {
				return
			}
			idx := f.dims.Index(x, y)
			px := raster.Pixel{Point: raster.Point2D{X: x, Y: y}, Color: f.img.At(x, y)}
			if px.Color == raster.BorderColor {
				f.borderPixels = append(f.borderPixels, px)
				continue
			}

			root := f.forest.find(f.labels[idx])
			f.labels[idx] = root
			f.opts.Sink.WriteDebugColor(x, y, f.labelColors[root])
			f.buildShape(root, px)
		}
		f.opts.Sink.UpdateRect(raster.Rectangle{X: 0, Y: y, W: f.dims.W, H: 1})
	}

	f.log.Info("generated shapes", "shapes", len(f.shapes))
}

// buildShape appends px to the shape of label, creating the shape on first sight.
func (f *Finder) buildShape(label uint32, px raster.Pixel) {
	i, ok := f.shapeIndex[label]
	if !ok {
		i = len(f.shapes)
		f.shapeIndex[label] = i
		f.shapes = append(f.shapes, &Shape{
			ID:          province.NewID(),
			Label:       label,
			Color:       px.Color,
			UniqueColor: f.gen.Next(province.TypeOf(px.Color)),
			Adjacent:    make(map[uint32]struct{}),
		})
	}
	f.shapes[i].Pixels = append(f.shapes[i].Pixels, px)
}

// mergeBorders hands every border pixel to a neighbouring shape. Only
// pixels that are not border-coloured in the image qualify as targets, so
// a border pixel never inherits the shape of an earlier border pixel.
func (f *Finder) mergeBorders() error {
	f.log.Info("performing pass 3", "border_pixels", len(f.borderPixels))

	mergeOrder := [...]raster.Direction{raster.Left, raster.Up, raster.Down}
	for _, px := range f.borderPixels {
		if f.stopped() {
			return nil
		}

		target, found := raster.Point2D{}, false
		for _, dir := range mergeOrder {
			n, ok := f.dims.Neighbor(px.Point, dir)
			if ok && f.img.At(n.X, n.Y) != raster.BorderColor {
				target, found = n, true
				break
			}
		}
		if !found {
			target, found = f.scanForward(px.Point)
			if f.stopped() {
				return nil
			}
		}
		if !found {
			f.log.Error("no further colour pixels found, check the input image", "x", px.Point.X, "y", px.Point.Y)
			return fmt.Errorf("%w: from %v", ErrDegenerateImage, px.Point)
		}

		label := f.labels[f.dims.Index(target.X, target.Y)]
		shape := f.shapes[f.shapeIndex[label]]
		shape.Pixels = append(shape.Pixels, px)
		f.labels[f.dims.Index(px.Point.X, px.Point.Y)] = label
		f.opts.Sink.WriteDebugColor(px.Point.X, px.Point.Y, shape.UniqueColor)
	}
	f.opts.Sink.UpdateRect(raster.Rectangle{W: f.dims.W, H: f.dims.H})

	return nil
}

// scanForward finds the first non-border pixel after p in raster order.
func (f *Finder) scanForward(p raster.Point2D) (raster.Point2D, bool) {
	for i := f.dims.Index(p.X, p.Y) + 1; i < len(f.labels); i++ {
		if f.stopped() {
			return raster.Point2D{}, false
		}
		q := f.dims.Coordinate(i)
		if f.img.At(q.X, q.Y) != raster.BorderColor {
			return q, true
		}
	}

	return raster.Point2D{}, false
}

// outputStage writes the preview colour of every label as a bitmap.
func (f *Finder) outputStage(name string) error {
	img, err := f.previewImage()
	if err != nil {
		return err
	}

	return f.writeStage(name, img)
}

func (f *Finder) previewImage() (*raster.Image, error) {
	img, err := raster.NewImage(f.dims.W, f.dims.H, 3)
	if err != nil {
		return nil, err
	}
	for i, label := range f.labels {
		c := f.labelColors[label]
		img.Data[i*3], img.Data[i*3+1], img.Data[i*3+2] = c.R, c.G, c.B
	}

	return img, nil
}
