package layers

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/provmap/mapdata"
	"github.com/katalvlaran/provmap/parallel"
	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
	"github.com/katalvlaran/provmap/shapefinder"
)

// ErrViewExpired is returned when a layer view can no longer be acquired.
var ErrViewExpired = errors.New("layers: layer view expired")

// Option configures a rebuild.
type Option func(*Options)

// Options holds rebuild parameters.
type Options struct {
	Logger  *slog.Logger
	Workers int
}

// DefaultOptions logs to slog.Default() and lets parallel pick the workers.
func DefaultOptions() Options {
	return Options{Logger: slog.Default()}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithWorkers sets the worker count of parallel rebuilds.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.Logger = o.Logger.With("component", "layers")

	return o
}

func acquire[T any](v mapdata.View[T], l mapdata.Layer) ([]T, error) {
	buf, ok := v.Acquire()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewExpired, l)
	}

	return buf, nil
}

// RebuildProvinceLayers writes the Provinces, ProvinceColors and LabelMatrix
// layers from the pixel lists of shapes. Pixels outside the store are skipped.
func RebuildProvinceLayers(md *mapdata.MapData, shapes []*shapefinder.Shape, opts ...Option) error {
	o := buildOptions(opts)
	ids, err := acquire(md.Provinces(), mapdata.Provinces)
	if err != nil {
		return err
	}
	colors, err := acquire(md.ProvinceColors(), mapdata.ProvinceColors)
	if err != nil {
		return err
	}
	labels, err := acquire(md.LabelMatrix(), mapdata.LabelMatrix)
	if err != nil {
		return err
	}

	d := md.Dimensions()
	skipped := 0
	for _, s := range shapes {
		for _, px := range s.Pixels {
			if !d.Contains(px.Point.X, px.Point.Y) {
				skipped++
				continue
			}
			i := d.Index(px.Point.X, px.Point.Y)
			ids[i] = s.ID
			labels[i] = s.Label
			setRGB(colors, i, s.UniqueColor)
		}
	}
	if skipped > 0 {
		o.Logger.Warn("shape pixels outside the map", "pixels", skipped)
	}
	o.Logger.Debug("rebuilt province layers", "shapes", len(shapes))

	return nil
}

// RebuildFromLabels writes the Provinces and ProvinceColors layers from the
// LabelMatrix layer, matching labels against Province.Label. It returns the
// number of pixels whose label matched no province.
func RebuildFromLabels(md *mapdata.MapData, provinces []*province.Province, opts ...Option) (int, error) {
	o := buildOptions(opts)
	labels, err := acquire(md.LabelMatrix(), mapdata.LabelMatrix)
	if err != nil {
		return 0, err
	}
	ids, err := acquire(md.Provinces(), mapdata.Provinces)
	if err != nil {
		return 0, err
	}
	colors, err := acquire(md.ProvinceColors(), mapdata.ProvinceColors)
	if err != nil {
		return 0, err
	}

	var maxLabel uint32
	for _, p := range provinces {
		maxLabel = max(maxLabel, p.Label)
	}
	byLabel := make([]*province.Province, maxLabel+1)
	for _, p := range provinces {
		if p.Label != 0 {
			byLabel[p.Label] = p
		}
	}

	var missing atomic.Int64
	var unknown sync.Map
	err = parallel.Transform(labels, ids, func(l uint32) province.ID {
		if int(l) < len(byLabel) && byLabel[l] != nil {
			return byLabel[l].ID
		}
		missing.Add(1)
		unknown.LoadOrStore(l, struct{}{})
		return province.InvalidID
	}, parallel.WithWorkers(o.Workers))
	if err != nil {
		return 0, err
	}

	unknown.Range(func(k, _ any) bool {
		o.Logger.Warn("label outside the province range", "label", k.(uint32), "provinces", len(provinces))
		return true
	})
	for i, l := range labels {
		c := raster.BorderColor
		if int(l) < len(byLabel) && byLabel[l] != nil {
			c = byLabel[l].UniqueColor
		}
		setRGB(colors, i, c)
	}

	return int(missing.Load()), nil
}

// RebuildOutlines paints c with full alpha on every pixel whose province
// differs from its right or lower neighbour and clears every other pixel.
func RebuildOutlines(md *mapdata.MapData, c raster.Color, opts ...Option) error {
	o := buildOptions(opts)
	ids, err := acquire(md.Provinces(), mapdata.Provinces)
	if err != nil {
		return err
	}
	out, err := acquire(md.ProvinceOutlines(), mapdata.ProvinceOutlines)
	if err != nil {
		return err
	}

	d := md.Dimensions()
	edges := 0
	for i := range ids {
		p := d.Coordinate(i)
		edge := false
		for _, dir := range [...]raster.Direction{raster.Right, raster.Down} {
			if n, ok := d.Neighbor(p, dir); ok && ids[d.Index(n.X, n.Y)] != ids[i] {
				edge = true
				break
			}
		}
		px := out[i*mapdata.OutlineDepth : (i+1)*mapdata.OutlineDepth]
		if edge {
			px[0], px[1], px[2], px[3] = c.R, c.G, c.B, 0xFF
			edges++
		} else {
			clear(px)
		}
	}
	o.Logger.Debug("rebuilt outlines", "pixels", edges)

	return nil
}

// RebuildStateIDs fills StateIDMatrix from the Provinces layer through
// lookup and bumps the state tag. Pixels without a province get state 0
// silently; IDs unknown to lookup get state 0 and one warning each.
func RebuildStateIDs(md *mapdata.MapData, lookup func(province.ID) (province.StateID, bool), opts ...Option) error {
	o := buildOptions(opts)
	ids, err := acquire(md.Provinces(), mapdata.Provinces)
	if err != nil {
		return err
	}
	states, err := acquire(md.StateIDMatrix(), mapdata.StateIDMatrix)
	if err != nil {
		return err
	}

	var unknown sync.Map
	err = parallel.Transform(ids, states, func(id province.ID) uint32 {
		if id == province.InvalidID {
			return 0
		}
		s, ok := lookup(id)
		if !ok {
			unknown.LoadOrStore(id, struct{}{})
			return 0
		}
		return s
	}, parallel.WithWorkers(o.Workers))
	if err != nil {
		return err
	}

	var missing []province.ID
	unknown.Range(func(k, _ any) bool {
		missing = append(missing, k.(province.ID))
		return true
	})
	slices.SortFunc(missing, province.Compare)
	for _, id := range missing {
		o.Logger.Warn("province has no state", "id", id.String())
	}
	tag := md.MarkStateIDsUpdated()
	o.Logger.Debug("rebuilt state ids", "tag", tag, "unknown", len(missing))

	return nil
}

// ProvinceColorImage copies the ProvinceColors layer into a new RGB image.
func ProvinceColorImage(md *mapdata.MapData) (*raster.Image, error) {
	colors, err := acquire(md.ProvinceColors(), mapdata.ProvinceColors)
	if err != nil {
		return nil, err
	}
	d := md.Dimensions()
	img, err := raster.NewImage(d.W, d.H, mapdata.ColorDepth)
	if err != nil {
		return nil, err
	}
	copy(img.Data, colors)

	return img, nil
}

func setRGB(buf []byte, i int, c raster.Color) {
	buf[i*mapdata.ColorDepth] = c.R
	buf[i*mapdata.ColorDepth+1] = c.G
	buf[i*mapdata.ColorDepth+2] = c.B
}
