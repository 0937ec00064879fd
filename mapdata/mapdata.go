// File: mapdata.go
// Role: The layer store: allocation, resize, close and per-layer views.
// Concurrency:
//   - mu guards the layer slices, the dimensions and the generation.

package mapdata

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
)

// ErrClosed is returned when operating on a closed store.
var ErrClosed = errors.New("mapdata: store closed")

// Layer names one buffer of the store.
type Layer int

const (
	Input Layer = iota
	Provinces
	ProvinceColors
	ProvinceOutlines
	Cities
	LabelMatrix
	StateIDMatrix
	HeightMap
	Rivers
	layerCount
)

var layerNames = [layerCount]string{
	"input", "provinces", "province-colors", "province-outlines", "cities",
	"label-matrix", "state-id-matrix", "heightmap", "rivers",
}

func (l Layer) String() string {
	if l < 0 || l >= layerCount {
		return fmt.Sprintf("layer(%d)", int(l))
	}

	return layerNames[l]
}

// Bytes per pixel of the byte-backed layers.
const (
	InputDepth   = 3
	ColorDepth   = 3
	OutlineDepth = 4
	CitiesDepth  = 3
	HeightDepth  = 1
	RiversDepth  = 1
)

// MapData is the layer store.
type MapData struct {
	mu     sync.RWMutex
	dims   raster.Dimensions
	gen    uint64
	closed bool

	input          []byte
	provinces      []province.ID
	provinceColors []byte
	outlines       []byte
	cities         []byte
	labels         []uint32
	stateIDs       []uint32
	heightMap      []byte
	rivers         []byte

	stateTag atomic.Uint64
}

// New allocates every layer at w×h.
func New(w, h uint32) *MapData {
	md := &MapData{}
	md.allocate(raster.Dimensions{W: w, H: h})

	return md
}

// allocate must be called with mu held for writing (or before publication).
func (md *MapData) allocate(d raster.Dimensions) {
	n := d.Area()
	md.dims = d
	md.input = make([]byte, n*InputDepth)
	md.provinces = make([]province.ID, n)
	md.provinceColors = make([]byte, n*ColorDepth)
	md.outlines = make([]byte, n*OutlineDepth)
	md.cities = make([]byte, n*CitiesDepth)
	md.labels = make([]uint32, n)
	md.stateIDs = make([]uint32, n)
	md.heightMap = make([]byte, n*HeightDepth)
	md.rivers = make([]byte, n*RiversDepth)
	md.gen++
}

// Dimensions returns the shared width and height.
func (md *MapData) Dimensions() raster.Dimensions {
	md.mu.RLock()
	defer md.mu.RUnlock()

	return md.dims
}

// Resize reallocates every layer at w×h, zero-filled. Previously taken
// views expire.
func (md *MapData) Resize(w, h uint32) error {
	md.mu.Lock()
	defer md.mu.Unlock()
	if md.closed {
		return ErrClosed
	}
	md.allocate(raster.Dimensions{W: w, H: h})

	return nil
}

// Close releases every layer. Views expire; further Resize calls fail.
func (md *MapData) Close() error {
	md.mu.Lock()
	defer md.mu.Unlock()
	if md.closed {
		return nil
	}
	md.closed = true
	md.gen++
	md.input, md.provinceColors, md.outlines, md.cities, md.heightMap, md.rivers = nil, nil, nil, nil, nil, nil
	md.provinces = nil
	md.labels, md.stateIDs = nil, nil

	return nil
}

// IsClosed reports whether Close was called.
func (md *MapData) IsClosed() bool {
	md.mu.RLock()
	defer md.mu.RUnlock()

	return md.closed
}

// Size returns the number of elements of layer: bytes for byte layers,
// IDs or labels otherwise.
func (md *MapData) Size(l Layer) int {
	md.mu.RLock()
	defer md.mu.RUnlock()
	if md.closed {
		return 0
	}
	n := md.dims.Area()
	switch l {
	case Input:
		return n * InputDepth
	case Cities:
		return n * CitiesDepth
	case ProvinceColors:
		return n * ColorDepth
	case ProvinceOutlines:
		return n * OutlineDepth
	case HeightMap:
		return n * HeightDepth
	case Rivers:
		return n * RiversDepth
	case Provinces, LabelMatrix, StateIDMatrix:
		return n
	default:
		return 0
	}
}

// MarkStateIDsUpdated bumps the state tag after a rebuild of StateIDMatrix.
func (md *MapData) MarkStateIDsUpdated() uint64 {
	return md.stateTag.Add(1)
}

// StateIDTag reports how many times StateIDMatrix has been rebuilt, letting
// readers detect a stale copy cheaply.
func (md *MapData) StateIDTag() uint64 {
	return md.stateTag.Load()
}

// Input returns a view of the source pixels (RGB).
func (md *MapData) Input() View[byte] {
	return newView(md, func() []byte { return md.input })
}

// Provinces returns a view of the per-pixel province IDs.
func (md *MapData) Provinces() View[province.ID] {
	return newView(md, func() []province.ID { return md.provinces })
}

// ProvinceColors returns a view of the per-pixel province display colours (RGB).
func (md *MapData) ProvinceColors() View[byte] {
	return newView(md, func() []byte { return md.provinceColors })
}

// ProvinceOutlines returns a view of the outline overlay (RGBA).
func (md *MapData) ProvinceOutlines() View[byte] {
	return newView(md, func() []byte { return md.outlines })
}

// Cities returns a view of the city layer (RGB).
func (md *MapData) Cities() View[byte] {
	return newView(md, func() []byte { return md.cities })
}

// LabelMatrix returns a view of the segmentation labels.
func (md *MapData) LabelMatrix() View[uint32] {
	return newView(md, func() []uint32 { return md.labels })
}

// StateIDMatrix returns a view of the per-pixel state IDs.
func (md *MapData) StateIDMatrix() View[uint32] {
	return newView(md, func() []uint32 { return md.stateIDs })
}

// HeightMap returns a view of the grey height map.
func (md *MapData) HeightMap() View[byte] {
	return newView(md, func() []byte { return md.heightMap })
}

// Rivers returns a view of the river layer.
func (md *MapData) Rivers() View[byte] {
	return newView(md, func() []byte { return md.rivers })
}

// LoadInput copies img into the Input layer, resizing the store to img.
// Palette and RGBA images are converted to RGB.
func (md *MapData) LoadInput(img *raster.Image) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("mapdata: load input: %w", err)
	}
	if err := md.Resize(img.Width, img.Height); err != nil {
		return err
	}
	buf, ok := md.Input().Acquire()
	if !ok {
		return ErrClosed
	}
	d := img.Dimensions()
	for i := 0; i < d.Area(); i++ {
		p := d.Coordinate(i)
		c := img.At(p.X, p.Y)
		buf[i*InputDepth], buf[i*InputDepth+1], buf[i*InputDepth+2] = c.R, c.G, c.B
	}

	return nil
}
