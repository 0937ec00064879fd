package uniquecolor

import (
	"sync"

	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
)

// Generator hands out palette colours through one cursor per province type.
type Generator struct {
	mu       sync.Mutex
	palettes Palettes
	cursors  [len(province.Types)]int
}

// New returns a generator over the default palettes.
func New() *Generator {
	return NewWithPalettes(DefaultPalettes())
}

// NewWithPalettes returns a generator over p. The slices are not copied.
func NewWithPalettes(p Palettes) *Generator {
	return &Generator{palettes: p}
}

// Next returns the next colour for bias, falling back to the Unknown palette
// and finally to raster.BorderColor.
func (g *Generator) Next(bias province.Type) raster.Color {
	g.mu.Lock()
	defer g.mu.Unlock()

	if bias != province.Unknown && g.remaining(bias) > 0 {
		return g.take(bias)
	}
	if g.remaining(province.Unknown) > 0 {
		return g.take(province.Unknown)
	}

	return raster.BorderColor
}

// Reset rewinds the cursor of bias.
func (g *Generator) Reset(bias province.Type) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if valid(bias) {
		g.cursors[bias] = 0
	}
}

// ResetAll rewinds every cursor.
func (g *Generator) ResetAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursors = [len(province.Types)]int{}
}

// Mark is a saved set of cursor positions.
type Mark [len(province.Types)]int

// Mark returns the current cursor positions.
func (g *Generator) Mark() Mark {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Mark(g.cursors)
}

// Rewind moves every cursor back to m. Cursors already before m stay put.
func (g *Generator) Rewind(m Mark) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, c := range m {
		if c < g.cursors[i] {
			g.cursors[i] = c
		}
	}
}

// Remaining reports how many colours bias can still hand out before falling back.
func (g *Generator) Remaining(bias province.Type) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.remaining(bias)
}

// Exhaust moves the cursor of bias to the end of its palette.
func (g *Generator) Exhaust(bias province.Type) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if valid(bias) {
		g.cursors[bias] = len(g.palettes[bias])
	}
}

func valid(bias province.Type) bool {
	return int(bias) < len(province.Types)
}

func (g *Generator) remaining(bias province.Type) int {
	if !valid(bias) {
		return 0
	}

	return len(g.palettes[bias]) - g.cursors[bias]
}

func (g *Generator) take(bias province.Type) raster.Color {
	c := g.palettes[bias][g.cursors[bias]]
	g.cursors[bias]++

	return c
}
