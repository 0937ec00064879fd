package province

import (
	"math/bits"
	"strconv"

	"github.com/katalvlaran/provmap/raster"
)

// Bit fields packed into a source colour.
const (
	TerrainMask   uint32 = 0xFC0000
	CoastalMask   uint32 = 0x20000
	ContinentMask uint32 = 0x1C000
	TypeMask      uint32 = 0x3000
	StateMask     uint32 = 0xFFF
)

// UnknownTerrain is the terrain of provinces whose index has no name.
const UnknownTerrain = "unknown"

var defaultTerrains = []string{
	"unknown",
	"ocean",
	"lakes",
	"forest",
	"hills",
	"mountain",
	"plains",
	"urban",
	"jungle",
	"marsh",
	"desert",
	"water_fjords",
	"water_shallow_sea",
	"water_deep_ocean",
}

// DefaultTerrains returns the built-in terrain names indexed by terrain bits.
func DefaultTerrains() []string {
	out := make([]string, len(defaultTerrains))
	copy(out, defaultTerrains)

	return out
}

// field extracts a masked value shifted down to bit 0.
func field(c raster.Color, mask uint32) uint32 {
	return (c.RGB() & mask) >> bits.TrailingZeros32(mask)
}

// TypeOf classifies c. Pure red, blue and green map to land, sea and lake;
// every other colour uses its type bits.
func TypeOf(c raster.Color) Type {
	switch c.RGB() {
	case raster.RedMask:
		return Land
	case raster.BlueMask:
		return Sea
	case raster.GreenMask:
		return Lake
	}
	switch field(c, TypeMask) {
	case 1:
		return Land
	case 2:
		return Lake
	case 3:
		return Sea
	default:
		return Unknown
	}
}

// IsCoastal reports the coastal bit of c.
func IsCoastal(c raster.Color) bool {
	return field(c, CoastalMask) == 1
}

// TerrainOf names the terrain encoded in c.
func TerrainOf(c raster.Color) string {
	i := field(c, TerrainMask)
	if int(i) < len(defaultTerrains) {
		return defaultTerrains[i]
	}

	return UnknownTerrain
}

// ContinentOf returns the continent index of c in decimal.
func ContinentOf(c raster.Color) string {
	return strconv.FormatUint(uint64(field(c, ContinentMask)), 10)
}

// StateOf returns the state id bits of c.
func StateOf(c raster.Color) StateID {
	return field(c, StateMask)
}

// Classify fills the colour-derived fields of p from its SourceColor.
func Classify(p *Province) {
	c := p.SourceColor
	p.Type = TypeOf(c)
	p.Coastal = IsCoastal(c)
	p.Terrain = TerrainOf(c)
	p.Continent = ContinentOf(c)
	p.State = StateOf(c)
}
