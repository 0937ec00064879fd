package uniquecolor

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
)

// Palettes holds one colour list per province type, indexed by province.Type.
type Palettes [len(province.Types)][]raster.Color

// Seed shuffles the default palettes.
const Seed = 1622487670

const (
	maxHue        = 360
	minSaturation = 50
	maxSaturation = 80
	minValue      = 50
	maxValue      = 100
)

type hueRange struct{ lo, hi int }

// Partition order matters: earlier partitions keep shared colours.
var hueRanges = []struct {
	bias province.Type
	hues hueRange
}{
	{province.Land, hueRange{70, 155}},
	{province.Sea, hueRange{175, 255}},
	{province.Lake, hueRange{256, 335}},
	{province.Unknown, hueRange{0, 69}},
}

var (
	defaultOnce     sync.Once
	defaultPalettes Palettes
)

// DefaultPalettes returns the built-in palettes. The slices are shared;
// callers must not modify them.
func DefaultPalettes() Palettes {
	defaultOnce.Do(func() {
		defaultPalettes = buildPalettes(Seed)
	})

	return defaultPalettes
}

func buildPalettes(seed uint64) Palettes {
	var (
		out  Palettes
		seen = make(map[raster.Color]struct{})
	)
	for _, r := range hueRanges {
		var list []raster.Color
		for hue := r.hues.lo; hue < r.hues.hi; hue++ {
			for sat := minSaturation; sat < maxSaturation; sat++ {
				for val := minValue; val < maxValue; val++ {
					c := hsvToColor(float64(hue)/maxHue, float64(sat)/100, float64(val)/100)
					if _, dup := seen[c]; dup {
						continue
					}
					seen[c] = struct{}{}
					list = append(list, c)
				}
			}
		}
		rng := rand.New(rand.NewPCG(seed, uint64(r.bias)))
		rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
		out[r.bias] = list
	}

	return out
}

// hsvToColor converts h, s, v in [0,1] to 8-bit RGB, truncating 255*x.
func hsvToColor(h, s, v float64) raster.Color {
	if s == 0 {
		return raster.Color{R: channel(v), G: channel(v), B: channel(v)}
	}
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return raster.Color{R: channel(r), G: channel(g), B: channel(b)}
}

func channel(x float64) uint8 {
	return uint8(255 * x)
}
