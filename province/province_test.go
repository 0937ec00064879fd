package province_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	cases := []struct {
		rgb  uint32
		want province.Type
	}{
		{0xFF0000, province.Land},
		{0x0000FF, province.Sea},
		{0x00FF00, province.Lake},
		{0x001000, province.Land},
		{0x002000, province.Lake},
		{0x003000, province.Sea},
		{0x000000, province.Unknown},
		{0x123456 &^ province.TypeMask, province.Unknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, province.TypeOf(raster.FromRGB(tc.rgb)), "%06x", tc.rgb)
	}
}

func TestClassify_BitFields(t *testing.T) {
	// terrain 6 (plains), coastal, continent 5, land, state 0xABC
	rgb := uint32(6)<<18 | province.CoastalMask | uint32(5)<<14 | uint32(1)<<12 | 0xABC
	p := province.New(province.NewID())
	p.SourceColor = raster.FromRGB(rgb)
	province.Classify(p)

	assert.Equal(t, province.Land, p.Type)
	assert.True(t, p.Coastal)
	assert.Equal(t, "plains", p.Terrain)
	assert.Equal(t, "5", p.Continent)
	assert.Equal(t, province.StateID(0xABC), p.State)

	// Terrain indices past the default table fall back to unknown.
	assert.Equal(t, province.UnknownTerrain, province.TerrainOf(raster.FromRGB(0xFC0000)))
	assert.False(t, province.IsCoastal(raster.FromRGB(0xFD0000)))
}

func TestParseType(t *testing.T) {
	for _, ty := range province.Types {
		assert.Equal(t, ty, province.ParseType(ty.String()))
	}
	assert.Equal(t, province.Sea, province.ParseType(" SEA "))
	assert.Equal(t, province.Unknown, province.ParseType("swamp"))
}

func TestDefaultTerrains_Copy(t *testing.T) {
	a := province.DefaultTerrains()
	require.Len(t, a, 14)
	a[0] = "changed"
	assert.Equal(t, "unknown", province.DefaultTerrains()[0])
}

func TestRecords_WriteRead(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	p := province.New(id)
	p.UniqueColor = raster.Color{R: 1, G: 22, B: 255}
	p.Type = province.Lake
	p.Coastal = true
	p.Terrain = "lakes"
	p.Continent = "3"
	p.BoundingBox = raster.BoundingBox{
		BottomLeft: raster.Point2D{X: 4, Y: 9},
		TopRight:   raster.Point2D{X: 8, Y: 2},
	}
	p.State = 17

	var buf bytes.Buffer
	require.NoError(t, province.WriteRecords(&buf, []*province.Province{p}))
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8;1;22;255;lake;true;lakes;3;4;9;8;2;17\n", buf.String())

	got, err := province.ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p, got[0])
}

func TestReadRecords_Malformed(t *testing.T) {
	good := "6ba7b810-9dad-11d1-80b4-00c04fd430c8;1;2;3;land;false;plains;1;0;0;0;0;0"
	cases := map[string]string{
		"short":       "6ba7b810-9dad-11d1-80b4-00c04fd430c8;1;2;3",
		"bad id":      "nope;1;2;3;land;false;plains;1;0;0;0;0;0",
		"bad colour":  "6ba7b810-9dad-11d1-80b4-00c04fd430c8;256;2;3;land;false;plains;1;0;0;0;0;0",
		"bad coastal": "6ba7b810-9dad-11d1-80b4-00c04fd430c8;1;2;3;land;maybe;plains;1;0;0;0;0;0",
		"bad state":   "6ba7b810-9dad-11d1-80b4-00c04fd430c8;1;2;3;land;false;plains;1;0;0;0;0;-1",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := province.ReadRecords(strings.NewReader(good + "\n" + line + "\n"))
			require.ErrorIs(t, err, province.ErrMalformedRecord)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestSet_Sorted(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	s := province.Set{}
	s.Add(a)
	s.Add(b)
	assert.True(t, s.Has(a))
	assert.Equal(t, []province.ID{b, a}, s.Sorted())
}
