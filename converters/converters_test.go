package converters_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/katalvlaran/provmap/converters"
	"github.com/katalvlaran/provmap/province"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds provinces with ascending IDs; link connects i and j both ways.
func chain(n int) []*province.Province {
	ps := make([]*province.Province, n)
	for i := range ps {
		ps[i] = province.New(uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1)))
		ps[i].Type = province.Land
	}

	return ps
}

func link(ps []*province.Province, i, j int) {
	ps[i].Adjacent.Add(ps[j].ID)
	ps[j].Adjacent.Add(ps[i].ID)
}

func TestAdjacencyGraph(t *testing.T) {
	ps := chain(4)
	link(ps, 0, 1)
	link(ps, 1, 2)
	ps[3].Adjacent.Add(uuid.New()) // outside the input
	ps[3].Adjacent.Add(ps[3].ID)

	g, ids := converters.AdjacencyGraph([]*province.Province{ps[2], ps[0], ps[3], ps[1]})
	require.Equal(t, 4, g.Nodes().Len())
	assert.Equal(t, 2, g.Edges().Len())
	for i, p := range ps {
		assert.Equal(t, p.ID, ids[int64(i)])
	}
	assert.True(t, g.HasEdgeBetween(0, 1))
	assert.True(t, g.HasEdgeBetween(2, 1))
	assert.False(t, g.HasEdgeBetween(0, 2))
	assert.Zero(t, g.From(3).Len())
}

func TestLandmasses(t *testing.T) {
	ps := chain(6)
	link(ps, 0, 1)
	link(ps, 1, 2) // 2 is sea and splits nothing: 0-1 stay together
	link(ps, 3, 4)
	link(ps, 4, 5)
	ps[2].Type = province.Sea

	groups := converters.Landmasses(ps, converters.IsLand)
	require.Len(t, groups, 2)
	assert.Equal(t, []province.ID{ps[3].ID, ps[4].ID, ps[5].ID}, groups[0])
	assert.Equal(t, []province.ID{ps[0].ID, ps[1].ID}, groups[1])

	all := converters.Landmasses(ps, nil)
	require.Len(t, all, 2)
	assert.Len(t, all[0], 3)
	assert.Equal(t, ps[0].ID, all[0][0], "equal sizes order by smallest ID")
}
