package converters

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/katalvlaran/provmap/province"
)

// AdjacencyGraph returns the adjacency graph of provinces and the province
// ID behind every node ID.
func AdjacencyGraph(provinces []*province.Province) (*simple.UndirectedGraph, map[int64]province.ID) {
	sorted := slices.Clone(provinces)
	slices.SortFunc(sorted, func(a, b *province.Province) int { return province.Compare(a.ID, b.ID) })

	g := simple.NewUndirectedGraph()
	nodes := make(map[province.ID]int64, len(sorted))
	ids := make(map[int64]province.ID, len(sorted))
	for i, p := range sorted {
		n := int64(i)
		nodes[p.ID] = n
		ids[n] = p.ID
		g.AddNode(simple.Node(n))
	}
	for _, p := range sorted {
		u := nodes[p.ID]
		for adj := range p.Adjacent {
			v, ok := nodes[adj]
			if !ok || v == u {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		}
	}

	return g, ids
}

// Landmasses returns the connected groups of provinces accepted by keep,
// largest first; groups of equal size are ordered by their smallest ID.
// A nil keep accepts every province.
func Landmasses(provinces []*province.Province, keep func(*province.Province) bool) [][]province.ID {
	if keep == nil {
		keep = func(*province.Province) bool { return true }
	}
	var kept []*province.Province
	for _, p := range provinces {
		if keep(p) {
			kept = append(kept, p)
		}
	}

	g, ids := AdjacencyGraph(kept)
	var groups [][]province.ID
	for _, cc := range topo.ConnectedComponents(g) {
		group := make([]province.ID, len(cc))
		for i, n := range cc {
			group[i] = ids[n.ID()]
		}
		slices.SortFunc(group, province.Compare)
		groups = append(groups, group)
	}
	slices.SortFunc(groups, func(a, b []province.ID) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return province.Compare(a[0], b[0])
	})

	return groups
}

// IsLand accepts land provinces.
func IsLand(p *province.Province) bool {
	return p.Type == province.Land
}
