// Package converters exports province adjacency to gonum/graph so the
// gonum algorithms can run over a segmented map.
//
//   - AdjacencyGraph builds a simple.UndirectedGraph with one node per
//     province (node IDs follow the byte order of province IDs) and one edge
//     per adjacent pair.
//   - Landmasses groups the provinces accepted by a filter into connected
//     components, largest first.
//
// Adjacency to provinces outside the input is ignored.
package converters
