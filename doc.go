// Package provmap turns a hand-painted province map into uniquely
// identified provinces with adjacency, and lets several detected provinces
// be merged into one logical province.
//
// Pipeline:
//
//	bmp.ReadFile ─▶ raster.Image ─▶ shapefinder.Finder ─▶ []*Shape
//	     ─▶ shapefinder.Provinces ─▶ hierarchy.Forest (merge/unmerge)
//	     ─▶ layers (province, outline and state rasters in mapdata.MapData)
//	     ─▶ snapshot / province records / bmp outputs
//
// Packages:
//
//	raster/      colours, points, bounding boxes and the in-memory image
//	bmp/         BMP codec (V1/V4/V5 headers, 8/24/32-bit)
//	uniquecolor/ deterministic per-type display colours
//	mapdata/     same-sized layer store with generation-checked views
//	shapefinder/ two-pass connected-component labeling with border merge
//	province/    province classification and semicolon records
//	hierarchy/   merge forest over province IDs
//	snapshot/    label and province-ID matrix snapshots (optional zstd)
//	parallel/    data-parallel slice transform
//	layers/      derived raster rebuilds
//	converters/  province adjacency as a gonum graph
//
// Quick ASCII example:
//
//	R R . B B        two provinces, one border column;
//	R R . B B   ─▶   the border joins the western province
//	R R . B B        and both list each other as adjacent.
//
// The provmap command in cmd/provmap wires everything together.
package provmap
