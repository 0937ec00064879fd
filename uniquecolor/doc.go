// Package uniquecolor hands out distinct display colours for shapes.
//
// A Generator walks four palettes, one per province.Type, each with its own
// cursor. Next(bias) takes the next colour of the bias palette; an Unknown
// bias or an exhausted palette falls back to the Unknown palette, and when
// that is exhausted too Next returns raster.BorderColor. Next never fails.
//
// Default palettes:
//
//	Land    hue [70,155)
//	Sea     hue [175,255)
//	Lake    hue [256,335)
//	Unknown hue [0,69)
//
// Saturation spans [50,80)% and value [50,100)%. Duplicates are dropped
// keeping the first occurrence across all four partitions, so no colour
// appears in two palettes, and each palette is shuffled with a fixed seed.
// The palettes are built once per process on first use.
//
// Concurrency: a Generator is safe for concurrent use.
package uniquecolor
