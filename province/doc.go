// Package province holds the semantic counterpart of a segmented shape:
// a Province with a permanent UUID identity, a type, terrain, continent
// and state, plus its place in the merge forest (Parent/Children).
//
// Classification:
//
// Source colours carry province attributes in packed bit fields:
//
//	0xFC0000  terrain index (6 bits)
//	0x020000  coastal flag
//	0x01C000  continent index (3 bits)
//	0x003000  type (0 unknown, 1 land, 2 lake, 3 sea)
//	0x000FFF  state id (12 bits)
//
// Pure red, blue and green are also recognised as land, sea and lake.
//
// Records:
//
// WriteRecords/ReadRecords move provinces to and from semicolon-delimited
// lines of the form
//
//	id;r;g;b;type;coastal;terrain;continent;bl.x;bl.y;tr.x;tr.y;state
//
// Errors:
//
//   - ErrMalformedRecord: a line could not be parsed; the error names the line.
package province
