package province

import (
	"bytes"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/katalvlaran/provmap/raster"
)

// ID identifies a province for its whole lifetime.
type ID = uuid.UUID

// InvalidID marks "no province", e.g. a root's parent.
var InvalidID = uuid.Nil

// NewID returns a fresh random identifier.
func NewID() ID {
	return uuid.New()
}

// StateID is the state a province belongs to; 0 means none.
type StateID = uint32

// Type classifies a province.
type Type uint8

const (
	Unknown Type = iota
	Land
	Sea
	Lake
)

// Types lists every Type in declaration order.
var Types = [4]Type{Unknown, Land, Sea, Lake}

// String returns the lowercase record spelling of t.
func (t Type) String() string {
	switch t {
	case Land:
		return "land"
	case Sea:
		return "sea"
	case Lake:
		return "lake"
	default:
		return "unknown"
	}
}

// ParseType is the inverse of String; unrecognised text is Unknown.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "land":
		return Land
	case "sea":
		return Sea
	case "lake":
		return Lake
	default:
		return Unknown
	}
}

// Set is an unordered set of province IDs.
type Set map[ID]struct{}

// Add inserts id.
func (s Set) Add(id ID) { s[id] = struct{}{} }

// Has reports membership.
func (s Set) Has(id ID) bool {
	_, ok := s[id]

	return ok
}

// Sorted returns the members in byte order of their IDs.
func (s Set) Sorted() []ID {
	ids := slices.Collect(maps.Keys(s))
	slices.SortFunc(ids, Compare)

	return ids
}

// Compare orders IDs by their raw bytes.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// Province is a classified region.
type Province struct {
	ID          ID
	UniqueColor raster.Color
	// SourceColor is the painted colour the shape was detected with.
	SourceColor raster.Color
	Type        Type
	Coastal     bool
	Terrain     string
	Continent   string
	State       StateID
	BoundingBox raster.BoundingBox
	// Label is the shape label the province was derived from; 0 when the
	// province was loaded from records.
	Label uint32

	Adjacent Set

	Parent   ID
	Children Set
}

// New returns a parentless province with empty sets.
func New(id ID) *Province {
	return &Province{
		ID:       id,
		Terrain:  UnknownTerrain,
		Adjacent: make(Set),
		Parent:   InvalidID,
		Children: make(Set),
	}
}

// HasParent reports whether p is merged under another province.
func (p *Province) HasParent() bool {
	return p.Parent != InvalidID
}

// Normalize allocates missing sets, for provinces built as literals.
func (p *Province) Normalize() *Province {
	if p.Adjacent == nil {
		p.Adjacent = make(Set)
	}
	if p.Children == nil {
		p.Children = make(Set)
	}

	return p
}
