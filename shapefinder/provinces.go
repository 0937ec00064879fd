package shapefinder

import "github.com/katalvlaran/provmap/province"

// Provinces derives one province per shape. Each province keeps the shape's
// ID, colours and bounding box; type, coastal flag, terrain, continent and
// state are decoded from the source colour. Adjacent labels that match no
// shape in shapes are dropped.
func Provinces(shapes []*Shape) []*province.Province {
	byLabel := make(map[uint32]province.ID, len(shapes))
	for _, s := range shapes {
		byLabel[s.Label] = s.ID
	}

	out := make([]*province.Province, 0, len(shapes))
	for _, s := range shapes {
		p := province.New(s.ID)
		p.UniqueColor = s.UniqueColor
		p.SourceColor = s.Color
		p.Label = s.Label
		p.BoundingBox = s.BoundingBox
		province.Classify(p)
		for label := range s.Adjacent {
			if id, ok := byLabel[label]; ok && id != s.ID {
				p.Adjacent.Add(id)
			}
		}
		out = append(out, p)
	}

	return out
}
