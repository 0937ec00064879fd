package shapefinder

// labelForest is the union-find over provisional labels. parent[l] <= l
// holds for every label; a root is its own parent. Label 0 is the border
// label and never joins another tree.
type labelForest struct {
	parent []uint32
}

func newLabelForest(capacity int) *labelForest {
	f := &labelForest{parent: make([]uint32, 1, capacity+1)}

	return f
}

// next is the label that add would create.
func (f *labelForest) next() uint32 {
	return uint32(len(f.parent))
}

// add creates the next label as its own root.
func (f *labelForest) add() uint32 {
	l := f.next()
	f.parent = append(f.parent, l)

	return l
}

// find returns the root of l, halving the path as it goes.
func (f *labelForest) find(l uint32) uint32 {
	for f.parent[l] != l {
		f.parent[l] = f.parent[f.parent[l]]
		l = f.parent[l]
	}

	return l
}

// union joins the trees of a and b, linking the larger root under the
// smaller, and returns the surviving root.
func (f *labelForest) union(a, b uint32) uint32 {
	ra, rb := f.find(a), f.find(b)
	if ra == rb {
		return ra
	}
	if ra > rb {
		ra, rb = rb, ra
	}
	f.parent[rb] = ra

	return ra
}

// isRoot reports whether l has no parent.
func (f *labelForest) isRoot(l uint32) bool {
	return int(l) < len(f.parent) && f.parent[l] == l
}
