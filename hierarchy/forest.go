package hierarchy

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/katalvlaran/provmap/province"
)

// Sentinel errors for forest operations.
var (
	ErrNotFound      = errors.New("hierarchy: province not found")
	ErrSameProvince  = errors.New("hierarchy: cannot merge a province with itself")
	ErrAlreadyMerged = errors.New("hierarchy: provinces are already merged")
	ErrUnexpected    = errors.New("hierarchy: malformed parent link")
)

// MaxDumpDepth bounds the recursion of Dump.
const MaxDumpDepth = 16

// Forest indexes provinces by ID and edits their merge links.
type Forest struct {
	mu        sync.RWMutex
	provinces map[province.ID]*province.Province
	log       *slog.Logger
}

// New builds a forest over provinces. Existing Parent/Children links are kept.
func New(provinces ...*province.Province) *Forest {
	f := &Forest{
		provinces: make(map[province.ID]*province.Province, len(provinces)),
		log:       slog.Default().With("component", "hierarchy"),
	}
	for _, p := range provinces {
		f.provinces[p.ID] = p.Normalize()
	}

	return f
}

// SetLogger replaces the logger used for dump diagnostics.
func (f *Forest) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	f.mu.Lock()
	f.log = l.With("component", "hierarchy")
	f.mu.Unlock()
}

// Add inserts or replaces p.
func (f *Forest) Add(p *province.Province) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provinces[p.ID] = p.Normalize()
}

// Get returns the province with id.
func (f *Forest) Get(id province.ID) (*province.Province, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.provinces[id]

	return p, ok
}

// Len returns the number of provinces.
func (f *Forest) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.provinces)
}

// IDs returns every ID in byte order.
func (f *Forest) IDs() []province.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]province.ID, 0, len(f.provinces))
	for id := range f.provinces {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, province.Compare)

	return ids
}

// Roots returns the IDs of all parentless provinces in byte order.
func (f *Forest) Roots() []province.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var ids []province.ID
	for id, p := range f.provinces {
		if !p.HasParent() {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, province.Compare)

	return ids
}

// RootParentOf returns the root of the tree containing id.
func (f *Forest) RootParentOf(id province.ID) (province.ID, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.root(id)
}

// root must be called with mu held. A walk longer than the forest is a cycle.
func (f *Forest) root(id province.ID) (province.ID, error) {
	cur := id
	for steps := 0; ; steps++ {
		p, ok := f.provinces[cur]
		if !ok {
			return province.InvalidID, fmt.Errorf("%w: %s", ErrNotFound, cur)
		}
		if !p.HasParent() {
			return cur, nil
		}
		if p.Parent == cur {
			return province.InvalidID, fmt.Errorf("%w: %s is its own parent", ErrUnexpected, cur)
		}
		if steps >= len(f.provinces) {
			return province.InvalidID, fmt.Errorf("%w: cycle above %s", ErrUnexpected, id)
		}
		cur = p.Parent
	}
}

// Merge hangs the root of a under the root of b. The absorbed subtree takes
// the state of b's root.
func (f *Forest) Merge(a, b province.ID) error {
	if a == b {
		return ErrSameProvince
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	ra, err := f.root(a)
	if err != nil {
		return err
	}
	rb, err := f.root(b)
	if err != nil {
		return err
	}
	if ra == rb {
		return fmt.Errorf("%w: %s and %s share root %s", ErrAlreadyMerged, a, b, ra)
	}

	child, parent := f.provinces[ra], f.provinces[rb]
	if err := f.checkSubtree(child); err != nil {
		return err
	}
	child.Parent = rb
	parent.Children.Add(ra)
	f.setState(child, parent.State)

	return nil
}

// checkSubtree verifies that every child link below p resolves.
func (f *Forest) checkSubtree(p *province.Province) error {
	_, err := f.walk(p.ID, func(*province.Province) {})

	return err
}

// setState copies state to p and everything below it.
func (f *Forest) setState(p *province.Province, state province.StateID) {
	_, _ = f.walk(p.ID, func(q *province.Province) { q.State = state })
}

// walk visits the subtree under id breadth first and returns its size.
func (f *Forest) walk(id province.ID, visit func(*province.Province)) (int, error) {
	queue := []province.ID{id}
	seen := map[province.ID]bool{id: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		p, ok := f.provinces[cur]
		if !ok {
			return len(seen), fmt.Errorf("%w: %s", ErrNotFound, cur)
		}
		visit(p)
		for _, c := range p.Children.Sorted() {
			if seen[c] {
				return len(seen), fmt.Errorf("%w: %s reached twice", ErrUnexpected, c)
			}
			seen[c] = true
			queue = append(queue, c)
		}
	}

	return len(seen), nil
}

// Unmerge detaches id from its tree. Afterwards id has no parent and no
// children. A province that is neither merged nor a root of others is
// left as it is.
func (f *Forest) Unmerge(id province.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.provinces[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	children := p.Children.Sorted()
	for _, c := range children {
		if _, ok := f.provinces[c]; !ok {
			return fmt.Errorf("%w: child %s of %s", ErrNotFound, c, id)
		}
	}

	switch {
	case p.HasParent():
		// 1. Children move up to the direct parent.
		parent, ok := f.provinces[p.Parent]
		if !ok {
			return fmt.Errorf("%w: parent %s of %s", ErrNotFound, p.Parent, id)
		}
		if p.Parent == id {
			return fmt.Errorf("%w: %s is its own parent", ErrUnexpected, id)
		}
		delete(parent.Children, id)
		for _, c := range children {
			f.provinces[c].Parent = parent.ID
			parent.Children.Add(c)
		}
	case len(children) > 0:
		// 2. The smallest child becomes the root of its siblings.
		heir := f.provinces[children[0]]
		heir.Parent = province.InvalidID
		for _, c := range children[1:] {
			f.provinces[c].Parent = heir.ID
			heir.Children.Add(c)
		}
	default:
		return nil
	}

	p.Parent = province.InvalidID
	clear(p.Children)

	return nil
}

// MergedGroup returns every province connected to id through parent and
// child links, starting with id, in breadth-first order.
func (f *Forest) MergedGroup(id province.ID) ([]province.ID, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, ok := f.provinces[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	order := []province.ID{id}
	seen := map[province.ID]bool{id: true}
	for i := 0; i < len(order); i++ {
		p, ok := f.provinces[order[i]]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, order[i])
		}
		next := p.Children.Sorted()
		if p.HasParent() {
			next = append([]province.ID{p.Parent}, next...)
		}
		for _, n := range next {
			if !seen[n] {
				seen[n] = true
				order = append(order, n)
			}
		}
	}

	return order, nil
}

// Dump renders the tree containing id, one province per line, children
// indented by two spaces.
func (f *Forest) Dump(id province.ID) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	root, err := f.root(id)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	f.dump(&sb, root, 0)

	return sb.String(), nil
}

func (f *Forest) dump(sb *strings.Builder, id province.ID, depth int) {
	indent := strings.Repeat("  ", depth)
	if depth > MaxDumpDepth {
		sb.WriteString(indent + "...\n")
		f.log.Warn("province tree deeper than dump limit", "id", id.String(), "limit", MaxDumpDepth)
		return
	}
	p, ok := f.provinces[id]
	if !ok {
		fmt.Fprintf(sb, "%s%s (missing)\n", indent, id)
		return
	}
	fmt.Fprintf(sb, "%s%s state=%d\n", indent, id, p.State)
	for _, c := range p.Children.Sorted() {
		f.dump(sb, c, depth+1)
	}
}
