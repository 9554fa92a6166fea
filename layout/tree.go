// Package layout holds the pane tree: a binary split tree stored in an arena, addressed by generational handles so
// that moving a pane around is a handful of index rewrites.
package layout

import (
	"iter"
)

type Axis uint8

const (
	// Horizontal splits with a horizontal divider: first child on top, second below.
	Horizontal Axis = iota
	// Vertical splits with a vertical divider: first child on the left, second on the right.
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis accepts "horizontal" and "vertical"; anything else is horizontal.
func ParseAxis(s string) Axis {
	if s == "vertical" {
		return Vertical
	}
	return Horizontal
}

const (
	DEFAULT_RATIO = 0.5
	// RatioEpsilon keeps both sides of a split from collapsing to nothing.
	RatioEpsilon = 0.01
)

const noNode = -1

type node[P any] struct {
	generation uint32
	live       bool
	parent     int

	// split nodes
	split  bool
	axis   Axis
	ratio  float32
	first  int
	second int

	// leaf nodes
	pane P
}

// Tree is a binary tree of panes. It always has at least one leaf.
type Tree[P any] struct {
	nodes  []node[P]
	free   []int
	root   int
	leaves int
}

func New[P any](pane P) *Tree[P] {
	t := &Tree[P]{}
	t.root = t.alloc()
	t.nodes[t.root].pane = pane
	t.leaves = 1
	return t
}

// Len returns the number of leaves.
func (t *Tree[P]) Len() int {
	return t.leaves
}

func (t *Tree[P]) Pane(h PaneHandle) (P, bool) {
	i, ok := t.leaf(h)
	if !ok {
		var zero P
		return zero, false
	}
	return t.nodes[i].pane, true
}

// Parent returns the split directly above a pane. The root pane has none.
func (t *Tree[P]) Parent(h PaneHandle) (SplitHandle, bool) {
	i, ok := t.leaf(h)
	if !ok || t.nodes[i].parent == noNode {
		return SplitHandle{}, false
	}
	return t.splitHandle(t.nodes[i].parent), true
}

func (t *Tree[P]) Ratio(s SplitHandle) (float32, bool) {
	i, ok := t.splitNode(s)
	if !ok {
		return 0, false
	}
	return t.nodes[i].ratio, true
}

func (t *Tree[P]) Axis(s SplitHandle) (Axis, bool) {
	i, ok := t.splitNode(s)
	if !ok {
		return Horizontal, false
	}
	return t.nodes[i].axis, true
}

// Split replaces target with a split holding target first and pane second.
func (t *Tree[P]) Split(target PaneHandle, axis Axis, pane P) (PaneHandle, error) {
	i, ok := t.leaf(target)
	if !ok {
		return PaneHandle{}, ErrUnknownPane
	}
	n := t.alloc()
	t.nodes[n].pane = pane
	t.insertBeside(i, n, axis, false)
	t.leaves++
	return t.paneHandle(n), nil
}

// Resize sets the ratio of a split, clamped into [RatioEpsilon, 1-RatioEpsilon].
func (t *Tree[P]) Resize(s SplitHandle, ratio float32) error {
	i, ok := t.splitNode(s)
	if !ok {
		return ErrUnknownSplit
	}
	t.nodes[i].ratio = clampRatio(ratio)
	return nil
}

// Close removes a pane and returns its content. The sibling takes over the space of the parent split.
func (t *Tree[P]) Close(h PaneHandle) (P, error) {
	var zero P
	i, ok := t.leaf(h)
	if !ok {
		return zero, ErrUnknownPane
	}
	if t.leaves == 1 {
		return zero, ErrLastPane
	}
	pane := t.nodes[i].pane
	t.detach(i)
	t.release(i)
	t.leaves--
	return pane, nil
}

// Drop moves source next to target. Center swaps the two panes; an edge region inserts source on that edge of target.
func (t *Tree[P]) Drop(source, target PaneHandle, region Region) error {
	si, ok := t.leaf(source)
	if !ok {
		return ErrUnknownPane
	}
	ti, ok := t.leaf(target)
	if !ok {
		return ErrUnknownPane
	}
	if si == ti {
		return ErrSamePane
	}

	if region == Center {
		t.swap(si, ti)
		return nil
	}

	t.detach(si)
	axis, before := region.placement()
	t.insertBeside(ti, si, axis, before)
	return nil
}

// DropAt resolves the pane under point within bounds and drops source onto it.
func (t *Tree[P]) DropAt(source PaneHandle, bounds Rect, point Point) error {
	target, rect, ok := t.PaneAt(bounds, point)
	if !ok {
		return ErrUnknownPane
	}
	return t.Drop(source, target, RegionAt(rect, point))
}

// All yields every pane depth first, first child before second.
func (t *Tree[P]) All() iter.Seq2[PaneHandle, P] {
	return func(yield func(PaneHandle, P) bool) {
		t.walk(t.root, func(i int) bool {
			return yield(t.paneHandle(i), t.nodes[i].pane)
		})
	}
}

// Handles returns the pane handles in the same order as All.
func (t *Tree[P]) Handles() []PaneHandle {
	handles := make([]PaneHandle, 0, t.leaves)
	for h := range t.All() {
		handles = append(handles, h)
	}
	return handles
}

func (t *Tree[P]) walk(i int, visit func(int) bool) bool {
	n := &t.nodes[i]
	if !n.split {
		return visit(i)
	}
	first, second := n.first, n.second
	return t.walk(first, visit) && t.walk(second, visit)
}

// insertBeside replaces leaf target with a new split holding target and leaf n.
func (t *Tree[P]) insertBeside(target, n int, axis Axis, before bool) {
	s := t.alloc()
	parent := t.nodes[target].parent

	t.nodes[s].split = true
	t.nodes[s].axis = axis
	t.nodes[s].ratio = DEFAULT_RATIO
	t.nodes[s].parent = parent
	if before {
		t.nodes[s].first, t.nodes[s].second = n, target
	} else {
		t.nodes[s].first, t.nodes[s].second = target, n
	}
	t.replaceChild(parent, target, s)
	t.nodes[target].parent = s
	t.nodes[n].parent = s
}

// detach unlinks leaf i; its parent split is freed and the sibling moves up into its place.
func (t *Tree[P]) detach(i int) {
	p := t.nodes[i].parent
	if p == noNode {
		return
	}
	sibling := t.nodes[p].first
	if sibling == i {
		sibling = t.nodes[p].second
	}
	grandparent := t.nodes[p].parent
	t.replaceChild(grandparent, p, sibling)
	t.nodes[sibling].parent = grandparent
	t.nodes[i].parent = noNode
	t.release(p)
}

func (t *Tree[P]) swap(a, b int) {
	pa, pb := t.nodes[a].parent, t.nodes[b].parent
	if pa == pb {
		n := &t.nodes[pa]
		n.first, n.second = n.second, n.first
		return
	}
	t.replaceChild(pa, a, b)
	t.replaceChild(pb, b, a)
	t.nodes[a].parent, t.nodes[b].parent = pb, pa
}

func (t *Tree[P]) replaceChild(parent, old, replacement int) {
	if parent == noNode {
		t.root = replacement
		return
	}
	n := &t.nodes[parent]
	if n.first == old {
		n.first = replacement
	} else {
		n.second = replacement
	}
}

func (t *Tree[P]) alloc() int {
	if len(t.free) > 0 {
		i := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		generation := t.nodes[i].generation
		t.nodes[i] = node[P]{generation: generation, live: true, parent: noNode}
		return i
	}
	t.nodes = append(t.nodes, node[P]{generation: 1, live: true, parent: noNode})
	return len(t.nodes) - 1
}

func (t *Tree[P]) release(i int) {
	t.nodes[i] = node[P]{generation: t.nodes[i].generation + 1, parent: noNode}
	t.free = append(t.free, i)
}

func (t *Tree[P]) leaf(h PaneHandle) (int, bool) {
	i := int(h.index)
	if h.generation == 0 || i >= len(t.nodes) {
		return 0, false
	}
	n := &t.nodes[i]
	if !n.live || n.split || n.generation != h.generation {
		return 0, false
	}
	return i, true
}

func (t *Tree[P]) splitNode(s SplitHandle) (int, bool) {
	i := int(s.index)
	if s.generation == 0 || i >= len(t.nodes) {
		return 0, false
	}
	n := &t.nodes[i]
	if !n.live || !n.split || n.generation != s.generation {
		return 0, false
	}
	return i, true
}

func (t *Tree[P]) paneHandle(i int) PaneHandle {
	return PaneHandle{uint32(i), t.nodes[i].generation}
}

func (t *Tree[P]) splitHandle(i int) SplitHandle {
	return SplitHandle{uint32(i), t.nodes[i].generation}
}

func clampRatio(ratio float32) float32 {
	// NaN fails both comparisons
	if !(ratio >= RatioEpsilon) {
		return RatioEpsilon
	}
	if ratio > 1-RatioEpsilon {
		return 1 - RatioEpsilon
	}
	return ratio
}
