package layout

type Point struct {
	X, Y float32
}

type Rect struct {
	X, Y, Width, Height float32
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// split divides r along axis; the first part gets ratio of the extent.
func (r Rect) split(axis Axis, ratio float32) (Rect, Rect) {
	if axis == Horizontal {
		h := r.Height * ratio
		return Rect{r.X, r.Y, r.Width, h}, Rect{r.X, r.Y + h, r.Width, r.Height - h}
	}
	w := r.Width * ratio
	return Rect{r.X, r.Y, w, r.Height}, Rect{r.X + w, r.Y, r.Width - w, r.Height}
}

// Region is where, relative to a target pane, a dragged pane is dropped.
type Region uint8

const (
	Center Region = iota
	Top
	Bottom
	Left
	Right
)

func (r Region) String() string {
	switch r {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "center"
	}
}

// ParseRegion reads the String form of a region.
func ParseRegion(s string) (Region, bool) {
	for _, r := range []Region{Center, Top, Bottom, Left, Right} {
		if r.String() == s {
			return r, true
		}
	}
	return Center, false
}

// placement gives the split axis for an edge and whether the dropped pane goes first.
func (r Region) placement() (axis Axis, before bool) {
	switch r {
	case Top:
		return Horizontal, true
	case Bottom:
		return Horizontal, false
	case Left:
		return Vertical, true
	default:
		return Vertical, false
	}
}

// CenterZone is the normalized distance from the middle of a pane inside which a drop swaps panes.
const CenterZone = 0.5

// RegionAt picks the drop region of point within rect. Offsets from the centre are normalized by the half extents;
// inside CenterZone on both axes is Center, otherwise the larger offset picks the edge and a tie goes to Left/Right.
func RegionAt(rect Rect, point Point) Region {
	c := rect.Center()
	var dx, dy float32
	if rect.Width > 0 {
		dx = (point.X - c.X) / (rect.Width / 2)
	}
	if rect.Height > 0 {
		dy = (point.Y - c.Y) / (rect.Height / 2)
	}
	ax, ay := abs(dx), abs(dy)
	if ax < CenterZone && ay < CenterZone {
		return Center
	}
	if ax >= ay {
		if dx < 0 {
			return Left
		}
		return Right
	}
	if dy < 0 {
		return Top
	}
	return Bottom
}

type PaneRect struct {
	Handle PaneHandle
	Bounds Rect
}

type SplitRect struct {
	Handle SplitHandle
	Axis   Axis
	Ratio  float32
	// Bounds covers both children of the split.
	Bounds Rect
}

// Layout is the geometry of a tree laid out in some bounds. Panes are in All order, splits in pre-order.
type Layout struct {
	Panes  []PaneRect
	Splits []SplitRect
}

func (t *Tree[P]) Layout(bounds Rect) Layout {
	var l Layout
	t.layout(t.root, bounds, &l)
	return l
}

func (t *Tree[P]) layout(i int, bounds Rect, l *Layout) {
	n := &t.nodes[i]
	if !n.split {
		l.Panes = append(l.Panes, PaneRect{t.paneHandle(i), bounds})
		return
	}
	l.Splits = append(l.Splits, SplitRect{t.splitHandle(i), n.axis, n.ratio, bounds})
	a, b := bounds.split(n.axis, n.ratio)
	first, second := n.first, n.second
	t.layout(first, a, l)
	t.layout(second, b, l)
}

// PaneAt returns the pane whose laid out rectangle holds point. Points on a shared edge go to the first pane.
func (t *Tree[P]) PaneAt(bounds Rect, point Point) (PaneHandle, Rect, bool) {
	for _, p := range t.Layout(bounds).Panes {
		if p.Bounds.Contains(point) {
			return p.Handle, p.Bounds, true
		}
	}
	return PaneHandle{}, Rect{}, false
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
