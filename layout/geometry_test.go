package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionAt(t *testing.T) {
	r := Rect{0, 0, 100, 50}
	for _, tc := range []struct {
		name  string
		point Point
		want  Region
	}{
		{"middle", Point{50, 25}, Center},
		{"inside centre zone", Point{60, 30}, Center},
		{"left edge", Point{5, 25}, Left},
		{"right edge", Point{95, 25}, Right},
		{"top edge", Point{50, 2}, Top},
		{"bottom edge", Point{50, 48}, Bottom},
		{"top left corner prefers larger offset", Point{20, 1}, Top},
		{"exact diagonal tie goes horizontal", Point{0, 0}, Left},
		{"exact diagonal tie bottom right", Point{100, 50}, Right},
		{"centre zone boundary", Point{75, 25}, Right},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RegionAt(r, tc.point))
		})
	}
}

func TestLayoutFollowsRatios(t *testing.T) {
	tree := New("a")
	a := tree.Handles()[0]
	b, err := tree.Split(a, Vertical, "b")
	require.NoError(t, err)
	split, _ := tree.Parent(b)
	require.NoError(t, tree.Resize(split, 0.25))

	l := tree.Layout(Rect{0, 0, 200, 100})
	require.Len(t, l.Panes, 2)
	require.Len(t, l.Splits, 1)
	assert.Equal(t, Rect{0, 0, 50, 100}, l.Panes[0].Bounds)
	assert.Equal(t, Rect{50, 0, 150, 100}, l.Panes[1].Bounds)
	assert.Equal(t, Vertical, l.Splits[0].Axis)
	assert.Equal(t, float32(0.25), l.Splits[0].Ratio)
}

func TestDropAtUsesPointerPosition(t *testing.T) {
	tree := New("a")
	a := tree.Handles()[0]
	b, err := tree.Split(a, Vertical, "b")
	require.NoError(t, err)
	bounds := Rect{0, 0, 1, 1}

	// near the bottom of a: b moves below a
	require.NoError(t, tree.DropAt(b, bounds, Point{0.25, 0.95}))
	assert.Equal(t, 2, tree.Len())
	parent, _ := tree.Parent(b)
	axis, _ := tree.Axis(parent)
	assert.Equal(t, Horizontal, axis)

	l := tree.Layout(bounds)
	assert.Equal(t, a, l.Panes[0].Handle)
	assert.Equal(t, b, l.Panes[1].Handle)

	// dropping b onto itself changes nothing
	require.ErrorIs(t, tree.DropAt(b, bounds, Point{0.5, 0.9}), ErrSamePane)

	require.ErrorIs(t, tree.DropAt(b, bounds, Point{2, 2}), ErrUnknownPane)
}

func TestHandleRoundTrip(t *testing.T) {
	tree := New("a")
	a := tree.Handles()[0]
	b, _ := tree.Split(a, Vertical, "b")
	split, _ := tree.Parent(b)

	parsed, err := ParsePaneHandle(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)

	parsedSplit, err := ParseSplitHandle(split.String())
	require.NoError(t, err)
	assert.Equal(t, split, parsedSplit)

	for _, bad := range []string{"", "p", "s1.1", "p1.0", "px.y"} {
		_, err := ParsePaneHandle(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRegion(t *testing.T) {
	for _, r := range []Region{Center, Top, Bottom, Left, Right} {
		parsed, ok := ParseRegion(r.String())
		assert.True(t, ok)
		assert.Equal(t, r, parsed)
	}
	_, ok := ParseRegion("middle")
	assert.False(t, ok)
}
