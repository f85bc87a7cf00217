package lattice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vstack(t *testing.T, rule ExpandRule, children ...*Node) *Node {
	t.Helper()
	l := NewLayout(LayerBase, Vertical)
	require.NoError(t, l.SetExpandRule(rule))
	for _, c := range children {
		require.NoError(t, l.AttachChild(c))
	}
	return l
}

func customSized(w, h float32) *Node {
	n := NewCustom(LayerBase)
	n.SetSize(w, h)
	return n
}

func TestMainAxisDistributesByPortion(t *testing.T) {
	a := customSized(0.1, 0.1)
	b := customSized(0.1, 0.1)
	c := customSized(0.1, 0.1)
	b.SetExpandPortion(2)

	l := vstack(t, ExpandMainAxis, a, b, c)
	l.SetPosition(0, 0)
	l.SetSize(0.5, 0.96)
	l.SetSpacing(0.1)
	l.Recalculate()

	// Spacing contributes spacing*portionSum per spacer to the divisor:
	// total = 4 + 2*0.4 = 4.8.
	assert.InDelta(t, 0.96*1/4.8, a.Size().Y, 1e-4)
	assert.InDelta(t, 0.96*2/4.8, b.Size().Y, 1e-4)
	assert.InDelta(t, 0.96*1/4.8, c.Size().Y, 1e-4)

	spacer := float32(0.96) * 0.4 / 4.8
	assert.InDelta(t, 0, a.Position().Y, 1e-4)
	assert.InDelta(t, a.Size().Y+spacer, b.Position().Y, 1e-4)
	assert.InDelta(t, a.Size().Y+spacer+b.Size().Y+spacer, c.Position().Y, 1e-4)

	// The children end exactly at the layout's bottom edge.
	assert.InDelta(t, 0.96, c.Position().Y+c.Size().Y, 1e-4)

	// Main-axis expansion keeps cross-axis sizes.
	assert.InDelta(t, 0.1, a.Size().X, 1e-6)
}

func TestEqualPortionsGetEqualShares(t *testing.T) {
	kids := make([]*Node, 7)
	for i := range kids {
		kids[i] = customSized(0.1, 0.05)
	}
	l := vstack(t, ExpandMainAxis, kids...)
	l.SetSize(0.3, 0.7)
	l.Recalculate()

	first := kids[0].Size().Y
	for _, k := range kids[1:] {
		assert.Equal(t, first, k.Size().Y, "equal portions must get exactly equal extents")
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	a := customSized(0.2, 0.1)
	b := customSized(0.2, 0.2)
	l := vstack(t, ExpandMainAxis, a, b)
	l.SetSize(0.4, 0.8)
	l.SetSpacing(0.05)

	l.Recalculate()
	posA, sizeA := a.Position(), a.Size()
	posB, sizeB := b.Position(), b.Size()

	l.Recalculate()
	assert.Equal(t, posA, a.Position())
	assert.Equal(t, sizeA, a.Size())
	assert.Equal(t, posB, b.Position())
	assert.Equal(t, sizeB, b.Size())
}

func TestExpandNoneHugsChildren(t *testing.T) {
	a := customSized(0.15, 0.2)
	b := customSized(0.25, 0.3)
	l := vstack(t, ExpandNone, a, b)
	l.SetPosition(0.1, 0.1)
	l.SetSpacing(0.1)
	l.Recalculate()

	// The layout wraps its children: main extent solves
	// S = sum + spacing*S per spacer.
	wantMain := float32(0.5) / 0.9
	assert.InDelta(t, wantMain, l.Size().Y, 1e-4)
	assert.InDelta(t, 0.25, l.Size().X, 1e-4)

	// The spacer is the literal spacing fraction of the final size.
	spacer := b.Position().Y - (a.Position().Y + a.Size().Y)
	assert.InDelta(t, 0.1*l.Size().Y, spacer, 1e-4)

	// Children keep their own sizes under the none rule.
	assert.InDelta(t, 0.2, a.Size().Y, 1e-6)
	assert.InDelta(t, 0.3, b.Size().Y, 1e-6)
}

func TestSecondaryAxisFillsCross(t *testing.T) {
	a := customSized(0.1, 0.2)
	b := customSized(0.1, 0.3)
	l := vstack(t, ExpandSecondaryAxis, a, b)
	l.SetPosition(0.2, 0)
	l.SetSize(0.5, 0.9)
	l.Recalculate()

	assert.InDelta(t, 0.5, a.Size().X, 1e-6)
	assert.InDelta(t, 0.5, b.Size().X, 1e-6)
	assert.InDelta(t, 0.2, a.Position().X, 1e-6)
	// Main-axis sizes are kept.
	assert.InDelta(t, 0.2, a.Size().Y, 1e-6)
	assert.InDelta(t, 0.3, b.Size().Y, 1e-6)
}

func TestInvisibleChildrenAndOccupiedSpace(t *testing.T) {
	a := customSized(0.1, 0.2)
	b := customSized(0.1, 0.2)
	c := customSized(0.1, 0.2)
	l := vstack(t, ExpandSecondaryAxis, a, b, c)
	l.SetSize(0.5, 0.9)

	b.SetVisible(false)
	l.Recalculate()
	// A hidden child drops out of the flow entirely.
	assert.InDelta(t, 0.2, c.Position().Y, 1e-6)

	b.SetOccupiesSpace(true)
	l.Recalculate()
	// Unless it still occupies space; then the gap stays.
	assert.InDelta(t, 0.4, c.Position().Y, 1e-6)
}

func TestScrollWindowClipsChildren(t *testing.T) {
	kids := make([]*Node, 10)
	for i := range kids {
		kids[i] = customSized(0.125, 0.125)
	}
	l := vstack(t, ExpandSecondaryAxis, kids...)
	l.SetPosition(0.25, 0.125)
	l.SetSize(0.25, 0.5)
	require.NoError(t, l.EnableScroll())
	l.SetScrollStep(0.1875)
	l.SetScrollOffset(3)
	l.Recalculate()

	// Content is 1.25 tall against a 0.5 window.
	assert.InDelta(t, 0.75, l.ScrollExtent(), 1e-6)
	assert.Equal(t, 4, l.MaxScrollOffset())
	assert.Equal(t, 3, l.ScrollOffset())

	// Three steps of 0.1875 push the first four children above the
	// window [0.125, 0.625] entirely; the fourth ends flush with its top.
	for i := 0; i < 4; i++ {
		assert.False(t, kids[i].AllowRendering(), "child %d should be scrolled out", i)
	}

	// The fifth straddles the top edge and is clipped proportionally.
	assert.True(t, kids[4].AllowRendering())
	top, bottom := kids[4].ClipWindow()
	assert.InDelta(t, 0.5, top, 1e-6)
	assert.InDelta(t, 0, bottom, 1e-6)

	// Three fit fully, the ninth straddles the bottom edge.
	for i := 5; i < 8; i++ {
		assert.True(t, kids[i].AllowRendering(), "child %d should render", i)
		top, bottom := kids[i].ClipWindow()
		assert.InDelta(t, 0, top, 1e-6)
		assert.InDelta(t, 0, bottom, 1e-6)
	}
	assert.True(t, kids[8].AllowRendering())
	top, bottom = kids[8].ClipWindow()
	assert.InDelta(t, 0, top, 1e-6)
	assert.InDelta(t, 0.5, bottom, 1e-6)

	// The last child starts past the window bottom.
	assert.False(t, kids[9].AllowRendering())
}

func TestScrollOffsetClampsToRange(t *testing.T) {
	kids := make([]*Node, 5)
	for i := range kids {
		kids[i] = customSized(0.125, 0.125)
	}
	l := vstack(t, ExpandSecondaryAxis, kids...)
	l.SetSize(0.25, 0.25)
	require.NoError(t, l.EnableScroll())
	l.Recalculate()

	// Default step is the first child's extent: 0.625 content in a 0.25
	// window leaves three steps of overflow.
	assert.Equal(t, 3, l.MaxScrollOffset())

	assert.True(t, l.ScrollBy(10))
	assert.Equal(t, 3, l.ScrollOffset())
	assert.False(t, l.ScrollBy(1), "scrolling past the end must report no change")
	assert.True(t, l.ScrollBy(-10))
	assert.Equal(t, 0, l.ScrollOffset())

	l.SetScrollOffset(-3)
	assert.Equal(t, 0, l.ScrollOffset())
}

func TestScrollConfigurationGuards(t *testing.T) {
	h := NewLayout(LayerBase, Horizontal)
	require.NoError(t, h.SetExpandRule(ExpandSecondaryAxis))
	err := h.EnableScroll()
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, h.ScrollEnabled(), "failed enable must leave state unchanged")

	v := NewLayout(LayerBase, Vertical)
	require.NoError(t, v.SetExpandRule(ExpandMainAxis))
	err = v.EnableScroll()
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, v.ScrollEnabled())

	require.NoError(t, v.SetExpandRule(ExpandSecondaryAxis))
	require.NoError(t, v.EnableScroll())

	// With the scrollbar active, incompatible reconfiguration is rejected
	// and the old settings stay.
	err = v.SetOrientation(Horizontal)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, Vertical, v.Orientation())

	err = v.SetExpandRule(ExpandBoth)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, ExpandSecondaryAxis, v.ExpandRule())

	v.DisableScroll()
	require.NoError(t, v.SetOrientation(Horizontal))
}

func TestEnableScrollOnLeafIsInvariant(t *testing.T) {
	b := NewButton(LayerBase, "x")
	assert.True(t, errors.Is(b.EnableScroll(), ErrInvariant))
}

func TestDisableScrollResetsOffset(t *testing.T) {
	kids := []*Node{customSized(0.1, 0.2), customSized(0.1, 0.2), customSized(0.1, 0.2)}
	l := vstack(t, ExpandSecondaryAxis, kids...)
	l.SetSize(0.3, 0.3)
	require.NoError(t, l.EnableScroll())
	l.Recalculate()
	require.True(t, l.ScrollBy(1))

	l.DisableScroll()
	assert.Equal(t, 0, l.ScrollOffset())
	assert.Zero(t, l.ScrollExtent())

	l.Recalculate()
	// Without a scrollbar everything renders, clip-free.
	for _, k := range kids {
		assert.True(t, k.AllowRendering())
	}
}

func TestHorizontalPlacement(t *testing.T) {
	a := customSized(0.2, 0.1)
	b := customSized(0.2, 0.1)
	l := NewLayout(LayerBase, Horizontal)
	require.NoError(t, l.SetExpandRule(ExpandMainAxis))
	require.NoError(t, l.AttachChild(a))
	require.NoError(t, l.AttachChild(b))
	l.SetPosition(0.1, 0.3)
	l.SetSize(0.6, 0.2)
	l.Recalculate()

	assert.InDelta(t, 0.1, a.Position().X, 1e-6)
	assert.InDelta(t, 0.3, a.Size().X, 1e-6)
	assert.InDelta(t, 0.4, b.Position().X, 1e-6)
	assert.InDelta(t, 0.3, b.Size().X, 1e-6)
	// Cross-axis (Y) sizes are kept under main-axis expansion.
	assert.InDelta(t, 0.1, a.Size().Y, 1e-6)
	assert.InDelta(t, 0.3, a.Position().Y, 1e-6)
}
