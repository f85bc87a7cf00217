package lattice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newScrollList builds a spawned scroll layout with eight fixed rows and
// instant (non-animated) smooth scrolling.
func newScrollList(t *testing.T) (*Manager, *Node, []*Node) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SmoothScrollMS = 0
	m := NewManager(cfg)

	l := NewLayout(LayerBase, Vertical)
	require.NoError(t, l.SetExpandRule(ExpandSecondaryAxis))
	l.SetPosition(0, 0)
	l.SetSize(0.5, 0.25)
	require.NoError(t, l.EnableScroll())

	kids := make([]*Node, 8)
	for i := range kids {
		kids[i] = NewCustom(LayerBase)
		kids[i].SetSize(0.5, 0.125)
		require.NoError(t, l.AttachChild(kids[i]))
	}
	require.NoError(t, m.SetRoot(l))
	m.PerformLayout()
	return m, l, kids
}

func TestScrollToNodeBringsTargetIntoWindow(t *testing.T) {
	m, l, kids := newScrollList(t)

	// 1.0 of content in a 0.25 window, step 0.125: six steps of range.
	require.Equal(t, 6, l.MaxScrollOffset())

	// The fifth row starts at 0.5; the window ends at 0.25. Scrolling to
	// it needs its bottom edge (0.625) inside, so three steps.
	require.NoError(t, m.ScrollToNode(l, kids[4], 0))
	assert.Equal(t, 3, l.ScrollOffset())
	m.PerformLayout()
	assert.True(t, kids[4].AllowRendering())
	top, bottom := kids[4].ClipWindow()
	assert.Zero(t, top)
	assert.Zero(t, bottom)

	// Already fully visible: nothing moves.
	require.NoError(t, m.ScrollToNode(l, kids[3], 0))
	assert.Equal(t, 3, l.ScrollOffset())

	// A target above the window scrolls back up just far enough.
	require.NoError(t, m.ScrollToNode(l, kids[0], 0))
	assert.Equal(t, 0, l.ScrollOffset())
}

func TestScrollToNodeGuards(t *testing.T) {
	m, l, _ := newScrollList(t)

	plain := NewLayout(LayerBase, Vertical)
	err := m.ScrollToNode(plain, l, 0)
	assert.ErrorIs(t, err, ErrConfiguration)

	outsider := NewCustom(LayerBase)
	err = m.ScrollToNode(l, outsider, 0)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestAnimateScrollToGuards(t *testing.T) {
	m, l, _ := newScrollList(t)

	b := NewButton(LayerBase, "x")
	assert.ErrorIs(t, m.AnimateScrollTo(b, 1, 0), ErrConfiguration)

	// Out-of-range targets clamp instead of erroring.
	require.NoError(t, m.AnimateScrollTo(l, 99, 0))
	assert.Equal(t, 6, l.ScrollOffset())
	require.NoError(t, m.AnimateScrollTo(l, -5, 0))
	assert.Equal(t, 0, l.ScrollOffset())
}

func TestAnimatedScrollSettlesOnTarget(t *testing.T) {
	m, l, _ := newScrollList(t)

	require.NoError(t, m.AnimateScrollTo(l, 4, 500*time.Millisecond))
	assert.Equal(t, 0, l.ScrollOffset(), "the tween has not been stepped yet")

	// Halfway through, the eased offset is somewhere in between.
	m.stepScrollAnimations(0.25)
	mid := l.ScrollOffset()
	assert.Greater(t, mid, 0)
	assert.LessOrEqual(t, mid, 4)

	// Stepping past the full duration lands exactly on the target and
	// drops the animation.
	m.stepScrollAnimations(1.0)
	assert.Equal(t, 4, l.ScrollOffset())
	m.mu.Lock()
	remaining := len(m.animations)
	m.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestAnimationStopsWhenNodeDespawns(t *testing.T) {
	m, l, _ := newScrollList(t)

	inner := NewLayout(LayerBase, Vertical)
	require.NoError(t, inner.SetExpandRule(ExpandSecondaryAxis))

	require.NoError(t, m.AnimateScrollTo(l, 4, time.Second))
	require.NoError(t, m.SetRoot(inner))

	// The despawned node's tween is discarded without touching it.
	m.stepScrollAnimations(0.5)
	assert.Equal(t, 0, l.ScrollOffset())
	m.mu.Lock()
	remaining := len(m.animations)
	m.mu.Unlock()
	assert.Zero(t, remaining)
}
