package lattice

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnimation tweens a layout's scroll offset. Offsets stay integer
// steps; the tween runs in fractional steps and rounds on every tick.
type scrollAnimation struct {
	node  *Node
	tween *gween.Tween
}

// effectiveScrollStep resolves the extent of one scroll step: the node's
// own override, then the manager default, then the main-axis extent of
// the first counted child.
func (n *Node) effectiveScrollStep() float32 {
	if n.scrollStep > 0 {
		return n.scrollStep
	}
	if n.mgr != nil && n.mgr.cfg.ScrollStep > 0 {
		return n.mgr.cfg.ScrollStep
	}
	for _, c := range n.children {
		if c.visible || c.occupiesSpace {
			if n.orientation == Vertical {
				return c.size.Y
			}
			return c.size.X
		}
	}
	return 0
}

// AnimateScrollTo eases a scroll layout to an absolute offset. A zero
// duration uses the configured smooth-scroll duration. Animating a
// non-scrolling node is a configuration error.
func (m *Manager) AnimateScrollTo(n *Node, steps int, d time.Duration) error {
	if n.kind != KindLayout || !n.scrollEnabled {
		return &ConfigurationError{Op: "AnimateScrollTo", Detail: "node is not a scroll layout"}
	}
	if steps < 0 {
		steps = 0
	}
	if steps > n.maxScrollOffset {
		steps = n.maxScrollOffset
	}
	if d <= 0 {
		d = m.cfg.smoothScrollDuration()
	}
	if d <= 0 || steps == n.scrollOffset {
		n.SetScrollOffset(steps)
		return nil
	}

	anim := &scrollAnimation{
		node:  n,
		tween: gween.New(float32(n.scrollOffset), float32(steps), float32(d.Seconds()), ease.OutCubic),
	}
	m.mu.Lock()
	m.animations[n.id] = anim
	m.mu.Unlock()
	return nil
}

// ScrollToNode scrolls container just far enough to bring target fully
// into its window, animated over d. Nothing happens when the target is
// already fully visible.
func (m *Manager) ScrollToNode(container, target *Node, d time.Duration) error {
	if container.kind != KindLayout || !container.scrollEnabled {
		return &ConfigurationError{Op: "ScrollToNode", Detail: "container is not a scroll layout"}
	}
	if !target.isWithin(container) {
		return &PreconditionViolation{Op: "ScrollToNode", Detail: "target is not a descendant of container"}
	}
	step := container.effectiveScrollStep()
	if step <= 0 {
		return nil
	}

	// The target's screen position already includes the current virtual
	// offset; undo it to get the content-space coordinate.
	virtual := step * float32(container.scrollOffset)
	contentY := target.pos.Y - container.pos.Y + virtual
	window := container.size.Y

	var want float32
	switch {
	case contentY+target.size.Y-virtual > window:
		// Below the window: scroll down until the bottom edge fits.
		want = contentY + target.size.Y - window
		return m.AnimateScrollTo(container, int(math32.Ceil(want/step)), d)
	case contentY < virtual:
		// Above the window: scroll up until the top edge shows.
		want = contentY
		return m.AnimateScrollTo(container, int(math32.Floor(want/step)), d)
	default:
		return nil
	}
}

// stepScrollAnimations advances every active tween by dt seconds and
// writes the rounded offsets back. Finished tweens drop out.
func (m *Manager) stepScrollAnimations(dt float32) {
	m.mu.Lock()
	if len(m.animations) == 0 {
		m.mu.Unlock()
		return
	}
	batch := make([]*scrollAnimation, 0, len(m.animations))
	for _, a := range m.animations {
		batch = append(batch, a)
	}
	m.mu.Unlock()

	for _, a := range batch {
		cur, done := a.tween.Update(dt)
		if a.node.spawned {
			a.node.SetScrollOffset(int(math32.Round(cur)))
		}
		if done || !a.node.spawned {
			m.mu.Lock()
			delete(m.animations, a.node.id)
			m.mu.Unlock()
		}
	}
}
