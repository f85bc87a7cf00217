package lattice

import "github.com/chewxy/math32"

// SetPadding sets the panel's padding as a fraction of its own size per
// axis. Values clamp to [0, 0.5]; a padding of 0.5 leaves no content area.
func (n *Node) SetPadding(p float32) {
	p = math32.Min(0.5, math32.Max(0, p))
	if n.padding == p {
		return
	}
	n.padding = p
	n.invalidateLayout()
}

// Padding returns the panel's padding fraction.
func (n *Node) Padding() float32 { return n.padding }

// ownWindow returns the node's visible screen-Y window after applying its
// own clip fractions.
func (n *Node) ownWindow() (top, bottom float32) {
	top = n.pos.Y + n.clipTop*n.size.Y
	bottom = n.pos.Y + (1-n.clipBottom)*n.size.Y
	return top, bottom
}

// clipToWindow derives c's allow-rendering flag and Y-clip fractions from
// the window [wt, wb]. A child fully outside the window is marked
// unrenderable; a child straddling a boundary is clipped proportionally
// to how much of its extent lies outside.
func clipToWindow(c *Node, wt, wb float32) {
	top := c.pos.Y
	bottom := top + c.size.Y
	if c.size.Y <= 0 || bottom <= wt || top >= wb {
		c.allowRendering = false
		c.clipTop, c.clipBottom = 0, 0
		return
	}
	c.allowRendering = true
	c.clipTop = math32.Max(0, (wt-top)/c.size.Y)
	c.clipBottom = math32.Max(0, (bottom-wb)/c.size.Y)
}

// resetClip marks a child fully renderable.
func resetClip(c *Node) {
	c.allowRendering = true
	c.clipTop, c.clipBottom = 0, 0
}

// recalcPanel recomputes the single child's rect from the panel's own
// rect minus padding and forwards the panel's Y-clip window down.
func (n *Node) recalcPanel() {
	if len(n.children) == 0 {
		return
	}
	c := n.children[0]

	px := n.padding * n.size.X
	py := n.padding * n.size.Y
	c.pos = Vec2{X: n.pos.X + px, Y: n.pos.Y + py}
	c.size = Vec2{
		X: math32.Max(0, n.size.X-2*px),
		Y: math32.Max(0, n.size.Y-2*py),
	}
	c.contentResized()

	wt, wb := n.ownWindow()
	if n.clipTop > 0 || n.clipBottom > 0 {
		clipToWindow(c, wt, wb)
	} else {
		resetClip(c)
	}
}

// contentResized lets text-bearing kinds rebuild their wrap cache after a
// parent-driven resize. Parent recalculation writes geometry directly, so
// the SetSize path is not taken here.
func (n *Node) contentResized() {
	switch n.kind {
	case KindText, KindTextEdit:
		n.reflowText()
	}
}
