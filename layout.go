package lattice

import (
	"github.com/chewxy/math32"
)

const hugEpsilon = 1e-5

// Orientation returns the layout's main axis.
func (n *Node) Orientation() Orientation { return n.orientation }

// SetOrientation changes the layout's main axis. Turning a scroll-enabled
// layout horizontal is a configuration error and leaves the node
// unchanged.
func (n *Node) SetOrientation(o Orientation) error {
	if n.scrollEnabled && o == Horizontal {
		return &ConfigurationError{Op: "SetOrientation", Detail: "scrollbar requires a vertical layout"}
	}
	if n.orientation == o {
		return nil
	}
	n.orientation = o
	n.invalidateLayout()
	return nil
}

// ExpandRule returns the layout's space-distribution policy.
func (n *Node) ExpandRule() ExpandRule { return n.expandRule }

// SetExpandRule changes how the layout distributes free space. Combining
// a scrollbar with any rule other than secondary-axis is a configuration
// error and leaves the node unchanged.
func (n *Node) SetExpandRule(r ExpandRule) error {
	if n.scrollEnabled && r != ExpandSecondaryAxis {
		return &ConfigurationError{Op: "SetExpandRule", Detail: "scrollbar requires the secondary-axis expand rule"}
	}
	if n.expandRule == r {
		return nil
	}
	n.expandRule = r
	n.invalidateLayout()
	return nil
}

// Spacing returns the spacer fraction between children.
func (n *Node) Spacing() float32 { return n.spacing }

// SetSpacing sets the spacer fraction between children, clamped to [0,1].
func (n *Node) SetSpacing(s float32) {
	s = clamp01(s)
	if n.spacing == s {
		return
	}
	n.spacing = s
	n.invalidateLayout()
}

// EnableScroll turns the layout into a scrolling window over its
// children. Only a vertical layout with the secondary-axis expand rule
// supports scrolling; any other combination is a configuration error and
// the call leaves prior state unchanged.
func (n *Node) EnableScroll() error {
	if n.kind != KindLayout {
		return &InvariantViolation{Op: "EnableScroll", Detail: "node is not a layout"}
	}
	if n.orientation != Vertical {
		return &ConfigurationError{Op: "EnableScroll", Detail: "scrollbar on a horizontal layout"}
	}
	if n.expandRule != ExpandSecondaryAxis {
		return &ConfigurationError{Op: "EnableScroll", Detail: "scrollbar requires the secondary-axis expand rule"}
	}
	if n.scrollEnabled {
		return nil
	}
	n.scrollEnabled = true
	n.invalidateLayout()
	return nil
}

// DisableScroll turns scrolling off and resets the offset.
func (n *Node) DisableScroll() {
	if !n.scrollEnabled {
		return
	}
	n.scrollEnabled = false
	n.scrollOffset = 0
	n.scrollExtent = 0
	n.maxScrollOffset = 0
	n.invalidateLayout()
}

// ScrollEnabled reports whether the layout scrolls.
func (n *Node) ScrollEnabled() bool { return n.scrollEnabled }

// SetScrollStep overrides the extent of one scroll step as a screen
// fraction. Zero restores the default, which is the main-axis extent of
// the first counted child.
func (n *Node) SetScrollStep(f float32) {
	f = clamp01(f)
	if n.scrollStep == f {
		return
	}
	n.scrollStep = f
	n.invalidateLayout()
}

// ScrollOffset returns the current scroll position in whole steps.
func (n *Node) ScrollOffset() int { return n.scrollOffset }

// SetScrollOffset jumps to an absolute scroll position. Negative values
// clamp to zero; the upper bound clamps during recalculation.
func (n *Node) SetScrollOffset(steps int) {
	if steps < 0 {
		steps = 0
	}
	if n.scrollOffset == steps {
		return
	}
	n.scrollOffset = steps
	n.invalidateLayout()
}

// ScrollBy moves the scroll position by a number of steps, clamped to the
// valid range. It reports whether the offset actually changed.
func (n *Node) ScrollBy(steps int) bool {
	if !n.scrollEnabled {
		return false
	}
	next := n.scrollOffset + steps
	if next < 0 {
		next = 0
	}
	if next > n.maxScrollOffset {
		next = n.maxScrollOffset
	}
	if next == n.scrollOffset {
		return false
	}
	n.scrollOffset = next
	n.invalidateLayout()
	return true
}

// ScrollExtent returns the cached overflow extent: how far the content
// reaches past the window, as a screen fraction. Zero when everything
// fits.
func (n *Node) ScrollExtent() float32 { return n.scrollExtent }

// MaxScrollOffset returns the largest valid scroll offset in steps.
func (n *Node) MaxScrollOffset() int { return n.maxScrollOffset }

// Recalculate runs the layout pass for this node and its whole subtree
// immediately, clearing any pending dirty flags along the way.
// Recalculation is a pure function of current node state: running it
// twice with no intervening change produces identical geometry.
func (n *Node) Recalculate() {
	recalcTree(n)
}

// recalcTree recalculates top-down: a node places its children, then each
// child places its own. A node that gets re-marked dirty while the pass
// is running is picked up by the next flush, never re-entered.
func recalcTree(n *Node) {
	n.layoutDirty = false
	switch n.kind {
	case KindPanel:
		n.recalcPanel()
	case KindLayout:
		n.recalcLayout()
	}
	for _, c := range n.children {
		recalcTree(c)
	}
}

// countedChildren returns the children that participate in layout math:
// visible ones plus invisible ones that still occupy space.
func (n *Node) countedChildren() []*Node {
	out := acquireNodeSlice()
	for _, c := range n.children {
		if c.visible || c.occupiesSpace {
			out = append(out, c)
		}
	}
	return out
}

// recalcLayout distributes the layout's own rect among its counted
// children, maintains the scroll window, and hugs its children under the
// none rule. Children are processed strictly in array order and equal
// portions receive exactly equal shares.
func (n *Node) recalcLayout() {
	counted := n.countedChildren()
	defer releaseNodeSlice(counted)

	k := len(counted)
	if k == 0 {
		n.scrollExtent = 0
		n.maxScrollOffset = 0
		return
	}

	vertical := n.orientation == Vertical
	main := func(v Vec2) float32 {
		if vertical {
			return v.Y
		}
		return v.X
	}
	cross := func(v Vec2) float32 {
		if vertical {
			return v.X
		}
		return v.Y
	}

	portionSum := 0
	for _, c := range counted {
		portionSum += c.expandPortion
	}
	spacers := k - 1

	// Hug pass: under the none rule (and no scrollbar is possible
	// there) the layout resizes itself to wrap its children before
	// distributing, so the literal spacer fraction is taken of the
	// final size.
	if n.expandRule == ExpandNone {
		var sumMain, maxCross float32
		for _, c := range counted {
			sumMain += main(c.size)
			maxCross = math32.Max(maxCross, cross(c.size))
		}
		denom := 1 - n.spacing*float32(spacers)
		hugMain := clamp01(sumMain)
		if denom > hugEpsilon {
			hugMain = clamp01(sumMain / denom)
		}
		hugCross := clamp01(maxCross)
		var next Vec2
		if vertical {
			next = Vec2{X: hugCross, Y: hugMain}
		} else {
			next = Vec2{X: hugMain, Y: hugCross}
		}
		if math32.Abs(next.X-n.size.X) > hugEpsilon || math32.Abs(next.Y-n.size.Y) > hugEpsilon {
			n.size = next
			if n.ancestorLayout != nil {
				n.ancestorLayout.markLayoutDirty()
			}
		}
	}

	contentMain := main(n.size)
	contentCross := cross(n.size)

	// Spacer share and per-child main extents.
	var spacerExtent float32
	extents := make([]float32, k)
	switch n.expandRule {
	case ExpandNone:
		spacerExtent = n.spacing * contentMain
		for i, c := range counted {
			extents[i] = main(c.size)
		}
	case ExpandSecondaryAxis:
		spacerExtent = portionSpacerExtent(n.spacing, portionSum, spacers, contentMain)
		for i, c := range counted {
			extents[i] = main(c.size)
		}
	default: // ExpandMainAxis, ExpandBoth
		share := n.spacing * float32(portionSum)
		total := float32(portionSum) + share*float32(spacers)
		if total > 0 {
			spacerExtent = contentMain * share / total
			for i, c := range counted {
				extents[i] = contentMain * float32(c.expandPortion) / total
			}
		}
	}

	// Scroll bookkeeping: clamp the step offset against the cached
	// overflow extent before placement.
	var virtual float32
	if n.scrollEnabled {
		var total float32
		for _, e := range extents {
			total += e
		}
		total += spacerExtent * float32(spacers)

		step := n.scrollStep
		if step <= 0 && n.mgr != nil {
			step = n.mgr.cfg.ScrollStep
		}
		if step <= 0 {
			step = extents[0]
		}

		n.scrollExtent = math32.Max(0, total-contentMain)
		if step > 0 {
			n.maxScrollOffset = int(math32.Ceil(n.scrollExtent / step))
		} else {
			n.maxScrollOffset = 0
		}
		if n.scrollOffset > n.maxScrollOffset {
			n.scrollOffset = n.maxScrollOffset
		}
		if n.scrollOffset < 0 {
			n.scrollOffset = 0
		}
		virtual = step * float32(n.scrollOffset)
	} else {
		n.scrollExtent = 0
		n.maxScrollOffset = 0
	}

	// Placement: running cursor along the main axis, fixed cross start.
	// Scrolled-out children keep their raw placement so the clip pass
	// can measure how much of them lies outside the window.
	var mainStart, crossStart float32
	if vertical {
		mainStart, crossStart = n.pos.Y, n.pos.X
	} else {
		mainStart, crossStart = n.pos.X, n.pos.Y
	}
	cursor := mainStart - virtual
	for i, c := range counted {
		crossExt := cross(c.size)
		if n.expandRule == ExpandSecondaryAxis || n.expandRule == ExpandBoth {
			crossExt = contentCross
		}
		if vertical {
			c.pos = Vec2{X: crossStart, Y: cursor}
			c.size = Vec2{X: crossExt, Y: extents[i]}
		} else {
			c.pos = Vec2{X: cursor, Y: crossStart}
			c.size = Vec2{X: extents[i], Y: crossExt}
		}
		c.contentResized()
		cursor += extents[i]
		if i < k-1 {
			cursor += spacerExtent
		}
	}

	// Clip pass: the scroll window hides children fully outside it and
	// proportionally Y-clips the one straddling a boundary. Without a
	// scrollbar the layout only forwards its own inherited clip.
	wt, wb := n.ownWindow()
	if n.scrollEnabled || n.clipTop > 0 || n.clipBottom > 0 {
		for _, c := range counted {
			clipToWindow(c, wt, wb)
		}
	} else {
		for _, c := range counted {
			resetClip(c)
		}
	}
}

// portionSpacerExtent computes the extent of one spacer when spacing is
// expressed as a share of the portion sum.
func portionSpacerExtent(spacing float32, portionSum, spacers int, contentMain float32) float32 {
	share := spacing * float32(portionSum)
	total := float32(portionSum) + share*float32(spacers)
	if total <= 0 {
		return 0
	}
	return contentMain * share / total
}
