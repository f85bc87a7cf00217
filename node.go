package lattice

import (
	"sync/atomic"

	"github.com/chewxy/math32"
)

// NodeID uniquely identifies a node. IDs are stable for the lifetime of the
// process and are what the manager's tracking sets are keyed on, so nothing
// manager-side ever holds a bare pointer it did not look up first.
type NodeID uint64

var nextNodeID atomic.Uint64

func newNodeID() NodeID {
	return NodeID(nextNodeID.Add(1))
}

// Kind identifies the concrete node type. A single flat struct tagged by
// kind is used for every node; there is no inheritance chain.
type Kind uint8

const (
	// KindPanel holds exactly one child and applies padding to it.
	KindPanel Kind = iota

	// KindLayout holds any number of children and distributes space
	// among them.
	KindLayout

	// Leaf kinds. These hold no children and interact with the core
	// purely through lifecycle notifications and event callbacks.
	KindText
	KindButton
	KindCheckbox
	KindSlider
	KindTextEdit

	// KindCustom is a leaf for consumer-defined widgets.
	KindCustom
)

var kindNames = [...]string{
	KindPanel:    "panel",
	KindLayout:   "layout",
	KindText:     "text",
	KindButton:   "button",
	KindCheckbox: "checkbox",
	KindSlider:   "slider",
	KindTextEdit: "textedit",
	KindCustom:   "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MaxChildren returns the child capacity for the kind: 0 for leaves, 1 for
// panels, -1 (unbounded) for layouts.
func (k Kind) MaxChildren() int {
	switch k {
	case KindPanel:
		return 1
	case KindLayout:
		return -1
	default:
		return 0
	}
}

// Layer is a fixed rendering and input-priority band. Overlay nodes draw
// above and hit-test before base nodes regardless of depth.
type Layer uint8

const (
	LayerBase Layer = iota
	LayerOverlay

	numLayers = 2
)

func (l Layer) String() string {
	if l == LayerOverlay {
		return "overlay"
	}
	return "base"
}

// Orientation selects the main axis of a layout node.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// ExpandRule is the policy a layout uses to distribute free space among
// its children.
type ExpandRule uint8

const (
	// ExpandNone keeps every child at its own size; the layout resizes
	// itself to hug its children.
	ExpandNone ExpandRule = iota

	// ExpandMainAxis scales children along the main axis by their
	// expand portions; cross-axis sizes are kept.
	ExpandMainAxis

	// ExpandSecondaryAxis fills the cross axis; main-axis sizes are
	// kept. This is the only rule a scrollbar may combine with.
	ExpandSecondaryAxis

	// ExpandBoth scales the main axis by portion and fills the cross axis.
	ExpandBoth
)

// Vec2 is a point or extent in normalized screen coordinates.
type Vec2 struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle in normalized screen coordinates.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func clamp01(v float32) float32 {
	return math32.Min(1, math32.Max(0, v))
}

// Node is a UI tree element. Geometry is normalized: position and size are
// fractions of the screen in [0,1], so all layout math is resolution
// independent.
//
// A parent exclusively owns its children; the parent pointer is never an
// ownership edge. Nodes are constructed detached and become spawned when
// attached under a spawned root, at which point the manager starts
// tracking them.
type Node struct {
	id       NodeID
	kind     Kind
	layer    Layer
	parent   *Node
	children []*Node

	pos  Vec2
	size Vec2

	visible bool
	// occupiesSpace keeps an invisible node in layout math.
	occupiesSpace bool
	// allowRendering is written only by the node's parent during layout
	// clipping and has priority over visible.
	allowRendering bool
	// clipTop/clipBottom are the fractions of the node's own height cut
	// away by the parent's Y-clip window.
	clipTop, clipBottom float32

	expandPortion int
	receivesInput bool

	spawned bool
	depth   int
	mgr     *Manager

	// Panel state.
	padding float32

	// Layout state.
	orientation     Orientation
	expandRule      ExpandRule
	spacing         float32
	scrollEnabled   bool
	scrollOffset    int
	scrollStep      float32
	scrollExtent    float32
	maxScrollOffset int
	// ancestorLayout is the nearest ancestor layout node, recomputed on
	// every reattachment. It participates in recalculation propagation
	// only, never in ownership.
	ancestorLayout *Node
	layoutDirty    bool

	// Widget state. Leaf kinds share the flat struct; only the fields
	// for the node's own kind are meaningful.
	text    string
	lines   []string
	metrics TextMetrics
	checked bool
	value   float32
	buffer  []rune
	caret   int
	topLine int
	pressed bool
	hovered bool
	focused bool

	// Event callbacks, invoked synchronously by the manager.
	OnClick       func(*Node, MouseEvent)
	OnDoubleClick func(*Node, MouseEvent)
	OnMouseDown   func(*Node, MouseEvent)
	OnMouseUp     func(*Node, MouseEvent)
	OnMouseMove   func(*Node, MouseEvent)
	OnMouseEnter  func(*Node)
	OnMouseLeave  func(*Node)
	OnScroll      func(*Node, ScrollEvent) bool
	OnKey         func(*Node, KeyEvent) bool
	OnChar        func(*Node, rune)
	OnGamepad     func(*Node, GamepadEvent) bool
	OnFocusGained func(*Node)
	OnFocusLost   func(*Node)
	// OnChange fires when a widget's value changes (checkbox, slider,
	// text edit).
	OnChange func(*Node)
}

func newNode(kind Kind, layer Layer) *Node {
	return &Node{
		id:             newNodeID(),
		kind:           kind,
		layer:          layer,
		visible:        true,
		allowRendering: true,
		expandPortion:  1,
	}
}

// NewPanel creates a container node holding exactly one child.
func NewPanel(layer Layer) *Node {
	return newNode(KindPanel, layer)
}

// NewLayout creates a layout node with the given orientation.
func NewLayout(layer Layer, o Orientation) *Node {
	n := newNode(KindLayout, layer)
	n.orientation = o
	return n
}

// NewCustom creates a leaf node for a consumer-defined widget. The widget
// drives itself entirely through the callback fields and the manager's
// lifecycle notifications.
func NewCustom(layer Layer) *Node {
	return newNode(KindCustom, layer)
}

// ID returns the node's stable identifier.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Layer returns the node's rendering band.
func (n *Node) Layer() Layer { return n.layer }

// Parent returns the node's parent, nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the node's children in order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of attached children.
func (n *Node) ChildCount() int { return len(n.children) }

// Spawned reports whether the node is attached under a spawned root.
func (n *Node) Spawned() bool { return n.spawned }

// Position returns the normalized position.
func (n *Node) Position() Vec2 { return n.pos }

// Size returns the normalized size.
func (n *Node) Size() Vec2 { return n.size }

// Rect returns the node's screen rectangle.
func (n *Node) Rect() Rect {
	return Rect{X: n.pos.X, Y: n.pos.Y, W: n.size.X, H: n.size.Y}
}

// Visible returns the node's own visibility flag.
func (n *Node) Visible() bool { return n.visible }

// AllowRendering reports whether layout clipping left the node renderable.
func (n *Node) AllowRendering() bool { return n.allowRendering }

// ClipWindow returns the fractions of the node's own height clipped away
// at the top and bottom by the parent's Y-clip window.
func (n *Node) ClipWindow() (top, bottom float32) {
	return n.clipTop, n.clipBottom
}

// ExpandPortion returns the node's space-distribution weight.
func (n *Node) ExpandPortion() int { return n.expandPortion }

// ReceivesInput reports whether the node participates in input routing.
func (n *Node) ReceivesInput() bool { return n.receivesInput }

// OccupiesSpace reports whether the node claims layout space while
// invisible.
func (n *Node) OccupiesSpace() bool { return n.occupiesSpace }

// Hovered reports whether the node was under the cursor last tick.
func (n *Node) Hovered() bool { return n.hovered }

// Pressed reports whether a mouse button went down on the node and has
// not been released yet.
func (n *Node) Pressed() bool { return n.pressed }

// Focused reports whether the node holds keyboard focus.
func (n *Node) Focused() bool { return n.focused }

// SetPosition moves the node. Coordinates clamp to [0,1] and the change
// invalidates the node's own layout and its nearest ancestor layout.
func (n *Node) SetPosition(x, y float32) {
	n.pos = Vec2{X: clamp01(x), Y: clamp01(y)}
	n.geometryChanged()
}

// SetSize resizes the node. Extents clamp to [0,1] and the change
// invalidates the node's own layout and its nearest ancestor layout.
func (n *Node) SetSize(w, h float32) {
	n.size = Vec2{X: clamp01(w), Y: clamp01(h)}
	n.geometryChanged()
}

func (n *Node) geometryChanged() {
	switch n.kind {
	case KindText, KindTextEdit:
		n.reflowText()
	}
	n.invalidateLayout()
}

// SetVisible toggles the node's own visibility flag. Hiding a node
// excludes its whole subtree from rendering and hit-testing without
// mutating any descendant's own flag.
func (n *Node) SetVisible(v bool) {
	if n.visible == v {
		return
	}
	n.visible = v
	if n.spawned {
		n.mgr.notifyVisibility(n)
	}
	n.invalidateLayout()
}

// SetOccupiesSpace controls whether the node keeps claiming layout space
// while invisible.
func (n *Node) SetOccupiesSpace(b bool) {
	if n.occupiesSpace == b {
		return
	}
	n.occupiesSpace = b
	n.invalidateLayout()
}

// SetExpandPortion sets the node's space-distribution weight. Values
// below 1 clamp to 1.
func (n *Node) SetExpandPortion(p int) {
	if p < 1 {
		p = 1
	}
	if n.expandPortion == p {
		return
	}
	n.expandPortion = p
	n.invalidateLayout()
}

// SetReceivesInput registers or unregisters the node for input routing.
// Toggling repeatedly is harmless; manager-side registration is
// idempotent.
func (n *Node) SetReceivesInput(b bool) {
	if n.receivesInput == b {
		return
	}
	n.receivesInput = b
	if n.spawned {
		n.mgr.notifyInputState(n)
	}
}

// Depth returns the node's ancestor count. It is only valid while
// spawned; calling it on a detached node is a precondition violation.
func (n *Node) Depth() (int, error) {
	if !n.spawned {
		return 0, &PreconditionViolation{Op: "Depth", Detail: "node is not spawned"}
	}
	return n.depth, nil
}

// EffectivelyVisible reports whether the node and all its ancestors are
// visible.
func (n *Node) EffectivelyVisible() bool {
	for c := n; c != nil; c = c.parent {
		if !c.visible {
			return false
		}
	}
	return true
}

// canRender reports whether the full ancestor chain is visible and
// unclipped enough to render.
func (n *Node) canRender() bool {
	for c := n; c != nil; c = c.parent {
		if !c.visible || !c.allowRendering {
			return false
		}
	}
	return true
}

// AttachChild appends c to the node's children. Exceeding the kind's
// child capacity, attaching an already-parented node, or creating a cycle
// is an invariant violation and leaves the tree unchanged. If the node is
// spawned the child subtree spawns immediately.
func (n *Node) AttachChild(c *Node) error {
	if c == nil {
		return &InvariantViolation{Op: "AttachChild", Detail: "nil child"}
	}
	if c.parent != nil {
		return &InvariantViolation{Op: "AttachChild", Detail: "child already has a parent"}
	}
	for a := n; a != nil; a = a.parent {
		if a == c {
			return &InvariantViolation{Op: "AttachChild", Detail: "attachment would create a cycle"}
		}
	}
	if max := n.kind.MaxChildren(); max >= 0 && len(n.children) >= max {
		return &InvariantViolation{
			Op:     "AttachChild",
			Detail: kindNames[n.kind] + " node exceeds its child capacity",
		}
	}

	n.children = append(n.children, c)
	c.parent = n
	c.refreshAncestorLayouts()
	if n.spawned {
		c.spawnUnder(n.mgr, n.depth+1)
	}
	n.invalidateLayout()
	return nil
}

// DetachChild removes c from the node's children. The child subtree
// despawns synchronously: by the time the call returns the manager holds
// no reference to any node in it.
func (n *Node) DetachChild(c *Node) error {
	idx := -1
	for i, ch := range n.children {
		if ch == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &PreconditionViolation{Op: "DetachChild", Detail: "node is not a child"}
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	c.parent = nil
	if c.spawned {
		c.despawn()
	}
	c.refreshAncestorLayouts()
	n.invalidateLayout()
	return nil
}

// spawnUnder marks the subtree spawned, assigns depths, and registers
// every node with the manager.
func (n *Node) spawnUnder(m *Manager, depth int) {
	n.mgr = m
	n.spawned = true
	n.depth = depth
	m.notifySpawned(n)
	if n.kind == KindLayout || n.kind == KindPanel {
		n.markLayoutDirty()
	}
	for _, c := range n.children {
		c.spawnUnder(m, depth+1)
	}
}

// despawn unregisters the subtree from the manager. Removal is
// synchronous and complete before the call returns, so no queued event
// can reach a despawned node afterwards.
func (n *Node) despawn() {
	m := n.mgr
	n.spawned = false
	n.mgr = nil
	if m != nil {
		m.notifyDespawned(n)
	}
	for _, c := range n.children {
		c.despawn()
	}
}

// refreshAncestorLayouts recomputes the weak ancestor-layout reference for
// every layout node in the subtree. Called on every reattachment.
func (n *Node) refreshAncestorLayouts() {
	if n.kind == KindLayout {
		n.ancestorLayout = nearestLayoutAbove(n.parent)
	}
	for _, c := range n.children {
		c.refreshAncestorLayouts()
	}
}

func nearestLayoutAbove(p *Node) *Node {
	for ; p != nil; p = p.parent {
		if p.kind == KindLayout {
			return p
		}
	}
	return nil
}

// invalidateLayout marks the node itself (when it lays out children) and
// its nearest ancestor layout for recalculation. The work list is flushed
// once per tick by the manager; an explicit Recalculate forces it.
func (n *Node) invalidateLayout() {
	if n.kind == KindLayout || n.kind == KindPanel {
		n.markLayoutDirty()
	}
	var above *Node
	if n.kind == KindLayout {
		above = n.ancestorLayout
	} else {
		above = nearestLayoutAbove(n.parent)
	}
	if above != nil {
		above.markLayoutDirty()
	}
}

func (n *Node) markLayoutDirty() {
	n.layoutDirty = true
	if n.spawned && n.mgr != nil {
		n.mgr.enqueueLayout(n)
	}
}
