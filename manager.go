package lattice

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// maxLayoutPasses bounds the per-tick layout flush. Auto-sizing layouts
// re-dirty their ancestors, so the work list is drained in passes until
// geometry settles.
const maxLayoutPasses = 32

// Manager is the per-scene registry of spawned nodes and the single entry
// point for all input events. It owns focus, modal and hover state and
// tracks spawned+visible nodes per layer and kind.
//
// All tree mutation, layout recalculation and dispatch run synchronously
// on one owning goroutine. The mutex only guards the tracking sets so
// other goroutines may query them; background work hands results back to
// the owning goroutine through Post.
type Manager struct {
	mu sync.Mutex

	cfg  Config
	root *Node

	// Stable-ID arena: every spawned node, keyed by ID. The index sets
	// below hold IDs only, so a dangling pointer is impossible by
	// construction.
	nodes map[NodeID]*Node

	// tracked holds spawned nodes whose own visibility flag is set,
	// bucketed by layer and kind.
	tracked [numLayers]map[Kind]map[NodeID]struct{}

	// inputReceiving holds every registered input receiver; rendered is
	// the subset that actually made it to the screen last tick, which is
	// what hit-testing runs against.
	inputReceiving map[NodeID]struct{}
	rendered       map[NodeID]struct{}

	// dirtyLayouts is the recalculation work list, flushed once per tick.
	dirtyLayouts map[NodeID]*Node

	// Owning-goroutine state; never touched off-thread.
	focused       *Node
	hovered       *Node
	pressedNode   *Node
	pressedButton MouseButton
	lastClickTime time.Time
	lastClickPos  Vec2
	clickCount    int

	modalRoot *Node
	modalSet  map[NodeID]struct{}

	posted []func()

	animations map[NodeID]*scrollAnimation

	now func() time.Time
	log *slog.Logger
}

// NewManager creates a manager with the given configuration. Out-of-range
// numeric settings clamp to sane values.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		cfg:            cfg.clamped(),
		nodes:          make(map[NodeID]*Node),
		inputReceiving: make(map[NodeID]struct{}),
		rendered:       make(map[NodeID]struct{}),
		dirtyLayouts:   make(map[NodeID]*Node),
		animations:     make(map[NodeID]*scrollAnimation),
		now:            time.Now,
		log:            slog.Default(),
	}
	for l := range m.tracked {
		m.tracked[l] = make(map[Kind]map[NodeID]struct{})
	}
	return m
}

// Config returns the manager's effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// SetRoot installs the tree root and spawns the whole subtree at depth
// zero. A previous root despawns first.
func (m *Manager) SetRoot(n *Node) error {
	if n != nil && n.parent != nil {
		return &PreconditionViolation{Op: "SetRoot", Detail: "root must be detached"}
	}
	if m.root != nil {
		m.root.despawn()
	}
	m.root = n
	if n != nil {
		n.spawnUnder(m, 0)
	}
	return nil
}

// Root returns the current tree root.
func (m *Manager) Root() *Node { return m.root }

// NodeByID resolves an ID against the arena; nil if the node despawned.
func (m *Manager) NodeByID(id NodeID) *Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodes[id]
}

// DepthOf returns the depth of the node with the given ID. Unknown IDs
// are a precondition violation, matching Node.Depth on despawned nodes.
func (m *Manager) DepthOf(id NodeID) (int, error) {
	m.mu.Lock()
	n := m.nodes[id]
	m.mu.Unlock()
	if n == nil {
		return 0, &PreconditionViolation{Op: "DepthOf", Detail: "node is not spawned"}
	}
	return n.depth, nil
}

// NodesOf returns the spawned nodes of one kind on one layer whose own
// visibility flag is set.
func (m *Manager) NodesOf(layer Layer, kind Kind) []*Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.tracked[layer][kind]
	out := make([]*Node, 0, len(set))
	for id := range set {
		if n := m.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Post queues fn to run on the owning goroutine at the start of the next
// tick. This is the only supported way for background work to touch the
// tree.
func (m *Manager) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()
}

func (m *Manager) runPosted() {
	m.mu.Lock()
	batch := m.posted
	m.posted = nil
	m.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
}

// ============================================================================
// Lifecycle notifications (called by nodes; set bookkeeping only)
// ============================================================================

func (m *Manager) notifySpawned(n *Node) {
	m.mu.Lock()
	m.nodes[n.id] = n
	if n.visible {
		m.trackLocked(n)
	}
	if n.receivesInput {
		m.inputReceiving[n.id] = struct{}{}
	}
	m.mu.Unlock()
}

func (m *Manager) notifyDespawned(n *Node) {
	m.mu.Lock()
	delete(m.nodes, n.id)
	m.untrackLocked(n)
	delete(m.inputReceiving, n.id)
	delete(m.rendered, n.id)
	delete(m.dirtyLayouts, n.id)
	delete(m.animations, n.id)
	if m.modalSet != nil {
		delete(m.modalSet, n.id)
	}
	modalDied := m.modalRoot == n
	m.mu.Unlock()

	if m.hovered == n {
		m.hovered = nil
	}
	if m.pressedNode == n {
		m.pressedNode = nil
		m.pressedButton = MouseButtonNone
	}
	if m.focused == n {
		// The node is mid-despawn; drop focus without callbacks.
		n.focused = false
		m.focused = nil
	}
	if modalDied {
		m.ClearModal()
	}
}

func (m *Manager) notifyVisibility(n *Node) {
	m.mu.Lock()
	if n.visible {
		m.trackLocked(n)
	} else {
		m.untrackLocked(n)
	}
	m.mu.Unlock()

	// A modal or focused node hidden anywhere along its ancestor chain
	// must not keep its privileged role.
	if m.modalRoot != nil && !m.modalRoot.EffectivelyVisible() {
		m.ClearModal()
	}
	if m.focused != nil && !m.focused.EffectivelyVisible() {
		m.Blur()
	}
}

func (m *Manager) notifyInputState(n *Node) {
	m.mu.Lock()
	if n.receivesInput {
		m.inputReceiving[n.id] = struct{}{}
	} else {
		delete(m.inputReceiving, n.id)
		delete(m.rendered, n.id)
		if m.modalSet != nil {
			delete(m.modalSet, n.id)
		}
	}
	clearModal := m.modalRoot == n && !n.receivesInput
	m.mu.Unlock()

	if clearModal {
		m.ClearModal()
	}
}

// trackLocked and untrackLocked are idempotent: a node can toggle its
// registration many times without leaking or duplicating entries.
func (m *Manager) trackLocked(n *Node) {
	byKind := m.tracked[n.layer]
	set := byKind[n.kind]
	if set == nil {
		set = make(map[NodeID]struct{})
		byKind[n.kind] = set
	}
	set[n.id] = struct{}{}
}

func (m *Manager) untrackLocked(n *Node) {
	if set := m.tracked[n.layer][n.kind]; set != nil {
		delete(set, n.id)
	}
}

// ============================================================================
// Layout flush
// ============================================================================

func (m *Manager) enqueueLayout(n *Node) {
	m.mu.Lock()
	m.dirtyLayouts[n.id] = n
	m.mu.Unlock()
}

// PerformLayout drains the dirty work list, shallowest node first so
// parents place children before the children place their own. Auto-sizing
// can re-dirty ancestors, so passes repeat until the tree settles.
func (m *Manager) PerformLayout() {
	for pass := 0; pass < maxLayoutPasses; pass++ {
		m.mu.Lock()
		if len(m.dirtyLayouts) == 0 {
			m.mu.Unlock()
			return
		}
		batch := acquireNodeSlice()
		for _, n := range m.dirtyLayouts {
			batch = append(batch, n)
		}
		m.dirtyLayouts = make(map[NodeID]*Node)
		m.mu.Unlock()

		sort.Slice(batch, func(i, j int) bool {
			if batch[i].depth != batch[j].depth {
				return batch[i].depth < batch[j].depth
			}
			return batch[i].id < batch[j].id
		})
		for _, n := range batch {
			// An ancestor's pass may already have recalculated this
			// subtree and cleared the flag.
			if n.spawned && n.layoutDirty {
				recalcTree(n)
			}
		}
		releaseNodeSlice(batch)
	}
	m.log.Warn("lattice: layout did not settle", "passes", maxLayoutPasses)
}

// ============================================================================
// Tick
// ============================================================================

// Tick processes one frame worth of input in the fixed order: posted
// callbacks, scroll animations, layout flush, hover transitions, presses,
// releases, key/char/gamepad input, wheel scrolling, and finally the
// rendered-set snapshot the next tick's hit tests run against. Every event
// targets exactly one dispatch set and is delivered synchronously.
func (m *Manager) Tick(in InputFrame, dt float32) {
	m.runPosted()
	m.stepScrollAnimations(dt)
	m.PerformLayout()

	m.DispatchCursorMove(in.CursorPos, in.Mods)
	for _, b := range in.Pressed {
		m.DispatchMouseDown(in.CursorPos, b, in.Mods)
	}
	for _, b := range in.Released {
		m.DispatchMouseUp(in.CursorPos, b, in.Mods)
	}
	for _, k := range in.Keys {
		m.DispatchKey(k)
	}
	for _, r := range in.Chars {
		m.DispatchChar(r)
	}
	for _, g := range in.Gamepad {
		m.DispatchGamepad(GamepadEvent{Button: g})
	}
	if in.WheelSteps != 0 {
		m.DispatchScroll(in.CursorPos, in.WheelSteps, in.Mods)
	}

	// Event handlers mutate geometry; settle before snapshotting.
	m.PerformLayout()
	m.RefreshRendered()
}

// ============================================================================
// Hit testing and hover
// ============================================================================

// clippedRect is the node's rect shrunk by its own Y-clip window.
func (n *Node) clippedRect() Rect {
	top, bottom := n.ownWindow()
	h := bottom - top
	if h < 0 {
		h = 0
	}
	return Rect{X: n.pos.X, Y: top, W: n.size.X, H: h}
}

// localPoint converts a screen point to fractions of the node's own rect.
func (n *Node) localPoint(p Vec2) Vec2 {
	var l Vec2
	if n.size.X > 0 {
		l.X = (p.X - n.pos.X) / n.size.X
	}
	if n.size.Y > 0 {
		l.Y = (p.Y - n.pos.Y) / n.size.Y
	}
	return l
}

// hitBefore orders candidates front to back: overlay before base, then
// deepest first, then newest.
func hitBefore(a, b *Node) bool {
	if a.layer != b.layer {
		return a.layer > b.layer
	}
	if a.depth != b.depth {
		return a.depth > b.depth
	}
	return a.id > b.id
}

// HitTest returns the frontmost input-receiving node under the point,
// considering only nodes actually rendered last tick, and only the modal
// subtree while a modal is active.
func (m *Manager) HitTest(p Vec2) *Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *Node
	for id := range m.inputReceiving {
		if _, ok := m.rendered[id]; !ok {
			continue
		}
		if m.modalSet != nil {
			if _, in := m.modalSet[id]; !in {
				continue
			}
		}
		n := m.nodes[id]
		if n == nil || !n.clippedRect().Contains(p.X, p.Y) {
			continue
		}
		if best == nil || hitBefore(n, best) {
			best = n
		}
	}
	return best
}

// DispatchCursorMove updates hover state and delivers move events. Hover
// transitions are edge triggered: leaving fires before entering, exactly
// once per change.
func (m *Manager) DispatchCursorMove(p Vec2, mods Modifiers) {
	target := m.HitTest(p)

	if target != m.hovered {
		old := m.hovered
		m.hovered = target
		if old != nil {
			old.hovered = false
			if old.OnMouseLeave != nil {
				old.OnMouseLeave(old)
			}
		}
		if target != nil {
			target.hovered = true
			if target.OnMouseEnter != nil {
				target.OnMouseEnter(target)
			}
		}
	}

	if target != nil && target.OnMouseMove != nil {
		ev := MouseEvent{Pos: p, Local: target.localPoint(p), Mods: mods}
		target.OnMouseMove(target, ev)
	}

	// While a button is held the pressed node keeps receiving moves even
	// after the cursor leaves it, so sliders can drag past their edges.
	if m.pressedNode != nil && m.pressedNode != target && m.pressedNode.OnMouseMove != nil {
		n := m.pressedNode
		ev := MouseEvent{Pos: p, Local: n.localPoint(p), Button: m.pressedButton, Mods: mods}
		n.OnMouseMove(n, ev)
	}
}

// DispatchMouseDown routes a button press to the hit-tested node. A press
// on empty space drops keyboard focus, except while a modal subtree is
// active: presses outside it are swallowed whole, with no callbacks.
func (m *Manager) DispatchMouseDown(p Vec2, b MouseButton, mods Modifiers) {
	target := m.HitTest(p)
	if target == nil {
		if m.modalRoot == nil {
			m.Blur()
		}
		return
	}
	m.pressedNode = target
	m.pressedButton = b
	target.pressed = true
	if target.OnMouseDown != nil {
		ev := MouseEvent{Pos: p, Local: target.localPoint(p), Button: b, Mods: mods}
		target.OnMouseDown(target, ev)
	}
}

// DispatchMouseUp routes a button release and synthesizes click and
// double-click events when the release lands on the pressed node.
func (m *Manager) DispatchMouseUp(p Vec2, b MouseButton, mods Modifiers) {
	target := m.HitTest(p)
	pressed := m.pressedNode

	if pressed != nil {
		pressed.pressed = false
	}

	if target != nil {
		if target.OnMouseUp != nil {
			ev := MouseEvent{Pos: p, Local: target.localPoint(p), Button: b, Mods: mods}
			target.OnMouseUp(target, ev)
		}
	} else if pressed != nil && b == m.pressedButton && pressed.OnMouseUp != nil {
		// Release outside the pressed node still ends its drag.
		ev := MouseEvent{Pos: p, Local: pressed.localPoint(p), Button: b, Mods: mods}
		pressed.OnMouseUp(pressed, ev)
	}

	if pressed != nil && target == pressed && b == m.pressedButton {
		m.handleClick(target, p, b, mods)
	}
	if pressed != nil && b == m.pressedButton {
		m.pressedNode = nil
		m.pressedButton = MouseButtonNone
	}
}

func (m *Manager) handleClick(target *Node, p Vec2, b MouseButton, mods Modifiers) {
	now := m.now()
	dx := p.X - m.lastClickPos.X
	dy := p.Y - m.lastClickPos.Y
	slop := m.cfg.DoubleClickSlop
	if now.Sub(m.lastClickTime) <= m.cfg.doubleClickWindow() && dx*dx+dy*dy <= slop*slop {
		m.clickCount++
	} else {
		m.clickCount = 1
	}
	m.lastClickTime = now
	m.lastClickPos = p

	ev := MouseEvent{Pos: p, Local: target.localPoint(p), Button: b, Mods: mods, Clicks: m.clickCount}
	if target.OnClick != nil {
		target.OnClick(target, ev)
	}
	if m.clickCount == 2 && target.OnDoubleClick != nil {
		ev.Clicks = 2
		target.OnDoubleClick(target, ev)
	}
}

// ============================================================================
// Keyboard and gamepad
// ============================================================================

// DispatchKey delivers a key press to the focused node only.
func (m *Manager) DispatchKey(ev KeyEvent) {
	n := m.focusTarget()
	if n == nil {
		return
	}
	if n.OnKey != nil {
		n.OnKey(n, ev)
	}
}

// DispatchChar delivers character input to the focused node only.
func (m *Manager) DispatchChar(r rune) {
	n := m.focusTarget()
	if n == nil {
		return
	}
	if n.OnChar != nil {
		n.OnChar(n, r)
	}
}

// DispatchGamepad delivers a gamepad button to the focused node only.
func (m *Manager) DispatchGamepad(ev GamepadEvent) {
	n := m.focusTarget()
	if n == nil {
		return
	}
	if n.OnGamepad != nil {
		n.OnGamepad(n, ev)
	}
}

// focusTarget returns the focused node unless a modal subtree excludes it.
func (m *Manager) focusTarget() *Node {
	n := m.focused
	if n == nil {
		return nil
	}
	m.mu.Lock()
	excluded := m.modalSet != nil
	if excluded {
		_, in := m.modalSet[n.id]
		excluded = !in
	}
	m.mu.Unlock()
	if excluded {
		return nil
	}
	return n
}

// ============================================================================
// Scroll routing
// ============================================================================

func scrollCapable(n *Node) bool {
	return n.OnScroll != nil || (n.kind == KindLayout && n.scrollEnabled)
}

// DispatchScroll delivers a wheel event to the deepest scroll-capable node
// under the cursor, bubbling to the nearest scroll-capable ancestor until
// one handles it. It is never broadcast.
func (m *Manager) DispatchScroll(p Vec2, steps int, mods Modifiers) {
	target := m.deepestScrollTarget(p)
	ev := ScrollEvent{Pos: p, Steps: steps, Mods: mods}
	for n := target; n != nil; n = nearestScrollCapableAbove(n.parent) {
		if m.modalRoot != nil && !n.isWithin(m.modalRoot) {
			continue
		}
		if n.OnScroll != nil && n.OnScroll(n, ev) {
			return
		}
		if n.kind == KindLayout && n.scrollEnabled && n.ScrollBy(steps) {
			return
		}
	}
}

func nearestScrollCapableAbove(p *Node) *Node {
	for ; p != nil; p = p.parent {
		if scrollCapable(p) {
			return p
		}
	}
	return nil
}

// isWithin reports whether n is root or one of root's descendants.
func (n *Node) isWithin(root *Node) bool {
	for c := n; c != nil; c = c.parent {
		if c == root {
			return true
		}
	}
	return false
}

// deepestScrollTarget walks the rendered tree for the deepest
// scroll-capable node containing the point.
func (m *Manager) deepestScrollTarget(p Vec2) *Node {
	var best *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || !n.visible || !n.allowRendering {
			return
		}
		if scrollCapable(n) && n.clippedRect().Contains(p.X, p.Y) {
			if best == nil || hitBefore(n, best) {
				best = n
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
	return best
}

// ============================================================================
// Focus
// ============================================================================

// Focus gives n keyboard focus. Focusing a despawned or effectively
// invisible node is a precondition violation. The previous holder's
// lost-focus callback fires strictly before the new holder's gained-focus
// callback.
func (m *Manager) Focus(n *Node) error {
	if n != nil {
		if !n.spawned {
			return &PreconditionViolation{Op: "Focus", Detail: "node is not spawned"}
		}
		if !n.EffectivelyVisible() {
			return &PreconditionViolation{Op: "Focus", Detail: "node is not visible"}
		}
	}
	if m.focused == n {
		return nil
	}
	old := m.focused
	if old != nil {
		old.focused = false
		if old.OnFocusLost != nil {
			old.OnFocusLost(old)
		}
	}
	m.focused = n
	if n != nil {
		n.focused = true
		if n.OnFocusGained != nil {
			n.OnFocusGained(n)
		}
	}
	return nil
}

// Blur drops keyboard focus entirely.
func (m *Manager) Blur() {
	_ = m.Focus(nil)
}

// FocusedNode returns the focus holder, nil when none.
func (m *Manager) FocusedNode() *Node { return m.focused }

// HoveredNode returns the node under the cursor as of the last move.
func (m *Manager) HoveredNode() *Node { return m.hovered }

// ============================================================================
// Modal subtrees
// ============================================================================

// SetModal grants n and its input-receiving descendants exclusive input
// priority. The snapshot is taken once; nodes attached afterwards are not
// part of it. Modal state clears automatically the moment n despawns,
// becomes invisible or stops receiving input.
func (m *Manager) SetModal(n *Node) error {
	if n == nil {
		m.ClearModal()
		return nil
	}
	if !n.spawned {
		return &PreconditionViolation{Op: "SetModal", Detail: "node is not spawned"}
	}
	if !n.EffectivelyVisible() {
		return &PreconditionViolation{Op: "SetModal", Detail: "node is not visible"}
	}

	set := make(map[NodeID]struct{})
	var walk func(c *Node)
	walk = func(c *Node) {
		if c.receivesInput {
			set[c.id] = struct{}{}
		}
		for _, ch := range c.children {
			walk(ch)
		}
	}
	walk(n)

	m.mu.Lock()
	m.modalRoot = n
	m.modalSet = set
	m.mu.Unlock()
	m.log.Debug("lattice: modal set", "node", n.id, "members", len(set))
	return nil
}

// ClearModal lifts the modal restriction; a no-op when none is active.
func (m *Manager) ClearModal() {
	m.mu.Lock()
	active := m.modalRoot != nil
	m.modalRoot = nil
	m.modalSet = nil
	m.mu.Unlock()
	if active {
		m.log.Debug("lattice: modal cleared")
	}
}

// ModalActive reports whether a modal subtree currently owns input.
func (m *Manager) ModalActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modalRoot != nil
}

// ModalRoot returns the modal node, nil when none.
func (m *Manager) ModalRoot() *Node { return m.modalRoot }

// ============================================================================
// Rendered-set snapshot
// ============================================================================

// RefreshRendered rebuilds the set of input receivers that actually
// reached the screen this tick: visible along the whole ancestor chain
// and not clipped away by any scroll window. Hit tests run against this
// snapshot until the next refresh.
func (m *Manager) RefreshRendered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.rendered)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || !n.visible || !n.allowRendering {
			return
		}
		if n.receivesInput {
			if _, ok := m.inputReceiving[n.id]; ok {
				m.rendered[n.id] = struct{}{}
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
}

// RenderList returns every renderable node back to front: base layer
// before overlay, shallow before deep, so the deepest node draws last and
// ends up topmost. The renderer reads this once per frame.
func (m *Manager) RenderList() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || !n.visible || !n.allowRendering {
			return
		}
		out = append(out, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].layer != out[j].layer {
			return out[i].layer < out[j].layer
		}
		if out[i].depth != out[j].depth {
			return out[i].depth < out[j].depth
		}
		return out[i].id < out[j].id
	})
	return out
}
