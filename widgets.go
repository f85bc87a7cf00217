package lattice

import "github.com/chewxy/math32"

// The built-in leaf widgets live entirely on the public hook surface: a
// constructor wires the callbacks, and the manager's lifecycle
// notifications handle registration. Nothing here reaches into the
// solver or the routing internals.

// sliderKeyStep is how far one arrow key press moves a slider.
const sliderKeyStep = 0.05

func focusSelf(n *Node) {
	if n.mgr != nil {
		// A node receiving a press is spawned and visible.
		_ = n.mgr.Focus(n)
	}
}

// synthClick invokes the node's click callback for keyboard or gamepad
// activation.
func synthClick(n *Node) {
	if n.OnClick != nil {
		center := Vec2{X: n.pos.X + n.size.X/2, Y: n.pos.Y + n.size.Y/2}
		n.OnClick(n, MouseEvent{Pos: center, Local: Vec2{X: 0.5, Y: 0.5}, Clicks: 1})
	}
}

// NewButton creates a push button. Assign OnClick for the press action;
// Enter, Space and the gamepad confirm button activate it while focused.
func NewButton(layer Layer, label string) *Node {
	n := newNode(KindButton, layer)
	n.text = label
	n.receivesInput = true
	n.OnMouseDown = func(b *Node, _ MouseEvent) { focusSelf(b) }
	n.OnKey = func(b *Node, ev KeyEvent) bool {
		if ev.Key == KeyEnter || ev.Key == KeySpace {
			synthClick(b)
			return true
		}
		return false
	}
	n.OnGamepad = func(b *Node, ev GamepadEvent) bool {
		if ev.Button == GamepadConfirm {
			synthClick(b)
			return true
		}
		return false
	}
	return n
}

// NewCheckbox creates a toggle with a label. Clicks, Space and the
// gamepad confirm button flip it; OnChange fires on every flip.
func NewCheckbox(layer Layer, label string) *Node {
	n := newNode(KindCheckbox, layer)
	n.text = label
	n.receivesInput = true
	n.OnMouseDown = func(c *Node, _ MouseEvent) { focusSelf(c) }
	n.OnClick = func(c *Node, _ MouseEvent) { c.toggle() }
	n.OnKey = func(c *Node, ev KeyEvent) bool {
		if ev.Key == KeySpace {
			c.toggle()
			return true
		}
		return false
	}
	n.OnGamepad = func(c *Node, ev GamepadEvent) bool {
		if ev.Button == GamepadConfirm {
			c.toggle()
			return true
		}
		return false
	}
	return n
}

func (n *Node) toggle() {
	n.checked = !n.checked
	if n.OnChange != nil {
		n.OnChange(n)
	}
}

// Checked returns the checkbox state.
func (n *Node) Checked() bool { return n.checked }

// SetChecked sets the checkbox state without firing OnChange.
func (n *Node) SetChecked(v bool) { n.checked = v }

// NewSlider creates a horizontal slider over [0,1]. Dragging anywhere on
// the track moves the thumb; arrow keys and the gamepad d-pad nudge it
// while focused. OnChange fires on every value change.
func NewSlider(layer Layer) *Node {
	n := newNode(KindSlider, layer)
	n.receivesInput = true
	n.OnMouseDown = func(s *Node, ev MouseEvent) {
		focusSelf(s)
		s.setValueUser(ev.Local.X)
	}
	n.OnMouseMove = func(s *Node, ev MouseEvent) {
		if s.pressed {
			s.setValueUser(ev.Local.X)
		}
	}
	n.OnKey = func(s *Node, ev KeyEvent) bool {
		switch ev.Key {
		case KeyLeft:
			s.setValueUser(s.value - sliderKeyStep)
		case KeyRight:
			s.setValueUser(s.value + sliderKeyStep)
		case KeyHome:
			s.setValueUser(0)
		case KeyEnd:
			s.setValueUser(1)
		default:
			return false
		}
		return true
	}
	n.OnGamepad = func(s *Node, ev GamepadEvent) bool {
		switch ev.Button {
		case GamepadLeft:
			s.setValueUser(s.value - sliderKeyStep)
		case GamepadRight:
			s.setValueUser(s.value + sliderKeyStep)
		default:
			return false
		}
		return true
	}
	return n
}

// Value returns the slider position in [0,1].
func (n *Node) Value() float32 { return n.value }

// SetValue moves the slider without firing OnChange.
func (n *Node) SetValue(v float32) {
	n.value = clamp01(v)
}

func (n *Node) setValueUser(v float32) {
	v = clamp01(v)
	if math32.Abs(v-n.value) < 1e-6 {
		return
	}
	n.value = v
	if n.OnChange != nil {
		n.OnChange(n)
	}
}
