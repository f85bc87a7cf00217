// Package driver binds the lattice core to Ebitengine: it polls raw
// device input into manager ticks, draws node state once per frame, and
// adapts a text face into the core's glyph-metrics service. The core
// never sees Ebitengine types.
package driver

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/latticeui/lattice"
)

// Options configures the window and the shared text face.
type Options struct {
	Title  string
	Width  int
	Height int

	// Face is used both for drawing labels and as the metrics source.
	Face text.Face
}

// Driver runs a lattice Manager as an ebiten.Game.
type Driver struct {
	mgr  *lattice.Manager
	opts Options

	wheelAccum float64
}

// New wraps a manager for Ebitengine. The manager's tree should already
// have a root; widgets can be added at any time.
func New(mgr *lattice.Manager, opts Options) *Driver {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	return &Driver{mgr: mgr, opts: opts}
}

// Manager returns the wrapped manager.
func (d *Driver) Manager() *lattice.Manager { return d.mgr }

// Metrics returns a glyph-metrics service over the driver's face,
// normalized against the logical window size.
func (d *Driver) Metrics() lattice.TextMetrics {
	return NewFaceMetrics(d.opts.Face, d.opts.Width, d.opts.Height)
}

var mouseButtons = map[ebiten.MouseButton]lattice.MouseButton{
	ebiten.MouseButtonLeft:   lattice.MouseButtonLeft,
	ebiten.MouseButtonRight:  lattice.MouseButtonRight,
	ebiten.MouseButtonMiddle: lattice.MouseButtonMiddle,
}

var keyMap = map[ebiten.Key]lattice.Key{
	ebiten.KeyEnter:      lattice.KeyEnter,
	ebiten.KeyEscape:     lattice.KeyEscape,
	ebiten.KeyBackspace:  lattice.KeyBackspace,
	ebiten.KeyDelete:     lattice.KeyDelete,
	ebiten.KeyTab:        lattice.KeyTab,
	ebiten.KeySpace:      lattice.KeySpace,
	ebiten.KeyArrowLeft:  lattice.KeyLeft,
	ebiten.KeyArrowRight: lattice.KeyRight,
	ebiten.KeyArrowUp:    lattice.KeyUp,
	ebiten.KeyArrowDown:  lattice.KeyDown,
	ebiten.KeyHome:       lattice.KeyHome,
	ebiten.KeyEnd:        lattice.KeyEnd,
	ebiten.KeyPageUp:     lattice.KeyPageUp,
	ebiten.KeyPageDown:   lattice.KeyPageDown,
}

var gamepadMap = map[ebiten.StandardGamepadButton]lattice.GamepadButton{
	ebiten.StandardGamepadButtonRightBottom: lattice.GamepadConfirm,
	ebiten.StandardGamepadButtonRightRight:  lattice.GamepadCancel,
	ebiten.StandardGamepadButtonLeftTop:     lattice.GamepadUp,
	ebiten.StandardGamepadButtonLeftBottom:  lattice.GamepadDown,
	ebiten.StandardGamepadButtonLeftLeft:    lattice.GamepadLeft,
	ebiten.StandardGamepadButtonLeftRight:   lattice.GamepadRight,
}

func modifiers() lattice.Modifiers {
	var mods lattice.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= lattice.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= lattice.ModControl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= lattice.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= lattice.ModMeta
	}
	return mods
}

// Update gathers one tick of input and feeds it to the manager in the
// core's fixed event order.
func (d *Driver) Update() error {
	frame := lattice.InputFrame{Mods: modifiers()}

	cx, cy := ebiten.CursorPosition()
	frame.CursorPos = lattice.Vec2{
		X: float32(cx) / float32(d.opts.Width),
		Y: float32(cy) / float32(d.opts.Height),
	}

	for eb, lb := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(eb) {
			frame.Pressed = append(frame.Pressed, lb)
		}
		if inpututil.IsMouseButtonJustReleased(eb) {
			frame.Released = append(frame.Released, lb)
		}
	}

	for eb, lk := range keyMap {
		if inpututil.IsKeyJustPressed(eb) {
			frame.Keys = append(frame.Keys, lattice.KeyEvent{Key: lk, Mods: frame.Mods})
		}
	}
	frame.Chars = ebiten.AppendInputChars(frame.Chars)

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for eb, gb := range gamepadMap {
			if inpututil.IsStandardGamepadButtonJustPressed(id, eb) {
				frame.Gamepad = append(frame.Gamepad, gb)
			}
		}
	}

	// Trackpads report fractional wheel offsets; surface whole steps
	// and carry the remainder. Ebitengine's positive Y means scrolling
	// up, the core's positive step means revealing content below.
	_, wy := ebiten.Wheel()
	d.wheelAccum -= wy
	steps := int(math.Trunc(d.wheelAccum))
	d.wheelAccum -= float64(steps)
	frame.WheelSteps = steps

	dt := float32(1) / float32(ebiten.TPS())
	d.mgr.Tick(frame, dt)
	return nil
}

// Layout implements ebiten.Game with a fixed logical size.
func (d *Driver) Layout(_, _ int) (int, int) {
	return d.opts.Width, d.opts.Height
}

// Run opens the window and drives the game loop until it exits.
func (d *Driver) Run() error {
	ebiten.SetWindowSize(d.opts.Width, d.opts.Height)
	ebiten.SetWindowTitle(d.opts.Title)
	return ebiten.RunGame(d)
}
