package driver

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/latticeui/lattice"
)

// Flat default palette. State variants are derived per kind at draw time.
var (
	colPanel      = color.RGBA{R: 0x2b, G: 0x2f, B: 0x36, A: 0xff}
	colPanelEdge  = color.RGBA{R: 0x44, G: 0x4a, B: 0x54, A: 0xff}
	colButton     = color.RGBA{R: 0x3a, G: 0x5f, B: 0x8a, A: 0xff}
	colButtonHot  = color.RGBA{R: 0x4a, G: 0x73, B: 0xa4, A: 0xff}
	colButtonDown = color.RGBA{R: 0x2d, G: 0x4a, B: 0x6b, A: 0xff}
	colWell       = color.RGBA{R: 0x1e, G: 0x21, B: 0x26, A: 0xff}
	colAccent     = color.RGBA{R: 0x6f, G: 0xb3, B: 0x5f, A: 0xff}
	colFocus      = color.RGBA{R: 0xd8, G: 0xb4, B: 0x4a, A: 0xff}
	colText       = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
)

// Draw renders every node the manager reports as renderable, deepest last.
func (d *Driver) Draw(screen *ebiten.Image) {
	for _, n := range d.mgr.RenderList() {
		d.drawNode(screen, n)
	}
}

func (d *Driver) drawNode(screen *ebiten.Image, n *lattice.Node) {
	pos, size := n.Position(), n.Size()
	x := pos.X * float32(d.opts.Width)
	y := pos.Y * float32(d.opts.Height)
	w := size.X * float32(d.opts.Width)
	h := size.Y * float32(d.opts.Height)

	// Partially scrolled-out children carry a fractional Y clip; honor
	// it with a sub-image so overdraw never escapes the scroll window.
	dst := screen
	if top, bottom := n.ClipWindow(); top > 0 || bottom > 0 {
		y0 := int(y + top*h)
		y1 := int(y + h - bottom*h)
		if y1 <= y0 {
			return
		}
		dst = screen.SubImage(image.Rect(int(x), y0, int(x+w), y1)).(*ebiten.Image)
	}

	switch n.Kind() {
	case lattice.KindPanel:
		vector.DrawFilledRect(dst, x, y, w, h, colPanel, false)
		vector.StrokeRect(dst, x, y, w, h, 1, colPanelEdge, false)
	case lattice.KindText:
		d.drawLines(dst, n, x, y)
	case lattice.KindButton:
		d.drawButton(dst, n, x, y, w, h)
	case lattice.KindCheckbox:
		d.drawCheckbox(dst, n, x, y, w, h)
	case lattice.KindSlider:
		d.drawSlider(dst, n, x, y, w, h)
	case lattice.KindTextEdit:
		d.drawTextEdit(dst, n, x, y, w, h)
	}
}

func (d *Driver) lineHeightPx() float32 {
	m := d.opts.Face.Metrics()
	return float32(m.HAscent + m.HDescent + m.HLineGap)
}

func (d *Driver) drawText(dst *ebiten.Image, s string, x, y float32, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, d.opts.Face, op)
}

func (d *Driver) drawLines(dst *ebiten.Image, n *lattice.Node, x, y float32) {
	lh := d.lineHeightPx()
	for i, line := range n.Lines() {
		d.drawText(dst, line, x, y+float32(i)*lh, colText)
	}
}

func (d *Driver) drawButton(dst *ebiten.Image, n *lattice.Node, x, y, w, h float32) {
	fill := colButton
	switch {
	case n.Pressed():
		fill = colButtonDown
	case n.Hovered():
		fill = colButtonHot
	}
	vector.DrawFilledRect(dst, x, y, w, h, fill, false)
	if n.Focused() {
		vector.StrokeRect(dst, x, y, w, h, 2, colFocus, false)
	}
	label := n.Text()
	lw := float32(text.Advance(label, d.opts.Face))
	d.drawText(dst, label, x+(w-lw)/2, y+(h-d.lineHeightPx())/2, colText)
}

func (d *Driver) drawCheckbox(dst *ebiten.Image, n *lattice.Node, x, y, w, h float32) {
	box := h
	if box > w {
		box = w
	}
	vector.DrawFilledRect(dst, x, y, box, box, colWell, false)
	if n.Checked() {
		inset := box * 0.2
		vector.DrawFilledRect(dst, x+inset, y+inset, box-2*inset, box-2*inset, colAccent, false)
	}
	edge := colPanelEdge
	if n.Focused() {
		edge = colFocus
	}
	vector.StrokeRect(dst, x, y, box, box, 1, edge, false)
	d.drawText(dst, n.Text(), x+box+4, y+(box-d.lineHeightPx())/2, colText)
}

func (d *Driver) drawSlider(dst *ebiten.Image, n *lattice.Node, x, y, w, h float32) {
	trackH := h * 0.3
	trackY := y + (h-trackH)/2
	vector.DrawFilledRect(dst, x, trackY, w, trackH, colWell, false)
	vector.DrawFilledRect(dst, x, trackY, w*n.Value(), trackH, colAccent, false)
	knobX := x + w*n.Value()
	knob := colText
	if n.Focused() {
		knob = colFocus
	}
	vector.DrawFilledRect(dst, knobX-2, y, 4, h, knob, false)
}

func (d *Driver) drawTextEdit(dst *ebiten.Image, n *lattice.Node, x, y, w, h float32) {
	vector.DrawFilledRect(dst, x, y, w, h, colWell, false)
	edge := colPanelEdge
	if n.Focused() {
		edge = colFocus
	}
	vector.StrokeRect(dst, x, y, w, h, 1, edge, false)

	lh := d.lineHeightPx()
	lines := n.Lines()
	top := n.TopLine()
	visible := int(h / lh)
	for i := 0; i < visible && top+i < len(lines); i++ {
		d.drawText(dst, lines[top+i], x+2, y+float32(i)*lh, colText)
	}

	if !n.Focused() {
		return
	}
	line, col := caretLineCol(lines, n.Caret())
	if line < top || line >= top+visible {
		return
	}
	prefix := string([]rune(lines[line])[:col])
	cx := x + 2 + float32(text.Advance(prefix, d.opts.Face))
	cy := y + float32(line-top)*lh
	vector.DrawFilledRect(dst, cx, cy, 1, lh, colText, false)
}

// caretLineCol locates a rune index inside newline-joined lines.
func caretLineCol(lines []string, caret int) (line, col int) {
	for i, l := range lines {
		runes := len([]rune(l))
		if caret <= runes {
			return i, caret
		}
		caret -= runes + 1 // the joining newline
	}
	if len(lines) == 0 {
		return 0, 0
	}
	return len(lines) - 1, len([]rune(lines[len(lines)-1]))
}
