package lattice

// NewTextEdit creates a multi-line text editor. Characters insert at the
// caret; Enter breaks the line; backspace, delete, arrows, Home and End
// behave as expected. Lines break only on explicit newlines; the metrics
// service supplies the line height used to keep the caret's line inside
// the node's window. OnChange fires on every buffer mutation.
func NewTextEdit(layer Layer, m TextMetrics) *Node {
	n := newNode(KindTextEdit, layer)
	n.metrics = m
	n.receivesInput = true
	n.reflowText()

	n.OnMouseDown = func(e *Node, ev MouseEvent) {
		focusSelf(e)
		e.placeCaret(ev.Local)
	}
	n.OnChar = func(e *Node, r rune) {
		if r < ' ' && r != '\t' {
			return
		}
		e.insertRune(r)
	}
	n.OnKey = func(e *Node, ev KeyEvent) bool {
		switch ev.Key {
		case KeyEnter:
			e.insertRune('\n')
		case KeyBackspace:
			e.deleteBack()
		case KeyDelete:
			e.deleteForward()
		case KeyLeft:
			e.moveCaret(-1)
		case KeyRight:
			e.moveCaret(1)
		case KeyUp:
			e.moveCaretLine(-1)
		case KeyDown:
			e.moveCaretLine(1)
		case KeyHome:
			e.moveCaretLineEdge(false)
		case KeyEnd:
			e.moveCaretLineEdge(true)
		default:
			return false
		}
		return true
	}
	return n
}

// Caret returns the caret as a rune index into the buffer.
func (n *Node) Caret() int { return n.caret }

// SetCaret moves the caret, clamped to the buffer.
func (n *Node) SetCaret(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(n.buffer) {
		i = len(n.buffer)
	}
	n.caret = i
	n.ensureCaretVisible()
}

// TopLine returns the index of the first line inside the editor's window.
func (n *Node) TopLine() int { return n.topLine }

func (n *Node) insertRune(r rune) {
	n.buffer = append(n.buffer, 0)
	copy(n.buffer[n.caret+1:], n.buffer[n.caret:])
	n.buffer[n.caret] = r
	n.caret++
	n.editChanged()
}

func (n *Node) deleteBack() {
	if n.caret == 0 {
		return
	}
	n.buffer = append(n.buffer[:n.caret-1], n.buffer[n.caret:]...)
	n.caret--
	n.editChanged()
}

func (n *Node) deleteForward() {
	if n.caret >= len(n.buffer) {
		return
	}
	n.buffer = append(n.buffer[:n.caret], n.buffer[n.caret+1:]...)
	n.editChanged()
}

func (n *Node) moveCaret(delta int) {
	n.SetCaret(n.caret + delta)
}

func (n *Node) editChanged() {
	n.reflowText()
	n.ensureCaretVisible()
	if n.OnChange != nil {
		n.OnChange(n)
	}
}

// caretLineCol locates the caret among the buffer's lines.
func (n *Node) caretLineCol() (line, col int) {
	for i := 0; i < n.caret && i < len(n.buffer); i++ {
		if n.buffer[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

// lineStartIndex returns the rune index where the given line begins.
func (n *Node) lineStartIndex(line int) int {
	if line <= 0 {
		return 0
	}
	seen := 0
	for i, r := range n.buffer {
		if r == '\n' {
			seen++
			if seen == line {
				return i + 1
			}
		}
	}
	return len(n.buffer)
}

func (n *Node) lineLength(line int) int {
	if line < 0 || line >= len(n.lines) {
		return 0
	}
	return len([]rune(n.lines[line]))
}

func (n *Node) moveCaretLine(delta int) {
	line, col := n.caretLineCol()
	line += delta
	if line < 0 || line >= len(n.lines) {
		return
	}
	if l := n.lineLength(line); col > l {
		col = l
	}
	n.SetCaret(n.lineStartIndex(line) + col)
}

func (n *Node) moveCaretLineEdge(end bool) {
	line, _ := n.caretLineCol()
	idx := n.lineStartIndex(line)
	if end {
		idx += n.lineLength(line)
	}
	n.SetCaret(idx)
}

// visibleLineCount derives how many metric lines fit the node's height.
func (n *Node) visibleLineCount() int {
	if n.metrics == nil {
		return len(n.lines)
	}
	lh := LineHeight(n.metrics)
	if lh <= 0 || n.size.Y <= 0 {
		return len(n.lines)
	}
	v := int(n.size.Y / lh)
	if v < 1 {
		v = 1
	}
	return v
}

// ensureCaretVisible shifts the window so the caret's line stays inside
// it.
func (n *Node) ensureCaretVisible() {
	line, _ := n.caretLineCol()
	visible := n.visibleLineCount()
	if line < n.topLine {
		n.topLine = line
	}
	if line >= n.topLine+visible {
		n.topLine = line - visible + 1
	}
	n.clampTopLine()
}

func (n *Node) clampTopLine() {
	max := len(n.lines) - 1
	if max < 0 {
		max = 0
	}
	if n.topLine > max {
		n.topLine = max
	}
	if n.topLine < 0 {
		n.topLine = 0
	}
}

// placeCaret maps a click in local coordinates to a line and column.
func (n *Node) placeCaret(local Vec2) {
	if n.metrics == nil || len(n.lines) == 0 {
		n.SetCaret(len(n.buffer))
		return
	}
	lh := LineHeight(n.metrics)
	line := n.topLine
	if lh > 0 && n.size.Y > 0 {
		line += int(local.Y * n.size.Y / lh)
	}
	if line >= len(n.lines) {
		line = len(n.lines) - 1
	}
	if line < 0 {
		line = 0
	}

	// Scan glyph advances until the click's X falls short.
	targetX := local.X * n.size.X
	col := 0
	var x float32
	for _, r := range n.lines[line] {
		adv := n.metrics.Measure(r).Advance
		if x+adv/2 > targetX {
			break
		}
		x += adv
		col++
	}
	n.SetCaret(n.lineStartIndex(line) + col)
}
