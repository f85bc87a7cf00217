package lattice

import "strings"

// NewText creates a read-only text leaf. The node wraps its content
// against its own width using the metrics service; the wrapped lines are
// what the renderer draws.
func NewText(layer Layer, m TextMetrics, s string) *Node {
	n := newNode(KindText, layer)
	n.metrics = m
	n.text = s
	n.reflowText()
	return n
}

// Text returns the node's textual content: the label of a text, button or
// checkbox node, or the buffer of a text editor.
func (n *Node) Text() string {
	if n.kind == KindTextEdit {
		return string(n.buffer)
	}
	return n.text
}

// SetText replaces the node's textual content and rebuilds the wrap
// cache.
func (n *Node) SetText(s string) {
	if n.kind == KindTextEdit {
		n.buffer = []rune(s)
		if n.caret > len(n.buffer) {
			n.caret = len(n.buffer)
		}
	} else {
		n.text = s
	}
	n.reflowText()
}

// SetMetrics swaps the glyph metrics service and rewraps.
func (n *Node) SetMetrics(m TextMetrics) {
	n.metrics = m
	n.reflowText()
}

// Lines returns the wrapped lines as last computed.
func (n *Node) Lines() []string {
	out := make([]string, len(n.lines))
	copy(out, n.lines)
	return out
}

// LineCount returns the number of wrapped lines.
func (n *Node) LineCount() int { return len(n.lines) }

// reflowText rebuilds the line cache. Text nodes word-wrap against their
// own width; text editors break on explicit newlines only and scroll by
// metric line boundaries instead.
func (n *Node) reflowText() {
	switch n.kind {
	case KindText:
		if n.metrics == nil {
			n.lines = nil
			return
		}
		n.lines = WrapText(n.metrics, n.text, n.size.X)
	case KindTextEdit:
		n.lines = strings.Split(string(n.buffer), "\n")
		n.clampTopLine()
	}
}
