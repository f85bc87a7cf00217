package lattice

import "strings"

// GlyphMetrics describes one glyph in normalized screen units.
type GlyphMetrics struct {
	Advance float32 // horizontal advance width
	Height  float32 // line height for the glyph's face
}

// TextMetrics supplies glyph measurements to text-bearing nodes. The core
// treats it as an opaque service: the layout solver itself never measures
// text, only text and text-edit widgets do, to find word-wrap breakpoints
// and scroll line boundaries.
type TextMetrics interface {
	Measure(r rune) GlyphMetrics
}

// FixedMetrics is a monospace TextMetrics with constant advance and line
// height. Handy for tests and simple bitmap fonts.
type FixedMetrics struct {
	Advance    float32
	LineHeight float32
}

// Measure returns the fixed advance and height for any rune.
func (f FixedMetrics) Measure(r rune) GlyphMetrics {
	return GlyphMetrics{Advance: f.Advance, Height: f.LineHeight}
}

// MeasureString returns the total advance and the tallest glyph height of
// a single line of text.
func MeasureString(m TextMetrics, s string) (w, h float32) {
	for _, r := range s {
		g := m.Measure(r)
		w += g.Advance
		if g.Height > h {
			h = g.Height
		}
	}
	return w, h
}

// LineHeight returns the face's line height, probing a representative
// glyph.
func LineHeight(m TextMetrics) float32 {
	return m.Measure('M').Height
}

// WrapText breaks s into lines no wider than maxWidth. Breaks happen at
// spaces when possible; a word wider than the limit is split mid-word.
// Explicit newlines always break. A non-positive maxWidth disables
// wrapping entirely.
func WrapText(m TextMetrics, s string, maxWidth float32) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		if maxWidth <= 0 {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrapParagraph(m, para, maxWidth)...)
	}
	return lines
}

func wrapParagraph(m TextMetrics, para string, maxWidth float32) []string {
	if para == "" {
		return []string{""}
	}
	var lines []string
	var line strings.Builder
	var lineW float32

	flush := func() {
		lines = append(lines, strings.TrimRight(line.String(), " "))
		line.Reset()
		lineW = 0
	}

	for _, word := range strings.Split(para, " ") {
		wordW, _ := MeasureString(m, word)
		spaceW := m.Measure(' ').Advance

		if lineW > 0 && lineW+spaceW+wordW > maxWidth {
			flush()
		}
		if lineW > 0 {
			line.WriteByte(' ')
			lineW += spaceW
		}
		if wordW > maxWidth {
			// Split an oversized word glyph by glyph.
			for _, r := range word {
				adv := m.Measure(r).Advance
				if lineW > 0 && lineW+adv > maxWidth {
					flush()
				}
				line.WriteRune(r)
				lineW += adv
			}
			continue
		}
		line.WriteString(word)
		lineW += wordW
	}
	flush()
	return lines
}
