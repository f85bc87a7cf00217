package driver

import (
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/latticeui/lattice"
)

// FaceMetrics adapts a text/v2 face to the core's glyph-metrics service.
// Advances and line heights are normalized against a reference resolution
// so text widgets measure in the same [0,1] units the layout solver uses.
type FaceMetrics struct {
	face  text.Face
	refW  float32
	refH  float32
	lineH float32
}

// NewFaceMetrics wraps face, normalizing pixel measurements by the given
// logical window size.
func NewFaceMetrics(face text.Face, refW, refH int) FaceMetrics {
	m := face.Metrics()
	return FaceMetrics{
		face:  face,
		refW:  float32(refW),
		refH:  float32(refH),
		lineH: float32(m.HAscent + m.HDescent + m.HLineGap),
	}
}

// Measure returns the normalized advance and line height for r.
func (f FaceMetrics) Measure(r rune) lattice.GlyphMetrics {
	adv := float32(text.Advance(string(r), f.face))
	return lattice.GlyphMetrics{
		Advance: adv / f.refW,
		Height:  f.lineH / f.refH,
	}
}
