package lattice

import (
	"reflect"
	"testing"
)

func TestWrapText(t *testing.T) {
	m := FixedMetrics{Advance: 0.1, LineHeight: 0.15}

	tests := []struct {
		name     string
		text     string
		maxWidth float32
		want     []string
	}{
		{
			name:     "empty string wraps to nothing",
			text:     "",
			maxWidth: 0.5,
			want:     nil,
		},
		{
			name:     "single short line",
			text:     "abc",
			maxWidth: 0.5,
			want:     []string{"abc"},
		},
		{
			name:     "breaks at spaces",
			text:     "aa bb cc",
			maxWidth: 0.35,
			want:     []string{"aa", "bb", "cc"},
		},
		{
			name:     "packs words that fit",
			text:     "aa bb cc",
			maxWidth: 0.55,
			want:     []string{"aa bb", "cc"},
		},
		{
			name:     "splits oversized words",
			text:     "aaaa",
			maxWidth: 0.35,
			want:     []string{"aaa", "a"},
		},
		{
			name:     "explicit newlines always break",
			text:     "aa\n\nbb",
			maxWidth: 0.5,
			want:     []string{"aa", "", "bb"},
		},
		{
			name:     "non-positive width disables wrapping",
			text:     "aa bb cc dd ee",
			maxWidth: 0,
			want:     []string{"aa bb cc dd ee"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(m, tt.text, tt.maxWidth)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WrapText(%q, %v) = %q, want %q", tt.text, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestMeasureString(t *testing.T) {
	m := FixedMetrics{Advance: 0.02, LineHeight: 0.05}
	w, h := MeasureString(m, "hello")
	if want := float32(0.1); w < want-1e-4 || w > want+1e-4 {
		t.Errorf("width = %v, want %v", w, want)
	}
	if h != 0.05 {
		t.Errorf("height = %v, want 0.05", h)
	}

	if lh := LineHeight(m); lh != 0.05 {
		t.Errorf("LineHeight = %v, want 0.05", lh)
	}
}

func TestTextNodeReflowsOnResize(t *testing.T) {
	m := FixedMetrics{Advance: 0.1, LineHeight: 0.1}
	n := NewText(LayerBase, m, "aa bb")

	n.SetSize(0.6, 0.2)
	if got := n.LineCount(); got != 1 {
		t.Fatalf("wide node lines = %d, want 1", got)
	}

	n.SetSize(0.25, 0.2)
	if got := n.LineCount(); got != 2 {
		t.Fatalf("narrow node lines = %d, want 2", got)
	}
	if lines := n.Lines(); lines[0] != "aa" || lines[1] != "bb" {
		t.Errorf("lines = %q", lines)
	}
}
