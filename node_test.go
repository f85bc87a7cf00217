package lattice

import (
	"errors"
	"testing"
)

func TestAttachChildCapacity(t *testing.T) {
	tests := []struct {
		name    string
		parent  *Node
		first   *Node
		second  *Node
		wantErr bool
	}{
		{
			name:    "panel holds exactly one child",
			parent:  NewPanel(LayerBase),
			first:   NewLayout(LayerBase, Vertical),
			second:  NewLayout(LayerBase, Vertical),
			wantErr: true,
		},
		{
			name:    "layout holds many children",
			parent:  NewLayout(LayerBase, Vertical),
			first:   NewPanel(LayerBase),
			second:  NewPanel(LayerBase),
			wantErr: false,
		},
		{
			name:    "leaf holds none",
			parent:  NewCustom(LayerBase),
			first:   NewPanel(LayerBase),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parent.AttachChild(tt.first)
			if tt.second != nil && err == nil {
				err = tt.parent.AttachChild(tt.second)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvariant) {
					t.Fatalf("AttachChild error = %v, want invariant violation", err)
				}
			} else if err != nil {
				t.Fatalf("AttachChild error = %v", err)
			}
		})
	}
}

func TestAttachChildRejectsReparentAndCycle(t *testing.T) {
	a := NewLayout(LayerBase, Vertical)
	b := NewLayout(LayerBase, Vertical)
	c := NewPanel(LayerBase)

	if err := a.AttachChild(b); err != nil {
		t.Fatal(err)
	}
	if err := b.AttachChild(c); err != nil {
		t.Fatal(err)
	}

	other := NewLayout(LayerBase, Vertical)
	if err := other.AttachChild(c); !errors.Is(err, ErrInvariant) {
		t.Errorf("attaching a parented node: err = %v, want invariant violation", err)
	}
	if err := b.AttachChild(a); !errors.Is(err, ErrInvariant) {
		t.Errorf("attaching an ancestor: err = %v, want invariant violation", err)
	}
	// The failed attachments left the tree intact.
	if c.Parent() != b || len(b.Children()) != 1 {
		t.Error("failed attach mutated the tree")
	}

	if err := a.AttachChild(nil); !errors.Is(err, ErrInvariant) {
		t.Errorf("attaching nil: err = %v, want invariant violation", err)
	}
}

func TestDetachChildPrecondition(t *testing.T) {
	a := NewLayout(LayerBase, Vertical)
	stranger := NewPanel(LayerBase)
	if err := a.DetachChild(stranger); !errors.Is(err, ErrPrecondition) {
		t.Errorf("detaching a non-child: err = %v, want precondition violation", err)
	}
}

func TestDepthFollowsSpawn(t *testing.T) {
	m := NewManager(DefaultConfig())
	root := NewLayout(LayerBase, Vertical)
	mid := NewLayout(LayerBase, Vertical)
	leaf := NewButton(LayerBase, "x")

	if _, err := leaf.Depth(); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Depth on detached node: err = %v, want precondition violation", err)
	}

	if err := root.AttachChild(mid); err != nil {
		t.Fatal(err)
	}
	if err := mid.AttachChild(leaf); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoot(root); err != nil {
		t.Fatal(err)
	}

	for i, n := range []*Node{root, mid, leaf} {
		d, err := n.Depth()
		if err != nil {
			t.Fatalf("Depth: %v", err)
		}
		if d != i {
			t.Errorf("depth = %d, want %d", d, i)
		}
	}

	// Attaching under a spawned node spawns immediately, one level deeper.
	late := NewText(LayerBase, FixedMetrics{Advance: 0.01, LineHeight: 0.02}, "late")
	if err := mid.AttachChild(late); err != nil {
		t.Fatal(err)
	}
	if d, _ := late.Depth(); d != 2 {
		t.Errorf("late child depth = %d, want 2", d)
	}

	// Detaching despawns the whole subtree synchronously.
	if err := root.DetachChild(mid); err != nil {
		t.Fatal(err)
	}
	for _, n := range []*Node{mid, leaf, late} {
		if n.Spawned() {
			t.Error("detached subtree node still spawned")
		}
		if m.NodeByID(n.ID()) != nil {
			t.Error("manager still resolves a despawned node")
		}
	}
}

func TestGeometryClamps(t *testing.T) {
	n := NewPanel(LayerBase)
	n.SetPosition(-0.5, 1.5)
	if p := n.Position(); p.X != 0 || p.Y != 1 {
		t.Errorf("position = %+v, want clamped to (0,1)", p)
	}
	n.SetSize(2, -1)
	if s := n.Size(); s.X != 1 || s.Y != 0 {
		t.Errorf("size = %+v, want clamped to (1,0)", s)
	}

	n.SetExpandPortion(0)
	if n.ExpandPortion() != 1 {
		t.Errorf("expand portion = %d, want clamp to 1", n.ExpandPortion())
	}
	n.SetExpandPortion(-3)
	if n.ExpandPortion() != 1 {
		t.Errorf("expand portion = %d, want clamp to 1", n.ExpandPortion())
	}

	n.SetPadding(0.9)
	if n.Padding() != 0.5 {
		t.Errorf("padding = %v, want clamp to 0.5", n.Padding())
	}
}

func TestEffectivelyVisibleCascades(t *testing.T) {
	root := NewLayout(LayerBase, Vertical)
	mid := NewPanel(LayerBase)
	leaf := NewButton(LayerBase, "x")
	if err := root.AttachChild(mid); err != nil {
		t.Fatal(err)
	}
	if err := mid.AttachChild(leaf); err != nil {
		t.Fatal(err)
	}

	if !leaf.EffectivelyVisible() {
		t.Fatal("fresh tree should be visible")
	}
	mid.SetVisible(false)
	if leaf.EffectivelyVisible() {
		t.Error("hiding an ancestor must hide the leaf")
	}
	if !leaf.Visible() {
		t.Error("hiding an ancestor must not mutate the leaf's own flag")
	}
	mid.SetVisible(true)
	if !leaf.EffectivelyVisible() {
		t.Error("reshowing the ancestor must restore the leaf")
	}
}

func TestChildrenReturnsCopy(t *testing.T) {
	root := NewLayout(LayerBase, Vertical)
	a := NewPanel(LayerBase)
	if err := root.AttachChild(a); err != nil {
		t.Fatal(err)
	}
	kids := root.Children()
	kids[0] = nil
	if root.Children()[0] != a {
		t.Error("Children must return a copy, not the backing slice")
	}
}
