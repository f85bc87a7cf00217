// Package lattice is a retained-mode UI core: a tree of screen-space
// nodes, a constraint-style layout solver for container nodes, and an
// input-routing manager that owns focus, modal and hover state.
//
// Geometry is normalized. Positions and sizes are fractions of the screen
// in [0,1], so every layout result is resolution independent; a driver
// multiplies by the window size when it draws.
//
// The tree has three structural kinds. A panel holds exactly one child
// and insets it by a padding fraction. A layout holds any number of
// children and distributes its space among them by expand portions,
// optionally scrolling them through a clipping window. Leaf kinds
// (text, button, checkbox, slider, text editor, custom) hold no children
// and interact with the core purely through callbacks.
//
// A Manager tracks every spawned node by stable ID, routes raw device
// input to exactly one dispatch set per event (the hit-tested node, the
// focus holder, or the modal subtree), and flushes layout recalculation
// once per tick. All of it runs synchronously on one owning goroutine;
// background work hands results over with Manager.Post.
//
// The core issues no draw calls and rasterizes no glyphs. It marks nodes
// renderable or clipped for a renderer to read once per frame, and it
// consumes glyph metrics as an opaque service. The driver subpackage
// binds both seams to Ebitengine.
package lattice
