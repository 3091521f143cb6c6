// Package scene tracks the small piece of the renderer-facing scene graph
// that the core owns directly: each Window's sub-tree node, its
// saved-surface sub-tree (used to keep rendering the old frame during a
// transaction), and its four border rectangles. The renderer itself — the
// thing that walks these nodes and actually draws — is an external,
// read-only consumer per spec §1 and is not part of this package.
//
// The node/transform vocabulary mirrors the teacher's op.Ops / op.TransformOp
// split (a position plus an enabled flag), simplified because the core
// never serializes paint commands — it only needs to know where a
// sub-tree sits and whether it is currently enabled.
package scene

import "riverwm.dev/river/f32"

// Node is a position in the scene graph. The core never draws through a
// Node; it only repositions and enables/disables it, leaving rendering to
// the external renderer.
type Node struct {
	Enabled bool
	Offset  f32.Point
}

// Edge identifies one of a window's four border rectangles.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
	edgeCount
)

// Border is one border rectangle, positioned relative to the window's box.
type Border struct {
	Node
	Size f32.Point
}

// Tree is the renderer-facing sub-tree owned by a single Window:
// the main content node, the saved-surface node used during transitions,
// and the four border rectangles.
type Tree struct {
	Content Node
	Saved   Node
	Borders [edgeCount]Border
}

// EnableSaved arms the saved-surface sub-tree so the old frame keeps
// rendering while a transaction or destroy-with-lingering-render is in
// flight (spec §4.1: "enabled iff the window is participating in a
// transaction or being destroyed with lingering renders").
func (t *Tree) EnableSaved() {
	t.Saved.Enabled = true
}

// DisableSaved drops the saved-surface sub-tree. commit_transaction calls
// this unconditionally once inflight has been promoted to current.
func (t *Tree) DisableSaved() {
	t.Saved.Enabled = false
}

// Reposition recomputes the content node and border rectangles from a
// window box (x, y, w, h) and a uniform border width. It is called only
// from the window's CommitTransaction so the renderer
// never observes a partially repositioned tree — see spec §5 "Ordering
// guarantees".
func (t *Tree) Reposition(x, y, w, h float32, borderWidth float32) {
	t.Content.Offset = f32.Point{X: x, Y: y}
	t.Content.Enabled = true

	bw := borderWidth
	t.Borders[EdgeLeft] = Border{
		Node: Node{Enabled: bw > 0, Offset: f32.Point{X: x - bw, Y: y - bw}},
		Size: f32.Point{X: bw, Y: h + 2*bw},
	}
	t.Borders[EdgeRight] = Border{
		Node: Node{Enabled: bw > 0, Offset: f32.Point{X: x + w, Y: y - bw}},
		Size: f32.Point{X: bw, Y: h + 2*bw},
	}
	t.Borders[EdgeTop] = Border{
		Node: Node{Enabled: bw > 0, Offset: f32.Point{X: x - bw, Y: y - bw}},
		Size: f32.Point{X: w + 2*bw, Y: bw},
	}
	t.Borders[EdgeBottom] = Border{
		Node: Node{Enabled: bw > 0, Offset: f32.Point{X: x - bw, Y: y + h}},
		Size: f32.Point{X: w + 2*bw, Y: bw},
	}
}
