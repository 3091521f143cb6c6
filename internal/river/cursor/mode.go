// Package cursor implements the Cursor Mode Machine (spec §4.5): the
// states {passthrough, down, ignore, op/resize}, their transitions, and
// the per-state motion routing that composes with pointer constraints,
// session lock, and binding semantics.
package cursor

import "riverwm.dev/river/f32"

// Mode identifies which of the four cursor-mode-machine states a Cursor
// is in.
type Mode uint8

const (
	Passthrough Mode = iota
	Down
	Ignore
	Op
)

func (m Mode) String() string {
	switch m {
	case Passthrough:
		return "passthrough"
	case Down:
		return "down"
	case Ignore:
		return "ignore"
	case Op:
		return "op"
	default:
		return "invalid"
	}
}

// DownState is the data carried by the Down mode: the initial layout
// coordinates (where the press landed) and the initial surface-local
// coordinates, so later motion can be translated into the focused
// surface's own coordinate space without changing focus (spec §4.5
// "forward motion to the already-focused surface with coordinates
// (initial.sx + (cursor.x - initial.lx), ...)").
type DownState struct {
	LX, LY float32
	SX, SY float32
}

// Edges is a bitset of which edges an interactive resize is dragging.
type Edges uint8

const (
	EdgeLeft Edges = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// ResizeState is the "extensible" op payload spec §4.5 describes:
// op{delta_x,delta_y} generalized to carry the resize target.
type ResizeState struct {
	WindowID      string
	Edges         Edges
	InitialWidth  int
	InitialHeight int
}

// OpState is the generic interactive-operation payload: accumulated
// fractional deltas plus an optional resize specialization.
type OpState struct {
	// DeltaX/DeltaY are the fractional carry-over left after each
	// motion's integer part has been applied — "delta_x - trunc(delta_x)"
	// from spec §4.5, so slow high-DPI motion isn't truncated to zero.
	DeltaX, DeltaY float32
	Resize         *ResizeState
}

// Surface is what the cursor forwards enter/leave/motion events to. It is
// satisfied by whatever owns pointer focus; the core never interprets the
// surface beyond delivering coordinates to it.
type Surface interface {
	PointerMotion(sx, sy float32)
}

// ResizeSink receives the integer pixel deltas an interactive resize
// accumulates, already split into the box-pending mutation side (spec
// §4.5: "Integer cursor coordinates feed the op handler ... triggering a
// new transaction").
type ResizeSink interface {
	ResizeBy(edges Edges, dw, dh int)
}

// Constraint is the pointer-constraint seam (spec §4.6): a locked
// constraint swallows relative motion once active; a confined one clips
// the cursor to its region.
type Constraint interface {
	Active() bool
	Locked() bool
	// Clip adjusts a proposed absolute position to stay inside a
	// confined region. Only called when Active() && !Locked().
	Clip(x, y float32) (float32, float32)
}
