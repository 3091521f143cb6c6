package cursor

import (
	"riverwm.dev/river/f32"
	"riverwm.dev/river/internal/river/rlog"
)

var log = rlog.For("cursor")

// FocusController is the seam the cursor uses to clear/route pointer
// focus — deliberately narrow so this package doesn't need to know about
// scene hit-testing, only "who is focused right now" and "stop focusing
// anyone".
type FocusController interface {
	// SurfaceUnder returns the surface under the given layout
	// coordinate, or nil if the desktop is empty there.
	SurfaceUnder(x, y float32) (surface Surface, sx, sy float32)
	// Focused returns the currently pointer-focused surface, if any.
	Focused() (Surface, bool)
	// SetFocus updates pointer focus, delivering enter/leave as needed.
	SetFocus(s Surface)
	// ClearFocus clears pointer focus (ignore mode, empty-desktop press).
	ClearFocus()
}

// Cursor drives the cursor mode machine for one seat (spec §4.5). It owns
// the hardware cursor position and the active mode's data, and routes
// motion/focus according to the current mode.
type Cursor struct {
	X, Y float32

	mode  Mode
	down  DownState
	opSt  OpState

	focus      FocusController
	constraint Constraint
}

// New creates a Cursor in Passthrough mode at the origin.
func New(focus FocusController) *Cursor {
	return &Cursor{focus: focus, mode: Passthrough}
}

// Mode reports the current state.
func (c *Cursor) Mode() Mode { return c.mode }

// SetConstraint arms or disarms the active pointer constraint (spec §4.6:
// "armed when associated with the currently focused surface"). A nil
// constraint clears it.
func (c *Cursor) SetConstraint(constraint Constraint) {
	c.constraint = constraint
}

// EnterDown transitions passthrough -> down on a pointer press over a
// surface (spec §4.5). It deliberately does not change focus — the
// surface under the cursor at press time is assumed already focused by
// the caller before this is invoked.
func (c *Cursor) EnterDown(sx, sy float32) {
	c.mode = Down
	c.down = DownState{LX: c.X, LY: c.Y, SX: sx, SY: sy}
}

// EnterIgnore transitions to Ignore — either because a press landed on
// empty desktop, or because a binding matched the press (spec §4.5:
// "passthrough -> ignore: pointer press with no surface under cursor, OR
// binding matched"). Pointer focus is cleared either way.
func (c *Cursor) EnterIgnore() {
	c.mode = Ignore
	c.focus.ClearFocus()
	c.deactivateConstraint()
}

// ExitIgnore implements the mode-idempotence property (spec §8.6):
// exiting ignore when nothing is still sustaining it returns to
// passthrough; calling it again (or while still sustained) is a no-op.
// sustained is true when either the pointer pressed-button table is
// non-empty or a binding is otherwise holding ignore open — the caller
// (bind.Dispatcher) owns that bookkeeping and passes the answer in.
func (c *Cursor) ExitIgnore(sustained bool) {
	if c.mode != Ignore || sustained {
		return
	}
	c.mode = Passthrough
}

// ExitDown transitions down -> passthrough when the final button is
// released.
func (c *Cursor) ExitDown() {
	if c.mode == Down {
		c.mode = Passthrough
	}
}

// EnterOp starts a generic interactive operation (spec §4.5:
// "passthrough -> op/resize: initiated by wm action").
func (c *Cursor) EnterOp() {
	c.mode = Op
	c.opSt = OpState{}
	c.deactivateConstraint()
}

// EnterResize specializes EnterOp with a resize target.
func (c *Cursor) EnterResize(windowID string, edges Edges, initialW, initialH int) {
	c.EnterOp()
	c.opSt.Resize = &ResizeState{WindowID: windowID, Edges: edges, InitialWidth: initialW, InitialHeight: initialH}
}

// ExitOp ends an interactive operation, returning to passthrough or
// ignore depending on what the wm requests (spec §4.5: "op/resize ->
// passthrough | ignore: ended by wm action or final release").
func (c *Cursor) ExitOp(toIgnore bool) {
	if c.mode != Op {
		return
	}
	if toIgnore {
		c.mode = Ignore
		c.focus.ClearFocus()
	} else {
		c.mode = Passthrough
	}
	c.opSt = OpState{}
}

func (c *Cursor) deactivateConstraint() {
	// Spec §4.5: "Pointer constraints are deactivated when entering any
	// non-passthrough mode that involves focus change." Down does not
	// change focus, so it is the one mode that does *not* go through
	// here despite being non-passthrough; callers of EnterDown never
	// call this.
	c.constraint = nil
}

// Motion applies a relative pointer motion of (dx, dy), routing it
// according to the current mode (spec §4.5 "Motion semantics per state").
// resize, if non-nil, receives the accumulated integer deltas when the
// mode is Op with a Resize payload.
func (c *Cursor) Motion(dx, dy float32, resize ResizeSink) {
	switch c.mode {
	case Passthrough:
		c.motionPassthrough(dx, dy)
	case Down:
		c.motionDown(dx, dy)
	case Ignore:
		c.motionIgnore(dx, dy)
	case Op:
		c.motionOp(dx, dy, resize)
	}
}

func (c *Cursor) motionPassthrough(dx, dy float32) {
	if c.constraint != nil && c.constraint.Active() {
		if c.constraint.Locked() {
			// Locked: relative motion is consumed silently (spec §4.6);
			// the hardware cursor does not move and no surface sees it.
			return
		}
		nx, ny := c.constraint.Clip(c.X+dx, c.Y+dy)
		c.X, c.Y = nx, ny
	} else {
		c.X += dx
		c.Y += dy
	}

	surface, sx, sy := c.focus.SurfaceUnder(c.X, c.Y)
	if surface == nil {
		c.focus.ClearFocus()
		return
	}
	c.focus.SetFocus(surface)
	surface.PointerMotion(sx, sy)
}

func (c *Cursor) motionDown(dx, dy float32) {
	c.X += dx
	c.Y += dy
	surface, focused := c.focus.Focused()
	if !focused {
		return
	}
	sx := c.down.SX + (c.X - c.down.LX)
	sy := c.down.SY + (c.Y - c.down.LY)
	surface.PointerMotion(sx, sy)
}

func (c *Cursor) motionIgnore(dx, dy float32) {
	// Hardware cursor still moves; no pointer events are forwarded and
	// focus stays cleared (spec §4.5).
	c.X += dx
	c.Y += dy
}

func (c *Cursor) motionOp(dx, dy float32, resize ResizeSink) {
	c.opSt.DeltaX += dx
	c.opSt.DeltaY += dy
	whole, frac := (f32.Point{X: c.opSt.DeltaX, Y: c.opSt.DeltaY}).Trunc()
	c.opSt.DeltaX, c.opSt.DeltaY = frac.X, frac.Y

	c.X += whole.X
	c.Y += whole.Y

	if c.opSt.Resize == nil || resize == nil {
		return
	}
	dw, dh := int(whole.X), int(whole.Y)
	if dw == 0 && dh == 0 {
		return
	}
	resize.ResizeBy(c.opSt.Resize.Edges, dw, dh)
}
