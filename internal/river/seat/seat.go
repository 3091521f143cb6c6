// Package seat ties the per-input-domain collaborators together: the
// cursor mode machine, the binding dispatcher, pointer constraints and
// touch tracking, and focused-surface bookkeeping. It is grounded on the
// teacher's app/internal/input.Router, which plays the analogous role of
// "the one thing that owns an input domain's moving parts" for gio's
// pointer/key/semantic routing.
package seat

import (
	"riverwm.dev/river/internal/river/bind"
	"riverwm.dev/river/internal/river/cursor"
	"riverwm.dev/river/internal/river/idset"
	"riverwm.dev/river/internal/river/pointerctl"
	"riverwm.dev/river/internal/river/rlog"
)

var log = rlog.For("seat")

// Surface is what a seat can focus: something pointer/keyboard events
// can be delivered to. It composes cursor.Surface with the identity a
// constraint or drag-icon needs to track it.
type Surface interface {
	cursor.Surface
	SurfaceID() string
}

// Scene is the hit-testing seam: given layout coordinates, find the
// topmost surface and translate into its local space (spec §4.6
// "Pointer enter/leave/motion delivery").
type Scene interface {
	HitTest(x, y float32) (surface Surface, sx, sy float32, ok bool)
}

// Seat is a logical input focus domain (spec §3 "Seat"): one cursor, the
// binding dispatcher, pointer constraints, and touch tracking.
type Seat struct {
	ID idset.ID

	Cursor     *cursor.Cursor
	Dispatcher *bind.Dispatcher
	Touch      *pointerctl.Tracker

	scene Scene

	pointerFocus    Surface
	constraints     map[string]*pointerctl.Constraint // surfaceID -> constraint
	dragIcon        *pointerctl.DragIcon
}

// New creates a Seat wired to the given scene for hit-testing. events,
// session and vtSym are forwarded to the binding dispatcher (see
// bind.New); pass nil vtSym to disable VT-switch handling on this seat.
func New(scene Scene, events bind.Events, session bind.Session, vtSym func(bind.Keysym) (int, bool)) *Seat {
	s := &Seat{
		ID:          idset.NewID(),
		Touch:       pointerctl.NewTracker(),
		scene:       scene,
		constraints: make(map[string]*pointerctl.Constraint),
	}
	s.Cursor = cursor.New(s)
	s.Dispatcher = bind.New(s.Cursor, s, events, session, vtSym)
	return s
}

// --- cursor.FocusController ---

func (s *Seat) SurfaceUnder(x, y float32) (cursor.Surface, float32, float32) {
	surface, sx, sy, ok := s.scene.HitTest(x, y)
	if !ok {
		return nil, 0, 0
	}
	return surface, sx, sy
}

func (s *Seat) Focused() (cursor.Surface, bool) {
	if s.pointerFocus == nil {
		return nil, false
	}
	return s.pointerFocus, true
}

func (s *Seat) SetFocus(surface cursor.Surface) {
	sf, ok := surface.(Surface)
	if !ok {
		return
	}
	if s.pointerFocus != nil && s.pointerFocus.SurfaceID() == sf.SurfaceID() {
		return
	}
	s.disarmConstraintFor(s.pointerFocus)
	s.pointerFocus = sf
	s.armConstraintFor(sf)
}

func (s *Seat) ClearFocus() {
	s.disarmConstraintFor(s.pointerFocus)
	s.pointerFocus = nil
}

func (s *Seat) disarmConstraintFor(surface Surface) {
	if surface == nil {
		return
	}
	if c, ok := s.constraints[surface.SurfaceID()]; ok {
		c.Disarm()
	}
}

func (s *Seat) armConstraintFor(surface Surface) {
	if surface == nil {
		return
	}
	if c, ok := s.constraints[surface.SurfaceID()]; ok {
		c.Arm()
		s.Cursor.SetConstraint(c)
	}
}

// AddConstraint registers a pointer constraint request for a surface
// (spec §4.6). It is armed immediately if that surface already holds
// pointer focus.
func (s *Seat) AddConstraint(c *pointerctl.Constraint) {
	s.constraints[c.SurfaceID] = c
	if s.pointerFocus != nil && s.pointerFocus.SurfaceID() == c.SurfaceID {
		c.Arm()
		s.Cursor.SetConstraint(c)
	}
}

// RemoveConstraint destroys a surface's constraint request outright
// (distinct from the focus-loss Disarm, which keeps it alive for
// re-arming).
func (s *Seat) RemoveConstraint(surfaceID string) {
	delete(s.constraints, surfaceID)
	if s.pointerFocus != nil && s.pointerFocus.SurfaceID() == surfaceID {
		s.Cursor.SetConstraint(nil)
	}
}

// SetDragIcon attaches or clears (nil) the drag icon tracked during the
// current pointer/touch grab.
func (s *Seat) SetDragIcon(icon *pointerctl.DragIcon) {
	s.dragIcon = icon
}

// DragIcon returns the active drag icon, if any.
func (s *Seat) DragIcon() (*pointerctl.DragIcon, bool) {
	if s.dragIcon == nil {
		return nil, false
	}
	return s.dragIcon, true
}

// PointerMotion routes a relative motion event through the cursor mode
// machine (spec §4.5/§4.6 composition).
func (s *Seat) PointerMotion(dx, dy float32, resize cursor.ResizeSink) {
	s.Cursor.Motion(dx, dy, resize)
}

// PointerButton routes a press/release through the binding dispatcher.
func (s *Seat) PointerButton(button bind.ButtonCode, mods bind.Modifiers, pressed bool) {
	if pressed {
		var sx, sy float32
		surface, x, y, hasSurface := s.scene.HitTest(s.Cursor.X, s.Cursor.Y)
		if hasSurface {
			s.SetFocus(surface)
			sx, sy = x, y
		} else {
			s.ClearFocus()
		}
		s.Dispatcher.PointerPress(button, mods, hasSurface, sx, sy)
		return
	}
	s.Dispatcher.PointerRelease(button)
}

// TouchDown, TouchMotion, TouchUp, TouchCancel delegate to the touch
// tracker, translating layout coordinates to the hit surface's local
// space the same way pointer does.
func (s *Seat) TouchDown(slot int32, x, y float32) {
	surface, sx, sy, ok := s.scene.HitTest(x, y)
	if !ok {
		return
	}
	s.Touch.Down(slot, surface.SurfaceID(), sx, sy)
	surface.PointerMotion(sx, sy)
}

func (s *Seat) TouchMotion(slot int32, x, y float32) {
	p, ok := s.Touch.Get(slot)
	if !ok {
		return
	}
	surface, sx, sy, ok := s.scene.HitTest(x, y)
	if !ok || surface.SurfaceID() != p.SurfaceID {
		return
	}
	s.Touch.Motion(slot, sx, sy)
}

func (s *Seat) TouchUp(slot int32) {
	s.Touch.Up(slot)
}

func (s *Seat) TouchCancel() {
	s.Touch.Cancel()
}
