// Package pointerctl implements C6: pointer constraint activation, drag
// icon placement, and touch point tracking. It sits beside cursor (which
// owns the pointer-mode machine) rather than inside it, the same way the
// teacher keeps io/pointer and io/touch as siblings rather than folding
// touch handling into the pointer router.
package pointerctl

import (
	"riverwm.dev/river/internal/river/idset"
	"riverwm.dev/river/internal/river/rlog"
)

var log = rlog.For("pointerctl")

// ConstraintKind distinguishes the two zwp_pointer_constraints_v1 request
// types (spec §4.6).
type ConstraintKind uint8

const (
	Locked ConstraintKind = iota
	Confined
)

// Region is an axis-aligned clip region in surface-local coordinates.
type Region struct {
	X, Y, W, H int
}

func (r Region) contains(x, y float32) bool {
	return x >= float32(r.X) && x < float32(r.X+r.W) && y >= float32(r.Y) && y < float32(r.Y+r.H)
}

func (r Region) clip(x, y float32) (float32, float32) {
	minX, minY := float32(r.X), float32(r.Y)
	maxX, maxY := float32(r.X+r.W), float32(r.Y+r.H)
	if x < minX {
		x = minX
	} else if x >= maxX {
		x = maxX - 1
	}
	if y < minY {
		y = minY
	} else if y >= maxY {
		y = maxY - 1
	}
	return x, y
}

// Constraint is one active pointer-constraint request against a surface
// (spec §4.6 "Pointer constraints"). It satisfies cursor.Constraint.
type Constraint struct {
	ID         idset.ID
	SurfaceID  string
	Kind       ConstraintKind
	Region     *Region // nil means "whole surface"
	active     bool
}

// New creates an inactive constraint; a surface's constraint only becomes
// Active once it holds pointer focus (spec §4.6 "armed when associated
// with the currently focused surface").
func New(surfaceID string, kind ConstraintKind, region *Region) *Constraint {
	return &Constraint{ID: idset.NewID(), SurfaceID: surfaceID, Kind: kind, Region: region}
}

// Arm activates the constraint; called when SurfaceID gains pointer focus.
func (c *Constraint) Arm() { c.active = true }

// Disarm deactivates the constraint without destroying it, so a later
// refocus can re-arm the same request (spec §4.6 "deactivated, not
// destroyed, on focus loss").
func (c *Constraint) Disarm() { c.active = false }

func (c *Constraint) Active() bool { return c != nil && c.active }
func (c *Constraint) Locked() bool { return c != nil && c.Kind == Locked }

// Clip implements cursor.Constraint for a Confined kind. Locked
// constraints never reach this (cursor checks Locked() first).
func (c *Constraint) Clip(x, y float32) (float32, float32) {
	if c.Region == nil {
		return x, y
	}
	return c.Region.clip(x, y)
}

// DragIcon is the optional surface a client attaches to a pointer/touch
// grab (spec §4.6 "drag icons track the initiating input point 1:1").
type DragIcon struct {
	ID       idset.ID
	OffsetX  int
	OffsetY  int
}

// NewDragIcon creates a drag icon with a zero offset from the input point.
func NewDragIcon() *DragIcon {
	return &DragIcon{ID: idset.NewID()}
}

// PositionAt returns the icon's layout-space top-left for the current
// input point.
func (d *DragIcon) PositionAt(x, y float32) (float32, float32) {
	return x + float32(d.OffsetX), y + float32(d.OffsetY)
}

// TouchPoint tracks one active touch contact (spec §4.6 "touch points are
// tracked independently of the pointer and of each other").
type TouchPoint struct {
	SlotID    int32
	SurfaceID string
	SX, SY    float32 // last known surface-local coordinates
}

// Tracker multiplexes the touch points live on a seat at once, keyed by
// their slot id (the libinput/wl_touch "down id").
type Tracker struct {
	points map[int32]*TouchPoint
}

// NewTracker creates an empty touch tracker.
func NewTracker() *Tracker {
	return &Tracker{points: make(map[int32]*TouchPoint)}
}

// Down starts tracking a new touch contact.
func (t *Tracker) Down(slot int32, surfaceID string, sx, sy float32) {
	t.points[slot] = &TouchPoint{SlotID: slot, SurfaceID: surfaceID, SX: sx, SY: sy}
}

// Motion updates an existing contact's surface-local coordinates. A motion
// for an unknown slot (e.g. after a cancel) is logged and dropped.
func (t *Tracker) Motion(slot int32, sx, sy float32) {
	p, ok := t.points[slot]
	if !ok {
		log.Debug("touch motion for unknown slot", "slot", slot)
		return
	}
	p.SX, p.SY = sx, sy
}

// Up ends one touch contact.
func (t *Tracker) Up(slot int32) {
	delete(t.points, slot)
}

// Cancel ends every tracked contact at once (spec §4.6 "a touch cancel
// event clears all points immediately, it is not per-slot").
func (t *Tracker) Cancel() {
	for k := range t.points {
		delete(t.points, k)
	}
}

// Get returns the touch point for a slot, if tracked.
func (t *Tracker) Get(slot int32) (TouchPoint, bool) {
	p, ok := t.points[slot]
	if !ok {
		return TouchPoint{}, false
	}
	return *p, true
}

// Len reports how many contacts are currently live.
func (t *Tracker) Len() int { return len(t.points) }
