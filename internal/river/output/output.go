// Package output implements C7: the Output lifecycle — a
// pending/sent/current configuration triple mirroring window's Window
// triple, an operational-state enum, and the session-lock render-state
// enum gating what the compositor is allowed to show while locked.
package output

import (
	"fmt"

	"riverwm.dev/river/internal/river/idset"
	"riverwm.dev/river/internal/river/rlog"
)

var log = rlog.For("output")

// Mode is one output geometry/refresh mode candidate.
type Mode struct {
	Width, Height int
	RefreshMilli  int // refresh rate in mHz, matching wl_output's unit
}

// Config is the negotiable state of an output: its chosen mode, scale,
// position in the layout, and whether it is enabled at all.
type Config struct {
	Mode     Mode
	Scale    float32
	X, Y     int
	Enabled  bool
}

// OpState is the output's operational state (spec §4.7 "Output
// lifecycle"): enabled, soft-disabled (still bound, not presenting),
// hard-disabled (backend reports it gone but not yet destroyed), or
// destroying (tearing down, no further configuration is accepted).
type OpState uint8

const (
	Enabled OpState = iota
	DisabledSoft
	DisabledHard
	Destroying
)

func (s OpState) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case DisabledSoft:
		return "disabled_soft"
	case DisabledHard:
		return "disabled_hard"
	case Destroying:
		return "destroying"
	default:
		return "invalid"
	}
}

// LockRenderState gates what an output is allowed to present while the
// session is locked (spec §3 "lock_render_state", §4.7 "updated on each
// frame commit and each successful presentation event, driving the
// session-lock manager's 'fully blanked' observation"). The three
// pending_* states are suspension points (spec §4.3 "Suspension points":
// "pending_blank/pending_lock_surface await present") that only resolve
// on a Present call, never by being set directly — that is what keeps a
// lock/unlock race from skipping the frame that actually proves the
// output stopped (or started) showing the desktop.
type LockRenderState uint8

const (
	// RenderUnlocked is the normal, unlocked state: showing desktop content.
	RenderUnlocked LockRenderState = iota
	// RenderPendingBlank is entered on a lock request; the output keeps
	// showing its last normal frame (blanking would leak a flash of the
	// desktop) until the blank frame actually presents.
	RenderPendingBlank
	// RenderBlanked is reached once the blank frame has presented: the
	// output shows nothing, and a lock surface may now be requested.
	RenderBlanked
	// RenderPendingLockSurface is entered once a lock surface exists for
	// this output; it still shows blank until that surface's first frame
	// presents.
	RenderPendingLockSurface
	// RenderLockSurface is reached once the lock surface has presented:
	// the output shows only the lock surface.
	RenderLockSurface
	// RenderPendingUnlock is entered on an unlock request; the output
	// keeps showing the lock surface until the first unlocked frame
	// presents.
	RenderPendingUnlock
)

func (s LockRenderState) String() string {
	switch s {
	case RenderUnlocked:
		return "unlocked"
	case RenderPendingBlank:
		return "pending_blank"
	case RenderBlanked:
		return "blanked"
	case RenderPendingLockSurface:
		return "pending_lock_surface"
	case RenderLockSurface:
		return "lock_surface"
	case RenderPendingUnlock:
		return "pending_unlock"
	default:
		return "invalid"
	}
}

// Backend is the narrow seam to whatever owns the real display handle
// (DRM/KMS or a nested Wayland output under a gio window, per the
// teacher's app.Window abstraction) — output only asks it to apply a
// config and to report whether the hardware accepted it.
type Backend interface {
	Apply(cfg Config) error
}

// Output is one physical or virtual display output (spec §4.7). Config
// is triple-buffered the same way Window is: Pending is what clients
// (the wm) are building up, Sent is what has gone to the backend and is
// awaiting acknowledgement, Current is what is actually on screen.
type Output struct {
	ID ID

	Pending Config
	sent    Config
	current Config

	haveSent bool
	state    OpState
	lockState LockRenderState

	backend Backend

	OnDirty func()
}

// ID identifies an output across its lifetime.
type ID = idset.ID

// New creates an output in the Enabled state with no configuration
// applied yet.
func New(backend Backend) *Output {
	return &Output{ID: idset.NewID(), backend: backend, state: Enabled}
}

// State reports the operational state.
func (o *Output) State() OpState { return o.state }

// LockRenderState reports the session-lock render gating state.
func (o *Output) LockRenderState() LockRenderState { return o.lockState }

// RequestBlank starts locking this output: unlocked -> pending_blank.
// Any other starting state is refused and logged, since a blank request
// only makes sense against a still-normal output.
func (o *Output) RequestBlank() {
	if o.lockState != RenderUnlocked {
		log.Error("output: blank requested outside unlocked state", "output", o.ID, "state", o.lockState)
		return
	}
	o.lockState = RenderPendingBlank
}

// RequestLockSurface starts showing a lock surface once blanked:
// blanked -> pending_lock_surface.
func (o *Output) RequestLockSurface() {
	if o.lockState != RenderBlanked {
		log.Error("output: lock surface requested outside blanked state", "output", o.ID, "state", o.lockState)
		return
	}
	o.lockState = RenderPendingLockSurface
}

// RequestUnlock starts unlocking: lock_surface -> pending_unlock. It
// refuses to fire from pending_blank or pending_lock_surface — spec
// §4.7 requires the lock surface to have actually rendered at least one
// frame before a normal frame can show again, so an unlock race landing
// before that first presentation is rejected rather than silently
// skipping straight back to unlocked.
func (o *Output) RequestUnlock() {
	if o.lockState != RenderLockSurface {
		log.Error("output: refusing to skip locked state on unlock race", "output", o.ID, "state", o.lockState)
		return
	}
	o.lockState = RenderPendingUnlock
}

// Present resolves whichever pending_* state is outstanding into its
// settled state (spec §4.3 "pending_blank/pending_lock_surface await
// present"), driven by a successful presentation event. It is a no-op
// from any already-settled state.
func (o *Output) Present() {
	switch o.lockState {
	case RenderPendingBlank:
		o.lockState = RenderBlanked
	case RenderPendingLockSurface:
		o.lockState = RenderLockSurface
	case RenderPendingUnlock:
		o.lockState = RenderUnlocked
	}
}

// Dirty marks Pending as changed and wakes whatever drives the output's
// send cycle (mirrors window's wm.Cycle.DirtyPending hookup).
func (o *Output) Dirty() {
	if o.OnDirty != nil {
		o.OnDirty()
	}
}

// Send applies Pending to the backend if it differs from what was last
// sent, moving it into sent awaiting confirmation.
func (o *Output) Send() error {
	if o.state == Destroying {
		return fmt.Errorf("output %s: cannot send, destroying", o.ID)
	}
	if o.haveSent && o.sent == o.Pending {
		return nil
	}
	if err := o.backend.Apply(o.Pending); err != nil {
		return fmt.Errorf("output %s: apply config: %w", o.ID, err)
	}
	o.sent = o.Pending
	o.haveSent = true
	return nil
}

// Confirm promotes sent to current once the backend acknowledges the
// mode switch actually took effect (spec §4.7 "Configuration commit").
func (o *Output) Confirm() {
	o.current = o.sent
	if !o.current.Enabled {
		o.state = DisabledSoft
	} else {
		o.state = Enabled
	}
}

// Current returns the last confirmed configuration.
func (o *Output) Current() Config { return o.current }

// DisableHard marks the output hard-disabled: the backend reported it
// gone (unplugged, DPMS off at the hardware level) without the core
// requesting it (spec §4.7 "hard disable is backend-initiated").
func (o *Output) DisableHard() {
	o.state = DisabledHard
}

// Destroy begins teardown; no further Send calls are accepted afterward.
// It is idempotent.
func (o *Output) Destroy() {
	o.state = Destroying
}
