// Package wm implements the WM-Update Cycle (spec §4.3 "Pending→wm update
// loop", §6): the compositor-private protocol that lets an external
// window-manager process observe compositor state and set window/output
// intent, sealed by atomic update/ack_update/commit round trips so the wm
// client never sees a torn batch (spec §5 "Ordering guarantees").
//
// This package does not define a wire format — spec.md explicitly leaves
// that as a Non-goal. The concrete bytes-on-a-socket framing lives in
// internal/river/wmtransport; this package only defines the request/event
// shapes and the handshake state machine that sits on either side of it.
package wm

// WindowIntent is the set of fields the wm client may set on a window's
// wm-side double buffer (spec table "Request (← wm)"): dimensions,
// fullscreen, server-side-decoration, and whether this seat's focus
// should move to the window.
type WindowIntent struct {
	X, Y, W, H int
	Fullscreen bool
	SSD        bool
	Focused    bool
}

// WindowProperties is the read side: what the core reports to the wm
// client about a window's pending state (spec table "per-window property
// updates").
type WindowProperties struct {
	Title              string
	AppID              string
	AppRequestedFullscreen bool
	Urgent             bool
	Interactive        bool // currently under an interactive op/resize
}

// OutputIntent mirrors WindowIntent for outputs: what the wm client may
// request (position in the logical layout; enable/disable is driven by
// the backend, not the wm, per spec §4.7).
type OutputIntent struct {
	X, Y int
}

// BindingEvent is what the wm client observes for a binding: it was sent
// to it as newly known, or a press/release arrived (spec table "binding
// press/release").
type BindingEvent uint8

const (
	BindingSent BindingEvent = iota
	BindingPressed
	BindingReleased
)

// Announcement is a newly-created protocol object the wm client must be
// told about before any deltas referencing it make sense (spec table
// "window(id)" / "output(id)" / "seat(id)").
type Announcement struct {
	Kind string // "window", "output", or "seat"
	ID   string
}

// Update is one sealed batch sent to the wm client (spec §4.3 point 1-3).
// Serial seals it; the client must reply with AckUpdate(Serial) then
// Commit before the compositor will send another.
type Update struct {
	Serial uint64

	NewWindows     []Announcement
	RemovedWindows []string
	NewOutputs     []Announcement
	RemovedOutputs []string
	NewSeats       []Announcement

	WindowProps map[string]WindowProperties
	BindingSent map[string]BindingEvent // id -> press/release delta
}

// Client is what the core needs from the wm client connection (spec §6
// "To the window-manager client"). A concrete transport (e.g.
// wmtransport's websocket framing) implements this by serializing Update
// and deserializing the wm's requests into calls on Cycle.
type Client interface {
	// SendUpdate seals and delivers one batch. The wm client is expected
	// to eventually call back into Cycle.AckUpdate then Cycle.Commit.
	SendUpdate(Update) error
}
