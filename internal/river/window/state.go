// Package window implements the window state triple (pending/inflight/
// current) and its configure sub-state machine — spec §3 "Window" and
// §4.1/§4.2. It is the one place a window's rendered geometry is allowed
// to change; everything else (input, layout, the wm client) only ever
// mutates Pending or reads Current.
package window

import "riverwm.dev/river/internal/river/idset"

// Box is a window's rectangle in logical pixels.
type Box struct {
	X, Y, W, H int
}

// Flags are the orthogonal boolean attributes carried by every snapshot.
type Flags struct {
	Fullscreen           bool
	Urgent               bool
	ServerSideDecoration bool
	Resizing             bool
	Activated            bool
}

// Snapshot is one of the three ordered views of a window's state: pending,
// inflight or current (spec §3).
type Snapshot struct {
	Box        Box
	FocusCount int
	Flags      Flags
	Title      string
	AppID      string
}

// Focused reports whether any seat currently focuses this snapshot.
func (s Snapshot) Focused() bool {
	return s.FocusCount > 0
}

// ConfigureState is a state in the sub-state machine of spec §4.2:
//
//	idle -> inflight(S) -> acked -> committed -> idle
//	inflight(S) -> timed_out(S)
//	acked -> timed_out_acked
type ConfigureState uint8

const (
	Idle ConfigureState = iota
	Inflight
	Acked
	Committed
	TimedOut
	TimedOutAcked
)

func (s ConfigureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Inflight:
		return "inflight"
	case Acked:
		return "acked"
	case Committed:
		return "committed"
	case TimedOut:
		return "timed_out"
	case TimedOutAcked:
		return "timed_out_acked"
	default:
		return "invalid"
	}
}

// Configure tracks the sub-state plus the serial it was entered with, so a
// late ack after a timeout can still be classified correctly (spec §5
// "Cancellation & timeouts").
type Configure struct {
	State  ConfigureState
	Serial uint32
}

// ID is the protocol-object identity for a window, looked up through
// idset when another component needs to reference a window weakly.
type ID = idset.ID
