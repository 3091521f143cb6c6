package window

import (
	"fmt"

	"riverwm.dev/river/internal/river/idset"
	"riverwm.dev/river/internal/river/rlog"
	"riverwm.dev/river/internal/river/scene"
)

var log = rlog.For("window")

// Client is what the core expects from the surface this Window wraps —
// the display-server-runtime glue spec §6 calls an external collaborator.
// The core only ever calls these two methods; everything else (mapping,
// destroy, XKB, etc.) lives on the other side of this seam.
type Client interface {
	// SendConfigure emits a configure carrying the inflight size,
	// activation, fullscreen, resizing and decoration mode, tagged with
	// serial. The client is expected to eventually call AckConfigure
	// with the same serial.
	SendConfigure(serial uint32, box Box, flags Flags) error
	// SendFrameDone lets a configuring window start drawing its new
	// size immediately, ahead of the transaction's commit (spec §4.3).
	SendFrameDone()
}

// Window is a managed top-level surface: the pending/inflight/current
// triple plus its configure sub-state (spec §3, §4.1).
type Window struct {
	ID ID

	Pending  Snapshot
	inflight Snapshot
	current  Snapshot

	configure Configure

	// inflightTransaction is true while this window's inflight snapshot
	// is frozen by an in-progress transaction; Pending may still be
	// mutated freely, but ApplyPending is rejected until it clears.
	inflightTransaction bool

	// lastObservedGeometry is the client's actual last-committed buffer
	// size, used to avoid rendering a border for a size the client
	// hasn't reached yet on timeout (spec §4.1) and to keep borders
	// consistent with a buggy client's unrequested resize (spec §7).
	lastObservedGeometry Box
	haveObservedGeometry bool

	Destroying bool

	Scene  scene.Tree
	Client Client

	// OnCommitted, if set, is invoked whenever SurfaceCommit advances the
	// configure sub-state to Committed — the transaction coordinator
	// hooks this to decrement its pending-ack countdown (spec §4.3
	// "pending_acks reaches zero").
	OnCommitted func()
}

// New creates a Window with a freshly allocated identity. Pending starts
// zeroed; the caller (the wm-update cycle, on first wm announcement) is
// expected to fill it in before the first ApplyPending.
func New(client Client) *Window {
	return &Window{ID: idset.NewID(), Client: client}
}

// Current returns the authoritative rendered snapshot. Nothing outside
// this package may write to it — spec §3's central invariant.
func (w *Window) Current() Snapshot { return w.current }

// Inflight returns the frozen-during-a-transaction snapshot. It is
// immutable whenever InflightTransaction() is true.
func (w *Window) Inflight() Snapshot { return w.inflight }

// InflightTransaction reports whether this window is currently
// participating in a transaction (its inflight snapshot is frozen).
func (w *Window) InflightTransaction() bool { return w.inflightTransaction }

// ConfigureState exposes the sub-state machine's current state, mainly for
// the transaction coordinator and tests.
func (w *Window) ConfigureState() Configure { return w.configure }

// MarkTransactionParticipant freezes inflight for the duration of the
// transaction that is about to configure this window.
func (w *Window) MarkTransactionParticipant() {
	w.inflightTransaction = true
}

// ApplyPending is the sole path from pending to inflight (spec §4.1). It
// is only legal when no transaction is currently inflight for this
// window; the transaction coordinator calls this for every window before
// starting a new transaction.
func (w *Window) ApplyPending() error {
	if w.inflightTransaction {
		return fmt.Errorf("window %s: ApplyPending called while a transaction is inflight", w.ID)
	}
	w.inflight = w.Pending
	return nil
}

// Configure emits a configure to the client per spec §4.1 and reports
// whether the transaction coordinator must wait for an ack. It returns
// false — without sending anything — when inflight already equals
// current in every dimension and the configure sub-state is idle, so a
// transaction that changes nothing for this window causes no round trip.
func (w *Window) Configure() (mustWait bool, err error) {
	sizeChanged := w.inflight.Box.W != w.current.Box.W || w.inflight.Box.H != w.current.Box.H
	flagsChanged := w.inflight.Flags != w.current.Flags || w.inflight.FocusCount != w.current.FocusCount

	if !sizeChanged && !flagsChanged && w.configure.State == Idle {
		return false, nil
	}

	serial := nextSerial()
	if err := w.Client.SendConfigure(serial, w.inflight.Box, w.inflight.Flags); err != nil {
		return false, fmt.Errorf("window %s: send configure: %w", w.ID, err)
	}
	w.configure = Configure{State: Inflight, Serial: serial}

	// Orthogonal flag-only changes (e.g. activated) are allowed not to
	// wait, per spec §4.1; in this implementation any geometry change
	// always waits, and we also wait on flag-only changes so the wm sees
	// exactly one commit per transaction rather than reasoning about
	// partial acks — see DESIGN.md "Open Question: flag-only wait".
	return true, nil
}

// SendFrameDone lets the transaction coordinator kick a configuring
// window into drawing its new size immediately (spec §4.3: "send an
// early frame_done to each configuring window").
func (w *Window) SendFrameDone() {
	w.Client.SendFrameDone()
}

// AckConfigure handles the client's ack_configure(serial) request. Per
// spec §4.2 and the serial-monotonicity property (§8.3), a serial that
// does not match the current inflight serial is a stale ack and is
// ignored without any state change.
func (w *Window) AckConfigure(serial uint32) {
	if w.configure.State != Inflight || w.configure.Serial != serial {
		log.Warn("stale ack_configure ignored", "window", w.ID, "serial", serial, "state", w.configure.State)
		return
	}
	w.configure.State = Acked
}

// SurfaceCommit handles the client's buffer commit (distinct from the
// transaction-coordinator's commit): it records the client's actual
// buffer geometry and, if the configure sub-state was Acked, advances it
// to Committed. A buggy client that commits a different size than
// configured while tiled/fullscreen is still accepted, with only a
// logged warning (spec §7) — current.{width,height} is overridden from
// this geometry in CommitTransaction.
func (w *Window) SurfaceCommit(actualW, actualH int) {
	if w.inflight.Box.W != 0 && (actualW != w.inflight.Box.W || actualH != w.inflight.Box.H) &&
		(w.inflight.Flags.Fullscreen || !w.inflight.Flags.Resizing) {
		log.Warn("client committed unrequested size",
			"window", w.ID, "requested_w", w.inflight.Box.W, "requested_h", w.inflight.Box.H,
			"actual_w", actualW, "actual_h", actualH)
		// TODO(resize-policy): decide whether to force-resize the client
		// back to the requested geometry instead of accepting this one;
		// left open by the source (spec §9 Open Questions).
	}
	w.lastObservedGeometry = Box{X: w.inflight.Box.X, Y: w.inflight.Box.Y, W: actualW, H: actualH}
	w.haveObservedGeometry = true

	if w.configure.State == Acked {
		w.configure.State = Committed
		if w.OnCommitted != nil {
			w.OnCommitted()
		}
	}
}

// Timeout transitions an un-acked or acked-but-uncommitted configure to
// its timed-out counterpart when the transaction coordinator's deadline
// fires (spec §4.3, §5). It is not an error (spec §7): the transition is
// part of the contract.
func (w *Window) Timeout() {
	switch w.configure.State {
	case Inflight:
		w.configure.State = TimedOut
	case Acked:
		w.configure.State = TimedOutAcked
	}
}

// CommitTransaction is the atomic inflight -> current transfer (spec
// §4.1). Behavior branches on the configure sub-state:
//
//   - inflight | acked: treated as a timeout even if Timeout was never
//     called explicitly (e.g. the coordinator force-commits without a
//     per-window timeout pass); current takes inflight's geometry but
//     with width/height overridden by the last observed geometry so the
//     border isn't drawn for a size the client never reached.
//   - idle | committed: the common case; current := inflight, sub-state
//     clears to idle, and width/height again come from the last observed
//     geometry so a client that committed an unrequested size keeps
//     borders consistent with what it actually rendered.
//   - timed_out*: unreachable here; Configure() re-enters inflight(S')
//     for the next transaction before CommitTransaction is ever called
//     again.
func (w *Window) CommitTransaction(borderWidth float32) {
	switch w.configure.State {
	case Inflight, Acked:
		w.Timeout()
		fallthrough
	case TimedOut, TimedOutAcked:
		w.current = w.inflight
		if w.haveObservedGeometry {
			w.current.Box.W = w.lastObservedGeometry.W
			w.current.Box.H = w.lastObservedGeometry.H
		}
	case Idle, Committed:
		w.configure.State = Idle
		w.current = w.inflight
		if w.haveObservedGeometry {
			w.current.Box.W = w.lastObservedGeometry.W
			w.current.Box.H = w.lastObservedGeometry.H
		}
	}

	w.inflightTransaction = false
	w.Scene.DisableSaved()
	w.Scene.Reposition(float32(w.current.Box.X), float32(w.current.Box.Y),
		float32(w.current.Box.W), float32(w.current.Box.H), borderWidth)
}

// --- serials ---

var serialCounter uint32

// nextSerial hands out the next monotonic configure serial. Serials are
// global across windows (mirrors the single compositor-wide transaction
// serial space from spec §3 "Transaction").
func nextSerial() uint32 {
	serialCounter++
	return serialCounter
}
