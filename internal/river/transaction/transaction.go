// Package transaction implements the Transaction Coordinator (spec §4.3
// "Transaction loop", §5, §8 properties 1-3): the atomic, bounded-wait,
// multi-window reconfiguration that keeps the renderer from ever
// observing a mix of old and new window rectangles.
package transaction

import (
	"sync"
	"time"

	"riverwm.dev/river/internal/river/rlog"
	"riverwm.dev/river/internal/river/window"
)

var log = rlog.For("transaction")

// DefaultTimeout is the "short bounded wait" spec §4.3 recommends (200ms).
const DefaultTimeout = 200 * time.Millisecond

// Window is the subset of *window.Window the coordinator drives.
type Window interface {
	ApplyPending() error
	MarkTransactionParticipant()
	Configure() (mustWait bool, err error)
	SendFrameDone()
	CommitTransaction(borderWidth float32)
	ID() string
}

// windowAdapter lets *window.Window satisfy the small Window interface
// above without the transaction package importing window's full surface.
type windowAdapter struct{ w *window.Window }

func (a windowAdapter) ApplyPending() error         { return a.w.ApplyPending() }
func (a windowAdapter) MarkTransactionParticipant() { a.w.MarkTransactionParticipant() }
func (a windowAdapter) Configure() (bool, error)    { return a.w.Configure() }
func (a windowAdapter) SendFrameDone()              { a.w.SendFrameDone() }
func (a windowAdapter) CommitTransaction(bw float32) { a.w.CommitTransaction(bw) }
func (a windowAdapter) ID() string                  { return a.w.ID.String() }

// Adapt wraps a *window.Window as a Window for the coordinator.
func Adapt(w *window.Window) Window { return windowAdapter{w} }

// Timer abstracts the deadline clock so tests can fire it deterministically
// instead of racing a real 200ms timer.
type Timer interface {
	Stop() bool
}

// Clock creates a deadline timer that invokes fn after d. The default is
// time.AfterFunc; tests substitute a fake to make the deadline
// deterministic without sleeping.
type Clock func(d time.Duration, fn func()) Timer

func realClock(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Transaction is a single compositor-wide reconfiguration: a serial, the
// set of participating windows, and a countdown of outstanding configure
// acks (spec §3 "Transaction").
type Transaction struct {
	Serial      uint64
	Windows     []Window
	pendingAcks int
	// waiting tracks which windows this transaction is still waiting on,
	// so a resolution notification for a window that already resolved
	// (or that isn't part of this transaction at all) is a no-op instead
	// of double-decrementing pendingAcks.
	waiting map[string]bool
}

// Coordinator starts, tracks, times out and commits transactions. Spec §4.3
// and §8.2 require that at most one transaction carries pendingAcks > 0 at
// a time; overlapping apply-all requests coalesce into a re-run once the
// current one commits.
type Coordinator struct {
	mu sync.Mutex

	clock       Clock
	timeout     time.Duration
	borderWidth float32

	serial  uint64
	current *Transaction
	timer   Timer

	// coalesced is set when ApplyPendingAll is requested while a
	// transaction is already inflight (spec §4.3 "coalesced").
	coalesced      bool
	coalescedWindows func() []Window

	onCommit func(serial uint64)
}

// Option configures a Coordinator at construction.
type Option func(*Coordinator)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option { return func(c *Coordinator) { c.timeout = d } }

// WithBorderWidth sets the border width passed to each window's
// CommitTransaction (purely a scene-repositioning input, spec §4.1).
func WithBorderWidth(w float32) Option { return func(c *Coordinator) { c.borderWidth = w } }

// WithClock substitutes a deterministic timer for tests.
func WithClock(c Clock) Option { return func(co *Coordinator) { co.clock = c } }

// OnCommit registers a callback invoked (synchronously, inside the
// coordinator's lock-free continuation) whenever a transaction commits —
// e.g. to tell the output lifecycle or scene graph a new frame is ready.
func OnCommit(fn func(serial uint64)) Option { return func(c *Coordinator) { c.onCommit = fn } }

// New creates a Coordinator with no transaction inflight.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{clock: realClock, timeout: DefaultTimeout}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Busy reports whether a transaction currently has pendingAcks > 0 (spec
// §8.2 "single inflight transaction").
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// ApplyPendingAll copies pending -> inflight for every window in windows
// and starts a new transaction (spec §4.3). If a transaction is already
// inflight, the request coalesces: windows accumulate and the apply is
// re-run immediately after the current transaction commits, rather than
// starting a second overlapping transaction.
func (c *Coordinator) ApplyPendingAll(windows func() []Window) {
	c.mu.Lock()
	if c.current != nil {
		c.coalesced = true
		c.coalescedWindows = windows
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.start(windows())
}

func (c *Coordinator) start(windows []Window) {
	if len(windows) == 0 {
		return
	}
	c.mu.Lock()
	c.serial++
	txn := &Transaction{Serial: c.serial}
	c.current = txn
	c.mu.Unlock()

	participants := make([]Window, 0, len(windows))
	pending := 0
	waiting := make(map[string]bool)
	for _, w := range windows {
		if err := w.ApplyPending(); err != nil {
			log.Error("apply pending failed, window excluded from transaction", "window", w.ID(), "err", err)
			continue
		}
		participants = append(participants, w)
		w.MarkTransactionParticipant()
		mustWait, err := w.Configure()
		if err != nil {
			log.Error("configure failed", "window", w.ID(), "err", err)
			continue
		}
		if mustWait {
			pending++
			waiting[w.ID()] = true
			w.SendFrameDone()
		}
	}

	c.mu.Lock()
	txn.Windows = participants
	txn.pendingAcks = pending
	txn.waiting = waiting
	c.mu.Unlock()

	if pending == 0 {
		c.finish(txn)
		return
	}

	c.mu.Lock()
	c.timer = c.clock(c.timeout, func() { c.onDeadline(txn) })
	c.mu.Unlock()
}

// NotifyResolved is called by the surface-commit wiring once a window's
// configure sub-state reaches Committed (ack_configure then client
// buffer commit — spec §4.3 "via ack_configure then commit on each
// client surface"), so the coordinator can decrement pendingAcks and
// commit early once it reaches zero. A window not currently awaited by
// the inflight transaction (already resolved, or never part of it) is a
// no-op — this is what keeps a duplicate or out-of-order notification
// from double-decrementing the countdown.
func (c *Coordinator) NotifyResolved(id string) {
	c.mu.Lock()
	txn := c.current
	if txn == nil || !txn.waiting[id] {
		c.mu.Unlock()
		return
	}
	delete(txn.waiting, id)
	txn.pendingAcks--
	done := txn.pendingAcks <= 0
	c.mu.Unlock()

	if done {
		c.finish(txn)
	}
}

func (c *Coordinator) onDeadline(txn *Transaction) {
	c.mu.Lock()
	if c.current != txn {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	log.Warn("transaction deadline fired, force-committing", "serial", txn.Serial, "pending_acks", txn.pendingAcks)
	c.finish(txn)
}

func (c *Coordinator) finish(txn *Transaction) {
	c.mu.Lock()
	if c.current != txn {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
	c.mu.Unlock()

	c.commit(txn)

	c.mu.Lock()
	coalesced := c.coalesced
	windows := c.coalescedWindows
	c.coalesced = false
	c.coalescedWindows = nil
	c.mu.Unlock()

	if coalesced && windows != nil {
		c.start(windows())
	}
}

// commit performs the cross-window atomic current := inflight transfer
// (spec §5 "Ordering guarantees": "current is updated for all windows in
// a single turn").
func (c *Coordinator) commit(txn *Transaction) {
	for _, w := range txn.Windows {
		w.CommitTransaction(c.borderWidth)
	}
	if c.onCommit != nil {
		c.onCommit(txn.Serial)
	}
}
