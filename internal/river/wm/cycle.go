package wm

import (
	"sync"

	"riverwm.dev/river/internal/river/rlog"
)

var log = rlog.For("wm")

// Cycle drives the pending→wm update loop (spec §4.3). It debounces
// DirtyPending calls within one cooperative-loop turn (spec §5
// "Scheduling model": suspension points are only the loop's
// return-to-dispatch) and enforces that the wm client never observes two
// outstanding updates at once — a second dirty notification before the
// first is ack_update+commit'd just accumulates until the client is
// ready again.
type Cycle struct {
	mu sync.Mutex

	client      Client
	buildUpdate func(serial uint64) Update
	onCommit    func()

	serial  uint64
	dirty   bool
	ready   bool // wm client is free to receive another update
	awaitingCommit bool
}

// New creates a Cycle ready to send its first update. buildUpdate is
// called (under no lock) at send time to assemble the batch from
// whatever the caller considers "pending compositor state"; onCommit runs
// once the wm client's commit request arrives, and is where the caller
// should promote every dirty DoubleBuffer's uncommitted value to
// committed (spec §4.3 "snapshots each dirty object's
// uncommitted→committed fields").
func New(client Client, buildUpdate func(serial uint64) Update, onCommit func()) *Cycle {
	return &Cycle{client: client, buildUpdate: buildUpdate, onCommit: onCommit, ready: true}
}

// DirtyPending marks that pending compositor state changed. It does not
// itself send anything — call Flush once per loop turn to coalesce
// everything that happened since the last flush into a single batch
// (spec §4.3 "The coordinator debounces these calls").
func (c *Cycle) DirtyPending() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Flush sends a batch if there is dirty state and the wm client is ready
// for another update. It is a no-op otherwise, which is what lets
// multiple DirtyPending calls in one turn collapse into one update.
func (c *Cycle) Flush() error {
	c.mu.Lock()
	if !c.dirty || !c.ready {
		c.mu.Unlock()
		return nil
	}
	c.serial++
	serial := c.serial
	c.dirty = false
	c.ready = false
	c.awaitingCommit = false
	c.mu.Unlock()

	update := c.buildUpdate(serial)
	update.Serial = serial
	if err := c.client.SendUpdate(update); err != nil {
		log.Error("send update failed", "serial", serial, "err", err)
		// The wm connection is presumably dead; leave ready=false so we
		// don't wedge retry logic here — reconnection is the caller's
		// (server/wmtransport's) job, not this handshake's.
		return err
	}
	return nil
}

// AckUpdate handles the wm client's ack_update(serial) request. A serial
// that doesn't match the one outstanding update is a protocol misuse
// (spec §7) and is logged and ignored.
func (c *Cycle) AckUpdate(serial uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if serial != c.serial || c.ready {
		log.Error("stale or unexpected ack_update ignored", "serial", serial, "current", c.serial)
		return
	}
	c.awaitingCommit = true
}

// Commit handles the wm client's commit request, which must follow
// AckUpdate for the same round trip (spec §4.3 "ack_update(serial)
// followed by commit"). It runs the caller's onCommit hook, then reopens
// the cycle for another update — flushing
// immediately if mutations queued up while this round trip was in
// flight.
func (c *Cycle) Commit() {
	c.mu.Lock()
	if !c.awaitingCommit {
		c.mu.Unlock()
		log.Error("commit without a preceding ack_update ignored")
		return
	}
	c.awaitingCommit = false
	c.ready = true
	c.mu.Unlock()

	if c.onCommit != nil {
		c.onCommit()
	}
	_ = c.Flush()
}

// Ready reports whether the wm client is currently free to receive
// another update (mainly for tests and diagnostics).
func (c *Cycle) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}
