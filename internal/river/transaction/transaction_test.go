package transaction

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeWindow is a minimal transaction.Window double that lets tests
// control exactly when (and whether) it reports needing to wait.
type fakeWindow struct {
	id          string
	mustWait    bool
	applyErr    error
	committed   bool
	committedBW float32
	frameDone   int
}

func (w *fakeWindow) ApplyPending() error            { return w.applyErr }
func (w *fakeWindow) MarkTransactionParticipant()    {}
func (w *fakeWindow) Configure() (bool, error)       { return w.mustWait, nil }
func (w *fakeWindow) SendFrameDone()                 { w.frameDone++ }
func (w *fakeWindow) CommitTransaction(bw float32)   { w.committed = true; w.committedBW = bw }
func (w *fakeWindow) ID() string                     { return w.id }

type fakeTimer struct{ stopped bool }

func (t *fakeTimer) Stop() bool { t.stopped = true; return !t.stopped }

// fakeClock captures the scheduled callback instead of running a real
// timer, so tests can fire the deadline deterministically.
func fakeClock(fired *[]func()) Clock {
	return func(d time.Duration, fn func()) Timer {
		*fired = append(*fired, fn)
		return &fakeTimer{}
	}
}

// Property 1 & end-to-end scenario A (generalized to N windows): every
// window in the transaction commits together, in the same commit() pass.
func TestTransactionAtomicCommit(t *testing.T) {
	w1 := &fakeWindow{id: "w1", mustWait: false}
	w2 := &fakeWindow{id: "w2", mustWait: false}

	c := New(OnCommit(func(serial uint64) {}))
	c.ApplyPendingAll(func() []Window { return []Window{w1, w2} })

	require.True(t, w1.committed)
	require.True(t, w2.committed)
	require.False(t, c.Busy())
}

// Property 2: at most one transaction has pending_acks > 0 at a time;
// a second ApplyPendingAll while one is inflight coalesces instead of
// starting a second transaction.
func TestSingleInflightTransactionCoalesces(t *testing.T) {
	w1 := &fakeWindow{id: "w1", mustWait: true}

	var deadlines []func()
	c := New(WithClock(fakeClock(&deadlines)))

	c.ApplyPendingAll(func() []Window { return []Window{w1} })
	require.True(t, c.Busy())

	w2 := &fakeWindow{id: "w2", mustWait: false}
	secondCalled := false
	c.ApplyPendingAll(func() []Window {
		secondCalled = true
		return []Window{w2}
	})
	// Coalesced: the second windows() thunk has not run yet, and only one
	// transaction (w1's) is inflight.
	require.False(t, secondCalled)
	require.True(t, c.Busy())

	c.NotifyResolved("w1")
	require.True(t, w1.committed)
	require.True(t, secondCalled)
	require.True(t, w2.committed)
}

// Scenario C: a transaction with two windows where only one resolves
// before the deadline force-commits both, using a timed-out path for the
// one that never acked.
func TestTransactionTimeoutForceCommits(t *testing.T) {
	w1 := &fakeWindow{id: "w1", mustWait: true}
	w2 := &fakeWindow{id: "w2", mustWait: true}

	var deadlines []func()
	c := New(WithClock(fakeClock(&deadlines)))
	c.ApplyPendingAll(func() []Window { return []Window{w1, w2} })
	require.Len(t, deadlines, 1)

	c.NotifyResolved("w1")
	require.False(t, w1.committed) // not yet: w2 still outstanding
	require.True(t, c.Busy())

	// Deadline fires before w2 ever resolves.
	deadlines[0]()

	require.True(t, w1.committed)
	require.True(t, w2.committed)
	require.False(t, c.Busy())
}

func TestNotifyResolvedIgnoresUnknownOrDuplicateWindow(t *testing.T) {
	w1 := &fakeWindow{id: "w1", mustWait: true}
	var deadlines []func()
	c := New(WithClock(fakeClock(&deadlines)))
	c.ApplyPendingAll(func() []Window { return []Window{w1} })

	c.NotifyResolved("does-not-exist")
	require.True(t, c.Busy())

	c.NotifyResolved("w1")
	require.False(t, c.Busy())

	// A duplicate/late notification after the transaction already
	// finished must not panic or double-finish.
	c.NotifyResolved("w1")
}

func TestApplyPendingFailureExcludesWindowButContinues(t *testing.T) {
	w1 := &fakeWindow{id: "w1", mustWait: false, applyErr: errApply}
	w2 := &fakeWindow{id: "w2", mustWait: false}

	c := New()
	c.ApplyPendingAll(func() []Window { return []Window{w1, w2} })

	require.False(t, w1.committed)
	require.True(t, w2.committed)
}

var errApply = fmt.Errorf("apply pending failed")
