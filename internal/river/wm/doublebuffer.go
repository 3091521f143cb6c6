package wm

// DoubleBuffer implements the pattern spec §9 calls out by name:
// "Every externally-settable knob (binding enabled, output state, window
// intent) carries three fields: uncommitted ... committed ... and for
// windows additionally the inflight/current for layout. Always promote
// only on explicit commit." This type is the uncommitted/committed half;
// window.Snapshot's pending/inflight/current triple is the other half.
// No code in this module copies a DoubleBuffer's committed value into a
// window snapshot.
type DoubleBuffer[T any] struct {
	uncommitted T
	committed   T
}

// NewDoubleBuffer seeds both halves with an initial value.
func NewDoubleBuffer[T any](initial T) DoubleBuffer[T] {
	return DoubleBuffer[T]{uncommitted: initial, committed: initial}
}

// Set mutates the uncommitted half. This is what a wm protocol request
// (enable/disable a binding, set a window's desired box) does; it has no
// effect on anything input or layout code observes until Commit.
func (d *DoubleBuffer[T]) Set(v T) {
	d.uncommitted = v
}

// Uncommitted returns the value most recently Set, even if never
// committed — used by the update-cycle diffing to decide what to send.
func (d *DoubleBuffer[T]) Uncommitted() T {
	return d.uncommitted
}

// Commit promotes uncommitted to committed. Its owner decides when; the
// onCommit hook the server passes to Cycle does not call it.
func (d *DoubleBuffer[T]) Commit() {
	d.committed = d.uncommitted
}

// Committed returns the value observable to input and layout code (spec
// §9: "only committed values are observable to input/layout code").
func (d *DoubleBuffer[T]) Committed() T {
	return d.committed
}

// Dirty reports whether Set has moved uncommitted away from committed,
// i.e. whether this object has something worth mentioning in the next
// wm update batch.
func (d *DoubleBuffer[T]) Dirty(eq func(a, b T) bool) bool {
	return !eq(d.uncommitted, d.committed)
}
