package pointerctl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstraintArmDisarmDoesNotDestroy(t *testing.T) {
	c := New("surface-a", Locked, nil)
	require.False(t, c.Active())

	c.Arm()
	require.True(t, c.Active())
	require.True(t, c.Locked())

	c.Disarm()
	require.False(t, c.Active())
}

func TestConfinedConstraintClipsToRegion(t *testing.T) {
	region := &Region{X: 0, Y: 0, W: 100, H: 50}
	c := New("surface-a", Confined, region)
	c.Arm()

	x, y := c.Clip(150, 10)
	require.Equal(t, float32(99), x)
	require.Equal(t, float32(10), y)
}

func TestTouchTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	tr.Down(1, "surface-a", 10, 20)
	require.Equal(t, 1, tr.Len())

	tr.Motion(1, 15, 25)
	p, ok := tr.Get(1)
	require.True(t, ok)
	require.Equal(t, float32(15), p.SX)

	tr.Up(1)
	require.Equal(t, 0, tr.Len())
}

func TestTouchCancelClearsAllPoints(t *testing.T) {
	tr := NewTracker()
	tr.Down(1, "a", 0, 0)
	tr.Down(2, "b", 0, 0)
	require.Equal(t, 2, tr.Len())

	tr.Cancel()
	require.Equal(t, 0, tr.Len())
}

func TestTouchMotionForUnknownSlotIsDropped(t *testing.T) {
	tr := NewTracker()
	tr.Motion(42, 1, 1)
	_, ok := tr.Get(42)
	require.False(t, ok)
}

func TestDragIconPositionTracksOffset(t *testing.T) {
	icon := NewDragIcon()
	icon.OffsetX, icon.OffsetY = 5, -5

	x, y := icon.PositionAt(100, 100)
	require.Equal(t, float32(105), x)
	require.Equal(t, float32(95), y)
}
