package cursor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	id      string
	motions [][2]float32
}

func (s *fakeSurface) PointerMotion(sx, sy float32) {
	s.motions = append(s.motions, [2]float32{sx, sy})
}

type fakeFocus struct {
	under   *fakeSurface
	focused *fakeSurface
	cleared int
}

func (f *fakeFocus) SurfaceUnder(x, y float32) (Surface, float32, float32) {
	if f.under == nil {
		return nil, 0, 0
	}
	return f.under, x, y
}

func (f *fakeFocus) Focused() (Surface, bool) {
	if f.focused == nil {
		return nil, false
	}
	return f.focused, true
}

func (f *fakeFocus) SetFocus(s Surface) { f.focused = s.(*fakeSurface) }
func (f *fakeFocus) ClearFocus()        { f.focused = nil; f.cleared++ }

type fakeResize struct {
	edges  Edges
	totalW int
	totalH int
	calls  int
}

func (r *fakeResize) ResizeBy(edges Edges, dw, dh int) {
	r.edges = edges
	r.totalW += dw
	r.totalH += dh
	r.calls++
}

// Property 6: exit_mode(ignore) when nothing holds it open transitions to
// passthrough, and is a no-op when already passthrough or still held.
func TestModeIdempotence(t *testing.T) {
	focus := &fakeFocus{}
	c := New(focus)

	c.EnterIgnore()
	require.Equal(t, Ignore, c.Mode())

	c.ExitIgnore(true) // still sustained by a held button
	require.Equal(t, Ignore, c.Mode())

	c.ExitIgnore(false)
	require.Equal(t, Passthrough, c.Mode())

	// Repeated exit is a no-op.
	c.ExitIgnore(false)
	require.Equal(t, Passthrough, c.Mode())
}

// Property 7 / scenario B: fractional motion under op mode accumulates
// across calls without net loss — two sub-integer deltas that sum to a
// whole number must eventually produce that whole number, not truncate
// each call's fraction away independently.
func TestCursorDeltaAccumulationNoNetLoss(t *testing.T) {
	focus := &fakeFocus{}
	c := New(focus)
	c.EnterResize("w1", EdgeRight|EdgeBottom, 400, 300)

	resize := &fakeResize{}
	c.Motion(0.5, 0.25, resize)
	require.Equal(t, 0, resize.totalW, "a single sub-integer motion must not yet move the window")
	c.Motion(0.5, 0.25, resize)
	require.Equal(t, 1, resize.totalW, "the accumulated fraction must surface once it crosses 1.0")
	c.Motion(0.5, 0.25, resize)
	c.Motion(0.5, 0.25, resize)
	require.Equal(t, 2, resize.totalW)
	require.Equal(t, 1, resize.totalH)
	require.Equal(t, EdgeRight|EdgeBottom, resize.edges)
}

func TestCursorResizeScenarioB(t *testing.T) {
	focus := &fakeFocus{}
	c := New(focus)
	c.EnterResize("w1", EdgeRight|EdgeBottom, 400, 300)

	resize := &fakeResize{}
	c.Motion(37.4, 18.7, resize)

	require.Equal(t, 37, resize.totalW)
	require.Equal(t, 18, resize.totalH)
}

func TestPassthroughRoutesMotionToHitSurface(t *testing.T) {
	surface := &fakeSurface{}
	focus := &fakeFocus{under: surface}
	c := New(focus)

	c.Motion(10, 20, nil)

	require.Equal(t, float32(10), c.X)
	require.Equal(t, float32(20), c.Y)
	require.Len(t, surface.motions, 1)
	require.Same(t, surface, focus.focused)
}

func TestPassthroughClearsFocusOverEmptyDesktop(t *testing.T) {
	focus := &fakeFocus{}
	c := New(focus)
	focus.focused = &fakeSurface{}

	c.Motion(5, 5, nil)

	require.Nil(t, focus.focused)
	require.Equal(t, 1, focus.cleared)
}

func TestDownModeTranslatesSurfaceLocalCoordinates(t *testing.T) {
	surface := &fakeSurface{}
	focus := &fakeFocus{focused: surface}
	c := New(focus)

	c.EnterDown(50, 60)
	c.Motion(5, -3, nil)

	require.Len(t, surface.motions, 1)
	require.Equal(t, float32(55), surface.motions[0][0])
	require.Equal(t, float32(57), surface.motions[0][1])
}

func TestIgnoreModeForwardsNoEvents(t *testing.T) {
	surface := &fakeSurface{}
	focus := &fakeFocus{focused: surface}
	c := New(focus)

	c.EnterIgnore()
	c.Motion(5, 5, nil)

	require.Empty(t, surface.motions)
}
