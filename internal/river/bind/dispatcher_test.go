package bind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCursor struct {
	mode          string
	downSX, downSY float32
	ignoreSustained []bool
}

func (c *fakeCursor) EnterIgnore()               { c.mode = "ignore" }
func (c *fakeCursor) ExitIgnore(sustained bool)  { c.ignoreSustained = append(c.ignoreSustained, sustained); if !sustained { c.mode = "passthrough" } }
func (c *fakeCursor) EnterDown(sx, sy float32)   { c.mode = "down"; c.downSX, c.downSY = sx, sy }
func (c *fakeCursor) ExitDown()                  { c.mode = "passthrough" }

type fakeFocus struct{ cleared int }

func (f *fakeFocus) ClearFocus() { f.cleared++ }

type fakeEvents struct {
	pressed  []string
	released []string
}

func (e *fakeEvents) BindingPressed(id string)  { e.pressed = append(e.pressed, id) }
func (e *fakeEvents) BindingReleased(id string) { e.released = append(e.released, id) }

type fakeSession struct {
	switched []int
	err      error
}

func (s *fakeSession) SwitchVT(n int) error {
	s.switched = append(s.switched, n)
	return s.err
}

func TestPointerPressMatchBindingEntersIgnoreAndClearsFocus(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	b := NewPointerBinding(1, 0)
	d.AddPointerBinding(b)

	d.PointerPress(1, 0, true, 0, 0)

	require.Equal(t, "ignore", cursor.mode)
	require.Equal(t, 1, focus.cleared)
	require.Equal(t, []string{b.ID.String()}, events.pressed)
	require.True(t, b.sentPressed)
}

func TestPointerPressNoMatchEntersDownWithSurfaceCoords(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	d.PointerPress(2, 0, true, 12, 34)

	require.Equal(t, "down", cursor.mode)
	require.Equal(t, float32(12), cursor.downSX)
	require.Equal(t, float32(34), cursor.downSY)
	require.Empty(t, events.pressed)
}

// Scenario E: a pointer press over empty desktop with no binding matched
// enters ignore, not down (spec §4.5 "pointer press with no surface under
// cursor").
func TestPointerPressNoMatchNoSurfaceEntersIgnore(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	d.PointerPress(2, 0, false, 0, 0)

	require.Equal(t, "ignore", cursor.mode)
	require.Equal(t, 1, focus.cleared)
	require.Empty(t, events.pressed)
}

// Property 6 composed with pointer release: releasing the last pressed
// button that triggered a binding exits ignore back to passthrough.
func TestPointerReleaseExitsIgnoreWhenTableEmpties(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	b := NewPointerBinding(1, 0)
	d.AddPointerBinding(b)
	d.PointerPress(1, 0, true, 0, 0)
	d.PointerRelease(1)

	require.Equal(t, []string{b.ID.String()}, events.released)
	require.False(t, b.sentPressed)
	require.Equal(t, "passthrough", cursor.mode)
}

// Property 4: binding eat-symmetry — a keycode added to the eaten set on
// press is removed exactly once on the matching release, and an
// unrelated release (different keycode) is not reported eaten.
func TestKeyEatSymmetry(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	b := NewKeyBinding(Keysym('n'), ModSuper)
	d.AddKeyBinding(b)

	eaten := d.KeyPress("kbd0", 50, ModSuper, Keysym('n'), Keysym('n'), 0)
	require.True(t, eaten)

	releasedEaten := d.KeyRelease("kbd0", 50)
	require.True(t, releasedEaten)

	// The same keycode released again (stale/duplicate release) must not
	// be reported eaten a second time.
	require.False(t, d.KeyRelease("kbd0", 50))

	// A keycode that was never pressed is never eaten.
	require.False(t, d.KeyRelease("kbd0", 99))
}

// Scenario D: Super+N press is dispatched to the wm and the key is
// eaten; release is symmetric.
func TestScenarioDBindingFiresPressEaten(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	b := NewKeyBinding(Keysym('n'), ModSuper)
	d.AddKeyBinding(b)

	eaten := d.KeyPress("kbd0", 50, ModSuper, Keysym('n'), Keysym('n'), 0)
	require.True(t, eaten)
	require.Equal(t, []string{b.ID.String()}, events.pressed)

	require.True(t, d.KeyRelease("kbd0", 50))
	require.Equal(t, []string{b.ID.String()}, events.released)
}

// Property 5: the same binding firing on two keyboards while held on the
// first suppresses the duplicate pressed emission; the release from
// whichever keyboard lets go first (here, the original holder) emits
// exactly one released.
func TestDuplicateBindingSuppressionAcrossKeyboards(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	b := NewKeyBinding(Keysym('n'), ModSuper)
	d.AddKeyBinding(b)

	require.True(t, d.KeyPress("kbd0", 50, ModSuper, Keysym('n'), Keysym('n'), 0))
	require.True(t, d.KeyPress("kbd1", 50, ModSuper, Keysym('n'), Keysym('n'), 0))
	require.Equal(t, []string{b.ID.String()}, events.pressed, "second device's press must not re-emit pressed")

	require.True(t, d.KeyRelease("kbd0", 50))
	require.Equal(t, []string{b.ID.String()}, events.released)

	// kbd1's independent eaten-set release for the same keycode is still
	// reported eaten (it was eaten on kbd1 too), but does not re-emit
	// released since the binding was already released.
	require.True(t, d.KeyRelease("kbd1", 50))
	require.Equal(t, []string{b.ID.String()}, events.released)
}

// Scenario F: VT switch is a built-in mapping, always dispatched ahead of
// user bindings, and the key is eaten without any binding event reaching
// the wm.
func TestScenarioFVTSwitchBuiltinMapping(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	session := &fakeSession{}
	vtSym := func(sym Keysym) (int, bool) {
		if sym == Keysym(0x1008FE02) {
			return 2, true
		}
		return 0, false
	}
	d := New(cursor, focus, events, session, vtSym)

	eaten := d.KeyPress("kbd0", 60, 0, Keysym(0x1008FE02), Keysym(0x1008FE02), 0)
	require.True(t, eaten)
	require.Equal(t, []int{2}, session.switched)
	require.Empty(t, events.pressed)

	require.True(t, d.KeyRelease("kbd0", 60))
}

func TestLayoutOverridePinsBindingToSpecificLayout(t *testing.T) {
	cursor := &fakeCursor{}
	focus := &fakeFocus{}
	events := &fakeEvents{}
	d := New(cursor, focus, events, nil, nil)

	b := NewKeyBinding(Keysym('q'), 0)
	b.LayoutOverride.Set(1)
	b.LayoutOverride.Commit()
	d.AddKeyBinding(b)

	// Wrong active layout: no match.
	require.False(t, d.KeyPress("kbd0", 10, 0, Keysym('q'), Keysym('q'), 0))
	// Correct active layout: matches.
	require.True(t, d.KeyPress("kbd0", 10, 0, Keysym('q'), Keysym('q'), 1))
}
