package bind

import (
	"riverwm.dev/river/internal/river/rlog"
)

var log = rlog.For("bind")

// Session is the narrow seam into the VT-switch backend the built-in
// mappings dispatch into ahead of user bindings (spec §4.4 "Built-in
// mappings").
type Session interface {
	SwitchVT(n int) error
}

// CursorController is the subset of cursor.Cursor the dispatcher drives:
// entering ignore on a binding match or unbound press, and exiting it
// once the pressed-button table empties.
type CursorController interface {
	EnterIgnore()
	ExitIgnore(sustained bool)
	EnterDown(sx, sy float32)
	ExitDown()
}

// FocusClearer clears pointer focus when a binding takes over a press.
type FocusClearer interface {
	ClearFocus()
}

// Events is where the dispatcher enqueues binding press/release
// notifications for the wm client (spec §4.4 "enqueue a pressed event to
// the wm client").
type Events interface {
	BindingPressed(id string)
	BindingReleased(id string)
}

// vtLookup maps a keysym to a VT number (a reverse lookup over the xkb
// package's SwitchVTKeysym); it and the Session VT-switch call are
// injected rather than imported directly so bind stays free of the cgo
// dependency.
type vtLookup func(sym Keysym) (n int, ok bool)

// Dispatcher implements the Binding Dispatcher (spec §4.4): matching
// pointer buttons and keysyms against enabled bindings, tracking eaten
// keycodes per keyboard, and suppressing duplicate press delivery across
// devices.
type Dispatcher struct {
	pointerBindings []*PointerBinding
	keyBindings     []*KeyBinding

	// pressedButtons is the global pointer pressed-button table (spec
	// §4.4 "global pressed table"), keyed by button code.
	pressedButtons map[ButtonCode]*PointerBinding

	// eaten is per-keyboard: keycodes this keyboard has dispatched to a
	// binding and must not forward to the focused surface on release.
	eaten map[string]map[Keycode]*KeyBinding

	cursor  CursorController
	focus   FocusClearer
	events  Events
	session Session
	vtSym   vtLookup
}

// New creates an empty Dispatcher. vtSym resolves a keysym to a VT
// number (typically xkb.SwitchVTKeysym run in reverse); pass nil to
// disable VT-switch dispatch entirely.
func New(cursor CursorController, focus FocusClearer, events Events, session Session, vtSym vtLookup) *Dispatcher {
	return &Dispatcher{
		pressedButtons: make(map[ButtonCode]*PointerBinding),
		eaten:          make(map[string]map[Keycode]*KeyBinding),
		cursor:         cursor,
		focus:          focus,
		events:         events,
		session:        session,
		vtSym:          vtSym,
	}
}

// AddPointerBinding registers a pointer binding.
func (d *Dispatcher) AddPointerBinding(b *PointerBinding) { d.pointerBindings = append(d.pointerBindings, b) }

// AddKeyBinding registers a key binding.
func (d *Dispatcher) AddKeyBinding(b *KeyBinding) { d.keyBindings = append(d.keyBindings, b) }

// PointerPress handles a button press (spec §4.4 "Pointer buttons").
// hasSurface reports whether a surface is under the cursor; surfaceSX/
// surfaceSY are its local coordinates, used only if the press goes to
// `down` mode. A press over empty desktop that no binding claims enters
// Ignore rather than Down (spec §4.5 "passthrough -> ignore: pointer
// press with no surface under cursor, OR binding matched").
func (d *Dispatcher) PointerPress(button ButtonCode, mods Modifiers, hasSurface bool, surfaceSX, surfaceSY float32) {
	for _, b := range d.pointerBindings {
		if !b.matches(button, mods) {
			continue
		}
		d.pressedButtons[button] = b
		b.sentPressed = true
		d.events.BindingPressed(b.ID.String())
		d.focus.ClearFocus()
		d.cursor.EnterIgnore()
		return
	}
	if !hasSurface {
		d.focus.ClearFocus()
		d.cursor.EnterIgnore()
		return
	}
	// No binding matched, surface under cursor: forward to it via down.
	d.cursor.EnterDown(surfaceSX, surfaceSY)
}

// PointerRelease handles a button release.
func (d *Dispatcher) PointerRelease(button ButtonCode) {
	b, ok := d.pressedButtons[button]
	if !ok {
		d.cursor.ExitDown()
		d.cursor.ExitIgnore(len(d.pressedButtons) > 0)
		return
	}
	delete(d.pressedButtons, button)
	b.sentPressed = false
	d.events.BindingReleased(b.ID.String())
	d.cursor.ExitIgnore(len(d.pressedButtons) > 0)
}

// KeyPress handles a key press (spec §4.4 "Keyboard"). kc is the keycode
// the per-keyboard eaten set is keyed by, used as given; baseSym is the
// base-layer keysym ignoring active modifiers (xkb.State.BaseKeysym);
// effectiveSym is the effective keysym (xkb.State.EffectiveKeysym). Both
// keysym passes compare mods, as given, against a binding's modifiers;
// consumed modifiers are not removed for the effectiveSym pass. It
// reports whether the key was eaten (bound or consumed by a built-in
// mapping), so the caller knows whether to still forward it to the
// focused surface.
func (d *Dispatcher) KeyPress(keyboardID string, kc Keycode, mods Modifiers, baseSym, effectiveSym Keysym, effectiveLayout int) (eaten bool) {
	if d.vtSym != nil && d.session != nil {
		if n, ok := d.vtSym(effectiveSym); ok {
			if err := d.session.SwitchVT(n); err != nil {
				log.Error("vt switch failed", "vt", n, "err", err)
			}
			d.markEaten(keyboardID, kc, nil)
			return true
		}
	}

	if b := d.matchKey(baseSym, mods, effectiveLayout, false); b != nil {
		return d.dispatchKey(keyboardID, kc, b)
	}
	if b := d.matchKey(effectiveSym, mods, effectiveLayout, true); b != nil {
		return d.dispatchKey(keyboardID, kc, b)
	}
	return false
}

// matchKey iterates XkbBindings once (no_translate pass when translate is
// false, translate pass otherwise); translate only labels the pass, the
// match itself is the same keysym+modifier comparison in both. A
// LayoutOverride pins the binding to
// a specific layout; it only matches while the keyboard is on that
// layout.
func (d *Dispatcher) matchKey(sym Keysym, mods Modifiers, activeLayout int, translate bool) *KeyBinding {
	for _, b := range d.keyBindings {
		if override := b.LayoutOverride.Committed(); override != -1 && override != activeLayout {
			continue
		}
		if b.matches(sym, mods) {
			return b
		}
	}
	return nil
}

func (d *Dispatcher) dispatchKey(keyboardID string, kc Keycode, b *KeyBinding) bool {
	d.markEaten(keyboardID, kc, b)
	if !b.sentPressed {
		b.sentPressed = true
		d.events.BindingPressed(b.ID.String())
	}
	return true
}

func (d *Dispatcher) markEaten(keyboardID string, kc Keycode, b *KeyBinding) {
	m, ok := d.eaten[keyboardID]
	if !ok {
		m = make(map[Keycode]*KeyBinding)
		d.eaten[keyboardID] = m
	}
	m[kc] = b
}

// KeyRelease handles a key release, reporting whether the key was eaten
// on press (and so must not be forwarded to the focused surface).
func (d *Dispatcher) KeyRelease(keyboardID string, kc Keycode) (eaten bool) {
	m, ok := d.eaten[keyboardID]
	if !ok {
		return false
	}
	b, ok := m[kc]
	if !ok {
		return false
	}
	delete(m, kc)
	if b == nil {
		// A built-in mapping (e.g. VT switch) ate this key; nothing more
		// to release.
		return true
	}
	if b.sentPressed {
		b.sentPressed = false
		d.events.BindingReleased(b.ID.String())
	}
	return true
}
