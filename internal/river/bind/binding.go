// Package bind implements the Binding Dispatcher (spec §4.4, §8 properties
// 4-5): matching pointer buttons and XKB keysyms against enabled bindings,
// eating keycodes so a bound key never reaches the focused surface twice,
// and suppressing duplicate press/release delivery to the wm client when
// the same binding fires on more than one device.
package bind

import (
	"riverwm.dev/river/internal/river/idset"
	"riverwm.dev/river/internal/river/wm"
)

// Modifiers mirrors xkb.Modifiers without importing the cgo package, so
// bind stays buildable (and testable) without libxkbcommon present.
type Modifiers uint32

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// ButtonCode is a pointer button code (e.g. BTN_LEFT).
type ButtonCode uint32

// Keysym is an XKB keysym value.
type Keysym uint32

// Keycode is an XKB keycode.
type Keycode uint32

// Binding is the common shape of spec §3 "Binding": a trigger plus
// modifiers, an enabled flag double-buffered the way every wm-owned knob
// is (spec §9), and the duplicate-press tracking bit.
type Binding struct {
	ID      idset.ID
	Enabled wm.DoubleBuffer[bool]

	// sentPressed is true while this binding has an outstanding pressed
	// the wm hasn't yet been told is released — the de-dup mechanism of
	// spec §8.5.
	sentPressed bool
}

func newBinding() Binding {
	return Binding{ID: idset.NewID(), Enabled: wm.NewDoubleBuffer(true)}
}

// PointerBinding matches a button code plus an exact modifier set.
type PointerBinding struct {
	Binding
	Button    ButtonCode
	Modifiers Modifiers
}

// NewPointerBinding creates an enabled-by-default pointer binding.
func NewPointerBinding(button ButtonCode, mods Modifiers) *PointerBinding {
	return &PointerBinding{Binding: newBinding(), Button: button, Modifiers: mods}
}

func (b *PointerBinding) matches(button ButtonCode, mods Modifiers) bool {
	return b.Enabled.Committed() && b.Button == button && b.Modifiers == mods
}

// KeyBinding matches a keysym plus an exact modifier set, with an
// optional layout-pinning override (spec §4.4 "Layout-pinning").
type KeyBinding struct {
	Binding
	Keysym         Keysym
	Modifiers      Modifiers
	LayoutOverride wm.DoubleBuffer[int] // -1 means "use the active layout"
}

// NewKeyBinding creates an enabled-by-default key binding with no layout
// override.
func NewKeyBinding(sym Keysym, mods Modifiers) *KeyBinding {
	kb := &KeyBinding{Binding: newBinding(), Keysym: sym, Modifiers: mods}
	kb.LayoutOverride = wm.NewDoubleBuffer(-1)
	return kb
}

func (b *KeyBinding) matches(sym Keysym, mods Modifiers) bool {
	return b.Enabled.Committed() && b.Keysym == sym && b.Modifiers == mods
}
