package main

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// modifiers is a set of held modifier keys.
type modifiers uint8

const (
	modCtrl modifiers = 1 << iota
	modAlt
	modShift
)

// String writes the set in canonical order, each followed by "+".
func (m modifiers) String() string {
	var b strings.Builder
	if m&modCtrl != 0 {
		b.WriteString("Ctrl+")
	}
	if m&modAlt != 0 {
		b.WriteString("Alt+")
	}
	if m&modShift != 0 {
		b.WriteString("Shift+")
	}
	return b.String()
}

// heldModifiers reads the modifier keys for this frame.
func heldModifiers() modifiers {
	var m modifiers
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= modCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= modAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= modShift
	}
	return m
}

// combo is a binding string split into its modifiers and the input name,
// e.g. "shift+Ctrl+KeyA" or "Alt+WheelUp".
type combo struct {
	mods modifiers
	name string
}

// String returns the canonical spelling, so reordered modifiers compare equal.
func (c combo) String() string {
	return c.mods.String() + c.name
}

// parseCombo splits s at "+". Modifier names are case-insensitive; the input
// name is checked by the caller.
func parseCombo(s string) (combo, error) {
	parts := strings.Split(s, "+")
	c := combo{name: parts[len(parts)-1]}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "ctrl":
			c.mods |= modCtrl
		case "alt":
			c.mods |= modAlt
		case "shift":
			c.mods |= modShift
		default:
			return combo{}, fmt.Errorf("unknown modifier: %s", p)
		}
	}
	if c.name == "" {
		return combo{}, fmt.Errorf("missing input after modifiers")
	}
	return c, nil
}
