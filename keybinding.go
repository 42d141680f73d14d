package main

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keyNames maps binding names to ebiten keys. Names follow ebiten's own key
// names, with letters and digits spelled "KeyA" and "Key0".
var keyNames = buildKeyNames()

func buildKeyNames() map[string]ebiten.Key {
	names := make(map[string]ebiten.Key)
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		name := k.String()
		switch {
		case len(name) == 1:
			name = "Key" + name
		case strings.HasPrefix(name, "Digit"):
			name = "Key" + strings.TrimPrefix(name, "Digit")
		}
		names[name] = k
	}
	return names
}

// keyBinding is a key with the exact modifiers that must be held.
type keyBinding struct {
	key  ebiten.Key
	mods modifiers
}

// parseKeyBinding parses a binding such as "Shift+KeyB" or "F5".
func parseKeyBinding(s string) (keyBinding, combo, error) {
	if s == "" {
		return keyBinding{}, combo{}, fmt.Errorf("empty key string")
	}
	c, err := parseCombo(s)
	if err != nil {
		return keyBinding{}, combo{}, err
	}
	key, ok := keyNames[c.name]
	if !ok {
		return keyBinding{}, combo{}, fmt.Errorf("unknown key: %s", c.name)
	}
	return keyBinding{key: key, mods: c.mods}, c, nil
}

// KeybindingManager turns key presses into actions.
type KeybindingManager struct {
	bindings map[string][]keyBinding
}

// NewKeybindingManager parses keybindings once. Invalid entries are skipped;
// they have already been reported by validation.
func NewKeybindingManager(keybindings map[string][]string) *KeybindingManager {
	km := &KeybindingManager{bindings: make(map[string][]keyBinding, len(keybindings))}
	for action, keys := range keybindings {
		for _, s := range keys {
			if b, _, err := parseKeyBinding(s); err == nil {
				km.bindings[action] = append(km.bindings[action], b)
			}
		}
	}
	return km
}

// CheckAction reports whether a binding of action was pressed this frame.
// Modifiers must match exactly, so "ArrowLeft" does not fire with Shift held.
func (km *KeybindingManager) CheckAction(action string) bool {
	bindings := km.bindings[action]
	if len(bindings) == 0 {
		return false
	}
	held := heldModifiers()
	for _, b := range bindings {
		if b.mods == held && inpututil.IsKeyJustPressed(b.key) {
			return true
		}
	}
	return false
}

// ExecuteAction runs action when one of its keys was pressed.
func (km *KeybindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if !km.CheckAction(action) {
		return false
	}
	return globalActionExecutor.ExecuteAction(action, inputActions, inputState, Trigger{})
}
