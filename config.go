package main

import (
	"fmt"
	"log/slog"

	"foxview/internal/persist"
)

// Bindings is the resolved set of key and mouse bindings used by the window.
type Bindings struct {
	Keys     map[string][]string
	Mouse    map[string][]string
	Warnings []string
}

// resolveBindings merges the bindings stored in st onto the defaults. Actions
// the file does not mention keep their default bindings; unknown actions are
// dropped; an invalid set falls back to the defaults with a warning.
func resolveBindings(st persist.State) Bindings {
	b := Bindings{
		Keys:  mergeBindings(GetDefaultKeybindings(), st.Keybindings),
		Mouse: mergeBindings(GetDefaultMousebindings(), st.Mousebindings),
	}

	if err := validateKeybindings(b.Keys); err != nil {
		slog.Warn("Invalid keybindings detected, using defaults", "err", err)
		b.Keys = GetDefaultKeybindings()
		b.Warnings = append(b.Warnings, fmt.Sprintf("Keybinding errors: %v", err))
	}
	if err := validateMousebindings(b.Mouse); err != nil {
		slog.Warn("Invalid mouse bindings detected, using defaults", "err", err)
		b.Mouse = GetDefaultMousebindings()
		b.Warnings = append(b.Warnings, fmt.Sprintf("Mouse binding errors: %v", err))
	}
	return b
}

func mergeBindings(defaults, configured map[string][]string) map[string][]string {
	for action, keys := range configured {
		if _, known := defaults[action]; !known {
			slog.Warn("Ignoring binding for unknown action", "action", action)
			continue
		}
		defaults[action] = append([]string(nil), keys...)
	}
	return defaults
}

// validateKeybindings checks every key name and reports the first conflict.
// Bindings that differ only in modifier order or case are the same binding.
func validateKeybindings(keybindings map[string][]string) error {
	keyToAction := make(map[string]string)
	for action, keys := range keybindings {
		for _, keyStr := range keys {
			_, c, err := parseKeyBinding(keyStr)
			if err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %w", keyStr, action, err)
			}
			canonical := c.String()
			if existing, exists := keyToAction[canonical]; exists && existing != action {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existing, action)
			}
			keyToAction[canonical] = action
		}
	}
	return nil
}

// validateMousebindings checks mouse binding names and conflicts
func validateMousebindings(mousebindings map[string][]string) error {
	mouseToAction := make(map[string]string)
	for action, inputs := range mousebindings {
		for _, mouseStr := range inputs {
			_, c, err := parseMouseBinding(mouseStr)
			if err != nil {
				return fmt.Errorf("invalid mouse action '%s' for action '%s': %w", mouseStr, action, err)
			}
			canonical := c.String()
			if existing, exists := mouseToAction[canonical]; exists && existing != action {
				return fmt.Errorf("mouse conflict: '%s' is bound to both '%s' and '%s'", mouseStr, existing, action)
			}
			mouseToAction[canonical] = action
		}
	}
	return nil
}

// configStatus folds binding warnings into the state file's load result so
// the help overlay reports both.
func configStatus(loaded persist.LoadResult, bindings Bindings) persist.LoadResult {
	status := loaded
	status.Warnings = append(append([]string(nil), loaded.Warnings...), bindings.Warnings...)
	if len(bindings.Warnings) > 0 && status.Status != persist.StatusError {
		status.Status = persist.StatusWarning
	}
	return status
}
