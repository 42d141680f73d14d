package main

import (
	"io/fs"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"foxview/internal/shell"
)

// InputHandler handles keyboard, mouse and drag-and-drop input
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState InputState, keybindingManager *KeybindingManager, mousebindingManager *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   keybindingManager,
		mousebindingManager: mousebindingManager,
	}
}

// HandleInput processes all input for the current frame
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	h.mousebindingManager.beginFrame()
	inputProcessed := h.handleDroppedFiles()

	if h.inputState.ShellState() == shell.Error {
		return h.handleErrorKeys() || inputProcessed
	}

	// Drag panning owns the left button until it is released.
	if h.mousebindingManager.HandleDrag(h.inputActions, h.inputState) {
		return true
	}

	for _, def := range actionDefinitions {
		if h.keybindingManager.ExecuteAction(def.Name, h.inputActions, h.inputState) {
			inputProcessed = true
			continue
		}
		if h.mousebindingManager.ExecuteAction(def.Name, h.inputActions, h.inputState) {
			inputProcessed = true
		}
	}

	return inputProcessed
}

// handleErrorKeys dismisses the error panel. Only the exit and open
// bindings stay active; a file picked from the panel replaces the error.
func (h *InputHandler) handleErrorKeys() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) ||
		inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.inputActions.DismissError()
		return true
	}
	for _, action := range []string{"exit", "open"} {
		if h.keybindingManager.ExecuteAction(action, h.inputActions, h.inputState) ||
			h.mousebindingManager.ExecuteAction(action, h.inputActions, h.inputState) {
			return true
		}
	}
	return false
}

// handleDroppedFiles opens the first item dropped on the window.
func (h *InputHandler) handleDroppedFiles() bool {
	dropped := ebiten.DroppedFiles()
	if dropped == nil {
		return false
	}

	path, err := firstDroppedPath(dropped)
	if err != nil {
		slog.Warn("Cannot open dropped item", "err", err)
		h.inputActions.ShowOverlayMessage("Cannot open dropped item")
		return true
	}
	if path == "" {
		return false
	}

	debugLog("Dropped: %s", path)
	if h.inputState.ShellState() == shell.Error {
		h.inputActions.DismissError()
	}
	h.inputActions.RequestOpen(path)
	return true
}

// namedFile is implemented by files that know their path on disk.
type namedFile interface {
	Name() string
}

// firstDroppedPath resolves the first dropped entry to a path on disk.
func firstDroppedPath(dropped fs.FS) (string, error) {
	entries, err := fs.ReadDir(dropped, ".")
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	f, err := dropped.Open(entries[0].Name())
	if err != nil {
		return "", err
	}
	defer f.Close()

	if nf, ok := f.(namedFile); ok {
		return nf.Name(), nil
	}
	return "", &fs.PathError{Op: "resolve", Path: entries[0].Name(), Err: fs.ErrInvalid}
}
