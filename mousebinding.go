package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"foxview/internal/persist"
)

var mouseButtons = map[string]ebiten.MouseButton{
	"LeftClick":   ebiten.MouseButtonLeft,
	"RightClick":  ebiten.MouseButtonRight,
	"MiddleClick": ebiten.MouseButtonMiddle,
	"Back":        ebiten.MouseButton3,
	"Forward":     ebiten.MouseButton4,
}

// mouseKind is what a mouse binding listens for.
type mouseKind int

const (
	mouseClick mouseKind = iota
	mouseDoubleClick
	mouseWheel
)

// mouseBinding is one parsed mouse binding. For wheel bindings dirX or dirY
// holds the sign of the expected movement.
type mouseBinding struct {
	kind       mouseKind
	button     ebiten.MouseButton
	dirX, dirY float64
	mods       modifiers
}

var wheelDirections = map[string][2]float64{
	"WheelUp":    {0, 1},
	"WheelDown":  {0, -1},
	"WheelLeft":  {-1, 0},
	"WheelRight": {1, 0},
}

// parseMouseBinding parses "Shift+LeftClick", "DoubleLeftClick" or "WheelUp".
func parseMouseBinding(s string) (mouseBinding, combo, error) {
	if s == "" {
		return mouseBinding{}, combo{}, fmt.Errorf("empty mouse string")
	}
	c, err := parseCombo(s)
	if err != nil {
		return mouseBinding{}, combo{}, err
	}

	b := mouseBinding{mods: c.mods}
	if dir, ok := wheelDirections[c.name]; ok {
		b.kind = mouseWheel
		b.dirX, b.dirY = dir[0], dir[1]
		return b, c, nil
	}

	name := c.name
	if rest, ok := strings.CutPrefix(name, "Double"); ok {
		b.kind = mouseDoubleClick
		name = rest
	}
	button, ok := mouseButtons[name]
	if !ok {
		return mouseBinding{}, combo{}, fmt.Errorf("unknown mouse button: %s", c.name)
	}
	b.button = button
	return b, c, nil
}

// clickTracker counts presses of one button within the double-click window.
type clickTracker struct {
	last   time.Time
	button ebiten.MouseButton
	count  int
}

// press records a press and reports whether it completes a double click.
func (t *clickTracker) press(button ebiten.MouseButton, now time.Time, window time.Duration) bool {
	if t.count > 0 && t.button == button && now.Sub(t.last) <= window {
		t.count = 0
		t.last = now
		return true
	}
	t.count = 1
	t.button = button
	t.last = now
	return false
}

// dragTracker follows a left-button drag from press to release.
type dragTracker struct {
	pressed      bool
	dragging     bool
	startX       int
	startY       int
	lastX, lastY int
}

// MousebindingManager turns clicks, double clicks and wheel movement into
// actions, and handles drag panning.
type MousebindingManager struct {
	bindings map[string][]mouseBinding
	settings persist.MouseSettings
	clicks   clickTracker
	drag     dragTracker

	// Double clicks are decided once per frame, before any action is checked.
	frameDoubles map[ebiten.MouseButton]bool
	frameSeen    map[ebiten.MouseButton]bool
}

// NewMousebindingManager parses mousebindings once, skipping invalid entries.
func NewMousebindingManager(mousebindings map[string][]string, settings persist.MouseSettings) *MousebindingManager {
	mm := &MousebindingManager{
		bindings:     make(map[string][]mouseBinding, len(mousebindings)),
		settings:     settings,
		frameDoubles: make(map[ebiten.MouseButton]bool),
		frameSeen:    make(map[ebiten.MouseButton]bool),
	}
	for action, inputs := range mousebindings {
		for _, s := range inputs {
			if b, _, err := parseMouseBinding(s); err == nil {
				mm.bindings[action] = append(mm.bindings[action], b)
			}
		}
	}
	return mm
}

// beginFrame resets the per-frame double-click decisions.
func (mm *MousebindingManager) beginFrame() {
	clear(mm.frameDoubles)
	clear(mm.frameSeen)
}

// doubleClicked reports whether button completed a double click this frame.
// The tracker sees each press once no matter how many bindings ask.
func (mm *MousebindingManager) doubleClicked(button ebiten.MouseButton) bool {
	if !inpututil.IsMouseButtonJustPressed(button) {
		return false
	}
	if !mm.frameSeen[button] {
		mm.frameSeen[button] = true
		window := time.Duration(mm.settings.DoubleClickTime) * time.Millisecond
		mm.frameDoubles[button] = mm.clicks.press(button, time.Now(), window)
	}
	return mm.frameDoubles[button]
}

// wheelDelta returns this frame's wheel movement after sensitivity and inversion.
func (mm *MousebindingManager) wheelDelta() (float64, float64) {
	wheelX, wheelY := ebiten.Wheel()
	if mm.settings.WheelInverted {
		wheelY = -wheelY
	}
	return wheelX * mm.settings.WheelSensitivity, wheelY * mm.settings.WheelSensitivity
}

// triggered checks b against this frame's input. For wheel bindings the
// returned amount is the movement along the bound axis.
func (mm *MousebindingManager) triggered(b mouseBinding, held modifiers) (float64, bool) {
	if b.mods != held {
		return 0, false
	}
	switch b.kind {
	case mouseWheel:
		wheelX, wheelY := mm.wheelDelta()
		if b.dirX != 0 {
			return wheelX, wheelX*b.dirX > 0
		}
		return wheelY, wheelY*b.dirY > 0
	case mouseDoubleClick:
		return 0, mm.doubleClicked(b.button)
	default:
		return 0, inpututil.IsMouseButtonJustPressed(b.button)
	}
}

// CheckAction reports whether a mouse binding of action fired this frame.
func (mm *MousebindingManager) CheckAction(action string) (Trigger, bool) {
	if !mm.settings.EnableMouse {
		return Trigger{}, false
	}
	held := heldModifiers()
	for _, b := range mm.bindings[action] {
		if wheel, ok := mm.triggered(b, held); ok {
			return Trigger{Mouse: true, Wheel: wheel}, true
		}
	}
	return Trigger{}, false
}

// ExecuteAction runs action when one of its mouse bindings fired.
func (mm *MousebindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	trigger, ok := mm.CheckAction(action)
	if !ok {
		return false
	}
	return globalActionExecutor.ExecuteAction(action, inputActions, inputState, trigger)
}

// HandleDrag pans the view while the left button is dragged past the
// configured threshold. It returns true while a drag is in progress.
func (mm *MousebindingManager) HandleDrag(inputActions InputActions, inputState InputState) bool {
	if !mm.settings.EnableMouse || !mm.settings.EnableDragPan || !inputState.HasImage() {
		mm.drag = dragTracker{}
		return false
	}

	x, y := ebiten.CursorPosition()
	d := &mm.drag

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		*d = dragTracker{pressed: true, startX: x, startY: y, lastX: x, lastY: y}
		return false
	case !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		wasDragging := d.dragging
		*d = dragTracker{}
		return wasDragging
	case !d.pressed:
		return false
	}

	if !d.dragging {
		dx, dy := x-d.startX, y-d.startY
		threshold := mm.settings.DragThreshold
		if dx*dx+dy*dy < threshold*threshold {
			return false
		}
		d.dragging = true
	}

	if x != d.lastX || y != d.lastY {
		sens := mm.settings.DragSensitivity
		inputActions.PanByDelta(float64(x-d.lastX)*sens, float64(y-d.lastY)*sens)
		d.lastX, d.lastY = x, y
	}
	return true
}
