package main

// ActionDefinition is a named action with its default bindings and the
// handler that performs it.
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string

	// Global actions work before any image is shown.
	Global bool
	Run    func(InputActions, Trigger)
}

// call adapts a method expression that ignores the trigger.
func call(f func(InputActions)) func(InputActions, Trigger) {
	return func(ia InputActions, _ Trigger) { f(ia) }
}

// zoomBy zooms toward the cursor for wheel input and by one step otherwise.
func zoomBy(sign float64, step func(InputActions)) func(InputActions, Trigger) {
	return func(ia InputActions, t Trigger) {
		if t.Mouse && t.Wheel != 0 {
			ia.ZoomAtCursor(sign * wheelSteps(t.Wheel))
			return
		}
		step(ia)
	}
}

// actionDefinitions lists every action in help order.
var actionDefinitions = []ActionDefinition{
	{Name: "exit", Keys: []string{"Escape", "Ctrl+KeyQ"}, Description: "Quit application",
		Global: true, Run: call(InputActions.Exit)},
	{Name: "help", Keys: []string{"Shift+Slash", "F1"}, Description: "Show/hide help",
		Global: true, Run: call(InputActions.ToggleHelp)},
	{Name: "open", Keys: []string{"Ctrl+KeyO"}, MouseActions: []string{"RightClick"},
		Description: "Open an image or archive", Global: true, Run: call(InputActions.OpenFile)},
	{Name: "info", Keys: []string{"KeyI"}, Description: "Show/hide info bar",
		Global: true, Run: call(InputActions.ToggleInfo)},
	{Name: "next", Keys: []string{"KeyD", "ArrowRight", "Space"}, MouseActions: []string{"Forward"},
		Description: "Next image", Run: call(InputActions.NavigateNext)},
	{Name: "previous", Keys: []string{"KeyA", "ArrowLeft", "Backspace"}, MouseActions: []string{"Back"},
		Description: "Previous image", Run: call(InputActions.NavigatePrevious)},
	{Name: "jump_first", Keys: []string{"Home"}, Description: "Jump to first image",
		Run: call(InputActions.JumpFirst)},
	{Name: "jump_last", Keys: []string{"End"}, Description: "Jump to last image",
		Run: call(InputActions.JumpLast)},
	{Name: "reload", Keys: []string{"F5", "KeyR"}, Description: "Rescan the folder and reload the image",
		Run: call(InputActions.Reload)},
	{Name: "fullscreen", Keys: []string{"F11"}, MouseActions: []string{"DoubleLeftClick"},
		Description: "Toggle fullscreen", Global: true, Run: call(InputActions.ToggleFullscreen)},
	{Name: "rotate_left", Keys: []string{"KeyQ"}, Description: "Rotate left 90 degrees",
		Run: call(InputActions.RotateLeft)},
	{Name: "rotate_right", Keys: []string{"KeyE"}, Description: "Rotate right 90 degrees",
		Run: call(InputActions.RotateRight)},
	{Name: "flip_horizontal", Keys: []string{"KeyH"}, Description: "Mirror horizontally",
		Run: call(InputActions.FlipHorizontal)},
	{Name: "flip_vertical", Keys: []string{"KeyV"}, Description: "Mirror vertically",
		Run: call(InputActions.FlipVertical)},
	{Name: "cycle_sort", Keys: []string{"Shift+KeyS"}, Description: "Cycle sort method (Name/Natural/Entry)",
		Run: call(InputActions.CycleSortMethod)},
	{Name: "toggle_wrap", Keys: []string{"Shift+KeyW"}, Description: "Toggle wrap-around at the ends",
		Global: true, Run: call(InputActions.ToggleWrap)},
	{Name: "toggle_keep_view", Keys: []string{"KeyK"}, Description: "Keep zoom and rotation between images",
		Global: true, Run: call(InputActions.ToggleKeepView)},
	{Name: "cycle_theme", Keys: []string{"KeyT"}, Description: "Cycle colour theme",
		Global: true, Run: call(InputActions.CycleTheme)},

	{Name: "zoom_in", Keys: []string{"KeyW", "Equal", "Shift+Equal"}, MouseActions: []string{"WheelUp"},
		Description: "Zoom in (toward the cursor with the wheel)", Run: zoomBy(1, InputActions.ZoomIn)},
	{Name: "zoom_out", Keys: []string{"KeyS", "Minus"}, MouseActions: []string{"WheelDown"},
		Description: "Zoom out (from the cursor with the wheel)", Run: zoomBy(-1, InputActions.ZoomOut)},
	{Name: "zoom_reset", Keys: []string{"Key0"}, MouseActions: []string{"MiddleClick"},
		Description: "Reset zoom, pan and rotation", Run: call(InputActions.ZoomReset)},
	{Name: "zoom_fit", Keys: []string{"KeyF"}, Description: "Cycle fit mode (shrink/contain/width/height/actual)",
		Run: call(InputActions.ZoomFit)},

	{Name: "pan_up", Keys: []string{"ArrowUp"}, Description: "Pan up", Run: call(InputActions.PanUp)},
	{Name: "pan_down", Keys: []string{"ArrowDown"}, Description: "Pan down", Run: call(InputActions.PanDown)},
	{Name: "pan_left", Keys: []string{"Shift+ArrowLeft"}, Description: "Pan left", Run: call(InputActions.PanLeft)},
	{Name: "pan_right", Keys: []string{"Shift+ArrowRight"}, Description: "Pan right", Run: call(InputActions.PanRight)},
}

// Trigger tells the executor how an action was invoked.
type Trigger struct {
	Mouse bool
	Wheel float64 // wheel movement after sensitivity, for wheel bindings
}

// ActionExecutor runs actions by name for the key and mouse binding managers.
type ActionExecutor struct {
	byName map[string]*ActionDefinition
}

// NewActionExecutor indexes defs by name.
func NewActionExecutor(defs []ActionDefinition) *ActionExecutor {
	ae := &ActionExecutor{byName: make(map[string]*ActionDefinition, len(defs))}
	for i := range defs {
		ae.byName[defs[i].Name] = &defs[i]
	}
	return ae
}

// ExecuteAction runs action and reports whether it ran. Unknown actions and
// image actions without a displayed image are ignored.
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, inputState InputState, trigger Trigger) bool {
	def, ok := ae.byName[action]
	if !ok || def.Run == nil {
		return false
	}
	if !def.Global && !inputState.HasImage() {
		return false
	}
	def.Run(inputActions, trigger)
	return true
}

// wheelSteps turns a wheel movement of either sign into a positive zoom step.
func wheelSteps(wheel float64) float64 {
	if wheel < 0 {
		return -wheel
	}
	return wheel
}

var globalActionExecutor = NewActionExecutor(actionDefinitions)

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = append([]string(nil), action.Keys...)
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = append([]string(nil), action.MouseActions...)
	}
	return mousebindings
}
