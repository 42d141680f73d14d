package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"foxview/internal/library"
	"foxview/internal/persist"
	"foxview/internal/shell"
	"foxview/internal/view"
)

const (
	// Overlay message display duration
	overlayMessageDuration = 2 * time.Second
)

// RenderState provides read-only access to game state for the renderer
type RenderState interface {
	// Shell state
	ShellState() shell.State
	GetError() error
	GetPendingPath() string
	IsFullscreen() bool

	// Rendering data
	GetCurrentImage() *ebiten.Image
	GetImageSize() view.Size
	GetView() view.State
	GetFitPolicy() view.FitPolicy
	GetFrameInfo() (frame, total int)

	// Library data
	GetDisplayedEntry() (library.Entry, bool)
	GetLibraryPosition() (index, total int)
	GetSortMethod() library.SortMethod
	IsWrapEnabled() bool
	IsKeepViewEnabled() bool
	IsPrimary() bool

	// UI state
	IsShowingHelp() bool
	IsShowingInfo() bool
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time
	GetPalette() persist.Palette

	// Display data
	GetFontSize() float64
	GetConfigStatus() persist.LoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()

	// Display toggles
	ToggleHelp()
	ToggleInfo()
	ToggleFullscreen()

	// Settings
	CycleSortMethod()
	ToggleWrap()
	ToggleKeepView()
	CycleTheme()

	// Navigation
	NavigateNext()
	NavigatePrevious()
	JumpFirst()
	JumpLast()
	Reload()

	// Opening files
	OpenFile() // file dialog
	RequestOpen(path string)
	DismissError()

	// Transformations
	RotateLeft()
	RotateRight()
	FlipHorizontal()
	FlipVertical()

	// Zoom and pan actions
	ZoomIn()
	ZoomOut()
	ZoomAtCursor(delta float64)
	ZoomReset()
	ZoomFit()
	PanUp()
	PanDown()
	PanLeft()
	PanRight()
	PanByDelta(deltaX, deltaY float64) // Mouse drag pan

	// Messages
	ShowOverlayMessage(message string)
}

// InputState provides read-only access to input-related state
type InputState interface {
	ShellState() shell.State
	HasImage() bool
}
