package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"foxview/internal/imagesrc"
	"foxview/internal/library"
	"foxview/internal/persist"
	"foxview/internal/shell"
	"foxview/internal/view"
)

const (
	windowTitle = "foxview"

	// Keyboard pan step in screen pixels
	panStep = 50.0

	// Updates to wait for the loading notice to be drawn before decoding
	maxLoadingWait = 2
)

// Game is the viewer window. It implements ebiten.Game, RenderState,
// InputActions and InputState.
type Game struct {
	store  *persist.Store
	token  *persist.Token
	state  persist.State      // settings as they will be saved on close
	status persist.LoadResult // outcome of reading the state file

	machine shell.Machine
	lib     *library.Library
	images  *ImageManager
	view    view.State
	fit     view.FitPolicy

	displayed      *loadedImage
	displayedEntry library.Entry
	anim           *imagesrc.Animation

	pendingEntry *library.Entry // set when the pending request came from the library
	failedPath   string
	loadingDrawn bool
	loadingWait  int

	bindings     Bindings
	inputHandler *InputHandler
	renderer     *Renderer

	picker   filePicker
	picked   chan pickResult
	picking  bool
	setTitle func(string)

	showHelp           bool
	showInfo           bool
	fullscreen         bool
	overlayMessage     string
	overlayMessageTime time.Time

	screenW, screenH int

	exitRequested bool
	closed        bool
}

// NewGame builds a window from the loaded state. token decides whether the
// window may write the state file on close.
func NewGame(store *persist.Store, token *persist.Token, loaded persist.LoadResult) *Game {
	st := loaded.State.Clone()

	g := &Game{
		store:      store,
		token:      token,
		state:      st,
		view:       view.New(st.Zoom.Limits()),
		fit:        st.FitPolicy(),
		images:     NewImageManager(st.Display.CacheSize, imagesrc.StdDecoder{}),
		showInfo:   st.Display.ShowInfo,
		fullscreen: st.Window.Fullscreen,
		picker:     nativePicker{},
		picked:     make(chan pickResult, 1),
		setTitle:   ebiten.SetWindowTitle,
	}
	if st.KeepView && st.View != nil {
		st.View.Apply(&g.view)
	}

	g.bindings = resolveBindings(st)
	g.status = configStatus(loaded, g.bindings)

	keys := NewKeybindingManager(g.bindings.Keys)
	mouse := NewMousebindingManager(g.bindings.Mouse, st.Mouse)
	g.inputHandler = NewInputHandler(g, g, keys, mouse)
	g.renderer = NewRenderer(g)
	return g
}

// Update advances the window by one tick.
func (g *Game) Update() error {
	if g.exitRequested || ebiten.IsWindowBeingClosed() {
		g.shutdown(true)
		return ebiten.Termination
	}

	g.pollPicker()
	g.inputHandler.HandleInput()
	g.processPending()

	if g.anim != nil {
		g.anim.Advance(time.Second / time.Duration(ebiten.TPS()))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
	if g.machine.State() == shell.Loading {
		g.loadingDrawn = true
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// processPending loads the requested file once the loading notice has been
// on screen. Decoding blocks the event loop.
func (g *Game) processPending() {
	path, ok := g.machine.Pending()
	if !ok {
		return
	}
	if !g.loadingDrawn && g.loadingWait < maxLoadingWait {
		g.loadingWait++
		return
	}

	prevLib := g.lib
	entry, err := g.resolve(path)
	if err == nil {
		err = g.show(entry)
	}
	if err != nil {
		slog.Error("Failed to load image", "path", path, "err", err)
		g.failedPath = path
		g.machine.Fail(err)
		g.returnToDisplayed(prevLib)
		return
	}
	g.machine.Succeed()
}

// returnToDisplayed puts the library back on the image still on screen after
// a failed load, so navigation and Reload continue from it.
func (g *Game) returnToDisplayed(prevLib *library.Library) {
	if g.displayed == nil {
		return
	}
	if g.lib != prevLib && prevLib != nil {
		g.lib = prevLib
	}
	if g.lib == nil {
		return
	}
	if i := g.lib.IndexOf(g.displayedEntry.Path); i >= 0 {
		g.lib.Jump(i)
	}
}

// resolve turns a requested path into a library entry, building or
// repositioning the library as needed.
func (g *Game) resolve(path string) (library.Entry, error) {
	if pe := g.pendingEntry; pe != nil && pe.Path == path {
		g.pendingEntry = nil
		return *pe, nil
	}

	lib, err := library.Reopen(g.lib, path, g.state.LibraryOptions())
	if err != nil {
		if lib == nil || !errors.Is(err, library.ErrEmptyLibrary) {
			return library.Entry{}, err
		}
		slog.Warn("Folder has no other images, showing the file alone", "path", path, "err", err)
	}
	g.lib = lib

	entry, ok := lib.Current()
	if !ok {
		return library.Entry{}, fmt.Errorf("%w: %s", library.ErrEmptyLibrary, path)
	}
	return entry, nil
}

// show makes entry the displayed image.
func (g *Game) show(entry library.Entry) error {
	img, err := g.images.Load(entry)
	if err != nil {
		return err
	}

	samePath := g.displayed != nil && g.displayedEntry.Path == entry.Path
	if samePath && g.displayedEntry.Key() != entry.Key() {
		// The file changed on disk; the old decode is stale.
		g.images.Forget(g.displayedEntry)
	}

	g.displayed = img
	g.displayedEntry = entry
	g.anim = imagesrc.NewAnimation(img.source)
	if !samePath && !g.state.KeepView {
		g.view.Reset()
	}

	g.state.LastPath = entry.Path
	if entry.InArchive() {
		g.state.LastPath = entry.ArchivePath
	}
	g.setTitle(entry.Name + " - " + windowTitle)
	debugLog("Showing %s (%dx%d, %d frame(s))", entry.Path, img.source.Width, img.source.Height, len(img.source.Frames))
	return nil
}

func (g *Game) startLoading(path string) bool {
	if !g.machine.Request(path) {
		return false
	}
	g.loadingDrawn = false
	g.loadingWait = 0
	g.failedPath = ""
	return true
}

// RequestOpen asks for path to be opened. Every way of opening a file ends
// up here.
func (g *Game) RequestOpen(path string) {
	g.pendingEntry = nil
	if !g.startLoading(path) {
		debugLog("Open request ignored in state %s: %s", g.machine.State(), path)
	}
}

// requestEntry asks for a library entry to be shown. Cached images skip the
// loading notice.
func (g *Game) requestEntry(entry library.Entry) {
	if !g.startLoading(entry.Path) {
		return
	}
	g.pendingEntry = &entry
	if g.images.Cached(entry) {
		g.loadingDrawn = true
	}
}

func (g *Game) DismissError() {
	if g.machine.Dismiss() {
		g.failedPath = ""
	}
}

// clearDisplay drops the displayed image after its library emptied.
func (g *Game) clearDisplay() {
	g.displayed = nil
	g.displayedEntry = library.Entry{}
	g.anim = nil
	g.lib = nil
	g.machine.Clear()
	g.setTitle(windowTitle)
}

// Application control

func (g *Game) Exit() {
	g.exitRequested = true
}

// shutdown saves the state from the primary window and releases ownership.
// Window geometry is only read while the window still exists.
func (g *Game) shutdown(windowAlive bool) {
	if g.closed {
		return
	}
	g.closed = true

	if windowAlive {
		g.rememberWindow()
	}
	st := g.state.Clone()
	st.View = nil
	if st.KeepView {
		st.View = persist.FromView(g.view)
	}

	if err := g.store.Save(g.token, st); errors.Is(err, persist.ErrNotPrimary) {
		slog.Info("Another window owns the state file, not saving")
	}
	if err := g.token.Release(); err != nil {
		slog.Warn("Failed to release primary window lock", "err", err)
	}
	if windowAlive {
		g.images.Purge()
	}
}

// rememberWindow copies the current window geometry into the state.
func (g *Game) rememberWindow() {
	g.state.Window.Fullscreen = g.fullscreen
	if g.fullscreen {
		// Keep the windowed geometry recorded before going fullscreen.
		return
	}
	g.state.Window.Maximized = ebiten.IsWindowMaximized()
	if g.state.Window.Maximized {
		return
	}
	w, h := ebiten.WindowSize()
	if w >= persist.MinWidth && h >= persist.MinHeight {
		g.state.Window.Width, g.state.Window.Height = w, h
	}
	x, y := ebiten.WindowPosition()
	g.state.Window.Position = &persist.Point{X: x, Y: y}
}

// Display toggles

func (g *Game) ToggleHelp() {
	g.showHelp = !g.showHelp
}

func (g *Game) ToggleInfo() {
	g.showInfo = !g.showInfo
	g.state.Display.ShowInfo = g.showInfo
}

func (g *Game) ToggleFullscreen() {
	if !g.fullscreen {
		g.rememberWindow()
	}
	g.fullscreen = !g.fullscreen
	ebiten.SetFullscreen(g.fullscreen)
}

// Settings

func (g *Game) CycleSortMethod() {
	m := g.state.SortMethod().Next()
	g.state.Library.Sort = m.String()
	if g.lib != nil {
		g.lib.SetSort(m)
	}
	g.ShowOverlayMessage("Sort: " + library.GetSortStrategy(m).Name())
}

func (g *Game) ToggleWrap() {
	g.state.Library.Wrap = !g.state.Library.Wrap
	if g.lib != nil {
		g.lib.SetWrap(g.state.Library.Wrap)
	}
	g.ShowOverlayMessage(onOff("Wrap around", g.state.Library.Wrap))
}

func (g *Game) ToggleKeepView() {
	g.state.KeepView = !g.state.KeepView
	g.ShowOverlayMessage(onOff("Keep view", g.state.KeepView))
}

func (g *Game) CycleTheme() {
	g.state.Theme = persist.Theme{Name: persist.NextTheme(g.state.Theme.Name)}
	g.ShowOverlayMessage("Theme: " + g.state.Theme.Name)
}

func onOff(label string, on bool) string {
	if on {
		return label + ": on"
	}
	return label + ": off"
}

// Navigation

func (g *Game) navigate(dir library.Direction) {
	if g.lib == nil {
		return
	}
	before := g.lib.Index()
	entry, ok := g.lib.Advance(dir)
	if !ok {
		return
	}
	if g.lib.Index() == before {
		if !g.state.Library.Wrap && g.lib.Len() > 1 {
			if dir == library.Next {
				g.ShowOverlayMessage("Last image")
			} else {
				g.ShowOverlayMessage("First image")
			}
		}
		return
	}
	g.requestEntry(entry)
}

func (g *Game) NavigateNext() {
	g.navigate(library.Next)
}

func (g *Game) NavigatePrevious() {
	g.navigate(library.Previous)
}

func (g *Game) jump(i int) {
	if g.lib == nil || i == g.lib.Index() {
		return
	}
	if entry, ok := g.lib.Jump(i); ok {
		g.requestEntry(entry)
	}
}

func (g *Game) JumpFirst() {
	g.jump(0)
}

func (g *Game) JumpLast() {
	if g.lib != nil {
		g.jump(g.lib.Len() - 1)
	}
}

// Reload rescans the library and shows the current entry again, decoding it
// anew when the file changed.
func (g *Game) Reload() {
	if g.lib == nil {
		return
	}
	err := g.lib.Reload()
	entry, ok := g.lib.Current()
	if !ok {
		slog.Warn("Reload left no images", "dir", g.lib.Dir(), "err", err)
		g.clearDisplay()
		g.ShowOverlayMessage("No images left")
		return
	}
	if err != nil {
		slog.Warn("Reload incomplete", "dir", g.lib.Dir(), "err", err)
	}
	g.requestEntry(entry)
	g.ShowOverlayMessage(fmt.Sprintf("Reloaded: %d images", g.lib.Len()))
}

// Transformations

func (g *Game) RotateLeft() {
	g.view.Rotate(false)
}

func (g *Game) RotateRight() {
	g.view.Rotate(true)
}

func (g *Game) FlipHorizontal() {
	g.view.MirrorHorizontal()
}

func (g *Game) FlipVertical() {
	g.view.MirrorVertical()
}

// Zoom and pan

func (g *Game) ZoomIn() {
	g.view.Zoom(1, view.Vec2{})
}

func (g *Game) ZoomOut() {
	g.view.Zoom(-1, view.Vec2{})
}

// ZoomAtCursor zooms by delta steps keeping the point under the cursor fixed.
func (g *Game) ZoomAtCursor(delta float64) {
	x, y := ebiten.CursorPosition()
	anchor := view.Vec2{X: float64(x) - float64(g.screenW)/2, Y: float64(y) - float64(g.screenH)/2}
	g.view.Zoom(delta, anchor)
}

func (g *Game) ZoomReset() {
	g.view.Reset()
}

// ZoomFit cycles the fit policy and recentres the image at zoom 1.
func (g *Game) ZoomFit() {
	g.fit = g.fit.Next()
	g.state.Display.Fit = g.fit.String()
	g.view.SetZoom(1)
	g.view.Offset = view.Vec2{}
	g.ShowOverlayMessage("Fit: " + g.fit.String())
}

func (g *Game) PanUp() {
	g.view.Pan(view.Vec2{Y: panStep})
}

func (g *Game) PanDown() {
	g.view.Pan(view.Vec2{Y: -panStep})
}

func (g *Game) PanLeft() {
	g.view.Pan(view.Vec2{X: panStep})
}

func (g *Game) PanRight() {
	g.view.Pan(view.Vec2{X: -panStep})
}

func (g *Game) PanByDelta(deltaX, deltaY float64) {
	g.view.Pan(view.Vec2{X: deltaX, Y: deltaY})
}

// Messages

func (g *Game) ShowOverlayMessage(message string) {
	g.overlayMessage = message
	g.overlayMessageTime = time.Now()
}

// RenderState and InputState

func (g *Game) ShellState() shell.State {
	return g.machine.State()
}

func (g *Game) HasImage() bool {
	return g.displayed != nil
}

func (g *Game) GetError() error {
	return g.machine.Err()
}

// GetPendingPath returns the path being loaded, or the one that failed.
func (g *Game) GetPendingPath() string {
	if path, ok := g.machine.Pending(); ok {
		return path
	}
	return g.failedPath
}

func (g *Game) IsFullscreen() bool {
	return g.fullscreen
}

func (g *Game) GetCurrentImage() *ebiten.Image {
	if g.displayed == nil {
		return nil
	}
	i := 0
	if g.anim != nil {
		i = g.anim.Frame()
	}
	return g.displayed.texture(i)
}

func (g *Game) GetImageSize() view.Size {
	if g.displayed == nil {
		return view.Size{}
	}
	return g.displayed.size()
}

func (g *Game) GetView() view.State {
	return g.view
}

func (g *Game) GetFitPolicy() view.FitPolicy {
	return g.fit
}

func (g *Game) GetFrameInfo() (int, int) {
	if g.displayed == nil || g.anim == nil {
		return 0, 0
	}
	return g.anim.Frame(), len(g.displayed.source.Frames)
}

func (g *Game) GetDisplayedEntry() (library.Entry, bool) {
	return g.displayedEntry, g.displayed != nil
}

// GetLibraryPosition returns where the displayed image sits in the library,
// which may differ from the cursor while another entry is loading.
func (g *Game) GetLibraryPosition() (int, int) {
	if g.lib == nil || g.lib.Singular() || g.displayed == nil {
		return -1, 0
	}
	if cur, ok := g.lib.Current(); ok && cur.Path == g.displayedEntry.Path {
		return g.lib.Index(), g.lib.Len()
	}
	return g.lib.IndexOf(g.displayedEntry.Path), g.lib.Len()
}

func (g *Game) GetSortMethod() library.SortMethod {
	return g.state.SortMethod()
}

func (g *Game) IsWrapEnabled() bool {
	return g.state.Library.Wrap
}

func (g *Game) IsKeepViewEnabled() bool {
	return g.state.KeepView
}

func (g *Game) IsPrimary() bool {
	return g.token.Primary()
}

func (g *Game) IsShowingHelp() bool {
	return g.showHelp
}

func (g *Game) IsShowingInfo() bool {
	return g.showInfo
}

func (g *Game) GetOverlayMessage() string {
	return g.overlayMessage
}

func (g *Game) GetOverlayMessageTime() time.Time {
	return g.overlayMessageTime
}

func (g *Game) GetPalette() persist.Palette {
	return g.state.Theme.Palette()
}

func (g *Game) GetFontSize() float64 {
	return g.state.Display.FontSize
}

func (g *Game) GetConfigStatus() persist.LoadResult {
	return g.status
}

func (g *Game) GetKeybindings() map[string][]string {
	return g.bindings.Keys
}

func (g *Game) GetMousebindings() map[string][]string {
	return g.bindings.Mouse
}
