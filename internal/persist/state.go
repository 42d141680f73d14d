// Package persist stores the viewer's state between runs in a TOML file and
// decides which running window is allowed to write it.
package persist

import (
	"fmt"
	"math"

	"foxview/internal/library"
	"foxview/internal/view"
)

// Window size limits
const (
	DefaultWidth  = 640
	DefaultHeight = 480
	MinWidth      = 200
	MinHeight     = 150
)

// Display limits
const (
	defaultFontSize  = 18.0
	minFontSize      = 12.0
	defaultCacheSize = 16
	maxCacheSize     = 64
)

// Point is a window position in screen coordinates.
type Point struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

// Window is the geometry of the viewer window.
type Window struct {
	Position   *Point `toml:"position,omitempty"` // nil lets the OS choose
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Maximized  bool   `toml:"maximized"`
	Fullscreen bool   `toml:"fullscreen"`
}

// Theme selects a named palette with optional "#rrggbb[aa]" overrides.
type Theme struct {
	Name       string `toml:"name"`
	Background string `toml:"background,omitempty"`
	Accent     string `toml:"accent,omitempty"`
}

type LibrarySettings struct {
	Sort string `toml:"sort"`
	Wrap bool   `toml:"wrap"`
}

type ZoomSettings struct {
	Min         float64 `toml:"min"`
	Max         float64 `toml:"max"`
	Sensitivity float64 `toml:"sensitivity"`
}

// Limits converts the settings into view limits.
func (z ZoomSettings) Limits() view.Limits {
	return view.Limits{Min: z.Min, Max: z.Max, Sensitivity: z.Sensitivity}
}

type DisplaySettings struct {
	Fit       string  `toml:"fit"`
	ShowInfo  bool    `toml:"show_info"`
	FontSize  float64 `toml:"font_size"`
	CacheSize int     `toml:"cache_size"`
}

// MouseSettings tune pointer input.
type MouseSettings struct {
	WheelSensitivity float64 `toml:"wheel_sensitivity"`
	DoubleClickTime  int     `toml:"double_click_time"` // milliseconds
	DragThreshold    int     `toml:"drag_threshold"`    // pixels
	EnableMouse      bool    `toml:"enable_mouse"`
	WheelInverted    bool    `toml:"wheel_inverted"`
	EnableDragPan    bool    `toml:"enable_drag_pan"`
	DragSensitivity  float64 `toml:"drag_sensitivity"`
}

// View is a saved image transform, restored only when KeepView is set.
type View struct {
	Zoom     float64 `toml:"zoom"`
	PanX     float64 `toml:"pan_x"`
	PanY     float64 `toml:"pan_y"`
	Rotation int     `toml:"rotation"`
	MirrorH  bool    `toml:"mirror_h"`
	MirrorV  bool    `toml:"mirror_v"`
}

// FromView captures a view state for saving.
func FromView(s view.State) *View {
	return &View{
		Zoom:     s.Level,
		PanX:     s.Offset.X,
		PanY:     s.Offset.Y,
		Rotation: s.Rotation,
		MirrorH:  s.MirrorH,
		MirrorV:  s.MirrorV,
	}
}

// Apply restores the saved transform onto s.
func (v *View) Apply(s *view.State) {
	if v == nil {
		return
	}
	s.Level = v.Zoom
	s.Offset = view.Vec2{X: v.PanX, Y: v.PanY}
	s.Rotation = v.Rotation
	s.MirrorH = v.MirrorH
	s.MirrorV = v.MirrorV
	s.Normalize()
}

// State is everything that survives a restart. Treat it as a value: copy it
// with Clone before changing the binding maps.
type State struct {
	Window   Window `toml:"window"`
	LastPath string `toml:"last_path"`
	Theme    Theme  `toml:"theme"`

	// KeepView carries the last transform across images and sessions.
	KeepView bool `toml:"keep_view"`
	// SingleWriter restricts saving to the primary window.
	SingleWriter bool `toml:"single_writer"`

	Library LibrarySettings `toml:"library"`
	Zoom    ZoomSettings    `toml:"zoom"`
	Display DisplaySettings `toml:"display"`
	Mouse   MouseSettings   `toml:"mouse"`
	View    *View           `toml:"view,omitempty"`

	// Empty binding maps mean the built-in defaults.
	Keybindings   map[string][]string `toml:"keybindings,omitempty"`
	Mousebindings map[string][]string `toml:"mousebindings,omitempty"`
}

// Defaults returns the state used on first run.
func Defaults() State {
	limits := view.DefaultLimits()
	return State{
		Window: Window{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Theme:        Theme{Name: DefaultThemeName},
		KeepView:     false,
		SingleWriter: true,
		Library: LibrarySettings{
			Sort: library.SortName.String(),
			Wrap: true,
		},
		Zoom: ZoomSettings{
			Min:         limits.Min,
			Max:         limits.Max,
			Sensitivity: limits.Sensitivity,
		},
		Display: DisplaySettings{
			Fit:       view.FitShrink.String(),
			ShowInfo:  true,
			FontSize:  defaultFontSize,
			CacheSize: defaultCacheSize,
		},
		Mouse: DefaultMouseSettings(),
	}
}

// DefaultMouseSettings returns the default pointer settings.
func DefaultMouseSettings() MouseSettings {
	return MouseSettings{
		WheelSensitivity: 1.0,
		DoubleClickTime:  300,
		DragThreshold:    5,
		EnableMouse:      true,
		WheelInverted:    false,
		EnableDragPan:    true,
		DragSensitivity:  1.0,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	if s.Window.Position != nil {
		p := *s.Window.Position
		c.Window.Position = &p
	}
	if s.View != nil {
		v := *s.View
		c.View = &v
	}
	c.Keybindings = cloneBindings(s.Keybindings)
	c.Mousebindings = cloneBindings(s.Mousebindings)
	return c
}

func cloneBindings(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// SortMethod returns the configured library ordering.
func (s State) SortMethod() library.SortMethod {
	m, err := library.ParseSortMethod(s.Library.Sort)
	if err != nil {
		return library.SortName
	}
	return m
}

// FitPolicy returns the configured base scaling.
func (s State) FitPolicy() view.FitPolicy {
	f, err := view.ParseFitPolicy(s.Display.Fit)
	if err != nil {
		return view.FitShrink
	}
	return f
}

// LibraryOptions returns the navigation options for library.Open.
func (s State) LibraryOptions() library.Options {
	return library.Options{Sort: s.SortMethod(), Wrap: s.Library.Wrap}
}

// normalize replaces out-of-range values with defaults and returns a warning
// for each replacement.
func (s *State) normalize() []string {
	d := Defaults()
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if s.Window.Width < MinWidth {
		s.Window.Width = d.Window.Width
	}
	if s.Window.Height < MinHeight {
		s.Window.Height = d.Window.Height
	}

	if _, ok := themes[s.Theme.Name]; !ok {
		if s.Theme.Name != "" {
			warn("unknown theme %q", s.Theme.Name)
		}
		s.Theme.Name = d.Theme.Name
	}
	if s.Theme.Background != "" {
		if _, err := ParseHexColor(s.Theme.Background); err != nil {
			warn("theme background: %v", err)
			s.Theme.Background = ""
		}
	}
	if s.Theme.Accent != "" {
		if _, err := ParseHexColor(s.Theme.Accent); err != nil {
			warn("theme accent: %v", err)
			s.Theme.Accent = ""
		}
	}

	if m, err := library.ParseSortMethod(s.Library.Sort); err != nil {
		warn("%v", err)
		s.Library.Sort = d.Library.Sort
	} else {
		s.Library.Sort = m.String()
	}

	limits := s.Zoom.Limits().Normalize()
	s.Zoom = ZoomSettings{Min: limits.Min, Max: limits.Max, Sensitivity: limits.Sensitivity}

	if f, err := view.ParseFitPolicy(s.Display.Fit); err != nil {
		warn("%v", err)
		s.Display.Fit = d.Display.Fit
	} else {
		s.Display.Fit = f.String()
	}
	if s.Display.FontSize < minFontSize || math.IsNaN(s.Display.FontSize) {
		s.Display.FontSize = d.Display.FontSize
	}
	if s.Display.CacheSize < 1 {
		s.Display.CacheSize = d.Display.CacheSize
	} else if s.Display.CacheSize > maxCacheSize {
		s.Display.CacheSize = maxCacheSize
	}

	if s.Mouse.WheelSensitivity <= 0 {
		s.Mouse.WheelSensitivity = d.Mouse.WheelSensitivity
	}
	if s.Mouse.DoubleClickTime <= 0 {
		s.Mouse.DoubleClickTime = d.Mouse.DoubleClickTime
	}
	if s.Mouse.DragThreshold < 0 {
		s.Mouse.DragThreshold = d.Mouse.DragThreshold
	}
	if s.Mouse.DragSensitivity <= 0 {
		s.Mouse.DragSensitivity = d.Mouse.DragSensitivity
	}

	if !s.KeepView {
		s.View = nil
	} else if s.View != nil {
		vs := view.New(limits)
		s.View.Apply(&vs)
		s.View = FromView(vs)
	}

	return warnings
}
