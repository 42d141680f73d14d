// Package view holds the per-window transform of the displayed image and
// derives where that image lands on screen.
package view

import "math"

// Default zoom limits used when none are configured.
const (
	DefaultZoomMin         = 0.1
	DefaultZoomMax         = 32.0
	DefaultZoomSensitivity = 0.25
)

// Vec2 is a point or offset in screen pixels.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Limits bound the zoom factor and set how strongly one zoom step acts.
type Limits struct {
	Min         float64
	Max         float64
	Sensitivity float64
}

// DefaultLimits returns the built-in zoom limits.
func DefaultLimits() Limits {
	return Limits{Min: DefaultZoomMin, Max: DefaultZoomMax, Sensitivity: DefaultZoomSensitivity}
}

// Normalize replaces unusable values with defaults and orders Min/Max.
func (l Limits) Normalize() Limits {
	d := DefaultLimits()
	if l.Min <= 0 || math.IsNaN(l.Min) || math.IsInf(l.Min, 0) {
		l.Min = d.Min
	}
	if l.Max <= 0 || math.IsNaN(l.Max) || math.IsInf(l.Max, 0) {
		l.Max = d.Max
	}
	if l.Min > l.Max {
		l.Min, l.Max = l.Max, l.Min
	}
	if l.Min > 1 {
		l.Min = 1
	}
	if l.Max < 1 {
		l.Max = 1
	}
	if l.Sensitivity <= 0 || math.IsNaN(l.Sensitivity) || math.IsInf(l.Sensitivity, 0) {
		l.Sensitivity = d.Sensitivity
	}
	return l
}

// State is the transform applied to the current image. Pan is stored
// unclamped and measured from the window centre; Place clamps it when drawing.
type State struct {
	Level    float64 // zoom factor
	Offset   Vec2    // pan offset
	Rotation int     // degrees clockwise: 0, 90, 180 or 270
	MirrorH  bool
	MirrorV  bool

	limits Limits
}

// New returns a reset State bound to limits.
func New(limits Limits) State {
	return State{Level: 1, limits: limits.Normalize()}
}

// Limits returns the limits the state clamps against.
func (s *State) Limits() Limits { return s.limits }

// Reset restores the untransformed view, keeping the limits.
func (s *State) Reset() {
	*s = State{Level: 1, limits: s.limits}
}

// IsIdentity reports whether the state leaves the image untouched.
func (s *State) IsIdentity() bool {
	return s.Level == 1 && s.Offset == (Vec2{}) && s.Rotation == 0 && !s.MirrorH && !s.MirrorV
}

// zoomFactor maps a signed zoom step onto a multiplier. Negative steps use
// the reciprocal of the matching positive step so opposite steps cancel.
func (s *State) zoomFactor(delta float64) float64 {
	step := delta * s.limits.Sensitivity
	if step >= 0 {
		return 1 + step
	}
	return 1 / (1 - step)
}

// Zoom scales the view by one step of delta while keeping anchor, a point
// relative to the window centre, fixed on screen. It reports whether the
// zoom factor changed.
func (s *State) Zoom(delta float64, anchor Vec2) bool {
	if delta == 0 {
		return false
	}
	if s.Level <= 0 {
		s.Level = 1
	}
	next := s.clamp(s.Level * s.zoomFactor(delta))
	if next == s.Level {
		return false
	}
	ratio := next / s.Level
	s.Offset = anchor.Sub(anchor.Sub(s.Offset).Scale(ratio))
	s.Level = next
	return true
}

// SetZoom jumps to an absolute zoom factor around the window centre.
func (s *State) SetZoom(z float64) {
	if s.Level <= 0 {
		s.Level = 1
	}
	next := s.clamp(z)
	s.Offset = s.Offset.Scale(next / s.Level)
	s.Level = next
}

// Pan moves the view by delta. It is never clamped here.
func (s *State) Pan(delta Vec2) {
	s.Offset = s.Offset.Add(delta)
}

// Rotate turns the image by a quarter turn.
func (s *State) Rotate(clockwise bool) {
	if clockwise {
		s.Rotation = (s.Rotation + 90) % 360
	} else {
		s.Rotation = (s.Rotation + 270) % 360
	}
}

func (s *State) MirrorHorizontal() { s.MirrorH = !s.MirrorH }

func (s *State) MirrorVertical() { s.MirrorV = !s.MirrorV }

// Normalize fixes up a state restored from storage.
func (s *State) Normalize() {
	s.limits = s.limits.Normalize()
	if s.Level <= 0 || math.IsNaN(s.Level) || math.IsInf(s.Level, 0) {
		s.Level = 1
	}
	s.Level = s.clamp(s.Level)
	if math.IsNaN(s.Offset.X) || math.IsInf(s.Offset.X, 0) {
		s.Offset.X = 0
	}
	if math.IsNaN(s.Offset.Y) || math.IsInf(s.Offset.Y, 0) {
		s.Offset.Y = 0
	}
	s.Rotation = ((s.Rotation/90)*90%360 + 360) % 360
}

func (s *State) clamp(z float64) float64 {
	l := s.limits
	if l.Max == 0 {
		l = l.Normalize()
	}
	return math.Max(l.Min, math.Min(l.Max, z))
}
