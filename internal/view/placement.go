package view

import (
	"fmt"
	"math"
	"strings"
)

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// FitPolicy chooses the base scale before the zoom factor is applied.
type FitPolicy int

const (
	// FitShrink scales large images down to the window and leaves small ones at 1:1.
	FitShrink FitPolicy = iota
	// FitContain scales every image to fill the window without cropping.
	FitContain
	FitWidth
	FitHeight
	// FitActual draws at 1:1.
	FitActual
)

var fitNames = []string{"shrink", "contain", "width", "height", "actual"}

func (f FitPolicy) String() string {
	if f < 0 || int(f) >= len(fitNames) {
		return "unknown"
	}
	return fitNames[f]
}

// ParseFitPolicy converts a configuration name into a FitPolicy.
func ParseFitPolicy(s string) (FitPolicy, error) {
	for i, name := range fitNames {
		if strings.EqualFold(s, name) {
			return FitPolicy(i), nil
		}
	}
	return FitShrink, fmt.Errorf("unknown fit policy %q", s)
}

// Next cycles through the policies in declaration order.
func (f FitPolicy) Next() FitPolicy {
	return FitPolicy((int(f) + 1) % len(fitNames))
}

// Placement is where and how an image is drawn for one frame.
type Placement struct {
	Scale    float64 // source pixels to screen pixels, zoom included
	Center   Vec2    // screen position of the image centre
	Extent   Size    // on-screen size of the rotated, scaled image
	Rotation int
	MirrorH  bool
	MirrorV  bool
}

// Origin returns the top-left corner of the drawn image on screen.
func (p Placement) Origin() Vec2 {
	return Vec2{p.Center.X - p.Extent.W/2, p.Center.Y - p.Extent.H/2}
}

// Place derives the on-screen placement of an image of size img. The stored
// pan offset is clamped here so the image never leaves the screen entirely
// when it is larger than the screen, and is ignored on any axis where the
// image fits.
func (s *State) Place(img, screen Size, fit FitPolicy) Placement {
	p := Placement{
		Scale:    1,
		Center:   Vec2{screen.W / 2, screen.H / 2},
		Rotation: s.Rotation,
		MirrorH:  s.MirrorH,
		MirrorV:  s.MirrorV,
	}
	if img.W <= 0 || img.H <= 0 || screen.W <= 0 || screen.H <= 0 {
		return p
	}

	rw, rh := img.W, img.H
	if s.Rotation == 90 || s.Rotation == 270 {
		rw, rh = rh, rw
	}

	var base float64
	switch fit {
	case FitContain:
		base = math.Min(screen.W/rw, screen.H/rh)
	case FitWidth:
		base = screen.W / rw
	case FitHeight:
		base = screen.H / rh
	case FitActual:
		base = 1
	default:
		base = 1
		if rw > screen.W || rh > screen.H {
			base = math.Min(screen.W/rw, screen.H/rh)
		}
	}

	level := s.Level
	if level <= 0 {
		level = 1
	}
	p.Scale = base * level
	p.Extent = Size{rw * p.Scale, rh * p.Scale}
	p.Center = Vec2{
		X: clampAxis(screen.W, p.Extent.W, s.Offset.X),
		Y: clampAxis(screen.H, p.Extent.H, s.Offset.Y),
	}
	return p
}

// clampAxis returns the centre coordinate along one axis.
func clampAxis(screen, extent, offset float64) float64 {
	if extent <= screen {
		return screen / 2
	}
	lo := screen - extent/2
	hi := extent / 2
	return math.Max(lo, math.Min(hi, screen/2+offset))
}
