package view

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestZoom_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		pan    Vec2
		delta  float64
		anchor Vec2
	}{
		{"Zoom in at centre", 1, Vec2{}, 1, Vec2{}},
		{"Zoom in at cursor", 1, Vec2{10, -5}, 1, Vec2{120, 80}},
		{"Zoom out at cursor", 2, Vec2{-40, 33}, -1, Vec2{-200, 15}},
		{"Fractional step", 0.7, Vec2{3, 4}, 0.3, Vec2{50, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(DefaultLimits())
			s.Level = tt.start
			s.Offset = tt.pan

			if !s.Zoom(tt.delta, tt.anchor) {
				t.Fatal("first zoom did not change the level")
			}
			s.Zoom(-tt.delta, tt.anchor)

			if !almostEqual(s.Level, tt.start) {
				t.Errorf("Level = %v, want %v", s.Level, tt.start)
			}
			if !almostEqual(s.Offset.X, tt.pan.X) || !almostEqual(s.Offset.Y, tt.pan.Y) {
				t.Errorf("Offset = %+v, want %+v", s.Offset, tt.pan)
			}
		})
	}
}

func TestZoom_KeepsAnchorFixed(t *testing.T) {
	s := New(DefaultLimits())
	s.Offset = Vec2{30, -10}
	anchor := Vec2{100, 60}

	// Image point under the anchor, in unzoomed units.
	before := anchor.Sub(s.Offset).Scale(1 / s.Level)
	s.Zoom(2, anchor)
	after := anchor.Sub(s.Offset).Scale(1 / s.Level)

	if !almostEqual(before.X, after.X) || !almostEqual(before.Y, after.Y) {
		t.Errorf("image point under anchor moved from %+v to %+v", before, after)
	}
}

func TestZoom_Clamps(t *testing.T) {
	s := New(Limits{Min: 0.5, Max: 2, Sensitivity: 1})

	for i := 0; i < 10; i++ {
		s.Zoom(1, Vec2{})
	}
	if s.Level != 2 {
		t.Errorf("Level = %v, want clamp at 2", s.Level)
	}
	if s.Zoom(1, Vec2{}) {
		t.Error("Zoom reported a change at the upper limit")
	}

	for i := 0; i < 10; i++ {
		s.Zoom(-1, Vec2{})
	}
	if s.Level != 0.5 {
		t.Errorf("Level = %v, want clamp at 0.5", s.Level)
	}
}

func TestPan_Unconstrained(t *testing.T) {
	s := New(DefaultLimits())
	s.Pan(Vec2{1e6, -1e6})
	s.Pan(Vec2{1, 1})
	if s.Offset != (Vec2{1e6 + 1, -1e6 + 1}) {
		t.Errorf("Offset = %+v", s.Offset)
	}
}

func TestRotate(t *testing.T) {
	s := New(DefaultLimits())
	for i := 0; i < 4; i++ {
		s.Rotate(true)
	}
	if s.Rotation != 0 {
		t.Errorf("four clockwise turns: Rotation = %d, want 0", s.Rotation)
	}

	s.Rotate(false)
	if s.Rotation != 270 {
		t.Errorf("counter-clockwise from 0: Rotation = %d, want 270", s.Rotation)
	}
	s.Rotate(true)
	if s.Rotation != 0 {
		t.Errorf("Rotation = %d, want 0", s.Rotation)
	}
}

func TestMirrorAndReset(t *testing.T) {
	s := New(Limits{Min: 0.2, Max: 5, Sensitivity: 0.5})
	s.MirrorHorizontal()
	s.MirrorVertical()
	s.MirrorVertical()
	if !s.MirrorH || s.MirrorV {
		t.Errorf("MirrorH=%v MirrorV=%v, want true false", s.MirrorH, s.MirrorV)
	}

	s.Rotate(true)
	s.Zoom(1, Vec2{10, 10})
	s.Pan(Vec2{5, 5})
	s.Reset()

	if !s.IsIdentity() {
		t.Errorf("Reset left %+v", s)
	}
	if s.Limits() != (Limits{Min: 0.2, Max: 5, Sensitivity: 0.5}) {
		t.Errorf("Reset dropped the limits: %+v", s.Limits())
	}
}

func TestLimits_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Limits
		want Limits
	}{
		{"Zero value", Limits{}, DefaultLimits()},
		{"Swapped", Limits{Min: 4, Max: 0.5, Sensitivity: 0.1}, Limits{Min: 0.5, Max: 4, Sensitivity: 0.1}},
		{"Range excludes 1", Limits{Min: 2, Max: 3, Sensitivity: 0.1}, Limits{Min: 1, Max: 3, Sensitivity: 0.1}},
		{"NaN sensitivity", Limits{Min: 0.5, Max: 4, Sensitivity: math.NaN()}, Limits{Min: 0.5, Max: 4, Sensitivity: DefaultZoomSensitivity}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestState_Normalize(t *testing.T) {
	s := State{Level: math.Inf(1), Offset: Vec2{math.NaN(), 3}, Rotation: -90}
	s.Normalize()
	if s.Level != 1 || s.Offset != (Vec2{0, 3}) || s.Rotation != 270 {
		t.Errorf("Normalize() = %+v", s)
	}
}
