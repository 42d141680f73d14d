package imagesrc

import "time"

// Animation steps through the frames of a Source using each frame's delay.
type Animation struct {
	frames    []Frame
	current   int
	elapsed   time.Duration
	remaining int // plays left including the current one; 0 means forever
	done      bool
}

// NewAnimation returns a player positioned on the first frame.
func NewAnimation(src *Source) *Animation {
	a := &Animation{frames: src.Frames, remaining: src.Loops}
	if len(src.Frames) <= 1 {
		a.done = true
	}
	return a
}

// Frame returns the index of the frame to display.
func (a *Animation) Frame() int {
	return a.current
}

// Done reports whether the animation has stopped on its final frame.
func (a *Animation) Done() bool {
	return a.done
}

// Advance moves the clock by dt and reports whether the displayed frame changed.
func (a *Animation) Advance(dt time.Duration) bool {
	if a.done {
		return false
	}

	a.elapsed += dt
	if a.elapsed <= a.frames[a.current].Delay {
		return false
	}
	a.elapsed = 0
	a.current++

	if a.current < len(a.frames) {
		return true
	}

	if a.remaining == 0 {
		a.current = 0
		return true
	}

	a.remaining--
	if a.remaining > 0 {
		a.current = 0
		return true
	}

	a.current = len(a.frames) - 1
	a.done = true
	return false
}
