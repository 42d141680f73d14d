// Package shell tracks what the viewer window is doing: waiting for a file,
// loading one, showing an error or showing an image.
package shell

import "fmt"

// State is a phase of the window's event loop.
type State int

const (
	Idle State = iota
	Loading
	Error
	Viewing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Error:
		return "Error"
	case Viewing:
		return "Viewing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine is the window's state machine. Every way of opening a file funnels
// into Request. The zero value is an idle machine.
type Machine struct {
	state   State
	pending string
	err     error
	showing bool // an image is on screen behind the current state
}

func (m *Machine) State() State { return m.state }

// Pending returns the path waiting to be loaded, if any.
func (m *Machine) Pending() (string, bool) {
	if m.state != Loading {
		return "", false
	}
	return m.pending, true
}

// Err returns the failure shown in the Error state.
func (m *Machine) Err() error {
	if m.state != Error {
		return nil
	}
	return m.err
}

// Showing reports whether an image has been displayed and not replaced by a
// failed load.
func (m *Machine) Showing() bool { return m.showing }

// Request asks for path to be loaded. A request made while another is
// pending replaces it. Requests are accepted from every state except Error,
// which must be dismissed first.
func (m *Machine) Request(path string) bool {
	if m.state == Error {
		return false
	}
	m.state = Loading
	m.pending = path
	m.err = nil
	return true
}

// Succeed completes the pending load.
func (m *Machine) Succeed() bool {
	if m.state != Loading {
		return false
	}
	m.state = Viewing
	m.pending = ""
	m.showing = true
	return true
}

// Fail ends the pending load with err.
func (m *Machine) Fail(err error) bool {
	if m.state != Loading {
		return false
	}
	m.state = Error
	m.pending = ""
	m.err = err
	return true
}

// Dismiss clears an error. The window returns to the image that was shown
// before the failed load, or to Idle when there is none.
func (m *Machine) Dismiss() bool {
	if m.state != Error {
		return false
	}
	m.err = nil
	if m.showing {
		m.state = Viewing
	} else {
		m.state = Idle
	}
	return true
}

// Clear drops the displayed image and returns to Idle, for example when the
// current file disappeared on reload.
func (m *Machine) Clear() {
	*m = Machine{}
}
