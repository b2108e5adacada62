// Package event defines the host events the app reacts to. Only the input
// package talks to SDL; everything else sees these values.
package event

import (
	"time"

	"github.com/Faultbox/chronoglobe/internal/assets"
)

// Type identifies an event.
type Type int

const (
	Quit Type = iota
	Resize
	KeyDown
	KeyUp
	MouseDown
	MouseUp
	MouseScroll
	ScrollStopped
	MouseMotion
	AssetLoaded
)

var typeNames = [...]string{
	Quit:          "quit",
	Resize:        "resize",
	KeyDown:       "key down",
	KeyUp:         "key up",
	MouseDown:     "mouse down",
	MouseUp:       "mouse up",
	MouseScroll:   "mouse scroll",
	ScrollStopped: "scroll stopped",
	MouseMotion:   "mouse motion",
	AssetLoaded:   "asset loaded",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Key is a keyboard key the app binds.
type Key int

const (
	KeyUnknown Key = iota
	KeySpace
	KeyLeftBracket
	KeyRightBracket
	KeyEscape
	KeyScreenshot
)

// Button is a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)

// Event is a normalized host event.
type Event struct {
	Type   Type
	Key    Key
	Button Button

	X, Y   int     // cursor position in pixels
	DX, DY float32 // motion in pixels, or scroll steps with positive DY away from the globe

	Width, Height int // Resize

	Asset assets.Result // AssetLoaded
}

// ScrollStopDelay is the quiet period after the last wheel event before
// ScrollStopped is emitted.
const ScrollStopDelay = 200 * time.Millisecond

// ScrollTimer tracks wheel activity and reports when it has gone quiet.
type ScrollTimer struct {
	Delay  time.Duration
	last   time.Time
	active bool
}

// Touch records a wheel event at now.
func (s *ScrollTimer) Touch(now time.Time) {
	s.last = now
	s.active = true
}

// Expired reports, once per gesture, that Delay has passed since the last
// Touch.
func (s *ScrollTimer) Expired(now time.Time) bool {
	if !s.active {
		return false
	}
	delay := s.Delay
	if delay <= 0 {
		delay = ScrollStopDelay
	}
	if now.Sub(s.last) < delay {
		return false
	}
	s.active = false
	return true
}
