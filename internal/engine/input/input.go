// Package input translates SDL2 events into app events.
package input

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/chronoglobe/internal/event"
)

// Input polls SDL once per frame.
type Input struct {
	events []event.Event
	scroll event.ScrollTimer
	now    func() time.Time
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]event.Event, 0, 16),
		scroll: event.ScrollTimer{Delay: event.ScrollStopDelay},
		now:    time.Now,
	}
}

// Update polls SDL events and converts them. It returns true if the app
// should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, event.Event{Type: event.Quit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, event.Event{
					Type:   event.Resize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			t := event.KeyDown
			if e.Type == sdl.KEYUP {
				t = event.KeyUp
			}
			i.events = append(i.events, event.Event{Type: t, Key: keyFor(e.Keysym.Scancode)})

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, event.Event{
				Type: event.MouseMotion,
				X:    int(e.X),
				Y:    int(e.Y),
				DX:   float32(e.XRel),
				DY:   float32(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			t := event.MouseDown
			if e.Type == sdl.MOUSEBUTTONUP {
				t = event.MouseUp
			}
			i.events = append(i.events, event.Event{
				Type:   t,
				X:      int(e.X),
				Y:      int(e.Y),
				Button: event.Button(e.Button),
			})

		case *sdl.MouseWheelEvent:
			// Wheel up zooms in, toward the globe.
			i.events = append(i.events, event.Event{Type: event.MouseScroll, DY: -float32(e.Y)})
			i.scroll.Touch(i.now())
		}
	}

	if i.scroll.Expired(i.now()) {
		i.events = append(i.events, event.Event{Type: event.ScrollStopped})
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []event.Event {
	return i.events
}

func keyFor(sc sdl.Scancode) event.Key {
	switch sc {
	case sdl.SCANCODE_SPACE:
		return event.KeySpace
	case sdl.SCANCODE_LEFTBRACKET:
		return event.KeyLeftBracket
	case sdl.SCANCODE_RIGHTBRACKET:
		return event.KeyRightBracket
	case sdl.SCANCODE_ESCAPE:
		return event.KeyEscape
	case sdl.SCANCODE_F12:
		return event.KeyScreenshot
	default:
		return event.KeyUnknown
	}
}
