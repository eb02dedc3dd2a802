package wm

import (
	"fmt"
	"strings"

	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/layout"
)

// Event is a display server event. It is one of the types below.
type Event interface {
	isEvent()
}

// Configure request value mask bits, bit-compatible with X11.
const (
	ConfigX         uint16 = 1 << 0
	ConfigY         uint16 = 1 << 1
	ConfigWidth     uint16 = 1 << 2
	ConfigHeight    uint16 = 1 << 3
	ConfigBorder    uint16 = 1 << 4
	ConfigSibling   uint16 = 1 << 5
	ConfigStackMode uint16 = 1 << 6
)

// Property is a window property the window manager follows.
type Property int

const (
	PropertyOther Property = iota
	PropertyTitle
	PropertyHints
	PropertyNormalHints
	PropertyTransientFor
)

type (
	MapRequest struct {
		Window Window
	}
	UnmapNotify struct {
		Window Window
	}
	DestroyNotify struct {
		Window Window
	}
	ConfigureRequest struct {
		Window    Window
		Rect      layout.Rect
		Border    int
		Sibling   Window
		StackMode byte
		ValueMask uint16
	}
	KeyPress struct {
		State uint16
		Code  keys.Keycode
	}
	EnterNotify struct {
		Window Window
	}
	ButtonPress struct {
		Window Window
		Button int
		X, Y   int
	}
	Expose struct {
		Window Window
		Count  int
	}
	PropertyNotify struct {
		Window   Window
		Property Property
	}
	// MappingNotify reports a keyboard mapping change.
	MappingNotify struct{}
	// DisplayError is an asynchronous error reported by the server.
	DisplayError struct {
		Err error
	}
)

func (MapRequest) isEvent()       {}
func (UnmapNotify) isEvent()      {}
func (DestroyNotify) isEvent()    {}
func (ConfigureRequest) isEvent() {}
func (KeyPress) isEvent()         {}
func (EnterNotify) isEvent()      {}
func (ButtonPress) isEvent()      {}
func (Expose) isEvent()           {}
func (PropertyNotify) isEvent()   {}
func (MappingNotify) isEvent()    {}
func (DisplayError) isEvent()     {}

func eventName(ev Event) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", ev), "wm.")
}
