package wm

import (
	"errors"
	"strconv"

	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/layout"
)

var (
	ErrAnotherWM     = errors.New("another window manager is running")
	ErrDisplayClosed = errors.New("display connection closed")
	ErrNotRunning    = errors.New("window manager is not running")
)

// Window is a display server window handle. It is only compared and stored.
type Window uint32

func (w Window) String() string {
	return "0x" + strconv.FormatUint(uint64(w), 16)
}

// Attributes decide whether a window may be managed.
type Attributes struct {
	OverrideRedirect bool
	Mappable         bool
}

// ClientInfo is what the display server knows about a top-level window.
type ClientInfo struct {
	Class          string
	Instance       string
	Title          string
	Geometry       layout.Rect
	FixedSize      bool
	TransientFor   Window
	Urgent         bool
	SupportsDelete bool
}

// Cell is a run of text drawn on a bar.
type Cell struct {
	Text           string `json:"text"`
	Foreground     uint32 `json:"foreground"`
	Background     uint32 `json:"background"`
	Underline      bool   `json:"underline"`
	UnderlineColor uint32 `json:"underline_color"`
}

// Hints are published on the root window for pagers and external bars.
type Hints struct {
	Clients        []Window
	Active         Window
	CurrentDesktop int
	DesktopNames   []string
	Desktops       map[Window]int
}

// Display is everything the window manager needs from the display server.
// All methods are called from the event loop goroutine only, except Events
// whose channel is fed by the implementation.
type Display interface {
	Root() Window
	Screens() ([]layout.Rect, error)
	// BecomeWM selects substructure redirection on the root window. It fails
	// with ErrAnotherWM when some other client holds it.
	BecomeWM() error
	Events() <-chan Event

	ParseKey(key string) (mods uint16, codes []keys.Keycode, err error)
	GrabKey(mods uint16, code keys.Keycode) error
	UngrabAllKeys() error
	// RefreshKeymap reloads the keyboard mapping ParseKey resolves against.
	RefreshKeymap() error
	// ReplayPointer releases a click held by the client button grab so the
	// client receives it.
	ReplayPointer() error

	TopLevelWindows() ([]Window, error)
	Attributes(w Window) (Attributes, error)
	ClientInfo(w Window) (ClientInfo, error)

	// Manage selects the events the window manager tracks on w.
	Manage(w Window) error
	Map(w Window) error
	// Configure places w. r is the inner rectangle, border excluded.
	Configure(w Window, r layout.Rect, border int) error
	// ConfigureUnmanaged forwards a configure request as asked.
	ConfigureUnmanaged(req ConfigureRequest) error
	// SendConfigureNotify tells w its geometry without moving it.
	SendConfigureNotify(w Window, r layout.Rect, border int) error
	Raise(w Window) error
	SetBorderColor(w Window, color uint32) error
	Focus(w Window) error
	FocusRoot() error
	// CloseWindow politely asks w to close with WM_DELETE_WINDOW.
	CloseWindow(w Window) error
	// Kill forcibly disconnects the client owning w.
	Kill(w Window) error

	CreateBar(r layout.Rect) (Window, error)
	DrawBar(bar Window, width int, left, right []Cell) error
	DestroyWindow(w Window) error
	TextWidth(s string) int
	FontHeight() int

	PublishHints(h Hints) error
	Close()
}
