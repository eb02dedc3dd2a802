// Package xwm implements the window manager display on an X11 connection.
package xwm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xinerama"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/keybind"
	"github.com/jezek/xgbutil/xcursor"
	"github.com/jezek/xgbutil/xprop"
)

const name = "xtile"

var supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_CURRENT_DESKTOP",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_WM_DESKTOP",
}

type atoms struct {
	wmProtocols    xproto.Atom
	wmDeleteWindow xproto.Atom
	wmName         xproto.Atom
	netWMName      xproto.Atom
	wmHints        xproto.Atom
	wmNormalHints  xproto.Atom
	wmTransientFor xproto.Atom
}

// Conn is an X11 display. It satisfies wm.Display.
type Conn struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	atoms  atoms
	log    *slog.Logger

	keyMu sync.Mutex

	font   fontInfo
	gc     xproto.Gcontext
	check  xproto.Window
	bars   map[wm.Window]barWindow
	widths map[string]int

	events    chan wm.Event
	closeOnce sync.Once
}

var _ wm.Display = (*Conn)(nil)

// Open connects to $DISPLAY and loads fontName for the bars.
func Open(fontName string) (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X: %w", err)
	}

	c := &Conn{
		xu:     xu,
		conn:   xu.Conn(),
		root:   xu.RootWin(),
		screen: xu.Screen(),
		log:    slog.With("package", "xwm"),
		bars:   make(map[wm.Window]barWindow),
		widths: make(map[string]int),
		events: make(chan wm.Event, 64),
	}

	if err := c.initAtoms(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	if err := c.openFont(fontName); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	keybind.Initialize(xu)

	go c.receiveEvents()

	return c, nil
}

func (c *Conn) initAtoms() error {
	var errs []error
	atom := func(name string) xproto.Atom {
		a, err := xprop.Atm(c.xu, name)
		if err != nil {
			errs = append(errs, err)
		}
		return a
	}
	c.atoms = atoms{
		wmProtocols:    atom("WM_PROTOCOLS"),
		wmDeleteWindow: atom("WM_DELETE_WINDOW"),
		wmName:         atom("WM_NAME"),
		netWMName:      atom("_NET_WM_NAME"),
		wmHints:        atom("WM_HINTS"),
		wmNormalHints:  atom("WM_NORMAL_HINTS"),
		wmTransientFor: atom("WM_TRANSIENT_FOR"),
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to intern atoms: %w", err)
	}
	return nil
}

func (c *Conn) Root() wm.Window {
	return wm.Window(c.root)
}

func (c *Conn) Events() <-chan wm.Event {
	return c.events
}

// BecomeWM redirects the root window substructure to us, then advertises the
// supported hints and sets the root cursor.
func (c *Conn) BecomeWM() error {
	if err := xproto.ChangeWindowAttributesChecked(c.conn, c.root, xproto.CwEventMask, []uint32{
		xproto.EventMaskSubstructureRedirect |
			xproto.EventMaskSubstructureNotify |
			xproto.EventMaskStructureNotify |
			xproto.EventMaskPropertyChange |
			xproto.EventMaskButtonPress |
			xproto.EventMaskEnterWindow,
	}).Check(); err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return wm.ErrAnotherWM
		}
		return err
	}

	if cursor, err := xcursor.CreateCursor(c.xu, xcursor.LeftPtr); err != nil {
		c.log.Warn("Failed to create cursor", "error", err)
	} else {
		xproto.ChangeWindowAttributes(c.conn, c.root, xproto.CwCursor, []uint32{uint32(cursor)})
	}

	check, err := xproto.NewWindowId(c.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateWindowChecked(c.conn, c.screen.RootDepth,
		check, c.root,
		-1, -1, 1, 1, 0,
		xproto.WindowClassInputOutput, c.screen.RootVisual,
		xproto.CwOverrideRedirect, []uint32{1}).Check(); err != nil {
		return err
	}
	c.check = check

	return errors.Join(
		ewmh.SupportingWmCheckSet(c.xu, c.root, check),
		ewmh.SupportingWmCheckSet(c.xu, check, check),
		ewmh.WmNameSet(c.xu, check, name),
		ewmh.SupportedSet(c.xu, supported),
	)
}

// Screens returns the Xinerama heads, or the root window when the extension
// is missing.
func (c *Conn) Screens() ([]layout.Rect, error) {
	root := []layout.Rect{{W: int(c.screen.WidthInPixels), H: int(c.screen.HeightInPixels)}}
	if err := xinerama.Init(c.conn); err != nil {
		c.log.Debug("Xinerama unavailable", "error", err)
		return root, nil
	}
	reply, err := xinerama.QueryScreens(c.conn).Reply()
	if err != nil {
		return nil, err
	}
	if len(reply.ScreenInfo) == 0 {
		return root, nil
	}

	screens := make([]layout.Rect, 0, len(reply.ScreenInfo))
	for _, si := range reply.ScreenInfo {
		r := layout.Rect{X: int(si.XOrg), Y: int(si.YOrg), W: int(si.Width), H: int(si.Height)}
		if !containsRect(screens, r) {
			screens = append(screens, r)
		}
	}
	return screens, nil
}

// containsRect drops mirrored outputs that report the same head twice.
func containsRect(rs []layout.Rect, r layout.Rect) bool {
	for _, o := range rs {
		if o == r {
			return true
		}
	}
	return false
}

// Close clears the root hints and disconnects. The event channel is closed
// once the receive loop notices.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		if c.check != 0 {
			xproto.DestroyWindow(c.conn, c.check)
		}
		xproto.SetInputFocus(c.conn, xproto.InputFocusPointerRoot, xproto.InputFocusPointerRoot, xproto.TimeCurrentTime)
		ewmh.ActiveWindowSet(c.xu, 0)
		c.conn.Sync()
		c.conn.Close()
	})
}
