package xwm

import (
	"slices"

	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
)

func (c *Conn) TopLevelWindows() ([]wm.Window, error) {
	tree, err := xproto.QueryTree(c.conn, c.root).Reply()
	if err != nil {
		return nil, err
	}
	out := make([]wm.Window, 0, len(tree.Children))
	for _, w := range tree.Children {
		if w == c.check {
			continue
		}
		out = append(out, wm.Window(w))
	}
	return out, nil
}

// Attributes reports a window as mappable when it is viewable or iconified.
func (c *Conn) Attributes(w wm.Window) (wm.Attributes, error) {
	attrs, err := xproto.GetWindowAttributes(c.conn, xproto.Window(w)).Reply()
	if err != nil {
		return wm.Attributes{}, err
	}
	mappable := attrs.MapState == xproto.MapStateViewable
	if !mappable {
		if state, err := icccm.WmStateGet(c.xu, xproto.Window(w)); err == nil {
			mappable = state.State == icccm.StateIconic
		}
	}
	return wm.Attributes{
		OverrideRedirect: attrs.OverrideRedirect,
		Mappable:         mappable,
	}, nil
}

// ClientInfo reads the ICCCM and EWMH properties of w. Only the geometry is
// required, missing properties are left empty.
func (c *Conn) ClientInfo(w wm.Window) (wm.ClientInfo, error) {
	win := xproto.Window(w)
	geom, err := xproto.GetGeometry(c.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return wm.ClientInfo{}, err
	}

	info := wm.ClientInfo{
		Geometry: layout.Rect{X: int(geom.X), Y: int(geom.Y), W: int(geom.Width), H: int(geom.Height)},
	}
	if class, err := icccm.WmClassGet(c.xu, win); err == nil {
		info.Class = class.Class
		info.Instance = class.Instance
	}
	info.Title = c.title(win)
	if hints, err := icccm.WmNormalHintsGet(c.xu, win); err == nil {
		info.FixedSize = fixedSize(hints)
	}
	if parent, err := icccm.WmTransientForGet(c.xu, win); err == nil {
		info.TransientFor = wm.Window(parent)
	}
	if hints, err := icccm.WmHintsGet(c.xu, win); err == nil {
		info.Urgent = hints.Flags&icccm.HintUrgency != 0
	}
	if protocols, err := icccm.WmProtocolsGet(c.xu, win); err == nil {
		info.SupportsDelete = slices.Contains(protocols, "WM_DELETE_WINDOW")
	}
	return info, nil
}

func (c *Conn) title(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.xu, win); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(c.xu, win); err == nil {
		return title
	}
	return ""
}

func fixedSize(h *icccm.NormalHints) bool {
	const both = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	if h.Flags&both != both {
		return false
	}
	return h.MaxWidth > 0 && h.MaxHeight > 0 && h.MinWidth == h.MaxWidth && h.MinHeight == h.MaxHeight
}

// Manage selects events on w, grabs clicks for click to focus and marks it
// as a normal state window.
func (c *Conn) Manage(w wm.Window) error {
	win := xproto.Window(w)
	if err := xproto.ChangeWindowAttributesChecked(c.conn, win, xproto.CwEventMask, []uint32{
		xproto.EventMaskEnterWindow | xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify,
	}).Check(); err != nil {
		return err
	}
	xproto.GrabButton(c.conn, false, win, xproto.EventMaskButtonPress,
		xproto.GrabModeSync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
		xproto.ButtonIndexAny, xproto.ModMaskAny)
	return icccm.WmStateSet(c.xu, win, &icccm.WmState{State: icccm.StateNormal})
}

func (c *Conn) Map(w wm.Window) error {
	return xproto.MapWindowChecked(c.conn, xproto.Window(w)).Check()
}

func (c *Conn) Configure(w wm.Window, r layout.Rect, border int) error {
	return xproto.ConfigureWindowChecked(c.conn, xproto.Window(w),
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowBorderWidth,
		[]uint32{
			uint32(int32(r.X)),
			uint32(int32(r.Y)),
			uint32(max(r.W, 1)),
			uint32(max(r.H, 1)),
			uint32(max(border, 0)),
		}).Check()
}

// ConfigureUnmanaged grants the request as asked, keeping the value order of
// the mask bits.
func (c *Conn) ConfigureUnmanaged(req wm.ConfigureRequest) error {
	var values []uint32
	mask := req.ValueMask
	if mask&wm.ConfigX != 0 {
		values = append(values, uint32(int32(req.Rect.X)))
	}
	if mask&wm.ConfigY != 0 {
		values = append(values, uint32(int32(req.Rect.Y)))
	}
	if mask&wm.ConfigWidth != 0 {
		values = append(values, uint32(req.Rect.W))
	}
	if mask&wm.ConfigHeight != 0 {
		values = append(values, uint32(req.Rect.H))
	}
	if mask&wm.ConfigBorder != 0 {
		values = append(values, uint32(req.Border))
	}
	if mask&wm.ConfigSibling != 0 {
		values = append(values, uint32(req.Sibling))
	}
	if mask&wm.ConfigStackMode != 0 {
		values = append(values, uint32(req.StackMode))
	}
	return xproto.ConfigureWindowChecked(c.conn, xproto.Window(req.Window), mask, values).Check()
}

func (c *Conn) SendConfigureNotify(w wm.Window, r layout.Rect, border int) error {
	win := xproto.Window(w)
	ev := xproto.ConfigureNotifyEvent{
		Event:            win,
		Window:           win,
		AboveSibling:     xproto.WindowNone,
		X:                int16(r.X),
		Y:                int16(r.Y),
		Width:            uint16(r.W),
		Height:           uint16(r.H),
		BorderWidth:      uint16(border),
		OverrideRedirect: false,
	}
	return xproto.SendEventChecked(c.conn, false, win, xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}

func (c *Conn) Raise(w wm.Window) error {
	return xproto.ConfigureWindowChecked(c.conn, xproto.Window(w), xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove}).Check()
}

func (c *Conn) SetBorderColor(w wm.Window, color uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.conn, xproto.Window(w), xproto.CwBorderPixel,
		[]uint32{color}).Check()
}

func (c *Conn) Focus(w wm.Window) error {
	return xproto.SetInputFocusChecked(c.conn, xproto.InputFocusPointerRoot, xproto.Window(w),
		xproto.TimeCurrentTime).Check()
}

func (c *Conn) FocusRoot() error {
	return xproto.SetInputFocusChecked(c.conn, xproto.InputFocusPointerRoot, c.root,
		xproto.TimeCurrentTime).Check()
}

func (c *Conn) CloseWindow(w wm.Window) error {
	win := xproto.Window(w)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   c.atoms.wmProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(c.atoms.wmDeleteWindow),
			xproto.TimeCurrentTime,
			0,
			0,
			0,
		}),
	}
	return xproto.SendEventChecked(c.conn, false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

func (c *Conn) Kill(w wm.Window) error {
	return xproto.KillClientChecked(c.conn, uint32(w)).Check()
}

func (c *Conn) DestroyWindow(w wm.Window) error {
	delete(c.bars, w)
	return xproto.DestroyWindowChecked(c.conn, xproto.Window(w)).Check()
}

// PublishHints updates the EWMH root and client properties read by pagers.
func (c *Conn) PublishHints(h wm.Hints) error {
	clients := make([]xproto.Window, 0, len(h.Clients))
	for _, w := range h.Clients {
		clients = append(clients, xproto.Window(w))
	}

	errs := []error{
		ewmh.ClientListSet(c.xu, clients),
		ewmh.ActiveWindowSet(c.xu, xproto.Window(h.Active)),
		ewmh.NumberOfDesktopsSet(c.xu, uint(len(h.DesktopNames))),
		ewmh.DesktopNamesSet(c.xu, h.DesktopNames),
		ewmh.CurrentDesktopSet(c.xu, uint(h.CurrentDesktop)),
	}
	for w, desktop := range h.Desktops {
		if desktop < 0 {
			continue
		}
		errs = append(errs, ewmh.WmDesktopSet(c.xu, xproto.Window(w), uint(desktop)))
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
