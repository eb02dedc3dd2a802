package xwm

import (
	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/keybind"
)

// receiveEvents translates X events until the connection closes.
func (c *Conn) receiveEvents() {
	defer close(c.events)
	log := c.log.With("func", "xwm.Conn.receiveEvents")

	for {
		ev, err := c.conn.WaitForEvent()
		if ev == nil && err == nil {
			log.Debug("exit: no event or error")
			return
		}

		if err != nil {
			c.events <- wm.DisplayError{Err: err}
			continue
		}

		if out, ok := c.translate(ev); ok {
			c.events <- out
		}
	}
}

func (c *Conn) translate(ev any) (wm.Event, bool) {
	switch ev := ev.(type) {
	case xproto.MapRequestEvent:
		return wm.MapRequest{Window: wm.Window(ev.Window)}, true
	case xproto.UnmapNotifyEvent:
		return wm.UnmapNotify{Window: wm.Window(ev.Window)}, true
	case xproto.DestroyNotifyEvent:
		return wm.DestroyNotify{Window: wm.Window(ev.Window)}, true
	case xproto.ConfigureRequestEvent:
		return wm.ConfigureRequest{
			Window:    wm.Window(ev.Window),
			Rect:      layout.Rect{X: int(ev.X), Y: int(ev.Y), W: int(ev.Width), H: int(ev.Height)},
			Border:    int(ev.BorderWidth),
			Sibling:   wm.Window(ev.Sibling),
			StackMode: ev.StackMode,
			ValueMask: ev.ValueMask,
		}, true
	case xproto.KeyPressEvent:
		return wm.KeyPress{State: ev.State, Code: keys.Keycode(ev.Detail)}, true
	case xproto.EnterNotifyEvent:
		if ev.Mode != xproto.NotifyModeNormal || ev.Detail == xproto.NotifyDetailInferior {
			return nil, false
		}
		return wm.EnterNotify{Window: wm.Window(ev.Event)}, true
	case xproto.ButtonPressEvent:
		return wm.ButtonPress{
			Window: wm.Window(ev.Event),
			Button: int(ev.Detail),
			X:      int(ev.EventX),
			Y:      int(ev.EventY),
		}, true
	case xproto.ExposeEvent:
		return wm.Expose{Window: wm.Window(ev.Window), Count: int(ev.Count)}, true
	case xproto.PropertyNotifyEvent:
		if ev.State == xproto.PropertyDelete {
			return nil, false
		}
		return wm.PropertyNotify{Window: wm.Window(ev.Window), Property: c.property(ev.Atom)}, true
	case xproto.MappingNotifyEvent:
		if ev.Request == xproto.MappingPointer {
			return nil, false
		}
		return wm.MappingNotify{}, true
	default:
		return nil, false
	}
}

func (c *Conn) property(a xproto.Atom) wm.Property {
	switch a {
	case c.atoms.wmName, c.atoms.netWMName:
		return wm.PropertyTitle
	case c.atoms.wmHints:
		return wm.PropertyHints
	case c.atoms.wmNormalHints:
		return wm.PropertyNormalHints
	case c.atoms.wmTransientFor:
		return wm.PropertyTransientFor
	default:
		return wm.PropertyOther
	}
}

func (c *Conn) RefreshKeymap() error {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	keyMap, modMap := keybind.MapsGet(c.xu)
	keybind.KeyMapSet(c.xu, keyMap)
	keybind.ModMapSet(c.xu, modMap)
	return nil
}

// ReplayPointer lets a click frozen by the synchronous client button grab
// through to the client.
func (c *Conn) ReplayPointer() error {
	return xproto.AllowEventsChecked(c.conn, xproto.AllowReplayPointer, xproto.TimeCurrentTime).Check()
}

// ParseKey resolves a key string such as "Mod4-Shift-Return" against the
// current keyboard mapping.
func (c *Conn) ParseKey(key string) (uint16, []keys.Keycode, error) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	mods, codes, err := keybind.ParseString(c.xu, key)
	if err != nil {
		return 0, nil, err
	}
	out := make([]keys.Keycode, 0, len(codes))
	for _, code := range codes {
		out = append(out, keys.Keycode(code))
	}
	return mods, out, nil
}

func (c *Conn) GrabKey(mods uint16, code keys.Keycode) error {
	return xproto.GrabKeyChecked(c.conn, true, c.root, mods, xproto.Keycode(code),
		xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
}

func (c *Conn) UngrabAllKeys() error {
	return xproto.UngrabKeyChecked(c.conn, xproto.GrabAny, c.root, xproto.ModMaskAny).Check()
}
