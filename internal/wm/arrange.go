package wm

import (
	"github.com/ItsNotGoodName/xtile/internal/layout"
)

// inner is the window rectangle inside a border of width b.
func inner(r layout.Rect, b int) layout.Rect {
	return layout.Rect{
		X: r.X,
		Y: r.Y,
		W: max(r.W-2*b, 1),
		H: max(r.H-2*b, 1),
	}
}

// clampInto moves r so it lies within area where possible.
func clampInto(r layout.Rect, area layout.Rect) layout.Rect {
	if r.W > area.W {
		r.W = area.W
	}
	if r.H > area.H {
		r.H = area.H
	}
	if r.X+r.W > area.X+area.W {
		r.X = area.X + area.W - r.W
	}
	if r.Y+r.H > area.Y+area.H {
		r.Y = area.Y + area.H - r.H
	}
	r.X = max(r.X, area.X)
	r.Y = max(r.Y, area.Y)
	return r
}

func (w *WM) gaps(mon *Monitor) layout.Gaps {
	g := w.cfg.Gaps
	return layout.Gaps{
		Enabled: mon.GapsOn,
		InnerH:  g.InnerHorizontal,
		InnerV:  g.InnerVertical,
		OuterH:  g.OuterHorizontal,
		OuterV:  g.OuterVertical,
	}
}

// tiled returns the visible non-floating clients of mon in layout order.
func (w *WM) tiled(mon *Monitor) []*Client {
	var out []*Client
	for _, win := range mon.Clients {
		c, ok := w.registry.Get(win)
		if ok && !c.Floating && w.visible(c) {
			out = append(out, c)
		}
	}
	return out
}

// arrange places every client of mon: tiled clients through the layout,
// floating clients at their own geometry, hidden clients off-screen.
func (w *WM) arrange(mon *Monitor) {
	tiled := w.tiled(mon)
	rects := layout.Arrange(mon.Layout, len(tiled), mon.Area(), mon.MFact, w.gaps(mon))
	for i, c := range tiled {
		w.place(c, rects[i])
	}

	for _, win := range mon.Clients {
		c, ok := w.registry.Get(win)
		if !ok {
			continue
		}
		switch {
		case !w.visible(c):
			w.hide(c)
		case c.Floating:
			w.place(c, c.Geometry)
			w.display.Raise(c.Window)
		}
	}

	if mon.Layout == layout.KindMonocle {
		if c, ok := w.focusedClient(); ok && c.Monitor == mon.Index && w.visible(c) {
			w.display.Raise(c.Window)
		}
	}
}

// place configures c at the outer rectangle r unless it is already there.
func (w *WM) place(c *Client, r layout.Rect) {
	if c.Geometry == r && !c.Hidden && c.placed {
		return
	}
	c.Geometry = r
	c.Hidden = false
	c.placed = true
	if err := w.display.Configure(c.Window, inner(r, c.Border), c.Border); err != nil {
		w.log.Debug("Failed to configure client", "window", c.Window, "error", err)
	}
}

// hide parks c off-screen, keeping its geometry for when it is shown again.
// The window stays mapped, so an unmap always comes from the client.
func (w *WM) hide(c *Client) {
	if c.Hidden {
		return
	}
	c.Hidden = true
	parked := inner(c.Geometry, c.Border)
	parked.X = -2 * (c.Geometry.W + w.monitors[c.Monitor].Screen.X + w.monitors[c.Monitor].Screen.W)
	if err := w.display.Configure(c.Window, parked, c.Border); err != nil {
		w.log.Debug("Failed to hide client", "window", c.Window, "error", err)
	}
}
