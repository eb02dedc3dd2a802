package wm

import (
	"strings"

	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/tags"
)

// handle dispatches one event. Errors are logged by the caller and never
// stop the loop.
func (w *WM) handle(ev Event) error {
	w.log.Debug("Event", "event", eventName(ev))

	switch e := ev.(type) {
	case MapRequest:
		return w.onMapRequest(e)
	case UnmapNotify:
		w.unmanage(e.Window)
	case DestroyNotify:
		w.unmanage(e.Window)
	case ConfigureRequest:
		return w.onConfigureRequest(e)
	case KeyPress:
		b, ok := w.table.Lookup(e.State, e.Code)
		if !ok {
			return nil
		}
		w.log.Debug("Key", "binding", b.String())
		return w.do(b.Action, b.Arg)
	case EnterNotify:
		w.onEnter(e)
	case ButtonPress:
		w.onButton(e)
	case Expose:
		if e.Count == 0 && w.isBar(e.Window) {
			w.dirty |= dirtyBar
		}
	case PropertyNotify:
		w.onProperty(e)
	case MappingNotify:
		if err := w.display.RefreshKeymap(); err != nil {
			w.log.Warn("Failed to refresh keymap", "error", err)
		}
		w.grabKeys()
	case DisplayError:
		w.log.Debug("Display error", "error", e.Err)
	default:
		w.log.Warn("Unexpected event", "event", eventName(ev))
	}
	return nil
}

func (w *WM) onMapRequest(e MapRequest) error {
	if _, ok := w.registry.Get(e.Window); ok || w.isBar(e.Window) {
		return nil
	}
	attrs, err := w.display.Attributes(e.Window)
	if err != nil {
		// The window is already gone.
		w.log.Debug("Ignoring map request", "window", e.Window, "error", err)
		return nil
	}
	if attrs.OverrideRedirect {
		return nil
	}
	w.manage(e.Window, false)
	return nil
}

// manage creates the management record for win and shows it.
func (w *WM) manage(win Window, adopted bool) {
	info, err := w.display.ClientInfo(win)
	if err != nil {
		w.log.Debug("Failed to read client, not managing", "window", win, "error", err)
		return
	}

	monIdx := w.selmon
	if adopted {
		monIdx = w.monitorAt(info.Geometry)
	}
	c := &Client{
		Window:         win,
		Monitor:        monIdx,
		Border:         w.cfg.Appearance.BorderWidth,
		Floating:       info.FixedSize,
		FixedSize:      info.FixedSize,
		Urgent:         info.Urgent,
		SupportsDelete: info.SupportsDelete,
		Class:          info.Class,
		Instance:       info.Instance,
		Title:          info.Title,
	}
	c.Geometry = layout.Rect{
		X: info.Geometry.X,
		Y: info.Geometry.Y,
		W: info.Geometry.W + 2*c.Border,
		H: info.Geometry.H + 2*c.Border,
	}
	tagSet := w.monitors[monIdx].Tags

	if parent, ok := w.registry.Get(info.TransientFor); ok {
		c.Floating = true
		c.Monitor = parent.Monitor
		tagSet = parent.Tags
	}

	ruleTags := w.applyRules(c)
	if !ruleTags.Empty() {
		tagSet = ruleTags
	}
	c.setTags(tagSet.Mask(len(w.cfg.Tags)), w.monitors[c.Monitor].Tags)

	mon := w.monitors[c.Monitor]
	if c.Floating {
		c.Geometry = clampInto(c.Geometry, mon.Area())
	}
	c.Saved = c.Geometry

	w.registry.Add(c)
	mon.insert(win)
	if c.NoFocus {
		mon.Stack.Append(win)
	} else {
		mon.Stack.Push(win)
	}

	if err := w.display.Manage(win); err != nil {
		w.log.Debug("Failed to select client events", "window", win, "error", err)
	}
	w.display.SetBorderColor(win, uint32(w.cfg.Appearance.BorderUnfocused))
	if err := w.display.Map(win); err != nil {
		w.log.Debug("Failed to map client", "window", win, "error", err)
	}

	w.log.Debug("Managing", "window", win, "class", c.Class, "tags", c.Tags, "floating", c.Floating, "adopted", adopted)
	w.arrange(mon)
	if !c.NoFocus && w.visible(c) {
		w.focus(c, true)
	}
	w.dirty |= dirtyBar | dirtyHints
}

// applyRules applies matching window rules and returns the tags they assign.
func (w *WM) applyRules(c *Client) tags.Set {
	var set tags.Set
	for _, r := range w.cfg.Rules {
		if r.Class != "" && !strings.Contains(c.Class, r.Class) {
			continue
		}
		if r.Instance != "" && !strings.Contains(c.Instance, r.Instance) {
			continue
		}
		if r.Title != "" && !strings.Contains(c.Title, r.Title) {
			continue
		}
		for _, t := range r.Tags {
			set = set.Union(tags.Of(t))
		}
		c.Floating = c.Floating || r.Floating
		c.NoFocus = c.NoFocus || r.NoFocus
	}
	return set
}

// unmanage drops the record of win, if any, and moves focus along.
func (w *WM) unmanage(win Window) {
	c, ok := w.registry.Remove(win)
	if !ok {
		return
	}
	delete(w.kills, win)
	for _, mon := range w.monitors {
		mon.remove(win)
	}
	w.log.Debug("Unmanaged", "window", win)

	mon := w.monitors[c.Monitor]
	if w.focused == win {
		w.focused = 0
		w.focusFirst(mon)
	}
	w.arrange(mon)
	w.dirty |= dirtyBar | dirtyHints
}

func (w *WM) onConfigureRequest(e ConfigureRequest) error {
	c, ok := w.registry.Get(e.Window)
	if !ok {
		return w.display.ConfigureUnmanaged(e)
	}

	if !c.Floating {
		// Tiling decides the geometry, so only confirm the current one.
		return w.display.SendConfigureNotify(c.Window, inner(c.Geometry, c.Border), c.Border)
	}

	g := c.Geometry
	if e.ValueMask&ConfigX != 0 {
		g.X = e.Rect.X
	}
	if e.ValueMask&ConfigY != 0 {
		g.Y = e.Rect.Y
	}
	if e.ValueMask&ConfigWidth != 0 {
		g.W = e.Rect.W + 2*c.Border
	}
	if e.ValueMask&ConfigHeight != 0 {
		g.H = e.Rect.H + 2*c.Border
	}
	c.Geometry = g
	c.Saved = g

	if c.Hidden {
		return w.display.SendConfigureNotify(c.Window, inner(c.Geometry, c.Border), c.Border)
	}
	return w.display.Configure(c.Window, inner(c.Geometry, c.Border), c.Border)
}

func (w *WM) onEnter(e EnterNotify) {
	if !w.cfg.FocusFollowsMouse || e.Window == w.focused {
		return
	}
	c, ok := w.registry.Get(e.Window)
	if !ok || !w.visible(c) {
		return
	}
	w.focus(c, true)
}

func (w *WM) onButton(e ButtonPress) {
	if mon := w.barMonitor(e.Window); mon != nil {
		w.selmon = mon.Index
		if i, ok := mon.tagAt(e.X); ok {
			w.viewTag(mon, i)
		}
		return
	}
	if c, ok := w.registry.Get(e.Window); ok && e.Window != w.focused {
		w.focus(c, true)
	}
	if err := w.display.ReplayPointer(); err != nil {
		w.log.Debug("Failed to replay pointer", "error", err)
	}
}

func (w *WM) onProperty(e PropertyNotify) {
	c, ok := w.registry.Get(e.Window)
	if !ok || e.Property == PropertyOther {
		return
	}
	info, err := w.display.ClientInfo(e.Window)
	if err != nil {
		return
	}

	switch e.Property {
	case PropertyTitle:
		c.Title = info.Title
		if c.Window == w.focused {
			w.dirty |= dirtyBar
		}
	case PropertyHints:
		urgent := info.Urgent && c.Window != w.focused
		if urgent != c.Urgent {
			c.Urgent = urgent
			w.dirty |= dirtyBar
		}
	case PropertyNormalHints:
		c.FixedSize = info.FixedSize
		if c.FixedSize && !c.Floating {
			c.Floating = true
			w.arrange(w.monitors[c.Monitor])
		}
	case PropertyTransientFor:
		if _, ok := w.registry.Get(info.TransientFor); ok && !c.Floating {
			c.Floating = true
			w.arrange(w.monitors[c.Monitor])
		}
	}
}

// focus gives input focus to c. promote moves c to the front of the focus
// order.
func (w *WM) focus(c *Client, promote bool) {
	if w.focused != 0 && w.focused != c.Window {
		w.display.SetBorderColor(w.focused, uint32(w.cfg.Appearance.BorderUnfocused))
	}
	w.focused = c.Window
	w.selmon = c.Monitor
	if promote {
		w.monitors[c.Monitor].Stack.Push(c.Window)
	}
	c.Urgent = false

	w.display.SetBorderColor(c.Window, uint32(w.cfg.Appearance.BorderFocused))
	if err := w.display.Focus(c.Window); err != nil {
		w.log.Debug("Failed to focus", "window", c.Window, "error", err)
	}
	if c.Floating || w.monitors[c.Monitor].Layout == layout.KindMonocle {
		w.display.Raise(c.Window)
	}
	w.dirty |= dirtyBar | dirtyHints
}

// unfocus gives focus back to the root window.
func (w *WM) unfocus() {
	if w.focused != 0 {
		w.display.SetBorderColor(w.focused, uint32(w.cfg.Appearance.BorderUnfocused))
	}
	w.focused = 0
	w.display.FocusRoot()
	w.dirty |= dirtyBar | dirtyHints
}

// focusFirst focuses the most recent visible client of mon, or nothing.
func (w *WM) focusFirst(mon *Monitor) {
	if view := w.FocusStack(mon); len(view) > 0 {
		c, _ := w.registry.Get(view[0])
		w.focus(c, true)
		return
	}
	w.unfocus()
}
