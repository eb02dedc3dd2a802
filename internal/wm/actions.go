package wm

import (
	"fmt"
	"slices"

	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/tags"
)

// do performs action. Arguments have been validated against the action when
// the keybinding table was built.
func (w *WM) do(action keys.Action, arg keys.Arg) error {
	mon := w.selected()

	switch action {
	case keys.ActionSpawn:
		argv := keys.SpawnArgv(arg)
		if len(argv) == 0 {
			return fmt.Errorf("spawn: empty command")
		}
		if err := w.opts.Spawn(argv); err != nil {
			return fmt.Errorf("spawn %q: %w", argv[0], err)
		}
	case keys.ActionKillClient:
		w.killFocused()
	case keys.ActionToggleGaps:
		mon.GapsOn = !mon.GapsOn
		w.arrange(mon)
	case keys.ActionFocusStack:
		w.focusStack(mon, int(argInt(arg)))
	case keys.ActionViewTag:
		w.viewTag(mon, int(argInt(arg)))
	case keys.ActionMoveToTag:
		if c, ok := w.focusedClient(); ok {
			w.retag(c, tags.Of(int(argInt(arg))))
		}
	case keys.ActionToggleView:
		w.view(mon, mon.Tags.Toggle(int(argInt(arg))))
	case keys.ActionToggleTag:
		if c, ok := w.focusedClient(); ok {
			w.retag(c, c.Tags.Toggle(int(argInt(arg))))
		}
	case keys.ActionToggleFloating:
		w.toggleFloating()
	case keys.ActionSetLayout:
		kind, err := layout.ParseKind(string(arg.(keys.Str)))
		if err != nil {
			return err
		}
		w.setLayout(mon, kind)
	case keys.ActionCycleLayout:
		w.setLayout(mon, mon.Layout.Next())
	case keys.ActionSetMasterFraction:
		f := mon.MFact + float64(argInt(arg))/100
		if f <= 0.05 || f >= 0.95 {
			return nil
		}
		mon.MFact = f
		w.arrange(mon)
	case keys.ActionZoom:
		w.zoom(mon)
	case keys.ActionFocusMonitor:
		w.focusMonitor(int(argInt(arg)))
	case keys.ActionQuit:
		w.setState(StateQuitting, Exit{})
	case keys.ActionRestart:
		w.setState(StateRestarting, Exit{Restart: true})
	case keys.ActionRecompile:
		w.recompile()
	default:
		return fmt.Errorf("unhandled action %s", action)
	}
	return nil
}

func argInt(arg keys.Arg) keys.Int {
	i, _ := arg.(keys.Int)
	return i
}

// killFocused asks the focused client to close. Clients that cannot be asked
// are killed at once, the others after the grace period.
func (w *WM) killFocused() {
	c, ok := w.focusedClient()
	if !ok {
		return
	}
	if !c.SupportsDelete {
		if err := w.display.Kill(c.Window); err != nil {
			w.log.Debug("Failed to kill client", "window", c.Window, "error", err)
		}
		return
	}
	if err := w.display.CloseWindow(c.Window); err != nil {
		w.log.Debug("Failed to close client", "window", c.Window, "error", err)
	}
	if _, pending := w.kills[c.Window]; !pending {
		w.kills[c.Window] = w.opts.Now().Add(w.cfg.KillGrace.Std())
	}
}

// focusStack cycles focus through the visible clients without reordering the
// focus stack.
func (w *WM) focusStack(mon *Monitor, delta int) {
	view := w.FocusStack(mon)
	if len(view) < 2 {
		return
	}
	cur := w.focused
	if !slices.Contains(view, cur) {
		cur = view[0]
	}
	next, ok := mon.Stack.Cycle(cur, delta, func(win Window) bool {
		return slices.Contains(view, win)
	})
	if !ok {
		return
	}
	c, _ := w.registry.Get(next)
	w.focus(c, false)
}

func (w *WM) viewTag(mon *Monitor, i int) {
	if i < 0 || i >= len(w.cfg.Tags) {
		return
	}
	w.view(mon, tags.Of(i))
}

// view shows set on mon. An empty or unchanged set is ignored.
func (w *WM) view(mon *Monitor, set tags.Set) {
	set = set.Mask(len(w.cfg.Tags))
	if set.Empty() || set == mon.Tags {
		return
	}
	mon.Tags = set
	w.arrange(mon)
	if c, ok := w.focusedClient(); !ok || !w.visible(c) || c.Monitor != mon.Index {
		w.focusFirst(mon)
	}
	w.dirty |= dirtyBar | dirtyHints
}

// retag replaces the tags of c. An empty set is ignored.
func (w *WM) retag(c *Client, set tags.Set) {
	set = set.Mask(len(w.cfg.Tags))
	if set.Empty() || set == c.Tags {
		return
	}
	c.setTags(set, c.Tags)
	mon := w.monitors[c.Monitor]
	w.arrange(mon)
	if c.Window == w.focused && !w.visible(c) {
		w.focusFirst(mon)
	}
	w.dirty |= dirtyBar | dirtyHints
}

func (w *WM) toggleFloating() {
	c, ok := w.focusedClient()
	if !ok {
		return
	}
	c.Floating = !c.Floating
	if c.Floating {
		if c.Saved.Area() > 0 {
			c.Geometry = c.Saved
		}
		// The window is still at its tiled rectangle.
		c.placed = false
		w.display.Raise(c.Window)
	} else {
		c.Saved = c.Geometry
	}
	w.arrange(w.monitors[c.Monitor])
}

func (w *WM) setLayout(mon *Monitor, kind layout.Kind) {
	if mon.Layout == kind {
		return
	}
	mon.Layout = kind
	w.arrange(mon)
	w.dirty |= dirtyBar
}

// zoom moves the focused tiled client to the master area, or swaps the
// master with the next tiled client when it already is the master.
func (w *WM) zoom(mon *Monitor) {
	c, ok := w.focusedClient()
	if !ok || c.Floating || c.Monitor != mon.Index {
		return
	}
	tiled := w.tiled(mon)
	if len(tiled) < 2 {
		return
	}
	target := c
	if tiled[0] == c {
		target = tiled[1]
	}
	mon.Clients = slices.DeleteFunc(mon.Clients, func(v Window) bool { return v == target.Window })
	mon.insert(target.Window)
	w.arrange(mon)
	if target != c {
		w.focus(target, true)
	}
}

func (w *WM) focusMonitor(delta int) {
	n := len(w.monitors)
	if n < 2 {
		return
	}
	w.selmon = ((w.selmon+delta)%n + n) % n
	w.focusFirst(w.selected())
}

func (w *WM) recompile() {
	if w.rebuilding {
		w.log.Info("Rebuild already running")
		return
	}
	if w.opts.Rebuilder == nil {
		w.log.Warn("Rebuild not available")
		return
	}
	w.rebuilding = true
	ctx, rebuilder := w.ctx, w.opts.Rebuilder
	go func() {
		w.rebuildC <- rebuilder.Rebuild(ctx)
	}()
}
