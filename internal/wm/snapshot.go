package wm

import (
	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/status"
)

type ClientSnapshot struct {
	Window   Window      `json:"window"`
	Monitor  int         `json:"monitor"`
	Tags     []int       `json:"tags"`
	Geometry layout.Rect `json:"geometry"`
	Floating bool        `json:"floating"`
	Urgent   bool        `json:"urgent"`
	Hidden   bool        `json:"hidden"`
	Class    string      `json:"class"`
	Instance string      `json:"instance"`
	Title    string      `json:"title"`
}

type MonitorSnapshot struct {
	Index          int         `json:"index"`
	Screen         layout.Rect `json:"screen"`
	Tags           []int       `json:"tags"`
	Layout         string      `json:"layout"`
	MasterFraction float64     `json:"master_fraction"`
	Gaps           bool        `json:"gaps"`
	Clients        []Window    `json:"clients"`
	FocusStack     []Window    `json:"focus_stack"`
}

// Snapshot is a copy of the window manager state.
type Snapshot struct {
	State           string            `json:"state"`
	Focused         Window            `json:"focused"`
	SelectedMonitor int               `json:"selected_monitor"`
	TagNames        []string          `json:"tag_names"`
	Monitors        []MonitorSnapshot `json:"monitors"`
	Clients         []ClientSnapshot  `json:"clients"`
	Status          []status.Block    `json:"status"`
}

func (w *WM) snapshot() Snapshot {
	snap := Snapshot{
		State:           w.state.String(),
		Focused:         w.focused,
		SelectedMonitor: w.selmon,
		TagNames:        append([]string(nil), w.cfg.Tags...),
		Monitors:        make([]MonitorSnapshot, 0, len(w.monitors)),
		Clients:         make([]ClientSnapshot, 0, w.registry.Len()),
	}
	for _, mon := range w.monitors {
		snap.Monitors = append(snap.Monitors, MonitorSnapshot{
			Index:          mon.Index,
			Screen:         mon.Screen,
			Tags:           mon.Tags.Indices(),
			Layout:         mon.Layout.String(),
			MasterFraction: mon.MFact,
			Gaps:           mon.GapsOn,
			Clients:        append([]Window(nil), mon.Clients...),
			FocusStack:     w.FocusStack(mon),
		})
	}
	for _, c := range w.registry.All() {
		snap.Clients = append(snap.Clients, ClientSnapshot{
			Window:   c.Window,
			Monitor:  c.Monitor,
			Tags:     c.Tags.Indices(),
			Geometry: c.Geometry,
			Floating: c.Floating,
			Urgent:   c.Urgent,
			Hidden:   c.Hidden,
			Class:    c.Class,
			Instance: c.Instance,
			Title:    c.Title,
		})
	}
	if w.status != nil {
		snap.Status = w.status.Compose()
	}
	return snap
}
