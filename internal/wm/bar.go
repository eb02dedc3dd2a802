package wm

import (
	"github.com/ItsNotGoodName/xtile/internal/config"
)

func schemeCell(text string, s config.Scheme, underline bool) Cell {
	return Cell{
		Text:           text,
		Foreground:     uint32(s.Foreground),
		Background:     uint32(s.Background),
		Underline:      underline,
		UnderlineColor: uint32(s.Underline),
	}
}

// barCells lays out one bar: tag cells, the layout symbol and the focused
// title on the left, status blocks on the right.
func (w *WM) barCells(mon *Monitor) (left, right []Cell) {
	schemes := w.cfg.Schemes

	var occupied, urgent uint32
	for _, win := range mon.Clients {
		c, ok := w.registry.Get(win)
		if !ok {
			continue
		}
		occupied |= uint32(c.Tags)
		if c.Urgent {
			urgent |= uint32(c.Tags)
		}
	}

	mon.tagCells = mon.tagCells[:0]
	x := 0
	for i, label := range w.cfg.Tags {
		bit := uint32(1) << i
		scheme := schemes.Normal
		switch {
		case urgent&bit != 0:
			scheme = schemes.Urgent
		case mon.Tags.Has(i):
			scheme = schemes.Selected
		case occupied&bit != 0:
			scheme = schemes.Occupied
		}
		cell := schemeCell(" "+label+" ", scheme, occupied&bit != 0)
		width := w.display.TextWidth(cell.Text)
		mon.tagCells = append(mon.tagCells, span{x0: x, x1: x + width})
		x += width
		left = append(left, cell)
	}

	left = append(left, schemeCell(" "+mon.Layout.Symbol()+" ", schemes.Normal, false))
	if c, ok := w.focusedClient(); ok && c.Monitor == mon.Index {
		left = append(left, schemeCell(" "+c.Title, schemes.Normal, false))
	}

	for _, block := range w.status.Compose() {
		right = append(right, Cell{
			Text:           block.Text,
			Foreground:     block.Color,
			Background:     uint32(schemes.Normal.Background),
			Underline:      block.Underline,
			UnderlineColor: block.Color,
		})
	}
	return left, right
}

func (w *WM) drawBar(mon *Monitor) {
	if mon.Bar == 0 {
		return
	}
	left, right := w.barCells(mon)
	if err := w.display.DrawBar(mon.Bar, mon.Screen.W, left, right); err != nil {
		w.log.Debug("Failed to draw bar", "monitor", mon.Index, "error", err)
	}
}
