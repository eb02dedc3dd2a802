package xwm

import (
	"fmt"
	"unicode/utf8"

	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/jezek/xgb/xproto"
)

const (
	underlineHeight = 2
	// maxChars is the longest string a single ImageText16 request takes.
	maxChars = 255
)

type fontInfo struct {
	id      xproto.Font
	ascent  int
	descent int
}

func (f fontInfo) height() int {
	return f.ascent + f.descent
}

type barWindow struct {
	rect layout.Rect
}

// openFont loads a core X font and the graphics context all bars draw with.
func (c *Conn) openFont(name string) error {
	id, err := xproto.NewFontId(c.conn)
	if err != nil {
		return err
	}
	if err := xproto.OpenFontChecked(c.conn, id, uint16(len(name)), name).Check(); err != nil {
		if name == "fixed" {
			return fmt.Errorf("failed to open font %q: %w", name, err)
		}
		c.log.Warn("Failed to open font, using fixed", "font", name, "error", err)
		return c.openFont("fixed")
	}
	reply, err := xproto.QueryFont(c.conn, xproto.Fontable(id)).Reply()
	if err != nil {
		return err
	}
	c.font = fontInfo{id: id, ascent: int(reply.FontAscent), descent: int(reply.FontDescent)}

	gc, err := xproto.NewGcontextId(c.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateGCChecked(c.conn, gc, xproto.Drawable(c.root), xproto.GcFont, []uint32{uint32(id)}).Check(); err != nil {
		return err
	}
	c.gc = gc
	return nil
}

func (c *Conn) FontHeight() int {
	return c.font.height()
}

// chars converts s for the 16-bit core text requests. Runes outside the basic
// multilingual plane have no core font glyph and become '?'.
func chars(s string) []xproto.Char2b {
	out := make([]xproto.Char2b, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		if r > 0xffff {
			r = '?'
		}
		out = append(out, xproto.Char2b{Byte1: byte(r >> 8), Byte2: byte(r)})
		if len(out) == maxChars {
			break
		}
	}
	return out
}

// TextWidth measures s in the bar font. Results are cached since bars are
// redrawn with mostly the same strings.
func (c *Conn) TextWidth(s string) int {
	if w, ok := c.widths[s]; ok {
		return w
	}
	text := chars(s)
	reply, err := xproto.QueryTextExtents(c.conn, xproto.Fontable(c.font.id), text, uint16(len(text))).Reply()
	if err != nil {
		c.log.Debug("Failed to measure text", "error", err)
		return 0
	}
	w := int(reply.OverallWidth)
	if len(c.widths) > 1024 {
		clear(c.widths)
	}
	c.widths[s] = w
	return w
}

func (c *Conn) CreateBar(r layout.Rect) (wm.Window, error) {
	wid, err := xproto.NewWindowId(c.conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.CreateWindowChecked(c.conn, c.screen.RootDepth,
		wid, c.root,
		int16(r.X), int16(r.Y), uint16(r.W), uint16(r.H), 0,
		xproto.WindowClassInputOutput, c.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask, // 1, 2, 3
		[]uint32{
			c.screen.BlackPixel, // 1
			1,                   // 2
			xproto.EventMaskExposure | xproto.EventMaskButtonPress, // 3
		}).Check(); err != nil {
		return 0, err
	}

	if err := xproto.MapWindowChecked(c.conn, wid).Check(); err != nil {
		xproto.DestroyWindow(c.conn, wid)
		return 0, err
	}

	bar := wm.Window(wid)
	c.bars[bar] = barWindow{rect: r}
	return bar, nil
}

// DrawBar renders left cells from the left edge and right cells against the
// right edge onto a pixmap, then copies it to the bar in one request.
func (c *Conn) DrawBar(bar wm.Window, width int, left, right []wm.Cell) error {
	b, ok := c.bars[bar]
	if !ok {
		return fmt.Errorf("unknown bar %s", bar)
	}
	height := b.rect.H
	width = max(width, 1)

	pix, err := xproto.NewPixmapId(c.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreatePixmapChecked(c.conn, c.screen.RootDepth, pix, xproto.Drawable(bar), uint16(width), uint16(height)).Check(); err != nil {
		return err
	}
	defer xproto.FreePixmap(c.conn, pix)
	d := xproto.Drawable(pix)

	var background uint32
	if len(left) > 0 {
		background = left[len(left)-1].Background
	}
	c.fill(d, background, 0, 0, width, height)

	x := 0
	for _, cell := range left {
		x += c.drawCell(d, cell, x, height)
	}

	rightWidth := 0
	for _, cell := range right {
		rightWidth += c.TextWidth(cell.Text)
	}
	x = max(width-rightWidth, x)
	for _, cell := range right {
		x += c.drawCell(d, cell, x, height)
	}

	return xproto.CopyAreaChecked(c.conn, d, xproto.Drawable(bar), c.gc, 0, 0, 0, 0, uint16(width), uint16(height)).Check()
}

func (c *Conn) fill(d xproto.Drawable, color uint32, x, y, w, h int) {
	xproto.ChangeGC(c.conn, c.gc, xproto.GcForeground, []uint32{color})
	xproto.PolyFillRectangle(c.conn, d, c.gc, []xproto.Rectangle{{
		X: int16(x), Y: int16(y), Width: uint16(w), Height: uint16(h),
	}})
}

func (c *Conn) drawCell(d xproto.Drawable, cell wm.Cell, x, height int) int {
	w := c.TextWidth(cell.Text)
	if w == 0 {
		return 0
	}
	c.fill(d, cell.Background, x, 0, w, height)

	text := chars(cell.Text)
	baseline := (height-c.font.height())/2 + c.font.ascent
	xproto.ChangeGC(c.conn, c.gc, xproto.GcForeground|xproto.GcBackground, []uint32{cell.Foreground, cell.Background})
	xproto.ImageText16(c.conn, byte(len(text)), d, c.gc, int16(x), int16(baseline), text)

	if cell.Underline {
		c.fill(d, cell.UnderlineColor, x, height-underlineHeight, w, underlineHeight)
	}
	return w
}
