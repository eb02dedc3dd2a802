// Package layout computes tiled window geometry. Everything here is a pure
// function of its arguments.
package layout

import "fmt"

type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (r Rect) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", r.X, r.Y, r.W, r.H)
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) Area() int {
	return r.W * r.H
}

func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Gaps are the spacing around and between tiled windows. OuterH is the left
// and right margin, OuterV the top and bottom margin. InnerH separates the
// master column from the stack column, InnerV separates stacked windows.
type Gaps struct {
	Enabled bool
	InnerH  int
	InnerV  int
	OuterH  int
	OuterV  int
}

func (g Gaps) effective() Gaps {
	if !g.Enabled {
		return Gaps{}
	}
	return Gaps{
		Enabled: true,
		InnerH:  max(g.InnerH, 0),
		InnerV:  max(g.InnerV, 0),
		OuterH:  max(g.OuterH, 0),
		OuterV:  max(g.OuterV, 0),
	}
}

// Inner returns area shrunk by the outer gaps.
func (g Gaps) Inner(area Rect) Rect {
	e := g.effective()
	return Rect{
		X: area.X + e.OuterH,
		Y: area.Y + e.OuterV,
		W: area.W - 2*e.OuterH,
		H: area.H - 2*e.OuterV,
	}
}

// Kind is a layout variant.
type Kind int

const (
	KindTile Kind = iota
	KindMonocle
)

var kindNames = [...]string{
	KindTile:    "tile",
	KindMonocle: "monocle",
}

var kindSymbols = [...]string{
	KindTile:    "[]=",
	KindMonocle: "[M]",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Symbol is the short marker shown in the bar.
func (k Kind) Symbol() string {
	if int(k) < len(kindSymbols) {
		return kindSymbols[k]
	}
	return "[?]"
}

// Next cycles through the variants.
func (k Kind) Next() Kind {
	return Kind((int(k) + 1) % len(kindNames))
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}

// Arrange dispatches to the layout function for k.
func Arrange(k Kind, n int, area Rect, mfact float64, gaps Gaps) []Rect {
	switch k {
	case KindMonocle:
		return Monocle(n, area, gaps)
	default:
		return Tile(n, area, mfact, gaps)
	}
}

// Tile is the master-stack layout. The first of n windows gets a column of
// mfact of the width, the rest split the remaining column evenly from top to
// bottom. Rounding leftovers go to the last stacked window so the rectangles
// exactly cover the area minus the gaps.
func Tile(n int, area Rect, mfact float64, gaps Gaps) []Rect {
	if n <= 0 {
		return nil
	}
	g := gaps.effective()
	inner := g.Inner(area)
	if n == 1 {
		return []Rect{inner}
	}

	mw := int(float64(inner.W-g.InnerH) * mfact)
	out := make([]Rect, 0, n)
	out = append(out, Rect{X: inner.X, Y: inner.Y, W: mw, H: inner.H})

	sx := inner.X + mw + g.InnerH
	sw := inner.W - mw - g.InnerH
	return append(out, column(n-1, Rect{X: sx, Y: inner.Y, W: sw, H: inner.H}, g.InnerV)...)
}

// column splits area vertically into n rows separated by gap.
func column(n int, area Rect, gap int) []Rect {
	out := make([]Rect, 0, n)
	y, remaining := area.Y, area.H
	for i := range n {
		left := n - i
		h := (remaining - gap*(left-1)) / left
		if left == 1 {
			h = remaining
		}
		out = append(out, Rect{X: area.X, Y: y, W: area.W, H: h})
		y += h + gap
		remaining -= h + gap
	}
	return out
}

// Monocle gives every window the whole area minus the outer gaps.
func Monocle(n int, area Rect, gaps Gaps) []Rect {
	if n <= 0 {
		return nil
	}
	inner := gaps.Inner(area)
	out := make([]Rect, n)
	for i := range out {
		out[i] = inner
	}
	return out
}
