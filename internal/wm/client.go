package wm

import (
	"slices"

	"github.com/ItsNotGoodName/xtile/internal/focus"
	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/tags"
)

// Client is the management record of a top-level window.
type Client struct {
	Window  Window
	Monitor int
	Tags    tags.Set
	// Geometry is the outer rectangle, border included.
	Geometry layout.Rect
	Border   int
	// Saved is the floating geometry while the client is tiled.
	Saved layout.Rect

	Floating       bool
	Urgent         bool
	FixedSize      bool
	NoFocus        bool
	SupportsDelete bool
	// Hidden is set while parked off-screen on a tag that is not visible.
	Hidden bool
	placed bool

	Class    string
	Instance string
	Title    string
}

// setTags assigns t, or fallback when t is empty. A client always belongs to
// at least one tag.
func (c *Client) setTags(t, fallback tags.Set) {
	if t.Empty() {
		t = fallback
	}
	c.Tags = t
}

// Registry owns the management records, in the order they were created.
type Registry struct {
	clients map[Window]*Client
	order   []Window
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[Window]*Client)}
}

func (r *Registry) Add(c *Client) {
	if _, ok := r.clients[c.Window]; !ok {
		r.order = append(r.order, c.Window)
	}
	r.clients[c.Window] = c
}

func (r *Registry) Get(w Window) (*Client, bool) {
	c, ok := r.clients[w]
	return c, ok
}

func (r *Registry) Remove(w Window) (*Client, bool) {
	c, ok := r.clients[w]
	if !ok {
		return nil, false
	}
	delete(r.clients, w)
	r.order = slices.DeleteFunc(r.order, func(v Window) bool { return v == w })
	return c, true
}

func (r *Registry) Len() int {
	return len(r.clients)
}

// All returns every client in creation order.
func (r *Registry) All() []*Client {
	out := make([]*Client, 0, len(r.order))
	for _, w := range r.order {
		out = append(out, r.clients[w])
	}
	return out
}

func (r *Registry) Windows() []Window {
	return slices.Clone(r.order)
}

// Monitor is one physical output.
type Monitor struct {
	Index  int
	Screen layout.Rect
	// Tags is the visible set. It is never empty.
	Tags tags.Set
	// Clients is the layout order, newest first.
	Clients []Window
	// Stack holds every client of the monitor most recently focused first.
	// The focus stack proper is its visible part.
	Stack  focus.Stack[Window]
	Layout layout.Kind
	MFact  float64
	GapsOn bool

	Bar       Window
	BarHeight int
	tagCells  []span
}

type span struct {
	x0, x1 int
}

// Area is the part of the screen left to clients.
func (m *Monitor) Area() layout.Rect {
	return layout.Rect{
		X: m.Screen.X,
		Y: m.Screen.Y + m.BarHeight,
		W: m.Screen.W,
		H: max(m.Screen.H-m.BarHeight, 1),
	}
}

func (m *Monitor) BarRect() layout.Rect {
	return layout.Rect{X: m.Screen.X, Y: m.Screen.Y, W: m.Screen.W, H: m.BarHeight}
}

func (m *Monitor) insert(w Window) {
	m.Clients = slices.Insert(m.Clients, 0, w)
}

func (m *Monitor) remove(w Window) {
	m.Clients = slices.DeleteFunc(m.Clients, func(v Window) bool { return v == w })
	m.Stack.Remove(w)
}

// tagAt returns the tag cell under bar coordinate x.
func (m *Monitor) tagAt(x int) (int, bool) {
	for i, s := range m.tagCells {
		if x >= s.x0 && x < s.x1 {
			return i, true
		}
	}
	return 0, false
}
