package wm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ItsNotGoodName/xtile/internal/config"
	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/rebuild"
	"github.com/ItsNotGoodName/xtile/internal/status"
)

var errGone = errors.New("bad window")

var testKeymap = map[string]keys.Keycode{
	"1": 10, "2": 11, "3": 12, "4": 13, "5": 14, "6": 15, "7": 16, "8": 17, "9": 18,
	"q": 24, "r": 27, "j": 44, "k": 45, "Return": 36,
}

// fakeDisplay records requests and serves a scripted event channel.
type fakeDisplay struct {
	mu sync.Mutex

	screens   []layout.Rect
	events    chan Event
	anotherWM bool
	nextBar   Window

	attrs    map[Window]Attributes
	infos    map[Window]ClientInfo
	toplevel []Window

	grabs          map[keys.Combo]bool
	ungrabs        int
	keymaps        int
	replays        int
	configured     map[Window]layout.Rect
	configureCalls int
	mapped         map[Window]bool
	focused        Window
	borders        map[Window]uint32
	closeRequests  []Window
	killed         []Window
	notified       []Window
	unmanaged      []ConfigureRequest
	bars           map[Window]layout.Rect
	destroyed      []Window
	left, right    map[Window][]Cell
	hints          Hints
	closed         bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		screens:    []layout.Rect{{X: 0, Y: 0, W: 1200, H: 820}},
		events:     make(chan Event, 16),
		nextBar:    0x1000,
		attrs:      make(map[Window]Attributes),
		infos:      make(map[Window]ClientInfo),
		grabs:      make(map[keys.Combo]bool),
		configured: make(map[Window]layout.Rect),
		mapped:     make(map[Window]bool),
		borders:    make(map[Window]uint32),
		bars:       make(map[Window]layout.Rect),
		left:       make(map[Window][]Cell),
		right:      make(map[Window][]Cell),
	}
}

// addWindow registers a normal window the test can map.
func (d *fakeDisplay) addWindow(win Window, info ClientInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if info.Geometry.W == 0 {
		info.Geometry = layout.Rect{X: 10, Y: 30, W: 300, H: 200}
	}
	d.attrs[win] = Attributes{Mappable: true}
	d.infos[win] = info
}

func (d *fakeDisplay) Root() Window { return 1 }

func (d *fakeDisplay) Screens() ([]layout.Rect, error) { return d.screens, nil }

func (d *fakeDisplay) BecomeWM() error {
	if d.anotherWM {
		return ErrAnotherWM
	}
	return nil
}

func (d *fakeDisplay) Events() <-chan Event { return d.events }

func (d *fakeDisplay) ParseKey(key string) (uint16, []keys.Keycode, error) {
	mods, name, err := keys.SplitKey(key)
	if err != nil {
		return 0, nil, err
	}
	code, ok := testKeymap[name]
	if !ok {
		return 0, nil, fmt.Errorf("no keycode for %s", name)
	}
	return mods, []keys.Keycode{code}, nil
}

func (d *fakeDisplay) GrabKey(mods uint16, code keys.Keycode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grabs[keys.Combo{Mods: mods, Code: code}] = true
	return nil
}

func (d *fakeDisplay) UngrabAllKeys() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ungrabs++
	clear(d.grabs)
	return nil
}

func (d *fakeDisplay) RefreshKeymap() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keymaps++
	return nil
}

func (d *fakeDisplay) ReplayPointer() error {
	d.replays++
	return nil
}

func (d *fakeDisplay) TopLevelWindows() ([]Window, error) { return d.toplevel, nil }

func (d *fakeDisplay) Attributes(w Window) (Attributes, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.attrs[w]
	if !ok {
		return Attributes{}, errGone
	}
	return a, nil
}

func (d *fakeDisplay) ClientInfo(w Window) (ClientInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	info, ok := d.infos[w]
	if !ok {
		return ClientInfo{}, errGone
	}
	return info, nil
}

func (d *fakeDisplay) Manage(w Window) error { return nil }

func (d *fakeDisplay) Map(w Window) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mapped[w] = true
	return nil
}

func (d *fakeDisplay) Configure(w Window, r layout.Rect, border int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.configured[w] = r
	d.configureCalls++
	return nil
}

func (d *fakeDisplay) ConfigureUnmanaged(req ConfigureRequest) error {
	d.unmanaged = append(d.unmanaged, req)
	return nil
}

func (d *fakeDisplay) SendConfigureNotify(w Window, r layout.Rect, border int) error {
	d.notified = append(d.notified, w)
	return nil
}

func (d *fakeDisplay) Raise(w Window) error { return nil }

func (d *fakeDisplay) SetBorderColor(w Window, color uint32) error {
	d.borders[w] = color
	return nil
}

func (d *fakeDisplay) Focus(w Window) error {
	d.focused = w
	return nil
}

func (d *fakeDisplay) FocusRoot() error {
	d.focused = d.Root()
	return nil
}

func (d *fakeDisplay) CloseWindow(w Window) error {
	d.closeRequests = append(d.closeRequests, w)
	return nil
}

func (d *fakeDisplay) Kill(w Window) error {
	d.killed = append(d.killed, w)
	return nil
}

func (d *fakeDisplay) CreateBar(r layout.Rect) (Window, error) {
	d.nextBar++
	d.bars[d.nextBar] = r
	return d.nextBar, nil
}

func (d *fakeDisplay) DrawBar(bar Window, width int, left, right []Cell) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.left[bar] = left
	d.right[bar] = right
	return nil
}

func (d *fakeDisplay) DestroyWindow(w Window) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = append(d.destroyed, w)
	return nil
}

func (d *fakeDisplay) TextWidth(s string) int { return 6 * utf8.RuneCountInString(s) }

func (d *fakeDisplay) FontHeight() int { return 12 }

func (d *fakeDisplay) PublishHints(h Hints) error {
	d.hints = h
	return nil
}

func (d *fakeDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

type fakeRunner struct {
	jobs    []status.Job
	full    bool
	results chan status.Result
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(chan status.Result, 8)}
}

func (r *fakeRunner) Submit(job status.Job) error {
	r.jobs = append(r.jobs, job)
	if r.full {
		return status.ErrQueueFull
	}
	return nil
}

func (r *fakeRunner) Results() <-chan status.Result { return r.results }

type fakeRebuilder struct {
	result rebuild.Result
}

func (r fakeRebuilder) Rebuild(ctx context.Context) rebuild.Result { return r.result }

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

type harness struct {
	wm      *WM
	display *fakeDisplay
	runner  *fakeRunner
	clock   *clock
	spawned [][]string
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Appearance.BorderWidth = 0
	cfg.Gaps.Enabled = false
	cfg.Status.Blocks = nil
	cfg.Rules = nil
	return cfg
}

// newHarness starts a window manager on a fake display without running the
// event loop.
func newHarness(t *testing.T, mod func(cfg *config.Config, d *fakeDisplay)) *harness {
	t.Helper()
	cfg := testConfig()
	d := newFakeDisplay()
	if mod != nil {
		mod(&cfg, d)
	}

	h := &harness{
		display: d,
		runner:  newFakeRunner(),
		clock:   &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.wm = New(d, cfg, Options{
		Runner: h.runner,
		Now:    h.clock.Now,
		Spawn: func(argv []string) error {
			h.spawned = append(h.spawned, argv)
			return nil
		},
		Notify: func(context.Context, string, string) error { return nil },
		Sensors: status.Sensors{
			Memory:  func() (status.MemInfo, error) { return status.MemInfo{}, errGone },
			Battery: func(string) (status.BatteryInfo, error) { return status.BatteryInfo{}, errGone },
		},
	})
	if err := h.wm.start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	h.wm.state = StateRunning
	return h
}

// mapWindow registers win on the display and delivers its map request.
func (h *harness) mapWindow(t *testing.T, win Window, info ClientInfo) {
	t.Helper()
	h.display.addWindow(win, info)
	h.handle(t, MapRequest{Window: win})
	if _, ok := h.wm.registry.Get(win); !ok {
		t.Fatalf("expected %s to be managed", win)
	}
}

func (h *harness) handle(t *testing.T, ev Event) {
	t.Helper()
	if err := h.wm.handle(ev); err != nil {
		t.Fatalf("unexpected error handling %s: %v", eventName(ev), err)
	}
	h.wm.flush()
}

func (h *harness) do(t *testing.T, action keys.Action, arg keys.Arg) {
	t.Helper()
	if err := h.wm.do(action, arg); err != nil {
		t.Fatalf("unexpected error for %s: %v", action, err)
	}
	h.wm.flush()
}

func (h *harness) mon() *Monitor {
	return h.wm.monitors[0]
}

func (h *harness) client(t *testing.T, win Window) *Client {
	t.Helper()
	c, ok := h.wm.registry.Get(win)
	if !ok {
		t.Fatalf("expected %s to be managed", win)
	}
	return c
}
