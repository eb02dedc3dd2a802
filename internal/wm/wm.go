// Package wm is the window manager core. A single goroutine owns every
// management record and is the only one talking to the display.
package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ItsNotGoodName/xtile/internal/bus"
	"github.com/ItsNotGoodName/xtile/internal/config"
	"github.com/ItsNotGoodName/xtile/internal/core"
	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/rebuild"
	"github.com/ItsNotGoodName/xtile/internal/status"
	"github.com/ItsNotGoodName/xtile/internal/tags"
)

type State int

const (
	StateStarting State = iota
	StateRunning
	StateQuitting
	StateRestarting
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateQuitting:
		return "quitting"
	case StateRestarting:
		return "restarting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Exit is how Run ended. When Restart is set the caller should replace the
// process with Binary, or with itself when Binary is empty.
type Exit struct {
	Restart bool
	Binary  string
}

// Runner executes status commands off the event loop.
type Runner interface {
	Submit(job status.Job) error
	Results() <-chan status.Result
}

type Rebuilder interface {
	Rebuild(ctx context.Context) rebuild.Result
}

type Options struct {
	Runner    Runner
	Rebuilder Rebuilder
	// Notify surfaces rebuild failures to the user.
	Notify func(ctx context.Context, summary, body string) error
	// Spawn starts a detached process.
	Spawn   func(argv []string) error
	Sensors status.Sensors
	Now     func() time.Time
}

type dirty uint8

const (
	dirtyBar dirty = 1 << iota
	dirtyHints
)

type request struct {
	fn   func(w *WM)
	done chan struct{}
}

type WM struct {
	display Display
	cfg     config.Config
	opts    Options
	log     *slog.Logger

	table    *keys.Table
	registry *Registry
	monitors []*Monitor
	selmon   int
	focused  Window
	status   *status.Scheduler
	kills    map[Window]time.Time

	state      State
	exit       Exit
	dirty      dirty
	rebuilding bool
	rebuildC   chan rebuild.Result
	requests   chan request
	hub        *bus.Hub[Snapshot]
	ctx        context.Context
	done       chan struct{}
}

func New(display Display, cfg config.Config, opts Options) *WM {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Spawn == nil {
		opts.Spawn = Spawn
	}
	if opts.Notify == nil {
		opts.Notify = rebuild.Notify
	}
	if opts.Runner == nil {
		opts.Runner = status.NewRunner(cfg.Status.Workers, cfg.Status.Timeout.Std())
	}
	return &WM{
		display:  display,
		cfg:      cfg,
		opts:     opts,
		log:      slog.With("package", "wm"),
		registry: NewRegistry(),
		kills:    make(map[Window]time.Time),
		table:    &keys.Table{},
		rebuildC: make(chan rebuild.Result, 1),
		requests: make(chan request),
		hub:      bus.NewHub[Snapshot](),
		ctx:      context.Background(),
		done:     make(chan struct{}),
	}
}

// Run manages the display until Quit, Restart or a successful Recompile. It
// returns an error only for fatal conditions.
func (w *WM) Run(ctx context.Context) (Exit, error) {
	defer close(w.done)
	w.ctx = ctx

	if err := w.start(); err != nil {
		w.shutdown()
		return Exit{}, err
	}
	w.state = StateRunning
	w.log.Info("Running", "monitors", len(w.monitors), "clients", w.registry.Len(), "keys", w.table.Len())

	var err error
	for w.state == StateRunning {
		if err = w.wait(ctx); err != nil {
			break
		}
		w.flush()
	}

	w.log.Info("Shutting down", "state", w.state)
	if serr := w.shutdown(); serr != nil {
		w.log.Warn("Failed to clean up", "error", serr)
	}
	if err != nil {
		return Exit{}, err
	}
	return w.exit, nil
}

func (w *WM) start() error {
	if err := w.display.BecomeWM(); err != nil {
		return err
	}

	screens, err := w.display.Screens()
	if err != nil {
		return fmt.Errorf("failed to query screens: %w", err)
	}
	if len(screens) == 0 {
		return errors.New("no screens")
	}

	kind, err := layout.ParseKind(w.cfg.Layout.Default)
	if err != nil {
		kind = layout.KindTile
	}
	barHeight := w.display.FontHeight() + 2*w.cfg.Appearance.BarPadding
	for i, screen := range screens {
		mon := &Monitor{
			Index:     i,
			Screen:    screen,
			Tags:      tags.Of(0),
			Layout:    kind,
			MFact:     w.cfg.Layout.MasterFraction,
			GapsOn:    w.cfg.Gaps.Enabled,
			BarHeight: barHeight,
		}
		bar, err := w.display.CreateBar(mon.BarRect())
		if err != nil {
			return fmt.Errorf("failed to create bar: %w", err)
		}
		mon.Bar = bar
		w.monitors = append(w.monitors, mon)
	}

	w.grabKeys()
	w.status = status.New(status.FromConfig(w.cfg.Status.Blocks), w.opts.Sensors, w.opts.Now())
	w.adopt()

	for _, mon := range w.monitors {
		w.arrange(mon)
	}
	w.dirty |= dirtyBar | dirtyHints
	w.flush()
	return nil
}

// adopt manages windows that already exist, such as those left behind by a
// previous instance.
func (w *WM) adopt() {
	windows, err := w.display.TopLevelWindows()
	if err != nil {
		w.log.Warn("Failed to list existing windows", "error", err)
		return
	}
	for _, win := range windows {
		if w.isBar(win) {
			continue
		}
		attrs, err := w.display.Attributes(win)
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || !attrs.Mappable {
			continue
		}
		w.manage(win, true)
	}
}

func (w *WM) grabKeys() {
	var bindings []keys.Binding
	seen := make(map[keys.Combo]string)
	for _, kb := range w.cfg.Keybindings {
		key := w.cfg.ExpandKey(kb.Key)
		action, err := keys.ParseAction(kb.Action)
		if err != nil {
			w.log.Warn("Skipping keybinding", "key", key, "error", err)
			continue
		}
		mods, codes, err := w.display.ParseKey(key)
		if err != nil {
			w.log.Warn("Skipping keybinding", "key", key, "error", err)
			continue
		}
		for _, code := range codes {
			combo := keys.Combo{Mods: keys.CleanMask(mods), Code: code}
			if prev, ok := seen[combo]; ok {
				w.log.Warn("Key bound twice, keeping first", "key", key, "first", prev)
				continue
			}
			seen[combo] = key
			bindings = append(bindings, keys.Binding{Combo: combo, Key: key, Action: action, Arg: kb.Arg})
		}
	}

	table, err := keys.NewTable(bindings)
	if err != nil {
		w.log.Error("Failed to build keybinding table", "error", err)
		table = &keys.Table{}
	}
	w.table = table

	if err := w.display.UngrabAllKeys(); err != nil {
		w.log.Warn("Failed to ungrab keys", "error", err)
	}
	for _, b := range table.Bindings() {
		for _, ignored := range keys.IgnoredMods {
			if err := w.display.GrabKey(b.Mods|ignored, b.Code); err != nil {
				w.log.Warn("Failed to grab key", "key", b.Key, "error", err)
				break
			}
		}
	}
}

// wait blocks for the next event, completion or deadline and handles it.
func (w *WM) wait(ctx context.Context) error {
	var timerC <-chan time.Time
	if deadline := w.deadline(); !deadline.IsZero() {
		timer := time.NewTimer(max(deadline.Sub(w.opts.Now()), 0))
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case <-ctx.Done():
		w.setState(StateQuitting, Exit{})
	case ev, ok := <-w.display.Events():
		if !ok {
			return ErrDisplayClosed
		}
		if err := w.handle(ev); err != nil {
			if errors.Is(err, ErrDisplayClosed) {
				return err
			}
			w.log.Warn("Failed to handle event", "event", eventName(ev), "error", err)
		}
	case res := <-w.opts.Runner.Results():
		if w.status.Complete(res) {
			w.dirty |= dirtyBar
		}
	case res := <-w.rebuildC:
		w.onRebuild(res)
	case req := <-w.requests:
		req.fn(w)
		close(req.done)
	case <-timerC:
		w.tick(w.opts.Now())
	}
	return nil
}

// deadline is the earliest of the next status refresh and kill deadline.
func (w *WM) deadline() time.Time {
	times := make([]time.Time, 0, len(w.kills)+1)
	if next, ok := w.status.Next(); ok {
		times = append(times, next)
	}
	for _, t := range w.kills {
		times = append(times, t)
	}
	return core.Oldest(times...)
}

// tick runs everything due at now.
func (w *WM) tick(now time.Time) {
	for win, deadline := range w.kills {
		if now.Before(deadline) {
			continue
		}
		delete(w.kills, win)
		if _, ok := w.registry.Get(win); !ok {
			continue
		}
		w.log.Info("Client ignored close request, killing", "window", win)
		if err := w.display.Kill(win); err != nil {
			w.log.Debug("Failed to kill client", "window", win, "error", err)
		}
	}

	jobs, changed := w.status.Tick(now)
	for _, job := range jobs {
		if err := w.opts.Runner.Submit(job); err != nil {
			w.status.Complete(status.Result{ID: job.ID, Segment: job.Segment, Err: err})
		}
	}
	if changed {
		w.dirty |= dirtyBar
	}
}

func (w *WM) setState(state State, exit Exit) {
	if w.state != StateRunning && w.state != StateStarting {
		return
	}
	w.state = state
	w.exit = exit
}

func (w *WM) onRebuild(res rebuild.Result) {
	w.rebuilding = false
	switch res.Outcome {
	case rebuild.Success:
		w.log.Info("Rebuild succeeded, restarting", "binary", res.Binary)
		w.setState(StateRestarting, Exit{Restart: true, Binary: res.Binary})
	case rebuild.CompileError:
		w.log.Error("Rebuild failed", "error", res.Message)
		if err := w.opts.Notify(w.ctx, "xtile: compile error", res.Message); err != nil {
			w.log.Warn("Failed to notify", "error", err)
		}
	case rebuild.NoConfigFound:
		w.log.Warn("Rebuild skipped, no configuration found")
	}
}

// flush redraws bars and republishes hints when state changed.
func (w *WM) flush() {
	if w.dirty == 0 {
		return
	}
	if w.dirty&dirtyHints != 0 {
		if err := w.display.PublishHints(w.hints()); err != nil {
			w.log.Debug("Failed to publish hints", "error", err)
		}
	}
	if w.dirty&dirtyBar != 0 {
		for _, mon := range w.monitors {
			w.drawBar(mon)
		}
	}
	w.dirty = 0
	w.hub.Broadcast(w.snapshot())
}

// shutdown releases input, removes the bars, stops timers and puts every
// client back on screen so the next instance can adopt it.
func (w *WM) shutdown() error {
	var errs []error
	if err := w.display.UngrabAllKeys(); err != nil {
		errs = append(errs, err)
	}
	for _, mon := range w.monitors {
		if mon.Bar != 0 {
			if err := w.display.DestroyWindow(mon.Bar); err != nil {
				errs = append(errs, err)
			}
			mon.Bar = 0
		}
	}
	if w.status != nil {
		w.status.Cancel()
	}
	clear(w.kills)
	for _, c := range w.registry.All() {
		if !c.Hidden {
			continue
		}
		c.Hidden = false
		if err := w.display.Configure(c.Window, inner(c.Geometry, c.Border), c.Border); err != nil {
			errs = append(errs, err)
		}
	}
	w.display.Close()
	return errors.Join(errs...)
}

func (w *WM) isBar(win Window) bool {
	for _, mon := range w.monitors {
		if mon.Bar == win {
			return true
		}
	}
	return false
}

func (w *WM) barMonitor(win Window) *Monitor {
	for _, mon := range w.monitors {
		if mon.Bar == win {
			return mon
		}
	}
	return nil
}

// monitorAt returns the monitor holding the center of r.
func (w *WM) monitorAt(r layout.Rect) int {
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	for i, mon := range w.monitors {
		if mon.Screen.Contains(cx, cy) {
			return i
		}
	}
	return w.selmon
}

func (w *WM) selected() *Monitor {
	return w.monitors[w.selmon]
}

func (w *WM) focusedClient() (*Client, bool) {
	if w.focused == 0 {
		return nil, false
	}
	return w.registry.Get(w.focused)
}

func (w *WM) visible(c *Client) bool {
	return c.Tags.Intersects(w.monitors[c.Monitor].Tags)
}

// FocusStack is the visible part of a monitor's focus order.
func (w *WM) FocusStack(mon *Monitor) []Window {
	return mon.Stack.Filter(func(win Window) bool {
		c, ok := w.registry.Get(win)
		return ok && w.visible(c)
	})
}

func (w *WM) hints() Hints {
	h := Hints{
		Clients:        w.registry.Windows(),
		Active:         w.focused,
		CurrentDesktop: max(w.selected().Tags.First(), 0),
		DesktopNames:   w.cfg.Tags,
		Desktops:       make(map[Window]int, w.registry.Len()),
	}
	for _, c := range w.registry.All() {
		h.Desktops[c.Window] = c.Tags.First()
	}
	return h
}

// Subscribe streams snapshots taken after every state change.
func (w *WM) Subscribe(ctx context.Context) (<-chan Snapshot, func()) {
	return w.hub.Subscribe(ctx)
}

// exec runs fn on the event loop goroutine and waits for it.
func (w *WM) exec(ctx context.Context, fn func(w *WM)) error {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrNotRunning
	case w.requests <- req:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-req.done:
		return nil
	}
}

// Snapshot returns the current state. Safe to call from any goroutine while
// Run is active.
func (w *WM) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := w.exec(ctx, func(w *WM) {
		snap = w.snapshot()
	})
	return snap, err
}

// Do runs an action on the event loop. Safe to call from any goroutine while
// Run is active.
func (w *WM) Do(ctx context.Context, action keys.Action, arg keys.Arg) error {
	if err := keys.Validate(action, arg); err != nil {
		return err
	}
	var err error
	if xerr := w.exec(ctx, func(w *WM) {
		err = w.do(action, arg)
	}); xerr != nil {
		return xerr
	}
	return err
}
