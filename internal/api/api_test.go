package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/danielgtaylor/huma/v2/humatest"
)

type call struct {
	action keys.Action
	arg    keys.Arg
}

type fakeController struct {
	mu      sync.Mutex
	snap    wm.Snapshot
	err     error
	calls   []call
	updates chan wm.Snapshot
}

func newFakeController() *fakeController {
	return &fakeController{
		snap: wm.Snapshot{
			State:    "running",
			Focused:  0x400001,
			TagNames: []string{"1", "2", "3"},
		},
		updates: make(chan wm.Snapshot, 4),
	}
}

func (f *fakeController) Snapshot(ctx context.Context) (wm.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.err
}

func (f *fakeController) Do(ctx context.Context, action keys.Action, arg keys.Arg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, call{action, arg})
	return nil
}

func (f *fakeController) Subscribe(ctx context.Context) (<-chan wm.Snapshot, func()) {
	return f.updates, func() {}
}

func newTestAPI(t *testing.T, ctl Controller) humatest.TestAPI {
	_, api := humatest.New(t)
	Register(api, ctl)
	return api
}

func TestGetState(t *testing.T) {
	ctl := newFakeController()
	api := newTestAPI(t, ctl)

	resp := api.Get("/v1/state")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var snap wm.Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.State != "running" || snap.Focused != 0x400001 {
		t.Errorf("expected running snapshot focused on 0x400001, got %+v", snap)
	}
}

func TestGetState_NotRunning(t *testing.T) {
	ctl := newFakeController()
	ctl.err = wm.ErrNotRunning
	api := newTestAPI(t, ctl)

	if resp := api.Get("/v1/state"); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", resp.Code)
	}
}

func TestPostAction(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want call
	}{
		{"none", map[string]any{"action": "zoom"}, call{keys.ActionZoom, keys.None{}}},
		{"int", map[string]any{"action": "view_tag", "arg": 2}, call{keys.ActionViewTag, keys.Int(2)}},
		{"negative", map[string]any{"action": "focus_stack", "arg": -1}, call{keys.ActionFocusStack, keys.Int(-1)}},
		{"string", map[string]any{"action": "set_layout", "arg": "monocle"}, call{keys.ActionSetLayout, keys.Str("monocle")}},
		{"argv", map[string]any{"action": "spawn", "arg": []string{"st", "-e", "htop"}}, call{keys.ActionSpawn, keys.Argv{"st", "-e", "htop"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := newFakeController()
			api := newTestAPI(t, ctl)

			resp := api.Post("/v1/actions", tt.body)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
			}
			if len(ctl.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(ctl.calls))
			}
			got := ctl.calls[0]
			if got.action != tt.want.action || keys.FormatArg(got.arg) != keys.FormatArg(tt.want.arg) {
				t.Errorf("expected %v %s, got %v %s", tt.want.action, keys.FormatArg(tt.want.arg), got.action, keys.FormatArg(got.arg))
			}
		})
	}
}

func TestPostAction_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown action", map[string]any{"action": "fly"}},
		{"fractional", map[string]any{"action": "view_tag", "arg": 1.5}},
		{"wrong shape", map[string]any{"action": "view_tag", "arg": "one"}},
		{"missing arg", map[string]any{"action": "focus_stack"}},
		{"mixed list", map[string]any{"action": "spawn", "arg": []any{"st", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := newFakeController()
			api := newTestAPI(t, ctl)

			resp := api.Post("/v1/actions", tt.body)
			if resp.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected status 422, got %d: %s", resp.Code, resp.Body.String())
			}
			if len(ctl.calls) != 0 {
				t.Errorf("expected no calls, got %d", len(ctl.calls))
			}
		})
	}
}

func TestPostAction_NotRunning(t *testing.T) {
	ctl := newFakeController()
	ctl.err = wm.ErrNotRunning
	api := newTestAPI(t, ctl)

	if resp := api.Post("/v1/actions", map[string]any{"action": "quit"}); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", resp.Code)
	}
}

func TestEvents(t *testing.T) {
	ctl := newFakeController()
	srv := httptest.NewServer(NewRouter(ctl))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	ctl.updates <- wm.Snapshot{State: "shutting_down"}

	var states []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(states) < 2 {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var snap wm.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			t.Fatal(err)
		}
		states = append(states, snap.State)
	}

	if len(states) != 2 || states[0] != "running" || states[1] != "shutting_down" {
		t.Errorf("expected [running shutting_down], got %v", states)
	}
}

func TestDecodeArg(t *testing.T) {
	if _, err := decodeArg(map[string]any{}); err == nil {
		t.Error("expected error for object arg")
	}
	if _, err := decodeArg(float64(1 << 40)); err == nil {
		t.Error("expected error for out of range integer")
	}
	arg, err := decodeArg(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := arg.(keys.None); !ok {
		t.Errorf("expected None, got %T", arg)
	}
}

func TestCheckListen(t *testing.T) {
	tests := []struct {
		addr        string
		allowRemote bool
		ok          bool
	}{
		{"127.0.0.1:8080", false, true},
		{"[::1]:8080", false, true},
		{"localhost:8080", false, true},
		{":8080", false, false},
		{"0.0.0.0:8080", false, false},
		{"192.168.1.10:8080", false, false},
		{"example.com:8080", false, false},
		{"0.0.0.0:8080", true, true},
		{"8080", false, false},
	}
	for _, tt := range tests {
		err := CheckListen(tt.addr, tt.allowRemote)
		if (err == nil) != tt.ok {
			t.Errorf("%s allowRemote=%v: expected ok=%v, got %v", tt.addr, tt.allowRemote, tt.ok, err)
		}
	}
}

func TestNewServer_RejectsRemote(t *testing.T) {
	if _, err := NewServer(":8080", false, newFakeController()); err == nil {
		t.Error("expected error for wildcard listen address")
	}
	if _, err := NewServer("127.0.0.1:0", false, newFakeController()); err != nil {
		t.Errorf("expected loopback address to be accepted, got %v", err)
	}
}
