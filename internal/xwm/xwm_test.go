package xwm

import (
	"testing"

	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/wm"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/icccm"
)

func TestChars(t *testing.T) {
	got := chars("aé\U000f035b")
	want := []xproto.Char2b{{Byte1: 0, Byte2: 'a'}, {Byte1: 0, Byte2: 0xe9}, {Byte1: 0, Byte2: '?'}}
	if len(got) != len(want) {
		t.Fatalf("expected %d chars, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v at %d, got %v", want[i], i, got[i])
		}
	}

	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	if n := len(chars(string(long))); n != maxChars {
		t.Errorf("expected %d chars, got %d", maxChars, n)
	}
}

func TestFixedSize(t *testing.T) {
	both := uint(icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize)
	tests := []struct {
		name  string
		hints icccm.NormalHints
		want  bool
	}{
		{"fixed", icccm.NormalHints{Flags: both, MinWidth: 100, MaxWidth: 100, MinHeight: 50, MaxHeight: 50}, true},
		{"resizable", icccm.NormalHints{Flags: both, MinWidth: 100, MaxWidth: 200, MinHeight: 50, MaxHeight: 50}, false},
		{"no max", icccm.NormalHints{Flags: uint(icccm.SizeHintPMinSize), MinWidth: 100, MinHeight: 50}, false},
		{"zero", icccm.NormalHints{Flags: both}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixedSize(&tt.hints); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestContainsRect(t *testing.T) {
	rs := []layout.Rect{{W: 1920, H: 1080}}
	if !containsRect(rs, layout.Rect{W: 1920, H: 1080}) {
		t.Error("expected mirrored head to be found")
	}
	if containsRect(rs, layout.Rect{X: 1920, W: 1920, H: 1080}) {
		t.Error("expected second head to be distinct")
	}
}

func TestTranslate(t *testing.T) {
	c := &Conn{atoms: atoms{wmName: 39, netWMName: 300, wmHints: 35, wmNormalHints: 40, wmTransientFor: 68}}

	tests := []struct {
		name string
		ev   any
		want wm.Event
		ok   bool
	}{
		{"map", xproto.MapRequestEvent{Window: 5}, wm.MapRequest{Window: 5}, true},
		{"unmap", xproto.UnmapNotifyEvent{Window: 5}, wm.UnmapNotify{Window: 5}, true},
		{"destroy", xproto.DestroyNotifyEvent{Window: 5}, wm.DestroyNotify{Window: 5}, true},
		{
			"configure",
			xproto.ConfigureRequestEvent{Window: 5, X: -10, Y: 20, Width: 300, Height: 200, BorderWidth: 1, ValueMask: 0x0f},
			wm.ConfigureRequest{Window: 5, Rect: layout.Rect{X: -10, Y: 20, W: 300, H: 200}, Border: 1, ValueMask: 0x0f},
			true,
		},
		{"key", xproto.KeyPressEvent{State: 0x41, Detail: 24}, wm.KeyPress{State: 0x41, Code: 24}, true},
		{"enter", xproto.EnterNotifyEvent{Event: 5, Mode: xproto.NotifyModeNormal, Detail: xproto.NotifyDetailAncestor}, wm.EnterNotify{Window: 5}, true},
		{"enter inferior", xproto.EnterNotifyEvent{Event: 5, Mode: xproto.NotifyModeNormal, Detail: xproto.NotifyDetailInferior}, nil, false},
		{"enter grab", xproto.EnterNotifyEvent{Event: 5, Mode: xproto.NotifyModeGrab}, nil, false},
		{"expose", xproto.ExposeEvent{Window: 7, Count: 2}, wm.Expose{Window: 7, Count: 2}, true},
		{"title", xproto.PropertyNotifyEvent{Window: 5, Atom: 300}, wm.PropertyNotify{Window: 5, Property: wm.PropertyTitle}, true},
		{"hints", xproto.PropertyNotifyEvent{Window: 5, Atom: 35}, wm.PropertyNotify{Window: 5, Property: wm.PropertyHints}, true},
		{"other", xproto.PropertyNotifyEvent{Window: 5, Atom: 1}, wm.PropertyNotify{Window: 5, Property: wm.PropertyOther}, true},
		{"deleted", xproto.PropertyNotifyEvent{Window: 5, Atom: 39, State: xproto.PropertyDelete}, nil, false},
		{"button", xproto.ButtonPressEvent{Event: 5, Detail: 1, EventX: 3, EventY: 4}, wm.ButtonPress{Window: 5, Button: 1, X: 3, Y: 4}, true},
		{"keyboard mapping", xproto.MappingNotifyEvent{Request: xproto.MappingKeyboard}, wm.MappingNotify{}, true},
		{"pointer mapping", xproto.MappingNotifyEvent{Request: xproto.MappingPointer}, nil, false},
		{"unknown", xproto.MotionNotifyEvent{}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.translate(tt.ev)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}
