package keys

import (
	"reflect"
	"testing"
)

func TestTable_LookupIgnoresLocks(t *testing.T) {
	table, err := NewTable([]Binding{
		{Combo: Combo{Mods: Mod4, Code: 36}, Key: "Mod4-Return", Action: ActionSpawn, Arg: Str("st")},
		{Combo: Combo{Mods: Mod4 | ModShift, Code: 24}, Key: "Mod4-Shift-q", Action: ActionQuit, Arg: None{}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, ok := table.Lookup(Mod4|ModLock|NumLock, 36)
	if !ok {
		t.Fatal("expected a binding with locks active")
	}
	if b.Action != ActionSpawn {
		t.Errorf("expected spawn, got %s", b.Action)
	}
	if _, ok := table.Lookup(Mod4, 24); ok {
		t.Error("expected no binding without shift")
	}
	if _, ok := table.Lookup(0, 99); ok {
		t.Error("expected unmatched combination to miss")
	}
}

func TestTable_DuplicateCombo(t *testing.T) {
	_, err := NewTable([]Binding{
		{Combo: Combo{Mods: Mod4, Code: 24}, Key: "Mod4-q", Action: ActionKillClient},
		{Combo: Combo{Mods: Mod4 | ModLock, Code: 24}, Key: "Mod4-Lock-q", Action: ActionQuit},
	})
	if err == nil {
		t.Error("expected duplicate binding error")
	}
}

func TestTable_RejectsBadArg(t *testing.T) {
	_, err := NewTable([]Binding{
		{Combo: Combo{Mods: Mod4, Code: 44}, Key: "Mod4-j", Action: ActionFocusStack, Arg: Str("down")},
	})
	if err == nil {
		t.Error("expected argument shape error")
	}
}

func TestTable_BindingsSorted(t *testing.T) {
	table, err := NewTable([]Binding{
		{Combo: Combo{Mods: Mod4, Code: 40}, Action: ActionZoom},
		{Combo: Combo{Mods: Mod4 | ModShift, Code: 10}, Action: ActionMoveToTag, Arg: Int(0)},
		{Combo: Combo{Mods: Mod4, Code: 10}, Action: ActionViewTag, Arg: Int(0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := table.Bindings()
	if got[0].Action != ActionViewTag || got[1].Action != ActionMoveToTag || got[2].Action != ActionZoom {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		action Action
		arg    Arg
		ok     bool
	}{
		{ActionSpawn, Str("st"), true},
		{ActionSpawn, Argv{"sh", "-c", "dmenu_run"}, true},
		{ActionSpawn, Argv{}, false},
		{ActionSpawn, None{}, false},
		{ActionKillClient, nil, true},
		{ActionKillClient, Int(1), false},
		{ActionViewTag, Int(3), true},
		{ActionSetLayout, Str("monocle"), true},
		{ActionSetLayout, Int(1), false},
		{Action(99), None{}, false},
	}
	for _, tt := range tests {
		err := Validate(tt.action, tt.arg)
		if (err == nil) != tt.ok {
			t.Errorf("%s(%s): expected ok=%v, got %v", tt.action, FormatArg(tt.arg), tt.ok, err)
		}
	}
}

func TestParseAction(t *testing.T) {
	for _, name := range ActionNames() {
		a, err := ParseAction(name)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", name, err)
		}
		if a.String() != name {
			t.Errorf("expected %s, got %s", name, a)
		}
	}
	if _, err := ParseAction("fullscreen"); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestSpawnArgv(t *testing.T) {
	if got := SpawnArgv(Str("st")); !reflect.DeepEqual(got, []string{"st"}) {
		t.Errorf("expected [st], got %v", got)
	}
	if got := SpawnArgv(Argv{"maim", "-s"}); !reflect.DeepEqual(got, []string{"maim", "-s"}) {
		t.Errorf("expected [maim -s], got %v", got)
	}
	if SpawnArgv(Int(1)) != nil {
		t.Error("expected nil argv for int arg")
	}
}

func TestSplitKey(t *testing.T) {
	mods, key, err := SplitKey("Mod4-Shift-Return")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mods != Mod4|ModShift {
		t.Errorf("expected Mod4|Shift, got %#x", mods)
	}
	if key != "Return" {
		t.Errorf("expected Return, got %s", key)
	}

	for _, bad := range []string{"", "Mod4", "Mod4-a-b", "Mod4--a"} {
		if _, _, err := SplitKey(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
