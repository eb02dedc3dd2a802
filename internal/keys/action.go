package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is what a key press asks the window manager to do.
type Action int

const (
	ActionSpawn Action = iota
	ActionKillClient
	ActionToggleGaps
	ActionFocusStack
	ActionViewTag
	ActionMoveToTag
	ActionToggleView
	ActionToggleTag
	ActionToggleFloating
	ActionSetLayout
	ActionCycleLayout
	ActionSetMasterFraction
	ActionZoom
	ActionFocusMonitor
	ActionQuit
	ActionRestart
	ActionRecompile
	nActions
)

var actionNames = [nActions]string{
	ActionSpawn:             "spawn",
	ActionKillClient:        "kill_client",
	ActionToggleGaps:        "toggle_gaps",
	ActionFocusStack:        "focus_stack",
	ActionViewTag:           "view_tag",
	ActionMoveToTag:         "move_to_tag",
	ActionToggleView:        "toggle_view",
	ActionToggleTag:         "toggle_tag",
	ActionToggleFloating:    "toggle_floating",
	ActionSetLayout:         "set_layout",
	ActionCycleLayout:       "cycle_layout",
	ActionSetMasterFraction: "set_master_fraction",
	ActionZoom:              "zoom",
	ActionFocusMonitor:      "focus_monitor",
	ActionQuit:              "quit",
	ActionRestart:           "restart",
	ActionRecompile:         "recompile",
}

// argKinds is the argument shape each action accepts.
var argKinds = [nActions]string{
	ActionSpawn:             "argv",
	ActionKillClient:        "none",
	ActionToggleGaps:        "none",
	ActionFocusStack:        "int",
	ActionViewTag:           "int",
	ActionMoveToTag:         "int",
	ActionToggleView:        "int",
	ActionToggleTag:         "int",
	ActionToggleFloating:    "none",
	ActionSetLayout:         "string",
	ActionCycleLayout:       "none",
	ActionSetMasterFraction: "int",
	ActionZoom:              "none",
	ActionFocusMonitor:      "int",
	ActionQuit:              "none",
	ActionRestart:           "none",
	ActionRecompile:         "none",
}

func (a Action) String() string {
	if a >= 0 && a < nActions {
		return actionNames[a]
	}
	return "action(" + strconv.Itoa(int(a)) + ")"
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ActionNames lists every action name.
func ActionNames() []string {
	return append([]string(nil), actionNames[:]...)
}

// Arg is the argument of a binding. It is one of None, Int, Str or Argv.
type Arg interface {
	isArg()
}

type (
	None struct{}
	Int  int
	Str  string
	// Argv is an explicit argument vector. It is executed directly, never
	// through a shell.
	Argv []string
)

func (None) isArg() {}
func (Int) isArg()  {}
func (Str) isArg()  {}
func (Argv) isArg() {}

func argKind(arg Arg) string {
	switch arg.(type) {
	case nil, None:
		return "none"
	case Int:
		return "int"
	case Str:
		return "string"
	case Argv:
		return "argv"
	default:
		return fmt.Sprintf("%T", arg)
	}
}

// Validate checks that arg has the shape action expects. Spawn also accepts a
// single string, taken as a program name without arguments.
func Validate(action Action, arg Arg) error {
	if action < 0 || action >= nActions {
		return fmt.Errorf("unknown action %d", int(action))
	}
	want, got := argKinds[action], argKind(arg)
	if action == ActionSpawn {
		switch v := arg.(type) {
		case Str:
			if v == "" {
				return fmt.Errorf("%s: empty command", action)
			}
			return nil
		case Argv:
			if len(v) == 0 || v[0] == "" {
				return fmt.Errorf("%s: empty command", action)
			}
			return nil
		}
	}
	if want != got {
		return fmt.Errorf("%s: expected %s argument, got %s", action, want, got)
	}
	return nil
}

// SpawnArgv returns the argument vector of a spawn argument.
func SpawnArgv(arg Arg) []string {
	switch v := arg.(type) {
	case Str:
		return []string{string(v)}
	case Argv:
		return append([]string(nil), v...)
	default:
		return nil
	}
}

func FormatArg(arg Arg) string {
	switch v := arg.(type) {
	case nil, None:
		return ""
	case Int:
		return strconv.Itoa(int(v))
	case Str:
		return strconv.Quote(string(v))
	case Argv:
		q := make([]string, len(v))
		for i, s := range v {
			q[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(q, " ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
