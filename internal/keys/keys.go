// Package keys holds the immutable keybinding table.
package keys

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Keycode is a hardware key code as reported by the display server.
type Keycode uint8

// Modifier masks, bit-compatible with the X11 core protocol.
const (
	ModShift   uint16 = 1 << 0
	ModLock    uint16 = 1 << 1
	ModControl uint16 = 1 << 2
	Mod1       uint16 = 1 << 3
	Mod2       uint16 = 1 << 4
	Mod3       uint16 = 1 << 5
	Mod4       uint16 = 1 << 6
	Mod5       uint16 = 1 << 7
)

// NumLock is where Num Lock lives on practically every keymap.
const NumLock = Mod2

// relevantMods are the modifiers a binding can require. Caps Lock and Num
// Lock never take part in matching.
const relevantMods = ModShift | ModControl | Mod1 | Mod3 | Mod4 | Mod5

// CleanMask strips lock modifiers and pointer button bits from a key event
// state.
func CleanMask(state uint16) uint16 {
	return state & relevantMods
}

// IgnoredMods are the lock combinations a grab must also cover so bindings
// keep working with Caps Lock or Num Lock on.
var IgnoredMods = []uint16{0, ModLock, NumLock, ModLock | NumLock}

type Combo struct {
	Mods uint16
	Code Keycode
}

type Binding struct {
	Combo
	// Key is the original key string, kept for logs and dumps.
	Key    string
	Action Action
	Arg    Arg
}

func (b Binding) String() string {
	return fmt.Sprintf("%s -> %s(%s)", b.Key, b.Action, FormatArg(b.Arg))
}

// Table maps key combinations to actions. It is built once and only read
// afterwards.
type Table struct {
	bindings map[Combo]Binding
}

// NewTable indexes bindings. A combination bound twice is an error.
func NewTable(bindings []Binding) (*Table, error) {
	t := &Table{bindings: make(map[Combo]Binding, len(bindings))}
	for _, b := range bindings {
		b.Mods = CleanMask(b.Mods)
		if prev, ok := t.bindings[b.Combo]; ok {
			return nil, fmt.Errorf("%q and %q bind the same key", prev.Key, b.Key)
		}
		if err := Validate(b.Action, b.Arg); err != nil {
			return nil, fmt.Errorf("%s: %w", b.Key, err)
		}
		t.bindings[b.Combo] = b
	}
	return t, nil
}

// Lookup finds the binding for a key press with the given event state.
func (t *Table) Lookup(state uint16, code Keycode) (Binding, bool) {
	b, ok := t.bindings[Combo{Mods: CleanMask(state), Code: code}]
	return b, ok
}

func (t *Table) Len() int {
	return len(t.bindings)
}

// Bindings lists all bindings ordered by keycode then modifiers.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Binding) int {
		if c := cmp.Compare(a.Code, b.Code); c != 0 {
			return c
		}
		return cmp.Compare(a.Mods, b.Mods)
	})
	return out
}

var modNames = map[string]uint16{
	"shift":   ModShift,
	"lock":    ModLock,
	"control": ModControl,
	"mod1":    Mod1,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"mod4":    Mod4,
	"mod5":    Mod5,
}

// SplitKey parses a key string such as "Mod4-Shift-Return" into its modifier
// mask and key name. Modifier names are case-insensitive and exactly one key
// name is required.
func SplitKey(s string) (uint16, string, error) {
	var mods uint16
	var key string
	for _, part := range strings.Split(s, "-") {
		if m, ok := modNames[strings.ToLower(part)]; ok {
			mods |= m
			continue
		}
		if part == "" {
			return 0, "", fmt.Errorf("key %q: empty part", s)
		}
		if key != "" {
			return 0, "", fmt.Errorf("key %q: more than one key name", s)
		}
		key = part
	}
	if key == "" {
		return 0, "", fmt.Errorf("key %q: missing key name", s)
	}
	return mods, key, nil
}
