package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Appearance        Appearance   `json:"appearance" yaml:"appearance"`
	Gaps              Gaps         `json:"gaps" yaml:"gaps"`
	Layout            Layout       `json:"layout" yaml:"layout"`
	Tags              []string     `json:"tags" yaml:"tags"`
	Schemes           Schemes      `json:"schemes" yaml:"schemes"`
	FocusFollowsMouse bool         `json:"focus_follows_mouse" yaml:"focus_follows_mouse"`
	KillGrace         Duration     `json:"kill_grace" yaml:"kill_grace"`
	Modkey            string       `json:"modkey" yaml:"modkey"`
	Keybindings       []Keybinding `json:"keybindings" yaml:"keybindings"`
	Rules             []Rule       `json:"rules" yaml:"rules"`
	Status            Status       `json:"status" yaml:"status"`
	API               API          `json:"api" yaml:"api"`
}

type Appearance struct {
	BorderWidth     int    `json:"border_width" yaml:"border_width"`
	BorderFocused   Color  `json:"border_focused" yaml:"border_focused"`
	BorderUnfocused Color  `json:"border_unfocused" yaml:"border_unfocused"`
	Font            string `json:"font" yaml:"font"`
	BarPadding      int    `json:"bar_padding" yaml:"bar_padding"`
}

type Gaps struct {
	Enabled         bool `json:"enabled" yaml:"enabled"`
	InnerHorizontal int  `json:"inner_horizontal" yaml:"inner_horizontal"`
	InnerVertical   int  `json:"inner_vertical" yaml:"inner_vertical"`
	OuterHorizontal int  `json:"outer_horizontal" yaml:"outer_horizontal"`
	OuterVertical   int  `json:"outer_vertical" yaml:"outer_vertical"`
}

type Layout struct {
	MasterFraction float64 `json:"master_fraction" yaml:"master_fraction"`
	Default        string  `json:"default" yaml:"default"` // [tile, monocle]
}

type Scheme struct {
	Foreground Color `json:"foreground" yaml:"foreground"`
	Background Color `json:"background" yaml:"background"`
	Underline  Color `json:"underline" yaml:"underline"`
}

type Schemes struct {
	Normal   Scheme `json:"normal" yaml:"normal"`
	Occupied Scheme `json:"occupied" yaml:"occupied"`
	Selected Scheme `json:"selected" yaml:"selected"`
	Urgent   Scheme `json:"urgent" yaml:"urgent"`
}

// Rule matches windows by substring. Empty fields match anything.
type Rule struct {
	Class    string `json:"class,omitempty" yaml:"class,omitempty"`
	Instance string `json:"instance,omitempty" yaml:"instance,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Tags     []int  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Floating bool   `json:"floating,omitempty" yaml:"floating,omitempty"`
	NoFocus  bool   `json:"nofocus,omitempty" yaml:"nofocus,omitempty"`
}

type Status struct {
	Blocks  []Block  `json:"blocks" yaml:"blocks"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
	Workers int      `json:"workers" yaml:"workers"`
}

// Block is one status segment. Exactly one source field must be set.
type Block struct {
	Format    string   `json:"format" yaml:"format"`
	Static    *string  `json:"static,omitempty" yaml:"static,omitempty"`
	Command   []string `json:"command,omitempty" yaml:"command,omitempty"`
	Shell     string   `json:"shell,omitempty" yaml:"shell,omitempty"`
	RAM       bool     `json:"ram,omitempty" yaml:"ram,omitempty"`
	DateTime  string   `json:"datetime,omitempty" yaml:"datetime,omitempty"`
	Battery   *Battery `json:"battery,omitempty" yaml:"battery,omitempty"`
	Interval  Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
	Color     Color    `json:"color" yaml:"color"`
	Underline bool     `json:"underline,omitempty" yaml:"underline,omitempty"`
}

func (b Block) sources() []string {
	var s []string
	if b.Static != nil {
		s = append(s, "static")
	}
	if len(b.Command) > 0 {
		s = append(s, "command")
	}
	if b.Shell != "" {
		s = append(s, "shell")
	}
	if b.RAM {
		s = append(s, "ram")
	}
	if b.DateTime != "" {
		s = append(s, "datetime")
	}
	if b.Battery != nil {
		s = append(s, "battery")
	}
	return s
}

type Battery struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Charging    string `json:"charging" yaml:"charging"`
	Discharging string `json:"discharging" yaml:"discharging"`
	Full        string `json:"full" yaml:"full"`
}

// API is the unauthenticated control API. It can spawn any command, so Listen
// must be a loopback address unless AllowRemote is set.
type API struct {
	Listen      string `json:"listen,omitempty" yaml:"listen,omitempty"`
	AllowRemote bool   `json:"allow_remote,omitempty" yaml:"allow_remote,omitempty"`
}

// ExpandKey replaces the "$mod" token of a key string with the configured
// modifier.
func (c Config) ExpandKey(key string) string {
	return strings.ReplaceAll(key, "$mod", c.Modkey)
}

// Color is a 24-bit RGB value written as "#rrggbb".
type Color uint32

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) != 7 || s[0] != '#' {
		return fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", s, err)
	}
	*c = Color(v)
	return nil
}

// Duration is a time.Duration written as a Go duration string like "5s".
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalText() ([]byte, error) {
	if d == 0 {
		return []byte{}, nil
	}
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
