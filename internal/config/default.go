package config

import (
	"fmt"
	"time"

	"github.com/ItsNotGoodName/xtile/internal/keys"
)

const (
	grayDark  Color = 0x1a1b26
	graySep   Color = 0xa9b1d6
	grayMid   Color = 0x444444
	grayLight Color = 0xbbbbbb
	cyan      Color = 0x0db9d7
	magenta   Color = 0xad8ee6
	red       Color = 0xf7768e
	green     Color = 0x9ece6a
	blue      Color = 0x7aa2f7
	yellow    Color = 0xe0af68
)

func ptr[T any](v T) *T {
	return &v
}

// Default returns the configuration written by "xtile init".
func Default() Config {
	separator := Block{Format: " │  ", Static: ptr(""), Color: graySep}

	return Config{
		Appearance: Appearance{
			BorderWidth:     2,
			BorderFocused:   0x6dade3,
			BorderUnfocused: grayLight,
			Font:            "fixed",
			BarPadding:      4,
		},
		Gaps: Gaps{
			Enabled:         true,
			InnerHorizontal: 6,
			InnerVertical:   6,
			OuterHorizontal: 6,
			OuterVertical:   6,
		},
		Layout: Layout{
			MasterFraction: 0.55,
			Default:        "tile",
		},
		Tags: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		Schemes: Schemes{
			Normal:   Scheme{Foreground: grayLight, Background: grayDark, Underline: grayMid},
			Occupied: Scheme{Foreground: cyan, Background: grayDark, Underline: cyan},
			Selected: Scheme{Foreground: cyan, Background: grayDark, Underline: magenta},
			Urgent:   Scheme{Foreground: grayDark, Background: yellow, Underline: red},
		},
		FocusFollowsMouse: true,
		KillGrace:         Duration(3 * time.Second),
		Modkey:            "Mod4",
		Keybindings:       defaultKeybindings(),
		Rules: []Rule{
			{Class: "xclock", Floating: true},
		},
		Status: Status{
			Blocks: []Block{
				{
					Battery: &Battery{
						Charging:    "󰂄 Bat: {}%",
						Discharging: "󰁹 Bat:{}%",
						Full:        "󰁹 Bat: {}%",
					},
					Interval:  Duration(30 * time.Second),
					Color:     green,
					Underline: true,
				},
				separator,
				{
					Format:    "󰍛 {used}/{total} GB",
					RAM:       true,
					Interval:  Duration(5 * time.Second),
					Color:     blue,
					Underline: true,
				},
				separator,
				{
					Format:    " {}",
					Shell:     "uname -r",
					Color:     red,
					Underline: true,
				},
				separator,
				{
					Format:    "󰸘 {}",
					DateTime:  "Mon, Jan 02 - 3:04 pm",
					Interval:  Duration(time.Second),
					Color:     cyan,
					Underline: true,
				},
			},
			Timeout: Duration(5 * time.Second),
			Workers: 4,
		},
	}
}

func defaultKeybindings() []Keybinding {
	kb := []Keybinding{
		{Key: "$mod-Return", Action: "spawn", Arg: keys.Str("st")},
		{Key: "$mod-f", Action: "spawn", Arg: keys.Str("xclock")},
		{Key: "$mod-s", Action: "spawn", Arg: keys.Argv{"sh", "-c", "maim -s | xclip -selection clipboard -t image/png"}},
		{Key: "$mod-d", Action: "spawn", Arg: keys.Argv{"sh", "-c", "dmenu_run -l 10"}},
		{Key: "$mod-q", Action: "kill_client"},
		{Key: "$mod-a", Action: "toggle_gaps"},
		{Key: "$mod-Shift-space", Action: "toggle_floating"},
		{Key: "$mod-space", Action: "cycle_layout"},
		{Key: "$mod-h", Action: "set_master_fraction", Arg: keys.Int(-5)},
		{Key: "$mod-l", Action: "set_master_fraction", Arg: keys.Int(5)},
		{Key: "$mod-Shift-Return", Action: "zoom"},
		{Key: "$mod-comma", Action: "focus_monitor", Arg: keys.Int(-1)},
		{Key: "$mod-period", Action: "focus_monitor", Arg: keys.Int(1)},
		{Key: "$mod-Shift-q", Action: "quit"},
		{Key: "$mod-Shift-r", Action: "recompile"},
		{Key: "$mod-j", Action: "focus_stack", Arg: keys.Int(-1)},
		{Key: "$mod-k", Action: "focus_stack", Arg: keys.Int(1)},
	}
	for i := 0; i < 9; i++ {
		n := i + 1
		kb = append(kb,
			Keybinding{Key: fmt.Sprintf("$mod-%d", n), Action: "view_tag", Arg: keys.Int(i)},
			Keybinding{Key: fmt.Sprintf("$mod-Shift-%d", n), Action: "move_to_tag", Arg: keys.Int(i)},
			Keybinding{Key: fmt.Sprintf("$mod-Control-%d", n), Action: "toggle_view", Arg: keys.Int(i)},
			Keybinding{Key: fmt.Sprintf("$mod-Control-Shift-%d", n), Action: "toggle_tag", Arg: keys.Int(i)},
		)
	}
	for i := range kb {
		if kb[i].Arg == nil {
			kb[i].Arg = keys.None{}
		}
	}
	return kb
}
