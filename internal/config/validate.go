package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ItsNotGoodName/xtile/internal/keys"
	"github.com/ItsNotGoodName/xtile/internal/layout"
	"github.com/ItsNotGoodName/xtile/internal/tags"
)

// Validate reports every problem in cfg at once.
func Validate(cfg Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if n := len(cfg.Tags); n == 0 || n > tags.Max {
		add("tags: need between 1 and %d tags, got %d", tags.Max, n)
	}
	if f := cfg.Layout.MasterFraction; f <= 0.05 || f >= 0.95 {
		add("layout.master_fraction: %v is outside (0.05, 0.95)", f)
	}
	if _, err := layout.ParseKind(cfg.Layout.Default); err != nil {
		add("layout.default: %w", err)
	}
	if cfg.Appearance.BorderWidth < 0 {
		add("appearance.border_width: must not be negative")
	}
	g := cfg.Gaps
	if g.InnerHorizontal < 0 || g.InnerVertical < 0 || g.OuterHorizontal < 0 || g.OuterVertical < 0 {
		add("gaps: must not be negative")
	}
	if cfg.KillGrace < 0 {
		add("kill_grace: must not be negative")
	}
	if strings.Contains(cfg.Modkey, "-") {
		add("modkey: %q must be a single modifier", cfg.Modkey)
	}

	for i, kb := range cfg.Keybindings {
		if err := validateKeybinding(cfg, kb); err != nil {
			add("keybindings[%d]: %w", i, err)
		}
	}

	for i, r := range cfg.Rules {
		for _, t := range r.Tags {
			if t < 0 || t >= len(cfg.Tags) {
				add("rules[%d]: tag index %d out of range", i, t)
			}
		}
		if r.Class == "" && r.Instance == "" && r.Title == "" {
			add("rules[%d]: must match on class, instance or title", i)
		}
	}

	for i, b := range cfg.Status.Blocks {
		switch s := b.sources(); len(s) {
		case 0:
			add("status.blocks[%d]: no source", i)
		case 1:
		default:
			add("status.blocks[%d]: multiple sources %v", i, s)
		}
		if b.Interval < 0 {
			add("status.blocks[%d]: interval must not be negative", i)
		}
	}
	if cfg.Status.Workers < 0 {
		add("status.workers: must not be negative")
	}
	if cfg.Status.Timeout < 0 {
		add("status.timeout: must not be negative")
	}

	return errors.Join(errs...)
}

func validateKeybinding(cfg Config, kb Keybinding) error {
	key := cfg.ExpandKey(kb.Key)
	if _, _, err := keys.SplitKey(key); err != nil {
		return err
	}

	action, err := keys.ParseAction(kb.Action)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := keys.Validate(action, kb.Arg); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	switch action {
	case keys.ActionViewTag, keys.ActionMoveToTag, keys.ActionToggleView, keys.ActionToggleTag:
		i := int(kb.Arg.(keys.Int))
		if i < 0 || i >= len(cfg.Tags) {
			return fmt.Errorf("%s: tag index %d out of range", key, i)
		}
	case keys.ActionSetLayout:
		if _, err := layout.ParseKind(string(kb.Arg.(keys.Str))); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	case keys.ActionFocusStack, keys.ActionFocusMonitor:
		if kb.Arg.(keys.Int) == 0 {
			return fmt.Errorf("%s: delta must not be zero", key)
		}
	}

	return nil
}
