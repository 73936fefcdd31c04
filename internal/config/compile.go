package config

import (
	"fmt"
	"time"

	"github.com/arjunp/keyremap/internal/customfn"
	"github.com/arjunp/keyremap/internal/engine"
	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/ruleset"
)

// Compile builds a ruleset.RuleSet and engine.Config from cfg, resolving
// every key/combo/modifier name and custom-action hook reference against
// ms and hooks. Any unresolvable name is wrapped in an *engine.ConfigError
// so cmd/keyremapd's --check flag can report it without ever grabbing a
// device.
func Compile(cfg *Config, hooks *customfn.Registry) (*ruleset.RuleSet, engine.Config, error) {
	b := ruleset.NewBuilder()
	ms := b.Modifiers()

	for _, md := range cfg.Modifiers {
		keys, err := resolveKeys(md.Keys)
		if err != nil {
			return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("modifier %q: %w", md.Name, err)}
		}
		b.AddModifier(md.Name, md.Aliases, keys)
	}

	for _, rule := range cfg.Modmaps {
		entries := make(map[keycode.Key]keycode.Key, len(rule.Entries))
		for from, to := range rule.Entries {
			fromKey, ok := keycode.KeyFromName(from)
			if !ok {
				return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("modmap: unknown key %q", from)}
			}
			toKey, ok := keycode.KeyFromName(to)
			if !ok {
				return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("modmap: unknown key %q", to)}
			}
			entries[fromKey] = toKey
		}
		b.Modmap(scopePredicate(rule.RuleScope), entries)
	}

	for _, rule := range cfg.Multipurpose {
		entries := make(map[keycode.Key]ruleset.MultipurposeMapping, len(rule.Entries))
		for from, mp := range rule.Entries {
			fromKey, ok := keycode.KeyFromName(from)
			if !ok {
				return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("multipurpose: unknown key %q", from)}
			}
			tapKey, ok := keycode.KeyFromName(mp.Tap)
			if !ok {
				return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("multipurpose %q: unknown tap key %q", from, mp.Tap)}
			}
			holdKey, ok := keycode.KeyFromName(mp.Hold)
			if !ok {
				return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("multipurpose %q: unknown hold key %q", from, mp.Hold)}
			}
			entries[fromKey] = ruleset.MultipurposeMapping{Tap: tapKey, Hold: holdKey}
		}
		b.MultipurposeModmap(scopePredicate(rule.RuleScope), entries)
	}

	for _, rule := range cfg.Keymaps {
		entries, err := compileComboEntries(rule.Entries, ms, hooks)
		if err != nil {
			return nil, engine.Config{}, &engine.ConfigError{Err: err}
		}
		b.Keymap(scopePredicate(rule.RuleScope), entries)
	}

	ejectKey, ok := keycode.KeyFromName(cfg.Tuning.EjectKey)
	if !ok {
		return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("tuning: unknown eject_key %q", cfg.Tuning.EjectKey)}
	}
	diagKey, ok := keycode.KeyFromName(cfg.Tuning.DiagnosticsKey)
	if !ok {
		return nil, engine.Config{}, &engine.ConfigError{Err: fmt.Errorf("tuning: unknown diagnostics_key %q", cfg.Tuning.DiagnosticsKey)}
	}

	ec := engine.Config{
		MultipurposeTimeout: millis(cfg.Tuning.MultipurposeTimeoutMs),
		SuspendTimeout:      millis(cfg.Tuning.SuspendTimeoutMs),
		KeyPreDelay:         millis(cfg.Tuning.KeyPreDelayMs),
		KeyPostDelay:        millis(cfg.Tuning.KeyPostDelayMs),
		SubmapInactivity:    millis(cfg.Tuning.SubmapInactivityMs),
		EjectKey:            ejectKey,
		DiagnosticsKey:      diagKey,
	}

	return b.Build(), ec, nil
}

func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func scopePredicate(s RuleScope) ruleset.Predicate {
	var preds []ruleset.Predicate
	if s.WMClass != "" {
		preds = append(preds, ruleset.WMClassIs(s.WMClass))
	}
	if s.Device != "" {
		preds = append(preds, ruleset.DeviceIs(s.Device))
	}
	if len(preds) == 0 {
		return nil
	}
	return ruleset.And(preds...)
}

func resolveKeys(names []string) ([]keycode.Key, error) {
	keys := make([]keycode.Key, 0, len(names))
	for _, n := range names {
		k, ok := keycode.KeyFromName(n)
		if !ok {
			return nil, fmt.Errorf("unknown key %q", n)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func compileComboEntries(defs []ComboEntryDef, ms *keycode.ModifierSet, hooks *customfn.Registry) ([]ruleset.ComboEntry, error) {
	entries := make([]ruleset.ComboEntry, 0, len(defs))
	for _, d := range defs {
		combo, err := keycode.ParseCombo(d.Combo, ms)
		if err != nil {
			return nil, err
		}
		action, err := compileAction(d.Action, ms, hooks)
		if err != nil {
			return nil, fmt.Errorf("combo %q: %w", d.Combo, err)
		}
		entries = append(entries, ruleset.ComboEntry{Combo: combo, Action: action})
	}
	return entries, nil
}

// compileAction translates one ActionDef into a ruleset.Action, recursing
// into Sequence/EnterSubmap's nested actions.
func compileAction(d ActionDef, ms *keycode.ModifierSet, hooks *customfn.Registry) (ruleset.Action, error) {
	switch d.Type {
	case "combo":
		combo, err := keycode.ParseCombo(d.Combo, ms)
		if err != nil {
			return nil, err
		}
		return ruleset.EmitCombo{Combo: combo}, nil

	case "bind":
		combo, err := keycode.ParseCombo(d.Combo, ms)
		if err != nil {
			return nil, err
		}
		return ruleset.Bind{Combo: combo}, nil

	case "sequence":
		actions := make([]ruleset.Action, 0, len(d.Actions))
		for _, child := range d.Actions {
			a, err := compileAction(child, ms, hooks)
			if err != nil {
				return nil, err
			}
			actions = append(actions, a)
		}
		return ruleset.Sequence{Actions: actions}, nil

	case "submap":
		entries, err := compileComboEntries(d.Submap, ms, hooks)
		if err != nil {
			return nil, err
		}
		var immediately ruleset.Action
		if d.Immediately != nil {
			immediately, err = compileAction(*d.Immediately, ms, hooks)
			if err != nil {
				return nil, err
			}
		}
		return ruleset.EnterSubmap{Submap: ruleset.NewKeymap(entries...), Immediately: immediately}, nil

	case "escape_next":
		return ruleset.EscapeNext{}, nil

	case "ignore_next":
		return ruleset.IgnoreNext{}, nil

	case "custom":
		custom, err := hooks.Build(d.Hook, d.Args)
		if err != nil {
			return nil, err
		}
		return custom, nil

	default:
		return nil, fmt.Errorf("unknown action type %q", d.Type)
	}
}
