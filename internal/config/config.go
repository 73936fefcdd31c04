// Package config loads the TOML rule file describing devices, custom
// modifiers, modmaps, multipurpose modmaps, and keymaps, and compiles it
// into a ruleset.RuleSet plus an engine.Config — the pre-built inputs the
// engine itself receives (config parsing is explicitly a collaborator of
// the engine, not part of it).
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DeviceTuning mirrors engine.Config's timing knobs in millisecond form,
// the unit TOML authors reach for instead of time.Duration literals.
type DeviceTuning struct {
	MultipurposeTimeoutMs int    `toml:"multipurpose_timeout_ms"`
	SuspendTimeoutMs      int    `toml:"suspend_timeout_ms"`
	KeyPreDelayMs         int    `toml:"key_pre_delay_ms"`
	KeyPostDelayMs        int    `toml:"key_post_delay_ms"`
	SubmapInactivityMs    int    `toml:"submap_inactivity_ms"`
	EjectKey              string `toml:"eject_key"`
	DiagnosticsKey        string `toml:"diagnostics_key"`
}

// DiagConfig holds internal/diag's startup options.
type DiagConfig struct {
	Theme string `toml:"theme"`
}

// ModifierDef registers one custom logical modifier (spec section 6's
// add_modifier(name, aliases, keys)).
type ModifierDef struct {
	Name    string   `toml:"name"`
	Aliases []string `toml:"aliases"`
	Keys    []string `toml:"keys"`
}

// RuleScope selects which Context a rule applies to. Both fields empty
// means the rule is unconditional.
type RuleScope struct {
	WMClass string `toml:"wm_class"`
	Device  string `toml:"device"`
}

// ModmapRule is one (scope, key->key) modmap entry.
type ModmapRule struct {
	RuleScope
	Entries map[string]string `toml:"entries"`
}

// MultipurposeEntry is one dual-role key's tap/hold pair, in key-name form.
type MultipurposeEntry struct {
	Tap  string `toml:"tap"`
	Hold string `toml:"hold"`
}

// MultipurposeRule is one (scope, key->{tap,hold}) multipurpose modmap entry.
type MultipurposeRule struct {
	RuleScope
	Entries map[string]MultipurposeEntry `toml:"entries"`
}

// ActionDef is a TOML-friendly tagged union over ruleset.Action. Only the
// fields relevant to Type need be populated; Compile reads those and
// ignores the rest.
type ActionDef struct {
	Type        string            `toml:"type"` // combo, sequence, submap, escape_next, ignore_next, bind, custom
	Combo       string            `toml:"combo"`
	Actions     []ActionDef       `toml:"actions"`
	Submap      []ComboEntryDef   `toml:"submap"`
	Immediately *ActionDef        `toml:"immediately"`
	Hook        string            `toml:"hook"`
	Args        map[string]string `toml:"args"`
}

// ComboEntryDef pairs a combo string with the action it triggers.
type ComboEntryDef struct {
	Combo  string    `toml:"combo"`
	Action ActionDef `toml:"action"`
}

// KeymapRule is one (scope, combo entries) top-level keymap rule.
type KeymapRule struct {
	RuleScope
	Entries []ComboEntryDef `toml:"entries"`
}

// Config is the top-level rule file.
type Config struct {
	Devices      []string           `toml:"devices"`
	Diag         DiagConfig         `toml:"diag"`
	Tuning       DeviceTuning       `toml:"tuning"`
	Modifiers    []ModifierDef      `toml:"modifiers"`
	Modmaps      []ModmapRule       `toml:"modmaps"`
	Multipurpose []MultipurposeRule `toml:"multipurpose"`
	Keymaps      []KeymapRule       `toml:"keymaps"`
}

// Default returns a Config with no devices configured (the CLI's
// --devices flag is the usual source) and the spec's stated default
// timings and eject/diagnostics keys.
func Default() *Config {
	return &Config{
		Diag: DiagConfig{Theme: "nord"},
		Tuning: DeviceTuning{
			MultipurposeTimeoutMs: 1000,
			SuspendTimeoutMs:      1000,
			EjectKey:              "F16",
			DiagnosticsKey:        "F15",
		},
	}
}

// DefaultPath returns the default config file path (~/.config/keyremap/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keyremap", "config.toml")
}

// Save writes cfg as TOML to path, creating parent directories as needed.
// The write is atomic: data lands in a temp file first, then is renamed
// into place, so a crash mid-write can't corrupt an existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".keyremap-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML rule file at path. A missing file is not an error:
// it returns Default() (no persistence between runs is required; an
// absent config simply means "use the defaults", not "restore prior
// state").
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
