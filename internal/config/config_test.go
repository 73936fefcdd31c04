package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Tuning.EjectKey != "F16" {
		t.Errorf("expected eject key F16, got %s", cfg.Tuning.EjectKey)
	}
	if cfg.Tuning.DiagnosticsKey != "F15" {
		t.Errorf("expected diagnostics key F15, got %s", cfg.Tuning.DiagnosticsKey)
	}
	if cfg.Tuning.MultipurposeTimeoutMs != 1000 {
		t.Errorf("expected multipurpose timeout 1000ms, got %d", cfg.Tuning.MultipurposeTimeoutMs)
	}
	if cfg.Diag.Theme != "nord" {
		t.Errorf("expected theme nord, got %s", cfg.Diag.Theme)
	}
	if len(cfg.Devices) != 0 {
		t.Errorf("expected no default devices, got %v", cfg.Devices)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Tuning.EjectKey != "F16" {
		t.Errorf("expected default eject key, got %s", cfg.Tuning.EjectKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
devices = ["/dev/input/event5"]

[diag]
theme = "solarized"

[tuning]
multipurpose_timeout_ms = 200
suspend_timeout_ms = 150
eject_key = "F17"
diagnostics_key = "F18"

[[modifiers]]
name = "Hyper"
aliases = ["hyper"]
keys = ["CAPSLOCK"]

[[modmaps]]
entries = { CAPSLOCK = "LEFTCTRL" }

[[multipurpose]]
entries = { SPACE = { tap = "SPACE", hold = "LEFTCTRL" } }

[[keymaps]]
[[keymaps.entries]]
combo = "Ctrl-S"
[keymaps.entries.action]
type = "combo"
combo = "Ctrl-S"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Devices) != 1 || cfg.Devices[0] != "/dev/input/event5" {
		t.Errorf("expected one device override, got %v", cfg.Devices)
	}
	if cfg.Diag.Theme != "solarized" {
		t.Errorf("expected theme solarized, got %s", cfg.Diag.Theme)
	}
	if cfg.Tuning.MultipurposeTimeoutMs != 200 {
		t.Errorf("expected 200, got %d", cfg.Tuning.MultipurposeTimeoutMs)
	}
	if cfg.Tuning.EjectKey != "F17" {
		t.Errorf("expected F17, got %s", cfg.Tuning.EjectKey)
	}
	if len(cfg.Modifiers) != 1 || cfg.Modifiers[0].Name != "Hyper" {
		t.Errorf("expected one Hyper modifier, got %v", cfg.Modifiers)
	}
	if len(cfg.Modmaps) != 1 || cfg.Modmaps[0].Entries["CAPSLOCK"] != "LEFTCTRL" {
		t.Errorf("expected CAPSLOCK->LEFTCTRL modmap, got %v", cfg.Modmaps)
	}
	if len(cfg.Keymaps) != 1 || len(cfg.Keymaps[0].Entries) != 1 {
		t.Fatalf("expected one keymap rule with one entry, got %v", cfg.Keymaps)
	}
	if cfg.Keymaps[0].Entries[0].Action.Type != "combo" {
		t.Errorf("expected combo action type, got %s", cfg.Keymaps[0].Entries[0].Action.Type)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Diag.Theme = "mono"
	cfg.Devices = []string{"/dev/input/event3"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}

	if loaded.Diag.Theme != "mono" {
		t.Errorf("expected theme mono, got %s", loaded.Diag.Theme)
	}
	if len(loaded.Devices) != 1 || loaded.Devices[0] != "/dev/input/event3" {
		t.Errorf("expected device override preserved, got %v", loaded.Devices)
	}
	if loaded.Tuning.EjectKey != "F16" {
		t.Errorf("expected default eject key preserved, got %s", loaded.Tuning.EjectKey)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.toml")

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %s: %v", path, err)
	}
}
