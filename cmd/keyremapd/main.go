// Command keyremapd is the CLI composition root: it loads and compiles a
// rule file, grabs the configured input devices, opens a synthetic output
// device, and drives the engine until the emergency eject key is pressed,
// a fatal I/O error occurs, or the process receives SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunp/keyremap/internal/config"
	"github.com/arjunp/keyremap/internal/customfn"
	"github.com/arjunp/keyremap/internal/device"
	"github.com/arjunp/keyremap/internal/diag"
	"github.com/arjunp/keyremap/internal/engine"
	"github.com/arjunp/keyremap/internal/ruleset"
	"github.com/arjunp/keyremap/internal/winctx"
)

// stringList collects a repeatable --devices flag into an ordered slice.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := flag.String("config", config.DefaultPath(), "path to the rule file")
	var deviceFlags stringList
	flag.Var(&deviceFlags, "devices", "input device path to grab, e.g. /dev/input/event3 (repeatable)")
	watch := flag.Bool("watch", false, "best-effort: restart device grab when the matched device set changes")
	listDevices := flag.Bool("list-devices", false, "list detected keyboard devices and exit")
	check := flag.Bool("check", false, "load and compile the rule file, report errors, and exit without grabbing devices")
	verbose := flag.Bool("v", false, "enable debug logging in the diagnostics view's debug panel")
	flag.Parse()

	if *listDevices {
		paths, err := device.ListKeyboards()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list devices: %v\n", err)
			return 1
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return 0
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", *cfgPath, err)
		return 1
	}
	if len(deviceFlags) > 0 {
		cfg.Devices = deviceFlags
	}

	hooks := customfn.NewRegistry()
	rs, ec, err := config.Compile(cfg, hooks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	if *check {
		fmt.Printf("config OK: %d unscoped keymap combo(s) compiled\n", rs.ComposeKeymap(winctx.Context{}).Len())
		return 0
	}

	var dbg *log.Logger
	if *verbose {
		dbg = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
	} else {
		dbg = log.New(io.Discard, "", 0)
	}

	provider := winctx.NewExecProvider(detectDesktopEnv(), dbg)

	sink, err := device.OpenSink("keyremapd")
	if err != nil {
		fmt.Fprintf(os.Stderr, "open output device: %v\n", err)
		return 1
	}
	defer sink.Close()

	model := diag.NewModel(cfg.Diag.Theme, ec.EjectKey.String(), ec.DiagnosticsKey.String(), dbg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if *verbose {
		dbg.SetOutput(diag.NewLogWriter(program))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer cancel()

	var engineErr error
	engineDone := make(chan struct{})
	go func() {
		engineErr = runWatched(ctx, rs, provider, sink, ec, cfg.Devices, *watch, dbg, func(s engine.Snapshot) {
			program.Send(diag.SnapshotMsg{Snapshot: s})
		})
		close(engineDone)
	}()
	go func() {
		<-engineDone
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "diagnostics view: %v\n", err)
	}
	cancel()
	<-engineDone

	switch {
	case engineErr == nil, errors.Is(engineErr, context.Canceled):
		return 0
	case errors.Is(engineErr, engine.ErrEmergencyEject):
		return 0
	default:
		fmt.Fprintf(os.Stderr, "%v\n", engineErr)
		return 1
	}
}

// detectDesktopEnv guesses the running session type from the environment,
// the same ambient signals a shell script would check before invoking a
// window-manager-specific query tool.
func detectDesktopEnv() string {
	if de := os.Getenv("XDG_CURRENT_DESKTOP"); de != "" {
		return de
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return "sway"
	}
	if os.Getenv("DISPLAY") != "" {
		return "x11"
	}
	return ""
}

// rescanInterval governs how often --watch rechecks the matched device
// set against what is currently grabbed.
const rescanInterval = 2 * time.Second

// runWatched drives the engine against the configured device set, and
// when watch is set, restarts the grab whenever the set of matched
// keyboard paths changes. This is deliberately narrow: it notices a
// changed device set and reopens a Source for it, not a full hotplug
// policy (debouncing, udev integration stay external per the engine's
// own scope).
func runWatched(ctx context.Context, rs *ruleset.RuleSet, provider winctx.Provider, sink device.Sink, ec engine.Config, devicePaths []string, watch bool, dbg *log.Logger, onDiagnostics func(engine.Snapshot)) error {
	for {
		resolved, err := resolveDevicePaths(devicePaths)
		if err != nil {
			return err
		}

		source, err := device.OpenSource(resolved, dbg)
		if err != nil {
			return fmt.Errorf("open input devices: %w", err)
		}

		runCtx, cancelRun := context.WithCancel(ctx)
		var restart bool
		if watch {
			go watchDeviceSet(runCtx, resolved, devicePaths, func() {
				restart = true
				cancelRun()
			})
		}

		eng := engine.New(rs, provider, source, sink, ec, dbg)
		eng.OnDiagnostics(onDiagnostics)
		err = eng.Run(runCtx)
		cancelRun()

		if restart && errors.Is(err, context.Canceled) {
			continue
		}
		return err
	}
}

// resolveDevicePaths returns the configured device paths unchanged, or the
// detected keyboard paths when none are configured (device.OpenSource
// already does this when paths is empty; this lets --watch compare against
// a stable baseline even when the user gave no explicit --devices).
// Configured entries are opened as paths; device names are not resolved.
func resolveDevicePaths(configured []string) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}
	return device.ListKeyboards()
}

// watchDeviceSet polls the matched keyboard paths and calls onChange once
// the set no longer matches baseline. It never fires when the operator
// pinned explicit device paths (explicit configuration is user intent, not
// the kind of thing --watch should second-guess).
func watchDeviceSet(ctx context.Context, baseline, configured []string, onChange func()) {
	if len(configured) > 0 {
		return
	}
	ticker := time.NewTicker(rescanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current, err := device.ListKeyboards()
			if err != nil {
				continue
			}
			if !sameSet(baseline, current) {
				onChange()
				return
			}
		}
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, p := range a {
		seen[p] = true
	}
	for _, p := range b {
		if !seen[p] {
			return false
		}
	}
	return true
}
