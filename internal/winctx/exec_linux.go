//go:build linux

package winctx

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExecProvider derives a Context by shelling a window-manager query command.
// It is a thin reference implementation: real X11/Wayland integration is an
// external collaborator (spec section 1), but something has to populate
// Context for --check and for local testing against a real session, and
// the teacher's internal/clipboard package already shows the shape — bound
// every external call with a timeout, probe with exec.LookPath first, and
// fall back cleanly rather than block the caller.
type ExecProvider struct {
	logger  *log.Logger
	timeout time.Duration
	query   func(ctx context.Context) (wmClass, wmName string, err error)
}

// NewExecProvider builds an ExecProvider for the given desktop environment
// name (matched case-insensitively). Only "hyprland", "sway"/"wlroots" and
// "x11" have a window query; every other name, including "kde", "cosmic",
// "gnome" and "cinnamon", gets a no-op query that always reports empty
// strings (the "bounded, returns empty Context on failure" contract from
// spec section 4.3), so an unsupported desktop never prevents the engine
// from starting.
func NewExecProvider(desktopEnv string, logger *log.Logger) *ExecProvider {
	p := &ExecProvider{logger: logger, timeout: 200 * time.Millisecond}
	switch strings.ToLower(desktopEnv) {
	case "hyprland":
		p.query = p.queryHyprland
	case "sway", "wlroots":
		p.query = p.querySway
	case "x11":
		p.query = p.queryX11
	default:
		p.query = func(context.Context) (string, string, error) { return "", "", nil }
	}
	return p
}

// Snapshot implements Provider. Any failure (missing tool, timeout,
// malformed output) is absorbed here and reported as an empty Context,
// per the ContextError recovery rule in spec section 7.
func (p *ExecProvider) Snapshot() Context {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	class, name, err := p.query(ctx)
	if err != nil {
		cerr := &ContextError{Err: err}
		p.logger.Printf("%v, using empty context", cerr)
		return Context{}
	}
	return Context{
		WMClass:    class,
		WMName:     name,
		CapslockOn: lockLEDState("capslock"),
		NumlockOn:  lockLEDState("numlock"),
	}
}

func (p *ExecProvider) queryHyprland(ctx context.Context) (string, string, error) {
	if _, err := exec.LookPath("hyprctl"); err != nil {
		return "", "", err
	}
	out, err := exec.CommandContext(ctx, "hyprctl", "activewindow", "-j").Output()
	if err != nil {
		return "", "", err
	}
	var win struct {
		Class string `json:"class"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(out, &win); err != nil {
		return "", "", err
	}
	return win.Class, win.Title, nil
}

func (p *ExecProvider) querySway(ctx context.Context) (string, string, error) {
	if _, err := exec.LookPath("swaymsg"); err != nil {
		return "", "", err
	}
	out, err := exec.CommandContext(ctx, "swaymsg", "-t", "get_tree").Output()
	if err != nil {
		return "", "", err
	}
	class, name := firstFocusedNode(out)
	return class, name, nil
}

func (p *ExecProvider) queryX11(ctx context.Context) (string, string, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return "", "", err
	}
	idOut, err := exec.CommandContext(ctx, "xdotool", "getactivewindow").Output()
	if err != nil {
		return "", "", err
	}
	id := strings.TrimSpace(string(idOut))
	classOut, err := exec.CommandContext(ctx, "xdotool", "getwindowclassname", id).Output()
	if err != nil {
		return "", "", err
	}
	nameOut, err := exec.CommandContext(ctx, "xdotool", "getwindowname", id).Output()
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(string(classOut)), strings.TrimSpace(string(nameOut)), nil
}

// firstFocusedNode walks a swaymsg get_tree JSON document looking for the
// focused node. A best-effort scan keeps this reference provider small;
// a real Sway integration would use a typed tree and the IPC socket
// directly rather than polling the CLI.
func firstFocusedNode(raw []byte) (class, name string) {
	var node struct {
		Focused   bool   `json:"focused"`
		AppID     string `json:"app_id"`
		Name      string `json:"name"`
		WinProps  struct {
			Class string `json:"class"`
		} `json:"window_properties"`
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return "", ""
	}
	if node.Focused {
		if node.AppID != "" {
			return node.AppID, node.Name
		}
		return node.WinProps.Class, node.Name
	}
	for _, child := range node.Nodes {
		if class, name = firstFocusedNode(child); class != "" || name != "" {
			return class, name
		}
	}
	return "", ""
}

// lockLEDState is a best-effort read of the keyboard LED state exposed
// under /sys/class/leds. It never blocks and never errors visibly: a
// missing or unreadable LED node just reports "off", matching spec section
// 4.3's tolerance for partial Context data.
func lockLEDState(name string) bool {
	matches, err := filepath.Glob("/sys/class/leds/*::" + name + "/brightness")
	if err != nil || len(matches) == 0 {
		return false
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) != "0"
}
