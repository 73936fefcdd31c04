package customfn

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	atclip "github.com/atotto/clipboard"

	"github.com/arjunp/keyremap/internal/ruleset"
	"github.com/arjunp/keyremap/internal/winctx"
)

// clipboardPaste is the clipboard_paste reference hook's closure state.
// Unlike a bare "paste this text" passthrough, it is scoped by the
// Context the engine passes to every Custom invocation (spec section
// 4.9): onlyWMClass, if set, makes the hook a no-op outside windows whose
// wm_class contains it, so a single keymap entry can be bound globally
// while only ever firing inside (say) a terminal or editor.
type clipboardPaste struct {
	text        string
	delay       time.Duration
	onlyWMClass string
}

// newClipboardPasteHook builds the clipboard_paste reference hook from its
// config args: "text" is what gets pasted, "delay_ms" is an optional
// settle time before acting, "only_wm_class" optionally restricts the
// hook to windows matching that substring.
func newClipboardPasteHook(args map[string]string) ruleset.CustomFunc {
	delayMs, _ := strconv.Atoi(args["delay_ms"])
	c := clipboardPaste{
		text:        args["text"],
		delay:       time.Duration(delayMs) * time.Millisecond,
		onlyWMClass: args["only_wm_class"],
	}
	return c.run
}

// run is the ruleset.CustomFunc proper: it consults ctx before doing
// anything, which a renamed passthrough around a fixed env-var check would
// not be able to do.
func (c clipboardPaste) run(ctx winctx.Context) (ruleset.Action, error) {
	if c.onlyWMClass != "" && !strings.Contains(ctx.WMClass, c.onlyWMClass) {
		return nil, nil
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if sessionIsWayland() {
		return nil, pasteViaWayland(c.text)
	}
	return nil, pasteViaX11(c.text)
}

// sessionIsWayland reports whether the session is running under Wayland.
// winctx.Context carries no session-type field (only the focused window's
// identity), so this is the one piece of environment the hook still reads
// directly rather than through ctx.
func sessionIsWayland() bool {
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

// startYdotoold launches ydotoold if it is not already running; the
// ydotool client needs the daemon attached to /dev/uinput to inject
// keystrokes.
func startYdotoold() {
	if exec.Command("pgrep", "-x", "ydotoold").Run() == nil {
		return
	}
	if _, err := exec.LookPath("ydotoold"); err != nil {
		return
	}
	daemon := exec.Command("ydotoold")
	daemon.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if daemon.Start() == nil {
		time.Sleep(200 * time.Millisecond)
	}
}

// requireTools checks that every named binary is on PATH, returning an
// install hint for the first one missing.
func requireTools(pkg string, bins ...string) error {
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found: %w (install with: apt install %s)", bin, err, pkg)
		}
	}
	return nil
}

func pasteViaWayland(text string) error {
	if err := requireTools("wl-clipboard", "wl-copy"); err != nil {
		return err
	}
	if err := requireTools("ydotool", "ydotool"); err != nil {
		return err
	}
	startYdotoold()

	runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := exec.CommandContext(runCtx, "wl-copy", "--", text).Run(); err != nil {
		return fmt.Errorf("wl-copy: %w", err)
	}
	if err := exec.CommandContext(runCtx, "ydotool", "key", "--delay", "0", "ctrl+v").Run(); err != nil {
		return fmt.Errorf("ydotool key ctrl+v: %w", err)
	}

	time.Sleep(100 * time.Millisecond)
	_ = exec.CommandContext(runCtx, "wl-copy", "--clear").Run()
	return nil
}

func pasteViaX11(text string) error {
	if err := requireTools("xdotool", "xdotool"); err != nil {
		return err
	}
	if err := atclip.WriteAll(text); err != nil {
		return fmt.Errorf("write to clipboard: %w", err)
	}

	runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := exec.CommandContext(runCtx, "xdotool", "key", "ctrl+v").Run(); err != nil {
		return fmt.Errorf("xdotool paste: %w", err)
	}

	time.Sleep(100 * time.Millisecond)
	_ = atclip.WriteAll("")
	return nil
}
