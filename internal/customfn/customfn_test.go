package customfn

import (
	"os"
	"testing"

	"github.com/arjunp/keyremap/internal/ruleset"
	"github.com/arjunp/keyremap/internal/winctx"
)

func TestBuildUnknownHook(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("does_not_exist", nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered hook name")
	}
	if _, ok := err.(*UnknownHookError); !ok {
		t.Fatalf("got %T, want *UnknownHookError", err)
	}
}

func TestBuildClipboardPaste(t *testing.T) {
	r := NewRegistry()
	action, err := r.Build("clipboard_paste", map[string]string{"text": "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if action.Name != "clipboard_paste" {
		t.Fatalf("Name = %q, want clipboard_paste", action.Name)
	}
	if action.Fn == nil {
		t.Fatal("Fn is nil")
	}
}

func TestSessionIsWaylandDetection(t *testing.T) {
	orig := os.Getenv("WAYLAND_DISPLAY")
	defer func() { _ = os.Setenv("WAYLAND_DISPLAY", orig) }()

	if err := os.Setenv("WAYLAND_DISPLAY", "wayland-0"); err != nil {
		t.Fatal(err)
	}
	if !sessionIsWayland() {
		t.Error("expected sessionIsWayland()=true when WAYLAND_DISPLAY is set")
	}

	if err := os.Unsetenv("WAYLAND_DISPLAY"); err != nil {
		t.Fatal(err)
	}
	if sessionIsWayland() {
		t.Error("expected sessionIsWayland()=false when WAYLAND_DISPLAY is unset")
	}
}

// clipboard_paste's only_wm_class arg should make it a no-op outside a
// matching window, without ever reaching the OS-tool dispatch (which
// would fail in a test environment with no wl-copy/xdotool installed).
func TestClipboardPasteScopedByWMClass(t *testing.T) {
	r := NewRegistry()
	action, err := r.Build("clipboard_paste", map[string]string{
		"text":          "hello",
		"only_wm_class": "Alacritty",
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := action.Fn(winctx.Context{WMClass: "firefox"})
	if err != nil {
		t.Fatalf("expected no-op outside the scoped window, got error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected a nil action outside the scoped window, got %v", result)
	}
}

func TestRegisterCustomHook(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("noop", func(args map[string]string) ruleset.CustomFunc {
		return func(ctx winctx.Context) (ruleset.Action, error) {
			called = true
			return nil, nil
		}
	})
	action, err := r.Build("noop", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := action.Fn(winctx.Context{}); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("registered hook was never invoked")
	}
}
