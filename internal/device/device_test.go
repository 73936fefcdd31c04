package device

import "testing"

func TestActionString(t *testing.T) {
	cases := map[Action]string{
		Press:   "press",
		Release: "release",
		Repeat:  "repeat",
		Action(99): "unknown",
	}
	for action, want := range cases {
		if got := action.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", action, got, want)
		}
	}
}
