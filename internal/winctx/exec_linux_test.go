//go:build linux

package winctx

import (
	"io"
	"log"
	"testing"
)

func TestExecProviderUnknownDesktopFallsBackToEmpty(t *testing.T) {
	p := NewExecProvider("some-future-compositor", log.New(io.Discard, "", 0))
	got := p.Snapshot()
	if got != (Context{}) {
		t.Errorf("unsupported desktop should yield empty Context, got %+v", got)
	}
}

func TestLockLEDStateMissingNode(t *testing.T) {
	if lockLEDState("definitely-not-a-real-led-name") {
		t.Error("expected false for a led node that does not exist")
	}
}
