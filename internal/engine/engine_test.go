package engine

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/arjunp/keyremap/internal/device"
	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/ruleset"
	"github.com/arjunp/keyremap/internal/winctx"
)

// fakeSource feeds a scripted KeyEvent sequence to an Engine under test,
// standing in for device.OpenSource's evdev-backed implementation.
type fakeSource struct {
	events chan device.KeyEvent
	errs   chan error
	closed chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events: make(chan device.KeyEvent, 32),
		errs:   make(chan error),
		closed: make(chan struct{}),
	}
}

func (f *fakeSource) Events() <-chan device.KeyEvent { return f.events }
func (f *fakeSource) Errs() <-chan error             { return f.errs }
func (f *fakeSource) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func (f *fakeSource) send(key keycode.Key, action device.Action) {
	f.events <- device.KeyEvent{Key: key, Action: action, Time: time.Now()}
}

// fakeSink records every Press/Release/Sync call in order, standing in for
// device.OpenSink's uinput-backed implementation.
type fakeSink struct {
	mu     sync.Mutex
	log    []string
	held   map[keycode.Key]bool
	closed bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{held: make(map[keycode.Key]bool)}
}

func (s *fakeSink) Press(key keycode.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, "press "+key.String())
	s.held[key] = true
	return nil
}

func (s *fakeSink) Release(key keycode.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, "release "+key.String())
	delete(s.held, key)
	return nil
}

func (s *fakeSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, "sync")
	return nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.held {
		s.log = append(s.log, "release "+k.String())
	}
	s.held = make(map[keycode.Key]bool)
	s.closed = true
	return nil
}

func (s *fakeSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

// harness wires an Engine to fake collaborators and runs it in the
// background until the test tears it down.
type harness struct {
	t      *testing.T
	src    *fakeSource
	sink   *fakeSink
	eng    *Engine
	cancel context.CancelFunc
	done   chan error
}

func newHarness(t *testing.T, rules *ruleset.RuleSet, cfg Config) *harness {
	t.Helper()
	src := newFakeSource()
	sink := newFakeSink()
	provider := winctx.NewStaticProvider(winctx.Context{})
	eng := New(rules, provider, src, sink, cfg, log.New(testWriter{t}, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{t: t, src: src, sink: sink, eng: eng, cancel: cancel, done: make(chan error, 1)}
	go func() { h.done <- eng.Run(ctx) }()
	return h
}

// settle gives the loop goroutine a chance to drain whatever has been sent
// so far before the test inspects the sink's log.
func (h *harness) settle() {
	time.Sleep(20 * time.Millisecond)
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

func testConfig() Config {
	return Config{
		MultipurposeTimeout: 30 * time.Millisecond,
		SuspendTimeout:      30 * time.Millisecond,
		SubmapInactivity:    50 * time.Millisecond,
		EjectKey:            keycode.KeyF16,
		DiagnosticsKey:      keycode.KeyF15,
	}
}

func eq(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("log length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("log[%d] = %q, want %q (full: got %v, want %v)", i, got[i], want[i], got, want)
		}
	}
}

// Scenario 1: identity. An empty rule set passes every key through
// unchanged, bracketed with Sync per action boundary.
func TestIdentityPassthrough(t *testing.T) {
	rules := ruleset.NewBuilder().Build()
	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyA, device.Press)
	h.src.send(keycode.KeyA, device.Release)
	h.settle()

	eq(t, h.sink.snapshot(), []string{
		"press A", "sync",
		"release A", "sync",
	})
}

// Scenario 2: modmap substitution. CAPSLOCK is remapped to LEFTCTRL before
// any combo resolution happens.
func TestModmapSubstitution(t *testing.T) {
	b := ruleset.NewBuilder()
	b.Modmap(nil, map[keycode.Key]keycode.Key{keycode.KeyCapsLock: keycode.KeyLeftCtrl})
	rules := b.Build()

	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyCapsLock, device.Press)
	h.src.send(keycode.KeyCapsLock, device.Release)
	h.settle()

	eq(t, h.sink.snapshot(), []string{
		"press LEFTCTRL", "sync",
		"release LEFTCTRL", "sync",
	})
}

// Scenario 2, literal form: the modmap'd modifier is held across an
// ordinary key, per spec section 8's "Press CAPSLOCK, Press C, Release C,
// Release CAPSLOCK". CAPSLOCK must reach the combo resolver's mask
// computation as Control (not drop out for not itself being a builtin
// control key), so it brackets C the same way a real LEFTCTRL would.
func TestModmapSubstitutionHeldAcrossKey(t *testing.T) {
	b := ruleset.NewBuilder()
	b.Modmap(nil, map[keycode.Key]keycode.Key{keycode.KeyCapsLock: keycode.KeyLeftCtrl})
	rules := b.Build()

	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyCapsLock, device.Press)
	h.src.send(keycode.KeyC, device.Press)
	h.src.send(keycode.KeyC, device.Release)
	h.src.send(keycode.KeyCapsLock, device.Release)
	h.settle()

	eq(t, h.sink.snapshot(), []string{
		"press LEFTCTRL", "sync",
		"press C", "sync",
		"release C", "sync",
		"release LEFTCTRL", "sync",
	})
}

// Same modmap, plus a keymap entry on Ctrl-C, guards against the mask
// computation silently dropping the CapsLock-derived Control bit: without
// resolving CAPSLOCK through the modmap before the ModifierForKey check,
// Ctrl-C never matches and C is emitted verbatim instead of X.
func TestModmapSubstitutionFeedsComboMask(t *testing.T) {
	b := ruleset.NewBuilder()
	b.Modmap(nil, map[keycode.Key]keycode.Key{keycode.KeyCapsLock: keycode.KeyLeftCtrl})
	ms := b.Modifiers()
	ctrlC, err := keycode.ParseCombo("Ctrl-C", ms)
	if err != nil {
		t.Fatal(err)
	}
	b.Keymap(nil, []ruleset.ComboEntry{
		{Combo: ctrlC, Action: ruleset.EmitCombo{Combo: keycode.Combo{Key: keycode.KeyX}}},
	})
	rules := b.Build()

	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyCapsLock, device.Press)
	h.src.send(keycode.KeyC, device.Press)
	h.src.send(keycode.KeyC, device.Release)
	h.src.send(keycode.KeyCapsLock, device.Release)
	h.settle()

	eq(t, h.sink.snapshot(), []string{
		"press X", "sync",
		"release X", "sync",
	})
}

// Scenario 3: combo remap. Cmd-S is rewritten to Ctrl-S; the physical
// LEFTMETA press never reaches the sink since the suspended modifier is
// discarded once the combo resolves.
func TestComboRemap(t *testing.T) {
	b := ruleset.NewBuilder()
	ms := b.Modifiers()
	cmdS, err := keycode.ParseCombo("Super-S", ms)
	if err != nil {
		t.Fatal(err)
	}
	ctrlS, err := keycode.ParseCombo("Ctrl-S", ms)
	if err != nil {
		t.Fatal(err)
	}
	b.Keymap(nil, []ruleset.ComboEntry{
		{Combo: cmdS, Action: ruleset.EmitCombo{Combo: ctrlS}},
	})
	rules := b.Build()

	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyLeftMeta, device.Press)
	h.src.send(keycode.KeyS, device.Press)
	h.src.send(keycode.KeyS, device.Release)
	h.src.send(keycode.KeyLeftMeta, device.Release)
	h.settle()

	eq(t, h.sink.snapshot(), []string{
		"press LEFTCTRL", "sync",
		"press S", "sync",
		"release S", "sync",
		"release LEFTCTRL", "sync",
	})
}

// Scenario 4: multi-stroke nested keymap. Ctrl-x enters a submap where a
// bare C is rewritten to Ctrl-Q.
func TestNestedSubmap(t *testing.T) {
	b := ruleset.NewBuilder()
	ms := b.Modifiers()
	ctrlX, err := keycode.ParseCombo("Ctrl-X", ms)
	if err != nil {
		t.Fatal(err)
	}
	ctrlQ, err := keycode.ParseCombo("Ctrl-Q", ms)
	if err != nil {
		t.Fatal(err)
	}
	plainC := keycode.Combo{Key: keycode.KeyC}
	submap := ruleset.NewKeymap(ruleset.ComboEntry{Combo: plainC, Action: ruleset.EmitCombo{Combo: ctrlQ}})
	b.Keymap(nil, []ruleset.ComboEntry{
		{Combo: ctrlX, Action: ruleset.EnterSubmap{Submap: submap}},
	})
	rules := b.Build()

	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyLeftCtrl, device.Press)
	h.src.send(keycode.KeyX, device.Press)
	h.src.send(keycode.KeyX, device.Release)
	h.src.send(keycode.KeyLeftCtrl, device.Release)
	h.src.send(keycode.KeyC, device.Press)
	h.src.send(keycode.KeyC, device.Release)
	h.settle()

	got := h.sink.snapshot()
	// Ctrl-X itself is consumed (discarded) by entering the submap; only
	// the rewritten Ctrl-Q for the bare C should reach the sink.
	eq(t, got, []string{
		"press LEFTCTRL", "sync",
		"press Q", "sync",
		"release Q", "sync",
		"release LEFTCTRL", "sync",
	})
}

// Scenario 5: multipurpose tap. ENTER tapped and released within the
// configured timeout emits a plain ENTER tap.
func TestMultipurposeTap(t *testing.T) {
	b := ruleset.NewBuilder()
	b.MultipurposeModmap(nil, map[keycode.Key]ruleset.MultipurposeMapping{
		keycode.KeyEnter: {Tap: keycode.KeyEnter, Hold: keycode.KeyLeftCtrl},
	})
	rules := b.Build()

	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyEnter, device.Press)
	h.src.send(keycode.KeyEnter, device.Release)
	h.settle()

	eq(t, h.sink.snapshot(), []string{
		"press ENTER", "sync",
		"release ENTER", "sync",
	})
}

// Scenario 6: multipurpose hold. ENTER pressed, then another key pressed
// before ENTER is released, decides ENTER's hold role.
func TestMultipurposeHold(t *testing.T) {
	b := ruleset.NewBuilder()
	b.MultipurposeModmap(nil, map[keycode.Key]ruleset.MultipurposeMapping{
		keycode.KeyEnter: {Tap: keycode.KeyEnter, Hold: keycode.KeyLeftCtrl},
	})
	rules := b.Build()

	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyEnter, device.Press)
	h.src.send(keycode.KeyA, device.Press)
	h.settle()
	h.src.send(keycode.KeyA, device.Release)
	h.src.send(keycode.KeyEnter, device.Release)
	h.settle()

	got := h.sink.snapshot()
	eq(t, got, []string{
		"press LEFTCTRL", "sync",
		"press A", "sync",
		"release A", "sync",
		"release LEFTCTRL", "sync",
	})
}

// Scenario 7: bare modifier tap. LEFTALT pressed and released by itself,
// within the suspend timeout, is emitted verbatim as a press/release pair
// rather than being swallowed as a withheld modifier.
func TestBareModifierTap(t *testing.T) {
	rules := ruleset.NewBuilder().Build()
	h := newHarness(t, rules, testConfig())
	defer h.stop()

	h.src.send(keycode.KeyLeftAlt, device.Press)
	h.src.send(keycode.KeyLeftAlt, device.Release)
	h.settle()

	eq(t, h.sink.snapshot(), []string{
		"press LEFTALT", "sync",
		"release LEFTALT", "sync",
	})
}

// Scenario 8: emergency eject. Any key held on the output side at the
// moment the eject key fires is released before Run returns.
func TestEmergencyEjectReleasesHeldOutput(t *testing.T) {
	b := ruleset.NewBuilder()
	ms := b.Modifiers()
	cmdS, err := keycode.ParseCombo("Super-S", ms)
	if err != nil {
		t.Fatal(err)
	}
	ctrlS, err := keycode.ParseCombo("Ctrl-S", ms)
	if err != nil {
		t.Fatal(err)
	}
	b.Keymap(nil, []ruleset.ComboEntry{
		{Combo: cmdS, Action: ruleset.Bind{Combo: ctrlS}},
	})
	rules := b.Build()

	src := newFakeSource()
	sink := newFakeSink()
	provider := winctx.NewStaticProvider(winctx.Context{})
	eng := New(rules, provider, src, sink, testConfig(), log.New(testWriter{t}, "", 0))

	done := make(chan error, 1)
	go func() { done <- eng.Run(context.Background()) }()

	src.send(keycode.KeyLeftMeta, device.Press)
	src.send(keycode.KeyS, device.Press)
	time.Sleep(20 * time.Millisecond)
	// LEFTCTRL is now retained as a Bind output modifier, pending release
	// of S, the trigger key (still physically held). The eject must force
	// it out regardless.
	src.send(keycode.KeyF16, device.Press)

	select {
	case err := <-done:
		if err != ErrEmergencyEject {
			t.Fatalf("Run returned %v, want ErrEmergencyEject", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after emergency eject")
	}

	sink.mu.Lock()
	held := len(sink.held)
	closed := sink.closed
	sink.mu.Unlock()
	if !closed {
		t.Fatal("sink was not closed on shutdown")
	}
	if held != 0 {
		t.Fatalf("sink still holds %d keys after emergency eject", held)
	}
}
