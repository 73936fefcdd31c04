package engine

import (
	"time"

	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/ruleset"
)

// NextKeyMode governs how exactly one upcoming key-down is processed,
// set by EscapeNext/IgnoreNext and consumed on the next key press.
type NextKeyMode int

const (
	ModeNormal NextKeyMode = iota
	ModeEscape
	ModeIgnore
)

// suspendedModifier is one withheld modifier key-down, queued in arrival
// order. See internal/engine/suspend.go for commit/discard semantics.
type suspendedModifier struct {
	key      keycode.Key
	modifier keycode.Modifier
	side     keycode.Side
	pressed  time.Time
	timerID  timerHandle
}

// activeBind records that Bind's output modifiers are held open past the
// combo's normal bracketing, pending release of the trigger input key.
type activeBind struct {
	trigger keycode.Key
	outputMods map[keycode.Key]bool
}

// activeSubmap is a keymap pushed by EnterSubmap, cleared on the first
// lookup attempt (hit or miss) or by its own timeout, whichever is first.
type activeSubmap struct {
	composed *ruleset.ComposedKeymap
	timerID  timerHandle
}

// keyDisposition is recorded at press time for every physically-held key
// so its eventual release can be routed correctly without recomputing
// context-dependent rule lookups (section 3: Context is "cached for the
// duration of combo resolution on that press" — effective is that cache).
type keyDisposition struct {
	effective keycode.Key
	ignored   bool
}

// State is the engine's single mutable record, touched only from the
// event loop goroutine. There is deliberately no mutex here — the
// loop is the only writer and the only reader, by construction.
type State struct {
	heldInput  map[keycode.Key]bool
	heldOutput map[keycode.Key]bool
	suspended  []*suspendedModifier
	submap     *activeSubmap
	pendingMP  map[keycode.Key]*multipurposeState
	binds      map[keycode.Key]*activeBind
	activeKeys map[keycode.Key]*keyDisposition
	nextKey    NextKeyMode

	// seq labels each diagnostics-dump snapshot with a monotonically
	// increasing number. It carries no semantic weight in the
	// transformation pipeline; internal/diag displays it with each dump.
	seq uint64

	// discardedMods holds physically-held modifier keys whose suspended
	// press was discarded in favor of a remapped combo's own modifiers
	// (spec section 4.8 step 5). Their eventual release must emit
	// nothing, since no press for them ever reached the output.
	discardedMods map[keycode.Key]bool
}

func newState() *State {
	return &State{
		heldInput:     make(map[keycode.Key]bool),
		heldOutput:    make(map[keycode.Key]bool),
		pendingMP:     make(map[keycode.Key]*multipurposeState),
		binds:         make(map[keycode.Key]*activeBind),
		activeKeys:    make(map[keycode.Key]*keyDisposition),
		discardedMods: make(map[keycode.Key]bool),
	}
}

// Quiescent reports whether no key is held on the input side, which per
// the data model invariant implies held_output and suspended must also
// both be empty.
func (s *State) Quiescent() bool {
	return len(s.heldInput) == 0
}

// HeldOutputKeys returns every key currently pressed on the synthetic
// device, for diagnostics dumps. (Shutdown and emergency eject release
// held keys through device.Sink.Close, not through this list.)
func (s *State) HeldOutputKeys() []keycode.Key {
	keys := make([]keycode.Key, 0, len(s.heldOutput))
	for k := range s.heldOutput {
		keys = append(keys, k)
	}
	return keys
}
