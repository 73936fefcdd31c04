// Package ruleset holds the compiled representation of modmaps,
// multipurpose modmaps, keymaps, custom modifiers, and their conditional
// predicates (spec section 4.4). Rule evaluation here is pure and
// side-effect-free; Custom actions are the sole exception and are only
// ever invoked by the output stage in internal/engine.
package ruleset

import (
	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/winctx"
)

// Action is the tagged variant of output-stage operations an engine
// evaluates once a combo resolves. It is modeled as an interface with one
// concrete type per variant rather than a single struct with optional
// fields, so EnterSubmap can hold a *Keymap without creating a literal
// self-referential value type.
type Action interface {
	isAction()
}

// EmitCombo presses the required modifiers, presses and releases the key,
// then releases the modifiers (spec section 4.9).
type EmitCombo struct {
	Combo keycode.Combo
}

func (EmitCombo) isAction() {}

// Sequence runs its children in order, recomputing modifier bracketing
// between them.
type Sequence struct {
	Actions []Action
}

func (Sequence) isAction() {}

// EnterSubmap pushes a nested Keymap as the active submap. Immediately, if
// non-nil, runs once on entry before the next input key is awaited.
type EnterSubmap struct {
	Submap      *Keymap
	Immediately Action
}

func (EnterSubmap) isAction() {}

// EscapeNext causes the next input key to be emitted verbatim, bypassing
// rule lookup entirely.
type EscapeNext struct{}

func (EscapeNext) isAction() {}

// IgnoreNext causes the next input key to be dropped.
type IgnoreNext struct{}

func (IgnoreNext) isAction() {}

// Bind emits a combo but keeps its output modifiers held for as long as
// the triggering input key remains physically held, rather than releasing
// them immediately — used for OS-level app switchers (Alt-Tab and
// friends).
type Bind struct {
	Combo keycode.Combo
}

func (Bind) isAction() {}

// CustomFunc is a host-provided callback invoked with the Context active at
// the time its triggering key resolved. Its returned Action, if non-nil, is
// executed recursively; a returned error is isolated by the engine (logged,
// treated as a no-op) per the CustomCallbackError handling in spec section 7.
type CustomFunc func(ctx winctx.Context) (Action, error)

// Custom invokes Fn as a bounded, best-effort extension point.
type Custom struct {
	Name string
	Fn   CustomFunc
}

func (Custom) isAction() {}
