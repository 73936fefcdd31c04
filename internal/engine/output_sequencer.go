package engine

import (
	"fmt"
	"time"

	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/ruleset"
	"github.com/arjunp/keyremap/internal/timer"
	"github.com/arjunp/keyremap/internal/winctx"
)

// emitRaw presses or releases a single output key and terminates the
// group with sync(), per spec section 4.2's "the engine must call sync()
// after every logical action boundary." A failure is reported as an
// OutputError and triggers an orderly shutdown — see Engine.Run.
func (e *Engine) emitRaw(key keycode.Key, press bool) {
	var err error
	if press {
		err = e.sink.Press(key)
	} else {
		err = e.sink.Release(key)
	}
	if err != nil {
		e.fail(&OutputError{Err: err})
		return
	}
	if err := e.sink.Sync(); err != nil {
		e.fail(&OutputError{Err: err})
		return
	}
	if press {
		e.state.heldOutput[key] = true
	} else {
		delete(e.state.heldOutput, key)
	}
}

// physicalModifierKeys returns the output-identity keys currently held on
// the input side that belong to a logical modifier — each physical key
// resolved through its modmap identity first (effectiveHeldKey), so a key
// like CapsLock remapped to LEFT_CTRL is reported as LEFT_CTRL, matching
// the output-key identities emitCombo compares it against. Used by
// EmitCombo's restore step to tell "input-held" modifiers from
// combo-added ones.
func (e *Engine) physicalModifierKeys() map[keycode.Key]bool {
	out := make(map[keycode.Key]bool)
	for k := range e.state.heldInput {
		effective := e.effectiveHeldKey(k)
		if _, _, ok := e.rules.Modifiers.ModifierForKey(effective); ok {
			out[effective] = true
		}
	}
	return out
}

func (e *Engine) outputKeyForSidedMod(sm keycode.SidedModifier) keycode.Key {
	keys := e.rules.Modifiers.KeysFor(sm.Mod)
	for _, mk := range keys {
		if sm.Side == keycode.SideEither || mk.Side == sm.Side {
			return mk.Key
		}
	}
	if len(keys) > 0 {
		return keys[0].Key
	}
	return keycode.KeyReserved
}

// executeAction runs action, recursing through Sequence/EnterSubmap's
// Immediately/Custom's returned action as needed. trigger is the input
// key whose press resolved to this action, needed by Bind.
func (e *Engine) executeAction(ctx winctx.Context, action ruleset.Action, trigger keycode.Key) {
	switch a := action.(type) {
	case ruleset.EmitCombo:
		e.emitCombo(a.Combo, trigger, false)
	case ruleset.Bind:
		e.emitCombo(a.Combo, trigger, true)
	case ruleset.Sequence:
		for _, child := range a.Actions {
			e.executeAction(ctx, child, trigger)
		}
	case ruleset.EnterSubmap:
		composed := a.Submap.Compose(ctx)
		sub := &activeSubmap{composed: composed}
		if e.cfg.SubmapInactivity > 0 {
			sub.timerID = e.scheduler.Schedule(timer.CategorySubmap, e.cfg.SubmapInactivity, func(time.Time) {
				e.state.submap = nil
			})
		}
		e.state.submap = sub
		if a.Immediately != nil {
			e.executeAction(ctx, a.Immediately, trigger)
		}
	case ruleset.EscapeNext:
		e.state.nextKey = ModeEscape
	case ruleset.IgnoreNext:
		e.state.nextKey = ModeIgnore
	case ruleset.Custom:
		result, err := func() (res ruleset.Action, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return a.Fn(ctx)
		}()
		if err != nil {
			e.logger.Printf("%v", &CustomCallbackError{Name: a.Name, Err: err})
			return
		}
		if result != nil {
			e.executeAction(ctx, result, trigger)
		}
	}
}

// emitCombo implements spec section 4.9's EmitCombo bracketing. When
// bind is true, output-only modifiers are retained (registered on
// state.binds) instead of released in step 6, until the trigger key is
// released (Engine.handleRelease calls releaseBind).
func (e *Engine) emitCombo(combo keycode.Combo, trigger keycode.Key, bind bool) {
	target := make(map[keycode.Key]bool, len(combo.Mods))
	for _, sm := range combo.Mods {
		target[e.outputKeyForSidedMod(sm)] = true
	}

	physHeld := e.physicalModifierKeys()

	var toRelease, toPress []keycode.Key
	for k := range e.state.heldOutput {
		if _, _, ok := e.rules.Modifiers.ModifierForKey(k); ok && !target[k] {
			toRelease = append(toRelease, k)
		}
	}
	for k := range target {
		if !e.state.heldOutput[k] {
			toPress = append(toPress, k)
		}
	}

	for _, k := range toRelease {
		e.emitRaw(k, false)
	}
	for _, k := range toPress {
		e.emitRaw(k, true)
	}

	if e.cfg.KeyPreDelay > 0 {
		time.Sleep(e.cfg.KeyPreDelay)
	}
	e.emitRaw(combo.Key, true)
	e.emitRaw(combo.Key, false)
	if e.cfg.KeyPostDelay > 0 {
		time.Sleep(e.cfg.KeyPostDelay)
	}

	for _, k := range toRelease {
		if physHeld[k] {
			e.emitRaw(k, true)
		}
	}

	addedOnly := make(map[keycode.Key]bool, len(toPress))
	for _, k := range toPress {
		if !physHeld[k] {
			addedOnly[k] = true
		}
	}
	if bind && len(addedOnly) > 0 {
		e.state.binds[trigger] = &activeBind{trigger: trigger, outputMods: addedOnly}
		return
	}
	for k := range addedOnly {
		e.emitRaw(k, false)
	}
}

// releaseBind releases a Bind's retained output modifiers once its
// trigger key is physically released (spec section 9's open-question
// resolution: trigger release, not submap exit).
func (e *Engine) releaseBind(trigger keycode.Key) {
	bind, ok := e.state.binds[trigger]
	if !ok {
		return
	}
	delete(e.state.binds, trigger)
	for k := range bind.outputMods {
		if e.state.heldOutput[k] {
			e.emitRaw(k, false)
		}
	}
}
