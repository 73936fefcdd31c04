package engine

import "github.com/arjunp/keyremap/internal/keycode"

// effectiveHeldKey resolves a physically-held key to the identity
// handlePress recorded for it at press time — the modmap substitution
// from state.go's keyDisposition, not the raw physical key. Every key in
// heldInput has a disposition recorded (handlePress sets it before doing
// anything else with the key); the fallback to key itself only guards
// against a caller inspecting heldInput out of step with activeKeys.
func (e *Engine) effectiveHeldKey(key keycode.Key) keycode.Key {
	if disp, ok := e.state.activeKeys[key]; ok {
		return disp.effective
	}
	return key
}

// modifierMask computes the currently-held logical modifier state from
// held input keys, per spec section 4.5: "the tracker computes
// modifier_mask() on demand from held_input filtered through the active
// modmap and custom-modifier definitions." Each held key is resolved
// through its modmap identity before the modifier check, so a key like
// CapsLock remapped to LEFT_CTRL contributes Control to the mask exactly
// as LEFT_CTRL itself would. A suspended modifier still counts here —
// its output press is what's deferred, not its contribution to the
// logical mask a combo lookup matches against (section 8's Combo remap
// scenario: Cmd-s must resolve while LEFT_META is still sitting in the
// suspend queue). exclude is for callers with a genuine reason to drop
// specific physical keys from the count.
func (e *Engine) modifierMask(exclude map[keycode.Key]bool) keycode.ModifierState {
	state := keycode.ModifierState{}
	for key := range e.state.heldInput {
		if exclude[key] {
			continue
		}
		effective := e.effectiveHeldKey(key)
		mod, side, ok := e.rules.Modifiers.ModifierForKey(effective)
		if !ok {
			continue
		}
		sides := state[mod]
		switch side {
		case keycode.SideLeft:
			sides |= keycode.HeldLeft
		case keycode.SideRight:
			sides |= keycode.HeldRight
		default:
			sides |= keycode.HeldLeft | keycode.HeldRight
		}
		state[mod] = sides
	}
	return state
}
