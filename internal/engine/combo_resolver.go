package engine

import (
	"time"

	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/winctx"
)

// handlePress is the engine's entry point for a physical key-down,
// implementing the dispatch order spec section 2 describes: modmap
// substitution, then classification into modifier / multipurpose /
// ordinary combo handling.
func (e *Engine) handlePress(ctx winctx.Context, key keycode.Key, now time.Time) {
	e.state.heldInput[key] = true

	switch e.state.nextKey {
	case ModeEscape:
		e.state.nextKey = ModeNormal
		e.state.activeKeys[key] = &keyDisposition{effective: key}
		e.emitRaw(key, true)
		return
	case ModeIgnore:
		e.state.nextKey = ModeNormal
		e.state.activeKeys[key] = &keyDisposition{effective: key, ignored: true}
		return
	}

	e.notifyOtherKeyPressed(key, now)

	effective := e.rules.ResolveModmap(ctx, key)
	e.state.activeKeys[key] = &keyDisposition{effective: effective}

	if mod, side, ok := e.rules.Modifiers.ModifierForKey(effective); ok {
		e.suspendModifier(effective, mod, side, now)
		return
	}

	if mapping, ok := e.rules.ResolveMultipurpose(ctx, effective); ok {
		e.beginMultipurpose(effective, mapping, now)
		return
	}

	e.resolveCombo(ctx, key, effective)
}

// resolveCombo is the combo resolver proper (spec section 4.8), reached
// for any pressed key that is neither a modifier nor multipurpose-claimed.
func (e *Engine) resolveCombo(ctx winctx.Context, physical, effective keycode.Key) {
	// Suspended modifiers still count toward the lookup mask: only their
	// output commit is deferred, not their logical presence (section 8's
	// Combo remap scenario requires Cmd-s to resolve while LEFT_META is
	// still in the suspend queue).
	mask := e.modifierMask(nil)

	if e.state.submap != nil {
		sub := e.state.submap
		e.state.submap = nil
		if sub.timerID != 0 {
			e.scheduler.Cancel(sub.timerID)
		}
		if action, ok := sub.composed.Lookup(mask, effective); ok {
			e.discardAllSuspended()
			e.executeAction(ctx, action, physical)
			return
		}
		// Miss: fall through to the outer composed keymap before
		// giving up, per section 4.8 step 3.
	}

	composed := e.rules.ComposeKeymap(ctx)
	if action, ok := composed.Lookup(mask, effective); ok {
		e.discardAllSuspended()
		e.executeAction(ctx, action, physical)
		return
	}

	e.commitAllSuspended()
	e.emitRaw(effective, true)
}

// handleRelease is the engine's entry point for a physical key-up. It
// routes by whatever the key's press-time disposition recorded, since
// rule lookups are not repeated on release (section 3).
func (e *Engine) handleRelease(key keycode.Key) {
	delete(e.state.heldInput, key)

	disp, ok := e.state.activeKeys[key]
	if !ok {
		return
	}
	delete(e.state.activeKeys, key)

	e.releaseBind(key)

	if disp.ignored {
		return
	}
	effective := disp.effective

	if sm, i := e.findSuspended(effective); sm != nil {
		e.releaseSuspendedBareTap(sm, i)
		return
	}
	if e.state.discardedMods[effective] {
		delete(e.state.discardedMods, effective)
		return
	}
	if mpSt, ok := e.state.pendingMP[effective]; ok {
		e.releaseMultipurpose(effective, mpSt)
		return
	}
	if e.state.heldOutput[effective] {
		e.emitRaw(effective, false)
	}
}
