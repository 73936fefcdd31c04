package engine

import (
	"time"

	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/timer"
)

// suspendModifier withholds a just-pressed modifier key's output press,
// per spec section 4.7: every modifier key-down enters the suspend queue
// so a later bare tap, or absorption into a remapped combo, both stay
// possible. Ordering is preserved by appending to the slice.
func (e *Engine) suspendModifier(key keycode.Key, mod keycode.Modifier, side keycode.Side, now time.Time) {
	sm := &suspendedModifier{key: key, modifier: mod, side: side, pressed: now}
	sm.timerID = e.scheduler.ScheduleAt(timer.CategorySuspend, now.Add(e.cfg.SuspendTimeout), func(firedAt time.Time) {
		e.onSuspendTimeout(key, firedAt)
	})
	e.state.suspended = append(e.state.suspended, sm)
}

func (e *Engine) findSuspended(key keycode.Key) (*suspendedModifier, int) {
	for i, sm := range e.state.suspended {
		if sm.key == key {
			return sm, i
		}
	}
	return nil, -1
}

func (e *Engine) removeSuspendedAt(i int) {
	e.state.suspended = append(e.state.suspended[:i], e.state.suspended[i+1:]...)
}

// onSuspendTimeout commits a single suspended modifier once its own
// timeout elapses with no other key pressed meanwhile, per "timeout
// elapses ⇒ commit the press (so that holding the modifier for use in
// unmapped combos still works)."
func (e *Engine) onSuspendTimeout(key keycode.Key, now time.Time) {
	sm, i := e.findSuspended(key)
	if sm == nil {
		return
	}
	e.removeSuspendedAt(i)
	e.emitRaw(key, true)
}

// releaseSuspendedBareTap handles a release arriving for a key that is
// still sitting in the suspend queue untouched: "the modifier is
// released before any other key ⇒ emit press and release in immediate
// succession (a bare tap)."
func (e *Engine) releaseSuspendedBareTap(sm *suspendedModifier, i int) {
	e.scheduler.Cancel(sm.timerID)
	e.removeSuspendedAt(i)
	e.emitRaw(sm.key, true)
	e.emitRaw(sm.key, false)
}

// commitAllSuspended presses every currently-suspended modifier, in
// input order, then clears the queue. Used when a following key fails
// to match any remapped combo (spec section 4.8 step 6). A suspended
// modifier that is itself released goes through releaseSuspendedBareTap
// instead, which leaves the rest of the queue in place.
func (e *Engine) commitAllSuspended() {
	pending := e.state.suspended
	e.state.suspended = nil
	for _, sm := range pending {
		e.scheduler.Cancel(sm.timerID)
		e.emitRaw(sm.key, true)
	}
}

// discardAllSuspended drops every currently-suspended modifier without
// ever emitting its output press, because a following key resolved to a
// remapped combo that dictates its own, different output modifiers
// (spec section 4.8 step 5: "the input modifiers that were suspended are
// dropped (not committed) for the duration of this press"). The physical
// keys are marked discarded so their eventual release emits nothing.
func (e *Engine) discardAllSuspended() {
	pending := e.state.suspended
	e.state.suspended = nil
	for _, sm := range pending {
		e.scheduler.Cancel(sm.timerID)
		e.state.discardedMods[sm.key] = true
	}
}
