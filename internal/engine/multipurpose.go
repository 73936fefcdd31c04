package engine

import (
	"time"

	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/ruleset"
	"github.com/arjunp/keyremap/internal/timer"
)

type mpPhase int

const (
	mpUndecided mpPhase = iota
	mpDecidedTap
	mpDecidedMod
)

// multipurposeState tracks one currently-pressed dual-role key. It only
// exists in State.pendingMP while the key is physically held or has just
// been decided; Idle keys have no entry at all.
type multipurposeState struct {
	mapping ruleset.MultipurposeMapping
	phase   mpPhase
	downAt  time.Time
	timerID timerHandle
}

// beginMultipurpose starts the Undecided state for a key that the active
// multipurpose_modmap claims, arming the decision timer (spec section 4.6).
func (e *Engine) beginMultipurpose(key keycode.Key, mapping ruleset.MultipurposeMapping, now time.Time) {
	st := &multipurposeState{mapping: mapping, phase: mpUndecided, downAt: now}
	st.timerID = e.scheduler.ScheduleAt(timer.CategoryMultipurpose, now.Add(e.cfg.MultipurposeTimeout), func(firedAt time.Time) {
		e.onMultipurposeTimeout(key, firedAt)
	})
	e.state.pendingMP[key] = st
}

// notifyOtherKeyPressed implements decision rule 1: any Undecided
// multipurpose key resolves to DecidedMod, modifier press emitted, before
// the triggering key is processed any further. except excludes the key
// that is itself causing this notification, if it happens to also be a
// pending multipurpose key already past Undecided.
func (e *Engine) notifyOtherKeyPressed(except keycode.Key, now time.Time) {
	for key, st := range e.state.pendingMP {
		if key == except || st.phase != mpUndecided {
			continue
		}
		e.decideMultipurposeMod(key, st, now)
	}
}

func (e *Engine) decideMultipurposeMod(key keycode.Key, st *multipurposeState, now time.Time) {
	e.scheduler.Cancel(st.timerID)
	st.phase = mpDecidedMod
	e.emitRaw(st.mapping.Hold, true)
}

func (e *Engine) onMultipurposeTimeout(key keycode.Key, now time.Time) {
	st, ok := e.state.pendingMP[key]
	if !ok || st.phase != mpUndecided {
		return
	}
	// Decision rule 3: timer fired while Undecided and still held.
	st.phase = mpDecidedMod
	e.emitRaw(st.mapping.Hold, true)
}

// releaseMultipurpose implements the release half of decision rules 2 and
// 4: a release while Undecided emits the tap key; a release after
// DecidedMod emits the modifier release.
func (e *Engine) releaseMultipurpose(key keycode.Key, st *multipurposeState) {
	e.scheduler.Cancel(st.timerID)
	switch st.phase {
	case mpUndecided:
		// The tap emission counts as "another key pressed" for any other
		// still-Undecided multipurpose key.
		e.notifyOtherKeyPressed(key, time.Now())
		e.emitRaw(st.mapping.Tap, true)
		e.emitRaw(st.mapping.Tap, false)
	case mpDecidedMod:
		e.emitRaw(st.mapping.Hold, false)
	case mpDecidedTap:
		// already emitted at decision time; nothing further.
	}
	delete(e.state.pendingMP, key)
}
