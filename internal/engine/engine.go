// Package engine implements the event transformation engine: the
// single-threaded cooperative loop that reads physical key events from a
// device.Source, resolves them against a ruleset.RuleSet, and drives a
// device.Sink. Every exported piece of state here is touched only from
// the goroutine running Run, by construction — see spec section 5's
// concurrency model.
package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/arjunp/keyremap/internal/device"
	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/ruleset"
	"github.com/arjunp/keyremap/internal/timer"
	"github.com/arjunp/keyremap/internal/winctx"
)

// timerHandle aliases timer.ID; the zero value means "no timer armed"
// since Scheduler's first-issued ID is 1.
type timerHandle = timer.ID

// ErrEmergencyEject is returned by Run when the configured eject key was
// pressed. The caller (cmd/keyremapd) is expected to exit the process
// after Run returns it, per spec section 5's cancellation model.
var ErrEmergencyEject = errors.New("emergency eject key pressed")

// Config holds the tunables spec section 6 lists under "configuration
// surface", already resolved to concrete durations and keys by the
// internal/config package.
type Config struct {
	MultipurposeTimeout time.Duration
	SuspendTimeout      time.Duration
	KeyPreDelay         time.Duration
	KeyPostDelay        time.Duration
	SubmapInactivity    time.Duration
	EjectKey            keycode.Key
	DiagnosticsKey      keycode.Key
}

// DefaultConfig matches spec section 6's stated defaults.
func DefaultConfig() Config {
	return Config{
		MultipurposeTimeout: time.Second,
		SuspendTimeout:      time.Second,
		EjectKey:            keycode.KeyF16,
		DiagnosticsKey:      keycode.KeyF15,
	}
}

// Snapshot is a point-in-time diagnostics dump, requested via the
// configured dump_diagnostics_key (spec section 6) and rendered by
// internal/diag.
type Snapshot struct {
	Seq        uint64
	HeldInput  []keycode.Key
	HeldOutput []keycode.Key
	Suspended  []keycode.Key
	SubmapOn   bool
	PendingMP  []keycode.Key
}

// Engine owns the event loop. Construct with New and run with Run.
type Engine struct {
	rules     *ruleset.RuleSet
	provider  winctx.Provider
	source    device.Source
	sink      device.Sink
	scheduler *timer.Scheduler
	state     *State
	cfg       Config
	logger    *log.Logger

	onDiagnostics func(Snapshot)

	stopErr error
}

// New wires an Engine from its collaborators. rules must already be
// validated (ConfigError is raised before this point, by the caller that
// builds the RuleSet).
func New(rules *ruleset.RuleSet, provider winctx.Provider, source device.Source, sink device.Sink, cfg Config, logger *log.Logger) *Engine {
	return &Engine{
		rules:     rules,
		provider:  provider,
		source:    source,
		sink:      sink,
		scheduler: timer.NewScheduler(),
		state:     newState(),
		cfg:       cfg,
		logger:    logger,
	}
}

// OnDiagnostics registers a callback invoked whenever the diagnostics-dump
// key fires. internal/diag uses this to feed its live view.
func (e *Engine) OnDiagnostics(fn func(Snapshot)) {
	e.onDiagnostics = fn
}

// Run drives the loop until ctx is cancelled, the source is exhausted, or
// the emergency eject key is pressed. It always performs an orderly
// release of held_output before returning, per spec section 5.
func (e *Engine) Run(ctx context.Context) error {
	for {
		var timerC <-chan time.Time
		var armed *time.Timer
		if deadline, ok := e.scheduler.NextDeadline(); ok {
			d := time.Until(deadline)
			if d < 0 {
				d = 0
			}
			armed = time.NewTimer(d)
			timerC = armed.C
		}

		select {
		case <-ctx.Done():
			if armed != nil {
				armed.Stop()
			}
			e.shutdown()
			return ctx.Err()

		case ev, ok := <-e.source.Events():
			if armed != nil {
				armed.Stop()
			}
			if !ok {
				e.shutdown()
				return errors.New("input source closed")
			}
			e.dispatch(ev)

		case err, ok := <-e.source.Errs():
			if armed != nil {
				armed.Stop()
			}
			if ok {
				e.logger.Printf("%v", &DeviceError{Err: err})
			}

		case firedAt := <-timerC:
			for _, cb := range e.scheduler.Expired(firedAt) {
				cb()
			}
		}

		if e.stopErr != nil {
			err := e.stopErr
			e.shutdown()
			return err
		}
	}
}

// fail records a fatal error (spec section 7: OutputError and "no
// devices" are the only kinds that propagate to shutdown) so Run's next
// loop iteration tears down and returns it.
func (e *Engine) fail(err error) {
	if e.stopErr == nil {
		e.stopErr = err
	}
}

// dispatch routes one KeyEvent: the eject and diagnostics keys are
// intercepted ahead of ordinary rule processing since they are global,
// config-level controls rather than remappable input.
func (e *Engine) dispatch(ev device.KeyEvent) {
	if ev.Action == device.Repeat {
		return
	}
	if ev.Action == device.Press && ev.Key == e.cfg.EjectKey {
		e.fail(ErrEmergencyEject)
		return
	}
	if ev.Action == device.Press && ev.Key == e.cfg.DiagnosticsKey {
		e.dumpDiagnostics()
		return
	}

	switch ev.Action {
	case device.Press:
		ctx := e.provider.Snapshot()
		if ctx.DeviceName == "" {
			ctx.DeviceName = ev.Device
		}
		e.handlePress(ctx, ev.Key, ev.Time)
	case device.Release:
		e.handleRelease(ev.Key)
	}
}

func (e *Engine) dumpDiagnostics() {
	if e.onDiagnostics == nil {
		return
	}
	e.state.seq++
	snap := Snapshot{Seq: e.state.seq, SubmapOn: e.state.submap != nil}
	for k := range e.state.heldInput {
		snap.HeldInput = append(snap.HeldInput, k)
	}
	snap.HeldOutput = e.state.HeldOutputKeys()
	for _, sm := range e.state.suspended {
		snap.Suspended = append(snap.Suspended, sm.key)
	}
	for k := range e.state.pendingMP {
		snap.PendingMP = append(snap.PendingMP, k)
	}
	e.onDiagnostics(snap)
}

// shutdown disarms every timer and releases every output key, via the
// Sink's own Close guarantee (device.Sink.Close always releases
// held_output independently of engine bookkeeping — defense in depth for
// the "every output press has a matching output release" invariant).
func (e *Engine) shutdown() {
	e.scheduler.CancelAll()
	if err := e.sink.Close(); err != nil {
		e.logger.Printf("sink close: %v", err)
	}
	if err := e.source.Close(); err != nil {
		e.logger.Printf("source close: %v", err)
	}
}
