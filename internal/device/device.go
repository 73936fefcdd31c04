// Package device abstracts kernel input-device grabbing and synthetic
// output-device emission behind the Source and Sink capabilities spec
// section 4.2 describes. Nothing above this package knows whether a key
// event came from evdev, and nothing below the engine knows it is writing
// to uinput rather than, say, a test double.
package device

import (
	"time"

	"github.com/arjunp/keyremap/internal/keycode"
)

// Action is the kind of a KeyEvent. Repeat is discarded by Source before
// events ever reach a channel — the kernel re-synthesizes repeat from
// whatever the Sink emits downstream, per spec section 3.
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	case Repeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// KeyEvent is a single physical key transition read from a Source.
type KeyEvent struct {
	Key    keycode.Key
	Action Action
	Time   time.Time
	Device string
}

// Source yields KeyEvents from one or more exclusively-grabbed kernel
// input devices, in kernel arrival order. Events and Errs are closed
// together when the Source shuts down.
type Source interface {
	Events() <-chan KeyEvent
	Errs() <-chan error
	Close() error
}

// Sink owns a single synthetic input device. Callers must call Sync after
// every logical action boundary (spec section 4.2); on Close, every key
// still logically held is released before the device is torn down.
type Sink interface {
	Press(key keycode.Key) error
	Release(key keycode.Key) error
	Sync() error
	Close() error
}
