//go:build linux

package device

import (
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/arjunp/keyremap/internal/keycode"
)

// keycode.Key values are numbered to match linux/input-event-codes.h, the
// same numbering evdev.EvCode uses, so the codec is a plain reinterpret —
// but it stays a named conversion rather than scattered casts so the one
// place this assumption lives is easy to find.
func toEvCode(k keycode.Key) evdev.EvCode { return evdev.EvCode(k) }

func fromEvCode(c evdev.EvCode) keycode.Key { return keycode.Key(c) }

// uinputCapabilities returns the EV_KEY capability set the synthetic
// device is registered with: the full universe of keys this engine can
// ever emit (spec section 4.2 / external interfaces: "one virtual keyboard
// registered with the superset of all Keys the engine can emit").
func uinputCapabilities() map[evdev.EvType][]evdev.EvCode {
	keys := keycode.AllKeys()
	codes := make([]evdev.EvCode, len(keys))
	for i, k := range keys {
		codes[i] = toEvCode(k)
	}
	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: codes,
	}
}

func timevalToTime(tv syscall.Timeval) time.Time {
	return time.Unix(int64(tv.Sec), int64(tv.Usec)*int64(time.Microsecond))
}
