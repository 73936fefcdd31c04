//go:build linux

package device

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"

	"github.com/arjunp/keyremap/internal/keycode"
)

// evdevSink owns a synthetic uinput keyboard. It tracks every key it has
// pressed but not yet released so Close can satisfy the spec's shutdown
// guarantee: no key is left stuck down in the kernel's eyes.
type evdevSink struct {
	dev        *evdev.InputDevice
	heldOutput map[keycode.Key]bool
}

// OpenSink registers a synthetic input device named name, capable of
// emitting the full key universe uinputCapabilities reports.
func OpenSink(name string) (Sink, error) {
	dev, err := evdev.CreateDevice(name, evdev.InputID{
		BusType: 0x03, // BUS_USB, matching the convention other uinput emitters use
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}, uinputCapabilities())
	if err != nil {
		return nil, fmt.Errorf("create uinput device %q: %w", name, err)
	}
	return &evdevSink{dev: dev, heldOutput: make(map[keycode.Key]bool)}, nil
}

func (s *evdevSink) Press(key keycode.Key) error {
	if err := s.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: toEvCode(key), Value: 1}); err != nil {
		return fmt.Errorf("press %v: %w", key, err)
	}
	s.heldOutput[key] = true
	return nil
}

func (s *evdevSink) Release(key keycode.Key) error {
	if err := s.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: toEvCode(key), Value: 0}); err != nil {
		return fmt.Errorf("release %v: %w", key, err)
	}
	delete(s.heldOutput, key)
	return nil
}

func (s *evdevSink) Sync() error {
	if err := s.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0}); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// Close releases every key still logically held before tearing the device
// down, per the emergency-eject and ordinary-shutdown invariant in spec
// section 4.2 ("on shutdown, every key in held_output is released").
func (s *evdevSink) Close() error {
	for key := range s.heldOutput {
		_ = s.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: toEvCode(key), Value: 0})
	}
	_ = s.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0})
	s.heldOutput = nil

	if err := s.dev.Close(); err != nil {
		return fmt.Errorf("close uinput device: %w", err)
	}
	return nil
}
