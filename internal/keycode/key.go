// Package keycode defines the engine's physical-key and modifier vocabulary
// and the parser for human-readable combo strings. It has no knowledge of
// keyboard layouts: a Key is a stable identifier tied to kernel keycodes,
// never a typed character.
package keycode

import (
	"strconv"
	"strings"
)

// Key identifies a physical key. Values are stable across runs and line up
// with Linux kernel input-event-codes.h KEY_* constants, the way the
// teacher's internal/hotkey keyNameMap does for its smaller hotkey-only
// subset.
type Key uint16

// Key constants, numbered to match linux/input-event-codes.h.
const (
	KeyReserved Key = 0
	KeyEsc      Key = 1
	Key1        Key = 2
	Key2        Key = 3
	Key3        Key = 4
	Key4        Key = 5
	Key5        Key = 6
	Key6        Key = 7
	Key7        Key = 8
	Key8        Key = 9
	Key9        Key = 10
	Key0        Key = 11
	KeyMinus    Key = 12
	KeyEqual    Key = 13
	KeyBackspace Key = 14
	KeyTab      Key = 15
	KeyQ        Key = 16
	KeyW        Key = 17
	KeyE        Key = 18
	KeyR        Key = 19
	KeyT        Key = 20
	KeyY        Key = 21
	KeyU        Key = 22
	KeyI        Key = 23
	KeyO        Key = 24
	KeyP        Key = 25
	KeyLeftBrace  Key = 26
	KeyRightBrace Key = 27
	KeyEnter    Key = 28
	KeyLeftCtrl Key = 29
	KeyA        Key = 30
	KeyS        Key = 31
	KeyD        Key = 32
	KeyF        Key = 33
	KeyG        Key = 34
	KeyH        Key = 35
	KeyJ        Key = 36
	KeyK        Key = 37
	KeyL        Key = 38
	KeySemicolon  Key = 39
	KeyApostrophe Key = 40
	KeyGrave    Key = 41
	KeyLeftShift Key = 42
	KeyBackslash Key = 43
	KeyZ        Key = 44
	KeyX        Key = 45
	KeyC        Key = 46
	KeyV        Key = 47
	KeyB        Key = 48
	KeyN        Key = 49
	KeyM        Key = 50
	KeyComma    Key = 51
	KeyDot      Key = 52
	KeySlash    Key = 53
	KeyRightShift Key = 54
	KeyKPAsterisk Key = 55
	KeyLeftAlt  Key = 56
	KeySpace    Key = 57
	KeyCapsLock Key = 58
	KeyF1       Key = 59
	KeyF2       Key = 60
	KeyF3       Key = 61
	KeyF4       Key = 62
	KeyF5       Key = 63
	KeyF6       Key = 64
	KeyF7       Key = 65
	KeyF8       Key = 66
	KeyF9       Key = 67
	KeyF10      Key = 68
	KeyNumLock  Key = 69
	KeyScrollLock Key = 70
	KeyKP7      Key = 71
	KeyKP8      Key = 72
	KeyKP9      Key = 73
	KeyKPMinus  Key = 74
	KeyKP4      Key = 75
	KeyKP5      Key = 76
	KeyKP6      Key = 77
	KeyKPPlus   Key = 78
	KeyKP1      Key = 79
	KeyKP2      Key = 80
	KeyKP3      Key = 81
	KeyKP0      Key = 82
	KeyKPDot    Key = 83
	KeyF11      Key = 87
	KeyF12      Key = 88
	KeyKPEnter  Key = 96
	KeyRightCtrl Key = 97
	KeyKPSlash  Key = 98
	KeyRightAlt Key = 100
	KeyHome     Key = 102
	KeyUp       Key = 103
	KeyPageUp   Key = 104
	KeyLeft     Key = 105
	KeyRight    Key = 106
	KeyEnd      Key = 107
	KeyDown     Key = 108
	KeyPageDown Key = 109
	KeyInsert   Key = 110
	KeyDelete   Key = 111
	KeyPause    Key = 119
	KeyLeftMeta Key = 125
	KeyRightMeta Key = 126
	KeyCompose  Key = 127
	KeyF13      Key = 183
	KeyF14      Key = 184
	KeyF15      Key = 185
	KeyF16      Key = 186
	KeyF17      Key = 187
	KeyF18      Key = 188
	KeyF19      Key = 189
	KeyF20      Key = 190
	KeyF21      Key = 191
	KeyF22      Key = 192
	KeyF23      Key = 193
	KeyF24      Key = 194
)

// names is the canonical Key -> kernel-style name table. KeyFromName and
// Key.String are both built from it so the two stay in sync.
var names = map[Key]string{
	KeyEsc: "ESC", Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",
	KeyMinus: "MINUS", KeyEqual: "EQUAL", KeyBackspace: "BACKSPACE", KeyTab: "TAB",
	KeyQ: "Q", KeyW: "W", KeyE: "E", KeyR: "R", KeyT: "T", KeyY: "Y", KeyU: "U",
	KeyI: "I", KeyO: "O", KeyP: "P",
	KeyLeftBrace: "LEFTBRACE", KeyRightBrace: "RIGHTBRACE", KeyEnter: "ENTER",
	KeyLeftCtrl: "LEFTCTRL",
	KeyA: "A", KeyS: "S", KeyD: "D", KeyF: "F", KeyG: "G", KeyH: "H", KeyJ: "J",
	KeyK: "K", KeyL: "L",
	KeySemicolon: "SEMICOLON", KeyApostrophe: "APOSTROPHE", KeyGrave: "GRAVE",
	KeyLeftShift: "LEFTSHIFT", KeyBackslash: "BACKSLASH",
	KeyZ: "Z", KeyX: "X", KeyC: "C", KeyV: "V", KeyB: "B", KeyN: "N", KeyM: "M",
	KeyComma: "COMMA", KeyDot: "DOT", KeySlash: "SLASH",
	KeyRightShift: "RIGHTSHIFT", KeyKPAsterisk: "KPASTERISK", KeyLeftAlt: "LEFTALT",
	KeySpace: "SPACE", KeyCapsLock: "CAPSLOCK",
	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5", KeyF6: "F6",
	KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10",
	KeyNumLock: "NUMLOCK", KeyScrollLock: "SCROLLLOCK",
	KeyKP7: "KP7", KeyKP8: "KP8", KeyKP9: "KP9", KeyKPMinus: "KPMINUS",
	KeyKP4: "KP4", KeyKP5: "KP5", KeyKP6: "KP6", KeyKPPlus: "KPPLUS",
	KeyKP1: "KP1", KeyKP2: "KP2", KeyKP3: "KP3", KeyKP0: "KP0", KeyKPDot: "KPDOT",
	KeyF11: "F11", KeyF12: "F12", KeyKPEnter: "KPENTER", KeyRightCtrl: "RIGHTCTRL",
	KeyKPSlash: "KPSLASH", KeyRightAlt: "RIGHTALT",
	KeyHome: "HOME", KeyUp: "UP", KeyPageUp: "PAGEUP", KeyLeft: "LEFT",
	KeyRight: "RIGHT", KeyEnd: "END", KeyDown: "DOWN", KeyPageDown: "PAGEDOWN",
	KeyInsert: "INSERT", KeyDelete: "DELETE", KeyPause: "PAUSE",
	KeyLeftMeta: "LEFTMETA", KeyRightMeta: "RIGHTMETA", KeyCompose: "COMPOSE",
	KeyF13: "F13", KeyF14: "F14", KeyF15: "F15", KeyF16: "F16", KeyF17: "F17",
	KeyF18: "F18", KeyF19: "F19", KeyF20: "F20", KeyF21: "F21", KeyF22: "F22",
	KeyF23: "F23", KeyF24: "F24",
}

var byName map[string]Key

func init() {
	byName = make(map[string]Key, len(names))
	for k, n := range names {
		byName[n] = k
	}
}

// String returns the kernel-style name of k (e.g. "LEFTCTRL"), or a numeric
// fallback for an unrecognized code.
func (k Key) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "KEY_" + strconv.Itoa(int(k))
}

// KeyFromName resolves a case-insensitive key name (with or without the
// "KEY_" prefix) to its Key value.
func KeyFromName(name string) (Key, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "KEY_")
	k, ok := byName[n]
	return k, ok
}

// AllKeys returns every Key this engine knows how to name, in no
// particular order. Device.Sink uses it to register the synthetic
// device's full key capability universe (spec section 4.2).
func AllKeys() []Key {
	keys := make([]Key, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	return keys
}
