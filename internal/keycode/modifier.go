package keycode

import (
	"strconv"
	"strings"
)

// Modifier is a logical modifier role. The built-in roles cover the usual
// keyboard modifiers; user-defined roles (e.g. "Hyper") are added at
// runtime starting at modifierUserBase.
type Modifier uint8

const (
	ModControl Modifier = iota
	ModAlt
	ModShift
	ModSuper
	ModFn
	modifierUserBase
)

// Side constrains a modifier to one physical half of the keyboard, or
// leaves it unconstrained ("either side satisfies the modifier").
type Side uint8

const (
	SideEither Side = iota
	SideLeft
	SideRight
)

// modifierKey is one physical key that can satisfy a Modifier, annotated
// with which side it is. builtinModifierKeys lists them for each built-in
// Modifier.
type modifierKey struct {
	Key  Key
	Side Side
}

var builtinModifierKeys = map[Modifier][]modifierKey{
	ModControl: {{KeyLeftCtrl, SideLeft}, {KeyRightCtrl, SideRight}},
	ModAlt:     {{KeyLeftAlt, SideLeft}, {KeyRightAlt, SideRight}},
	ModShift:   {{KeyLeftShift, SideLeft}, {KeyRightShift, SideRight}},
	ModSuper:   {{KeyLeftMeta, SideLeft}, {KeyRightMeta, SideRight}},
}

var builtinModifierNames = map[Modifier]string{
	ModControl: "Ctrl",
	ModAlt:     "Alt",
	ModShift:   "Shift",
	ModSuper:   "Super",
	ModFn:      "Fn",
}

var modifierAliases = map[string]Modifier{
	"CTRL": ModControl, "C": ModControl, "CONTROL": ModControl,
	"ALT": ModAlt,
	"SHIFT": ModShift,
	"SUPER": ModSuper, "WIN": ModSuper, "COMMAND": ModSuper, "CMD": ModSuper,
	"FN": ModFn,
}

// ModifierSet is a custom-modifier registry: it lets a rule set add new
// logical modifiers (e.g. "Hyper") backed by arbitrary keys, per spec
// section 6's add_modifier(name, aliases, keys).
type ModifierSet struct {
	next    Modifier
	names   map[Modifier]string
	aliases map[string]Modifier
	keys    map[Modifier][]modifierKey
}

// NewModifierSet returns a ModifierSet seeded with the built-in modifiers.
func NewModifierSet() *ModifierSet {
	ms := &ModifierSet{
		next:    modifierUserBase,
		names:   make(map[Modifier]string, len(builtinModifierNames)),
		aliases: make(map[string]Modifier, len(modifierAliases)),
		keys:    make(map[Modifier][]modifierKey, len(builtinModifierKeys)),
	}
	for m, n := range builtinModifierNames {
		ms.names[m] = n
	}
	for a, m := range modifierAliases {
		ms.aliases[a] = m
	}
	for m, ks := range builtinModifierKeys {
		ms.keys[m] = append([]modifierKey(nil), ks...)
	}
	return ms
}

// AddModifier registers a new logical modifier named name, reachable under
// any of aliases, backed by keys (each unsided: either physical instance
// satisfies it, since custom modifiers rarely have a natural left/right
// split).
func (ms *ModifierSet) AddModifier(name string, aliases []string, keys []Key) Modifier {
	m := ms.next
	ms.next++
	ms.names[m] = name
	ms.aliases[normalizeToken(name)] = m
	for _, a := range aliases {
		ms.aliases[normalizeToken(a)] = m
	}
	mks := make([]modifierKey, len(keys))
	for i, k := range keys {
		mks[i] = modifierKey{Key: k, Side: SideEither}
	}
	ms.keys[m] = mks
	return m
}

// Resolve looks up a modifier token (one of the built-in aliases or a
// custom modifier name/alias), case-insensitively.
func (ms *ModifierSet) Resolve(token string) (Modifier, bool) {
	m, ok := ms.aliases[normalizeToken(token)]
	return m, ok
}

// Name returns the canonical display name of m.
func (ms *ModifierSet) Name(m Modifier) string {
	if n, ok := ms.names[m]; ok {
		return n
	}
	return "Mod" + strconv.Itoa(int(m))
}

// KeysFor returns the physical keys (with side annotations) that satisfy m.
func (ms *ModifierSet) KeysFor(m Modifier) []modifierKey {
	return ms.keys[m]
}

// ModifierForKey returns the modifier (and its side) that k belongs to, if
// k is a modifier key under this set.
func (ms *ModifierSet) ModifierForKey(k Key) (Modifier, Side, bool) {
	for m, ks := range ms.keys {
		for _, mk := range ks {
			if mk.Key == k {
				return m, mk.Side, true
			}
		}
	}
	return 0, SideEither, false
}

func normalizeToken(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
