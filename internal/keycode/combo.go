package keycode

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidCombo reports why a combo string failed to parse.
type InvalidCombo struct {
	Input  string
	Reason string
}

func (e *InvalidCombo) Error() string {
	return fmt.Sprintf("invalid combo %q: %s", e.Input, e.Reason)
}

// SidedModifier is one modifier term of a Combo: the logical modifier plus
// an optional side constraint.
type SidedModifier struct {
	Mod  Modifier
	Side Side
}

// Combo is a modifier mask plus a base key, with optional left/right side
// constraints on any of its modifiers.
type Combo struct {
	Mods []SidedModifier
	Key  Key
}

// ParseCombo parses a string of the form "(<Mod>-)*<Key>" against ms.
// Modifier tokens accept the aliases registered in ms, with an optional
// leading "L"/"R" side prefix (e.g. "LCtrl", "RAlt"). Key tokens resolve
// case-insensitively against the Key enumeration.
func ParseCombo(s string, ms *ModifierSet) (Combo, error) {
	parts := strings.Split(s, "-")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Combo{}, &InvalidCombo{Input: s, Reason: "missing base key"}
	}

	keyTok := parts[len(parts)-1]
	modToks := parts[:len(parts)-1]

	key, ok := KeyFromName(keyTok)
	if !ok {
		return Combo{}, &InvalidCombo{Input: s, Reason: fmt.Sprintf("unknown key %q", keyTok)}
	}

	seen := make(map[Modifier]bool, len(modToks))
	mods := make([]SidedModifier, 0, len(modToks))
	for _, tok := range modToks {
		if tok == "" {
			return Combo{}, &InvalidCombo{Input: s, Reason: "empty modifier token"}
		}
		side := SideEither
		rest := tok
		upper := strings.ToUpper(tok)
		if strings.HasPrefix(upper, "L") {
			if _, ok := ms.Resolve(tok[1:]); ok {
				side = SideLeft
				rest = tok[1:]
			}
		} else if strings.HasPrefix(upper, "R") {
			if _, ok := ms.Resolve(tok[1:]); ok {
				side = SideRight
				rest = tok[1:]
			}
		}
		mod, ok := ms.Resolve(rest)
		if !ok {
			return Combo{}, &InvalidCombo{Input: s, Reason: fmt.Sprintf("unknown modifier %q", tok)}
		}
		if seen[mod] {
			return Combo{}, &InvalidCombo{Input: s, Reason: fmt.Sprintf("duplicate modifier %q", ms.Name(mod))}
		}
		seen[mod] = true
		mods = append(mods, SidedModifier{Mod: mod, Side: side})
	}

	sort.Slice(mods, func(i, j int) bool { return mods[i].Mod < mods[j].Mod })
	return Combo{Mods: mods, Key: key}, nil
}

// String renders c back to canonical form: modifiers sorted, side prefixes
// preserved, using each modifier's canonical (non-alias) name.
func (c Combo) String(ms *ModifierSet) string {
	var b strings.Builder
	for _, m := range c.Mods {
		switch m.Side {
		case SideLeft:
			b.WriteString("L")
		case SideRight:
			b.WriteString("R")
		}
		b.WriteString(ms.Name(m.Mod))
		b.WriteString("-")
	}
	b.WriteString(c.Key.String())
	return b.String()
}

// MaskKey is a canonical, comparable key for combo lookup tables: the sorted
// (modifier, side) pairs plus the base key. Two combos that differ only in
// modifier ordering produce the same MaskKey.
type MaskKey string

// Mask returns c's lookup key for use in a composed keymap.
func (c Combo) Mask() MaskKey {
	var b strings.Builder
	for _, m := range c.Mods {
		fmt.Fprintf(&b, "%d:%d|", m.Mod, m.Side)
	}
	fmt.Fprintf(&b, "k%d", c.Key)
	return MaskKey(b.String())
}
