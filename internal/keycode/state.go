package keycode

// HeldSides summarizes which physical instances of a logical modifier are
// currently held.
type HeldSides uint8

const (
	HeldNone  HeldSides = 0
	HeldLeft  HeldSides = 1 << 0
	HeldRight HeldSides = 1 << 1
)

// Has reports whether side is currently satisfied by hs. SideEither is
// satisfied by any non-zero HeldSides.
func (hs HeldSides) Has(side Side) bool {
	switch side {
	case SideLeft:
		return hs&HeldLeft != 0
	case SideRight:
		return hs&HeldRight != 0
	default:
		return hs != HeldNone
	}
}

// ModifierState is the set of logical modifiers currently held, refined by
// side. It is the output of the modifier tracker (spec section 4.5) and the
// input to Combo matching (spec section 4.8).
type ModifierState map[Modifier]HeldSides

// Matches reports whether every modifier term of c is satisfied by held.
// An unsided term matches either side; a sided term matches only that side.
func (c Combo) Matches(held ModifierState) bool {
	for _, m := range c.Mods {
		if !held[m.Mod].Has(m.Side) {
			return false
		}
	}
	return true
}

// Specificity ranks c for tie-breaking among combos that both match the
// same held state and key: combos with more explicit side constraints are
// more specific, so "LCtrl-S" outranks "Ctrl-S" when left control is held.
func (c Combo) Specificity() int {
	n := 0
	for _, m := range c.Mods {
		if m.Side != SideEither {
			n++
		}
	}
	return n
}

// Identity returns a key identifying c's (key, modifier-set-with-sides)
// shape, used to detect "duplicate" combos when composing rule tables:
// two combos are duplicates only if they name the exact same modifiers
// with the exact same side constraints.
func (c Combo) Identity() MaskKey {
	return c.Mask()
}
