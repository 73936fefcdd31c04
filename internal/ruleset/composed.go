package ruleset

import "github.com/arjunp/keyremap/internal/keycode"

// ComposedKeymap is the flattened, Context-filtered lookup table produced
// by Keymap.Compose. It is cached for the duration of a single key press's
// combo resolution (spec section 3: Context is "read lazily and cached for
// the duration of combo resolution on that press").
type ComposedKeymap struct {
	entries []ComboEntry
}

// Lookup finds the action bound to key under the currently held modifiers.
// Spec section 4.8: a combo with an unsided modifier matches either side;
// exact-side combos shadow unsided-equivalent combos for the same key when
// both would otherwise match. Ties beyond specificity fall back to
// composition order (earlier-composed rule wins).
func (ck *ComposedKeymap) Lookup(held keycode.ModifierState, key keycode.Key) (Action, bool) {
	bestIdx := -1
	bestSpecificity := -1
	for i, e := range ck.entries {
		if e.Combo.Key != key || !e.Combo.Matches(held) {
			continue
		}
		if s := e.Combo.Specificity(); s > bestSpecificity {
			bestSpecificity = s
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, false
	}
	return ck.entries[bestIdx].Action, true
}

// Len reports how many combos are reachable in this composed table
// (diagnostics use only).
func (ck *ComposedKeymap) Len() int { return len(ck.entries) }
