package ruleset

import (
	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/winctx"
)

// ComboEntry pairs a combo with the action it triggers.
type ComboEntry struct {
	Combo  keycode.Combo
	Action Action
}

// keymapRule is one (Predicate, entries) pair in a keymap's ordered rule
// table (spec section 4.4).
type keymapRule struct {
	predicate Predicate
	entries   []ComboEntry
}

// Keymap is a possibly-nested rule table: a keymap reached via top-level
// context-scoped rules, or a submap referenced from an EnterSubmap action.
// Composing it against a Context yields a flat ComposedKeymap.
type Keymap struct {
	rules []keymapRule
}

// NewKeymap builds an unconditional (always-matching) Keymap from a single
// rule's entries — the common shape for a nested submap, which the source
// config represents as a literal map rather than another predicate-guarded
// rule list.
func NewKeymap(entries ...ComboEntry) *Keymap {
	return &Keymap{rules: []keymapRule{{entries: entries}}}
}

// addRule appends a (Predicate, entries) rule, used by Builder.Keymap for
// top-level, context-scoped keymap rules.
func (km *Keymap) addRule(pred Predicate, entries []ComboEntry) {
	km.rules = append(km.rules, keymapRule{predicate: pred, entries: entries})
}

// Compose filters km's rules by ctx and flattens them into one lookup
// table, earlier rules shadowing later ones for duplicate combos (same
// key, same exact modifier-and-side set), per spec section 4.4/4.8.
func (km *Keymap) Compose(ctx winctx.Context) *ComposedKeymap {
	composed := &ComposedKeymap{}
	seen := make(map[keycode.MaskKey]bool)
	for _, rule := range km.rules {
		if !rule.predicate.matches(ctx) {
			continue
		}
		for _, entry := range rule.entries {
			id := entry.Combo.Identity()
			if seen[id] {
				continue
			}
			seen[id] = true
			composed.entries = append(composed.entries, entry)
		}
	}
	return composed
}
