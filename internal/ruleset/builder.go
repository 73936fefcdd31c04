package ruleset

import "github.com/arjunp/keyremap/internal/keycode"

// Builder assembles a RuleSet from rule-table entries, one predicate-guarded
// rule at a time, mirroring the config surface described in spec section 6
// (modmap/multipurpose_modmap/keymap, each optionally guarded by a
// predicate over Context, plus add_modifier).
type Builder struct {
	modifiers         *keycode.ModifierSet
	modmapRules       []modmapRule
	multipurposeRules []multipurposeRule
	keymap            *Keymap
}

// NewBuilder returns a Builder seeded with the built-in modifier set.
func NewBuilder() *Builder {
	return &Builder{
		modifiers: keycode.NewModifierSet(),
		keymap:    &Keymap{},
	}
}

// Modifiers returns the modifier registry entries will be parsed against.
func (b *Builder) Modifiers() *keycode.ModifierSet { return b.modifiers }

// AddModifier registers a custom logical modifier.
func (b *Builder) AddModifier(name string, aliases []string, keys []keycode.Key) keycode.Modifier {
	return b.modifiers.AddModifier(name, aliases, keys)
}

// Modmap appends a modmap rule.
func (b *Builder) Modmap(pred Predicate, entries map[keycode.Key]keycode.Key) {
	b.modmapRules = append(b.modmapRules, modmapRule{predicate: pred, entries: entries})
}

// MultipurposeModmap appends a multipurpose-modmap rule.
func (b *Builder) MultipurposeModmap(pred Predicate, entries map[keycode.Key]MultipurposeMapping) {
	b.multipurposeRules = append(b.multipurposeRules, multipurposeRule{predicate: pred, entries: entries})
}

// Keymap appends a top-level keymap rule.
func (b *Builder) Keymap(pred Predicate, entries []ComboEntry) {
	b.keymap.addRule(pred, entries)
}

// Build finalizes the RuleSet.
func (b *Builder) Build() *RuleSet {
	return &RuleSet{
		Modifiers:         b.modifiers,
		modmapRules:       append([]modmapRule(nil), b.modmapRules...),
		multipurposeRules: append([]multipurposeRule(nil), b.multipurposeRules...),
		keymap:            b.keymap,
	}
}
