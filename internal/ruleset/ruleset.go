package ruleset

import (
	"github.com/arjunp/keyremap/internal/keycode"
	"github.com/arjunp/keyremap/internal/winctx"
)

// MultipurposeMapping is one dual-role key's tap/hold pair: Tap is emitted
// on a decided tap, Hold is pressed/released across a decided-modifier
// span (spec section 4.6).
type MultipurposeMapping struct {
	Tap  keycode.Key
	Hold keycode.Key
}

type modmapRule struct {
	predicate Predicate
	entries   map[keycode.Key]keycode.Key
}

type multipurposeRule struct {
	predicate Predicate
	entries   map[keycode.Key]MultipurposeMapping
}

// RuleSet is the compiled representation of a rule file: modmaps,
// multipurpose modmaps, top-level keymaps, and the custom-modifier
// registry, each keymap/modmap rule optionally guarded by a Predicate.
type RuleSet struct {
	Modifiers *keycode.ModifierSet

	modmapRules       []modmapRule
	multipurposeRules []multipurposeRule
	keymap            *Keymap
}

// ResolveModmap applies the first matching modmap rule containing key,
// returning the substituted key. If no rule matches, key passes through
// unchanged (spec section 4.4).
func (rs *RuleSet) ResolveModmap(ctx winctx.Context, key keycode.Key) keycode.Key {
	for _, rule := range rs.modmapRules {
		if !rule.predicate.matches(ctx) {
			continue
		}
		if mapped, ok := rule.entries[key]; ok {
			return mapped
		}
	}
	return key
}

// ResolveMultipurpose reports whether key is governed by a multipurpose
// modmap rule in the current Context, and if so, its tap/hold mapping.
func (rs *RuleSet) ResolveMultipurpose(ctx winctx.Context, key keycode.Key) (MultipurposeMapping, bool) {
	for _, rule := range rs.multipurposeRules {
		if !rule.predicate.matches(ctx) {
			continue
		}
		if mp, ok := rule.entries[key]; ok {
			return mp, true
		}
	}
	return MultipurposeMapping{}, false
}

// ComposeKeymap filters and flattens the top-level keymap rules against
// ctx. Callers cache the result for one key press's resolution.
func (rs *RuleSet) ComposeKeymap(ctx winctx.Context) *ComposedKeymap {
	if rs.keymap == nil {
		return &ComposedKeymap{}
	}
	return rs.keymap.Compose(ctx)
}
