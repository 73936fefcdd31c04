package ruleset

import "github.com/arjunp/keyremap/internal/winctx"

// Predicate is evaluated against an immutable Context snapshot to decide
// whether a rule applies. A nil Predicate always matches — this is how an
// unconditional (global) rule is represented.
type Predicate func(ctx winctx.Context) bool

func (p Predicate) matches(ctx winctx.Context) bool {
	if p == nil {
		return true
	}
	return p(ctx)
}

// WMClassIs returns a Predicate matching an exact window class.
func WMClassIs(class string) Predicate {
	return func(ctx winctx.Context) bool { return ctx.WMClass == class }
}

// DeviceIs returns a Predicate matching an exact input device name.
func DeviceIs(name string) Predicate {
	return func(ctx winctx.Context) bool { return ctx.DeviceName == name }
}

// And combines predicates so all must match.
func And(preds ...Predicate) Predicate {
	return func(ctx winctx.Context) bool {
		for _, p := range preds {
			if !p.matches(ctx) {
				return false
			}
		}
		return true
	}
}
