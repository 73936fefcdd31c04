// Package customfn implements spec.md section 9's narrower reading of
// Custom action hooks: "implementers in statically-typed targets may
// choose to limit this to a small, typed set of host-provided hooks
// rather than arbitrary code." Registry holds named CustomFunc values a
// config file references by name; the engine itself only ever sees the
// resolved ruleset.CustomFunc, never a name.
package customfn

import (
	"fmt"

	"github.com/arjunp/keyremap/internal/ruleset"
)

// UnknownHookError reports a config referencing a hook name nothing
// registered, raised as a ConfigError by the config loader.
type UnknownHookError struct {
	Name string
}

func (e *UnknownHookError) Error() string {
	return fmt.Sprintf("customfn: no hook registered under name %q", e.Name)
}

// Registry maps hook names to the ruleset.CustomFunc they construct.
// Hooks are registered once at startup, before any config is compiled.
type Registry struct {
	factories map[string]func(args map[string]string) ruleset.CustomFunc
}

// NewRegistry returns a Registry seeded with the built-in reference hooks.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]func(args map[string]string) ruleset.CustomFunc)}
	r.Register("clipboard_paste", newClipboardPasteHook)
	return r
}

// Register adds a named hook factory. args, supplied per use from the
// args table of a config action with type "custom", parameterize the
// returned CustomFunc
// (e.g. which text to paste, how long to wait first).
func (r *Registry) Register(name string, factory func(args map[string]string) ruleset.CustomFunc) {
	r.factories[name] = factory
}

// Build resolves name against the registry and returns a ruleset.Custom
// action bound to this particular set of args, or an UnknownHookError if
// nothing is registered under that name.
func (r *Registry) Build(name string, args map[string]string) (ruleset.Custom, error) {
	factory, ok := r.factories[name]
	if !ok {
		return ruleset.Custom{}, &UnknownHookError{Name: name}
	}
	return ruleset.Custom{Name: name, Fn: factory(args)}, nil
}
