package winctx

// StaticProvider returns a fixed Context on every Snapshot call. It is used
// in tests; cmd/keyremapd always runs an ExecProvider, whose query for an
// unsupported desktop reports empty strings.
type StaticProvider struct {
	ctx Context
}

// NewStaticProvider returns a StaticProvider that always reports ctx.
func NewStaticProvider(ctx Context) *StaticProvider {
	return &StaticProvider{ctx: ctx}
}

// Snapshot implements Provider.
func (p *StaticProvider) Snapshot() Context { return p.ctx }

// Set replaces the Context future Snapshot calls return. Useful in tests
// that need to change window focus mid-sequence.
func (p *StaticProvider) Set(ctx Context) { p.ctx = ctx }
