// FILE: lixenwraith/envconfig/compat.go
package envconfig

// NewAutoBuilder returns a Builder whose schema always resolves at declaration.
// Any requested lifecycle is ignored and Build logs a warning.
//
// Deprecated: use NewBuilder, which resolves at declaration by default, and
// WithLifecycle to choose another mode.
func NewAutoBuilder(name string) *Builder {
	b := NewBuilder(name)
	b.compat = true
	return b
}

// DefineAuto is Define for the auto-resolving variant.
//
// Deprecated: use Define.
func DefineAuto(name string, fields []Field, opts ...Option) (*Schema, error) {
	return NewAutoBuilder(name).Add(fields...).WithOptions(opts...).Build()
}
