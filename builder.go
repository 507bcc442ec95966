// File: lixenwraith/envconfig/builder.go
package envconfig

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Builder provides a fluent interface for declaring schemas
type Builder struct {
	name   string
	fields []Field
	opts   []Option
	compat bool
	err    error
}

// NewBuilder creates a new schema builder
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Field declares a required field
func (b *Builder) Field(name string, t Type) *Builder {
	return b.Add(Required(name, t))
}

// Default declares a field with a default value
func (b *Builder) Default(name string, t Type, def any) *Builder {
	return b.Add(Optional(name, t, def))
}

// Variable declares a field with an explicit Variable
func (b *Builder) Variable(name string, t Type, v *Variable) *Builder {
	if v == nil {
		b.setErr(fmt.Errorf("field %q: nil variable", name))
		return b
	}
	return b.Add(Explicit(name, t, v))
}

// Nested declares a nested schema field
func (b *Builder) Nested(name string, s *Schema) *Builder {
	if s == nil {
		b.setErr(fmt.Errorf("field %q: nil nested schema", name))
		return b
	}
	return b.Add(Nested(name, s))
}

// Add appends fields in declaration order
func (b *Builder) Add(fields ...Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithPrefix sets the key prefix
func (b *Builder) WithPrefix(prefix string) *Builder {
	return b.WithOptions(WithPrefix(prefix))
}

// WithLifecycle sets when the schema is resolved
func (b *Builder) WithLifecycle(l Lifecycle) *Builder {
	return b.WithOptions(WithLifecycle(l))
}

// WithSource sets the schema source
func (b *Builder) WithSource(s Source) *Builder {
	return b.WithOptions(WithSource(s))
}

// WithTransform sets the schema transform
func (b *Builder) WithTransform(fn TransformFunc) *Builder {
	return b.WithOptions(WithTransform(fn))
}

// WithDefaultType sets the type of fields declared without one
func (b *Builder) WithDefaultType(t Type) *Builder {
	return b.WithOptions(WithDefaultType(t))
}

// WithNaming sets the key naming function
func (b *Builder) WithNaming(fn NamingFunc) *Builder {
	return b.WithOptions(WithNaming(fn))
}

// WithLogger sets the resolution logger
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	return b.WithOptions(WithLogger(logger))
}

// WithOptions appends options; later options override earlier ones
func (b *Builder) WithOptions(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithOptionsMap appends a named knob bundle, see OptionsFromMap.
// An unknown knob makes Build fail with ErrInvalidOptions.
func (b *Builder) WithOptionsMap(knobs map[string]any) *Builder {
	opt, err := OptionsFromMap(knobs)
	if err != nil {
		b.setErr(err)
		return b
	}
	return b.WithOptions(opt)
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build creates the Schema. With AtDeclaration every field is resolved before
// Build returns and the first failure is returned.
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}

	seen := make(map[string]bool, len(b.fields))
	for _, f := range b.fields {
		if f.Name == "" {
			return nil, errors.New("field name cannot be empty")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate field %q in schema %s", f.Name, b.name)
		}
		seen[f.Name] = true
	}

	opts := NewOptions(b.opts...)
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	if b.compat {
		opts.Logger.Warn().
			Str("schema", b.name).
			Str("requested_lifecycle", opts.Lifecycle.String()).
			Msg("auto-resolving schema is deprecated, resolving at declaration; use NewBuilder with WithLifecycle")
		opts.Lifecycle = AtDeclaration
	}

	fields := make([]Field, len(b.fields))
	copy(fields, b.fields)

	s := &Schema{
		name:   b.name,
		fields: fields,
		opts:   opts,
		values: NewValues(b.name),
	}

	if opts.Lifecycle == AtDeclaration {
		if err := s.Load(nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("schema build failed: %v", err))
	}
	return s
}

// validateOptions rejects option sets that cannot resolve any field.
func validateOptions(o Options) error {
	switch {
	case o.Source == nil:
		return fmt.Errorf("%w: no source", ErrInvalidOptions)
	case o.Transform == nil:
		return fmt.Errorf("%w: no transform", ErrInvalidOptions)
	case o.Naming == nil:
		return fmt.Errorf("%w: no naming function", ErrInvalidOptions)
	case o.Lifecycle > Manual:
		return fmt.Errorf("%w: unknown lifecycle %d", ErrInvalidOptions, o.Lifecycle)
	}
	return nil
}
