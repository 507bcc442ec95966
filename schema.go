// FILE: lixenwraith/envconfig/schema.go
package envconfig

import (
	"fmt"
	"strings"
)

// privateMarker prefixes field names excluded from resolution.
const privateMarker = "_"

// Field is one declared configuration slot.
//
// A nil Default means the field has none and is mandatory, as does NoDefault.
// Set NilDefault to default to nil. A non-nil Schema makes the field a nested schema
// that is passed through without coercion.
type Field struct {
	Name     string
	Type     Type
	Default  any
	Variable *Variable
	Schema   *Schema
}

// Required declares a field without a default.
func Required(name string, t Type) Field {
	return Field{Name: name, Type: t, Default: NoDefault}
}

// Optional declares a field with a default, returned unchanged when the key is absent.
// A nil def is kept as a nil default.
func Optional(name string, t Type, def any) Field {
	return Field{Name: name, Type: t, Default: declaredDefault(def)}
}

// Explicit declares a field with an explicit Variable.
func Explicit(name string, t Type, v *Variable) Field {
	return Field{Name: name, Type: t, Default: NoDefault, Variable: v}
}

// Nested declares a nested schema field.
func Nested(name string, s *Schema) Field {
	return Field{Name: name, Default: NoDefault, Schema: s}
}

// IsPrivate reports whether the field is excluded from resolution.
func (f Field) IsPrivate() bool {
	return strings.HasPrefix(f.Name, privateMarker)
}

// Schema is an ordered set of fields resolved under one Options.
// Options and lifecycle are fixed once the schema is built.
type Schema struct {
	name   string
	fields []Field
	opts   Options
	values *Values
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Options returns the schema options.
func (s *Schema) Options() Options { return s.opts }

// Lifecycle returns the resolution lifecycle.
func (s *Schema) Lifecycle() Lifecycle { return s.opts.Lifecycle }

// Fields returns a copy of the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Values returns the schema-level values, populated at declaration or by Load(nil).
func (s *Schema) Values() *Values { return s.values }

// New returns the values of a new instance. With AtInstantiation every call re-reads
// the sources into fresh Values; in the other modes it returns a copy of the
// schema-level values.
func (s *Schema) New() (*Values, error) {
	if s.opts.Lifecycle != AtInstantiation {
		return s.values.Clone(), nil
	}
	v := NewValues(s.name)
	if err := s.resolveAll(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Load resolves every field onto target, or onto the schema-level values when target
// is nil. It is available in every lifecycle mode and stops at the first error.
func (s *Schema) Load(target Target) error {
	if target == nil {
		target = s.values
	}
	return s.resolveAll(target)
}

// resolveAll is the single pass over the schema fields shared by all lifecycles.
func (s *Schema) resolveAll(target Target) error {
	for _, f := range s.fields {
		if f.IsPrivate() {
			continue
		}
		value, err := Resolve(f, s.opts)
		if err != nil {
			return fmt.Errorf("schema %s: %w", s.name, err)
		}
		if err := target.Set(f.Name, value); err != nil {
			return fmt.Errorf("schema %s: failed to set field %q: %w", s.name, f.Name, err)
		}
	}
	return nil
}

// Define builds a schema from fields; see Builder.
func Define(name string, fields []Field, opts ...Option) (*Schema, error) {
	return NewBuilder(name).Add(fields...).WithOptions(opts...).Build()
}
