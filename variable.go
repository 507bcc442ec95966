// FILE: lixenwraith/envconfig/variable.go
package envconfig

type sentinel struct{ name string }

func (s *sentinel) String() string { return s.name }

// NoDefault marks a field without a default value. It is distinct from nil, false
// and every empty container.
var NoDefault any = &sentinel{name: "NoDefault"}

// NilDefault declares nil as a field default. A nil Field.Default means the field has none.
var NilDefault any = &sentinel{name: "NilDefault"}

// declaredDefault is the Field.Default recording def, keeping an explicit nil.
func declaredDefault(def any) any {
	if def == nil {
		return NilDefault
	}
	return def
}

// resolvedDefault maps a Field.Default or Variable default to the value resolution returns.
func resolvedDefault(def any) any {
	switch def {
	case nil:
		return NoDefault
	case NilDefault:
		return nil
	}
	return def
}

// Variable is an explicit per-field override of lookup key, default, transform and source.
// Parts left unset are taken from the schema Options on every resolution pass;
// the Variable itself is never modified.
type Variable struct {
	key       string
	def       any
	transform TransformFunc
	source    Source
}

// VariableOption configures a Variable.
type VariableOption func(*Variable)

// NewVariable creates a Variable. An empty key lets the naming function derive it.
func NewVariable(key string, opts ...VariableOption) *Variable {
	v := &Variable{key: key, def: NoDefault}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// VarDefault sets the default returned when the key is absent. A nil def is kept as a
// nil default; passing NoDefault clears it.
func VarDefault(def any) VariableOption {
	return func(v *Variable) { v.def = declaredDefault(def) }
}

// VarTransform sets a field-specific transform.
func VarTransform(fn TransformFunc) VariableOption {
	return func(v *Variable) { v.transform = fn }
}

// VarSource sets a field-specific source.
func VarSource(s Source) VariableOption {
	return func(v *Variable) { v.source = s }
}

// Key returns the explicit lookup key, empty when unset.
func (v *Variable) Key() string { return v.key }

// Default returns the explicit default and whether one is set.
func (v *Variable) Default() (any, bool) {
	if v.def == NoDefault {
		return nil, false
	}
	return resolvedDefault(v.def), true
}

// Transform returns the explicit transform, nil when unset.
func (v *Variable) Transform() TransformFunc { return v.transform }

// Source returns the explicit source, nil when unset.
func (v *Variable) Source() Source { return v.source }

// binding is a Variable completed against a field and Options for one resolution pass.
type binding struct {
	key       string
	def       any
	transform TransformFunc
	source    Source
	typ       Type
}

// bind completes the explicit parts of f.Variable with the field declaration and o.
func bind(f Field, o Options) binding {
	b := binding{
		def:       resolvedDefault(f.Default),
		transform: o.Transform,
		source:    o.Source,
		typ:       f.Type,
	}
	if !b.typ.IsDeclared() {
		b.typ = o.DefaultType
	}

	if v := f.Variable; v != nil {
		b.key = v.key
		if v.def != NoDefault {
			b.def = resolvedDefault(v.def)
		}
		if v.transform != nil {
			b.transform = v.transform
		}
		if v.source != nil {
			b.source = v.source
		}
	}

	if b.key == "" && o.Naming != nil {
		b.key = o.Naming(f.Name, o.Prefix)
	}
	return b
}
