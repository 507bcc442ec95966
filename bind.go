// FILE: lixenwraith/envconfig/bind.go
package envconfig

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// FromStruct declares a schema from a struct value or pointer.
//
// Each exported field becomes a schema field named after its toml tag or its snake_case
// Go name, typed with TypeOf, and defaulting to its current value. The env tag adjusts it:
//
//	env:"-"              skip the field
//	env:"DB_URL"         explicit lookup key
//	env:",required"      no default
//	env:"DB_URL,required"
//
// Struct fields become nested schemas with their own prefix, taken from the envPrefix tag;
// the parent prefix does not apply to them. opts are applied to every schema.
func FromStruct(defaults any, opts ...Option) (*Schema, error) {
	v := reflect.ValueOf(defaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("FromStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("FromStruct requires a struct or struct pointer, got %T", defaults)
	}

	return structSchema(snakeCase(v.Type().Name()), v, opts)
}

func structSchema(name string, v reflect.Value, opts []Option) (*Schema, error) {
	b := NewBuilder(name).WithOptions(opts...)
	t := v.Type()

	var errs []string
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		fieldValue := v.Field(i)

		if !sf.IsExported() {
			continue
		}
		envTag := sf.Tag.Get("env")
		if envTag == "-" || sf.Tag.Get("toml") == "-" {
			continue
		}
		name := fieldName(sf)

		if nv, ok := nestedStruct(fieldValue); ok {
			nestedOpts := append(append([]Option(nil), opts...), WithPrefix(sf.Tag.Get("envPrefix")))
			nested, err := structSchema(name, nv, nestedOpts)
			if err != nil {
				errs = append(errs, fmt.Sprintf("field %s: %v", sf.Name, err))
				continue
			}
			b.Nested(name, nested)
			continue
		}

		key, flags, _ := strings.Cut(envTag, ",")
		required := false
		for _, flag := range strings.Split(flags, ",") {
			switch strings.TrimSpace(flag) {
			case "":
			case "required":
				required = true
			default:
				errs = append(errs, fmt.Sprintf("field %s: unknown env tag option %q", sf.Name, flag))
			}
		}

		f := Field{Name: name, Type: TypeOf(sf.Type), Default: declaredDefault(fieldValue.Interface())}
		if required {
			f.Default = NoDefault
		}
		if key != "" {
			f.Variable = NewVariable(key)
		}
		b.Add(f)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to declare %d field(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return b.Build()
}

// nestedStruct reports whether v holds a plain struct to be declared as a nested schema.
// Structs that decode from text (url.URL, time.Time, TextUnmarshaler types) are values.
func nestedStruct(v reflect.Value) (reflect.Value, bool) {
	t := v.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		if t.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		if v.IsNil() {
			v = reflect.New(t).Elem()
		} else {
			v = v.Elem()
		}
	}
	if _, ok := textScalars[t]; t.Kind() != reflect.Struct || ok || t == timeType {
		return reflect.Value{}, false
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return reflect.Value{}, false
	}
	return v, true
}

// Bind declares a schema from the struct pointed to by ptr, using its current field
// values as defaults, and resolves it into the struct. The schema is returned for
// later reloads with Load and StructTarget.
func Bind(ptr any, opts ...Option) (*Schema, error) {
	target, err := StructTarget(ptr)
	if err != nil {
		return nil, err
	}

	s, err := FromStruct(ptr, append(opts, WithLifecycle(Manual))...)
	if err != nil {
		return nil, err
	}
	if err := s.Load(target); err != nil {
		return nil, err
	}
	return s, nil
}
