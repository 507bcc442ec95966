// FILE: lixenwraith/envconfig/target.go
package envconfig

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// structTarget assigns resolved values onto the fields of a struct.
type structTarget struct {
	v reflect.Value
}

// StructTarget returns a Target writing into the struct pointed to by ptr.
//
// A field named "port" is written to the struct field whose toml tag is "port",
// whose snake_case name is "port", or whose name equals it ignoring case.
// A nested schema value is loaded into the matching sub-struct with the nested
// schema's own options.
func StructTarget(ptr any) (Target, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, fmt.Errorf("struct target must be non-nil pointer, got %T", ptr)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("struct target must point to a struct, got %T", ptr)
	}
	return &structTarget{v: rv}, nil
}

// Set implements Target.
func (t *structTarget) Set(name string, value any) error {
	fv, ok := t.field(name)
	if !ok {
		return fmt.Errorf("no struct field for %q in %s", name, t.v.Type())
	}
	return assign(fv, value)
}

func (t *structTarget) field(name string) (reflect.Value, bool) {
	rt := t.v.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if fieldName(sf) == name || strings.EqualFold(sf.Name, name) {
			return t.v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// fieldName returns the declared name of a struct field: its toml tag name,
// otherwise its snake_case Go name.
func fieldName(sf reflect.StructField) string {
	if tag := sf.Tag.Get("toml"); tag != "" && tag != "-" {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return snakeCase(sf.Name)
}

func assign(fv reflect.Value, value any) error {
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	if nested, ok := value.(*Schema); ok {
		return assignNested(fv, nested)
	}

	vv := reflect.ValueOf(value)
	vt := vv.Type()
	ft := fv.Type()

	switch {
	case vt.AssignableTo(ft):
		fv.Set(vv)
		return nil
	case vt.Kind() == reflect.Ptr && vt.Elem() == ft:
		if !vv.IsNil() {
			fv.Set(vv.Elem())
		}
		return nil
	case sameFamily(vt.Kind(), ft.Kind()) && vt.ConvertibleTo(ft):
		if err := checkRange(vv, ft); err != nil {
			return fmt.Errorf("cannot assign %v to %s: %w", value, ft, err)
		}
		fv.Set(vv.Convert(ft))
		return nil
	}

	// Containers and loosely typed values go through the weak decoder
	ptr := reflect.New(ft)
	if err := decodeInto(value, ptr.Interface()); err != nil {
		return fmt.Errorf("cannot assign %T to %s: %w", value, ft, err)
	}
	fv.Set(ptr.Elem())
	return nil
}

func assignNested(fv reflect.Value, nested *Schema) error {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	if fv.Kind() != reflect.Struct {
		return fmt.Errorf("nested schema %s needs a struct field, got %s", nested.Name(), fv.Type())
	}
	sub, err := StructTarget(fv.Addr().Interface())
	if err != nil {
		return err
	}
	return nested.Load(sub)
}

// sameFamily reports whether a value of kind a may be converted to kind b
// without changing its meaning (no int to string rune conversions).
// checkRange reports whether numeric v fits ft without wrapping or truncation.
func checkRange(v reflect.Value, ft reflect.Type) error {
	if kindFamily(ft.Kind()) != 1 {
		return nil
	}
	target := reflect.New(ft).Elem()

	switch {
	case v.CanInt():
		n := v.Int()
		switch {
		case target.CanInt() && target.OverflowInt(n),
			target.CanUint() && (n < 0 || target.OverflowUint(uint64(n))):
			return fmt.Errorf("value %d out of range", n)
		}
	case v.CanUint():
		n := v.Uint()
		switch {
		case target.CanInt() && (n > math.MaxInt64 || target.OverflowInt(int64(n))),
			target.CanUint() && target.OverflowUint(n):
			return fmt.Errorf("value %d out of range", n)
		}
	case v.CanFloat():
		f := v.Float()
		if target.CanFloat() {
			if target.OverflowFloat(f) {
				return fmt.Errorf("value %g out of range", f)
			}
			return nil
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("value %g is not an integer", f)
		}
		switch {
		case target.CanInt() && (f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f))),
			target.CanUint() && (f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f))):
			return fmt.Errorf("value %g out of range", f)
		}
	}
	return nil
}

func sameFamily(a, b reflect.Kind) bool {
	return kindFamily(a) != 0 && kindFamily(a) == kindFamily(b)
}

func kindFamily(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 1
	case reflect.String:
		return 2
	case reflect.Bool:
		return 3
	}
	return 0
}
