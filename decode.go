// FILE: lixenwraith/envconfig/decode.go
package envconfig

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// valueDecodeHook returns the composite decode hook used to move resolved values
// into Go structs.
func valueDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Resolved container values
		setToSliceHookFunc(),
		urlDerefHookFunc(),

		// Network types
		textScalarHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// decodeInto weakly decodes value into the value pointed to by ptr.
func decodeInto(value any, ptr any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           ptr,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook:       valueDecodeHook(),
		MatchName:        matchFieldName,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	return decoder.Decode(value)
}

// setToSliceHookFunc turns Set and FrozenSet values into sorted element lists
// when the target is a slice or array.
func setToSliceHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return data, nil
		}
		switch s := data.(type) {
		case Set:
			return sortedKeys(s), nil
		case FrozenSet:
			return sortedKeys(s), nil
		}
		return data, nil
	}
}

// urlDerefHookFunc handles *url.URL values decoded into url.URL fields.
func urlDerefHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		u, ok := data.(*url.URL)
		if !ok || u == nil || t != urlType {
			return data, nil
		}
		return *u, nil
	}
}

// textScalars parse strings into types the weak decoder cannot build on its own.
var textScalars = map[reflect.Type]Constructor{
	ipType:    toIP,
	ipNetType: toIPNet,
	urlType:   toURL,
}

// textScalarHookFunc decodes strings into the textScalars types and pointers to them.
func textScalarHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		elem := t
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		parse, ok := textScalars[elem]
		if !ok {
			return data, nil
		}

		out, err := parse(reflect.ValueOf(data).String())
		if err != nil {
			return nil, err
		}
		return fitPointer(reflect.ValueOf(out), t).Interface(), nil
	}
}

// fitPointer adds or drops one level of indirection so v has type t.
func fitPointer(v reflect.Value, t reflect.Type) reflect.Value {
	switch {
	case v.Type() == t:
		return v
	case t.Kind() == reflect.Ptr && v.Type() == t.Elem():
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p
	case v.Kind() == reflect.Ptr && v.Type().Elem() == t:
		return v.Elem()
	}
	return v
}
