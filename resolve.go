// FILE: lixenwraith/envconfig/resolve.go
package envconfig

import "errors"

// Resolve resolves one field against o.
//
// Precedence, most specific first:
//
//	key        Variable key, then o.Naming(field, o.Prefix)
//	source     Variable source, then o.Source
//	transform  Variable transform, then o.Transform
//	default    Variable default, then Field.Default, then NoDefault
//	type       Field.Type, then o.DefaultType
//
// A key absent from the source yields the default exactly as declared, without coercion,
// or a *ResolveError matching ErrMissingValue when there is none. A present key is passed
// to the transform; a transform failure is a *ResolveError matching ErrInvalidValue and
// the original cause. Nested schema fields are returned as-is.
func Resolve(f Field, o Options) (any, error) {
	if f.Schema != nil {
		return f.Schema, nil
	}

	b := bind(f, o)
	if err := b.validate(); err != nil {
		return nil, &ResolveError{Field: f.Name, Key: b.key, Kind: ErrInvalidOptions, Err: err}
	}

	raw, ok := b.source.Lookup(b.key)
	if !ok {
		if b.def == NoDefault {
			return nil, &ResolveError{Field: f.Name, Key: b.key, Kind: ErrMissingValue}
		}
		o.Logger.Debug().
			Str("field", f.Name).
			Str("key", b.key).
			Str("origin", "default").
			Msg("field resolved")
		return b.def, nil
	}

	value, err := b.transform(raw, b.typ)
	if err != nil {
		return nil, &ResolveError{Field: f.Name, Key: b.key, Kind: ErrInvalidValue, Err: err}
	}

	o.Logger.Debug().
		Str("field", f.Name).
		Str("key", b.key).
		Str("type", b.typ.String()).
		Str("origin", "source").
		Msg("field resolved")
	return value, nil
}

func (b binding) validate() error {
	switch {
	case b.source == nil:
		return errors.New("no source")
	case b.transform == nil:
		return errors.New("no transform")
	case b.key == "":
		return errors.New("no lookup key and no naming function")
	}
	return nil
}
