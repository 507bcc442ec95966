// FILE: lixenwraith/envconfig/options.go
package envconfig

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
)

// Lifecycle selects when a schema is resolved.
type Lifecycle uint8

const (
	// AtDeclaration resolves once, when the schema is built.
	AtDeclaration Lifecycle = iota
	// AtInstantiation resolves into a fresh Values on every Schema.New call.
	AtInstantiation
	// Manual never resolves automatically; call Schema.Load.
	Manual
)

// String returns the canonical lifecycle name.
func (l Lifecycle) String() string {
	switch l {
	case AtDeclaration:
		return "declaration"
	case AtInstantiation:
		return "instantiation"
	case Manual:
		return "manual"
	default:
		return fmt.Sprintf("lifecycle(%d)", uint8(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifecycle) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifecycle) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "declaration", "class":
		*l = AtDeclaration
	case "instantiation", "object", "instance":
		*l = AtInstantiation
	case "manual", "never":
		*l = Manual
	default:
		return fmt.Errorf("unknown lifecycle %q", string(text))
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseType.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Options is the resolution policy shared by every field of a schema.
type Options struct {
	// Prefix is passed to Naming for every field without an explicit key.
	Prefix string

	Lifecycle Lifecycle

	// Source is consulted for fields whose Variable does not carry one.
	Source Source

	// Transform converts raw source text to the field type.
	Transform TransformFunc

	// DefaultType applies to fields declared without a type.
	DefaultType Type

	Naming NamingFunc

	Logger zerolog.Logger
}

// Option configures Options.
type Option func(*Options)

// DefaultOptions returns the process-wide defaults: no prefix, resolution at declaration,
// the process environment as source, Cast as transform, String as default type
// and DefaultNaming.
func DefaultOptions() Options {
	return Options{
		Lifecycle:   AtDeclaration,
		Source:      Env(),
		Transform:   Cast,
		DefaultType: String,
		Naming:      DefaultNaming,
		Logger:      zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger(),
	}
}

// NewOptions applies opts over DefaultOptions.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithLifecycle sets the resolution lifecycle.
func WithLifecycle(l Lifecycle) Option {
	return func(o *Options) { o.Lifecycle = l }
}

// WithSource sets the schema source. A nil source keeps the current one.
func WithSource(s Source) Option {
	return func(o *Options) {
		if s != nil {
			o.Source = s
		}
	}
}

// WithTransform sets the schema transform. A nil transform keeps the current one.
func WithTransform(fn TransformFunc) Option {
	return func(o *Options) {
		if fn != nil {
			o.Transform = fn
		}
	}
}

// WithDefaultType sets the type used for fields declared without one.
func WithDefaultType(t Type) Option {
	return func(o *Options) {
		if t.IsDeclared() {
			o.DefaultType = t
		}
	}
}

// WithNaming sets the key naming function.
func WithNaming(fn NamingFunc) Option {
	return func(o *Options) {
		if fn != nil {
			o.Naming = fn
		}
	}
}

// WithLogger sets the logger used for resolution events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// optionsMap lists the knobs accepted by OptionsFromMap.
type optionsMap struct {
	Prefix      string         `mapstructure:"prefix"`
	Lifecycle   Lifecycle      `mapstructure:"lifecycle"`
	Source      Source         `mapstructure:"source"`
	Transform   TransformFunc  `mapstructure:"transform"`
	DefaultType Type           `mapstructure:"default_type"`
	Naming      NamingFunc     `mapstructure:"naming"`
	Logger      zerolog.Logger `mapstructure:"logger"`
}

// OptionsFromMap builds an Option from a named knob bundle, as found in declaration files.
// Accepted keys are prefix, lifecycle, source, transform, default_type, naming and logger.
// Any other key fails with ErrInvalidOptions. Nil values are ignored.
//
// Besides their Go values, knobs accept these textual forms:
//
//	lifecycle     "declaration", "instantiation", "manual"
//	source        "env", or a map of strings
//	transform     "cast"
//	default_type  a type expression such as "int" or "list[str]"
//	naming        "default", "verbatim"
//	logger        a zerolog level name
func OptionsFromMap(knobs map[string]any) (Option, error) {
	input := make(map[string]any, len(knobs))
	for k, v := range knobs {
		if !knobNames[k] {
			return nil, fmt.Errorf("%w: unknown option %q", ErrInvalidOptions, k)
		}
		if v != nil {
			input[k] = v
		}
	}

	var decoded optionsMap
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &decoded,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			knobHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
			funcConvertHookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: decoder creation failed: %v", ErrInvalidOptions, err)
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	return func(o *Options) {
		for key := range input {
			switch key {
			case "prefix":
				o.Prefix = decoded.Prefix
			case "lifecycle":
				o.Lifecycle = decoded.Lifecycle
			case "source":
				WithSource(decoded.Source)(o)
			case "transform":
				WithTransform(decoded.Transform)(o)
			case "default_type":
				WithDefaultType(decoded.DefaultType)(o)
			case "naming":
				WithNaming(decoded.Naming)(o)
			case "logger":
				o.Logger = decoded.Logger
			}
		}
	}, nil
}

// knobNames holds the mapstructure names of optionsMap.
var knobNames = func() map[string]bool {
	rt := reflect.TypeOf(optionsMap{})
	names := make(map[string]bool, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		names[rt.Field(i).Tag.Get("mapstructure")] = true
	}
	return names
}()

var (
	sourceType    = reflect.TypeOf((*Source)(nil)).Elem()
	transformType = reflect.TypeOf(TransformFunc(nil))
	namingType    = reflect.TypeOf(NamingFunc(nil))
	loggerType    = reflect.TypeOf(zerolog.Logger{})
)

// knobHookFunc maps the textual and loosely typed forms of option knobs.
func knobHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		switch t {
		case sourceType:
			return sourceFromKnob(data)

		case transformType:
			if s, ok := data.(string); ok {
				switch strings.ToLower(s) {
				case "cast", "default":
					return TransformFunc(Cast), nil
				}
				return nil, fmt.Errorf("unknown transform %q", s)
			}

		case namingType:
			if s, ok := data.(string); ok {
				switch strings.ToLower(s) {
				case "default", "upper":
					return NamingFunc(DefaultNaming), nil
				case "verbatim":
					return NamingFunc(VerbatimNaming), nil
				}
				return nil, fmt.Errorf("unknown naming function %q", s)
			}

		case loggerType:
			switch v := data.(type) {
			case *zerolog.Logger:
				if v != nil {
					return *v, nil
				}
			case string:
				level, err := zerolog.ParseLevel(strings.ToLower(v))
				if err != nil {
					return nil, err
				}
				return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger(), nil
			}
		}
		return data, nil
	}
}

func sourceFromKnob(data any) (any, error) {
	switch v := data.(type) {
	case Source:
		return v, nil
	case func(string) (string, bool):
		return SourceFunc(v), nil
	case map[string]string:
		return Map(v), nil
	case map[string]any:
		m := make(Map, len(v))
		for k, val := range v {
			m[k] = fmt.Sprint(val)
		}
		return m, nil
	case string:
		switch strings.ToLower(v) {
		case "env", "environ", "environment":
			return Env(), nil
		}
		return nil, fmt.Errorf("unknown source %q", v)
	}
	return nil, fmt.Errorf("cannot use %T as a source", data)
}

// funcConvertHookFunc converts plain function literals to the named function types.
func funcConvertHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.Func || t.Kind() != reflect.Func || f == t {
			return data, nil
		}
		if !f.ConvertibleTo(t) {
			return nil, fmt.Errorf("cannot use %s as %s", f, t)
		}
		return reflect.ValueOf(data).Convert(t).Interface(), nil
	}
}
