// FILE: lixenwraith/envconfig/options_test.go
package envconfig

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultOptions tests the process-wide defaults
func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()

	assert.Empty(t, o.Prefix)
	assert.Equal(t, AtDeclaration, o.Lifecycle)
	assert.NotNil(t, o.Source)
	assert.NotNil(t, o.Transform)
	assert.NotNil(t, o.Naming)
	assert.Equal(t, "str", o.DefaultType.String())
	assert.Equal(t, zerolog.WarnLevel, o.Logger.GetLevel())

	t.Setenv("ENVCONFIG_OPTIONS_TEST", "present")
	v, ok := o.Source.Lookup("ENVCONFIG_OPTIONS_TEST")
	assert.True(t, ok)
	assert.Equal(t, "present", v)
}

// TestNewOptions tests functional options
func TestNewOptions(t *testing.T) {
	src := Map{"A": "1"}
	o := NewOptions(
		WithPrefix("APP"),
		WithLifecycle(Manual),
		WithSource(src),
		WithDefaultType(Int),
		WithNaming(VerbatimNaming),
		nil,
	)

	assert.Equal(t, "APP", o.Prefix)
	assert.Equal(t, Manual, o.Lifecycle)
	assert.Equal(t, src, o.Source)
	assert.Equal(t, "int", o.DefaultType.String())
	assert.Equal(t, "field", o.Naming("field", "APP"))

	t.Run("NilValuesKeepDefaults", func(t *testing.T) {
		o := NewOptions(WithSource(nil), WithTransform(nil), WithNaming(nil), WithDefaultType(Untyped))
		assert.NotNil(t, o.Source)
		assert.NotNil(t, o.Transform)
		assert.NotNil(t, o.Naming)
		assert.Equal(t, "str", o.DefaultType.String())
	})

	t.Run("LaterOptionsWin", func(t *testing.T) {
		o := NewOptions(WithPrefix("A"), WithPrefix("B"))
		assert.Equal(t, "B", o.Prefix)
	})
}

// TestOptionsFromMap tests named knob bundles
func TestOptionsFromMap(t *testing.T) {
	t.Run("TextualKnobs", func(t *testing.T) {
		opt, err := OptionsFromMap(map[string]any{
			"prefix":       "SVC",
			"lifecycle":    "instantiation",
			"source":       map[string]any{"SVC_PORT": 9000},
			"transform":    "cast",
			"default_type": "list[int]",
			"naming":       "verbatim",
			"logger":       "debug",
		})
		require.NoError(t, err)

		o := NewOptions(opt)
		assert.Equal(t, "SVC", o.Prefix)
		assert.Equal(t, AtInstantiation, o.Lifecycle)
		assert.Equal(t, "list[int]", o.DefaultType.String())
		assert.Equal(t, "port", o.Naming("port", "SVC"))
		assert.Equal(t, zerolog.DebugLevel, o.Logger.GetLevel())

		v, ok := o.Source.Lookup("SVC_PORT")
		assert.True(t, ok)
		assert.Equal(t, "9000", v)

		got, err := o.Transform("[1, 2]", o.DefaultType)
		require.NoError(t, err)
		assert.Equal(t, []any{1, 2}, got)
	})

	t.Run("GoValues", func(t *testing.T) {
		src := Map{"X": "1"}
		logger := zerolog.Nop()
		transform := func(raw string, _ Type) (any, error) { return "t:" + raw, nil }

		opt, err := OptionsFromMap(map[string]any{
			"lifecycle":    Manual,
			"source":       src,
			"transform":    transform,
			"default_type": Bool,
			"naming":       DefaultNaming,
			"logger":       &logger,
		})
		require.NoError(t, err)

		o := NewOptions(opt)
		assert.Equal(t, Manual, o.Lifecycle)
		assert.Equal(t, src, o.Source)
		assert.Equal(t, "bool", o.DefaultType.String())
		assert.Equal(t, zerolog.Disabled, o.Logger.GetLevel())

		got, err := o.Transform("x", String)
		require.NoError(t, err)
		assert.Equal(t, "t:x", got)
	})

	t.Run("LookupFuncSource", func(t *testing.T) {
		lookup := func(key string) (string, bool) { return key + "!", true }
		opt, err := OptionsFromMap(map[string]any{"source": lookup})
		require.NoError(t, err)

		v, ok := NewOptions(opt).Source.Lookup("K")
		assert.True(t, ok)
		assert.Equal(t, "K!", v)
	})

	t.Run("OnlyGivenKnobsApply", func(t *testing.T) {
		opt, err := OptionsFromMap(map[string]any{"prefix": "P"})
		require.NoError(t, err)

		o := NewOptions(WithLifecycle(Manual), opt)
		assert.Equal(t, "P", o.Prefix)
		assert.Equal(t, Manual, o.Lifecycle)
	})

	t.Run("NilValuesIgnored", func(t *testing.T) {
		opt, err := OptionsFromMap(map[string]any{"source": nil, "prefix": nil})
		require.NoError(t, err)

		o := NewOptions(WithPrefix("KEEP"), opt)
		assert.Equal(t, "KEEP", o.Prefix)
		assert.NotNil(t, o.Source)
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name  string
			knobs map[string]any
		}{
			{"UnknownKnob", map[string]any{"prefx": "APP"}},
			{"UnknownNilKnob", map[string]any{"prefx": nil}},
			{"UnknownBesideKnown", map[string]any{"prefix": "APP", "colour": nil}},
			{"BadLifecycle", map[string]any{"lifecycle": "sometimes"}},
			{"BadType", map[string]any{"default_type": "list[int"}},
			{"BadSource", map[string]any{"source": "vault"}},
			{"BadSourceType", map[string]any{"source": 42}},
			{"BadTransform", map[string]any{"transform": "eval"}},
			{"BadNaming", map[string]any{"naming": "camel"}},
			{"BadLoggerLevel", map[string]any{"logger": "loud"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := OptionsFromMap(tt.knobs)
				assert.ErrorIs(t, err, ErrInvalidOptions)
			})
		}
	})
}

// TestLifecycleText tests lifecycle names
func TestLifecycleText(t *testing.T) {
	for _, l := range []Lifecycle{AtDeclaration, AtInstantiation, Manual} {
		text, err := l.MarshalText()
		require.NoError(t, err)

		var back Lifecycle
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, l, back)
	}

	aliases := map[string]Lifecycle{
		"class":    AtDeclaration,
		"Object":   AtInstantiation,
		"instance": AtInstantiation,
		" never ":  Manual,
	}
	for text, want := range aliases {
		var l Lifecycle
		require.NoError(t, l.UnmarshalText([]byte(text)), text)
		assert.Equal(t, want, l)
	}

	assert.Equal(t, "lifecycle(9)", Lifecycle(9).String())
}
