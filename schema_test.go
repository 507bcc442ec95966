// FILE: lixenwraith/envconfig/schema_test.go
package envconfig

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBuilder returns a quiet builder reading src
func newTestBuilder(name string, src Source) *Builder {
	return NewBuilder(name).WithSource(src).WithLogger(zerolog.Nop())
}

// TestLifecycles tests when each mode reads the source
func TestLifecycles(t *testing.T) {
	t.Run("AtDeclaration", func(t *testing.T) {
		src := Map{"LEVEL": "info"}
		s, err := newTestBuilder("app", src).Field("level", String).Build()
		require.NoError(t, err)

		level, err := s.Values().String("level")
		require.NoError(t, err)
		assert.Equal(t, "info", level)

		src["LEVEL"] = "debug"
		inst, err := s.New()
		require.NoError(t, err)
		level, err = inst.String("level")
		require.NoError(t, err)
		assert.Equal(t, "info", level, "instances share the declaration-time values")

		// Instances are copies
		require.NoError(t, inst.Set("level", "trace"))
		level, _ = s.Values().String("level")
		assert.Equal(t, "info", level)
	})

	t.Run("AtInstantiation", func(t *testing.T) {
		src := Map{"LEVEL": "info"}
		s, err := newTestBuilder("app", src).
			WithLifecycle(AtInstantiation).
			Field("level", String).
			Build()
		require.NoError(t, err)
		assert.Equal(t, 0, s.Values().Len(), "nothing is resolved at declaration")

		first, err := s.New()
		require.NoError(t, err)
		src["LEVEL"] = "debug"
		second, err := s.New()
		require.NoError(t, err)

		v1, _ := first.String("level")
		v2, _ := second.String("level")
		assert.Equal(t, "info", v1)
		assert.Equal(t, "debug", v2)
	})

	t.Run("AtInstantiationFailsPerInstance", func(t *testing.T) {
		src := Map{}
		s, err := newTestBuilder("app", src).
			WithLifecycle(AtInstantiation).
			Field("level", String).
			Build()
		require.NoError(t, err, "declaration must not resolve")

		_, err = s.New()
		assert.ErrorIs(t, err, ErrMissingValue)

		src["LEVEL"] = "warn"
		inst, err := s.New()
		require.NoError(t, err)
		assert.Equal(t, 1, inst.Len())
	})

	t.Run("Manual", func(t *testing.T) {
		src := Map{}
		s, err := newTestBuilder("app", src).
			WithLifecycle(Manual).
			Field("level", String).
			Build()
		require.NoError(t, err)
		assert.Equal(t, Manual, s.Lifecycle())
		assert.Equal(t, 0, s.Values().Len())

		assert.ErrorIs(t, s.Load(nil), ErrMissingValue)

		src["LEVEL"] = "error"
		require.NoError(t, s.Load(nil))
		level, err := s.Values().String("level")
		require.NoError(t, err)
		assert.Equal(t, "error", level)

		// Explicit target
		target := NewValues("copy")
		require.NoError(t, s.Load(target))
		assert.Equal(t, []string{"level"}, target.Names())
	})
}

// TestBuild tests schema construction
func TestBuild(t *testing.T) {
	t.Run("DeclarationOrder", func(t *testing.T) {
		s, err := newTestBuilder("app", Map{"B": "2"}).
			Default("c", Int, 3).
			Field("b", Int).
			Default("a", Int, 1).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, s.Values().Names())

		fields := s.Fields()
		require.Len(t, fields, 3)
		assert.Equal(t, "c", fields[0].Name)

		f, ok := s.Field("b")
		require.True(t, ok)
		assert.Equal(t, NoDefault, f.Default)
		_, ok = s.Field("missing")
		assert.False(t, ok)
	})

	t.Run("FailFast", func(t *testing.T) {
		var seen []string
		src := SourceFunc(func(key string) (string, bool) {
			seen = append(seen, key)
			return "", false
		})
		_, err := newTestBuilder("app", src).
			Field("first", String).
			Field("second", String).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingValue)
		assert.Contains(t, err.Error(), "schema app")
		assert.Equal(t, []string{"FIRST"}, seen)
	})

	t.Run("InvalidValueAborts", func(t *testing.T) {
		_, err := newTestBuilder("app", Map{"PORT": "eighty"}).Field("port", Int).Build()
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("PrivateFieldsSkipped", func(t *testing.T) {
		s, err := newTestBuilder("app", Map{}).
			Field("_internal", String).
			Default("visible", Int, 1).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"visible"}, s.Values().Names())
		_, ok := s.Values().Get("_internal")
		assert.False(t, ok)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := newTestBuilder("app", Map{}).Default("a", Int, 1).Default("a", Int, 2).Build()
		assert.ErrorContains(t, err, "duplicate field")

		_, err = newTestBuilder("app", Map{}).Default("", Int, 1).Build()
		assert.Error(t, err)

		_, err = newTestBuilder("app", Map{}).Variable("v", Int, nil).Build()
		assert.Error(t, err)

		_, err = newTestBuilder("app", Map{}).Nested("n", nil).Build()
		assert.Error(t, err)
	})

	t.Run("InvalidOptions", func(t *testing.T) {
		_, err := newTestBuilder("app", Map{}).
			WithOptionsMap(map[string]any{"colour": "blue"}).
			Default("a", Int, 1).
			Build()
		assert.ErrorIs(t, err, ErrInvalidOptions)

		noSource := func(o *Options) { o.Source = nil }
		_, err = NewBuilder("app").WithOptions(noSource).Build()
		assert.ErrorIs(t, err, ErrInvalidOptions)

		_, err = newTestBuilder("app", Map{}).WithLifecycle(Lifecycle(7)).Build()
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("OptionsMap", func(t *testing.T) {
		s, err := newTestBuilder("app", Map{}).
			WithOptionsMap(map[string]any{
				"prefix": "SVC",
				"source": map[string]string{"SVC_PORT": "9000"},
			}).
			Field("port", Int).
			Build()
		require.NoError(t, err)
		port, err := s.Values().Int("port")
		require.NoError(t, err)
		assert.Equal(t, 9000, port)
	})

	t.Run("MustBuild", func(t *testing.T) {
		assert.Panics(t, func() {
			newTestBuilder("app", Map{}).Field("x", Int).MustBuild()
		})
		assert.NotPanics(t, func() {
			newTestBuilder("app", Map{"X": "1"}).Field("x", Int).MustBuild()
		})
	})

	t.Run("Define", func(t *testing.T) {
		s, err := Define("app", []Field{
			Required("host", String),
			Optional("port", Int, 80),
		}, WithSource(Map{"WEB_HOST": "example.com"}), WithPrefix("WEB"), WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		host, _ := s.Values().String("host")
		port, _ := s.Values().Int("port")
		assert.Equal(t, "example.com", host)
		assert.Equal(t, 80, port)
		assert.Equal(t, "WEB", s.Options().Prefix)
	})
}

// TestNestedSchema tests prefix isolation between parent and nested schemas
func TestNestedSchema(t *testing.T) {
	src := Map{
		"APP_HOST": "web",
		"DB_URL":   "postgres://db",
		"APP_URL":  "wrong",
	}

	db, err := newTestBuilder("db", src).WithPrefix("DB").Field("url", String).Build()
	require.NoError(t, err)

	app, err := newTestBuilder("app", src).
		WithPrefix("APP").
		Field("host", String).
		Nested("db", db).
		Build()
	require.NoError(t, err)

	nested, ok := app.Values().Nested("db")
	require.True(t, ok)
	assert.Same(t, db, nested)

	url, err := nested.Values().String("url")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db", url)

	assert.Equal(t, map[string]string{
		"host":   "APP_HOST",
		"db.url": "DB_URL",
	}, app.Keys())

	t.Run("Discover", func(t *testing.T) {
		s, err := newTestBuilder("app", Map{"APP_HOST": "x"}).
			WithPrefix("APP").
			Field("host", String).
			Default("port", Int, 80).
			Build()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"host": "APP_HOST"}, s.Discover())
	})
}

// TestCompatBuilder tests the deprecated auto-resolving variant
func TestCompatBuilder(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	s, err := NewAutoBuilder("legacy").
		WithSource(Map{"PORT": "81"}).
		WithLogger(logger).
		WithLifecycle(Manual).
		Field("port", Int).
		Build()
	require.NoError(t, err)

	assert.Equal(t, AtDeclaration, s.Lifecycle())
	port, err := s.Values().Int("port")
	require.NoError(t, err)
	assert.Equal(t, 81, port)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "deprecated")
	assert.Contains(t, out, `"requested_lifecycle":"manual"`)

	t.Run("DefineAuto", func(t *testing.T) {
		var buf bytes.Buffer
		s, err := DefineAuto("legacy", []Field{Optional("x", Int, 1)},
			WithSource(Map{}), WithLogger(zerolog.New(&buf)))
		require.NoError(t, err)
		assert.Equal(t, 1, s.Values().Len())
		assert.Contains(t, buf.String(), "deprecated")
	})
}
