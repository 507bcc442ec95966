// FILE: lixenwraith/envconfig/values_test.go
package envconfig

import (
	"bytes"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValuesStore tests ordering, getters and copies
func TestValuesStore(t *testing.T) {
	v := NewValues("app")
	require.NoError(t, v.Set("port", 8080))
	require.NoError(t, v.Set("host", "localhost"))
	require.NoError(t, v.Set("port", 9090))

	assert.Equal(t, "app", v.Name())
	assert.Equal(t, []string{"port", "host"}, v.Names(), "re-setting keeps the original position")
	assert.Equal(t, 2, v.Len())

	t.Run("Getters", func(t *testing.T) {
		v := NewValues("getters")
		require.NoError(t, v.Set("int", 42))
		require.NoError(t, v.Set("count", " 16 "))
		require.NoError(t, v.Set("flag", "False"))
		require.NoError(t, v.Set("word", "maybe"))
		require.NoError(t, v.Set("ratio", 3))
		require.NoError(t, v.Set("wait", 2*time.Second))
		require.NoError(t, v.Set("none", nil))

		s, err := v.String("int")
		require.NoError(t, err)
		assert.Equal(t, "42", s)

		i, err := v.Int64("count")
		require.NoError(t, err)
		assert.Equal(t, int64(16), i)

		b, err := v.Bool("flag")
		require.NoError(t, err)
		assert.False(t, b, "text is read as a literal")

		b, err = v.Bool("none")
		require.NoError(t, err)
		assert.False(t, b)

		f, err := v.Float64("ratio")
		require.NoError(t, err)
		assert.Equal(t, 3.0, f)

		s, err = v.String("wait")
		require.NoError(t, err)
		assert.Equal(t, "2s", s)

		n, err := v.Int("wait")
		require.NoError(t, err)
		assert.Equal(t, int(2*time.Second), n)

		s, err = v.String("none")
		require.NoError(t, err)
		assert.Empty(t, s)

		_, err = v.Int("none")
		assert.Error(t, err)
		_, err = v.String("unknown")
		assert.Error(t, err)
		b, err = v.Bool("int")
		require.NoError(t, err)
		assert.True(t, b)
		_, err = v.Bool("word")
		assert.ErrorContains(t, err, "field word as bool")
		_, err = v.Float64("word")
		assert.Error(t, err)
	})

	t.Run("Clone", func(t *testing.T) {
		clone := v.Clone()
		require.NoError(t, clone.Set("port", 1))
		require.NoError(t, clone.Set("extra", true))

		port, _ := v.Int("port")
		assert.Equal(t, 9090, port)
		assert.Equal(t, 2, v.Len())
		assert.Equal(t, 3, clone.Len())
	})

	t.Run("Concurrent", func(t *testing.T) {
		v := NewValues("concurrent")
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = v.Set("counter", n*100+j)
					_, _ = v.Get("counter")
					_ = v.Names()
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, v.Len())
	})
}

// resolvedSchema builds an AtDeclaration schema with a nested database schema
func resolvedSchema(t *testing.T) *Schema {
	t.Helper()
	src := Map{
		"APP_TAGS":      "{'web', 'api'}",
		"APP_WAIT":      "5s",
		"APP_MAX_CONNS": "25",
		"DB_URL":        "postgres://db",
	}
	db, err := newTestBuilder("db", src).WithPrefix("DB").Field("url", String).Build()
	require.NoError(t, err)

	s, err := newTestBuilder("app", src).
		WithPrefix("APP").
		Default("port", Int, 8080).
		Field("tags", SetOf(String)).
		Field("wait", Duration).
		Field("max_conns", Int).
		Nested("db", db).
		Build()
	require.NoError(t, err)
	return s
}

// TestValuesExport tests plain data export
func TestValuesExport(t *testing.T) {
	s := resolvedSchema(t)

	t.Run("Map", func(t *testing.T) {
		m := s.Values().Map()
		assert.Equal(t, 8080, m["port"])
		assert.Equal(t, []any{"api", "web"}, m["tags"])
		assert.Equal(t, "5s", m["wait"])
		assert.Equal(t, map[string]any{"url": "postgres://db"}, m["db"])
	})

	t.Run("WriteTOML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Values().WriteTOML(&buf))

		var decoded map[string]any
		_, err := toml.Decode(buf.String(), &decoded)
		require.NoError(t, err)
		assert.Equal(t, int64(8080), decoded["port"])
		assert.Equal(t, "5s", decoded["wait"])
		assert.Equal(t, map[string]any{"url": "postgres://db"}, decoded["db"])
	})

	t.Run("Save", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "app.toml")
		require.NoError(t, s.Values().Save(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "max_conns = 25")

		// No temporary files left behind
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

// TestValuesScan tests decoding into Go structs
func TestValuesScan(t *testing.T) {
	s := resolvedSchema(t)

	var cfg struct {
		Port     int
		Tags     []string
		Wait     time.Duration
		MaxConns int
		DB       struct {
			URL string
		} `toml:"db"`
	}
	require.NoError(t, s.Values().Scan(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"api", "web"}, cfg.Tags)
	assert.Equal(t, 5*time.Second, cfg.Wait)
	assert.Equal(t, 25, cfg.MaxConns)
	assert.Equal(t, "postgres://db", cfg.DB.URL)

	t.Run("Map", func(t *testing.T) {
		var m map[string]any
		require.NoError(t, s.Values().Scan(&m))
		assert.Equal(t, 8080, m["port"])
	})

	t.Run("NonPointer", func(t *testing.T) {
		assert.Error(t, s.Values().Scan(cfg))
	})

	t.Run("NetworkText", func(t *testing.T) {
		v := NewValues("net")
		require.NoError(t, v.Set("subnet", "10.0.0.0/8"))
		require.NoError(t, v.Set("gateway", "10.0.0.1"))
		require.NoError(t, v.Set("home", "https://x.test/a"))
		require.NoError(t, v.Set("mirror", "https://m.test"))

		var out struct {
			Subnet  net.IPNet
			Gateway net.IP
			Home    url.URL
			Mirror  *url.URL
		}
		require.NoError(t, v.Scan(&out))
		assert.Equal(t, "10.0.0.0/8", out.Subnet.String())
		assert.True(t, net.ParseIP("10.0.0.1").Equal(out.Gateway))
		assert.Equal(t, "x.test", out.Home.Host)
		require.NotNil(t, out.Mirror)
		assert.Equal(t, "m.test", out.Mirror.Host)

		require.NoError(t, v.Set("subnet", "10.0.0.0/99"))
		assert.ErrorContains(t, v.Scan(&out), "invalid CIDR")
	})
}

// TestExportEnv tests that exported pairs resolve back to the same values
func TestExportEnv(t *testing.T) {
	build := func(src Source) *Schema {
		s, err := newTestBuilder("svc", src).
			Default("port", Int, 8080).
			Field("tags", SetOf(String)).
			Field("ratio", Float).
			Field("name", String).
			Default("debug", Bool, false).
			Field("limits", MapOf(String, Int)).
			Field("queue", DequeOf(String)).
			Field("letters", FrozenSetOf(String)).
			Field("hits", CounterOf(String)).
			Build()
		require.NoError(t, err)
		return s
	}

	s := build(Map{
		"TAGS":    "{'b', 'a'}",
		"RATIO":   "2",
		"NAME":    "svc",
		"DEBUG":   "True",
		"LIMITS":  "{'rps': 10}",
		"QUEUE":   "ba",
		"LETTERS": "cab",
		"HITS":    "abab",
	})

	exported := s.ExportEnv(s.Values())
	assert.NotContains(t, exported, "PORT", "values equal to their default are not exported")
	assert.Equal(t, `{"a", "b"}`, exported["TAGS"])
	assert.Equal(t, "2.0", exported["RATIO"])
	assert.Equal(t, "svc", exported["NAME"])
	assert.Equal(t, "True", exported["DEBUG"])
	assert.Equal(t, "ba", exported["QUEUE"])
	assert.Equal(t, "abc", exported["LETTERS"])
	assert.Equal(t, "aabb", exported["HITS"])

	again := build(Map(exported))
	assert.Equal(t, s.Values().Map(), again.Values().Map())

	t.Run("FormatLiteral", func(t *testing.T) {
		tests := []struct {
			value any
			want  string
		}{
			{nil, "None"},
			{"x", `"x"`},
			{false, "False"},
			{3, "3"},
			{1.5, "1.5"},
			{1e21, "1e+21"},
			{Tuple{1, "a"}, `(1, "a")`},
			{Tuple{1}, "(1,)"},
			{map[any]any{[2]any{1, 2}: "x"}, `{(1, 2): "x"}`},
			{[]any{1, []any{2}}, "[1, [2]]"},
			{map[any]any{"k": []any{1}}, `{"k": [1]}`},
			{Counter{"a": 2}, `{"a": 2}`},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, formatLiteral(tt.value))
		}
	})

	t.Run("NoTextForm", func(t *testing.T) {
		for _, v := range []any{Deque{1, 2}, FrozenSet{"ab": {}}, Counter{"a": 0}} {
			_, ok := formatValue(v)
			assert.False(t, ok, "%#v", v)
		}
	})
}
