// File: lixenwraith/envconfig/io.go
package envconfig

import (
	"bytes"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Keys returns the effective lookup key of every resolvable field, computed with the
// current options. Nested schema keys are reported as "nested.field".
func (s *Schema) Keys() map[string]string {
	keys := make(map[string]string)
	s.walk("", func(path string, f Field, b binding) {
		keys[path] = b.key
	})
	return keys
}

// Discover returns the fields whose lookup key is present in their source,
// as field path -> key.
func (s *Schema) Discover() map[string]string {
	discovered := make(map[string]string)
	s.walk("", func(path string, f Field, b binding) {
		if b.source == nil {
			return
		}
		if _, exists := b.source.Lookup(b.key); exists {
			discovered[path] = b.key
		}
	})
	return discovered
}

func (s *Schema) walk(prefix string, fn func(path string, f Field, b binding)) {
	for _, f := range s.fields {
		if f.IsPrivate() {
			continue
		}
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if f.Schema != nil {
			f.Schema.walk(path, fn)
			continue
		}
		fn(path, f, bind(f, s.opts))
	}
}

// ExportEnv renders values as key -> text pairs that resolve back to the same values.
// Only fields whose value differs from their default are exported. Nested schemas
// export their schema-level values.
//
// Deque, FrozenSet and Counter constructors read raw text one character at a time,
// so they are written as a character string. Values holding anything other than
// single-character strings have no such form; those fields are left out and logged.
func (s *Schema) ExportEnv(values *Values) map[string]string {
	exports := make(map[string]string)
	s.exportEnv(values, exports)
	return exports
}

func (s *Schema) exportEnv(values *Values, exports map[string]string) {
	if values == nil {
		return
	}
	for _, f := range s.fields {
		if f.IsPrivate() {
			continue
		}
		if f.Schema != nil {
			f.Schema.exportEnv(f.Schema.Values(), exports)
			continue
		}
		val, ok := values.Get(f.Name)
		if !ok {
			continue
		}
		b := bind(f, s.opts)
		if b.def != NoDefault && reflect.DeepEqual(val, b.def) {
			continue
		}
		text, ok := formatValue(val)
		if !ok {
			s.opts.Logger.Warn().
				Str("field", f.Name).
				Str("key", b.key).
				Str("type", fmt.Sprintf("%T", val)).
				Msg("value has no text form, not exported")
			continue
		}
		exports[b.key] = text
	}
}

// formatValue renders a value in the text form Cast reads back.
func formatValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case Deque:
		return joinChars(x, nil)
	case FrozenSet:
		return joinChars(sortedKeys(x), nil)
	case Counter:
		return joinChars(sortedKeys(x), x)
	}
	return formatLiteral(v), true
}

// joinChars concatenates single-character strings, each repeated counts[item] times
// when counts is given.
func joinChars(items []any, counts Counter) (string, bool) {
	var sb strings.Builder
	for _, item := range items {
		c, ok := item.(string)
		if !ok || utf8.RuneCountInString(c) != 1 {
			return "", false
		}
		n := 1
		if counts != nil {
			if n = counts[item]; n < 1 {
				return "", false
			}
		}
		sb.WriteString(strings.Repeat(c, n))
	}
	return sb.String(), true
}

func formatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(x)
	case []byte:
		return strconv.Quote(string(x))
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case time.Duration:
		return x.String()
	case *url.URL:
		return x.String()
	case net.IP:
		return x.String()
	case *net.IPNet:
		return x.String()
	case Tuple:
		return formatTuple(x)
	case Deque:
		return "[" + joinLiterals(x) + "]"
	case []any:
		return "[" + joinLiterals(x) + "]"
	case Set:
		return "{" + joinLiterals(sortedKeys(x)) + "}"
	case FrozenSet:
		return "{" + joinLiterals(sortedKeys(x)) + "}"
	case Counter:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(x) {
			parts = append(parts, formatLiteral(k)+": "+strconv.Itoa(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case map[any]any:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(x) {
			parts = append(parts, formatLiteral(k)+": "+formatLiteral(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Array {
		items := make(Tuple, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return formatTuple(items)
	}
	return fmt.Sprint(v)
}

// formatTuple keeps the trailing comma of one-element tuples, since (x) is grouping.
func formatTuple(t Tuple) string {
	if len(t) == 1 {
		return "(" + formatLiteral(t[0]) + ",)"
	}
	return "(" + joinLiterals(t) + ")"
}

func joinLiterals(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = formatLiteral(item)
	}
	return strings.Join(parts, ", ")
}

// Save writes the exported values to a TOML file, replacing it atomically.
func (v *Values) Save(path string) error {
	var buf bytes.Buffer
	if err := v.WriteTOML(&buf); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes(), 0o644)
}

// writeFileAtomic replaces path with data through a synced temporary file in the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	steps := []struct {
		what string
		run  func() error
	}{
		{"write", func() error { _, err := tmp.Write(data); return err }},
		{"chmod", func() error { return tmp.Chmod(perm) }},
		{"sync", tmp.Sync},
		{"close", tmp.Close},
		{"rename", func() error { return os.Rename(tmp.Name(), path) }},
	}
	for _, step := range steps {
		if err = step.run(); err != nil {
			return fmt.Errorf("failed to %s %s: %w", step.what, path, err)
		}
	}
	return nil
}
