// FILE: lixenwraith/envconfig/values.go
package envconfig

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Target receives resolved field values.
type Target interface {
	Set(name string, value any) error
}

// Values is an ordered, thread-safe store of resolved field values.
// Nested schema fields hold the *Schema itself.
type Values struct {
	name  string
	mutex sync.RWMutex
	names []string
	items map[string]any
}

// NewValues creates an empty store.
func NewValues(name string) *Values {
	return &Values{
		name:  name,
		items: make(map[string]any),
	}
}

// Name returns the name of the schema the values belong to.
func (v *Values) Name() string { return v.name }

// Set implements Target.
func (v *Values) Set(name string, value any) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if _, exists := v.items[name]; !exists {
		v.names = append(v.names, name)
	}
	v.items[name] = value
	return nil
}

// Get returns the value of a field and whether it has been resolved.
func (v *Values) Get(name string) (any, bool) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	val, ok := v.items[name]
	return val, ok
}

// Names returns resolved field names in resolution order.
func (v *Values) Names() []string {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of resolved fields.
func (v *Values) Len() int {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return len(v.names)
}

// Nested returns the nested schema held by a field.
func (v *Values) Nested(name string) (*Schema, bool) {
	val, ok := v.Get(name)
	if !ok {
		return nil, false
	}
	s, ok := val.(*Schema)
	return s, ok
}

// Clone returns a shallow copy.
func (v *Values) Clone() *Values {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	clone := &Values{
		name:  v.name,
		names: make([]string, len(v.names)),
		items: make(map[string]any, len(v.items)),
	}
	copy(clone.names, v.names)
	for k, val := range v.items {
		clone.items[k] = val
	}
	return clone
}

// convert reads name and coerces it the way resolution coerces a value of type t.
func (v *Values) convert(name string, t Type) (any, error) {
	val, found := v.Get(name)
	if !found {
		return nil, fmt.Errorf("field not resolved: %s", name)
	}
	out, err := Convert(val, t)
	if err != nil {
		return nil, fmt.Errorf("field %s as %s: %w", name, t, err)
	}
	return out, nil
}

// String retrieves a value as text. Nil reads as the empty string.
func (v *Values) String(name string) (string, error) {
	out, err := v.convert(name, String)
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Int retrieves a value as an int. Floats truncate, booleans read as 0 or 1.
func (v *Values) Int(name string) (int, error) {
	out, err := v.convert(name, Int)
	if err != nil {
		return 0, err
	}
	return out.(int), nil
}

// Int64 is Int widened to int64.
func (v *Values) Int64(name string) (int64, error) {
	i, err := v.Int(name)
	return int64(i), err
}

// Bool retrieves a value by truthiness; text is read as a literal, so "False" is false.
func (v *Values) Bool(name string) (bool, error) {
	out, err := v.convert(name, Bool)
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

// Float64 retrieves a value as a float64.
func (v *Values) Float64(name string) (float64, error) {
	out, err := v.convert(name, Float)
	if err != nil {
		return 0, err
	}
	return out.(float64), nil
}

// Map exports the values as plain data: nested schemas become maps of their schema-level
// values, sets become sorted lists, tuples and deques lists, map keys strings, and URLs,
// IPs and durations their text form. The result encodes to TOML, YAML or JSON.
func (v *Values) Map() map[string]any {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	out := make(map[string]any, len(v.items))
	for name, val := range v.items {
		out[name] = exportValue(val)
	}
	return out
}

func exportValue(val any) any {
	switch x := val.(type) {
	case *Schema:
		return x.Values().Map()
	case Set:
		return exportSlice(sortedKeys(x))
	case FrozenSet:
		return exportSlice(sortedKeys(x))
	case Tuple:
		return exportSlice(x)
	case Deque:
		return exportSlice(x)
	case []any:
		return exportSlice(x)
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[exportKey(k)] = exportValue(item)
		}
		return out
	case Counter:
		out := make(map[string]any, len(x))
		for k, n := range x {
			out[exportKey(k)] = n
		}
		return out
	case *url.URL:
		if x == nil {
			return nil
		}
		return x.String()
	case net.IP:
		return x.String()
	case *net.IPNet:
		if x == nil {
			return nil
		}
		return x.String()
	case time.Duration:
		return x.String()
	case []byte:
		return string(x)
	}
	return val
}

// exportKey keeps string keys and writes others, tuples included, as literals.
func exportKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return formatLiteral(k)
}

func exportSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = exportValue(item)
	}
	return out
}

// WriteTOML encodes the exported values as TOML.
func (v *Values) WriteTOML(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(v.Map()); err != nil {
		return fmt.Errorf("failed to marshal values to TOML: %w", err)
	}
	return nil
}

// Scan decodes the values into target, a pointer to a struct or map.
// Struct fields match by toml tag, by name ignoring case, or by snake_case name.
// Nested schemas decode from their schema-level values.
func (v *Values) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	if err := decodeInto(v.plain(), target); err != nil {
		return fmt.Errorf("decode failed for schema %s: %w", v.name, err)
	}
	return nil
}

// plain returns the raw values with nested schemas expanded.
func (v *Values) plain() map[string]any {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	out := make(map[string]any, len(v.items))
	for name, val := range v.items {
		if s, ok := val.(*Schema); ok {
			out[name] = s.Values().plain()
			continue
		}
		out[name] = val
	}
	return out
}

func matchFieldName(mapKey, fieldName string) bool {
	return strings.EqualFold(mapKey, fieldName) || mapKey == snakeCase(fieldName)
}
