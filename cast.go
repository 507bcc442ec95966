// FILE: lixenwraith/envconfig/cast.go
package envconfig

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TransformFunc converts a raw source value to the declared type.
type TransformFunc func(raw string, t Type) (any, error)

// Cast is the default TransformFunc.
func Cast(raw string, t Type) (any, error) {
	return Convert(raw, t)
}

// Convert coerces value to t. Strings destined for bool, list, set, tuple or map are parsed
// as structured literals first; values that are already typed skip the literal parse.
// Undeclared types return value unchanged.
func Convert(value any, t Type) (any, error) {
	ctor, literal := t.Resolve().constructor()
	if ctor == nil {
		return value, nil
	}
	if s, ok := value.(string); ok && literal {
		parsed, err := parseLiteral(s)
		if err != nil {
			return nil, err
		}
		value = parsed
	}
	return ctor(value)
}

// toString mirrors the conversions of Values.String.
func toString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(v).Float(), 'f', -1, 64), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
	}
	return fmt.Sprintf("%v", value), nil
}

func toInt(value any) (any, error) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		s := strings.TrimSpace(v.String())
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to int: %w", v.String(), err)
		}
		return int(i), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		// Truncate toward zero
		return int(v.Float()), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return nil, fmt.Errorf("cannot convert type %T to int", value)
}

func toFloat(value any) (any, error) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to float: %w", v.String(), err)
		}
		return f, nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.Bool:
		if v.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}
	return nil, fmt.Errorf("cannot convert type %T to float", value)
}

// toBool applies truthiness to an already parsed literal.
func toBool(value any) (any, error) {
	if value == nil {
		return false, nil
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() > 0, nil
	}
	return true, nil
}

func toBytes(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	}
	return nil, fmt.Errorf("cannot convert type %T to bytes", value)
}

func toDuration(value any) (any, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		return d, nil
	case int:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	}
	return nil, fmt.Errorf("cannot convert type %T to duration", value)
}

func toURL(value any) (any, error) {
	switch v := value.(type) {
	case *url.URL:
		return v, nil
	case url.URL:
		return &v, nil
	case string:
		if len(v) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(v))
		}
		u, err := url.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		return u, nil
	}
	return nil, fmt.Errorf("cannot convert type %T to url", value)
}

func toIP(value any) (any, error) {
	switch v := value.(type) {
	case net.IP:
		return v, nil
	case string:
		// Max IPv6 textual length
		if len(v) > 45 {
			return nil, fmt.Errorf("invalid IP length: %d", len(v))
		}
		ip := net.ParseIP(strings.TrimSpace(v))
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", v)
		}
		return ip, nil
	}
	return nil, fmt.Errorf("cannot convert type %T to ip", value)
}

func toIPNet(value any) (any, error) {
	switch v := value.(type) {
	case *net.IPNet:
		return v, nil
	case string:
		// Max IPv6 CIDR textual length
		if len(v) > 49 {
			return nil, fmt.Errorf("invalid CIDR length: %d", len(v))
		}
		_, n, err := net.ParseCIDR(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot convert type %T to cidr", value)
}

// elements iterates value the way container constructors consume their argument:
// sequences yield their items, maps and sets their keys (sorted), strings their characters.
func elements(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return append([]any(nil), v...), nil
	case Tuple:
		return append([]any(nil), v...), nil
	case Deque:
		return append([]any(nil), v...), nil
	case string:
		out := make([]any, 0, len(v))
		for _, r := range v {
			out = append(out, string(r))
		}
		return out, nil
	case []byte:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = int(b)
		}
		return out, nil
	case Set:
		return sortedKeys(v), nil
	case FrozenSet:
		return sortedKeys(v), nil
	case Counter:
		return sortedKeys(v), nil
	case map[any]any:
		return sortedKeys(v), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		out := make([]any, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			out = append(out, k.Interface())
		}
		sortAny(out)
		return out, nil
	}
	return nil, fmt.Errorf("type %T is not iterable", value)
}

func sortedKeys[V any](m map[any]V) []any {
	out := make([]any, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortAny(out)
	return out
}

// sortAny gives map-derived sequences a stable order.
func sortAny(items []any) {
	sort.SliceStable(items, func(i, j int) bool {
		return fmt.Sprint(items[i]) < fmt.Sprint(items[j])
	})
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// hashKey returns value in a form usable as a set member or map key.
// A Tuple becomes a fixed-size array ([n]any) of its hashed elements.
func hashKey(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if t, ok := value.(Tuple); ok {
		arr := reflect.New(reflect.ArrayOf(len(t), anyType)).Elem()
		for i, item := range t {
			k, err := hashKey(item)
			if err != nil {
				return nil, err
			}
			if k != nil {
				arr.Index(i).Set(reflect.ValueOf(k))
			}
		}
		return arr.Interface(), nil
	}
	if !reflect.TypeOf(value).Comparable() {
		return nil, fmt.Errorf("unhashable type: %T", value)
	}
	return value, nil
}

func toList(value any) (any, error) {
	return elements(value)
}

func toTuple(value any) (any, error) {
	items, err := elements(value)
	if err != nil {
		return nil, err
	}
	return Tuple(items), nil
}

func toDeque(value any) (any, error) {
	items, err := elements(value)
	if err != nil {
		return nil, err
	}
	return Deque(items), nil
}

func toSet(value any) (any, error) {
	items, err := elements(value)
	if err != nil {
		return nil, err
	}
	out := make(Set, len(items))
	for _, item := range items {
		k, err := hashKey(item)
		if err != nil {
			return nil, err
		}
		out[k] = struct{}{}
	}
	return out, nil
}

func toFrozenSet(value any) (any, error) {
	set, err := toSet(value)
	if err != nil {
		return nil, err
	}
	return FrozenSet(set.(Set)), nil
}

// toMap accepts a mapping or a sequence of key/value pairs.
func toMap(value any) (any, error) {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[any]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	case Counter:
		out := make(map[any]any, len(v))
		for k, n := range v {
			out[k] = n
		}
		return out, nil
	case string:
		return nil, fmt.Errorf("cannot convert string to dict")
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map {
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().Interface()] = iter.Value().Interface()
		}
		return out, nil
	}

	items, err := elements(value)
	if err != nil {
		return nil, err
	}
	out := make(map[any]any, len(items))
	for i, item := range items {
		pair, err := elements(item)
		if err != nil || len(pair) != 2 {
			return nil, fmt.Errorf("dict update sequence element #%d has wrong shape", i)
		}
		k, err := hashKey(pair[0])
		if err != nil {
			return nil, err
		}
		out[k] = pair[1]
	}
	return out, nil
}

// toCounter counts elements; a mapping is taken as element -> count.
func toCounter(value any) (any, error) {
	out := make(Counter)
	if m, ok := value.(map[any]any); ok {
		for k, n := range m {
			count, err := toInt(n)
			if err != nil {
				return nil, err
			}
			out[k] = count.(int)
		}
		return out, nil
	}

	items, err := elements(value)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		k, err := hashKey(item)
		if err != nil {
			return nil, err
		}
		out[k]++
	}
	return out, nil
}
