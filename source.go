// FILE: lixenwraith/envconfig/source.go
package envconfig

import "os"

// Source is a read-only key to text lookup.
type Source interface {
	Lookup(key string) (string, bool)
}

// SourceFunc adapts a lookup function to Source.
type SourceFunc func(key string) (string, bool)

// Lookup implements Source.
func (f SourceFunc) Lookup(key string) (string, bool) { return f(key) }

// Map is an in-memory Source.
type Map map[string]string

// Lookup implements Source.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Env returns a Source reading the process environment.
func Env() Source {
	return SourceFunc(os.LookupEnv)
}

// Layered consults sources in order and returns the first hit.
func Layered(sources ...Source) Source {
	return SourceFunc(func(key string) (string, bool) {
		for _, s := range sources {
			if s == nil {
				continue
			}
			if v, ok := s.Lookup(key); ok {
				return v, true
			}
		}
		return "", false
	})
}
