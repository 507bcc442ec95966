// File: lixenwraith/envconfig/doc.go

// Package envconfig binds declared, typed configuration fields to values read from a
// key-value source, conventionally the process environment.
//
// Features:
//   - Typed fields with textual coercion, including structured literals for bool,
//     list, set, tuple and dict fields ("False", "[1, 2, 3]", "{a: 1}")
//   - Default values returned as declared when a key is absent
//   - Key derivation from field name and prefix (PREFIX_FIELD), pluggable
//   - Per-field override of key, default, source and transform
//   - Nested schemas with their own prefix and source
//   - Resolution at declaration, at every instantiation, or on demand
//   - Struct binding and schema declaration files (TOML, YAML, JSON)
//
// Quick Start:
//
//	schema, err := envconfig.NewBuilder("app").
//	    WithPrefix("APP").
//	    Field("host", envconfig.String).
//	    Default("port", envconfig.Int, 8080).
//	    Default("debug", envconfig.Bool, false).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	host, _ := schema.Values().String("host") // APP_HOST, required
//	port, _ := schema.Values().Int("port")    // APP_PORT or 8080
//
// Struct binding:
//
//	type Config struct {
//	    Host  string        `env:",required"`
//	    Port  int
//	    Token string        `env:"API_TOKEN"`
//	    Wait  time.Duration
//	    DB    struct {
//	        URL string
//	    } `envPrefix:"DB"`
//	}
//
//	cfg := Config{Port: 8080, Wait: 5 * time.Second}
//	if _, err := envconfig.Bind(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Precedence (highest to lowest), per field:
//  1. Variable key, default, source and transform
//  2. Field default and type
//  3. Schema options
//
// Errors:
// Resolution stops at the first failing field. Failures are *ResolveError values
// matching ErrMissingValue or ErrInvalidValue with errors.Is; bad option bundles match
// ErrInvalidOptions.
//
// Thread Safety:
// Values guards its store with a read-write mutex. A resolution pass reads the source
// once per field and is not atomic with respect to concurrent changes of the source.
package envconfig
