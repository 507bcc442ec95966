// FILE: lixenwraith/envconfig/declaration.go
package envconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// MaxDeclarationSize bounds the size of a declaration file.
const MaxDeclarationSize = 1 << 20

// ErrDeclarationNotFound is returned by LoadDeclaration for a missing file.
var ErrDeclarationNotFound = errors.New("declaration file not found")

// declaration is the file form of a schema.
type declaration struct {
	Name    string             `mapstructure:"name"`
	Options map[string]any     `mapstructure:"options"`
	Fields  []fieldDeclaration `mapstructure:"fields"`
}

// fieldDeclaration is the file form of a field. A field with fields is a nested schema.
type fieldDeclaration struct {
	Name    string             `mapstructure:"name"`
	Type    string             `mapstructure:"type"`
	Key     string             `mapstructure:"key"`
	Default any                `mapstructure:"default"`
	Source  any                `mapstructure:"source"`
	Options map[string]any     `mapstructure:"options"`
	Fields  []fieldDeclaration `mapstructure:"fields"`
}

// LoadDeclaration reads a schema declaration from a TOML, YAML or JSON file.
// The format is taken from the extension, or detected from the content.
// See ParseDeclaration.
func LoadDeclaration(path string, opts ...Option) (*Builder, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDeclarationNotFound, path)
		}
		return nil, fmt.Errorf("failed to open declaration file '%s': %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxDeclarationSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file '%s': %w", path, err)
	}
	if len(data) > MaxDeclarationSize {
		return nil, fmt.Errorf("declaration file '%s' exceeds maximum size %d bytes", path, MaxDeclarationSize)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}
	b, err := ParseDeclaration(data, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("declaration file '%s': %w", path, err)
	}
	return b, nil
}

// ParseDeclaration parses a schema declaration and returns a Builder for the top-level schema,
// so callers can still add options before Build. Nested schemas are built immediately.
//
// opts are applied to every schema after its declared options bundle, so they override it.
// A declaration looks like:
//
//	name = "app"
//
//	[options]
//	prefix = "APP"
//	lifecycle = "instantiation"
//
//	[[fields]]
//	name = "port"
//	type = "int"
//	default = 8080
//
//	[[fields]]
//	name = "token"
//	key = "API_TOKEN"
//
//	[[fields]]
//	name = "db"
//	options = { prefix = "DB" }
//	fields = [{ name = "host", default = "localhost" }]
//
// A field without default is required. Unknown keys are errors; unknown option knobs
// fail with ErrInvalidOptions.
func ParseDeclaration(data []byte, format string, opts ...Option) (*Builder, error) {
	raw := make(map[string]any)
	switch strings.ToLower(format) {
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML declaration: %w", err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON declaration: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML declaration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to determine declaration format %q", format)
	}

	var decl declaration
	meta := &mapstructure.Metadata{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &decl,
		ErrorUnused: true,
		ZeroFields:  true,
		Metadata:    meta,
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid declaration: %w", err)
	}

	present := make(map[string]bool, len(meta.Keys))
	for _, k := range meta.Keys {
		present[k] = true
	}

	return declarationBuilder(decl.Name, decl.Options, decl.Fields, "", present, opts)
}

func declarationBuilder(name string, knobs map[string]any, fields []fieldDeclaration,
	path string, present map[string]bool, opts []Option) (*Builder, error) {
	b := NewBuilder(name)
	if len(knobs) > 0 {
		b.WithOptionsMap(knobs)
	}
	b.WithOptions(opts...)

	for i, fd := range fields {
		fieldPath := fmt.Sprintf("fields[%d]", i)
		if path != "" {
			fieldPath = path + "." + fieldPath
		}
		f, err := fd.field(fieldPath, present, opts)
		if err != nil {
			return nil, err
		}
		b.Add(f)
	}
	return b, nil
}

func (fd fieldDeclaration) field(path string, present map[string]bool, opts []Option) (Field, error) {
	if fd.Name == "" {
		return Field{}, fmt.Errorf("%s: field name cannot be empty", path)
	}

	if len(fd.Fields) > 0 {
		if fd.Type != "" || fd.Key != "" || fd.Source != nil || present[path+".default"] {
			return Field{}, fmt.Errorf("field %q: a nested schema takes only name, options and fields", fd.Name)
		}
		nb, err := declarationBuilder(fd.Name, fd.Options, fd.Fields, path, present, opts)
		if err != nil {
			return Field{}, err
		}
		nested, err := nb.Build()
		if err != nil {
			return Field{}, fmt.Errorf("nested schema %q: %w", fd.Name, err)
		}
		return Nested(fd.Name, nested), nil
	}
	if fd.Options != nil {
		return Field{}, fmt.Errorf("field %q: options are only valid on nested schemas", fd.Name)
	}

	f := Required(fd.Name, Untyped)
	if fd.Type != "" {
		t, err := ParseType(fd.Type)
		if err != nil {
			return Field{}, fmt.Errorf("field %q: %w", fd.Name, err)
		}
		f.Type = t
	}
	if present[path+".default"] {
		f.Default = declaredDefault(normalizeDefault(fd.Default))
	}

	if fd.Key != "" || fd.Source != nil {
		var varOpts []VariableOption
		if fd.Source != nil {
			src, err := sourceFromKnob(fd.Source)
			if err != nil {
				return Field{}, fmt.Errorf("field %q: %w", fd.Name, err)
			}
			varOpts = append(varOpts, VarSource(src.(Source)))
		}
		f.Variable = NewVariable(fd.Key, varOpts...)
	}
	return f, nil
}

// normalizeDefault maps file-native numbers to int and float64 so defaults read the same
// from every format.
func normalizeDefault(v any) any {
	switch x := v.(type) {
	case int64:
		return int(x)
	case uint64:
		return int(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeDefault(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalizeDefault(item)
		}
		return out
	}
	return v
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// Try TOML before YAML, whose plain scalars accept almost anything
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
