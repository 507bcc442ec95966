// File: lixenwraith/envconfig/type.go
package envconfig

import (
	"encoding"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"
)

// Kind tags the variant held by a Type.
type Kind uint8

const (
	// KindUndeclared is the zero Type: the field carries no declared type and
	// Options.DefaultType applies.
	KindUndeclared Kind = iota
	// KindScalar is a type built directly from its textual form.
	KindScalar
	// KindContainer is a generic container; element parameters are informational.
	KindContainer
	// KindAlias is a named type wrapping another Type.
	KindAlias
)

// ContainerKind identifies the origin type of a container.
type ContainerKind uint8

const (
	ContainerList ContainerKind = iota + 1
	ContainerSet
	ContainerFrozenSet
	ContainerTuple
	ContainerMap
	ContainerCounter
	ContainerDeque
)

// Constructor builds a value of a scalar type from a raw string or an already parsed value.
type Constructor func(value any) (any, error)

// Type describes the declared type of a field.
// Values are immutable and built once when the schema is declared.
type Type struct {
	kind      Kind
	name      string
	container ContainerKind
	params    []Type
	inner     *Type
	ctor      Constructor
	literal   bool
}

// Concrete container values produced by coercion.
type (
	Set       map[any]struct{}
	FrozenSet map[any]struct{}
	Tuple     []any
	Deque     []any
	Counter   map[any]int
)

var (
	// Untyped is the zero Type.
	Untyped = Type{}

	String   = Scalar("str", toString)
	Int      = Scalar("int", toInt)
	Float    = Scalar("float", toFloat)
	Bytes    = Scalar("bytes", toBytes)
	Duration = Scalar("duration", toDuration)
	URL      = Scalar("url", toURL)
	IP       = Scalar("ip", toIP)
	CIDR     = Scalar("cidr", toIPNet)

	// Bool is parsed as a literal first so "False" is false rather than a non-empty string.
	Bool = Type{kind: KindScalar, name: "bool", ctor: toBool, literal: true}
)

// Scalar declares a custom scalar type. ctor receives the raw string
// (or an already typed value) and returns the converted value.
func Scalar(name string, ctor Constructor) Type {
	return Type{kind: KindScalar, name: name, ctor: ctor}
}

// Alias declares a named type over underlying. Aliases may wrap other aliases.
func Alias(name string, underlying Type) Type {
	return Type{kind: KindAlias, name: name, inner: &underlying}
}

func List(params ...Type) Type { return container("list", ContainerList, params) }

func SetOf(params ...Type) Type { return container("set", ContainerSet, params) }

func FrozenSetOf(params ...Type) Type { return container("frozenset", ContainerFrozenSet, params) }

func TupleOf(params ...Type) Type { return container("tuple", ContainerTuple, params) }

func MapOf(params ...Type) Type { return container("dict", ContainerMap, params) }

func CounterOf(params ...Type) Type { return container("counter", ContainerCounter, params) }

func DequeOf(params ...Type) Type { return container("deque", ContainerDeque, params) }

func container(name string, kind ContainerKind, params []Type) Type {
	return Type{kind: KindContainer, name: name, container: kind, params: params}
}

// Kind returns the variant tag.
func (t Type) Kind() Kind { return t.kind }

// Name returns the declared name ("int", "list", an alias name, ...).
func (t Type) Name() string { return t.name }

// Container returns the container kind, zero for non-containers.
func (t Type) Container() ContainerKind { return t.container }

// Params returns the element type parameters of a container.
func (t Type) Params() []Type { return t.params }

// Underlying returns the type wrapped by an alias.
func (t Type) Underlying() (Type, bool) {
	if t.kind != KindAlias {
		return Type{}, false
	}
	return *t.inner, true
}

// IsDeclared reports whether t carries a declared type.
func (t Type) IsDeclared() bool { return t.kind != KindUndeclared }

// String renders t in the ParseType expression syntax.
func (t Type) String() string {
	switch t.kind {
	case KindUndeclared:
		return "<undeclared>"
	case KindAlias:
		return fmt.Sprintf("%s(%s)", t.name, t.inner.String())
	case KindContainer:
		if len(t.params) == 0 {
			return t.name
		}
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.String()
		}
		return t.name + "[" + strings.Join(parts, ", ") + "]"
	default:
		return t.name
	}
}

// Resolve unwraps the alias chain and drops container parameters, yielding the
// concrete type whose constructor is used for coercion.
func (t Type) Resolve() Type {
	for t.kind == KindAlias {
		t = *t.inner
	}
	if t.kind == KindContainer {
		t.params = nil
	}
	return t
}

// constructor returns the constructor of a resolved type and whether its input
// must first be parsed as a structured literal.
func (t Type) constructor() (Constructor, bool) {
	switch t.kind {
	case KindScalar:
		return t.ctor, t.literal
	case KindContainer:
		switch t.container {
		case ContainerList:
			return toList, true
		case ContainerSet:
			return toSet, true
		case ContainerTuple:
			return toTuple, true
		case ContainerMap:
			return toMap, true
		case ContainerFrozenSet:
			return toFrozenSet, false
		case ContainerCounter:
			return toCounter, false
		case ContainerDeque:
			return toDeque, false
		}
	}
	return nil, false
}

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	ipType              = reflect.TypeOf(net.IP{})
	urlType             = reflect.TypeOf(url.URL{})
	ipNetType           = reflect.TypeOf(net.IPNet{})
	bytesType           = reflect.TypeOf([]byte(nil))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// TypeOf derives a Type from a Go type.
// Named types outside the predeclared set become aliases of their underlying descriptor.
func TypeOf(rt reflect.Type) Type {
	if rt == nil {
		return Untyped
	}
	switch rt {
	case durationType:
		return Duration
	case ipType:
		return IP
	case urlType, reflect.PointerTo(urlType):
		return URL
	case ipNetType, reflect.PointerTo(ipNetType):
		return CIDR
	case bytesType:
		return Bytes
	}
	if rt.Kind() == reflect.Ptr {
		return TypeOf(rt.Elem())
	}
	if reflect.PointerTo(rt).Implements(textUnmarshalerType) {
		return textScalar(rt)
	}

	base := kindType(rt)
	if rt.Name() != "" && rt.PkgPath() != "" && base.IsDeclared() {
		return Alias(rt.Name(), base)
	}
	return base
}

func kindType(rt reflect.Type) Type {
	switch rt.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Slice:
		return List(TypeOf(rt.Elem()))
	case reflect.Array:
		return TupleOf(TypeOf(rt.Elem()))
	case reflect.Map:
		if rt.Elem().Kind() == reflect.Struct && rt.Elem().NumField() == 0 {
			return SetOf(TypeOf(rt.Key()))
		}
		return MapOf(TypeOf(rt.Key()), TypeOf(rt.Elem()))
	}
	return Untyped
}

// textScalar wraps a type implementing encoding.TextUnmarshaler.
func textScalar(rt reflect.Type) Type {
	return Scalar(rt.String(), func(value any) (any, error) {
		if reflect.TypeOf(value) == rt {
			return value, nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("cannot convert %T to %s", value, rt)
		}
		ptr := reflect.New(rt)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	})
}

var typeNames = map[string]Type{
	"str":       String,
	"string":    String,
	"text":      String,
	"anystr":    String,
	"int":       Int,
	"integer":   Int,
	"float":     Float,
	"bool":      Bool,
	"boolean":   Bool,
	"bytes":     Bytes,
	"duration":  Duration,
	"url":       URL,
	"ip":        IP,
	"cidr":      CIDR,
	"list":      List(),
	"sequence":  List(),
	"set":       SetOf(),
	"frozenset": FrozenSetOf(),
	"tuple":     TupleOf(),
	"dict":      MapOf(),
	"map":       MapOf(),
	"mapping":   MapOf(),
	"counter":   CounterOf(),
	"deque":     DequeOf(),
}

// ParseType parses a type expression such as "int", "list[int]" or "dict[str, list[int]]".
// Names are case-insensitive.
func ParseType(expr string) (Type, error) {
	p := typeParser{src: expr}
	t, err := p.parse()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, fmt.Errorf("unexpected %q at offset %d in type %q", p.src[p.pos:], p.pos, expr)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) parse() (Type, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("[], ", p.src[p.pos]) < 0 {
		p.pos++
	}
	name := strings.ToLower(p.src[start:p.pos])
	if name == "" {
		return Type{}, fmt.Errorf("missing type name at offset %d in %q", start, p.src)
	}
	t, ok := typeNames[name]
	if !ok {
		return Type{}, fmt.Errorf("unknown type %q", name)
	}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return t, nil
	}
	if t.kind != KindContainer {
		return Type{}, fmt.Errorf("type %q does not take parameters", name)
	}
	p.pos++

	var params []Type
	for {
		param, err := p.parse()
		if err != nil {
			return Type{}, err
		}
		params = append(params, param)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Type{}, fmt.Errorf("unterminated parameter list in %q", p.src)
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			break
		}
		return Type{}, fmt.Errorf("unexpected %q at offset %d in %q", p.src[p.pos], p.pos, p.src)
	}
	return container(t.name, t.container, params), nil
}
