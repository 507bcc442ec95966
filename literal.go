// FILE: lixenwraith/envconfig/literal.go
package envconfig

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseLiteral parses text as a structured literal.
//
// The grammar is YAML flow syntax limited to literal values: numbers, quoted strings,
// True/False, None or null, [lists], (tuples), {key: value} maps and {a, b} sets.
// Unquoted words are rejected the same way an expression parser rejects an unknown
// identifier, so "not a list" never silently becomes a string.
func parseLiteral(text string) (any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, fmt.Errorf("invalid literal syntax: empty input")
	}

	flow, err := rewriteLiteral(s)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(flow), &doc); err != nil {
		return nil, fmt.Errorf("invalid literal syntax: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("invalid literal syntax: %q", text)
	}

	root := doc.Content[0]
	switch {
	case root.Kind == yaml.ScalarNode && root.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0,
		root.Kind != yaml.ScalarNode && root.Style&yaml.FlowStyle == 0:
		return nil, fmt.Errorf("invalid literal syntax: %q is not a flow literal", text)
	}
	return literalValue(root)
}

// tupleTag marks sequences written with parentheses.
const tupleTag = "!tuple"

// literalFrame tracks one open bracket while rewriting.
type literalFrame struct {
	open    byte
	at      int  // output offset of a pending tuple marker
	content bool // any non-space text inside
	commas  int

	// flow mapping entries
	entry      bool
	colon      bool
	value      bool
	pairs, set int
}

// rewriteLiteral turns parenthesized tuples into tagged flow sequences, checks that
// brackets balance, and rejects YAML-only syntax. A comma outside any bracket makes
// the whole text a tuple, and (x) without a comma is plain grouping.
func rewriteLiteral(s string) (string, error) {
	out := make([]byte, 0, len(s)+16)
	stack := []*literalFrame{{open: '('}}

	top := func() *literalFrame { return stack[len(stack)-1] }
	mark := func() {
		f := top()
		f.content = true
		if f.open == '{' {
			f.entry = true
			if f.colon {
				f.value = true
			}
		}
	}
	endEntry := func(f *literalFrame) error {
		if f.open != '{' || !f.entry {
			return nil
		}
		switch {
		case f.colon && !f.value:
			return fmt.Errorf("invalid literal syntax: missing value in %q", s)
		case f.colon:
			f.pairs++
		default:
			f.set++
		}
		f.entry, f.colon, f.value = false, false, false
		return nil
	}
	closeTuple := func(f *literalFrame) {
		if f.commas == 0 && f.content {
			return
		}
		marker := tupleTag + " ["
		out = append(out[:f.at], append([]byte(marker), out[f.at:]...)...)
		out = append(out, ']')
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'', '"':
			mark()
			j := i + 1
			for ; j < len(s); j++ {
				if c == '"' && s[j] == '\\' {
					j++
					continue
				}
				if s[j] == c {
					if c == '\'' && j+1 < len(s) && s[j+1] == '\'' {
						j++
						continue
					}
					break
				}
			}
			if j >= len(s) {
				return "", fmt.Errorf("invalid literal syntax: unterminated string in %q", s)
			}
			out = append(out, s[i:j+1]...)
			i = j

		case '(', '[', '{':
			mark()
			f := &literalFrame{open: c, at: len(out)}
			if c != '(' {
				out = append(out, c)
			}
			stack = append(stack, f)

		case ')', ']', '}':
			f := top()
			want := map[byte]byte{')': '(', ']': '[', '}': '{'}[c]
			if len(stack) == 1 || f.open != want {
				return "", fmt.Errorf("invalid literal syntax: unbalanced %q in %q", c, s)
			}
			if err := endEntry(f); err != nil {
				return "", err
			}
			if f.pairs > 0 && f.set > 0 {
				return "", fmt.Errorf("invalid literal syntax: mixed set and dict entries in %q", s)
			}
			stack = stack[:len(stack)-1]
			if c == ')' {
				closeTuple(f)
			} else {
				out = append(out, c)
			}

		case ',':
			f := top()
			if err := endEntry(f); err != nil {
				return "", err
			}
			f.commas++
			out = append(out, c)

		case ':':
			f := top()
			if f.open != '{' || f.colon || !f.entry {
				return "", fmt.Errorf("invalid literal syntax: unexpected ':' in %q", s)
			}
			f.colon = true
			out = append(out, ':', ' ')

		case '!', '&', '*', '?', '|', '>', '%', '@', '`', '#':
			return "", fmt.Errorf("invalid literal syntax: unexpected %q in %q", c, s)

		case ' ', '\t', '\n', '\r':
			out = append(out, c)

		default:
			mark()
			out = append(out, c)
		}
	}

	if len(stack) != 1 {
		return "", fmt.Errorf("invalid literal syntax: unclosed %q in %q", top().open, s)
	}
	if root := stack[0]; root.commas > 0 {
		closeTuple(root)
	}
	return string(out), nil
}

func literalValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return literalScalar(n)

	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := literalValue(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if n.Tag == tupleTag {
			return Tuple(out), nil
		}
		return out, nil

	case yaml.MappingNode:
		if isSetNode(n) {
			out := make(Set, len(n.Content)/2)
			for i := 0; i < len(n.Content); i += 2 {
				k, err := literalKey(n.Content[i])
				if err != nil {
					return nil, err
				}
				out[k] = struct{}{}
			}
			return out, nil
		}

		out := make(map[any]any, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			k, err := literalKey(n.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := literalValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}

	return nil, fmt.Errorf("invalid literal syntax at line %d: unsupported construct", n.Line)
}

func literalScalar(n *yaml.Node) (any, error) {
	quoted := n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0

	switch n.ShortTag() {
	case "!!null":
		if n.Value != "null" {
			return nil, fmt.Errorf("invalid literal syntax: unexpected name %q", n.Value)
		}
		return nil, nil
	case "!!bool":
		switch n.Value {
		case "True", "true":
			return true, nil
		case "False", "false":
			return false, nil
		}
		return nil, fmt.Errorf("invalid literal syntax: unexpected name %q", n.Value)
	case "!!int":
		var i int
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return i, nil
	case "!!float":
		if strings.HasPrefix(strings.TrimLeft(n.Value, "+-"), ".") && strings.ContainsAny(n.Value, "iInN") {
			return nil, fmt.Errorf("invalid literal syntax: unexpected name %q", n.Value)
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!str":
		if quoted {
			return n.Value, nil
		}
		if n.Value == "None" {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid literal syntax: unexpected name %q", n.Value)
	}

	if quoted {
		return n.Value, nil
	}
	return nil, fmt.Errorf("invalid literal syntax: unsupported value %q", n.Value)
}

func literalKey(n *yaml.Node) (any, error) {
	k, err := literalValue(n)
	if err != nil {
		return nil, err
	}
	return hashKey(k)
}

// isSetNode reports whether a flow mapping has only keys, as in {1, 2, 3}.
func isSetNode(n *yaml.Node) bool {
	if len(n.Content) == 0 {
		return false
	}
	for i := 1; i < len(n.Content); i += 2 {
		v := n.Content[i]
		if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!null" || v.Value != "" {
			return false
		}
	}
	return true
}
