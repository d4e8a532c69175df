// Package attr implements typed, validated attributes for schema operations.
//
// Each operation variant declares an ordered Schema: a fixed table of attribute
// definitions (canonical name, semantic kind, aliases). A Set holds the values
// of one operation instance; assignments are coerced into the declared kind
// immediately, while validation rules run only when asked for.
package attr

import (
	"fmt"
	"strings"
)

// Kind is the semantic type of an attribute.
type Kind int

const (
	String Kind = iota
	Boolean
	Integer
	Symbol
	Name
	Text
	Columns
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Symbol:
		return "symbol"
	case Name:
		return "qualified name"
	case Text:
		return "text"
	case Columns:
		return "columns"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a per-column storage override of a relation.
type Column struct {
	Name    string `json:"name" yaml:"name"`
	Storage string `json:"storage" yaml:"storage"`
}

// Def declares one attribute.
type Def struct {
	Name    string
	Kind    Kind
	Aliases []string
	// Hidden attributes carry catalog data and are never rendered in snippets.
	Hidden bool
}

// Schema is an ordered table of attribute definitions.
type Schema struct {
	defs  []Def
	index map[string]int
}

// NewSchema builds a schema from definitions in declaration order. Duplicate
// names or aliases are programming errors and panic.
func NewSchema(defs ...Def) *Schema {
	s := &Schema{
		defs:  make([]Def, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		pos := len(s.defs)
		for _, key := range append([]string{def.Name}, def.Aliases...) {
			if _, exists := s.index[key]; exists {
				panic(fmt.Sprintf("attr: duplicate attribute or alias %q", key))
			}
			s.index[key] = pos
		}
		s.defs = append(s.defs, def)
	}
	return s
}

// Defs returns the definitions in declaration order.
func (s *Schema) Defs() []Def {
	return append([]Def(nil), s.defs...)
}

// Lookup finds a definition by canonical name or alias.
func (s *Schema) Lookup(name string) (Def, bool) {
	pos, ok := s.index[strings.TrimPrefix(name, ":")]
	if !ok {
		return Def{}, false
	}
	return s.defs[pos], true
}

// Names returns the canonical attribute names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.defs))
	for _, def := range s.defs {
		names = append(names, def.Name)
	}
	return names
}
