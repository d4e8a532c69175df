package attr

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/pgtrunk/pgtrunk/internal/ir"
)

// Set holds the attribute values of one operation instance.
type Set struct {
	schema *Schema
	values map[string]any
}

// NewSet returns an empty set for the schema.
func NewSet(schema *Schema) *Set {
	return &Set{schema: schema, values: make(map[string]any)}
}

// Schema returns the schema the set was built for.
func (s *Set) Schema() *Schema {
	return s.schema
}

// Set coerces and stores a value under the attribute named name (or one of its
// aliases). Assigning nil clears the attribute.
func (s *Set) Set(name string, value any) error {
	def, ok := s.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAttribute, name)
	}

	coerced, err := coerce(def, value)
	if err != nil {
		return err
	}
	if coerced == nil {
		delete(s.values, def.Name)
		return nil
	}
	s.values[def.Name] = coerced
	return nil
}

// Assign sets every entry of values. Keys are processed in sorted order so the
// reported error is deterministic; the first failure stops the assignment. A
// canonical name and its alias may both appear only when they agree.
func (s *Set) Assign(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assigned := make(map[string]string, len(keys))
	for _, key := range keys {
		def, ok := s.schema.Lookup(key)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownAttribute, key)
		}
		prev, dup := assigned[def.Name]
		before := s.values[def.Name]
		if err := s.Set(key, values[key]); err != nil {
			return err
		}
		if dup && !reflect.DeepEqual(before, s.values[def.Name]) {
			return fmt.Errorf("%w: %q and %q set %s to different values", ErrDuplicateAttribute, prev, key, def.Name)
		}
		assigned[def.Name] = key
	}
	return nil
}

// Get returns the stored value or nil.
func (s *Set) Get(name string) any {
	def, ok := s.schema.Lookup(name)
	if !ok {
		return nil
	}
	return s.values[def.Name]
}

// Has reports whether the attribute holds a value.
func (s *Set) Has(name string) bool {
	return s.Get(name) != nil
}

func (s *Set) GetString(name string) string {
	v, _ := s.Get(name).(string)
	return v
}

func (s *Set) GetBool(name string) bool {
	v, _ := s.Get(name).(bool)
	return v
}

func (s *Set) GetInt(name string) int {
	v, _ := s.Get(name).(int)
	return v
}

func (s *Set) GetName(name string) ir.QualifiedName {
	v, _ := s.Get(name).(ir.QualifiedName)
	return v
}

func (s *Set) GetColumns(name string) []Column {
	v, _ := s.Get(name).([]Column)
	return append([]Column(nil), v...)
}

// Map returns canonical attribute names mapped to their values, omitting unset
// attributes. The result is a copy.
func (s *Set) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		if cols, ok := value.([]Column); ok {
			value = append([]Column(nil), cols...)
		}
		out[key] = value
	}
	return out
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{schema: s.schema, values: s.Map()}
}

// Equal reports whether both sets hold the same values.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	return reflect.DeepEqual(s.values, other.values)
}

// Entry is one attribute value in declaration order.
type Entry struct {
	Def   Def
	Value any
}

// Entries returns the set values in schema declaration order.
func (s *Set) Entries() []Entry {
	var entries []Entry
	for _, def := range s.schema.defs {
		if value, ok := s.values[def.Name]; ok {
			entries = append(entries, Entry{Def: def, Value: value})
		}
	}
	return entries
}
