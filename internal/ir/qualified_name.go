package ir

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// QualifiedName is a possibly schema-qualified identifier of a database object.
// An empty Schema means the object is resolved through the search path.
type QualifiedName struct {
	Schema string
	Name   string
}

// NewQualifiedName builds a name from explicit parts.
func NewQualifiedName(schema, name string) QualifiedName {
	return QualifiedName{Schema: schema, Name: name}
}

// ParseQualifiedName parses "schema.name" or "name". Parts may be double-quoted,
// in which case they can contain dots and doubled quotes ("").
func ParseQualifiedName(input string) (QualifiedName, error) {
	parts, err := splitIdentifier(strings.TrimSpace(input))
	if err != nil {
		return QualifiedName{}, fmt.Errorf("invalid qualified name %q: %w", input, err)
	}

	switch len(parts) {
	case 1:
		return QualifiedName{Name: parts[0]}, nil
	case 2:
		return QualifiedName{Schema: parts[0], Name: parts[1]}, nil
	default:
		return QualifiedName{}, fmt.Errorf("invalid qualified name %q: expected at most one dot outside quotes", input)
	}
}

// MustParseQualifiedName is like ParseQualifiedName but panics on malformed input.
// Intended for tests and static tables.
func MustParseQualifiedName(input string) QualifiedName {
	q, err := ParseQualifiedName(input)
	if err != nil {
		panic(err)
	}
	return q
}

func splitIdentifier(input string) ([]string, error) {
	if input == "" {
		return nil, fmt.Errorf("empty name")
	}

	var (
		parts     []string
		current   strings.Builder
		quoted    bool
		wasQuoted bool
	)

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quoted && r == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			quoted = false
		case quoted:
			current.WriteRune(r)
		case r == '"':
			if current.Len() > 0 {
				return nil, fmt.Errorf("unexpected quote at position %d", i)
			}
			quoted = true
			wasQuoted = true
		case r == '.':
			if current.Len() == 0 {
				return nil, fmt.Errorf("empty identifier before position %d", i)
			}
			parts = append(parts, current.String())
			current.Reset()
			wasQuoted = false
		default:
			if wasQuoted {
				return nil, fmt.Errorf("unexpected character after quoted identifier at position %d", i)
			}
			current.WriteRune(r)
		}
	}

	if quoted {
		return nil, fmt.Errorf("unterminated quoted identifier")
	}
	if current.Len() == 0 {
		return nil, fmt.Errorf("empty identifier at end")
	}
	return append(parts, current.String()), nil
}

// IsZero reports whether the name is unset.
func (q QualifiedName) IsZero() bool {
	return q.Schema == "" && q.Name == ""
}

// Routine returns the bare, unqualified name.
func (q QualifiedName) Routine() string {
	return q.Name
}

// ToSQL renders the name with every part quoted.
func (q QualifiedName) ToSQL() string {
	if q.Schema == "" {
		return pq.QuoteIdentifier(q.Name)
	}
	return pq.QuoteIdentifier(q.Schema) + "." + pq.QuoteIdentifier(q.Name)
}

// Lean renders the name the way a user would type it: schema only when known,
// quotes only where PostgreSQL needs them.
func (q QualifiedName) Lean() string {
	if q.Schema == "" {
		return QuoteIdentifier(q.Name)
	}
	return QuoteIdentifier(q.Schema) + "." + QuoteIdentifier(q.Name)
}

func (q QualifiedName) String() string {
	return q.Lean()
}

// WithSchema returns a copy with the schema replaced.
func (q QualifiedName) WithSchema(schema string) QualifiedName {
	q.Schema = schema
	return q
}

// WithName returns a copy with the bare name replaced.
func (q QualifiedName) WithName(name string) QualifiedName {
	q.Name = name
	return q
}

// Merge returns a copy where the non-empty parts of other replace the
// corresponding parts of q.
func (q QualifiedName) Merge(other QualifiedName) QualifiedName {
	if other.Schema != "" {
		q.Schema = other.Schema
	}
	if other.Name != "" {
		q.Name = other.Name
	}
	return q
}

// MaybeEqual reports whether both names could refer to the same object.
// An empty schema on either side matches any schema.
func (q QualifiedName) MaybeEqual(other QualifiedName) bool {
	if q.Name != other.Name {
		return false
	}
	return q.Schema == "" || other.Schema == "" || q.Schema == other.Schema
}

// Compare orders names by (schema, name), unqualified names first.
func (q QualifiedName) Compare(other QualifiedName) int {
	if c := strings.Compare(q.Schema, other.Schema); c != 0 {
		return c
	}
	return strings.Compare(q.Name, other.Name)
}

// Less reports whether q sorts before other.
func (q QualifiedName) Less(other QualifiedName) bool {
	return q.Compare(other) < 0
}
