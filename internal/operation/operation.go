// Package operation models reversible schema change operations.
//
// An Operation is an immutable value built from an attribute mapping, either
// from a migration file or from a catalog row. It validates itself on request,
// renders forward SQL, derives its inverse and prints a canonical snippet that
// loads back into an equivalent operation.
package operation

import (
	"github.com/pgtrunk/pgtrunk/internal/attr"
	"github.com/pgtrunk/pgtrunk/internal/ir"
)

// Operation is one schema change action.
type Operation interface {
	// Verb is the declarative invocation name, e.g. "drop_materialized_view".
	Verb() string
	// Kind is the object kind the operation acts on.
	Kind() string
	// Attrs returns a copy of the attribute values.
	Attrs() *attr.Set
	Name() ir.QualifiedName
	OID() int64

	// Validate returns every violation; an empty result means the operation is valid.
	Validate() []string
	// ToSQL renders the forward statements for a server version number
	// (server_version_num, e.g. 170002). Every statement ends with a semicolon.
	ToSQL(serverVersion int) string
	// Invert returns an operation undoing this one, nil when there is nothing
	// to undo, or an *IrreversibleError. A returned inverse is valid.
	Invert() (Operation, error)
	// Snippet renders the canonical declarative line, newline-terminated.
	Snippet() string
}

// Factory builds an operation from an attribute mapping.
type Factory func(values map[string]any) (Operation, error)

// Valid reports whether op has no validation problems.
func Valid(op Operation) bool {
	return len(op.Validate()) == 0
}

// Less is the fallback ordering of operations: by name, then verb, then oid.
func Less(a, b Operation) bool {
	if c := a.Name().Compare(b.Name()); c != 0 {
		return c < 0
	}
	if a.Verb() != b.Verb() {
		return a.Verb() < b.Verb()
	}
	return a.OID() < b.OID()
}

type base struct {
	verb  string
	kind  string
	attrs *attr.Set
}

func newBase(verb, kind string, values map[string]any) (base, error) {
	set := attr.NewSet(relationSchema)
	if err := set.Assign(values); err != nil {
		return base{}, err
	}
	return base{verb: verb, kind: kind, attrs: set}, nil
}

func (b base) Verb() string {
	return b.verb
}

func (b base) Kind() string {
	return b.kind
}

func (b base) Attrs() *attr.Set {
	return b.attrs.Clone()
}

func (b base) Name() ir.QualifiedName {
	return b.attrs.GetName("name")
}

func (b base) OID() int64 {
	return int64(b.attrs.GetInt("oid"))
}

func (b base) Snippet() string {
	return renderSnippet(b.verb, b.attrs)
}

// values returns the attribute mapping without the given attributes.
func (b base) values(without ...string) map[string]any {
	m := b.attrs.Map()
	for _, name := range without {
		delete(m, name)
	}
	return m
}
