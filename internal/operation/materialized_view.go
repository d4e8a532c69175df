package operation

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pgtrunk/pgtrunk/internal/attr"
)

const materializedView = "MATERIALIZED VIEW"

// CreateMaterializedView creates a materialized view with optional tablespace,
// column storage overrides and comment.
type CreateMaterializedView struct{ base }

func NewCreateMaterializedView(values map[string]any) (*CreateMaterializedView, error) {
	b, err := newBase(VerbCreateMaterializedView, KindMaterializedView, values)
	if err != nil {
		return nil, err
	}
	return &CreateMaterializedView{b}, nil
}

func (op *CreateMaterializedView) Validate() []string {
	return attr.Validate(op.attrs,
		attr.Presence("name", "sql_definition"),
		attr.Absence("new_name", "if_exists", "replace_existing", "force", "concurrently",
			"from_sql_definition", "check", "from_check", "security_invoker", "from_security_invoker", "from_tablespace", "from_comment"),
		attr.InclusionEach("columns", storages...),
		definitions("sql_definition"),
	)
}

func (op *CreateMaterializedView) ToSQL(int) string {
	name := op.Name()

	var b strings.Builder
	b.WriteString("CREATE MATERIALIZED VIEW ")
	if op.attrs.GetBool("if_not_exists") {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(name.ToSQL())
	if tablespace := op.attrs.GetString("tablespace"); tablespace != "" {
		b.WriteString(" TABLESPACE " + pq.QuoteIdentifier(tablespace))
	}
	b.WriteString(" AS " + op.attrs.GetString("sql_definition"))
	b.WriteString(withDataClause(op.attrs) + ";")

	for _, col := range op.attrs.GetColumns("columns") {
		b.WriteString("\nALTER MATERIALIZED VIEW " + name.ToSQL() + " ALTER COLUMN " + pq.QuoteIdentifier(col.Name) +
			" SET STORAGE " + strings.ToUpper(col.Storage) + ";")
	}
	if comment := op.attrs.GetString("comment"); comment != "" {
		b.WriteString("\n" + commentSQL(materializedView, name, comment))
	}
	return b.String()
}

func (op *CreateMaterializedView) Invert() (Operation, error) {
	if err := refuseIfExists(op); err != nil {
		return nil, err
	}
	if op.attrs.GetBool("if_not_exists") {
		return nil, refuse(op, "if_not_exists leaves the prior existence of the view unknown")
	}
	return buildInverse(op, factory(NewDropMaterializedView), op.values())
}

// DropMaterializedView drops a materialized view. The attributes describing
// its content are kept so the drop can be reverted.
type DropMaterializedView struct{ base }

func NewDropMaterializedView(values map[string]any) (*DropMaterializedView, error) {
	b, err := newBase(VerbDropMaterializedView, KindMaterializedView, values)
	if err != nil {
		return nil, err
	}
	return &DropMaterializedView{b}, nil
}

func (op *DropMaterializedView) Validate() []string {
	return attr.Validate(op.attrs,
		attr.Presence("name"),
		attr.Absence("new_name", "if_not_exists", "replace_existing", "concurrently",
			"from_sql_definition", "check", "from_check", "security_invoker", "from_security_invoker", "from_tablespace", "from_comment"),
		attr.Inclusion("force", "cascade", "restrict"),
		attr.InclusionEach("columns", storages...),
		definitions("sql_definition"),
	)
}

func (op *DropMaterializedView) ToSQL(int) string {
	return dropSQL(materializedView, op.attrs)
}

func (op *DropMaterializedView) Invert() (Operation, error) {
	if err := refuseUncertainDrop(op, op.attrs); err != nil {
		return nil, err
	}
	return buildInverse(op, factory(NewCreateMaterializedView), op.values("force"))
}

// RenameMaterializedView moves a materialized view to another schema and/or
// gives it another name.
type RenameMaterializedView struct{ base }

func NewRenameMaterializedView(values map[string]any) (*RenameMaterializedView, error) {
	b, err := newBase(VerbRenameMaterializedView, KindMaterializedView, values)
	if err != nil {
		return nil, err
	}
	if err := qualifyNewName(b.attrs); err != nil {
		return nil, err
	}
	return &RenameMaterializedView{b}, nil
}

func (op *RenameMaterializedView) Validate() []string {
	return attr.Validate(op.attrs, renameRules...)
}

func (op *RenameMaterializedView) ToSQL(int) string {
	return renameSQL(materializedView, op.attrs)
}

func (op *RenameMaterializedView) Invert() (Operation, error) {
	return invertRename(op, factory(NewRenameMaterializedView), op.attrs)
}

// ChangeMaterializedView moves a materialized view to another tablespace or
// replaces its comment. The from_* attributes hold the previous values.
type ChangeMaterializedView struct{ base }

func NewChangeMaterializedView(values map[string]any) (*ChangeMaterializedView, error) {
	b, err := newBase(VerbChangeMaterializedView, KindMaterializedView, values)
	if err != nil {
		return nil, err
	}
	return &ChangeMaterializedView{b}, nil
}

func (op *ChangeMaterializedView) Validate() []string {
	return attr.Validate(op.attrs,
		attr.Presence("name"),
		anyAssigned("tablespace", "comment"),
		attr.When(assigned("tablespace"), attr.Presence("tablespace")),
		attr.When(assigned("from_tablespace"), attr.Presence("from_tablespace")),
		attr.Absence("new_name", "if_not_exists", "replace_existing", "force", "concurrently",
			"sql_definition", "from_sql_definition", "check", "from_check", "security_invoker", "from_security_invoker", "with_data", "columns", "version"),
	)
}

func (op *ChangeMaterializedView) ToSQL(int) string {
	name := op.Name()

	var stmts []string
	if op.attrs.Has("tablespace") {
		prefix := "ALTER MATERIALIZED VIEW "
		if op.attrs.GetBool("if_exists") {
			prefix += "IF EXISTS "
		}
		stmts = append(stmts, prefix+name.ToSQL()+" SET TABLESPACE "+pq.QuoteIdentifier(op.attrs.GetString("tablespace"))+";")
	}
	if op.attrs.Has("comment") {
		stmts = append(stmts, commentSQL(materializedView, name, op.attrs.GetString("comment")))
	}
	return strings.Join(stmts, "\n")
}

func (op *ChangeMaterializedView) Invert() (Operation, error) {
	if err := refuseIfExists(op); err != nil {
		return nil, err
	}
	return invertChange(op, factory(NewChangeMaterializedView), op.attrs, "tablespace", "comment")
}

// RefreshMaterializedView reloads the data of a materialized view. It changes
// no schema, so its inverse is nothing.
type RefreshMaterializedView struct{ base }

func NewRefreshMaterializedView(values map[string]any) (*RefreshMaterializedView, error) {
	b, err := newBase(VerbRefreshMaterializedView, KindMaterializedView, values)
	if err != nil {
		return nil, err
	}
	return &RefreshMaterializedView{b}, nil
}

func (op *RefreshMaterializedView) Validate() []string {
	return attr.Validate(op.attrs,
		attr.Presence("name"),
		attr.Absence("new_name", "if_exists", "if_not_exists", "replace_existing", "force",
			"sql_definition", "from_sql_definition", "check", "from_check", "security_invoker", "from_security_invoker",
			"tablespace", "from_tablespace", "columns", "version", "comment", "from_comment"),
		attr.RuleFunc(func(s *attr.Set) []string {
			if s.GetBool("concurrently") && s.Has("with_data") && !s.GetBool("with_data") {
				return []string{"concurrently can't be combined with with_data: false"}
			}
			return nil
		}),
	)
}

func (op *RefreshMaterializedView) ToSQL(int) string {
	sql := "REFRESH MATERIALIZED VIEW "
	if op.attrs.GetBool("concurrently") {
		sql += "CONCURRENTLY "
	}
	sql += op.Name().ToSQL()
	if op.attrs.Has("with_data") && !op.attrs.GetBool("with_data") {
		sql += " WITH NO DATA"
	}
	return sql + ";"
}

func (op *RefreshMaterializedView) Invert() (Operation, error) {
	if err := refuseIfExists(op); err != nil {
		return nil, err
	}
	return nil, nil
}
