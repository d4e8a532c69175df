package operation

import (
	"strings"

	"github.com/pgtrunk/pgtrunk/internal/attr"
)

const view = "VIEW"

// securityInvokerSince is the first server version supporting security_invoker views.
const securityInvokerSince = 150000

func viewSQL(set *attr.Set, replace bool, serverVersion int) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if replace {
		b.WriteString("OR REPLACE ")
	}
	b.WriteString("VIEW " + set.GetName("name").ToSQL())
	if set.GetBool("security_invoker") && (serverVersion == 0 || serverVersion >= securityInvokerSince) {
		b.WriteString(" WITH (security_invoker = true)")
	}
	b.WriteString(" AS " + set.GetString("sql_definition"))
	if check := set.GetString("check"); check != "" {
		b.WriteString(" WITH " + strings.ToUpper(check) + " CHECK OPTION")
	}
	b.WriteString(";")
	return b.String()
}

// CreateView creates or replaces a view.
type CreateView struct{ base }

func NewCreateView(values map[string]any) (*CreateView, error) {
	b, err := newBase(VerbCreateView, KindView, values)
	if err != nil {
		return nil, err
	}
	return &CreateView{b}, nil
}

func (op *CreateView) Validate() []string {
	return attr.Validate(op.attrs,
		attr.Presence("name", "sql_definition"),
		attr.Absence("new_name", "if_exists", "if_not_exists", "force", "concurrently",
			"from_sql_definition", "from_check", "from_security_invoker", "tablespace", "from_tablespace",
			"with_data", "columns", "from_comment"),
		attr.Inclusion("check", "local", "cascaded"),
		definitions("sql_definition"),
	)
}

func (op *CreateView) ToSQL(serverVersion int) string {
	sql := viewSQL(op.attrs, op.attrs.GetBool("replace_existing"), serverVersion)
	if comment := op.attrs.GetString("comment"); comment != "" {
		sql += "\n" + commentSQL(view, op.Name(), comment)
	}
	return sql
}

func (op *CreateView) Invert() (Operation, error) {
	if err := refuseIfExists(op); err != nil {
		return nil, err
	}
	if op.attrs.GetBool("replace_existing") {
		return nil, refuse(op, "replace_existing leaves the replaced definition unknown")
	}
	return buildInverse(op, factory(NewDropView), op.values())
}

// DropView drops a view, keeping its definition for the inverse.
type DropView struct{ base }

func NewDropView(values map[string]any) (*DropView, error) {
	b, err := newBase(VerbDropView, KindView, values)
	if err != nil {
		return nil, err
	}
	return &DropView{b}, nil
}

func (op *DropView) Validate() []string {
	return attr.Validate(op.attrs,
		attr.Presence("name"),
		attr.Absence("new_name", "if_not_exists", "replace_existing", "concurrently",
			"from_sql_definition", "from_check", "from_security_invoker", "tablespace", "from_tablespace",
			"with_data", "columns", "from_comment"),
		attr.Inclusion("force", "cascade", "restrict"),
		attr.Inclusion("check", "local", "cascaded"),
		definitions("sql_definition"),
	)
}

func (op *DropView) ToSQL(int) string {
	return dropSQL(view, op.attrs)
}

func (op *DropView) Invert() (Operation, error) {
	if err := refuseUncertainDrop(op, op.attrs); err != nil {
		return nil, err
	}
	return buildInverse(op, factory(NewCreateView), op.values("force"))
}

// RenameView moves a view to another schema and/or gives it another name.
type RenameView struct{ base }

func NewRenameView(values map[string]any) (*RenameView, error) {
	b, err := newBase(VerbRenameView, KindView, values)
	if err != nil {
		return nil, err
	}
	if err := qualifyNewName(b.attrs); err != nil {
		return nil, err
	}
	return &RenameView{b}, nil
}

func (op *RenameView) Validate() []string {
	return attr.Validate(op.attrs, renameRules...)
}

func (op *RenameView) ToSQL(int) string {
	return renameSQL(view, op.attrs)
}

func (op *RenameView) Invert() (Operation, error) {
	return invertRename(op, factory(NewRenameView), op.attrs)
}

// ChangeView replaces the definition or the comment of a view. A new definition
// restates the view options: check and security_invoker describe the new view,
// from_check and from_security_invoker the view being replaced.
type ChangeView struct{ base }

func NewChangeView(values map[string]any) (*ChangeView, error) {
	b, err := newBase(VerbChangeView, KindView, values)
	if err != nil {
		return nil, err
	}
	return &ChangeView{b}, nil
}

func (op *ChangeView) Validate() []string {
	return attr.Validate(op.attrs,
		attr.Presence("name"),
		anyAssigned("sql_definition", "comment"),
		attr.Absence("new_name", "if_exists", "if_not_exists", "replace_existing", "force", "concurrently",
			"tablespace", "from_tablespace", "with_data", "columns"),
		attr.Inclusion("check", "local", "cascaded"),
		attr.Inclusion("from_check", "local", "cascaded"),
		attr.When(withoutDefinition, attr.Absence("check", "from_check", "security_invoker", "from_security_invoker")),
		definitions("sql_definition", "from_sql_definition"),
	)
}

func withoutDefinition(s *attr.Set) bool {
	return !s.Has("sql_definition")
}

func (op *ChangeView) ToSQL(serverVersion int) string {
	var stmts []string
	if op.attrs.Has("sql_definition") {
		stmts = append(stmts, viewSQL(op.attrs, true, serverVersion))
	}
	if op.attrs.Has("comment") {
		stmts = append(stmts, commentSQL(view, op.Name(), op.attrs.GetString("comment")))
	}
	return strings.Join(stmts, "\n")
}

func (op *ChangeView) Invert() (Operation, error) {
	if err := refuseIfExists(op); err != nil {
		return nil, err
	}
	set := op.attrs
	if set.Has("sql_definition") {
		set = set.Clone()
		for _, name := range viewOptions {
			current, previous := set.Get(name), set.Get("from_"+name)
			if err := set.Set(name, previous); err != nil {
				return nil, err
			}
			if err := set.Set("from_"+name, current); err != nil {
				return nil, err
			}
		}
	}
	return invertChange(op, factory(NewChangeView), set, "sql_definition", "comment")
}
