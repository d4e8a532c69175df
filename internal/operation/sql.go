package operation

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pgtrunk/pgtrunk/internal/attr"
	"github.com/pgtrunk/pgtrunk/internal/ir"
)

// commentSQL renders COMMENT ON for keyword ("VIEW", "MATERIALIZED VIEW").
// An empty comment removes it.
func commentSQL(keyword string, name ir.QualifiedName, comment string) string {
	if comment == "" {
		return "COMMENT ON " + keyword + " " + name.ToSQL() + " IS NULL;"
	}
	return "COMMENT ON " + keyword + " " + name.ToSQL() + " IS " + ir.QuoteLiteral(comment) + ";"
}

// renameSQL moves the object to the new schema and renames it, emitting only
// the statements whose part actually differs.
func renameSQL(keyword string, set *attr.Set) string {
	name, newName := set.GetName("name"), set.GetName("new_name")

	prefix := "ALTER " + keyword + " "
	if set.GetBool("if_exists") {
		prefix += "IF EXISTS "
	}

	var stmts []string
	current := name
	if newName.Schema != "" && newName.Schema != name.Schema {
		stmts = append(stmts, prefix+current.ToSQL()+" SET SCHEMA "+pq.QuoteIdentifier(newName.Schema))
		current = current.WithSchema(newName.Schema)
	}
	if newName.Name != "" && newName.Name != name.Name {
		stmts = append(stmts, prefix+current.ToSQL()+" RENAME TO "+pq.QuoteIdentifier(newName.Name))
	}
	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, "; ") + ";"
}

// qualifyNewName gives new_name the schema of name when it has none, so the
// rename stays within the schema and swapping both names undoes it exactly.
func qualifyNewName(set *attr.Set) error {
	name, newName := set.GetName("name"), set.GetName("new_name")
	if newName.IsZero() || newName.Schema != "" || name.Schema == "" {
		return nil
	}
	return set.Set("new_name", newName.WithSchema(name.Schema))
}

// invertRename swaps name and new_name.
func invertRename(op Operation, factory Factory, set *attr.Set) (Operation, error) {
	if err := refuseIfExists(op); err != nil {
		return nil, err
	}
	name, newName := set.GetName("name"), set.GetName("new_name")
	if name.Schema == "" && newName.Schema != "" {
		return nil, refuse(op, "the schema the object was moved from is unknown; qualify name with its schema")
	}

	values := set.Map()
	values["name"], values["new_name"] = newName, name
	return buildInverse(op, factory, values)
}

// renameRules are shared by every rename variant.
var renameRules = []attr.Rule{
	attr.Presence("name", "new_name"),
	attr.Difference("new_name", "name"),
	attr.Absence("sql_definition", "from_sql_definition", "check", "from_check", "force", "version",
		"if_not_exists", "replace_existing", "concurrently", "security_invoker", "from_security_invoker",
		"tablespace", "from_tablespace", "with_data", "columns", "comment", "from_comment"),
}

func withDataClause(set *attr.Set) string {
	if set.Has("with_data") && !set.GetBool("with_data") {
		return " WITH NO DATA"
	}
	return " WITH DATA"
}

func dropSQL(keyword string, set *attr.Set) string {
	sql := "DROP " + keyword + " "
	if set.GetBool("if_exists") {
		sql += "IF EXISTS "
	}
	sql += set.GetName("name").ToSQL()
	if set.GetString("force") == "cascade" {
		sql += " CASCADE"
	}
	return sql + ";"
}

// refuseUncertainDrop applies the policy shared by every drop variant.
func refuseUncertainDrop(op Operation, set *attr.Set) error {
	if err := refuseIfExists(op); err != nil {
		return err
	}
	if set.GetString("force") == "cascade" {
		return refuse(op, "force: cascade may have dropped unknown dependent objects")
	}
	return nil
}

// invertChange swaps every assigned attribute with its from_ counterpart.
func invertChange(op Operation, build Factory, set *attr.Set, names ...string) (Operation, error) {
	rules := make([]attr.Rule, 0, len(names))
	for _, name := range names {
		rules = append(rules, counterpart(name))
	}
	if problems := attr.Validate(set, rules...); len(problems) > 0 {
		return nil, &IrreversibleError{
			Snippet:     op.Snippet(),
			Problems:    problems,
			Reason:      "the previous state is unknown",
			Remediation: defaultRemediation,
		}
	}

	values := set.Map()
	delete(values, "version")
	for _, name := range names {
		if set.Has(name) {
			values[name], values["from_"+name] = set.Get("from_"+name), set.Get(name)
		}
	}
	return buildInverse(op, build, values)
}

func assigned(name string) func(s *attr.Set) bool {
	return func(s *attr.Set) bool {
		return s.Has(name)
	}
}
