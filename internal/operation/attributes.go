package operation

import "github.com/pgtrunk/pgtrunk/internal/attr"

// Object kinds.
const (
	KindMaterializedView = "materialized_views"
	KindView             = "views"
)

// Verbs of the declarative invocations.
const (
	VerbCreateMaterializedView  = "create_materialized_view"
	VerbDropMaterializedView    = "drop_materialized_view"
	VerbRenameMaterializedView  = "rename_materialized_view"
	VerbChangeMaterializedView  = "change_materialized_view"
	VerbRefreshMaterializedView = "refresh_materialized_view"

	VerbCreateView = "create_view"
	VerbDropView   = "drop_view"
	VerbRenameView = "rename_view"
	VerbChangeView = "change_view"
)

// Storage strategies accepted for column overrides.
var storages = []string{"plain", "external", "extended", "main"}

// relationSchema is shared by every view-like variant, so the attribute map of
// one variant always builds its counterpart. Declaration order is snippet order.
var relationSchema = attr.NewSchema(
	attr.Def{Name: "name", Kind: attr.Name},
	attr.Def{Name: "new_name", Kind: attr.Name, Aliases: []string{"to"}},
	attr.Def{Name: "oid", Kind: attr.Integer, Hidden: true},
	attr.Def{Name: "if_exists", Kind: attr.Boolean},
	attr.Def{Name: "if_not_exists", Kind: attr.Boolean},
	attr.Def{Name: "replace_existing", Kind: attr.Boolean},
	attr.Def{Name: "force", Kind: attr.Symbol},
	attr.Def{Name: "concurrently", Kind: attr.Boolean},
	attr.Def{Name: "sql_definition", Kind: attr.Text},
	attr.Def{Name: "from_sql_definition", Kind: attr.Text},
	attr.Def{Name: "check", Kind: attr.Symbol},
	attr.Def{Name: "from_check", Kind: attr.Symbol},
	attr.Def{Name: "security_invoker", Kind: attr.Boolean},
	attr.Def{Name: "from_security_invoker", Kind: attr.Boolean},
	attr.Def{Name: "tablespace", Kind: attr.String},
	attr.Def{Name: "from_tablespace", Kind: attr.String},
	attr.Def{Name: "with_data", Kind: attr.Boolean},
	attr.Def{Name: "columns", Kind: attr.Columns},
	attr.Def{Name: "version", Kind: attr.Integer, Aliases: []string{"revert_to_version"}},
	attr.Def{Name: "comment", Kind: attr.String},
	attr.Def{Name: "from_comment", Kind: attr.String},
)

// viewOptions are restated by every CREATE OR REPLACE VIEW; an option left out
// is reset.
var viewOptions = []string{"check", "security_invoker"}

// Attributes returns the attribute names every variant accepts, in snippet order.
func Attributes() []string {
	return relationSchema.Names()
}

// anyAssigned requires at least one attribute to be assigned at all. Unlike
// attr.AnyPresent an empty comment counts, since it removes the comment.
func anyAssigned(names ...string) attr.Rule {
	return attr.RuleFunc(func(s *attr.Set) []string {
		for _, name := range names {
			if s.Has(name) {
				return nil
			}
		}
		return attr.AnyPresent(names...).Check(s)
	})
}

// counterpart requires from_<name> whenever name is assigned.
func counterpart(name string) attr.Rule {
	return attr.RuleFunc(func(s *attr.Set) []string {
		if s.Has(name) && !s.Has("from_"+name) {
			return []string{"from_" + name + " can't be blank when " + name + " is changed"}
		}
		return nil
	})
}
