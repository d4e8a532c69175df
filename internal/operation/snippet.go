package operation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pgtrunk/pgtrunk/internal/attr"
	"github.com/pgtrunk/pgtrunk/internal/ir"
)

var bareSymbol = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// renderSnippet prints one migration file item:
//
//	- verb: {key: value, ...}
//
// Keys follow declaration order and hidden attributes are skipped. Strings are
// double-quoted with escapes so multi-line text stays on one line.
func renderSnippet(verb string, set *attr.Set) string {
	var parts []string
	for _, entry := range set.Entries() {
		if entry.Def.Hidden {
			continue
		}
		parts = append(parts, entry.Def.Name+": "+renderValue(entry.Def.Kind, entry.Value))
	}
	if len(parts) == 0 {
		return "- " + verb + ": {}\n"
	}
	return "- " + verb + ": {" + strings.Join(parts, ", ") + "}\n"
}

func renderValue(kind attr.Kind, value any) string {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case ir.QualifiedName:
		return strconv.Quote(v.Lean())
	case []attr.Column:
		items := make([]string, 0, len(v))
		for _, col := range v {
			items = append(items, "{name: "+strconv.Quote(col.Name)+", storage: "+strconv.Quote(col.Storage)+"}")
		}
		return "[" + strings.Join(items, ", ") + "]"
	case string:
		if kind == attr.Symbol && bareSymbol.MatchString(v) && v != "true" && v != "false" && v != "null" {
			return v
		}
		return strconv.Quote(v)
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}
