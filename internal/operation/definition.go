package operation

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/pgtrunk/pgtrunk/internal/attr"
)

// CheckDefinition reports why sql is not a single SELECT or VALUES query.
// It returns an empty string for a usable definition.
func CheckDefinition(sql string) string {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return fmt.Sprintf("is not valid SQL: %v", err)
	}
	stmts := result.GetStmts()
	if len(stmts) != 1 {
		return fmt.Sprintf("must contain exactly one statement, got %d", len(stmts))
	}
	if stmts[0].GetStmt().GetSelectStmt() == nil {
		return "must be a SELECT or VALUES query"
	}
	return ""
}

// definitions syntax-checks the named text attributes when they are set.
func definitions(names ...string) attr.Rule {
	return attr.RuleFunc(func(s *attr.Set) []string {
		var problems []string
		for _, name := range names {
			sql := s.GetString(name)
			if sql == "" {
				continue
			}
			if problem := CheckDefinition(sql); problem != "" {
				problems = append(problems, name+" "+problem)
			}
		}
		return problems
	})
}
