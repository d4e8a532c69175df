package attr

import (
	"fmt"
	"strings"

	"github.com/pgtrunk/pgtrunk/internal/ir"
)

// Rule checks a set and returns human-readable violations.
type Rule interface {
	Check(s *Set) []string
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(s *Set) []string

func (f RuleFunc) Check(s *Set) []string {
	return f(s)
}

// Validate runs every rule and collects all violations.
func Validate(s *Set, rules ...Rule) []string {
	var problems []string
	for _, rule := range rules {
		problems = append(problems, rule.Check(s)...)
	}
	return problems
}

// Blank reports whether the attribute is unset or holds an empty value.
// A false boolean counts as blank.
func (s *Set) Blank(name string) bool {
	switch v := s.Get(name).(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case ir.QualifiedName:
		return v.IsZero()
	case []Column:
		return len(v) == 0
	default:
		return false
	}
}

// Presence requires every attribute to be non-blank.
func Presence(names ...string) Rule {
	return RuleFunc(func(s *Set) []string {
		var problems []string
		for _, name := range names {
			if s.Blank(name) {
				problems = append(problems, fmt.Sprintf("%s can't be blank", name))
			}
		}
		return problems
	})
}

// Absence requires every attribute to be blank.
func Absence(names ...string) Rule {
	return RuleFunc(func(s *Set) []string {
		var problems []string
		for _, name := range names {
			if !s.Blank(name) {
				problems = append(problems, fmt.Sprintf("%s must be blank", name))
			}
		}
		return problems
	})
}

// Inclusion requires a present attribute to hold one of values.
func Inclusion(name string, values ...string) Rule {
	return RuleFunc(func(s *Set) []string {
		value := s.Get(name)
		if value == nil {
			return nil
		}
		current := fmt.Sprint(value)
		for _, allowed := range values {
			if current == allowed {
				return nil
			}
		}
		return []string{fmt.Sprintf("%s %q is not included in the list [%s]", name, current, strings.Join(values, ", "))}
	})
}

// InclusionEach requires every column storage to be one of values.
func InclusionEach(name string, values ...string) Rule {
	return RuleFunc(func(s *Set) []string {
		var problems []string
		for _, col := range s.GetColumns(name) {
			ok := false
			for _, allowed := range values {
				if col.Storage == allowed {
					ok = true
					break
				}
			}
			if !ok {
				problems = append(problems, fmt.Sprintf("%s: storage %q of column %s is not included in the list [%s]",
					name, col.Storage, col.Name, strings.Join(values, ", ")))
			}
		}
		return problems
	})
}

// Difference requires two attributes to differ. Qualified names are compared
// with MaybeEqual, so an unqualified name equals any schema-qualified one.
func Difference(name, other string) Rule {
	return RuleFunc(func(s *Set) []string {
		a, b := s.Get(name), s.Get(other)
		if a == nil || b == nil {
			return nil
		}
		qa, aIsName := a.(ir.QualifiedName)
		qb, bIsName := b.(ir.QualifiedName)
		same := false
		if aIsName && bIsName {
			same = qa.MaybeEqual(qb)
		} else {
			same = fmt.Sprint(a) == fmt.Sprint(b)
		}
		if same {
			return []string{fmt.Sprintf("%s must be different from the %s", name, other)}
		}
		return nil
	})
}

// AnyPresent requires at least one of the attributes to be non-blank.
func AnyPresent(names ...string) Rule {
	return RuleFunc(func(s *Set) []string {
		for _, name := range names {
			if !s.Blank(name) {
				return nil
			}
		}
		return []string{fmt.Sprintf("at least one of %s must be present", strings.Join(names, ", "))}
	})
}

// When applies rules only if cond holds.
func When(cond func(s *Set) bool, rules ...Rule) Rule {
	return RuleFunc(func(s *Set) []string {
		if !cond(s) {
			return nil
		}
		return Validate(s, rules...)
	})
}

// IsSet is a condition for When: the attribute is non-blank.
func IsSet(name string) func(s *Set) bool {
	return func(s *Set) bool {
		return !s.Blank(name)
	}
}
