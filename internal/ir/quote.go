package ir

import (
	"strings"
	"unicode"

	"github.com/lib/pq"
)

// PostgreSQL reserved words that need quoting
// Based on PostgreSQL 17 documentation: https://www.postgresql.org/docs/current/sql-keywords-appendix.html
var reservedWords = map[string]bool{
	// A-C
	"all":               true,
	"analyse":           true,
	"analyze":           true,
	"and":               true,
	"any":               true,
	"array":             true,
	"as":                true,
	"asc":               true,
	"asymmetric":        true,
	"authorization":     true,
	"between":           true,
	"bigint":            true,
	"binary":            true,
	"boolean":           true,
	"both":              true,
	"case":              true,
	"cast":              true,
	"char":              true,
	"character":         true,
	"check":             true,
	"collate":           true,
	"collation":         true,
	"column":            true,
	"concurrently":      true,
	"constraint":        true,
	"create":            true,
	"cross":             true,
	"current_catalog":   true,
	"current_date":      true,
	"current_role":      true,
	"current_schema":    true,
	"current_time":      true,
	"current_timestamp": true,
	"current_user":      true,
	// D-F
	"default":    true,
	"deferrable": true,
	"delete":     true,
	"desc":       true,
	"distinct":   true,
	"do":         true,
	"else":       true,
	"end":        true,
	"except":     true,
	"exists":     true,
	"false":      true,
	"fetch":      true,
	"filter":     true,
	"for":        true,
	"foreign":    true,
	"freeze":     true,
	"from":       true,
	"full":       true,
	// G-L
	"grant":     true,
	"group":     true,
	"having":    true,
	"ilike":     true,
	"in":        true,
	"initially": true,
	"inner":     true,
	"insert":    true,
	"intersect": true,
	"into":      true,
	"is":        true,
	"isnull":    true,
	"join":      true,
	"lateral":   true,
	"leading":   true,
	"left":      true,
	"like":      true,
	"limit":     true,
	"localtime": true,
	// N-P
	"natural":  true,
	"not":      true,
	"notnull":  true,
	"null":     true,
	"of":       true,
	"offset":   true,
	"on":       true,
	"only":     true,
	"or":       true,
	"order":    true,
	"outer":    true,
	"overlaps": true,
	"placing":  true,
	"primary":  true,
	// R-S
	"references":   true,
	"returning":    true,
	"right":        true,
	"select":       true,
	"session_user": true,
	"similar":      true,
	"some":         true,
	"symmetric":    true,
	"system_user":  true,
	// T-W
	"table":       true,
	"tablesample": true,
	"then":        true,
	"to":          true,
	"trailing":    true,
	"true":        true,
	"union":       true,
	"unique":      true,
	"update":      true,
	"user":        true,
	"using":       true,
	"variadic":    true,
	"verbose":     true,
	"when":        true,
	"where":       true,
	"window":      true,
	"with":        true,
	"within":      true,
}

// NeedsQuoting checks if an identifier must be quoted to survive PostgreSQL's
// case folding and keyword rules.
func NeedsQuoting(identifier string) bool {
	if identifier == "" {
		return false
	}

	if reservedWords[strings.ToLower(identifier)] {
		return true
	}

	for i, r := range identifier {
		// PostgreSQL folds unquoted identifiers to lower case
		if unicode.IsUpper(r) {
			return true
		}
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return true
		}
	}

	return false
}

// QuoteIdentifier quotes an identifier only when PostgreSQL requires it.
func QuoteIdentifier(identifier string) string {
	if NeedsQuoting(identifier) {
		return pq.QuoteIdentifier(identifier)
	}
	return identifier
}

// QuoteLiteral renders a string constant, using the E'' form when it contains
// backslashes.
func QuoteLiteral(value string) string {
	return strings.TrimPrefix(pq.QuoteLiteral(value), " ")
}
