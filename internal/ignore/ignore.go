// Package ignore filters discovered objects by glob patterns read from the
// .pgtrunkignore file.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/pgtrunk/pgtrunk/internal/ir"
	"github.com/pgtrunk/pgtrunk/internal/operation"
)

// Config represents the configuration for ignoring database objects
type Config struct {
	MaterializedViews []string
	Views             []string
}

// ShouldIgnore checks if an object of kind should be ignored. Patterns are
// matched against both the qualified name ("schema.name") and the bare name.
func (c *Config) ShouldIgnore(kind string, name ir.QualifiedName) bool {
	if c == nil {
		return false
	}
	switch kind {
	case operation.KindMaterializedView:
		return shouldIgnore(name, c.MaterializedViews)
	case operation.KindView:
		return shouldIgnore(name, c.Views)
	default:
		return false
	}
}

// shouldIgnore supports wildcards (*) and negation (!).
// Negation patterns take precedence over inclusion patterns.
func shouldIgnore(name ir.QualifiedName, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	matched := false
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchName(pattern, name) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, pattern := range patterns {
		if !strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchName(pattern[1:], name) {
			return false
		}
	}
	return true
}

func matchName(pattern string, name ir.QualifiedName) bool {
	if matchPattern(pattern, name.Name) {
		return true
	}
	return name.Schema != "" && matchPattern(pattern, name.Schema+"."+name.Name)
}

// matchPattern matches a glob-style pattern against a string
func matchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		// Invalid patterns only match literally
		return pattern == name
	}
	return matched
}
