package ir

import (
	"fmt"
	"testing"
)

func TestNeedsQuoting(t *testing.T) {
	type testCase struct {
		name       string
		identifier string
		expected   bool
	}
	tests := []testCase{
		{"simple lowercase", "users", false},
		{"reserved word", "user", true},
		{"check keyword", "check", true},
		{"camelCase", "firstName", true},
		{"UPPERCASE", "USERS", true},
		{"with underscore", "user_name", false},
		{"starts with underscore", "_private", false},
		{"dollar inside", "price$", false},
		{"starts with number", "1table", true},
		{"contains dash", "user-table", true},
		{"contains dot", "a.b", true},
		{"empty string", "", false},
	}

	// every reserved word must be quoted
	for reservedWord := range reservedWords {
		tests = append(tests, testCase{
			name:       fmt.Sprintf("reserved word: %q", reservedWord),
			identifier: reservedWord,
			expected:   true,
		})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsQuoting(tt.identifier); got != tt.expected {
				t.Errorf("NeedsQuoting(%q) = %v; want %v", tt.identifier, got, tt.expected)
			}
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		identifier string
		expected   string
	}{
		{"users", "users"},
		{"user", `"user"`},
		{"MyApp", `"MyApp"`},
		{`say"hi`, `"say""hi"`},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			if got := QuoteIdentifier(tt.identifier); got != tt.expected {
				t.Errorf("QuoteIdentifier(%q) = %q; want %q", tt.identifier, got, tt.expected)
			}
		})
	}
}

func TestQuoteLiteral(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"plain", `'plain'`},
		{"it's", `'it''s'`},
		{`back\slash`, `E'back\\slash'`},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := QuoteLiteral(tt.value); got != tt.expected {
				t.Errorf("QuoteLiteral(%q) = %q; want %q", tt.value, got, tt.expected)
			}
		})
	}
}
