// Package dump renders a discovered schema as a migration document.
package dump

import (
	"fmt"
	"strings"

	"github.com/pgtrunk/pgtrunk/internal/operation"
	"github.com/pgtrunk/pgtrunk/internal/version"
)

// Formatter renders ordered operations as a loadable migration file
type Formatter struct {
	serverVersion int
}

// NewFormatter creates a Formatter for a server_version_num; 0 means unknown
func NewFormatter(serverVersion int) *Formatter {
	return &Formatter{serverVersion: serverVersion}
}

// Format returns the header followed by one snippet per operation. The header
// is made of YAML comments, so the output loads back as a migration.
func (f *Formatter) Format(ops []operation.Operation) string {
	var output strings.Builder
	output.WriteString(f.header())
	if len(ops) == 0 {
		return output.String()
	}

	output.WriteString("\n")
	for _, op := range ops {
		output.WriteString(op.Snippet())
	}
	return output.String()
}

func (f *Formatter) header() string {
	var header strings.Builder
	header.WriteString("#\n")
	header.WriteString("# pgtrunk schema dump\n")
	header.WriteString("#\n")
	if f.serverVersion > 0 {
		fmt.Fprintf(&header, "# Dumped from database version %s\n", FormatServerVersion(f.serverVersion))
	}
	fmt.Fprintf(&header, "# Dumped by pgtrunk version %s\n", version.App())
	return header.String()
}

// FormatServerVersion turns server_version_num into the dotted form reported by
// the server: 170002 becomes "17.2", 90624 becomes "9.6.24".
func FormatServerVersion(num int) string {
	if num >= 100000 {
		return fmt.Sprintf("%d.%d", num/10000, num%10000)
	}
	return fmt.Sprintf("%d.%d.%d", num/10000, num/100%100, num%100)
}
