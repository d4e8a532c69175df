package migration

import (
	"fmt"
	"path/filepath"

	"github.com/pgtrunk/pgtrunk/internal/attr"
	"github.com/pgtrunk/pgtrunk/internal/ir"
)

// DefinitionPath returns the file holding version of the definition of the
// object called name, e.g. dir/active_users_v02.sql.
func DefinitionPath(dir, name string, version any) (string, error) {
	qualified, err := ir.ParseQualifiedName(name)
	if err != nil {
		return "", err
	}
	n, err := attr.Int("version", version)
	if err != nil {
		return "", err
	}
	if n < 1 {
		return "", fmt.Errorf("version must be positive, got %d", n)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_v%02d.sql", qualified.Routine(), n)), nil
}
