package ignore

import (
	"os"

	"github.com/BurntSushi/toml"
)

const (
	// IgnoreFileName is the default name of the ignore file
	IgnoreFileName = ".pgtrunkignore"
)

// LoadIgnoreFile loads the .pgtrunkignore file from the current directory
// Returns nil if the file doesn't exist (ignore functionality is optional)
func LoadIgnoreFile() (*Config, error) {
	return LoadIgnoreFileFromPath(IgnoreFileName)
}

// TomlConfig represents the TOML structure of the .pgtrunkignore file
type TomlConfig struct {
	MaterializedViews PatternConfig `toml:"materialized_views,omitempty"`
	Views             PatternConfig `toml:"views,omitempty"`
}

// PatternConfig holds the patterns of one object kind
type PatternConfig struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// LoadIgnoreFileFromPath loads an ignore file from the specified path
// Returns nil if the file doesn't exist
func LoadIgnoreFileFromPath(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var tomlConfig TomlConfig
	if _, err := toml.DecodeFile(filePath, &tomlConfig); err != nil {
		return nil, err
	}

	return &Config{
		MaterializedViews: tomlConfig.MaterializedViews.Patterns,
		Views:             tomlConfig.Views.Patterns,
	}, nil
}
