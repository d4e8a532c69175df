package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConnectionFlags binds the connection flags shared by every command
type ConnectionFlags struct {
	Host            string
	Port            int
	DB              string
	User            string
	Password        string
	ApplicationName string
}

// AddFlags registers the connection flags on cmd
func (f *ConnectionFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Host, "host", "localhost", "Database server host (env: PGHOST)")
	cmd.Flags().IntVar(&f.Port, "port", 5432, "Database server port (env: PGPORT)")
	cmd.Flags().StringVar(&f.DB, "db", "", "Database name (env: PGDATABASE)")
	cmd.Flags().StringVar(&f.User, "user", "", "Database user name (env: PGUSER)")
	cmd.Flags().StringVar(&f.Password, "password", "", "Database password (env: PGPASSWORD)")
	cmd.Flags().StringVar(&f.ApplicationName, "application-name", "pgtrunk", "Application name for database connection (env: PGAPPNAME)")
}

// ApplyEnv fills every flag that was not set explicitly from its environment
// variable
func (f *ConnectionFlags) ApplyEnv(cmd *cobra.Command) {
	if value := GetEnvWithDefault("PGHOST", ""); value != "" && !cmd.Flags().Changed("host") {
		f.Host = value
	}
	if value := GetEnvIntWithDefault("PGPORT", 0); value != 0 && !cmd.Flags().Changed("port") {
		f.Port = value
	}
	if value := GetEnvWithDefault("PGDATABASE", ""); value != "" && !cmd.Flags().Changed("db") {
		f.DB = value
	}
	if value := GetEnvWithDefault("PGUSER", ""); value != "" && !cmd.Flags().Changed("user") {
		f.User = value
	}
	if value := GetEnvWithDefault("PGPASSWORD", ""); value != "" && !cmd.Flags().Changed("password") {
		f.Password = value
	}
	if value := GetEnvWithDefault("PGAPPNAME", ""); value != "" && !cmd.Flags().Changed("application-name") {
		f.ApplicationName = value
	}
}

// Given reports whether enough connection parameters are known to connect
func (f *ConnectionFlags) Given() bool {
	return f.DB != "" && f.User != ""
}

// Validate reports missing required connection parameters
func (f *ConnectionFlags) Validate() error {
	if f.DB == "" {
		return fmt.Errorf("database name is required (use --db flag or PGDATABASE environment variable)")
	}
	if f.User == "" {
		return fmt.Errorf("database user is required (use --user flag or PGUSER environment variable)")
	}
	return nil
}

// Config returns the connection configuration
func (f *ConnectionFlags) Config() *ConnectionConfig {
	return &ConnectionConfig{
		Host:            f.Host,
		Port:            f.Port,
		Database:        f.DB,
		User:            f.User,
		Password:        f.Password,
		SSLMode:         GetEnvWithDefault("PGSSLMODE", "prefer"),
		ApplicationName: f.ApplicationName,
	}
}

// PreRunEWithEnvVars creates a PreRunE function that applies environment
// variables and requires the database and user
func PreRunEWithEnvVars(flags *ConnectionFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		flags.ApplyEnv(cmd)
		return flags.Validate()
	}
}
