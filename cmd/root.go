package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgtrunk/pgtrunk/cmd/apply"
	"github.com/pgtrunk/pgtrunk/cmd/dump"
	"github.com/pgtrunk/pgtrunk/cmd/plan"
	"github.com/pgtrunk/pgtrunk/internal/logger"
	"github.com/pgtrunk/pgtrunk/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "pgtrunk",
	Short: "Reversible PostgreSQL view migrations",
	Long: fmt.Sprintf(`pgtrunk runs declarative, reversible migrations of PostgreSQL views and
materialized views, and dumps a live database in the same format.

Version: %s@%s %s %s

Commands:
  dump    Dump views and materialized views as a migration file
  plan    Show the SQL of a migration or of its rollback
  apply   Apply a migration or its rollback

Use "pgtrunk [command] --help" for more information about a command.`,
		version.App(), version.GitCommit, version.Platform(), version.BuildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(dump.DumpCmd)
	RootCmd.AddCommand(plan.PlanCmd)
	RootCmd.AddCommand(apply.ApplyCmd)
}

func setupLogger() {
	logger.Setup(os.Stderr, Debug)
}

// LoadEnvFile loads variables from a .env file. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
