package dump

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgtrunk/pgtrunk/cmd/util"
	"github.com/pgtrunk/pgtrunk/internal/catalog"
	"github.com/pgtrunk/pgtrunk/internal/dump"
	"github.com/pgtrunk/pgtrunk/internal/ignore"
	"github.com/pgtrunk/pgtrunk/internal/registry"
)

var (
	connection  util.ConnectionFlags
	schemas     []string
	file        string
	concurrency int
)

var DumpCmd = &cobra.Command{
	Use:          "dump",
	Short:        "Dump database views and materialized views as a migration file",
	Long:         "Discover the views and materialized views of a database and print them as a migration file in dependency order. Objects matching the patterns of .pgtrunkignore are skipped.",
	RunE:         runDump,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithEnvVars(&connection),
}

func init() {
	connection.AddFlags(DumpCmd)
	DumpCmd.Flags().StringSliceVar(&schemas, "schema", nil, "Schemas to dump (default: all user schemas)")
	DumpCmd.Flags().StringVar(&file, "file", "", "Output file path (default: stdout)")
	DumpCmd.Flags().IntVar(&concurrency, "concurrency", 2, "Catalog queries run at once")
}

// Config holds the inputs of a dump
type Config struct {
	Schemas     []string
	Ignore      *ignore.Config
	Concurrency int
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ignoreConfig, err := ignore.LoadIgnoreFile()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", ignore.IgnoreFileName, err)
	}

	conn, err := util.Connect(ctx, connection.Config())
	if err != nil {
		return err
	}
	defer conn.Close()

	output, err := Dump(ctx, conn, &Config{Schemas: schemas, Ignore: ignoreConfig, Concurrency: concurrency})
	if err != nil {
		return err
	}

	if file == "" {
		fmt.Print(output)
		return nil
	}
	if err := os.WriteFile(file, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write dump to %s: %w", file, err)
	}
	return nil
}

// Dump discovers the schema behind q and renders it as a migration file
func Dump(ctx context.Context, q catalog.Querier, config *Config) (string, error) {
	serverVersion, err := catalog.ServerVersion(ctx, q)
	if err != nil {
		return "", err
	}

	discoverer := &catalog.Discoverer{
		Registry:    registry.Default(),
		Querier:     q,
		Ignore:      config.Ignore,
		Schemas:     config.Schemas,
		Concurrency: config.Concurrency,
	}
	ops, err := discoverer.Discover(ctx)
	if err != nil {
		return "", err
	}
	return dump.NewFormatter(serverVersion).Format(ops), nil
}
