package plan

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgtrunk/pgtrunk/cmd/util"
	"github.com/pgtrunk/pgtrunk/internal/catalog"
	"github.com/pgtrunk/pgtrunk/internal/logger"
	"github.com/pgtrunk/pgtrunk/internal/migration"
	"github.com/pgtrunk/pgtrunk/internal/plan"
	"github.com/pgtrunk/pgtrunk/internal/registry"
)

var (
	connection        util.ConnectionFlags
	planFile          string
	planDefinitions   string
	planRollback      bool
	planServerVersion string
	outputHuman       string
	outputJSON        string
	outputSQL         string
	planNoColor       bool
)

var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate the SQL plan of a migration file",
	Long: `Load a migration file and print the statements it runs, or with --rollback the statements undoing it.

SQL is rendered for the server version given by --server-version. Without it, the version is read
from the database when connection parameters are available, and the latest server is assumed otherwise.`,
	RunE:         runPlan,
	SilenceUsage: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		connection.ApplyEnv(cmd)
		return nil
	},
}

func init() {
	connection.AddFlags(PlanCmd)

	PlanCmd.Flags().StringVar(&planFile, "file", "", "Path to the migration file (required)")
	PlanCmd.Flags().StringVar(&planDefinitions, "definitions-dir", "db/views", "Directory of versioned definitions (<name>_v<NN>.sql)")
	PlanCmd.Flags().BoolVar(&planRollback, "rollback", false, "Plan the inverse of the migration")
	PlanCmd.Flags().StringVar(&planServerVersion, "server-version", "", "Target server version, e.g. 17.5 (default: detected or latest)")

	PlanCmd.Flags().StringVar(&outputHuman, "output-human", "", "Output human-readable format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputJSON, "output-json", "", "Output JSON format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputSQL, "output-sql", "", "Output SQL format to stdout or file path")
	PlanCmd.Flags().BoolVar(&planNoColor, "no-color", false, "Disable colored output")

	PlanCmd.MarkFlagRequired("file")
}

// PlanConfig holds the inputs of plan generation
type PlanConfig struct {
	File           string
	DefinitionsDir string
	Rollback       bool
	// ServerVersion overrides the version read from the database
	ServerVersion string
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outputs, err := determineOutputs()
	if err != nil {
		return err
	}

	var db *sql.DB
	if planServerVersion == "" && connection.Given() {
		db, err = util.Connect(ctx, connection.Config())
		if err != nil {
			return err
		}
		defer db.Close()
	}

	migrationPlan, err := GeneratePlan(ctx, &PlanConfig{
		File:           planFile,
		DefinitionsDir: planDefinitions,
		Rollback:       planRollback,
		ServerVersion:  planServerVersion,
	}, db)
	if err != nil {
		return err
	}

	for _, output := range outputs {
		if err := processOutput(migrationPlan, output); err != nil {
			return err
		}
	}
	return nil
}

// GeneratePlan loads the migration file and builds its forward or rollback
// plan. db, when not nil, supplies the server version.
func GeneratePlan(ctx context.Context, config *PlanConfig, db *sql.DB) (*plan.Plan, error) {
	serverVersion, err := resolveServerVersion(ctx, config.ServerVersion, db)
	if err != nil {
		return nil, err
	}

	loader := &migration.Loader{Registry: registry.Default(), DefinitionsDir: config.DefinitionsDir}
	ops, err := loader.Load(config.File)
	if err != nil {
		return nil, err
	}
	logger.Get().Debug("Loaded migration", "file", config.File, "steps", len(ops), "server_version", serverVersion)

	if config.Rollback {
		return plan.NewRollback(ops, serverVersion)
	}
	return plan.New(ops, serverVersion), nil
}

func resolveServerVersion(ctx context.Context, flag string, db *sql.DB) (int, error) {
	if flag != "" {
		return util.ParseServerVersion(flag)
	}
	if db == nil {
		return 0, nil
	}
	return catalog.ServerVersion(ctx, db)
}

// outputSpec represents a single output specification
type outputSpec struct {
	format string // "human", "json", or "sql"
	target string // "stdout" or file path
}

// determineOutputs parses the output flags and returns the list of outputs to generate
func determineOutputs() ([]outputSpec, error) {
	var outputs []outputSpec
	stdoutCount := 0

	for _, candidate := range []outputSpec{
		{format: "human", target: outputHuman},
		{format: "json", target: outputJSON},
		{format: "sql", target: outputSQL},
	} {
		if candidate.target == "" {
			continue
		}
		if candidate.target == "stdout" {
			stdoutCount++
		}
		outputs = append(outputs, candidate)
	}

	if stdoutCount > 1 {
		return nil, fmt.Errorf("only one output format can use stdout")
	}

	// Default behavior: if no outputs specified, output human to stdout
	if len(outputs) == 0 {
		outputs = append(outputs, outputSpec{format: "human", target: "stdout"})
	}
	return outputs, nil
}

// processOutput writes the plan in the specified format to the target destination
func processOutput(migrationPlan *plan.Plan, output outputSpec) error {
	var content string
	var err error

	switch output.format {
	case "human":
		// Color only on stdout, unless explicitly disabled
		content = migrationPlan.Preview(output.target == "stdout" && !planNoColor)
	case "json":
		content, err = migrationPlan.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to generate JSON output: %w", err)
		}
		content += "\n"
	case "sql":
		content = migrationPlan.SQL()
	default:
		return fmt.Errorf("unknown output format: %s", output.format)
	}

	if output.target == "stdout" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(output.target, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s output to %s: %w", output.format, output.target, err)
	}
	return nil
}
