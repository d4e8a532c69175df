package apply

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/spf13/cobra"

	planCmd "github.com/pgtrunk/pgtrunk/cmd/plan"
	"github.com/pgtrunk/pgtrunk/cmd/util"
	"github.com/pgtrunk/pgtrunk/internal/catalog"
	"github.com/pgtrunk/pgtrunk/internal/fingerprint"
	"github.com/pgtrunk/pgtrunk/internal/ir"
	"github.com/pgtrunk/pgtrunk/internal/plan"
	"github.com/pgtrunk/pgtrunk/internal/registry"
)

var (
	connection       util.ConnectionFlags
	applyFile        string
	applyDefinitions string
	applyRollback    bool
	applyAutoApprove bool
	applyNoColor     bool
	applyDryRun      bool
	applyLockTimeout string
)

var ApplyCmd = &cobra.Command{
	Use:          "apply",
	Short:        "Apply a migration file to a database",
	Long:         "Load a migration file, show its plan and run every statement inside one transaction. With --rollback the inverse of the migration is applied instead.",
	RunE:         runApply,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithEnvVars(&connection),
}

func init() {
	connection.AddFlags(ApplyCmd)

	ApplyCmd.Flags().StringVar(&applyFile, "file", "", "Path to the migration file (required)")
	ApplyCmd.Flags().StringVar(&applyDefinitions, "definitions-dir", "db/views", "Directory of versioned definitions (<name>_v<NN>.sql)")
	ApplyCmd.Flags().BoolVar(&applyRollback, "rollback", false, "Apply the inverse of the migration")

	ApplyCmd.Flags().BoolVar(&applyAutoApprove, "auto-approve", false, "Apply changes without prompting for approval")
	ApplyCmd.Flags().BoolVar(&applyNoColor, "no-color", false, "Disable colored output")
	ApplyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show plan without applying changes")
	ApplyCmd.Flags().StringVar(&applyLockTimeout, "lock-timeout", "", "Maximum time to wait for database locks (e.g., 30s, 5m, 1h)")

	ApplyCmd.MarkFlagRequired("file")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	conn, err := util.Connect(ctx, connection.Config())
	if err != nil {
		return err
	}
	defer conn.Close()

	migrationPlan, err := planCmd.GeneratePlan(ctx, &planCmd.PlanConfig{
		File:           applyFile,
		DefinitionsDir: applyDefinitions,
		Rollback:       applyRollback,
	}, conn)
	if err != nil {
		return err
	}

	if len(migrationPlan.Steps) == 0 {
		fmt.Println("No changes to apply.")
		return nil
	}

	shown, err := liveFingerprint(ctx, conn)
	if err != nil {
		return err
	}
	fmt.Print(migrationPlan.Preview(!applyNoColor))

	if applyDryRun {
		return nil
	}

	if !applyAutoApprove {
		approved, err := confirm(os.Stdin)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Println("Apply cancelled.")
			return nil
		}
	}

	current, err := liveFingerprint(ctx, conn)
	if err != nil {
		return err
	}
	if err := fingerprint.Compare(shown, current); err != nil {
		return fmt.Errorf("schema changed while waiting for approval, run apply again: %w", err)
	}

	fmt.Println("\nApplying changes...")
	if err := Execute(ctx, conn, migrationPlan, applyLockTimeout); err != nil {
		return err
	}
	fmt.Println("Changes applied successfully!")
	return nil
}

// liveFingerprint fingerprints the views and materialized views of the database
func liveFingerprint(ctx context.Context, q catalog.Querier) (*fingerprint.SchemaFingerprint, error) {
	discoverer := &catalog.Discoverer{Registry: registry.Default(), Querier: q}
	ops, err := discoverer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current schema: %w", err)
	}
	return fingerprint.ComputeFingerprint(ops), nil
}

// confirm asks for approval on r
func confirm(r io.Reader) (bool, error) {
	fmt.Print("\nDo you want to apply these changes? (yes/no): ")
	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}

// Execute runs every statement of the plan inside one transaction. Any failure
// rolls the whole plan back.
func Execute(ctx context.Context, db *sql.DB, migrationPlan *plan.Plan, lockTimeout string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if lockTimeout != "" {
		stmt := "SET LOCAL lock_timeout = " + ir.QuoteLiteral(lockTimeout)
		if _, err := util.ExecContextWithLogging(ctx, tx, stmt, "lock timeout"); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	for i, step := range migrationPlan.Steps {
		// A step may render several statements
		statements, err := pg_query.SplitWithParser(step.SQL, true)
		if err != nil {
			return fmt.Errorf("step %d (%s): failed to split SQL statements: %w", i+1, step.Verb, err)
		}
		for _, stmt := range statements {
			if stmt == "" {
				continue
			}
			if _, err := util.ExecContextWithLogging(ctx, tx, stmt, step.Snippet); err != nil {
				return fmt.Errorf("step %d (%s): failed to apply statement '%s': %w", i+1, step.Verb, stmt, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
