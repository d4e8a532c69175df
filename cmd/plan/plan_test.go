package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pgtrunk/pgtrunk/internal/operation"
)

func TestPlanCommand(t *testing.T) {
	if PlanCmd.Use != "plan" {
		t.Errorf("Expected Use to be 'plan', got '%s'", PlanCmd.Use)
	}

	flags := PlanCmd.Flags()
	for _, name := range []string{"host", "port", "db", "user", "password", "file", "rollback", "server-version", "definitions-dir", "output-json"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected --%s flag to be defined", name)
		}
	}
	if def := flags.Lookup("host").DefValue; def != "localhost" {
		t.Errorf("Expected default host to be 'localhost', got '%s'", def)
	}
}

func writeMigration(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "migration.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGeneratePlan(t *testing.T) {
	path := writeMigration(t, `
- create_view: {name: public.v, sql_definition: "SELECT 1", security_invoker: true}
- rename_view: {name: public.v, to: w}
`)

	forward, err := GeneratePlan(context.Background(), &PlanConfig{File: path, ServerVersion: "14.11"}, nil)
	if err != nil {
		t.Fatalf("GeneratePlan() failed: %v", err)
	}
	if forward.ServerVersion != 140011 {
		t.Errorf("server version = %d, want 140011", forward.ServerVersion)
	}
	if strings.Contains(forward.SQL(), "security_invoker") {
		t.Errorf("security_invoker is not supported before 15:\n%s", forward.SQL())
	}

	rollback, err := GeneratePlan(context.Background(), &PlanConfig{File: path, Rollback: true}, nil)
	if err != nil {
		t.Fatalf("GeneratePlan() failed: %v", err)
	}
	want := []string{`ALTER VIEW "public"."w" RENAME TO "v";`, `DROP VIEW "public"."v";`}
	got := rollback.Statements()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("rollback statements = %q, want %q", got, want)
	}
}

func TestGeneratePlanErrors(t *testing.T) {
	irreversible := writeMigration(t, "- drop_view: {name: public.v, if_exists: true}\n")
	_, err := GeneratePlan(context.Background(), &PlanConfig{File: irreversible, Rollback: true}, nil)
	if !errors.Is(err, operation.ErrIrreversible) {
		t.Errorf("expected ErrIrreversible, got %v", err)
	}

	if _, err := GeneratePlan(context.Background(), &PlanConfig{File: irreversible, ServerVersion: "latest"}, nil); err == nil {
		t.Error("expected an invalid server version error")
	}

	if _, err := GeneratePlan(context.Background(), &PlanConfig{File: filepath.Join(t.TempDir(), "missing.yaml")}, nil); err == nil {
		t.Error("expected a missing file error")
	}
}

func TestDetermineOutputs(t *testing.T) {
	defer func() { outputHuman, outputJSON, outputSQL = "", "", "" }()

	outputs, err := determineOutputs()
	if err != nil || len(outputs) != 1 || outputs[0].format != "human" {
		t.Errorf("default outputs = %v, %v", outputs, err)
	}

	outputJSON, outputSQL = "stdout", "stdout"
	if _, err := determineOutputs(); err == nil {
		t.Error("expected an error for two stdout outputs")
	}

	outputSQL = filepath.Join(t.TempDir(), "plan.sql")
	outputs, err = determineOutputs()
	if err != nil || len(outputs) != 2 {
		t.Errorf("outputs = %v, %v", outputs, err)
	}
}
