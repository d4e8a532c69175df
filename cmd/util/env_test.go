package util

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("TEST_STRING", "test-value")
	if got := GetEnvWithDefault("TEST_STRING", "default"); got != "test-value" {
		t.Errorf("Expected GetEnvWithDefault to return 'test-value', got '%s'", got)
	}

	if got := GetEnvWithDefault("PGTRUNK_MISSING_VAR", "default"); got != "default" {
		t.Errorf("Expected GetEnvWithDefault to return 'default', got '%s'", got)
	}

	t.Setenv("EMPTY_VAR", "")
	if got := GetEnvWithDefault("EMPTY_VAR", "default"); got != "default" {
		t.Errorf("Expected GetEnvWithDefault to return 'default' for empty var, got '%s'", got)
	}
}

func TestGetEnvIntWithDefault(t *testing.T) {
	t.Setenv("TEST_INT", "12345")
	if got := GetEnvIntWithDefault("TEST_INT", 0); got != 12345 {
		t.Errorf("Expected GetEnvIntWithDefault to return 12345, got %d", got)
	}

	t.Setenv("TEST_INVALID_INT", "not-a-number")
	if got := GetEnvIntWithDefault("TEST_INVALID_INT", 999); got != 999 {
		t.Errorf("Expected GetEnvIntWithDefault to return default 999, got %d", got)
	}

	if got := GetEnvIntWithDefault("PGTRUNK_MISSING_INT_VAR", 777); got != 777 {
		t.Errorf("Expected GetEnvIntWithDefault to return default 777, got %d", got)
	}
}

func newFlagCommand(flags *ConnectionFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "test",
		PreRunE: PreRunEWithEnvVars(flags),
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	flags.AddFlags(cmd)
	return cmd
}

func TestPreRunEWithEnvVars(t *testing.T) {
	t.Setenv("PGDATABASE", "test-db")
	t.Setenv("PGUSER", "test-user")
	t.Setenv("PGHOST", "test-host")
	t.Setenv("PGPORT", "1234")
	t.Setenv("PGAPPNAME", "test-app")
	t.Setenv("PGPASSWORD", "secret")

	var flags ConnectionFlags
	cmd := newFlagCommand(&flags)
	cmd.SetArgs([]string{"--user", "flag-user"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	want := ConnectionFlags{
		Host:            "test-host",
		Port:            1234,
		DB:              "test-db",
		User:            "flag-user",
		Password:        "secret",
		ApplicationName: "test-app",
	}
	if flags != want {
		t.Errorf("flags = %+v, want %+v", flags, want)
	}
}

func TestPreRunEWithEnvVarsRequiresDatabase(t *testing.T) {
	t.Setenv("PGDATABASE", "")
	t.Setenv("PGUSER", "")

	var flags ConnectionFlags
	cmd := newFlagCommand(&flags)
	cmd.SetArgs([]string{"--user", "u"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil {
		t.Error("expected a missing database error")
	}
	if flags.Given() {
		t.Error("flags without a database should not count as given")
	}
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(&ConnectionConfig{
		Host:            "localhost",
		Port:            5432,
		Database:        "app",
		User:            "admin",
		Password:        "it's secret",
		SSLMode:         "disable",
		ApplicationName: "pgtrunk",
	})
	want := `host=localhost port=5432 dbname=app user=admin password='it\'s secret' sslmode=disable application_name=pgtrunk`
	if dsn != want {
		t.Errorf("buildDSN() = %s, want %s", dsn, want)
	}
}

func TestParseServerVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "17.5", want: 170005},
		{input: "16", want: 160000},
		{input: "PostgreSQL 15.10", want: 150010},
		{input: "9.6.24", want: 90624},
		{input: "170002", want: 170002},
		{input: "", wantErr: true},
		{input: "17.x", wantErr: true},
		{input: "9", wantErr: true},
		{input: "17.1.2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseServerVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseServerVersion(%q) should fail, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseServerVersion(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseServerVersion(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
