package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pgtrunk/pgtrunk/internal/attr"
	"github.com/pgtrunk/pgtrunk/internal/operation"
)

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	factory := func(values map[string]any) (operation.Operation, error) {
		return operation.NewDropView(values)
	}

	if err := r.Register("drop_view", factory); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := r.Register("drop_view", factory); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if _, err := r.Resolve("drop_view"); err != nil {
		t.Errorf("Resolve() failed: %v", err)
	}
	if _, err := r.Resolve("drop_table"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterKindRequiresVerb(t *testing.T) {
	r := New()
	probe := operation.Probe{Kind: "views", Verb: "create_view", Query: "SELECT 1"}
	if err := r.RegisterKind(probe); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unregistered verb, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	r := Default()

	var verbs []string
	for _, variant := range operation.Variants() {
		verbs = append(verbs, variant.Verb)
	}
	if diff := cmp.Diff(verbs, r.Verbs()); diff != "" {
		t.Errorf("Verbs() mismatch (-want +got):\n%s", diff)
	}

	var kinds []string
	for _, probe := range r.Kinds() {
		kinds = append(kinds, probe.Kind)
	}
	if diff := cmp.Diff([]string{operation.KindMaterializedView, operation.KindView}, kinds); diff != "" {
		t.Errorf("Kinds() mismatch (-want +got):\n%s", diff)
	}

	probe, err := r.Kind(operation.KindView)
	if err != nil {
		t.Fatalf("Kind() failed: %v", err)
	}
	if probe.Verb != operation.VerbCreateView {
		t.Errorf("views probe builds %s", probe.Verb)
	}
	if _, err := r.Kind("sequences"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	r := Default()

	op, err := r.Build("rename_view", map[string]any{"name": "public.a", "to": "b"})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if got := op.ToSQL(0); got != `ALTER VIEW "public"."a" RENAME TO "b";` {
		t.Errorf("unexpected SQL: %s", got)
	}

	_, err = r.Build("drop_view", map[string]any{"name": "v", "if_exists": "sometimes"})
	if !errors.Is(err, attr.ErrCoercion) {
		t.Errorf("expected coercion error, got %v", err)
	}

	if _, err := r.Build("explode_view", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
