// Package plan turns an ordered list of operations into an executable
// migration plan, forward or rollback.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pgtrunk/pgtrunk/internal/color"
	"github.com/pgtrunk/pgtrunk/internal/operation"
	"github.com/pgtrunk/pgtrunk/internal/version"
)

// Plan actions
const (
	ActionAdd     = "add"
	ActionChange  = "change"
	ActionDestroy = "destroy"
)

// Plan represents the statements of one migration run
type Plan struct {
	Steps []Step `json:"steps"`

	// ServerVersion is the server_version_num the SQL was rendered for; 0 when
	// unknown.
	ServerVersion int `json:"server_version"`

	// Rollback is set for plans built from inverses
	Rollback bool `json:"rollback"`

	CreatedAt time.Time `json:"created_at"`
}

// Step is one operation of the plan with its rendered SQL
type Step struct {
	Verb    string `json:"verb"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Action  string `json:"action"`
	Snippet string `json:"snippet"`
	SQL     string `json:"sql"`
}

// PlanJSON represents the structured JSON output format
type PlanJSON struct {
	Version        string    `json:"version"`
	PgtrunkVersion string    `json:"pgtrunk_version"`
	CreatedAt      time.Time `json:"created_at"`
	ServerVersion  int       `json:"server_version,omitempty"`
	Rollback       bool      `json:"rollback"`
	Summary        Summary   `json:"summary"`
	Steps          []Step    `json:"steps"`
}

// Summary provides counts of steps by action
type Summary struct {
	Add     int                    `json:"add"`
	Change  int                    `json:"change"`
	Destroy int                    `json:"destroy"`
	Total   int                    `json:"total"`
	ByKind  map[string]KindSummary `json:"by_kind"`
}

// KindSummary provides counts for a specific object kind
type KindSummary struct {
	Add     int `json:"add"`
	Change  int `json:"change"`
	Destroy int `json:"destroy"`
}

// New creates a forward plan running ops in order
func New(ops []operation.Operation, serverVersion int) *Plan {
	plan := &Plan{
		Steps:         make([]Step, 0, len(ops)),
		ServerVersion: serverVersion,
		CreatedAt:     time.Now(),
	}
	for _, op := range ops {
		plan.Steps = append(plan.Steps, newStep(op, serverVersion))
	}
	return plan
}

// NewRollback creates a plan undoing ops: the inverses in reverse order.
// Operations with nothing to undo are skipped; the first irreversible
// operation aborts with its step number (counted from 1 in ops).
func NewRollback(ops []operation.Operation, serverVersion int) (*Plan, error) {
	plan := &Plan{
		Steps:         make([]Step, 0, len(ops)),
		ServerVersion: serverVersion,
		Rollback:      true,
		CreatedAt:     time.Now(),
	}
	for i := len(ops) - 1; i >= 0; i-- {
		inverse, err := ops[i].Invert()
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, ops[i].Verb(), err)
		}
		if inverse == nil {
			continue
		}
		plan.Steps = append(plan.Steps, newStep(inverse, serverVersion))
	}
	return plan, nil
}

func newStep(op operation.Operation, serverVersion int) Step {
	return Step{
		Verb:    op.Verb(),
		Kind:    op.Kind(),
		Name:    op.Name().Lean(),
		Action:  action(op.Verb()),
		Snippet: strings.TrimSuffix(op.Snippet(), "\n"),
		SQL:     op.ToSQL(serverVersion),
	}
}

func action(verb string) string {
	switch {
	case strings.HasPrefix(verb, "create_"):
		return ActionAdd
	case strings.HasPrefix(verb, "drop_"):
		return ActionDestroy
	default:
		return ActionChange
	}
}

// SQL returns the script of the plan, each step preceded by its snippet as a
// comment
func (p *Plan) SQL() string {
	var b strings.Builder
	for i, step := range p.Steps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("-- " + step.Snippet + "\n")
		b.WriteString(step.SQL + "\n")
	}
	return b.String()
}

// Statements returns the SQL of every step in order
func (p *Plan) Statements() []string {
	stmts := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		stmts = append(stmts, step.SQL)
	}
	return stmts
}

// Summary counts the steps by action and kind
func (p *Plan) Summary() Summary {
	summary := Summary{ByKind: make(map[string]KindSummary)}
	for _, step := range p.Steps {
		kind := summary.ByKind[step.Kind]
		switch step.Action {
		case ActionAdd:
			summary.Add++
			kind.Add++
		case ActionDestroy:
			summary.Destroy++
			kind.Destroy++
		default:
			summary.Change++
			kind.Change++
		}
		summary.ByKind[step.Kind] = kind
	}
	summary.Total = len(p.Steps)
	return summary
}

// Preview returns a human-readable summary of the plan with color support
func (p *Plan) Preview(enableColor bool) string {
	c := color.New(enableColor)
	summary := p.Summary()

	if summary.Total == 0 {
		return "No changes detected.\n"
	}

	var b strings.Builder
	b.WriteString(c.FormatPlanHeader(summary.Add, summary.Change, summary.Destroy) + "\n\n")

	b.WriteString(c.Bold("Summary by kind:") + "\n")
	for _, kind := range p.kinds() {
		counts := summary.ByKind[kind]
		b.WriteString(c.FormatSummaryLine(kind, counts.Add, counts.Change, counts.Destroy) + "\n")
	}
	b.WriteString("\n")

	title := "Steps:"
	if p.Rollback {
		title = "Rollback steps:"
	}
	b.WriteString(c.Bold(title) + "\n")
	for _, step := range p.Steps {
		fmt.Fprintf(&b, "  %s %s %s\n", c.PlanSymbol(step.Action), c.Cyan(step.Verb), step.Name)
	}
	b.WriteString("\n")

	b.WriteString(c.Bold("DDL to be executed:") + "\n")
	b.WriteString(strings.Repeat("-", 50) + "\n\n")
	b.WriteString(p.SQL())
	return b.String()
}

// kinds returns the kinds of the steps in order of first appearance
func (p *Plan) kinds() []string {
	var kinds []string
	seen := make(map[string]bool)
	for _, step := range p.Steps {
		if !seen[step.Kind] {
			seen[step.Kind] = true
			kinds = append(kinds, step.Kind)
		}
	}
	return kinds
}

// ToJSON returns the plan as structured JSON
func (p *Plan) ToJSON() (string, error) {
	planJSON := &PlanJSON{
		Version:        version.PlanFormat(),
		PgtrunkVersion: version.App(),
		CreatedAt:      p.CreatedAt.Truncate(time.Second),
		ServerVersion:  p.ServerVersion,
		Rollback:       p.Rollback,
		Summary:        p.Summary(),
		Steps:          p.Steps,
	}

	data, err := json.MarshalIndent(planJSON, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to JSON: %w", err)
	}
	return string(data), nil
}
