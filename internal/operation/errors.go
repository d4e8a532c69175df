package operation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIrreversible matches every *IrreversibleError.
var ErrIrreversible = errors.New("irreversible operation")

const defaultRemediation = "Write the rollback step explicitly, or provide the attributes the inverse needs."

// IrreversibleError reports that an operation cannot be inverted safely.
type IrreversibleError struct {
	// Snippet is the canonical snippet of the operation being inverted.
	Snippet string
	// Inverse is the snippet of the attempted inverse, empty when none was built.
	Inverse string
	// Problems holds the validation messages of the attempted inverse.
	Problems []string
	Reason   string
	// Remediation tells the user how to proceed.
	Remediation string
}

func (e *IrreversibleError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot invert %s: %s", strings.TrimSpace(e.Snippet), e.Reason)
	if e.Inverse != "" {
		fmt.Fprintf(&b, "\nattempted inverse: %s", strings.TrimSpace(e.Inverse))
	}
	for _, problem := range e.Problems {
		fmt.Fprintf(&b, "\n  - %s", problem)
	}
	if e.Remediation != "" {
		fmt.Fprintf(&b, "\n%s", e.Remediation)
	}
	return b.String()
}

func (e *IrreversibleError) Is(target error) bool {
	return target == ErrIrreversible
}

func refuse(op Operation, reason string) error {
	return &IrreversibleError{
		Snippet:     op.Snippet(),
		Reason:      reason,
		Remediation: defaultRemediation,
	}
}

func refuseIfExists(op Operation) error {
	if op.Attrs().GetBool("if_exists") {
		return refuse(op, "if_exists leaves the prior existence of the object unknown")
	}
	return nil
}

// checkedInverse returns inverse when it validates; otherwise the refusal
// carries the inverse snippet and its problems.
func checkedInverse(op, inverse Operation) (Operation, error) {
	problems := inverse.Validate()
	if len(problems) == 0 {
		return inverse, nil
	}
	return nil, &IrreversibleError{
		Snippet:     op.Snippet(),
		Inverse:     inverse.Snippet(),
		Problems:    problems,
		Reason:      "the inverse operation is invalid",
		Remediation: defaultRemediation,
	}
}

// buildInverse constructs the inverse with factory and validates it. Values
// come from an existing set, so construction failures are reported as refusals.
func buildInverse(op Operation, factory Factory, values map[string]any) (Operation, error) {
	if problems := op.Validate(); len(problems) > 0 {
		return nil, &IrreversibleError{
			Snippet:     op.Snippet(),
			Problems:    problems,
			Reason:      "the operation itself is invalid",
			Remediation: "Fix the operation before asking for its inverse.",
		}
	}
	inverse, err := factory(values)
	if err != nil {
		return nil, &IrreversibleError{
			Snippet:     op.Snippet(),
			Reason:      fmt.Sprintf("the inverse operation cannot be built: %v", err),
			Remediation: defaultRemediation,
		}
	}
	return checkedInverse(op, inverse)
}
