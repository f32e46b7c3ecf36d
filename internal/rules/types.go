package rules

import "github.com/PASTER-G/CI-guard/internal/ir"

// Rule is a pure predicate over one resource record plus metadata. Check
// must be side-effect-free and deterministic; Message renders the alert
// text from the record's own fields. Kind guards which record variant the
// rule applies to; non-matching records are skipped, never an error.
type Rule struct {
	ID       string
	Summary  string
	Kind     ir.Kind
	Severity string // LOW|MEDIUM|HIGH
	Check    func(r *ir.Resource) bool
	Message  func(r *ir.Resource) string
}
