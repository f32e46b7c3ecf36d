// Package risk aggregates violations into a coarse scan-level score used by
// the summary banner and the HTML report.
package risk

import "github.com/PASTER-G/CI-guard/internal/ir"

// Severity weights for the aggregate score.
const (
	weightHigh   = 10.0
	weightMedium = 4.0
	weightLow    = 1.0
)

func Summarize(violations []ir.Violation) ir.RiskSummary {
	var s ir.RiskSummary
	for _, v := range violations {
		switch v.Severity {
		case ir.SeverityHigh:
			s.High++
			s.Score += weightHigh
		case ir.SeverityMedium:
			s.Medium++
			s.Score += weightMedium
		default:
			s.Low++
			s.Score += weightLow
		}
	}
	return s
}
