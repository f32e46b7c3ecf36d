package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

// RenderAlerts renders violations as fixed alert blocks in canonical order:
// by resource ID, then rule ID, regardless of the order the evaluator
// produced them in. The boolean is the sole pass/fail signal surrounding
// tooling needs for exit-code mapping. Empty input renders an empty body.
func RenderAlerts(violations []ir.Violation) (string, bool) {
	if len(violations) == 0 {
		return "", false
	}
	sorted := make([]ir.Violation, len(violations))
	copy(sorted, violations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ResourceID != sorted[j].ResourceID {
			return sorted[i].ResourceID < sorted[j].ResourceID
		}
		return sorted[i].RuleID < sorted[j].RuleID
	})

	var b strings.Builder
	for i, v := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("--- SECURITY ALERT ---\n")
		fmt.Fprintf(&b, "Resource: %s\n", v.ResourceID)
		fmt.Fprintf(&b, "Code: %s\n", strings.ToUpper(v.RuleID))
		fmt.Fprintf(&b, "Message: %s\n", v.Message)
		b.WriteString("--------------------------\n")
	}
	return b.String(), true
}

// RenderSummary renders the closing scan banner.
func RenderSummary(scan *ir.Scan) string {
	line := strings.Repeat("=", 50)
	var b strings.Builder
	b.WriteString(line + "\n")
	b.WriteString("SCAN SUMMARY\n")
	fmt.Fprintf(&b, "Resources checked: %d\n", len(scan.Resources))
	fmt.Fprintf(&b, "Violations found: %d\n", len(scan.Violations))
	if scan.Context.WaiversApplied > 0 {
		fmt.Fprintf(&b, "Waived: %d\n", scan.Context.WaiversApplied)
	}
	fmt.Fprintf(&b, "Risk score: %.1f (high=%d medium=%d low=%d)\n",
		scan.Risk.Score, scan.Risk.High, scan.Risk.Medium, scan.Risk.Low)
	b.WriteString(line + "\n")
	return b.String()
}
