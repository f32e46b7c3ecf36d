package rules

import (
	"strings"

	"github.com/PASTER-G/CI-guard/internal/ir"
	"github.com/PASTER-G/CI-guard/internal/storage"
)

// ApplyWaivers filters out violations that match any of the given (already
// active) waivers. Returns (kept, waivedCount).
func ApplyWaivers(in []ir.Violation, waivers []storage.Waiver) ([]ir.Violation, int) {
	if len(waivers) == 0 || len(in) == 0 {
		return in, 0
	}
	var out []ir.Violation
	waived := 0
nextViolation:
	for _, v := range in {
		for _, w := range waivers {
			if !eqCI(v.RuleID, w.RuleID) {
				continue
			}
			if w.ResourceID != "" && !eqCI(v.ResourceID, w.ResourceID) {
				continue
			}
			if w.PatternSub != "" {
				ps := strings.ToUpper(w.PatternSub)
				if !strings.Contains(strings.ToUpper(v.Message), ps) {
					continue
				}
			}
			waived++
			continue nextViolation
		}
		out = append(out, v)
	}
	return out, waived
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
