package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

type diffPayload struct {
	BaseID  string          `json:"base_id"`
	HeadID  string          `json:"head_id"`
	Summary diffSummary     `json:"summary"`
	New     []diffViolation `json:"new"`
	Removed []diffViolation `json:"removed"`
	Changed []diffChanged   `json:"changed"`
}

type diffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type diffViolation struct {
	RuleID     string `json:"rule_id"`
	ResourceID string `json:"resource_id"`
	Severity   string `json:"severity,omitempty"`
	Message    string `json:"message,omitempty"`
}

type diffChanged struct {
	Key     string        `json:"key"`
	Base    diffViolation `json:"base"`
	Head    diffViolation `json:"head"`
	Changed []string      `json:"fields_changed"`
}

// WriteDiffJSON compares two scan artifacts (loaded from files; no scan
// history is stored anywhere) and writes the new/removed/changed violation
// sets.
func WriteDiffJSON(outDir string, base, head *ir.Scan) (string, error) {
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	bm := map[string]ir.Violation{}
	hm := map[string]ir.Violation{}
	for _, v := range base.Violations {
		bm[keyOf(v)] = v
	}
	for _, v := range head.Violations {
		hm[keyOf(v)] = v
	}

	var added []diffViolation
	var removed []diffViolation
	var changed []diffChanged

	for k, hv := range hm {
		bv, ok := bm[k]
		if !ok {
			added = append(added, asDiff(hv))
			continue
		}
		var fields []string
		if norm(bv.Severity) != norm(hv.Severity) {
			fields = append(fields, "severity")
		}
		if strings.TrimSpace(bv.Message) != strings.TrimSpace(hv.Message) {
			fields = append(fields, "message")
		}
		if len(fields) > 0 {
			changed = append(changed, diffChanged{
				Key:     k,
				Base:    asDiff(bv),
				Head:    asDiff(hv),
				Changed: fields,
			})
		}
	}
	for k, bv := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, asDiff(bv))
		}
	}

	// stable output order
	byKey := func(vs []diffViolation) func(i, j int) bool {
		return func(i, j int) bool {
			if vs[i].ResourceID != vs[j].ResourceID {
				return vs[i].ResourceID < vs[j].ResourceID
			}
			return vs[i].RuleID < vs[j].RuleID
		}
	}
	sort.Slice(added, byKey(added))
	sort.Slice(removed, byKey(removed))
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	payload := diffPayload{
		BaseID: base.ID, HeadID: head.ID,
		Summary: diffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func keyOf(v ir.Violation) string {
	return norm(v.RuleID) + "|" + norm(v.ResourceID)
}

func asDiff(v ir.Violation) diffViolation {
	return diffViolation{
		RuleID:     v.RuleID,
		ResourceID: v.ResourceID,
		Severity:   v.Severity,
		Message:    v.Message,
	}
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
