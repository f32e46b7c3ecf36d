package api

import (
	"encoding/json"
	"net/http"

	"github.com/PASTER-G/CI-guard/internal/ir"
	"github.com/PASTER-G/CI-guard/internal/loader"
	"github.com/PASTER-G/CI-guard/internal/reporting"
	"github.com/PASTER-G/CI-guard/internal/risk"
	"github.com/PASTER-G/CI-guard/internal/rules"
)

type scanReq struct {
	Records []json.RawMessage `json:"records"`
}

type scanResp struct {
	Violations    []ir.Violation `json:"violations"`
	HasViolations bool           `json:"has_violations"`
	Report        string         `json:"report"`
	Risk          ir.RiskSummary `json:"risk"`
	Waived        int            `json:"waived,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// POST /api/v1/scan: evaluate submitted flat records against the catalog.
// Bad records are skipped with a warning, matching the CLI loader; active
// waivers are applied before reporting.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var in scanReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.err(w, http.StatusBadRequest, "invalid json")
		return
	}

	var diags loader.Diagnostics
	var resources []ir.Resource
	seen := map[string]bool{}
	for _, raw := range in.Records {
		res, err := loader.NormalizeRecord(raw)
		if err != nil {
			diags.Warnings = append(diags.Warnings, err.Error())
			continue
		}
		if seen[res.ID] {
			diags.Warnings = append(diags.Warnings, "duplicate resource id "+res.ID+" skipped")
			continue
		}
		seen[res.ID] = true
		resources = append(resources, res)
	}

	violations := rules.Evaluate(resources, s.Catalog)

	waived := 0
	if s.Store != nil {
		if ws, err := s.Store.ListWaivers(true); err == nil {
			violations, waived = rules.ApplyWaivers(violations, ws)
		}
	}

	text, has := reporting.RenderAlerts(violations)
	writeJSON(w, http.StatusOK, scanResp{
		Violations:    violations,
		HasViolations: has,
		Report:        text,
		Risk:          risk.Summarize(violations),
		Waived:        waived,
		Warnings:      diags.Warnings,
	})
}
