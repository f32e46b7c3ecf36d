package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

func WriteHTML(scanID, outDir string, scan *ir.Scan) (string, error) {
	path := filepath.Join(outDir, scanID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Head + styles
	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(scanID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .sev-HIGH{color:#b00} .sev-MEDIUM{color:#b60}</style>")
	fmt.Fprint(f, "</head><body>")

	// Title + summary
	fmt.Fprintf(f, "<h1>CI-guard report – <span class='mono'>%s</span></h1>", html.EscapeString(scanID))
	fmt.Fprintf(f, "<p>Resources: %d &nbsp; Violations: %d</p>", len(scan.Resources), len(scan.Violations))
	fmt.Fprintf(f, "<p><b>Risk score</b>: %.1f &nbsp; high=%d medium=%d low=%d</p>",
		scan.Risk.Score, scan.Risk.High, scan.Risk.Medium, scan.Risk.Low)

	// Threshold/disabled/waiver banner
	fmt.Fprintf(f, "<p class='dim'>Severity threshold: %s", html.EscapeString(scan.Context.SeverityThreshold))
	if n := len(scan.Context.DisabledRules); n > 0 {
		fmt.Fprintf(f, " &nbsp; Disabled rules: %d", n)
	}
	if scan.Context.WaiversApplied > 0 {
		fmt.Fprintf(f, " &nbsp; Waived: %d", scan.Context.WaiversApplied)
	}
	fmt.Fprint(f, "</p>")

	// All violations in canonical order
	if len(scan.Violations) > 0 {
		vs := make([]ir.Violation, len(scan.Violations))
		copy(vs, scan.Violations)
		sort.Slice(vs, func(i, j int) bool {
			if vs[i].ResourceID != vs[j].ResourceID {
				return vs[i].ResourceID < vs[j].ResourceID
			}
			return vs[i].RuleID < vs[j].RuleID
		})
		fmt.Fprint(f, "<h2>Violations</h2><table><tr><th>Severity</th><th>Rule</th><th>Resource</th><th>Message</th></tr>")
		for _, v := range vs {
			fmt.Fprintf(f, "<tr><td class='sev-%s'>%s</td><td class='mono'>%s</td><td class='mono'>%s</td><td>%s</td></tr>",
				html.EscapeString(v.Severity),
				html.EscapeString(v.Severity),
				html.EscapeString(v.RuleID),
				html.EscapeString(v.ResourceID),
				html.EscapeString(v.Message),
			)
		}
		fmt.Fprint(f, "</table>")
	} else {
		fmt.Fprint(f, "<h2>Violations</h2><p class='dim'>No violations at or above the configured threshold.</p>")
	}

	// Scanned resources
	if len(scan.Resources) > 0 {
		fmt.Fprint(f, "<h2>Resources</h2><table><tr><th>ID</th><th>Kind</th><th>Detail</th></tr>")
		for _, r := range scan.Resources {
			detail := ""
			switch {
			case r.Network != nil:
				detail = fmt.Sprintf("%s/%d from %s", r.Network.Protocol, r.Network.Port, r.Network.CIDR)
			case r.Storage != nil:
				detail = fmt.Sprintf("encrypted=%v", r.Storage.Encrypted)
			}
			fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%s</td><td class='mono'>%s</td></tr>",
				html.EscapeString(r.ID),
				html.EscapeString(string(r.Kind)),
				html.EscapeString(detail),
			)
		}
		fmt.Fprint(f, "</table>")
	}

	fmt.Fprint(f, "</body></html>")
	return path, nil
}
