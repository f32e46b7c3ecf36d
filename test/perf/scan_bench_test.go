package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PASTER-G/CI-guard/internal/loader"
	"github.com/PASTER-G/CI-guard/internal/reporting"
	"github.com/PASTER-G/CI-guard/internal/risk"
	"github.com/PASTER-G/CI-guard/internal/rules"
)

func benchInput(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		switch i % 4 {
		case 0:
			fmt.Fprintf(&b, `{"id": "sg_ssh_%d", "type": "network_rule", "port": 22, "cidr": "0.0.0.0/0", "protocol": "tcp"}`+"\n", i)
		case 1:
			fmt.Fprintf(&b, `{"id": "sg_web_%d", "type": "network_rule", "port": 443, "cidr": "0.0.0.0/0", "protocol": "tcp"}`+"\n", i)
		case 2:
			fmt.Fprintf(&b, `{"id": "disk_plain_%d", "type": "storage", "encrypted": false}`+"\n", i)
		default:
			fmt.Fprintf(&b, `{"id": "disk_enc_%d", "type": "storage", "encrypted": true}`+"\n", i)
		}
	}
	return b.String()
}

func benchScan(b *testing.B, n int) {
	dir := b.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.ndjson"), []byte(benchInput(n)), 0o644); err != nil {
		b.Fatal(err)
	}
	cat := rules.Builtin(rules.Options{SeverityThreshold: "LOW"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scan, _, err := loader.Load(dir)
		if err != nil {
			b.Fatal(err)
		}
		scan.Violations = rules.Evaluate(scan.Resources, cat)
		scan.Risk = risk.Summarize(scan.Violations)
		text, _ := reporting.RenderAlerts(scan.Violations)
		if len(scan.Resources) != n || text == "" {
			b.Fatal("unexpected scan result")
		}
	}
}

func BenchmarkScan_Small(b *testing.B)  { benchScan(b, 100) }
func BenchmarkScan_Medium(b *testing.B) { benchScan(b, 5000) }

func BenchmarkEvaluateOnly(b *testing.B) {
	dir := b.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.ndjson"), []byte(benchInput(5000)), 0o644); err != nil {
		b.Fatal(err)
	}
	scan, _, err := loader.Load(dir)
	if err != nil {
		b.Fatal(err)
	}
	cat := rules.Builtin(rules.Options{SeverityThreshold: "LOW"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if vs := rules.Evaluate(scan.Resources, cat); len(vs) == 0 {
			b.Fatal("expected violations")
		}
	}
}
