package reporting

import (
	"strings"
	"testing"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

func TestRenderAlerts_Empty(t *testing.T) {
	text, has := RenderAlerts(nil)
	if text != "" || has {
		t.Fatalf("RenderAlerts(nil) = (%q, %v), want (\"\", false)", text, has)
	}
}

func TestRenderAlerts_CanonicalOrder(t *testing.T) {
	// Deliberately shuffled input: the reporter owns ordering, not the
	// evaluator.
	vs := []ir.Violation{
		{ResourceID: "zeta", RuleID: "unencrypted_storage", Severity: ir.SeverityMedium, Message: "m3"},
		{ResourceID: "alpha", RuleID: "unencrypted_storage", Severity: ir.SeverityMedium, Message: "m2"},
		{ResourceID: "alpha", RuleID: "open_sensitive_port", Severity: ir.SeverityHigh, Message: "m1"},
	}
	text, has := RenderAlerts(vs)
	if !has {
		t.Fatal("expected has_violations")
	}

	iAlphaOpen := strings.Index(text, "Resource: alpha\nCode: OPEN_SENSITIVE_PORT")
	iAlphaStore := strings.Index(text, "Resource: alpha\nCode: UNENCRYPTED_STORAGE")
	iZeta := strings.Index(text, "Resource: zeta\nCode: UNENCRYPTED_STORAGE")
	if iAlphaOpen == -1 || iAlphaStore == -1 || iZeta == -1 {
		t.Fatalf("missing blocks in output:\n%s", text)
	}
	if !(iAlphaOpen < iAlphaStore && iAlphaStore < iZeta) {
		t.Fatalf("blocks out of canonical order:\n%s", text)
	}

	if got := strings.Count(text, "--- SECURITY ALERT ---"); got != 3 {
		t.Fatalf("expected 3 alert blocks, got %d", got)
	}
}

func TestRenderAlerts_BlockShape(t *testing.T) {
	text, _ := RenderAlerts([]ir.Violation{
		{ResourceID: "rdp", RuleID: "open_sensitive_port", Severity: ir.SeverityHigh,
			Message: "Обнаружено небезопасное правило: порт 3389 открыт для всего интернета (0.0.0.0/0)"},
	})
	want := "--- SECURITY ALERT ---\n" +
		"Resource: rdp\n" +
		"Code: OPEN_SENSITIVE_PORT\n" +
		"Message: Обнаружено небезопасное правило: порт 3389 открыт для всего интернета (0.0.0.0/0)\n" +
		"--------------------------\n"
	if text != want {
		t.Fatalf("block mismatch:\ngot:\n%q\nwant:\n%q", text, want)
	}
}

func TestRenderAlerts_ByteIdentical(t *testing.T) {
	vs := []ir.Violation{
		{ResourceID: "b", RuleID: "r1", Message: "x"},
		{ResourceID: "a", RuleID: "r2", Message: "y"},
	}
	t1, _ := RenderAlerts(vs)
	// reversed input must render identically
	rev := []ir.Violation{vs[1], vs[0]}
	t2, _ := RenderAlerts(rev)
	if t1 != t2 {
		t.Fatalf("output depends on input order:\n%q\nvs\n%q", t1, t2)
	}
}

func TestRenderSummary(t *testing.T) {
	scan := ir.Scan{
		Resources:  make([]ir.Resource, 5),
		Violations: make([]ir.Violation, 3),
		Risk:       ir.RiskSummary{High: 2, Medium: 1, Score: 24},
	}
	got := RenderSummary(&scan)
	for _, frag := range []string{
		"SCAN SUMMARY",
		"Resources checked: 5",
		"Violations found: 3",
		"Risk score: 24.0 (high=2 medium=1 low=0)",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("summary missing %q:\n%s", frag, got)
		}
	}
}
