package rules

import (
	"sort"
	"testing"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

func network(id string, port int, cidr, proto string) ir.Resource {
	return ir.Resource{
		ID:      id,
		Kind:    ir.KindNetworkRule,
		Network: &ir.NetworkRule{Port: port, CIDR: cidr, Protocol: proto},
	}
}

func disk(id string, encrypted bool) ir.Resource {
	return ir.Resource{
		ID:      id,
		Kind:    ir.KindStorage,
		Storage: &ir.Storage{Encrypted: encrypted},
	}
}

func violationKeys(vs []ir.Violation) []string {
	keys := make([]string, 0, len(vs))
	for _, v := range vs {
		keys = append(keys, v.ResourceID+"/"+v.RuleID)
	}
	sort.Strings(keys)
	return keys
}

func TestEvaluate_OpenSensitivePort(t *testing.T) {
	resources := []ir.Resource{
		network("ssh", 22, "0.0.0.0/0", "tcp"),
		network("rdp", 3389, "0.0.0.0/0", "tcp"),
		network("web", 443, "10.0.0.0/16", "tcp"),
	}
	vs := Evaluate(resources, Builtin(Options{}))

	want := []string{"rdp/open_sensitive_port", "ssh/open_sensitive_port"}
	got := violationKeys(vs)
	if len(got) != len(want) {
		t.Fatalf("expected %d violations, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("violations = %v, want %v", got, want)
		}
	}
	for _, v := range vs {
		if v.Severity != ir.SeverityHigh {
			t.Errorf("%s: severity = %s, want HIGH", v.ResourceID, v.Severity)
		}
		if v.Message == "" {
			t.Errorf("%s: empty message", v.ResourceID)
		}
	}
}

func TestEvaluate_OpenSensitivePort_NonMatches(t *testing.T) {
	resources := []ir.Resource{
		network("udp_ssh", 22, "0.0.0.0/0", "udp"),       // wrong protocol
		network("private_ssh", 22, "10.0.0.0/8", "tcp"),  // private range
		network("bad_cidr", 3389, "not-a-cidr", "tcp"),   // invalid fails closed
		network("high_port", 8080, "0.0.0.0/0", "tcp"),   // not sensitive
		network("public_ssh", 22, "203.0.113.0/24", "tcp"), // non-RFC1918 is public
	}
	vs := Evaluate(resources, Builtin(Options{}))
	got := violationKeys(vs)
	want := []string{"public_ssh/open_sensitive_port"}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("violations = %v, want %v", got, want)
	}
}

func TestEvaluate_UnencryptedStorage(t *testing.T) {
	resources := []ir.Resource{
		disk("unencrypted_disk", false),
		disk("encrypted_disk", true),
	}
	vs := Evaluate(resources, Builtin(Options{}))
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	v := vs[0]
	if v.ResourceID != "unencrypted_disk" || v.RuleID != "unencrypted_storage" {
		t.Fatalf("unexpected violation %+v", v)
	}
	if v.Severity != ir.SeverityMedium {
		t.Errorf("severity = %s, want MEDIUM", v.Severity)
	}
}

func TestEvaluate_KindGuard(t *testing.T) {
	// A partially populated record (nil payload) must not match and must
	// not fault.
	resources := []ir.Resource{
		{ID: "hollow_net", Kind: ir.KindNetworkRule},
		{ID: "hollow_disk", Kind: ir.KindStorage},
	}
	vs := Evaluate(resources, Builtin(Options{}))
	if len(vs) != 0 {
		t.Fatalf("expected no violations for hollow records, got %v", violationKeys(vs))
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	resources := []ir.Resource{
		network("ssh", 22, "0.0.0.0/0", "tcp"),
		disk("unencrypted_disk", false),
	}
	cat := Builtin(Options{})
	a := violationKeys(Evaluate(resources, cat))
	b := violationKeys(Evaluate(resources, cat))
	if len(a) != len(b) {
		t.Fatalf("run sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs differ: %v vs %v", a, b)
		}
	}
}

func TestEvaluate_PanickingRuleIsContained(t *testing.T) {
	broken := Rule{
		ID:       "broken_rule",
		Summary:  "always panics",
		Kind:     ir.KindStorage,
		Severity: ir.SeverityLow,
		Check:    func(r *ir.Resource) bool { panic("boom") },
	}
	cat := NewCatalog(Options{}, append(Builtins(), broken)...)
	resources := []ir.Resource{
		disk("unencrypted_disk", false),
		network("ssh", 22, "0.0.0.0/0", "tcp"),
	}
	vs := Evaluate(resources, cat)

	// The broken rule is skipped for its records; everything else survives.
	got := violationKeys(vs)
	want := []string{"ssh/open_sensitive_port", "unencrypted_disk/unencrypted_storage"}
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("violations = %v, want %v", got, want)
		}
	}
}

func TestEvaluate_SeverityThreshold(t *testing.T) {
	resources := []ir.Resource{
		network("ssh", 22, "0.0.0.0/0", "tcp"),
		disk("unencrypted_disk", false),
	}
	vs := Evaluate(resources, Builtin(Options{SeverityThreshold: ir.SeverityHigh}))
	got := violationKeys(vs)
	if len(got) != 1 || got[0] != "ssh/open_sensitive_port" {
		t.Fatalf("HIGH threshold: violations = %v", got)
	}
}

func TestEvaluate_StableViolationIDs(t *testing.T) {
	resources := []ir.Resource{network("ssh", 22, "0.0.0.0/0", "tcp")}
	cat := Builtin(Options{})
	a := Evaluate(resources, cat)
	b := Evaluate(resources, cat)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected 1 violation per run, got %d and %d", len(a), len(b))
	}
	if a[0].ID == "" || a[0].ID != b[0].ID {
		t.Fatalf("violation IDs not stable: %q vs %q", a[0].ID, b[0].ID)
	}
}
