package rulesdsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PASTER-G/CI-guard/internal/ir"
	"github.com/PASTER-G/CI-guard/internal/rules"
)

const samplePack = `
rules:
  - id: open_database_port
    summary: Database port reachable from a public range.
    kind: network_rule
    severity: HIGH
    message: "порт {port} базы данных открыт для {cidr}"
    where:
      protocol: tcp
      ports: [5432, 3306]
      cidr_class: public
  - id: encrypted_but_suspicious_name
    summary: Encrypted disk with a name that suggests scratch data.
    kind: storage
    severity: LOW
    message: "scratch disk {id} should not be provisioned at all"
    where:
      id_regex: "^(tmp|scratch)_"
      encrypted: true
`

func loadPack(t *testing.T) []rules.Rule {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(p, []byte(samplePack), 0o644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	rs, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return rs
}

func TestLoad_CompilesPack(t *testing.T) {
	rs := loadPack(t)
	if len(rs) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rs))
	}
}

func TestLoad_NetworkRuleMatches(t *testing.T) {
	rs := loadPack(t)
	cat := rules.NewCatalog(rules.Options{}, rs...)

	resources := []ir.Resource{
		{ID: "pg_open", Kind: ir.KindNetworkRule, Network: &ir.NetworkRule{Port: 5432, CIDR: "0.0.0.0/0", Protocol: "tcp"}},
		{ID: "pg_private", Kind: ir.KindNetworkRule, Network: &ir.NetworkRule{Port: 5432, CIDR: "10.0.0.0/8", Protocol: "tcp"}},
		{ID: "tmp_disk", Kind: ir.KindStorage, Storage: &ir.Storage{Encrypted: true}},
		{ID: "data_disk", Kind: ir.KindStorage, Storage: &ir.Storage{Encrypted: true}},
	}
	vs := rules.Evaluate(resources, cat)

	got := map[string]string{}
	for _, v := range vs {
		got[v.ResourceID] = v.Message
	}
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(vs), got)
	}
	if msg := got["pg_open"]; msg != "порт 5432 базы данных открыт для 0.0.0.0/0" {
		t.Fatalf("template expansion wrong: %q", msg)
	}
	if msg := got["tmp_disk"]; msg != "scratch disk tmp_disk should not be provisioned at all" {
		t.Fatalf("storage template wrong: %q", msg)
	}
}

func TestLoad_RejectsBadPack(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"missing.yaml": "rules:\n  - id: x\n",
		"badkind.yaml": "rules:\n  - id: x\n    kind: queue\n    severity: LOW\n    message: m\n",
		"badre.yaml":   "rules:\n  - id: x\n    kind: storage\n    severity: LOW\n    message: m\n    where:\n      id_regex: '('\n",
	} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := Load(p); err == nil {
			t.Errorf("%s: expected compile error", name)
		}
	}
}
