package ir

import "time"

const Version = "1.0"

// Severity levels shared by rules and violations.
const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Kind discriminates the resource record variants.
type Kind string

const (
	KindNetworkRule Kind = "network_rule"
	KindStorage     Kind = "storage"
)

type Scan struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`

	Context    Context     `json:"context"`
	Resources  []Resource  `json:"resources"`
	Violations []Violation `json:"violations,omitempty"`
	Risk       RiskSummary `json:"risk"`
}

type Context struct {
	SeverityThreshold string   `json:"severity_threshold,omitempty"`
	DisabledRules     []string `json:"disabled_rules,omitempty"`
	WaiversApplied    int      `json:"waivers_applied,omitempty"`
}

// Resource is a discriminated union: Kind selects which payload pointer is
// populated. The loader resolves the variant once; rule predicates never
// probe for attribute presence.
type Resource struct {
	ID      string       `json:"id"`
	Kind    Kind         `json:"type"`
	Network *NetworkRule `json:"network,omitempty"`
	Storage *Storage     `json:"storage,omitempty"`
}

// NetworkRule is an ingress entry: traffic from CIDR to Port over Protocol.
type NetworkRule struct {
	Port     int    `json:"port"`
	CIDR     string `json:"cidr"`
	Protocol string `json:"protocol"`
}

type Storage struct {
	Encrypted bool `json:"encrypted"`
}

// Violation asserts that one resource failed one rule. Immutable once
// produced by the evaluator.
type Violation struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	RuleID     string `json:"rule_id"`
	Severity   string `json:"severity"` // LOW|MEDIUM|HIGH
	Message    string `json:"message"`
}

type RiskSummary struct {
	High   int     `json:"high"`
	Medium int     `json:"medium"`
	Low    int     `json:"low"`
	Score  float64 `json:"score"`
}
