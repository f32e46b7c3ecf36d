package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

// Terraform plan adapter. The CI pipeline this scanner grew out of encodes
// the interesting attributes as JSON strings inside null_resource triggers:
// a "rule" trigger carries an ingress entry, a "config" trigger carries
// storage settings. The adapter unwraps them into normalized records.

type tfPlan struct {
	PlannedValues struct {
		RootModule struct {
			Resources []tfResource `json:"resources"`
		} `json:"root_module"`
	} `json:"planned_values"`
}

type tfResource struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Values struct {
		Triggers map[string]string `json:"triggers"`
	} `json:"values"`
}

type trigRule struct {
	Port     int    `json:"port"`
	CIDR     string `json:"cidr"`
	Protocol string `json:"protocol"`
}

type trigConfig struct {
	Encrypted *bool `json:"encrypted"`
}

func parsePlanFile(path string, diags *Diagnostics) ([]ir.Resource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var plan tfPlan
	if err := json.Unmarshal(b, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	var out []ir.Resource
	for _, res := range plan.PlannedValues.RootModule.Resources {
		if res.Type != "null_resource" || res.Name == "" {
			continue
		}
		trig := res.Values.Triggers
		if raw, ok := trig["rule"]; ok {
			var tr trigRule
			if err := json.Unmarshal([]byte(raw), &tr); err != nil {
				diags.warnf("%s: resource %s: bad rule trigger: %v", path, res.Name, err)
				continue
			}
			proto := tr.Protocol
			if proto == "" {
				proto = "tcp"
			}
			out = append(out, ir.Resource{
				ID:      res.Name,
				Kind:    ir.KindNetworkRule,
				Network: &ir.NetworkRule{Port: tr.Port, CIDR: tr.CIDR, Protocol: proto},
			})
			continue
		}
		if raw, ok := trig["config"]; ok {
			var tc trigConfig
			if err := json.Unmarshal([]byte(raw), &tc); err != nil {
				diags.warnf("%s: resource %s: bad config trigger: %v", path, res.Name, err)
				continue
			}
			enc := true
			if tc.Encrypted != nil {
				enc = *tc.Encrypted
			}
			out = append(out, ir.Resource{
				ID:      res.Name,
				Kind:    ir.KindStorage,
				Storage: &ir.Storage{Encrypted: enc},
			})
		}
	}
	return out, nil
}
