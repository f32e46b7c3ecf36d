package rules

import (
	"fmt"
	"strings"

	"github.com/PASTER-G/CI-guard/internal/cidr"
	"github.com/PASTER-G/CI-guard/internal/ir"
)

// Ports granting interactive access (SSH, RDP). Exposing them to a public
// range is HIGH regardless of anything else in the batch.
var sensitivePorts = map[int]bool{22: true, 3389: true}

func openSensitivePort() Rule {
	return Rule{
		ID:       "open_sensitive_port",
		Summary:  "Ingress rule exposes an administrative port (22/3389) to a public range.",
		Kind:     ir.KindNetworkRule,
		Severity: ir.SeverityHigh,
		Check: func(r *ir.Resource) bool {
			n := r.Network
			if n == nil {
				return false
			}
			if !strings.EqualFold(n.Protocol, "tcp") || !sensitivePorts[n.Port] {
				return false
			}
			// Invalid ranges fail closed: exposure cannot be confirmed.
			return cidr.Classify(n.CIDR) == cidr.Public
		},
		Message: func(r *ir.Resource) string {
			n := r.Network
			if n == nil {
				return ""
			}
			return fmt.Sprintf("Обнаружено небезопасное правило: порт %d открыт для всего интернета (%s)", n.Port, n.CIDR)
		},
	}
}
