package sweep

import (
	"strings"

	"github.com/HerbHall/lansweep/pkg/models"
)

// classificationRule maps observed evidence to a device role.
// anyPorts: at least one must be open. allPorts: every one must be
// open. detailHints: a detail attribute value containing any hint
// (case-insensitive) also satisfies the rule.
type classificationRule struct {
	role        models.DeviceRole
	anyPorts    []int
	allPorts    []int
	detailHints []string
	description string
}

// classificationRules is evaluated in order; the first matching rule
// wins, so a device matching several heuristics resolves predictably.
// The table is data, not code: new roles and heuristics are added here
// without touching the engine.
var classificationRules = []classificationRule{
	// SIP signalling ports or a VOIP vendor string are decisive.
	{
		role:        models.RoleVOIP,
		anyPorts:    []int{5060, 5061},
		detailHints: []string{"voip", "sip", "ip phone", "callmanager"},
		description: "SIP/RTP telephony device",
	},
	// Telnet + SNMP together is the classic managed-switch surface.
	{
		role:        models.RoleSwitch,
		allPorts:    []int{23, 161},
		detailHints: []string{"switch", "bridge", "vlan"},
		description: "Managed network infrastructure",
	},
	{
		role:        models.RoleServer,
		anyPorts:    []int{22, 80, 443, 3306, 8080},
		description: "General-purpose server service",
	},
}

// Classify derives a device role from its open ports and optional
// detail attributes. It is a pure function: no I/O, no hidden state,
// identical inputs always yield the identical role.
func Classify(openPorts []int, detail map[string]string) models.DeviceRole {
	portSet := make(map[int]bool, len(openPorts))
	for _, p := range openPorts {
		portSet[p] = true
	}

	for i := range classificationRules {
		if classificationRules[i].matches(portSet, detail) {
			return classificationRules[i].role
		}
	}
	return models.RoleUnknown
}

func (r *classificationRule) matches(portSet map[int]bool, detail map[string]string) bool {
	if len(r.allPorts) > 0 {
		all := true
		for _, p := range r.allPorts {
			if !portSet[p] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	for _, p := range r.anyPorts {
		if portSet[p] {
			return true
		}
	}
	return detailMatchesAny(detail, r.detailHints)
}

// detailMatchesAny reports whether any detail attribute value contains
// one of the hints, case-insensitively.
func detailMatchesAny(detail map[string]string, hints []string) bool {
	if len(detail) == 0 || len(hints) == 0 {
		return false
	}
	for _, v := range detail {
		lower := strings.ToLower(v)
		for _, hint := range hints {
			if strings.Contains(lower, hint) {
				return true
			}
		}
	}
	return false
}
