package sweep

import (
	"testing"

	"github.com/HerbHall/lansweep/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		ports  []int
		detail map[string]string
		want   models.DeviceRole
	}{
		{
			name:  "SIP port classifies VOIP",
			ports: []int{5060},
			want:  models.RoleVOIP,
		},
		{
			name:  "SIP-TLS port classifies VOIP",
			ports: []int{5061},
			want:  models.RoleVOIP,
		},
		{
			name:  "telnet plus SNMP classifies switch",
			ports: []int{23, 161},
			want:  models.RoleSwitch,
		},
		{
			name:  "web plus database classifies server",
			ports: []int{80, 3306},
			want:  models.RoleServer,
		},
		{
			name:  "no open ports classifies unknown",
			ports: []int{},
			want:  models.RoleUnknown,
		},
		{
			name:  "nil ports classifies unknown",
			ports: nil,
			want:  models.RoleUnknown,
		},
		{
			name:  "telnet alone is not a switch",
			ports: []int{23},
			want:  models.RoleUnknown,
		},
		{
			name:  "SNMP alone is not a switch",
			ports: []int{161},
			want:  models.RoleUnknown,
		},
		{
			name: "VOIP wins over switch and server when all match",
			// 5060 (VOIP) + 23/161 (switch) + 80 (server): first rule wins.
			ports: []int{23, 80, 161, 5060},
			want:  models.RoleVOIP,
		},
		{
			name:  "switch wins over server when both match",
			ports: []int{23, 80, 161},
			want:  models.RoleSwitch,
		},
		{
			name:   "VOIP vendor detail without SIP ports",
			ports:  []int{80},
			detail: map[string]string{"sysDescr": "Cisco SIP Gateway"},
			want:   models.RoleVOIP,
		},
		{
			name:   "switch detail without management ports",
			ports:  nil,
			detail: map[string]string{"sysDescr": "24-port managed switch"},
			want:   models.RoleSwitch,
		},
		{
			name:   "detail hints are case-insensitive",
			ports:  nil,
			detail: map[string]string{"sysDescr": "VoIP Phone SPA504G"},
			want:   models.RoleVOIP,
		},
		{
			name:   "unrelated detail stays unknown",
			ports:  nil,
			detail: map[string]string{"sysDescr": "laser printer"},
			want:   models.RoleUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.ports, tt.detail)
			if got != tt.want {
				t.Errorf("Classify(%v, %v) = %q, want %q", tt.ports, tt.detail, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	ports := []int{22, 23, 80, 161, 443, 5060, 8080}
	detail := map[string]string{"sysDescr": "managed switch", "sysName": "core-sw"}

	first := Classify(ports, detail)
	for i := 0; i < 100; i++ {
		if got := Classify(ports, detail); got != first {
			t.Fatalf("iteration %d: Classify returned %q, previously %q", i, got, first)
		}
	}
}
