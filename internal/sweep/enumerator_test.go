package sweep

import (
	"errors"
	"testing"
)

func TestExpandCIDR(t *testing.T) {
	tests := []struct {
		name      string
		cidr      string
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{
			name:      "/30 yields exactly two hosts",
			cidr:      "192.168.0.0/30",
			wantCount: 2,
			wantFirst: "192.168.0.1",
			wantLast:  "192.168.0.2",
		},
		{
			name:      "/24 excludes network and broadcast",
			cidr:      "192.168.1.0/24",
			wantCount: 254,
			wantFirst: "192.168.1.1",
			wantLast:  "192.168.1.254",
		},
		{
			name:      "/31 point-to-point has no broadcast",
			cidr:      "10.0.0.0/31",
			wantCount: 2,
			wantFirst: "10.0.0.0",
			wantLast:  "10.0.0.1",
		},
		{
			name:      "/32 is a single host",
			cidr:      "10.1.2.3/32",
			wantCount: 1,
			wantFirst: "10.1.2.3",
			wantLast:  "10.1.2.3",
		},
		{
			name:      "non-aligned address is masked to the network",
			cidr:      "10.0.0.77/30",
			wantCount: 2,
			wantFirst: "10.0.0.77",
			wantLast:  "10.0.0.78",
		},
		{
			name:      "/16 spans octet boundaries",
			cidr:      "172.16.0.0/16",
			wantCount: 65534,
			wantFirst: "172.16.0.1",
			wantLast:  "172.16.255.254",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hosts, err := ExpandCIDR(tt.cidr)
			if err != nil {
				t.Fatalf("ExpandCIDR(%q) returned error: %v", tt.cidr, err)
			}
			if len(hosts) != tt.wantCount {
				t.Fatalf("ExpandCIDR(%q) returned %d hosts, want %d", tt.cidr, len(hosts), tt.wantCount)
			}
			if hosts[0] != tt.wantFirst {
				t.Errorf("first host = %q, want %q", hosts[0], tt.wantFirst)
			}
			if hosts[len(hosts)-1] != tt.wantLast {
				t.Errorf("last host = %q, want %q", hosts[len(hosts)-1], tt.wantLast)
			}
		})
	}
}

func TestExpandCIDRNoDuplicates(t *testing.T) {
	hosts, err := ExpandCIDR("10.20.0.0/23")
	if err != nil {
		t.Fatalf("ExpandCIDR: %v", err)
	}
	seen := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		if seen[h] {
			t.Fatalf("duplicate host %q", h)
		}
		seen[h] = true
	}
	if len(hosts) != 510 {
		t.Errorf("expected 510 hosts in a /23, got %d", len(hosts))
	}
}

func TestExpandCIDRInvalid(t *testing.T) {
	tests := []struct {
		name string
		cidr string
	}{
		{"garbage", "not-a-cidr"},
		{"missing prefix length", "192.168.0.0"},
		{"empty", ""},
		{"ipv6", "2001:db8::/64"},
		{"wider than /16", "10.0.0.0/8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandCIDR(tt.cidr)
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("ExpandCIDR(%q) error = %v, want ErrInvalidRange", tt.cidr, err)
			}
		})
	}
}

func TestExpandCIDRRestartable(t *testing.T) {
	first, err := ExpandCIDR("192.168.5.0/28")
	if err != nil {
		t.Fatalf("ExpandCIDR: %v", err)
	}
	second, err := ExpandCIDR("192.168.5.0/28")
	if err != nil {
		t.Fatalf("ExpandCIDR: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("element %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}
