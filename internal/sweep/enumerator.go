package sweep

import (
	"fmt"
	"net"
)

// maxHostBits caps enumeration at a /16 (65534 hosts) to prevent
// accidental huge sweeps.
const maxHostBits = 16

// ExpandCIDR returns every candidate host address in the given IPv4
// CIDR block, in ascending order. The network and broadcast addresses
// are excluded; /31 and /32 blocks have neither, so every address in
// them is a candidate. A malformed or unsupported block yields
// ErrInvalidRange.
func ExpandCIDR(cidr string) ([]string, error) {
	_, subnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRange, cidr, err)
	}
	if subnet.IP.To4() == nil {
		return nil, fmt.Errorf("%w: %q: only IPv4 ranges are supported", ErrInvalidRange, cidr)
	}

	ones, bits := subnet.Mask.Size()
	hostBits := bits - ones
	if hostBits > maxHostBits {
		return nil, fmt.Errorf("%w: %q: wider than /%d", ErrInvalidRange, cidr, bits-maxHostBits)
	}

	total := 1 << hostBits

	// /31 and /32 have no network or broadcast address.
	first, last := 1, total-2
	if hostBits < 2 {
		first, last = 0, total-1
	}

	hosts := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		hosts = append(hosts, incrementIP(subnet.IP, i).String())
	}
	return hosts, nil
}

// incrementIP adds offset to a base IPv4 address.
func incrementIP(base net.IP, offset int) net.IP {
	ip := make(net.IP, len(base))
	copy(ip, base)

	ip = ip.To4()
	if ip == nil {
		return nil
	}

	carry := offset
	for i := 3; i >= 0; i-- {
		val := int(ip[i]) + carry
		ip[i] = byte(val % 256)
		carry = val / 256
		if carry == 0 {
			break
		}
	}
	return ip
}
