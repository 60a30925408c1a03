package models

// DeviceRole is the coarse classification assigned to a discovered host.
type DeviceRole string

const (
	RoleServer  DeviceRole = "server"
	RoleSwitch  DeviceRole = "switch"
	RoleVOIP    DeviceRole = "voip"
	RoleUnknown DeviceRole = "unknown"
)

// DeviceStatus represents the liveness state of a device.
type DeviceStatus string

const (
	StatusUp   DeviceStatus = "up"
	StatusDown DeviceStatus = "down"
)

// Device is one host observed on the scanned subnet. Address is the
// unique key within an inventory snapshot.
type Device struct {
	Address         string            `json:"address" example:"192.168.1.10"`
	Hostname        string            `json:"hostname,omitempty" example:"web-server-01"`
	Status          DeviceStatus      `json:"status" example:"up"`
	OpenPorts       []int             `json:"open_ports,omitempty"`
	ConcerningPorts []int             `json:"concerning_ports,omitempty"`
	Role            DeviceRole        `json:"role" example:"server"`
	LastSeenScan    uint64            `json:"last_seen_scan" example:"3"`
	Detail          map[string]string `json:"detail,omitempty"`
}

// Clone returns a deep copy so inventory snapshots never share slices
// or maps with callers.
func (d *Device) Clone() *Device {
	out := *d
	if d.OpenPorts != nil {
		out.OpenPorts = append([]int(nil), d.OpenPorts...)
	}
	if d.ConcerningPorts != nil {
		out.ConcerningPorts = append([]int(nil), d.ConcerningPorts...)
	}
	if d.Detail != nil {
		out.Detail = make(map[string]string, len(d.Detail))
		for k, v := range d.Detail {
			out.Detail[k] = v
		}
	}
	return &out
}

// HasPort reports whether the device's most recent scan found the
// given TCP port open.
func (d *Device) HasPort(port int) bool {
	for _, p := range d.OpenPorts {
		if p == port {
			return true
		}
	}
	return false
}
