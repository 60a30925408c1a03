package models

import "time"

// ScanResult holds the outcome of one orchestrated scan pass over a
// subnet. Devices includes hosts found Up, hosts probed but Down, and
// previously known hosts carried forward as Down, so applying a result
// never silently drops history.
type ScanResult struct {
	ID         string    `json:"id" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	Generation uint64    `json:"generation" example:"4"`
	CIDR       string    `json:"cidr" example:"192.168.1.0/24"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Devices    []Device  `json:"devices,omitempty"`
}

// Online counts devices with StatusUp.
func (r *ScanResult) Online() int {
	var n int
	for i := range r.Devices {
		if r.Devices[i].Status == StatusUp {
			n++
		}
	}
	return n
}
