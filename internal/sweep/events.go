package sweep

import "github.com/HerbHall/lansweep/pkg/models"

// Event topics published by the sweep engine.
const (
	TopicScanStarted      = "sweep.scan.started"
	TopicScanCompleted    = "sweep.scan.completed"
	TopicDeviceDiscovered = "sweep.device.discovered"
	TopicDeviceUpdated    = "sweep.device.updated"
)

// ScanEvent is the payload for scan lifecycle topics.
type ScanEvent struct {
	ScanID     string `json:"scan_id"`
	Generation uint64 `json:"generation"`
	CIDR       string `json:"cidr"`
	Total      int    `json:"total,omitempty"`
	Online     int    `json:"online,omitempty"`
}

// DeviceEvent wraps a device with its scan ID for event payloads.
type DeviceEvent struct {
	ScanID string         `json:"scan_id"`
	Device *models.Device `json:"device"`
}
