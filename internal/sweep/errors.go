package sweep

import "errors"

// Sentinel errors surfaced by the discovery engine. Per-probe network
// failures are never surfaced as errors; an unreachable host is the
// normal steady state of a subnet sweep and is represented as a Down
// device instead.
var (
	// ErrInvalidRange indicates a malformed CIDR block.
	ErrInvalidRange = errors.New("invalid address range")

	// ErrInvalidConfig indicates a malformed scan configuration.
	// Returned before any network I/O is performed.
	ErrInvalidConfig = errors.New("invalid scan configuration")

	// ErrNotFound indicates the requested address is not in the inventory.
	ErrNotFound = errors.New("device not found")

	// ErrDetailUnavailable indicates the detail probe failed. Core
	// device fields are unaffected; detail is strictly best-effort.
	ErrDetailUnavailable = errors.New("device detail unavailable")
)
