package sweep

import (
	"sync"

	"github.com/HerbHall/lansweep/pkg/models"
)

// Inventory is the reconciled, queryable store of current device
// records. It is the only shared mutable state in the engine: probes
// return values and never write it.
//
// The device map is copy-on-write. Every mutation builds a complete
// replacement map and swaps it in under the write lock; records are
// never modified after publication, so a concurrent reader sees either
// the fully-prior or the fully-new snapshot, never an interleaving. A
// separate writer mutex serializes mutations so two scan passes can
// never interleave their merges.
type Inventory struct {
	mu         sync.RWMutex // guards the map pointer and generation
	applyMu    sync.Mutex   // serializes mutations
	devices    map[string]*models.Device
	generation uint64 // highest scan generation applied so far
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{devices: make(map[string]*models.Device)}
}

// ApplyScanResult merges one scan pass into the inventory. The new
// result's devices overwrite by address; addresses present before but
// absent from the result are carried forward as Down with their
// LastSeenScan untouched. A device whose status or port set changed
// has its cached detail invalidated.
//
// A result older than the highest generation already applied is
// discarded whole: a slow pass finishing after a fresher one has
// nothing current to contribute and must not regress the inventory.
func (in *Inventory) ApplyScanResult(result *models.ScanResult) {
	in.applyMu.Lock()
	defer in.applyMu.Unlock()

	prev, gen := in.snapshot()
	if result.Generation < gen {
		return
	}

	next := make(map[string]*models.Device, len(prev)+len(result.Devices))

	for i := range result.Devices {
		d := result.Devices[i].Clone()
		if old, ok := prev[d.Address]; ok {
			if d.Hostname == "" {
				d.Hostname = old.Hostname
			}
			// Keep cached detail only while status and ports are stable.
			if d.Detail == nil && old.Status == d.Status && samePorts(old.OpenPorts, d.OpenPorts) {
				d.Detail = old.Detail
			}
		}
		next[d.Address] = d
	}

	for addr, old := range prev {
		if _, ok := next[addr]; ok {
			continue
		}
		next[addr] = carryForwardDown(old)
	}

	in.mu.Lock()
	in.devices = next
	in.generation = result.Generation
	in.mu.Unlock()
}

// List returns a snapshot of all devices ordered by address.
func (in *Inventory) List() []models.Device {
	in.mu.RLock()
	out := make([]models.Device, 0, len(in.devices))
	for _, d := range in.devices {
		out = append(out, *d.Clone())
	}
	in.mu.RUnlock()

	sortDevices(out)
	return out
}

// Get returns the device for the given address, or ErrNotFound.
func (in *Inventory) Get(address string) (*models.Device, error) {
	in.mu.RLock()
	d, ok := in.devices[address]
	in.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

// SetDetail caches fetched detail for a device and recomputes its role
// now that detail evidence is available. Detail never touches status
// or open ports. The map is copied on store, so later mutations by the
// caller cannot reach inventory state, and the published record is
// replaced rather than modified in place. Returns ErrNotFound for an
// unknown address.
func (in *Inventory) SetDetail(address string, detail map[string]string) error {
	in.applyMu.Lock()
	defer in.applyMu.Unlock()

	prev, _ := in.snapshot()
	old, ok := prev[address]
	if !ok {
		return ErrNotFound
	}

	next := make(map[string]*models.Device, len(prev))
	for addr, d := range prev {
		next[addr] = d
	}

	d := old.Clone()
	d.Detail = make(map[string]string, len(detail))
	for k, v := range detail {
		d.Detail[k] = v
	}
	d.Role = Classify(d.OpenPorts, d.Detail)
	next[address] = d

	in.mu.Lock()
	in.devices = next
	in.mu.Unlock()
	return nil
}

// snapshot returns the current map and generation. The map must be
// treated as immutable; mutations go through a full copy-and-swap.
func (in *Inventory) snapshot() (map[string]*models.Device, uint64) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.devices, in.generation
}

// samePorts compares two sorted port slices.
func samePorts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
