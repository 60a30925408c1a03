package sweep

import (
	"context"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/lansweep/pkg/models"
)

// dnsTimeout is the maximum time to wait for a reverse DNS lookup.
const dnsTimeout = 500 * time.Millisecond

// Orchestrator coordinates address enumeration, bounded-concurrency
// liveness and port probing, and classification into one scan pass.
// It is stateless between passes; the inventory owns all shared state.
type Orchestrator struct {
	liveness LivenessProber
	ports    PortProber
	logger   *zap.Logger

	// lookupAddr is swappable so tests don't touch the resolver.
	lookupAddr func(ctx context.Context, addr string) ([]string, error)
}

// NewOrchestrator creates a scan orchestrator.
func NewOrchestrator(liveness LivenessProber, ports PortProber, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		liveness:   liveness,
		ports:      ports,
		logger:     logger,
		lookupAddr: net.DefaultResolver.LookupAddr,
	}
}

// RunScan executes one scan pass over the CIDR block. prior is the set
// of devices already known to the inventory; addresses in it that are
// not re-observed are carried forward in the result as Down with their
// LastSeenScan untouched, so applying the result never loses history.
//
// A malformed config or CIDR fails fast before any network I/O. Every
// per-address failure degrades that address to Down and never aborts
// the pass. On cancellation no new addresses are dispatched; in-flight
// probes finish up to their own timeouts and the partial result is
// still returned.
func (o *Orchestrator) RunScan(ctx context.Context, cidr string, cfg Config, generation uint64, prior []models.Device) (*models.ScanResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hosts, err := ExpandCIDR(cidr)
	if err != nil {
		return nil, err
	}

	result := &models.ScanResult{
		Generation: generation,
		CIDR:       cidr,
		StartedAt:  time.Now().UTC(),
	}

	o.logger.Info("starting scan pass",
		zap.String("cidr", cidr),
		zap.Uint64("generation", generation),
		zap.Int("hosts", len(hosts)),
		zap.Int("concurrency", cfg.Concurrency),
	)

	var mu sync.Mutex
	observed := make(map[string]models.Device, len(hosts))

	// Semaphore-bounded worker pool: the concurrency limit is the sole
	// throttle on sockets and file descriptors, whatever the subnet size.
	sem := make(chan struct{}, cfg.Concurrency)
	var wg sync.WaitGroup

dispatch:
	for _, ip := range hosts {
		select {
		case <-ctx.Done():
			o.logger.Warn("scan cancelled, no further addresses dispatched",
				zap.Uint64("generation", generation))
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(ip string) {
			defer wg.Done()
			defer func() { <-sem }()

			device := o.probeAddress(ctx, ip, cfg, generation)
			if device == nil {
				return
			}
			mu.Lock()
			observed[ip] = *device
			mu.Unlock()
		}(ip)
	}
	wg.Wait()

	for _, d := range observed {
		result.Devices = append(result.Devices, d)
	}

	// Carry previously known addresses that were not re-observed this
	// pass forward as Down. LastSeenScan is deliberately left at its
	// old value: this is stale data, not a present observation.
	for i := range prior {
		if _, ok := observed[prior[i].Address]; ok {
			continue
		}
		carried := carryForwardDown(&prior[i])
		result.Devices = append(result.Devices, *carried)
	}

	// Completion order between addresses is unordered; sort so the
	// result content is deterministic.
	sortDevices(result.Devices)

	result.EndedAt = time.Now().UTC()
	o.logger.Info("scan pass complete",
		zap.Uint64("generation", generation),
		zap.Int("devices", len(result.Devices)),
		zap.Int("online", result.Online()),
		zap.Duration("elapsed", result.EndedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

// probeAddress runs liveness, port probing, hostname resolution, and
// classification for one address. Returns nil for a host that is down
// and was not previously known (nothing to record).
func (o *Orchestrator) probeAddress(ctx context.Context, ip string, cfg Config, generation uint64) *models.Device {
	if !o.liveness.Probe(ctx, ip) {
		return nil
	}

	open := o.ports.Probe(ctx, ip, cfg.Ports)

	return &models.Device{
		Address:         ip,
		Hostname:        o.resolveHostname(ip),
		Status:          models.StatusUp,
		OpenPorts:       open,
		ConcerningPorts: intersectPorts(open, cfg.ConcerningPorts),
		Role:            Classify(open, nil),
		LastSeenScan:    generation,
	}
}

// resolveHostname performs a reverse DNS lookup for the given IP
// address. Returns an empty string if the lookup fails or times out.
func (o *Orchestrator) resolveHostname(ip string) string {
	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	names, err := o.lookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}

// carryForwardDown derives the Down record for a device absent from
// the current pass. Ports are cleared, the role is recomputed from the
// now-empty port set, and the detail cache is dropped when the status
// or port set changed.
func carryForwardDown(prev *models.Device) *models.Device {
	d := prev.Clone()
	changed := d.Status != models.StatusDown || len(d.OpenPorts) > 0
	d.Status = models.StatusDown
	d.OpenPorts = nil
	d.ConcerningPorts = nil
	d.Role = Classify(nil, nil)
	if changed {
		d.Detail = nil
	}
	return d
}

// sortDevices orders devices by numeric IP, falling back to string
// order for anything unparsable.
func sortDevices(devices []models.Device) {
	sort.Slice(devices, func(i, j int) bool {
		a := net.ParseIP(devices[i].Address).To4()
		b := net.ParseIP(devices[j].Address).To4()
		if a == nil || b == nil {
			return devices[i].Address < devices[j].Address
		}
		for k := 0; k < 4; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
}
