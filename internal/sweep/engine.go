// Package sweep implements the subnet discovery engine: CIDR
// enumeration, concurrent liveness and port probing under bounded time
// budgets, role classification, and the reconciled device inventory.
package sweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/lansweep/internal/event"
	"github.com/HerbHall/lansweep/pkg/models"
)

// Engine is the façade the serving layer consumes: trigger a rescan,
// enumerate the inventory, fetch one device, fetch a device's detail.
type Engine struct {
	cfg          Config
	inventory    *Inventory
	orchestrator *Orchestrator
	fetcher      DetailFetcher
	bus          *event.Bus
	metrics      *Metrics
	logger       *zap.Logger

	mu         sync.Mutex // guards generation allocation
	generation uint64

	activeScans sync.Map // scanID -> context.CancelFunc
	wg          sync.WaitGroup
	scanCtx     context.Context
	scanCancel  context.CancelFunc
}

// NewEngine wires the engine together. fetcher, bus, and metrics may
// be nil; the corresponding capability is then simply absent.
func NewEngine(cfg Config, orchestrator *Orchestrator, fetcher DetailFetcher, bus *event.Bus, metrics *Metrics, logger *zap.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:          cfg,
		inventory:    NewInventory(),
		orchestrator: orchestrator,
		fetcher:      fetcher,
		bus:          bus,
		metrics:      metrics,
		logger:       logger,
		scanCtx:      ctx,
		scanCancel:   cancel,
	}
}

// StartScan triggers an asynchronous scan pass over the given CIDR
// (the configured default when empty) and returns its scan ID.
// Configuration and range errors are reported synchronously, before
// any network I/O. Generations are allocated monotonically and the
// inventory discards any result older than the freshest one applied,
// so a slow overlapping scan finishing late cannot regress the
// inventory.
func (e *Engine) StartScan(cidr string) (string, error) {
	if cidr == "" {
		cidr = e.cfg.CIDR
	}

	if err := e.cfg.Validate(); err != nil {
		return "", err
	}
	if _, err := ExpandCIDR(cidr); err != nil {
		return "", err
	}

	scanID := uuid.NewString()

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(e.scanCtx)
	e.activeScans.Store(scanID, cancel)
	e.wg.Add(1)

	e.publish(ctx, TopicScanStarted, ScanEvent{ScanID: scanID, Generation: gen, CIDR: cidr})

	go func() {
		defer e.wg.Done()
		defer e.activeScans.Delete(scanID)
		defer cancel()
		e.runScan(ctx, scanID, cidr, gen)
	}()

	return scanID, nil
}

// runScan executes one pass and applies its result. A cancelled pass
// still applies whatever it reached; the merge treats unreached
// addresses the same as any incomplete pass.
func (e *Engine) runScan(ctx context.Context, scanID, cidr string, gen uint64) {
	prior := e.inventory.List()

	result, err := e.orchestrator.RunScan(ctx, cidr, e.cfg, gen, prior)
	if err != nil {
		// Config and range were validated in StartScan; reaching this
		// means the config was mutated concurrently, which is a bug.
		e.logger.Error("scan pass failed",
			zap.String("scan_id", scanID),
			zap.Error(err),
		)
		return
	}
	result.ID = scanID

	e.inventory.ApplyScanResult(result)
	e.publishDeviceEvents(ctx, scanID, prior, result)

	if e.metrics != nil {
		e.metrics.ScansTotal.Inc()
		e.metrics.ScanDuration.Observe(result.EndedAt.Sub(result.StartedAt).Seconds())
		e.metrics.DevicesKnown.Set(float64(len(result.Devices)))
		e.metrics.DevicesUp.Set(float64(result.Online()))
	}

	e.publish(context.Background(), TopicScanCompleted, ScanEvent{
		ScanID:     scanID,
		Generation: gen,
		CIDR:       cidr,
		Total:      len(result.Devices),
		Online:     result.Online(),
	})
}

// publishDeviceEvents emits discovered/updated events by comparing the
// applied result against the pre-scan snapshot.
func (e *Engine) publishDeviceEvents(ctx context.Context, scanID string, prior []models.Device, result *models.ScanResult) {
	if e.bus == nil {
		return
	}
	known := make(map[string]bool, len(prior))
	for i := range prior {
		known[prior[i].Address] = true
	}
	for i := range result.Devices {
		d := &result.Devices[i]
		if d.Status != models.StatusUp {
			continue
		}
		topic := TopicDeviceUpdated
		if !known[d.Address] {
			topic = TopicDeviceDiscovered
		}
		e.publish(ctx, topic, DeviceEvent{ScanID: scanID, Device: d.Clone()})
	}
}

// ListDevices returns the current inventory snapshot ordered by address.
func (e *Engine) ListDevices() []models.Device {
	return e.inventory.List()
}

// GetDevice returns one device by address, or ErrNotFound.
func (e *Engine) GetDevice(address string) (*models.Device, error) {
	return e.inventory.Get(address)
}

// GetDeviceDetail returns the device's extended attributes, fetching
// them lazily through the detail probe. Fetched detail is cached until
// the next scan changes the device's status or open ports. A probe
// failure is ErrDetailUnavailable and never disturbs the core fields.
func (e *Engine) GetDeviceDetail(ctx context.Context, address string) (map[string]string, error) {
	device, err := e.inventory.Get(address)
	if err != nil {
		return nil, err
	}
	if device.Detail != nil {
		return device.Detail, nil
	}
	if e.fetcher == nil {
		return nil, ErrDetailUnavailable
	}

	detail, err := e.fetcher.Fetch(ctx, address)
	if err != nil {
		if errors.Is(err, ErrDetailUnavailable) {
			return nil, err
		}
		return nil, errors.Join(ErrDetailUnavailable, err)
	}

	// The device may have vanished between Get and Fetch; the detail
	// is still valid for the caller even if caching it fails.
	if err := e.inventory.SetDetail(address, detail); err != nil {
		e.logger.Debug("detail fetched for address no longer in inventory",
			zap.String("address", address))
	}
	return detail, nil
}

// HasActiveScan reports whether any scan pass is currently running.
func (e *Engine) HasActiveScan() bool {
	active := false
	e.activeScans.Range(func(_, _ any) bool {
		active = true
		return false
	})
	return active
}

// CancelScan cancels one in-flight scan by ID. In-flight probes finish
// up to their own timeouts and the partial result is still applied.
func (e *Engine) CancelScan(scanID string) bool {
	v, ok := e.activeScans.Load(scanID)
	if !ok {
		return false
	}
	v.(context.CancelFunc)()
	return true
}

// Stop cancels all active scans and waits for them to wind down.
func (e *Engine) Stop() {
	e.logger.Info("engine stopping, cancelling active scans")
	e.scanCancel()
	e.activeScans.Range(func(_, value any) bool {
		value.(context.CancelFunc)()
		return true
	})
	e.wg.Wait()
	e.logger.Info("engine stopped")
}

// WaitForIdle blocks until no scan is active or the timeout elapses.
// Intended for one-shot CLI runs and tests.
func (e *Engine) WaitForIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for e.HasActiveScan() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}

func (e *Engine) publish(ctx context.Context, topic string, payload any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(ctx, event.Event{
		Topic:     topic,
		Source:    "sweep",
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
