package sweep

import (
	"context"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PortProber tests a set of TCP ports for reachability on one address.
type PortProber interface {
	Probe(ctx context.Context, address string, ports []int) []int
}

// TCPPortProber probes ports with plain TCP connects. All ports of one
// address fan out concurrently under a shared deadline, so the whole
// per-address probe never takes longer than the configured timeout
// regardless of how many ports are checked.
type TCPPortProber struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewTCPPortProber creates a port prober with the given per-address
// time ceiling.
func NewTCPPortProber(timeout time.Duration, logger *zap.Logger) *TCPPortProber {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &TCPPortProber{timeout: timeout, logger: logger}
}

// Probe returns the sorted subset of ports that accepted a connection.
// Probing a Down host legitimately yields an empty set; one port's
// timeout never delays another.
func (p *TCPPortProber) Probe(ctx context.Context, address string, ports []int) []int {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var mu sync.Mutex
	var open []int
	var wg sync.WaitGroup

	for _, port := range ports {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()

			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
			if err != nil {
				return
			}
			conn.Close()

			mu.Lock()
			open = append(open, port)
			mu.Unlock()
		}(port)
	}
	wg.Wait()

	sort.Ints(open)

	p.logger.Debug("port probe complete",
		zap.String("ip", address),
		zap.Ints("open", open),
	)

	return open
}

// intersectPorts returns the sorted intersection of open and watch.
// Used to derive a device's concerning ports from the configured
// watch list.
func intersectPorts(open, watch []int) []int {
	if len(open) == 0 || len(watch) == 0 {
		return nil
	}
	watched := make(map[int]bool, len(watch))
	for _, p := range watch {
		watched[p] = true
	}
	var out []int
	for _, p := range open {
		if watched[p] {
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
