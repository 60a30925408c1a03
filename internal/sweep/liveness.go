package sweep

import (
	"context"
	"net"
	"runtime"
	"strconv"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// LivenessProber determines whether a candidate address hosts a
// reachable device within a bounded time window. Unreachability is the
// expected common case and is reported as false, never as an error.
type LivenessProber interface {
	Probe(ctx context.Context, address string) bool
}

// ICMPProber probes hosts with an ICMP echo request, falling back to a
// TCP connect race across the fallback port set when ICMP is filtered.
// A host that answers either probe within the timeout is Up.
type ICMPProber struct {
	timeout       time.Duration
	fallbackPorts []int
	logger        *zap.Logger
}

// NewICMPProber creates a liveness prober. fallbackPorts is the TCP
// port set tried when no echo reply arrives; an empty set disables the
// fallback.
func NewICMPProber(timeout time.Duration, fallbackPorts []int, logger *zap.Logger) *ICMPProber {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ICMPProber{
		timeout:       timeout,
		fallbackPorts: fallbackPorts,
		logger:        logger,
	}
}

// Probe reports whether the address responded to ICMP or TCP within
// the configured timeout. The timeout bounds the whole probe: the echo
// request gets the first half of the window and the TCP fallback runs
// under whatever remains of the shared deadline.
func (p *ICMPProber) Probe(ctx context.Context, address string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if p.pingHost(ctx, address, p.timeout/2) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	// ICMP filtered but a port opening still means the host is up.
	return p.tcpFallback(ctx, address)
}

// pingHost sends a single echo request and waits up to wait for a reply.
func (p *ICMPProber) pingHost(ctx context.Context, address string, wait time.Duration) bool {
	pinger, err := probing.NewPinger(address)
	if err != nil {
		p.logger.Debug("failed to create pinger", zap.String("ip", address), zap.Error(err))
		return false
	}

	pinger.Count = 1
	pinger.Timeout = wait
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if runErr := pinger.Run(); runErr != nil {
			p.logger.Debug("ping failed", zap.String("ip", address), zap.Error(runErr))
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		pinger.Stop()
		return false
	}

	return pinger.Statistics().PacketsRecv > 0
}

// tcpFallback races a TCP connect against every fallback port. The
// first successful connect wins. The caller's deadline bounds the
// race; the configured timeout caps it when the context carries none.
func (p *ICMPProber) tcpFallback(ctx context.Context, address string) bool {
	if len(p.fallbackPorts) == 0 {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	hit := make(chan struct{}, 1)
	var wg sync.WaitGroup
	for _, port := range p.fallbackPorts {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
			if err != nil {
				return
			}
			conn.Close()
			select {
			case hit <- struct{}{}:
			default:
			}
			cancel() // no need to keep dialing
		}(port)
	}

	go func() {
		wg.Wait()
		close(hit)
	}()

	_, ok := <-hit
	return ok
}
