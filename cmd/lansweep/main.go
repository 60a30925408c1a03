package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HerbHall/lansweep/internal/config"
	"github.com/HerbHall/lansweep/internal/event"
	"github.com/HerbHall/lansweep/internal/sweep"
	"github.com/HerbHall/lansweep/pkg/models"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	cidr := flag.String("cidr", "", "CIDR block to scan (overrides config)")
	once := flag.Bool("once", false, "run a single scan pass, print the inventory, and exit")
	flag.Parse()

	v, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	scanCfg := sweep.DefaultConfig()
	if err := v.UnmarshalKey("scan", &scanCfg); err != nil {
		logger.Fatal("invalid scan configuration", zap.Error(err))
	}
	if *cidr != "" {
		scanCfg.CIDR = *cidr
	}
	if err := scanCfg.Validate(); err != nil {
		logger.Fatal("invalid scan configuration", zap.Error(err))
	}

	snmpCfg := sweep.DefaultSNMPConfig()
	if err := v.UnmarshalKey("snmp", &snmpCfg); err != nil {
		logger.Fatal("invalid snmp configuration", zap.Error(err))
	}

	bus := event.NewBus(logger.Named("event"))
	metrics := sweep.NewMetrics(prometheus.DefaultRegisterer)

	orchestrator := sweep.NewOrchestrator(
		sweep.NewICMPProber(scanCfg.LivenessTimeout, scanCfg.Ports, logger.Named("icmp")),
		sweep.NewTCPPortProber(scanCfg.PortTimeout, logger.Named("ports")),
		logger.Named("sweep"),
	)
	fetcher := sweep.NewSNMPDetailFetcher(snmpCfg, logger.Named("snmp"))

	engine := sweep.NewEngine(scanCfg, orchestrator, fetcher, bus, metrics, logger.Named("engine"))
	defer engine.Stop()

	if *once {
		runOnce(engine, bus, scanCfg, logger)
		return
	}

	runDaemon(engine, scanCfg, logger)
}

// runOnce triggers one scan pass, waits for completion, and dumps the
// inventory as a table.
func runOnce(engine *sweep.Engine, bus *event.Bus, cfg sweep.Config, logger *zap.Logger) {
	done := make(chan struct{}, 1)
	unsub := bus.Subscribe(sweep.TopicScanCompleted, func(_ context.Context, _ event.Event) {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer unsub()

	scanID, err := engine.StartScan(cfg.CIDR)
	if err != nil {
		logger.Fatal("failed to start scan", zap.Error(err))
	}
	logger.Info("scan started", zap.String("scan_id", scanID), zap.String("cidr", cfg.CIDR))

	select {
	case <-done:
	case <-time.After(30 * time.Minute):
		logger.Fatal("scan did not complete in time", zap.String("scan_id", scanID))
	}

	printInventory(engine.ListDevices())
}

// runDaemon kicks off an initial scan and keeps rescanning on the
// configured interval until interrupted.
func runDaemon(engine *sweep.Engine, cfg sweep.Config, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := engine.StartScan(cfg.CIDR); err != nil {
		logger.Fatal("failed to start initial scan", zap.Error(err))
	}

	scheduler := sweep.NewScheduler(cfg, engine, logger.Named("scheduler"))
	go scheduler.Run(ctx)
	defer scheduler.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

// printInventory writes the device table to stdout.
func printInventory(devices []models.Device) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tHOSTNAME\tSTATUS\tROLE\tOPEN PORTS\tCONCERNING")
	for i := range devices {
		d := &devices[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Address,
			d.Hostname,
			d.Status,
			d.Role,
			joinPorts(d.OpenPorts),
			joinPorts(d.ConcerningPorts),
		)
	}
	w.Flush()
}

func joinPorts(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	sorted := append([]int(nil), ports...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
