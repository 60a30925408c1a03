package sweep

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler triggers recurring scans on a configurable interval,
// respecting quiet hours when no scans should start.
type Scheduler struct {
	cfg     Config
	engine  *Engine
	logger  *zap.Logger
	nowFunc func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewScheduler creates a scheduler driving the given engine.
func NewScheduler(cfg Config, engine *Engine, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		nowFunc: time.Now,
		stopCh:  make(chan struct{}),
	}
}

// Run starts the ticker loop. It blocks until the context is cancelled
// or Stop is called. The caller should run this in a goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		s.logger.Info("scan scheduler disabled (no interval)")
		return
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("scan scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.String("cidr", s.cfg.CIDR),
		zap.String("quiet_start", s.cfg.QuietStart),
		zap.String("quiet_end", s.cfg.QuietEnd),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scan scheduler stopped (context cancelled)")
			return
		case <-s.stopCh:
			s.logger.Info("scan scheduler stopped")
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// Stop signals the scheduler to exit its run loop.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// tick is called on each interval. It checks quiet hours and active
// scans before triggering a new pass.
func (s *Scheduler) tick() {
	if isQuietHours(s.nowFunc(), s.cfg.QuietStart, s.cfg.QuietEnd) {
		s.logger.Debug("scheduled scan skipped: quiet hours",
			zap.String("quiet_start", s.cfg.QuietStart),
			zap.String("quiet_end", s.cfg.QuietEnd),
		)
		return
	}

	if s.engine.HasActiveScan() {
		s.logger.Debug("scheduled scan skipped: scan already running")
		return
	}

	scanID, err := s.engine.StartScan(s.cfg.CIDR)
	if err != nil {
		s.logger.Error("scheduled scan failed to start",
			zap.String("cidr", s.cfg.CIDR),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("scheduled scan started",
		zap.String("scan_id", scanID),
		zap.String("cidr", s.cfg.CIDR),
	)
}

// isQuietHours returns true if the given time falls within the quiet
// window defined by startHHMM and endHHMM (format "HH:MM"). Supports
// overnight ranges (e.g., "23:00" to "06:00"). Returns false if either
// value is empty or cannot be parsed.
func isQuietHours(now time.Time, startHHMM, endHHMM string) bool {
	if startHHMM == "" || endHHMM == "" {
		return false
	}

	startMin, ok := parseHHMM(startHHMM)
	if !ok {
		return false
	}
	endMin, ok := parseHHMM(endHHMM)
	if !ok {
		return false
	}

	nowMin := now.Hour()*60 + now.Minute()

	if startMin <= endMin {
		// Same-day range: e.g., 09:00 to 17:00
		return nowMin >= startMin && nowMin < endMin
	}
	// Overnight range: e.g., 23:00 to 06:00
	return nowMin >= startMin || nowMin < endMin
}

// parseHHMM parses a "HH:MM" string into minutes since midnight.
func parseHHMM(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
