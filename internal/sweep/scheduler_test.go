package sweep

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestIsQuietHours(t *testing.T) {
	at := func(hhmm string) time.Time {
		ts, err := time.Parse("15:04", hhmm)
		if err != nil {
			t.Fatalf("bad test time %q: %v", hhmm, err)
		}
		return ts
	}

	tests := []struct {
		name  string
		now   string
		start string
		end   string
		want  bool
	}{
		{"no window configured", "12:00", "", "", false},
		{"inside same-day window", "12:00", "09:00", "17:00", true},
		{"before same-day window", "08:59", "09:00", "17:00", false},
		{"at window start", "09:00", "09:00", "17:00", true},
		{"at window end is outside", "17:00", "09:00", "17:00", false},
		{"overnight window late evening", "23:30", "23:00", "06:00", true},
		{"overnight window early morning", "05:59", "23:00", "06:00", true},
		{"overnight window midday", "12:00", "23:00", "06:00", false},
		{"overnight window at end is outside", "06:00", "23:00", "06:00", false},
		{"unparsable start disables window", "12:00", "garbage", "17:00", false},
		{"unparsable end disables window", "12:00", "09:00", "25:99", false},
		{"start only disables window", "12:00", "09:00", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isQuietHours(at(tt.now), tt.start, tt.end); got != tt.want {
				t.Errorf("isQuietHours(%s, %q, %q) = %v, want %v",
					tt.now, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestParseHHMM(t *testing.T) {
	if m, ok := parseHHMM("23:45"); !ok || m != 23*60+45 {
		t.Errorf("parseHHMM(23:45) = %d, %v", m, ok)
	}
	if _, ok := parseHHMM("not-a-time"); ok {
		t.Error("parseHHMM accepted garbage")
	}
	if _, ok := parseHHMM(""); ok {
		t.Error("parseHHMM accepted empty string")
	}
}

func TestTickStartsScan(t *testing.T) {
	liveness := &stubLiveness{up: map[string]bool{"10.0.0.1": true}}
	engine, _ := testEngine(t, liveness, &stubPorts{}, nil)

	s := NewScheduler(testConfig(), engine, zap.NewNop())
	s.tick()

	if !engine.WaitForIdle(5 * time.Second) {
		t.Fatal("triggered scan did not finish")
	}
	if len(engine.ListDevices()) != 1 {
		t.Errorf("expected the tick to have run a scan")
	}
}

func TestTickSkipsDuringQuietHours(t *testing.T) {
	liveness := &stubLiveness{}
	engine, _ := testEngine(t, liveness, &stubPorts{}, nil)

	cfg := testConfig()
	cfg.QuietStart = "00:00"
	cfg.QuietEnd = "23:59"

	s := NewScheduler(cfg, engine, zap.NewNop())
	s.nowFunc = func() time.Time {
		return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	}
	s.tick()

	engine.WaitForIdle(time.Second)
	if liveness.callCount() != 0 {
		t.Errorf("scan ran during quiet hours: %d probes", liveness.callCount())
	}
}

func TestTickSkipsWhileScanActive(t *testing.T) {
	blocking := &blockingLiveness{
		started: make(chan string, 1),
		release: make(chan struct{}),
	}
	engine, _ := testEngine(t, blocking, &stubPorts{}, nil)

	cfg := testConfig()
	cfg.Concurrency = 1

	if _, err := engine.StartScan(""); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	<-blocking.started

	s := NewScheduler(cfg, engine, zap.NewNop())
	s.tick()

	if !engine.HasActiveScan() {
		t.Error("original scan should still be running")
	}
	close(blocking.release)
	if !engine.WaitForIdle(5 * time.Second) {
		t.Fatal("scan did not wind down")
	}
}

func TestSchedulerDisabledWithoutInterval(t *testing.T) {
	engine, _ := testEngine(t, &stubLiveness{}, &stubPorts{}, nil)

	cfg := testConfig()
	cfg.Interval = 0

	s := NewScheduler(cfg, engine, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Run(t.Context())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when no interval is set")
	}
}

func TestSchedulerStopUnblocksRun(t *testing.T) {
	engine, _ := testEngine(t, &stubLiveness{}, &stubPorts{}, nil)

	cfg := testConfig()
	cfg.Interval = time.Hour

	s := NewScheduler(cfg, engine, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Run(t.Context())
		close(done)
	}()

	s.Stop()
	s.Stop() // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after Stop")
	}
}
