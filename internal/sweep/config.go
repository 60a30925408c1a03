package sweep

import (
	"fmt"
	"time"
)

// Config holds the discovery engine configuration.
type Config struct {
	CIDR            string        `mapstructure:"cidr"`
	Concurrency     int           `mapstructure:"concurrency"`
	LivenessTimeout time.Duration `mapstructure:"liveness_timeout"`
	PortTimeout     time.Duration `mapstructure:"port_timeout"`
	Ports           []int         `mapstructure:"ports"`
	ConcerningPorts []int         `mapstructure:"concerning_ports"`
	Interval        time.Duration `mapstructure:"interval"`
	QuietStart      string        `mapstructure:"quiet_start"`
	QuietEnd        string        `mapstructure:"quiet_end"`
}

// DefaultConfig returns the default configuration for the engine.
func DefaultConfig() Config {
	return Config{
		CIDR:            "192.168.1.0/24",
		Concurrency:     64,
		LivenessTimeout: 2 * time.Second,
		PortTimeout:     2 * time.Second,
		Ports:           []int{21, 22, 23, 80, 161, 443, 3306, 5060, 5061, 8080},
		ConcerningPorts: []int{21, 80, 8080},
		Interval:        10 * time.Minute,
	}
}

// Validate checks the configuration before a scan pass starts. A
// failure here means no network I/O has happened yet.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if len(c.Ports) == 0 {
		return fmt.Errorf("%w: ports to check must not be empty", ErrInvalidConfig)
	}
	if c.LivenessTimeout <= 0 {
		return fmt.Errorf("%w: liveness timeout must be positive, got %v", ErrInvalidConfig, c.LivenessTimeout)
	}
	if c.PortTimeout <= 0 {
		return fmt.Errorf("%w: port timeout must be positive, got %v", ErrInvalidConfig, c.PortTimeout)
	}
	for _, p := range append(append([]int(nil), c.Ports...), c.ConcerningPorts...) {
		if p < 1 || p > 65535 {
			return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, p)
		}
	}
	return nil
}
