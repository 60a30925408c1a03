// Package config loads LanSweep configuration and builds the logger.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment variables.
// When configPath is empty, a lansweep.yaml is searched in the working
// directory, ./configs, and /etc/lansweep. A missing file is fine;
// defaults apply.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scan.cidr", "192.168.1.0/24")
	v.SetDefault("scan.concurrency", 64)
	v.SetDefault("scan.liveness_timeout", "2s")
	v.SetDefault("scan.port_timeout", "2s")
	v.SetDefault("scan.ports", []int{21, 22, 23, 80, 161, 443, 3306, 5060, 5061, 8080})
	v.SetDefault("scan.concerning_ports", []int{21, 80, 8080})
	v.SetDefault("scan.interval", "10m")
	v.SetDefault("scan.quiet_start", "")
	v.SetDefault("scan.quiet_end", "")

	v.SetDefault("snmp.community", "public")
	v.SetDefault("snmp.port", 161)
	v.SetDefault("snmp.timeout", "5s")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("lansweep")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/lansweep")
	}

	// Environment variable support: LS_SCAN_CONCURRENCY=128
	v.SetEnvPrefix("LS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
