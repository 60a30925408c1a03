package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

// SNMPv2-MIB system group (1.3.6.1.2.1.1).
const (
	oidSysDescr    = "1.3.6.1.2.1.1.1.0"
	oidSysObjectID = "1.3.6.1.2.1.1.2.0"
	oidSysUpTime   = "1.3.6.1.2.1.1.3.0"
	oidSysContact  = "1.3.6.1.2.1.1.4.0"
	oidSysName     = "1.3.6.1.2.1.1.5.0"
	oidSysLocation = "1.3.6.1.2.1.1.6.0"
)

// SNMPConfig holds the settings for the SNMP detail probe.
type SNMPConfig struct {
	Community string        `mapstructure:"community"`
	Port      uint16        `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DefaultSNMPConfig returns the default SNMP probe settings.
func DefaultSNMPConfig() SNMPConfig {
	return SNMPConfig{
		Community: "public",
		Port:      161,
		Timeout:   5 * time.Second,
	}
}

// SNMPDetailFetcher retrieves a device's SNMPv2-MIB system group as an
// opaque attribute bag. Any timeout or protocol failure surfaces as
// ErrDetailUnavailable.
type SNMPDetailFetcher struct {
	cfg    SNMPConfig
	logger *zap.Logger
}

// NewSNMPDetailFetcher creates an SNMP-backed detail fetcher.
func NewSNMPDetailFetcher(cfg SNMPConfig, logger *zap.Logger) *SNMPDetailFetcher {
	if cfg.Port == 0 {
		cfg.Port = 161
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &SNMPDetailFetcher{cfg: cfg, logger: logger}
}

// Fetch implements DetailFetcher. Attribute keys are the MIB object
// names (sysDescr, sysName, ...).
func (f *SNMPDetailFetcher) Fetch(ctx context.Context, address string) (map[string]string, error) {
	g := &gosnmp.GoSNMP{
		Target:    address,
		Port:      f.cfg.Port,
		Community: f.cfg.Community,
		Version:   gosnmp.Version2c,
		Timeout:   f.cfg.Timeout,
		Retries:   1,
		Context:   ctx,
	}

	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %v", ErrDetailUnavailable, address, err)
	}
	defer func() { _ = g.Conn.Close() }()

	oids := []string{
		oidSysDescr,
		oidSysObjectID,
		oidSysUpTime,
		oidSysContact,
		oidSysName,
		oidSysLocation,
	}

	result, err := g.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("%w: SNMP GET %s: %v", ErrDetailUnavailable, address, err)
	}

	detail := make(map[string]string)
	for _, pdu := range result.Variables {
		if pdu.Type == gosnmp.NoSuchObject || pdu.Type == gosnmp.NoSuchInstance {
			continue
		}
		switch pdu.Name {
		case "." + oidSysDescr:
			setIfPresent(detail, "sysDescr", parsePDUString(pdu))
		case "." + oidSysObjectID:
			setIfPresent(detail, "sysObjectID", parsePDUString(pdu))
		case "." + oidSysUpTime:
			if up := parsePDUUpTime(pdu); up > 0 {
				detail["sysUpTime"] = up.String()
			}
		case "." + oidSysContact:
			setIfPresent(detail, "sysContact", parsePDUString(pdu))
		case "." + oidSysName:
			setIfPresent(detail, "sysName", parsePDUString(pdu))
		case "." + oidSysLocation:
			setIfPresent(detail, "sysLocation", parsePDUString(pdu))
		}
	}

	if len(detail) == 0 {
		return nil, fmt.Errorf("%w: %s returned no system attributes", ErrDetailUnavailable, address)
	}

	f.logger.Debug("SNMP detail retrieved",
		zap.String("target", address),
		zap.Int("attributes", len(detail)),
	)

	return detail, nil
}

func setIfPresent(detail map[string]string, key, value string) {
	if value != "" {
		detail[key] = value
	}
}

// parsePDUString extracts a string value from an SNMP PDU.
func parsePDUString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

// parsePDUUpTime extracts a TimeTicks value (hundredths of a second)
// from an SNMP PDU and converts it to a time.Duration.
func parsePDUUpTime(pdu gosnmp.SnmpPDU) time.Duration {
	switch v := pdu.Value.(type) {
	case uint32:
		return time.Duration(v) * 10 * time.Millisecond
	case uint:
		return time.Duration(int64(v)) * 10 * time.Millisecond //nolint:gosec // G115: SNMP TimeTicks fits in int64
	case int:
		return time.Duration(v) * 10 * time.Millisecond
	default:
		return 0
	}
}
