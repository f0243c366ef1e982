// Package config holds the catalog service configuration.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Defaulter = (*Config)(nil)
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	IdP        config.IdP              `koanf:"idp"`
}

// Defaults returns the baseline configuration; the receiver is not used.
func (c *Config) Defaults() map[string]any {
	return map[string]any{
		"server.port":               3000,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       5 * time.Second,
		"server.timeout.write":      10 * time.Second,
		"server.timeout.idle":       120 * time.Second,
		"server.timeout.readheader": 2 * time.Second,

		"grpc.port":       "50051",
		"grpc.reflection": false,

		"database.timeout":  10 * time.Second,
		"database.migrate":  false,
		"database.inmemory": false,

		"log.level": "info",

		"pprof.enabled": false,
		"pprof.addr":    "localhost:6060",

		"shutdown.timeout": 5 * time.Second,

		"nats.enabled": false,
		"nats.timeout": 5 * time.Second,
		"nats.stream":  "PRODUCTS",

		"telemetry.enabled":                  false,
		"telemetry.traces.otlphttp.insecure": true,
		"telemetry.traces.otlphttp.timeout":  5 * time.Second,
		"telemetry.traces.sampleratio":       1.0,

		"idp.enabled":     false,
		"idp.mininterval": 15 * time.Minute,
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.IdP.String())
	return b.String()
}

// Validate checks every section and reports all failures together.
func (c *Config) Validate() error {
	return errors.Join(
		c.HTTPServer.Validate(),
		c.GRPC.Validate(),
		c.Database.Validate(),
		c.Log.Validate(),
		c.PProf.Validate(),
		c.Shutdown.Validate(),
		c.NATS.Validate(),
		c.Telemetry.Validate(),
		c.IdP.Validate(),
	)
}
