// Package config loads the device configuration.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/wifiprov/wifiprov-go/pkg/connection"
	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/discovery"
	"github.com/wifiprov/wifiprov-go/pkg/log"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
	"github.com/wifiprov/wifiprov-go/pkg/provisioning"
)

// Storage engines.
const (
	EngineFile   = "file"
	EngineSQLite = "sqlite"
	EngineMemory = "memory"
)

// Config is the device configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Broadcast  BroadcastConfig  `yaml:"broadcast"`
	Connection ConnectionConfig `yaml:"connection"`
	Storage    StorageConfig    `yaml:"storage"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Log        LogConfig        `yaml:"log"`
	Simulator  SimulatorConfig  `yaml:"simulator"`
}

// ServerConfig configures the provisioning server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// ServeAlways keeps the server running after joining a stored network.
	ServeAlways bool `yaml:"serve_always"`

	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BroadcastConfig configures the soft-AP.
type BroadcastConfig struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`
	Channel    uint8  `yaml:"channel"`
	MaxClients int    `yaml:"max_clients"`
	Address    string `yaml:"address"`
	Gateway    string `yaml:"gateway"`
}

// Netif converts the configuration to the driver form.
func (c BroadcastConfig) Netif() (netif.BroadcastConfig, error) {
	prefix, err := netip.ParsePrefix(c.Address)
	if err != nil {
		return netif.BroadcastConfig{}, fmt.Errorf("broadcast.address: %w", err)
	}
	gw, err := netip.ParseAddr(c.Gateway)
	if err != nil {
		return netif.BroadcastConfig{}, fmt.Errorf("broadcast.gateway: %w", err)
	}
	return netif.BroadcastConfig{
		SSID:       c.SSID,
		Passphrase: c.Passphrase,
		Channel:    c.Channel,
		MaxClients: c.MaxClients,
		Address:    prefix,
		Gateway:    gw,
	}, nil
}

// ConnectionConfig configures connection attempts.
type ConnectionConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetry       int           `yaml:"max_retry"`
	BackoffInitial time.Duration `yaml:"backoff_initial"`
	BackoffMax     time.Duration `yaml:"backoff_max"`
}

// Manager converts the configuration to connection.Config. Loggers are
// left for the caller to set.
func (c ConnectionConfig) Manager() connection.Config {
	backoff := connection.DefaultBackoffConfig()
	backoff.Initial = c.BackoffInitial
	backoff.Max = c.BackoffMax
	return connection.Config{
		ConnectTimeout: c.Timeout,
		MaxRetry:       c.MaxRetry,
		Backoff:        backoff,
	}
}

// StorageConfig selects the key-value engine.
type StorageConfig struct {
	Engine string `yaml:"engine"`

	// Path of the store. Empty uses the application data directory.
	Path string `yaml:"path"`
}

// DiscoveryConfig configures mDNS advertisement.
type DiscoveryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interface string        `yaml:"interface"`
	TTL       time.Duration `yaml:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"` // empty = stderr

	// Trace is the path of the protocol event trace. Empty disables it.
	Trace string `yaml:"trace"`

	// TraceMaxSize bounds the trace file in bytes before it is rotated.
	// 0 means unbounded.
	TraceMaxSize int64 `yaml:"trace_max_size"`
}

// DefaultTraceMaxSize keeps a trace plus its backup within 2 MiB.
const DefaultTraceMaxSize = 1 << 20

// SimulatorConfig describes the networks visible to the simulated radio.
type SimulatorConfig struct {
	AssociationDelay time.Duration      `yaml:"association_delay"`
	Networks         []SimulatedNetwork `yaml:"networks"`
}

// SimulatedNetwork is one network known to the simulated radio.
type SimulatedNetwork struct {
	Name        string `yaml:"name"`
	Secret      string `yaml:"secret"`
	Address     string `yaml:"address"`
	Unreachable bool   `yaml:"unreachable"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.RateLimitPerSec < 0 {
		errs = append(errs, errors.New("server.rate_limit_per_sec must not be negative"))
	}
	if c.Server.RateLimitBurst < 0 {
		errs = append(errs, errors.New("server.rate_limit_burst must not be negative"))
	}

	// Broadcast
	if bc, err := c.Broadcast.Netif(); err != nil {
		errs = append(errs, err)
	} else if err := bc.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("broadcast: %w", err))
	}

	// Connection
	if c.Connection.Timeout <= 0 {
		errs = append(errs, errors.New("connection.timeout must be positive"))
	}
	if c.Connection.MaxRetry < 1 {
		errs = append(errs, errors.New("connection.max_retry must be positive"))
	}
	if c.Connection.BackoffInitial <= 0 || c.Connection.BackoffMax < c.Connection.BackoffInitial {
		errs = append(errs, errors.New("connection backoff must satisfy 0 < backoff_initial <= backoff_max"))
	}

	// Storage
	switch c.Storage.Engine {
	case EngineFile, EngineSQLite, EngineMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.engine: %q", c.Storage.Engine))
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level: %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format: %q", c.Log.Format))
	}
	if c.Log.TraceMaxSize != 0 && c.Log.TraceMaxSize < log.MaxEventSize {
		errs = append(errs, fmt.Errorf("log.trace_max_size must be 0 or at least %d bytes", log.MaxEventSize))
	}

	// Simulator
	for i, n := range c.Simulator.Networks {
		if err := (credential.Credential{Name: n.Name, Secret: n.Secret}).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("simulator.networks[%d]: %w", i, err))
		}
		if n.Address != "" {
			if _, err := netip.ParseAddr(n.Address); err != nil {
				errs = append(errs, fmt.Errorf("simulator.networks[%d].address: %w", i, err))
			}
		}
	}

	return errors.Join(errs...)
}

// Default returns the default configuration.
func Default() *Config {
	bc := connection.DefaultBroadcastConfig()
	backoff := connection.DefaultBackoffConfig()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            provisioning.DefaultPort,
			ServeAlways:     true,
			RateLimitPerSec: provisioning.DefaultMessageRate,
			RateLimitBurst:  provisioning.DefaultMessageBurst,
		},
		Broadcast: BroadcastConfig{
			SSID:       bc.SSID,
			Passphrase: bc.Passphrase,
			Channel:    bc.Channel,
			MaxClients: bc.MaxClients,
			Address:    bc.Address.String(),
			Gateway:    bc.Gateway.String(),
		},
		Connection: ConnectionConfig{
			Timeout:        connection.DefaultConnectTimeout,
			MaxRetry:       connection.MaxRetry,
			BackoffInitial: backoff.Initial,
			BackoffMax:     backoff.Max,
		},
		Storage: StorageConfig{
			Engine: EngineFile,
		},
		Discovery: DiscoveryConfig{
			Enabled: true,
			TTL:     discovery.DefaultTTL,
		},
		Log: LogConfig{
			Level:        "info",
			Format:       "text",
			TraceMaxSize: DefaultTraceMaxSize,
		},
		Simulator: SimulatorConfig{
			AssociationDelay: netif.DefaultAssociationDelay,
		},
	}
}
