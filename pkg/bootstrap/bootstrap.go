package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wifiprov/wifiprov-go/pkg/connection"
	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/discovery"
	"github.com/wifiprov/wifiprov-go/pkg/log"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
	"github.com/wifiprov/wifiprov-go/pkg/persistence"
	"github.com/wifiprov/wifiprov-go/pkg/provisioning"
)

// Errors.
var (
	ErrAlreadyStarted = errors.New("device already started")
	ErrNoStore        = errors.New("credential store is required")
	ErrNoLink         = errors.New("link manager is required")
)

// CredentialStore is the durable credential record.
type CredentialStore interface {
	Init() error
	Read() (credential.Credential, error)
	Write(c credential.Credential) error
}

// Link joins networks and runs the broadcast network.
type Link interface {
	provisioning.Connector
	StartBroadcastMode(cfg netif.BroadcastConfig) error
}

// Mode is the device's network role after startup.
type Mode uint8

const (
	// ModeIdle is the state before Start and after Stop.
	ModeIdle Mode = iota

	// ModeStation means the device joined a network.
	ModeStation

	// ModeBroadcast means the device runs its own network and waits to be
	// provisioned.
	ModeBroadcast
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeStation:
		return "STATION"
	case ModeBroadcast:
		return "BROADCAST"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Device.
type Config struct {
	Store CredentialStore
	Link  Link

	// Broadcast is the soft-AP configuration. Zero uses
	// connection.DefaultBroadcastConfig().
	Broadcast netif.BroadcastConfig

	// ServerAddress is the provisioning listen address. Empty uses the
	// default port on all interfaces.
	ServerAddress string

	// ServeAlways keeps the provisioning server running when stored
	// credentials worked.
	ServeAlways bool

	// MessageRate and MessageBurst are passed to the server.
	MessageRate  rate.Limit
	MessageBurst int

	// Advertiser publishes the provisioning service in broadcast mode.
	// Nil disables advertisement.
	Advertiser discovery.Advertiser

	// OnProvisioned is called after a peer's credentials were applied and
	// saved.
	OnProvisioned func(credential.Credential)

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// EventLogger receives protocol events. Nil disables capture.
	EventLogger log.Logger
}

// Device runs the startup decision and owns the provisioning server.
type Device struct {
	config Config
	logger *slog.Logger
	events log.Logger

	mu     sync.Mutex
	mode   Mode
	active credential.Credential
	server *provisioning.Server
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a device.
func New(config Config) (*Device, error) {
	if config.Store == nil {
		return nil, ErrNoStore
	}
	if config.Link == nil {
		return nil, ErrNoLink
	}
	if config.Broadcast == (netif.BroadcastConfig{}) {
		config.Broadcast = connection.DefaultBroadcastConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{
		config: config,
		logger: logger.With("component", "bootstrap"),
		events: log.OrNoop(config.EventLogger),
	}, nil
}

// Mode returns the current network role.
func (d *Device) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Active returns the credentials of the joined network in station mode.
func (d *Device) Active() (credential.Credential, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active, d.mode == ModeStation
}

// ServerAddr returns the provisioning server's address, or nil if it is
// not running.
func (d *Device) ServerAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.server == nil {
		return nil
	}
	return d.server.Addr()
}

// Start initializes storage and brings the device up. It returns an error
// wrapping persistence.ErrStorageFatal if the store cannot be used, or an
// error if neither station nor broadcast mode could be entered.
func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.ctx != nil {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	runCtx := d.ctx
	d.mu.Unlock()

	if err := d.config.Store.Init(); err != nil {
		d.logger.Error("credential store unusable", "error", err)
		d.reset()
		return fmt.Errorf("init credential store: %w", err)
	}

	stored, err := d.config.Store.Read()
	switch {
	case err == nil:
		d.logger.Info("found stored credentials, attempting to connect", "name", stored.Name)
		active, connErr := d.config.Link.Connect(runCtx, stored.Name, stored.Secret)
		if connErr == nil {
			d.logger.Info("connected to stored network", "name", active.Name)
			d.setMode(ModeStation, active, "stored credentials")
			if d.config.ServeAlways {
				return d.startServer()
			}
			return nil
		}
		d.logger.Warn("stored network unreachable, switching to broadcast mode", "name", stored.Name, "error", connErr)
	case errors.Is(err, persistence.ErrNotFound):
		d.logger.Info("no stored credentials, switching to broadcast mode")
	default:
		d.logger.Warn("stored credentials unreadable, switching to broadcast mode", "error", err)
	}

	if err := d.enterBroadcast(); err != nil {
		d.reset()
		return err
	}
	return d.startServer()
}

// Stop withdraws the advertisement and stops the provisioning server.
// The link is left as is; its owner closes it.
func (d *Device) Stop() error {
	d.mu.Lock()
	server := d.server
	cancel := d.cancel
	d.server = nil
	d.mu.Unlock()

	if cancel == nil {
		return nil
	}

	var errs []error
	if d.config.Advertiser != nil {
		errs = append(errs, d.config.Advertiser.Stop())
	}
	if server != nil {
		errs = append(errs, server.Stop())
	}
	d.reset()
	d.setMode(ModeIdle, credential.Credential{}, "stopped")
	return errors.Join(errs...)
}

func (d *Device) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx, d.cancel = nil, nil
}

// enterBroadcast starts the soft-AP and, once the server is listening,
// advertises the provisioning service. Advertisement failures are logged
// only.
func (d *Device) enterBroadcast() error {
	if err := d.config.Link.StartBroadcastMode(d.config.Broadcast); err != nil {
		d.logger.Error("broadcast mode failed", "error", err)
		return fmt.Errorf("start broadcast mode: %w", err)
	}
	d.setMode(ModeBroadcast, credential.Credential{}, d.config.Broadcast.SSID)
	d.advertise()
	return nil
}

func (d *Device) advertise() {
	if d.config.Advertiser == nil {
		return
	}

	d.mu.Lock()
	ctx := d.ctx
	var port uint16
	if d.server != nil {
		if addr, ok := d.server.Addr().(*net.TCPAddr); ok {
			port = uint16(addr.Port)
		}
	}
	d.mu.Unlock()
	if ctx == nil || port == 0 {
		return
	}

	info := &discovery.ServiceInfo{BroadcastName: d.config.Broadcast.SSID, Port: port}
	if err := d.config.Advertiser.Advertise(ctx, info); err != nil {
		d.logger.Warn("service advertisement failed", "error", err)
	}
}

func (d *Device) startServer() error {
	server, err := provisioning.NewServer(provisioning.ServerConfig{
		Address:      d.config.ServerAddress,
		Connector:    d.config.Link,
		Store:        d.config.Store,
		MessageRate:  d.config.MessageRate,
		MessageBurst: d.config.MessageBurst,
		OnAttempt:    d.onAttempt,
		Logger:       d.config.Logger,
		EventLogger:  d.config.EventLogger,
	})
	if err != nil {
		d.reset()
		return err
	}

	d.mu.Lock()
	ctx := d.ctx
	d.mu.Unlock()

	if err := server.Start(ctx); err != nil {
		d.logger.Error("provisioning server failed", "error", err)
		d.reset()
		return fmt.Errorf("start provisioning server: %w", err)
	}

	d.mu.Lock()
	d.server = server
	mode := d.mode
	d.mu.Unlock()

	// Advertise once the bound port is known.
	if mode == ModeBroadcast {
		d.advertise()
	}
	return nil
}

// onAttempt runs after every provisioning attempt, before the peer gets
// its status line.
func (d *Device) onAttempt(result provisioning.AttemptResult) {
	if result.ConnectErr != nil {
		d.logger.Info("provisioning attempt failed, restoring broadcast mode")
		if err := d.enterBroadcast(); err != nil {
			d.logger.Error("could not restore broadcast mode", "error", err)
		}
		return
	}

	if d.config.Advertiser != nil {
		if err := d.config.Advertiser.Stop(); err != nil {
			d.logger.Warn("failed to withdraw advertisement", "error", err)
		}
	}
	d.setMode(ModeStation, result.Credential, "provisioned")

	if result.StoreErr == nil && d.config.OnProvisioned != nil {
		d.config.OnProvisioned(result.Credential)
	}
}

func (d *Device) setMode(mode Mode, active credential.Credential, reason string) {
	d.mu.Lock()
	old := d.mode
	d.mode = mode
	d.active = active
	d.mu.Unlock()

	if old == mode {
		return
	}
	d.logger.Info("device mode changed", "from", old.String(), "to", mode.String())
	d.events.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionNone,
		Layer:     log.LayerLink,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDevice,
			OldState: old.String(),
			NewState: mode.String(),
			Reason:   reason,
		},
	})
}
