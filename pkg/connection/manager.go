package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/log"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
)

// Attempt limits.
const (
	// MaxRetry is the number of reassociation requests per attempt.
	MaxRetry = 5

	// DefaultConnectTimeout bounds a single Connect call.
	DefaultConnectTimeout = 30 * time.Second
)

// Broadcast mode parameters.
const (
	BroadcastSSID       = "ESP32_C6_AP"
	BroadcastPassphrase = "12345678"
	BroadcastChannel    = 1
	BroadcastMaxClients = 1
)

// Connection errors.
var (
	ErrConnectFailed    = errors.New("connection failed")
	ErrConnectTimeout   = errors.New("connection timeout")
	ErrRetriesExhausted = errors.New("connection retries exhausted")
	ErrBusy             = errors.New("connection attempt in progress")
	ErrClosed           = errors.New("connection manager closed")
)

// State represents the station link state.
type State uint8

const (
	// StateIdle indicates no attempt has been made yet.
	StateIdle State = iota

	// StateConnecting indicates an attempt is in progress.
	StateConnecting

	// StateConnected indicates the station holds an address.
	StateConnected

	// StateReconnecting indicates an established link dropped and
	// reassociation is in progress.
	StateReconnecting

	// StateFailed indicates the last attempt ended without a link.
	StateFailed

	// StateClosed indicates the manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateFailed:
		return "FAILED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// AttemptStatus is the outcome of a connection attempt.
type AttemptStatus uint8

const (
	AttemptPending AttemptStatus = iota
	AttemptConnected
	AttemptFailed
)

// String returns the status name.
func (s AttemptStatus) String() string {
	switch s {
	case AttemptPending:
		return "PENDING"
	case AttemptConnected:
		return "CONNECTED"
	case AttemptFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Attempt describes the most recent Connect call.
type Attempt struct {
	Target      credential.Credential
	RetriesUsed int
	Status      AttemptStatus
}

// Config configures a Manager.
type Config struct {
	// ConnectTimeout bounds each Connect call. Zero selects DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// MaxRetry is the reassociation budget per attempt. Zero selects MaxRetry.
	MaxRetry int

	// Backoff paces reassociation requests. The zero value selects the defaults.
	Backoff BackoffConfig

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// EventLogger receives link state changes. Nil disables capture.
	EventLogger log.Logger
}

// Manager drives a network interface through connection attempts.
//
// A single goroutine consumes the interface's notifications. The attempt
// outcome is published through an EventGroup that Connect waits on.
type Manager struct {
	mu sync.Mutex

	iface   netif.Interface
	config  Config
	logger  *slog.Logger
	events  log.Logger
	backoff *Backoff
	bits    *EventGroup

	state   State
	retries int
	attempt Attempt
	addr    netip.Addr

	// generation invalidates pending reassociation timers.
	generation uint64

	// attemptMu admits one Connect or StartBroadcastMode at a time.
	attemptMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onStateChange func(oldState, newState State)
}

// NewManager creates a manager and starts consuming iface's notifications.
// Close must be called to stop the event loop.
func NewManager(iface netif.Interface, config Config) *Manager {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.MaxRetry <= 0 {
		config.MaxRetry = MaxRetry
	}
	if config.Backoff == (BackoffConfig{}) {
		config.Backoff = DefaultBackoffConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		iface:   iface,
		config:  config,
		logger:  logger.With("component", "connection"),
		events:  log.OrNoop(config.EventLogger),
		backoff: NewBackoffWithConfig(config.Backoff),
		bits:    NewEventGroup(),
		state:   StateIdle,
		ctx:     ctx,
		cancel:  cancel,
	}

	m.wg.Add(1)
	go m.eventLoop()
	return m
}

// State returns the current link state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RetryCount returns the reassociation requests made since the counter
// was last reset.
func (m *Manager) RetryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retries
}

// LastAttempt returns the most recent attempt.
func (m *Manager) LastAttempt() Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt
}

// Address returns the station address, if connected.
func (m *Manager) Address() (netip.Addr, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr, m.state == StateConnected
}

// OnStateChange sets a callback for state changes. It is called without
// internal locks held.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// Connect attempts to join the named network, blocking until the station
// holds an address, the retry budget is spent or the timeout elapses. On
// success it returns the credentials the interface actually applied. ctx
// only ends the wait early for shutdown.
func (m *Manager) Connect(ctx context.Context, name, secret string) (credential.Credential, error) {
	target := credential.Credential{Name: name, Secret: secret}
	if err := target.Validate(); err != nil {
		return credential.Credential{}, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}

	if !m.attemptMu.TryLock() {
		return credential.Credential{}, ErrBusy
	}
	defer m.attemptMu.Unlock()

	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return credential.Credential{}, ErrClosed
	}
	m.generation++
	m.retries = 0
	m.addr = netip.Addr{}
	m.attempt = Attempt{Target: target, Status: AttemptPending}
	m.backoff.Reset()
	m.bits.Clear(BitConnected | BitFailed)
	notify := m.setStateLocked(StateConnecting, "connect "+target.String())
	m.mu.Unlock()
	notify()

	m.logger.Info("connecting", "network", target.Name, "timeout", m.config.ConnectTimeout)

	if err := m.configureStation(target); err != nil {
		return credential.Credential{}, m.fail(fmt.Errorf("%w: %w", ErrConnectFailed, err))
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()
	bits, err := m.bits.Wait(waitCtx, BitConnected|BitFailed)

	switch {
	case bits&BitConnected != 0:
		return m.succeed(target), nil
	case m.State() == StateClosed:
		return credential.Credential{}, m.fail(fmt.Errorf("%w: %w", ErrConnectFailed, ErrClosed))
	case bits&BitFailed != 0:
		return credential.Credential{}, m.fail(fmt.Errorf("%w: %w", ErrConnectFailed, ErrRetriesExhausted))
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return credential.Credential{}, m.fail(fmt.Errorf("%w: %w after %s", ErrConnectFailed, ErrConnectTimeout, m.config.ConnectTimeout))
	default:
		return credential.Credential{}, m.fail(fmt.Errorf("%w: %w", ErrConnectFailed, err))
	}
}

func (m *Manager) configureStation(target credential.Credential) error {
	if err := m.iface.Stop(); err != nil {
		return fmt.Errorf("stop interface: %w", err)
	}
	if err := m.iface.ConfigureStation(target.Name, target.Secret); err != nil {
		return fmt.Errorf("configure station: %w", err)
	}
	if err := m.iface.Start(); err != nil {
		return fmt.Errorf("start interface: %w", err)
	}
	return nil
}

// succeed reads back the applied configuration and finalizes the attempt.
func (m *Manager) succeed(target credential.Credential) credential.Credential {
	active := target
	name, secret, err := m.iface.StationConfig()
	if err != nil {
		m.logger.Warn("could not read station config, using requested values", "error", err)
	} else {
		active = credential.Credential{
			Name:   credential.Sanitize(name),
			Secret: credential.Sanitize(secret),
		}
		if !active.Equal(target) {
			m.logger.Warn("interface normalized station credentials",
				"requested", target.String(),
				"applied", active.String(),
			)
		}
	}

	m.mu.Lock()
	m.attempt.Status = AttemptConnected
	addr := m.addr
	// The event loop has already moved the state to Connected unless the
	// link dropped again in between.
	m.mu.Unlock()

	m.logger.Info("connected", "network", active.Name, "addr", addr)
	return active
}

// fail stops the interface and finalizes the attempt.
func (m *Manager) fail(err error) error {
	if stopErr := m.iface.Stop(); stopErr != nil {
		m.logger.Warn("failed to stop interface", "error", stopErr)
	}

	m.mu.Lock()
	m.generation++
	m.attempt.Status = AttemptFailed
	m.attempt.RetriesUsed = m.retries
	notify := func() {}
	if m.state != StateClosed {
		notify = m.setStateLocked(StateFailed, err.Error())
	}
	m.mu.Unlock()
	notify()

	m.logger.Warn("connection attempt failed", "error", err)
	m.events.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionNone,
		Layer:     log.LayerLink,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerLink,
			Message: err.Error(),
			Context: "connect",
		},
	})
	return err
}

// StartBroadcastMode brings up the access point described by cfg.
func (m *Manager) StartBroadcastMode(cfg netif.BroadcastConfig) error {
	if !m.attemptMu.TryLock() {
		return ErrBusy
	}
	defer m.attemptMu.Unlock()

	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.generation++
	m.mu.Unlock()

	if err := m.iface.Stop(); err != nil {
		return fmt.Errorf("stop interface: %w", err)
	}
	if err := m.iface.ConfigureBroadcast(cfg); err != nil {
		return fmt.Errorf("configure broadcast: %w", err)
	}
	if err := m.iface.Start(); err != nil {
		return fmt.Errorf("start interface: %w", err)
	}

	m.logger.Info("broadcast mode started",
		"ssid", cfg.SSID,
		"address", cfg.Address.String(),
		"channel", cfg.Channel,
	)
	m.events.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionNone,
		Layer:     log.LayerLink,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDevice,
			NewState: "BROADCAST",
			Reason:   cfg.SSID,
		},
	})
	return nil
}

// DefaultBroadcastConfig returns the fixed access point parameters.
func DefaultBroadcastConfig() netif.BroadcastConfig {
	gw := netip.AddrFrom4([4]byte{192, 168, 1, 1})
	return netif.BroadcastConfig{
		SSID:       BroadcastSSID,
		Passphrase: BroadcastPassphrase,
		Channel:    BroadcastChannel,
		MaxClients: BroadcastMaxClients,
		Address:    netip.PrefixFrom(gw, 24),
		Gateway:    gw,
	}
}

// Close stops the event loop. A pending Connect returns with an error.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return nil
	}
	m.generation++
	notify := m.setStateLocked(StateClosed, "")
	m.mu.Unlock()
	notify()

	m.cancel()
	m.bits.Set(BitFailed)
	m.wg.Wait()
	return nil
}

func (m *Manager) eventLoop() {
	defer m.wg.Done()

	events := m.iface.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(ev)
		}
	}
}

func (m *Manager) handleEvent(ev netif.Event) {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	m.logger.Debug("interface event", "event", ev.Type.String(), "state", state.String())

	switch ev.Type {
	case netif.EventStationStarted:
		if state == StateConnecting || state == StateReconnecting {
			if err := m.iface.RequestConnect(); err != nil {
				m.logger.Warn("association request failed", "error", err)
			}
		}

	case netif.EventStationDisconnected:
		m.handleDisconnect(ev.Reason)

	case netif.EventAddressAcquired:
		m.mu.Lock()
		if m.state != StateConnecting && m.state != StateReconnecting {
			m.mu.Unlock()
			m.logger.Debug("ignoring stale address", "addr", ev.Addr)
			return
		}
		if m.state == StateConnecting {
			m.attempt.RetriesUsed = m.retries
		}
		m.retries = 0
		m.backoff.Reset()
		m.addr = ev.Addr
		notify := m.setStateLocked(StateConnected, "address "+ev.Addr.String())
		m.bits.Clear(BitFailed)
		m.bits.Set(BitConnected)
		m.mu.Unlock()
		notify()
	}
}

func (m *Manager) handleDisconnect(reason string) {
	m.mu.Lock()

	switch m.state {
	case StateConnected:
		m.addr = netip.Addr{}
		m.bits.Clear(BitConnected)
		notify := m.setStateLocked(StateReconnecting, reason)
		m.scheduleRetryLocked(reason)
		m.mu.Unlock()
		notify()

	case StateConnecting, StateReconnecting:
		if m.retries < m.config.MaxRetry {
			m.scheduleRetryLocked(reason)
			m.mu.Unlock()
			return
		}
		m.bits.Clear(BitConnected)
		m.bits.Set(BitFailed)
		notify := func() {}
		if m.state == StateReconnecting {
			// No Connect call is waiting; finalize here.
			notify = m.setStateLocked(StateFailed, "retries exhausted")
		}
		m.mu.Unlock()
		notify()
		m.logger.Warn("retries exhausted", "retries", m.config.MaxRetry, "reason", reason)

	default:
		m.mu.Unlock()
	}
}

// scheduleRetryLocked consumes one retry and requests reassociation after
// the backoff delay. Must be called with m.mu held.
func (m *Manager) scheduleRetryLocked(reason string) {
	m.retries++
	delay := m.backoff.Next()
	gen := m.generation
	attempt := m.retries

	m.logger.Info("retrying association",
		"attempt", attempt,
		"max", m.config.MaxRetry,
		"delay", delay,
		"reason", reason,
	)

	time.AfterFunc(delay, func() {
		m.mu.Lock()
		live := gen == m.generation && (m.state == StateConnecting || m.state == StateReconnecting)
		m.mu.Unlock()
		if !live {
			return
		}
		if err := m.iface.RequestConnect(); err != nil {
			m.logger.Warn("association request failed", "attempt", attempt, "error", err)
		}
	})
}

// setStateLocked changes state and returns a function that delivers the
// notifications; call it after releasing m.mu.
func (m *Manager) setStateLocked(newState State, reason string) func() {
	oldState := m.state
	if oldState == newState {
		return func() {}
	}
	m.state = newState
	cb := m.onStateChange

	return func() {
		m.events.Log(log.Event{
			Timestamp: time.Now(),
			Direction: log.DirectionNone,
			Layer:     log.LayerLink,
			Category:  log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityLink,
				OldState: oldState.String(),
				NewState: newState.String(),
				Reason:   reason,
			},
		})
		if cb != nil {
			cb(oldState, newState)
		}
	}
}
