package netif

import (
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"
)

// Simulator defaults.
const (
	DefaultAssociationDelay = 50 * time.Millisecond
	DefaultEventBuffer      = 16
)

// Network is a station-mode network known to the Simulator.
type Network struct {
	// Secret is the passphrase; empty for an open network.
	Secret string

	// Addr is handed out on association. Zero picks one from 10.0.0.0/24.
	Addr netip.Addr

	// Unreachable networks never associate, whatever the secret.
	Unreachable bool
}

// SimulatorConfig configures a Simulator.
type SimulatorConfig struct {
	// AssociationDelay is the time between RequestConnect and its outcome.
	AssociationDelay time.Duration

	// EventBuffer is the capacity of the Events channel.
	EventBuffer int

	// Logger for driver-level messages. Nil uses slog.Default().
	Logger *slog.Logger
}

// Simulator is an in-process radio driver. Networks are registered with
// AddNetwork; association succeeds when the configured name exists, is
// reachable and the secret matches.
type Simulator struct {
	mu sync.Mutex

	config   SimulatorConfig
	logger   *slog.Logger
	networks map[string]Network

	mode      Mode
	started   bool
	staName   string
	staSecret string
	broadcast BroadcastConfig
	dhcpUp    bool

	// generation invalidates in-flight association results on Stop.
	generation      uint64
	connectRequests int
	nextHost        byte

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewSimulator creates a simulated radio.
func NewSimulator(config SimulatorConfig) *Simulator {
	if config.AssociationDelay <= 0 {
		config.AssociationDelay = DefaultAssociationDelay
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultEventBuffer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Simulator{
		config:   config,
		logger:   logger.With("component", "netif-sim"),
		networks: make(map[string]Network),
		nextHost: 10,
		events:   make(chan Event, config.EventBuffer),
		done:     make(chan struct{}),
	}
}

// AddNetwork registers or replaces a network.
func (s *Simulator) AddNetwork(name string, n Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks[name] = n
}

// RemoveNetwork unregisters a network.
func (s *Simulator) RemoveNetwork(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.networks, name)
}

// ConfigureStation stores the station credentials the way the driver does:
// copied into fixed-size fields, truncating anything longer.
func (s *Simulator) ConfigureStation(name, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeStation
	s.staName = truncate(name, StationNameSize)
	s.staSecret = truncate(secret, StationSecretSize)
	s.dhcpUp = false
	return nil
}

// StationConfig returns the stored station credentials.
func (s *Simulator) StationConfig() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeStation {
		return "", "", ErrWrongMode
	}
	return s.staName, s.staSecret, nil
}

// RequestConnect starts an association attempt.
func (s *Simulator) RequestConnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	if s.mode != ModeStation {
		return ErrWrongMode
	}

	s.connectRequests++
	gen := s.generation
	name, secret := s.staName, s.staSecret
	time.AfterFunc(s.config.AssociationDelay, func() {
		s.finishAssociation(gen, name, secret)
	})
	return nil
}

func (s *Simulator) finishAssociation(gen uint64, name, secret string) {
	s.mu.Lock()
	if gen != s.generation || !s.started || s.mode != ModeStation {
		s.mu.Unlock()
		return
	}

	n, known := s.networks[name]
	var ev Event
	switch {
	case !known:
		ev = Event{Type: EventStationDisconnected, Reason: "NO_AP_FOUND"}
	case n.Unreachable:
		ev = Event{Type: EventStationDisconnected, Reason: "BEACON_TIMEOUT"}
	case n.Secret != secret:
		ev = Event{Type: EventStationDisconnected, Reason: "AUTH_FAIL"}
	default:
		addr := n.Addr
		if !addr.IsValid() {
			addr = netip.AddrFrom4([4]byte{10, 0, 0, s.nextHost})
			s.nextHost++
		}
		ev = Event{Type: EventAddressAcquired, Addr: addr}
	}
	s.mu.Unlock()

	s.emit(ev)
}

// ConfigureBroadcast switches to access point mode.
func (s *Simulator) ConfigureBroadcast(cfg BroadcastConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeBroadcast
	s.broadcast = cfg
	s.dhcpUp = true
	return nil
}

// Start brings the interface up.
func (s *Simulator) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModeStation:
		s.started = true
		gen := s.generation
		go func() {
			s.mu.Lock()
			stale := gen != s.generation
			s.mu.Unlock()
			if !stale {
				s.emit(Event{Type: EventStationStarted})
			}
		}()
	case ModeBroadcast:
		s.started = true
		s.logger.Info("access point up",
			"ssid", s.broadcast.SSID,
			"address", s.broadcast.Address.String(),
			"channel", s.broadcast.Channel,
			"max_clients", s.broadcast.MaxClients,
		)
	default:
		return fmt.Errorf("%w: no mode configured", ErrWrongMode)
	}
	return nil
}

// Stop brings the interface down and discards in-flight association results.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
	s.generation++
	return nil
}

// Events returns the notification stream.
func (s *Simulator) Events() <-chan Event {
	return s.events
}

// DropLink simulates loss of an established station link.
func (s *Simulator) DropLink(reason string) {
	s.mu.Lock()
	active := s.started && s.mode == ModeStation
	s.mu.Unlock()

	if active {
		s.emit(Event{Type: EventStationDisconnected, Reason: reason})
	}
}

// Close stops event delivery. Pending emitters return.
func (s *Simulator) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Mode returns the configured mode.
func (s *Simulator) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// IsStarted reports whether the interface is up.
func (s *Simulator) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// ConnectRequests returns how many association attempts were requested.
func (s *Simulator) ConnectRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectRequests
}

// Broadcast returns the access point configuration and whether the
// address-assignment service is running.
func (s *Simulator) Broadcast() (BroadcastConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broadcast, s.mode == ModeBroadcast && s.dhcpUp
}

func (s *Simulator) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func truncate(v string, size int) string {
	if len(v) > size {
		return v[:size]
	}
	return v
}

// Compile-time interface satisfaction check.
var _ Interface = (*Simulator)(nil)
