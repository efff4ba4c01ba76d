package netif

import (
	"errors"
	"fmt"
	"net/netip"
)

// Driver errors.
var (
	ErrNotStarted    = errors.New("interface not started")
	ErrWrongMode     = errors.New("interface in wrong mode")
	ErrInvalidConfig = errors.New("invalid interface configuration")
)

// Driver buffer sizes for station configuration.
const (
	StationNameSize   = 32
	StationSecretSize = 64
)

// EventType identifies a driver notification.
type EventType uint8

const (
	// EventStationStarted is sent once the station interface is up.
	EventStationStarted EventType = iota

	// EventStationDisconnected is sent when association fails or is lost.
	EventStationDisconnected

	// EventAddressAcquired is sent when the station obtained an IP address.
	EventAddressAcquired
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventStationStarted:
		return "STA_START"
	case EventStationDisconnected:
		return "STA_DISCONNECTED"
	case EventAddressAcquired:
		return "STA_GOT_IP"
	default:
		return "UNKNOWN"
	}
}

// Event is a driver notification.
type Event struct {
	Type EventType

	// Addr is set for EventAddressAcquired.
	Addr netip.Addr

	// Reason is an optional driver-specific disconnect reason.
	Reason string
}

// Mode is the radio operating mode.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeStation
	ModeBroadcast
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeStation:
		return "STA"
	case ModeBroadcast:
		return "AP"
	default:
		return "UNKNOWN"
	}
}

// BroadcastConfig configures the soft access point.
type BroadcastConfig struct {
	SSID       string
	Passphrase string
	Channel    uint8
	MaxClients int

	// Address is the access point's own address and subnet.
	Address netip.Prefix

	// Gateway is announced to clients by the address-assignment service.
	Gateway netip.Addr
}

// Validate checks the configuration against driver limits.
func (c BroadcastConfig) Validate() error {
	switch {
	case c.SSID == "" || len(c.SSID) >= StationNameSize:
		return fmt.Errorf("%w: ssid length", ErrInvalidConfig)
	case c.Passphrase != "" && (len(c.Passphrase) < 8 || len(c.Passphrase) >= StationSecretSize):
		return fmt.Errorf("%w: passphrase must be 8-63 bytes", ErrInvalidConfig)
	case c.MaxClients < 1:
		return fmt.Errorf("%w: max clients must be positive", ErrInvalidConfig)
	case !c.Address.IsValid() || !c.Address.Addr().Is4():
		return fmt.Errorf("%w: address must be an IPv4 prefix", ErrInvalidConfig)
	case !c.Gateway.IsValid():
		return fmt.Errorf("%w: gateway required", ErrInvalidConfig)
	}
	return nil
}

// Interface is the radio driver.
type Interface interface {
	// ConfigureStation sets station mode with the given credentials.
	ConfigureStation(name, secret string) error

	// StationConfig returns the active station credentials as stored by the
	// driver, which may differ from what was configured.
	StationConfig() (name, secret string, err error)

	// RequestConnect asks the driver to associate with the configured network.
	RequestConnect() error

	// ConfigureBroadcast sets access point mode and starts address assignment.
	ConfigureBroadcast(cfg BroadcastConfig) error

	// Start brings the interface up in its configured mode.
	Start() error

	// Stop brings the interface down.
	Stop() error

	// Events returns the driver's notification stream.
	Events() <-chan Event
}
