package discovery

import (
	"errors"
	"time"
)

// Service constants.
const (
	// ServiceType is the DNS-SD service type of the provisioning server.
	ServiceType = "_wifiprov._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is advertised when ServiceInfo.Port is zero.
	DefaultPort = 3333

	// DefaultTTL is the DNS record TTL.
	DefaultTTL = 120 * time.Second

	// BrowseTimeout is the default duration of a browse.
	BrowseTimeout = 5 * time.Second

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyBroadcastName = "ap"
	TXTKeyPort          = "port"
	TXTKeyVersion       = "v"
)

// Errors.
var (
	ErrMissingRequired = errors.New("missing required field")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidVersion  = errors.New("invalid protocol version")
	ErrNotFound        = errors.New("service not found")
	ErrBrowseFailed    = errors.New("mDNS browse failed")
)

// ServiceInfo describes the service a device advertises.
type ServiceInfo struct {
	// BroadcastName is the soft-AP network name. It is also used as the
	// instance name.
	BroadcastName string

	// Port is the provisioning TCP port.
	Port uint16

	// Version is the protocol version. Empty advertises version.Current.
	Version string
}

// Validate checks the fields required for advertising.
func (i *ServiceInfo) Validate() error {
	if i.BroadcastName == "" {
		return ErrMissingRequired
	}
	return nil
}

// InstanceName returns the DNS-SD instance name for the service.
func (i *ServiceInfo) InstanceName() string {
	name := i.BroadcastName
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}

// Service is a provisioning server found by browsing.
type Service struct {
	InstanceName  string
	Host          string
	Port          uint16
	Addresses     []string
	BroadcastName string
	Version       string
}
