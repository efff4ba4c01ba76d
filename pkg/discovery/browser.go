package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Browser finds provisioning servers.
type Browser interface {
	// Browse searches for provisioning servers. Services are aggregated by
	// instance name and each is emitted once. The channel is closed when
	// the context is cancelled.
	Browse(ctx context.Context) (<-chan *Service, error)

	// FindFirst returns the first service found, or ErrNotFound when the
	// browse ends without results.
	FindFirst(ctx context.Context) (*Service, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindFirst when the context has no deadline.
	// Default: 5 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
	}
}

// record is the part of a DNS-SD entry the browser consumes.
type record struct {
	Instance  string
	Host      string
	Port      int
	Text      []string
	Addresses []string
}

func recordFromEntry(entry *zeroconf.ServiceEntry) record {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return record{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Text:      entry.Text,
		Addresses: addrs,
	}
}

// browseFunc delivers added and removed records until ctx is done.
type browseFunc func(ctx context.Context, opts []zeroconf.ClientOption, added, removed chan<- record) error

func zeroconfBrowse(ctx context.Context, opts []zeroconf.ClientOption, added, removed chan<- record) error {
	entries := make(chan *zeroconf.ServiceEntry)
	gone := make(chan *zeroconf.ServiceEntry)

	go func() {
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				select {
				case added <- recordFromEntry(entry):
				case <-ctx.Done():
					return
				}
			case entry, ok := <-gone:
				if !ok {
					continue
				}
				select {
				case removed <- recordFromEntry(entry):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return zeroconf.Browse(ctx, ServiceType, Domain, entries, gone, opts...)
}

// MDNSBrowser implements Browser using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	browse browseFunc
	logger *slog.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MDNSBrowser{
		config: config,
		browse: zeroconfBrowse,
		logger: logger.With("component", "discovery"),
	}
}

// Browse searches for provisioning servers. If mDNS cannot be started the
// failure is logged and the channel is closed.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *Service, error) {
	out, _, err := b.start(ctx)
	return out, err
}

// start runs a browse. The returned func reports why mDNS failed, if it
// did; it is only meaningful once the channel is closed.
func (b *MDNSBrowser) start(ctx context.Context) (<-chan *Service, func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	out := make(chan *Service)
	added := make(chan record)
	removed := make(chan record)

	go func() {
		defer close(out)

		// Track services by instance name, aggregating addresses
		services := make(map[string]*Service)

		for {
			select {
			case rec := <-added:
				svc := serviceFromRecord(rec)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}

				services[svc.InstanceName] = svc
				emitted := *svc
				emitted.Addresses = append([]string(nil), svc.Addresses...)
				select {
				case out <- &emitted:
				case <-ctx.Done():
					return
				}

			case rec := <-removed:
				if existing, found := services[rec.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, rec.Addresses)
					if len(existing.Addresses) == 0 {
						delete(services, rec.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		failMu  sync.Mutex
		failure error
	)
	go func() {
		err := b.browse(ctx, b.browserOptions(), added, removed)
		if err == nil || ctx.Err() != nil {
			return
		}
		b.logger.Warn("mDNS browse failed", "interface", b.config.Interface, "error", err)
		failMu.Lock()
		failure = err
		failMu.Unlock()
		cancel()
	}()

	return out, func() error {
		failMu.Lock()
		defer failMu.Unlock()
		return failure
	}, nil
}

// FindFirst returns the first provisioning server found.
func (b *MDNSBrowser) FindFirst(ctx context.Context) (*Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, browseErr, err := b.start(ctx)
	if err != nil {
		return nil, err
	}

	svc, ok := <-results
	if !ok {
		if err := browseErr(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrowseFailed, err)
		}
		if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return svc, nil
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// serviceFromRecord converts a record to a Service, or nil if its TXT
// records do not describe a provisioning server.
func serviceFromRecord(rec record) *Service {
	info, err := DecodeTXT(StringsToTXTRecords(rec.Text))
	if err != nil {
		return nil
	}

	port := uint16(rec.Port)
	if info.Port != 0 {
		port = info.Port
	}

	return &Service{
		InstanceName:  rec.Instance,
		Host:          rec.Host,
		Port:          port,
		Addresses:     append([]string(nil), rec.Addresses...),
		BroadcastName: info.BroadcastName,
		Version:       info.Version,
	}
}

// mergeAddresses adds new addresses to existing, skipping duplicates.
func mergeAddresses(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range add {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses filters drop out of addresses.
func removeAddresses(addresses, drop []string) []string {
	toRemove := make(map[string]bool, len(drop))
	for _, addr := range drop {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
