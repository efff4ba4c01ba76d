package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wifiprov/wifiprov-go/pkg/discovery"
	"github.com/wifiprov/wifiprov-go/pkg/provisioning"
	"github.com/wifiprov/wifiprov-go/pkg/version"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	logLevel     string
	iface        string
	replyTimeout time.Duration
}

// newBrowser is replaced in tests.
var newBrowser = func(config discovery.BrowserConfig) discovery.Browser {
	return discovery.NewMDNSBrowser(config)
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "wifiprov-client",
		Short: "Provision Wi-Fi credentials onto a device",
		Long: `wifiprov-client talks to devices running the provisioning service.
It finds them with DNS-SD and sends a network name and secret over TCP.`,
		Version:      version.Current,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.iface, "iface", "", "Network interface for discovery (default: all)")
	cmd.PersistentFlags().DurationVar(&opts.replyTimeout, "timeout", provisioning.DefaultReplyTimeout, "Time to wait for each device reply")

	cmd.AddCommand(newDiscoverCommand(opts))
	cmd.AddCommand(newProvisionCommand(opts))
	cmd.AddCommand(newShellCommand(opts))

	return cmd
}

func (o *globalOptions) logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *globalOptions) clientConfig(logger *slog.Logger) provisioning.ClientConfig {
	return provisioning.ClientConfig{
		ReplyTimeout: o.replyTimeout,
		Logger:       logger,
	}
}

func (o *globalOptions) browserConfig(wait time.Duration) discovery.BrowserConfig {
	return discovery.BrowserConfig{
		BrowseTimeout: wait,
		Interface:     o.iface,
		Logger:        o.logger(os.Stderr),
	}
}

// resolveAddr returns addr, or the address of the first device found when
// addr is empty.
func (o *globalOptions) resolveAddr(ctx context.Context, addr string, wait time.Duration) (string, error) {
	if addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return net.JoinHostPort(addr, strconv.Itoa(discovery.DefaultPort)), nil
		}
		return addr, nil
	}

	browser := newBrowser(o.browserConfig(wait))
	defer browser.Stop()

	svc, err := browser.FindFirst(ctx)
	if err != nil {
		return "", fmt.Errorf("no device found: %w", err)
	}
	if !version.CompatibleWithCurrent(svc.Version) {
		return "", fmt.Errorf("device %s speaks protocol %s, this client speaks %s", svc.BroadcastName, svc.Version, version.Current)
	}
	return serviceAddr(svc), nil
}

// serviceAddr picks a dialable address for a discovered service. IPv4
// addresses are preferred since devices in broadcast mode rarely route IPv6.
func serviceAddr(svc *discovery.Service) string {
	host := strings.TrimSuffix(svc.Host, ".")
	for _, a := range svc.Addresses {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			host = a
			break
		}
	}
	if host == "" && len(svc.Addresses) > 0 {
		host = svc.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(int(svc.Port)))
}
