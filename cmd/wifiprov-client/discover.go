package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wifiprov/wifiprov-go/pkg/discovery"
)

func newDiscoverCommand(opts *globalOptions) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List devices advertising the provisioning service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd.Context(), opts, wait, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", discovery.BrowseTimeout, "How long to browse")

	return cmd
}

func runDiscover(ctx context.Context, opts *globalOptions, wait time.Duration, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	browser := newBrowser(opts.browserConfig(wait))
	defer browser.Stop()

	results, err := browser.Browse(ctx)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	found := 0
	for svc := range results {
		found++
		v := svc.Version
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(w, "%-24s %-22s %-5s %s\n", svc.BroadcastName, serviceAddr(svc), v, strings.Join(svc.Addresses, ","))
	}

	if found == 0 {
		fmt.Fprintln(w, "No devices found")
	}
	return nil
}
