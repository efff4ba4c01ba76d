package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/discovery"
	"github.com/wifiprov/wifiprov-go/pkg/provisioning"
)

type provisionOptions struct {
	addr     string
	name     string
	password string
	wait     time.Duration
}

func newProvisionCommand(opts *globalOptions) *cobra.Command {
	po := &provisionOptions{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Send a network name and secret to a device",
		Long: `Send a network name and secret to a device and wait for it to join.
Without --addr the first device found by discovery is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context(), opts, po, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&po.addr, "addr", "", "Device address (host or host:port)")
	cmd.Flags().StringVar(&po.name, "name", "", "Network name")
	cmd.Flags().StringVar(&po.password, "password", "", "Network secret (empty for an open network)")
	cmd.Flags().DurationVar(&po.wait, "wait", discovery.BrowseTimeout, "How long to browse when --addr is not set")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runProvision(ctx context.Context, opts *globalOptions, po *provisionOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cred := credential.Credential{Name: po.name, Secret: po.password}
	if err := cred.Validate(); err != nil {
		return err
	}

	addr, err := opts.resolveAddr(ctx, po.addr, po.wait)
	if err != nil {
		return err
	}

	logger := opts.logger(errOut)
	client, err := provisioning.Dial(ctx, addr, opts.clientConfig(logger))
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintf(out, "Provisioning %s on %s\n", cred.Name, addr)
	resp, err := client.Provision(ctx, cred.Name, cred.Secret)
	if resp != "" {
		fmt.Fprintln(out, resp)
	}
	if err != nil {
		if errors.Is(err, provisioning.ErrNotConnected) {
			return fmt.Errorf("device could not join %s: check the name and secret", cred.Name)
		}
		return err
	}
	return nil
}
