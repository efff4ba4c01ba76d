package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/wifiprov/wifiprov-go/pkg/provisioning"
)

func newShellCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Send raw messages to a device interactively",
		Long: `Open a connection to a device and send each line typed.

  name <value>     send {"wifi_name":"<value>"}
  secret <value>   send {"wifi_password":"<value>"}
  quit             close the connection

Any other line is sent as typed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			target, err := opts.resolveAddr(ctx, addr, 0)
			if err != nil {
				return err
			}
			client, err := provisioning.Dial(ctx, target, opts.clientConfig(opts.logger(cmd.ErrOrStderr())))
			if err != nil {
				return err
			}
			defer client.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          target + "> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			return runShell(ctx, client, rl.Readline, rl.Stdout())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Device address (host or host:port)")

	return cmd
}

// runShell sends lines from next until it returns an error or the user
// quits. EOF and interrupts end the session without error.
func runShell(ctx context.Context, client *provisioning.Client, next func() (string, error), w io.Writer) error {
	for {
		line, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		var msg []byte
		switch strings.ToLower(cmd) {
		case "quit", "exit", "q":
			return nil
		case "name":
			msg, err = provisioning.NameMessage(arg)
		case "secret":
			msg, err = provisioning.SecretMessage(arg)
		default:
			msg = []byte(line)
		}
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}

		resp, err := client.Send(ctx, msg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "< %s\n", resp)
	}
}
