// Package console provides the interactive command line of wifiprov-device.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/wifiprov/wifiprov-go/pkg/bootstrap"
	"github.com/wifiprov/wifiprov-go/pkg/connection"
	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/netif"
	"github.com/wifiprov/wifiprov-go/pkg/persistence"
)

// Target is what the console operates on.
type Target struct {
	Device    *bootstrap.Device
	Manager   *connection.Manager
	Simulator *netif.Simulator
	Store     *persistence.CredentialStore
}

// Console reads commands from the terminal.
type Console struct {
	rl  *readline.Instance
	out io.Writer
}

// New creates a console on the terminal.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "device> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

// Stderr returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stderr() io.Writer {
	if c.rl == nil {
		return os.Stderr
	}
	return c.rl.Stderr()
}

// Run starts the command loop. It calls cancel when the user quits.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, t *Target) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.Execute(t, line); quit {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line and reports whether the user asked to
// quit.
func (c *Console) Execute(t *Target, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "status", "s":
		c.cmdStatus(t)
	case "stored":
		c.cmdStored(t)
	case "add":
		c.cmdAdd(t, args)
	case "remove", "rm":
		c.cmdRemove(t, args)
	case "drop":
		c.cmdDrop(t, args)
	case "reset":
		c.cmdReset(t)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Device Commands:
  status               - Show device mode, link state and server address
  stored               - Show the stored credential (secret redacted)
  reset                - Clear the stored credential

  Simulated radio:
    add <name> [secret] - Make a network available
    remove <name>       - Make a network disappear
    drop [reason]       - Drop the current station link

  quit                 - Exit`)
}

func (c *Console) cmdStatus(t *Target) {
	fmt.Fprintf(c.out, "Mode:        %s\n", t.Device.Mode())
	fmt.Fprintf(c.out, "Link:        %s\n", t.Manager.State())
	if addr, ok := t.Manager.Address(); ok {
		fmt.Fprintf(c.out, "Address:     %s\n", addr)
	}
	if active, ok := t.Device.Active(); ok {
		fmt.Fprintf(c.out, "Network:     %s\n", active.Name)
	}
	fmt.Fprintf(c.out, "Retries:     %d\n", t.Manager.RetryCount())
	if addr := t.Device.ServerAddr(); addr != nil {
		fmt.Fprintf(c.out, "Server:      %s\n", addr)
	} else {
		fmt.Fprintln(c.out, "Server:      stopped")
	}
}

func (c *Console) cmdStored(t *Target) {
	stored, err := t.Store.Read()
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		fmt.Fprintln(c.out, "No stored credential")
	case err != nil:
		fmt.Fprintf(c.out, "Error: %v\n", err)
	default:
		fmt.Fprintf(c.out, "%s / %s\n", stored.Name, credential.Redact(stored.Secret))
	}
}

func (c *Console) cmdAdd(t *Target, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: add <name> [secret]")
		return
	}
	secret := ""
	if len(args) > 1 {
		secret = args[1]
	}
	t.Simulator.AddNetwork(args[0], netif.Network{Secret: secret})
	fmt.Fprintf(c.out, "Network %s available\n", args[0])
}

func (c *Console) cmdRemove(t *Target, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: remove <name>")
		return
	}
	t.Simulator.RemoveNetwork(args[0])
	fmt.Fprintf(c.out, "Network %s removed\n", args[0])
}

func (c *Console) cmdDrop(t *Target, args []string) {
	reason := "BEACON_TIMEOUT"
	if len(args) > 0 {
		reason = args[0]
	}
	t.Simulator.DropLink(reason)
	fmt.Fprintf(c.out, "Link dropped (%s)\n", reason)
}

func (c *Console) cmdReset(t *Target) {
	if err := t.Store.Clear(); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Stored credential cleared; it takes effect on the next start")
}
