// Command wifiprov-log views and analyzes device trace files.
//
// Trace files are written by wifiprov-device when run with -trace or with
// log.trace set in its configuration.
//
// Usage:
//
//	wifiprov-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	wifiprov-log view device.plog
//
//	# View only link state changes
//	wifiprov-log view -layer link -category state device.plog
//
//	# Keep one connection
//	wifiprov-log filter -conn-id 3f2a9c1d -o conn.plog device.plog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wifiprov/wifiprov-go/cmd/wifiprov-log/commands"
)

const usage = `wifiprov-log - device trace analyzer

Usage:
  wifiprov-log <command> [flags] <file.plog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "wifiprov-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "filter":
		err = runFilter(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs parses flags and returns the single trace file argument.
func parseArgs(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", fmt.Errorf("trace file path required")
	}
	return fs.Arg(0), nil
}

func newFlagSet(name, summary, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "wifiprov-log %s - %s\n\nUsage:\n  wifiprov-log %s\n\nFlags:\n", name, summary, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func runView(args []string) error {
	fs := newFlagSet("view", "View trace file in human-readable format", "view [flags] <file.plog>")
	var opts commands.FilterOptions
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, session, link, storage)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID prefix")

	path, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	filter, err := commands.BuildFilter(opts)
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	fs := newFlagSet("export", "Export trace file to JSONL or CSV", "export [flags] <file.plog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output)
}

func runFilter(args []string) error {
	fs := newFlagSet("filter", "Filter trace file and write to new file", "filter [flags] -o <out.plog> <file.plog>")
	var opts commands.FilterOptions
	output := fs.String("o", "", "Output file (required)")
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID prefix")
	fs.StringVar(&opts.Since, "since", "", "Keep events at or after this time (RFC3339)")
	fs.StringVar(&opts.Until, "until", "", "Keep events before this time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, session, link, storage)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")

	path, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("output file (-o) required")
	}

	filter, err := commands.BuildFilter(opts)
	if err != nil {
		return err
	}
	n, err := commands.RunFilter(path, *output, filter)
	if err != nil {
		return err
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
	return nil
}

func runStats(args []string) error {
	fs := newFlagSet("stats", "Show statistics about the trace file", "stats <file.plog>")
	path, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
