// Package commands implements the wifiprov-log commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wifiprov/wifiprov-go/pkg/log"
)

// FilterOptions are the textual filter flags shared by view and filter.
type FilterOptions struct {
	ConnID    string
	Since     string
	Until     string
	Layer     string
	Direction string
	Category  string
}

// EventFilter selects events. It extends log.Filter with criteria the
// reader does not evaluate.
type EventFilter struct {
	log.Filter

	// ConnPrefix matches connection IDs by prefix, so the short IDs
	// printed by view can be pasted back.
	ConnPrefix string

	Direction *log.Direction
}

// Match reports whether event passes every criterion.
func (f EventFilter) Match(event log.Event) bool {
	if !f.Filter.Match(event) {
		return false
	}
	if f.ConnPrefix != "" && !strings.HasPrefix(event.ConnectionID, f.ConnPrefix) {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	return true
}

// BuildFilter parses opts.
func BuildFilter(opts FilterOptions) (EventFilter, error) {
	var f EventFilter
	f.ConnPrefix = opts.ConnID

	if opts.Since != "" {
		t, err := time.Parse(time.RFC3339, opts.Since)
		if err != nil {
			return f, fmt.Errorf("invalid since format: %w", err)
		}
		f.Since = t
	}
	if opts.Until != "" {
		t, err := time.Parse(time.RFC3339, opts.Until)
		if err != nil {
			return f, fmt.Errorf("invalid until format: %w", err)
		}
		f.Until = t
	}
	if opts.Layer != "" {
		l, ok := log.ParseLayer(strings.ToUpper(opts.Layer))
		if !ok {
			return f, fmt.Errorf("invalid layer: %s (must be transport, session, link, or storage)", opts.Layer)
		}
		f.Layer = &l
	}
	if opts.Category != "" {
		c, ok := log.ParseCategory(strings.ToUpper(opts.Category))
		if !ok {
			return f, fmt.Errorf("invalid category: %s (must be message, state, or error)", opts.Category)
		}
		f.Category = &c
	}
	if opts.Direction != "" {
		d, err := parseDirection(opts.Direction)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	return f, nil
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// each calls fn for every event in path that passes filter.
func each(path string, filter EventFilter, fn func(log.Event) error) error {
	reader, err := log.NewFilteredReader(path, filter.Filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if !filter.Match(event) {
			continue
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

// RunFilter copies the events of path that pass filter into output and
// returns how many were written.
func RunFilter(path, output string, filter EventFilter) (int, error) {
	logger, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output trace: %w", err)
	}
	defer logger.Close()

	count := 0
	err = each(path, filter, func(event log.Event) error {
		logger.Log(event)
		count++
		return nil
	})
	return count, err
}
