// Package log provides structured event capture for the provisioning stack.
//
// It is separate from operational logging (slog). Operational logs are for
// humans watching a device boot; the event trace is a machine-readable
// record of every provisioning exchange and link transition, suitable for
// post-mortem analysis with the wifiprov-log tool.
//
// # Basic Usage
//
// Components accept a Logger and emit events to it:
//
//	// Development: mirror events to the console
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// Field devices: append to a binary trace
//	fl, _ := log.NewFileLogger("/var/lib/wifiprov/device.plog")
//	cfg.EventLogger = fl
//
//	// Both
//	cfg.EventLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
//   - Transport: raw receive and send sizes (FrameEvent)
//   - Session: classified provisioning messages (MessageEvent)
//   - Link, Session, Server: lifecycle transitions (StateChangeEvent)
//   - Any layer: failures (ErrorEventData)
//
// Secrets never enter an event. Frames carry sizes only and message events
// carry the network name plus a redacted secret.
//
// # File Format
//
// Trace files are a concatenation of CBOR-encoded events with integer keys,
// conventionally named with a .plog extension.
package log
