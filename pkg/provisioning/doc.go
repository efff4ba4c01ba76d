// Package provisioning implements the credential exchange a companion
// client runs against a device that has no usable network.
//
// # Protocol
//
// The peer connects over TCP (port 3333) and sends two messages. The first
// carries the network name, the second the secret:
//
//	{"wifi_name":"HomeNet"}
//	{"wifi_password":"secret123"}
//
// Tokens may appear anywhere in a message; only the quoted key, the colon
// and the quoted value are significant. Every message gets exactly one
// newline-terminated status line back. Status lines are for humans and
// are not meant to be parsed beyond comparing against the Response
// constants.
//
// After the secret arrives the device attempts to join the network. On
// success the applied credentials are persisted. Either way the session
// returns to waiting for a name, so a peer may try again on the same
// connection.
//
// # Framing
//
// Each read from the socket is treated as one complete message. Nothing
// is buffered across reads: a message split over two reads is handled as
// two malformed messages. Reads are limited to 511 bytes.
//
// # Concurrency
//
// The server handles one peer at a time. Further peers queue in the
// listen backlog until the current one disconnects.
package provisioning
