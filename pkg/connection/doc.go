// Package connection manages the station link of a provisioning device.
//
// A Manager owns the network interface while a connection attempt runs:
//
//  1. Connect stops the interface, applies station credentials and starts it.
//  2. The interface reports it is up; the manager requests association.
//  3. Each disconnect consumes one retry and re-requests association after
//     a short backoff, until MaxRetry retries have been used.
//  4. The attempt succeeds when the station acquires an address. Association
//     alone is not enough.
//
// Connect blocks until success, exhaustion of the retry budget, or the
// attempt timeout (30 seconds by default). On failure the interface is
// stopped.
//
// # Pacing
//
// Reassociation delays grow exponentially from 250ms to 2s:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// The retry counter and the backoff are reset whenever an address is
// acquired and at the start of every Connect call.
//
// # Link Loss
//
// When an established link drops the manager moves to Reconnecting and
// spends a fresh retry budget. If that runs out the state becomes Failed;
// callers that need a fallback watch OnStateChange.
//
// StartBroadcastMode brings up the access point used for provisioning. It
// is independent of the station state machine.
package connection
