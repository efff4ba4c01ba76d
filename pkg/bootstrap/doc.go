// Package bootstrap makes the startup decision for a device.
//
// At start the credential store is initialized and read. Stored
// credentials are tried first; if there are none, or the attempt fails,
// the device enters broadcast mode, advertises the provisioning service
// and serves provisioning peers until it is stopped.
//
// Only an unusable credential store stops startup. Every other failure
// falls through to broadcast mode so the device can always be
// provisioned again.
package bootstrap
