// Package netif defines the radio driver contract used by the connection
// manager, and a simulated driver for development and tests.
//
// The driver is asynchronous: Start and RequestConnect return immediately and
// their outcome is reported later on the Events channel.
//
//	ConfigureStation → Start → StationStarted
//	RequestConnect → AddressAcquired(ip) | StationDisconnected
//
// Association alone is not reported; a station is only considered connected
// once it has an address.
package netif
