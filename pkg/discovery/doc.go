// Package discovery advertises and finds devices waiting to be provisioned.
//
// A device in broadcast mode registers one DNS-SD instance of
// _wifiprov._tcp on its soft-AP interface. The instance name is the
// broadcast network name and the TXT record carries:
//
//	ap=<broadcast network name>
//	port=<provisioning TCP port>
//
// Clients joined to the broadcast network browse for the service type to
// learn the address and port of the provisioning server without relying
// on the fixed gateway address.
//
// Advertisement is a convenience only. The provisioning protocol works
// without it, so advertiser failures are logged by callers and never stop
// the device from serving.
package discovery
