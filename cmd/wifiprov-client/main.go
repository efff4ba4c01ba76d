// Command wifiprov-client finds provisioning devices on the local network
// and hands them Wi-Fi credentials.
//
// Usage:
//
//	wifiprov-client <command> [flags]
//
// Commands:
//
//	discover   List devices advertising the provisioning service
//	provision  Send a network name and secret to a device
//	shell      Send raw messages to a device interactively
//
// Examples:
//
//	# Find devices for five seconds
//	wifiprov-client discover --wait 5s
//
//	# Provision the first device found
//	wifiprov-client provision --name HomeNet --password secret123
//
//	# Provision a known address
//	wifiprov-client provision --addr 192.168.4.1:3333 --name HomeNet --password secret123
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
