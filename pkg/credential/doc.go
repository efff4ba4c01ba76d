// Package credential defines the network credential pair and the scanner that
// pulls credential values out of untrusted provisioning messages.
//
// # Capacities
//
// Buffers follow the radio driver's station config layout:
//
//   - Name: 32 bytes (31 usable)
//   - Secret: 64 bytes (63 usable)
//
// Values that do not fit are rejected, never truncated.
//
// # Extraction
//
// Extract is a targeted key search, not a JSON parser. For a message such as
//
//	{"wifi_name":"HomeNet"}
//
// it locates the first occurrence of the key, then the next ':', then the next
// pair of '"' characters, and returns the bytes between the quotes. Bytes below
// 0x20 are replaced with '_' so a peer cannot smuggle control sequences into
// the stored configuration. Key order, surrounding whitespace and other keys
// in the message are irrelevant.
package credential
