// Package persistence stores the device's network credential so it survives
// restarts.
//
// The credential lives in the "wifi_table" namespace of a kvstore.Engine under
// the keys "wifi_ssid" and "wifi_pass". A pair is written name first, then
// secret, then committed; Write only succeeds when all three steps do, and a
// failed Write must be treated as "not persisted".
//
// # Initialization
//
// Init opens the namespace. If the engine reports that it is full, corrupt or
// was written by another format version, the store is erased and opened again
// exactly once. A second failure returns ErrStorageFatal; the process cannot
// continue without a working store.
package persistence
