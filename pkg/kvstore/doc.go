// Package kvstore provides durable string key-value engines used to persist
// device state across restarts.
//
// An Engine is scoped to one namespace after Open. Writes are staged and only
// become durable on Commit. Open reports ErrNoFreePages, ErrNewVersionFound or
// ErrCorrupt when the backing store cannot be used as-is; callers recover by
// calling Erase and opening again (see NeedsErase).
//
// Three engines are provided:
//   - FileEngine: a JSON document written atomically with rename
//   - SQLiteEngine: a single table in an SQLite database
//   - MemoryEngine: process-local, for tests and simulation
package kvstore
