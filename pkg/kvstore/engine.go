package kvstore

import "errors"

// Engine errors.
var (
	// ErrNotFound is returned by GetString when the key has no value.
	ErrNotFound = errors.New("key not found")

	// ErrNotOpen is returned when an operation requires an open namespace.
	ErrNotOpen = errors.New("store not open")

	// ErrNoFreePages is returned by Open when the store has no room left.
	ErrNoFreePages = errors.New("store has no free pages")

	// ErrNewVersionFound is returned by Open when the store was written by an
	// incompatible format version.
	ErrNewVersionFound = errors.New("store format version mismatch")

	// ErrCorrupt is returned by Open when the store content cannot be parsed.
	ErrCorrupt = errors.New("store corrupt")

	// ErrInvalidKey is returned for empty keys or namespaces.
	ErrInvalidKey = errors.New("invalid key")
)

// MaxKeyLen is the longest accepted key or namespace name.
const MaxKeyLen = 15

// Engine is a durable string key-value store.
type Engine interface {
	// Open opens the namespace for reading and writing.
	Open(namespace string) error

	// Erase wipes the whole store, all namespaces included.
	Erase() error

	// GetString returns the committed or staged value for key.
	GetString(key string) (string, error)

	// SetString stages a value for key. It is not durable until Commit.
	SetString(key, value string) error

	// EraseKey stages removal of key.
	EraseKey(key string) error

	// Commit makes staged changes durable.
	Commit() error

	// Discard drops staged changes. Committed data and the open namespace
	// are left as they are.
	Discard() error

	// Close releases the engine. Uncommitted changes are discarded.
	Close() error
}

// NeedsErase reports whether an Open error can be recovered from by erasing
// the store.
func NeedsErase(err error) bool {
	return errors.Is(err, ErrNoFreePages) ||
		errors.Is(err, ErrNewVersionFound) ||
		errors.Is(err, ErrCorrupt)
}

func validKey(key string) bool {
	return key != "" && len(key) <= MaxKeyLen
}
