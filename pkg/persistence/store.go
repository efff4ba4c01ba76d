package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/kvstore"
)

// Storage layout.
const (
	Namespace = "wifi_table"
	NameKey   = "wifi_ssid"
	SecretKey = "wifi_pass"
)

// Store errors.
var (
	// ErrNotFound means no complete credential is on record. This is a normal
	// startup path, not a failure.
	ErrNotFound = errors.New("no stored credential")

	// ErrStorageFatal means the store is unusable even after erase and retry.
	ErrStorageFatal = errors.New("credential store unusable")

	// ErrWriteFailed means the credential was not persisted.
	ErrWriteFailed = errors.New("credential not persisted")

	// ErrNotInitialized is returned before a successful Init.
	ErrNotInitialized = errors.New("credential store not initialized")
)

// CredentialStore persists a single network credential.
type CredentialStore struct {
	mu     sync.Mutex
	engine kvstore.Engine
	logger *slog.Logger
	ready  bool
}

// NewCredentialStore creates a store on top of engine.
// A nil logger uses slog.Default().
func NewCredentialStore(engine kvstore.Engine, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{engine: engine, logger: logger}
}

// Init opens the backing namespace, erasing and retrying once if the engine
// reports a recoverable condition.
func (s *CredentialStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.engine.Open(Namespace)
	if kvstore.NeedsErase(err) {
		s.logger.Warn("credential store unusable, erasing", "error", err)
		if eraseErr := s.engine.Erase(); eraseErr != nil {
			return fmt.Errorf("%w: erase: %v", ErrStorageFatal, eraseErr)
		}
		err = s.engine.Open(Namespace)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFatal, err)
	}

	s.ready = true
	return nil
}

// Read returns the stored credential, or ErrNotFound when either field is
// absent.
func (s *CredentialStore) Read() (credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return credential.Credential{}, ErrNotInitialized
	}

	name, err := s.engine.GetString(NameKey)
	if err != nil {
		return credential.Credential{}, s.readError(NameKey, err)
	}
	secret, err := s.engine.GetString(SecretKey)
	if err != nil {
		return credential.Credential{}, s.readError(SecretKey, err)
	}

	c := credential.Credential{Name: name, Secret: secret}
	if len(c.Name) > credential.MaxNameLen || len(c.Secret) > credential.MaxSecretLen {
		// Mirrors the driver-side buffer check on read; an oversized value
		// cannot be loaded into the station config.
		s.logger.Warn("stored credential exceeds buffer capacity", "name_len", len(c.Name), "secret_len", len(c.Secret))
		return credential.Credential{}, ErrNotFound
	}
	return c, nil
}

func (s *CredentialStore) readError(key string, err error) error {
	if errors.Is(err, kvstore.ErrNotFound) {
		return ErrNotFound
	}
	s.logger.Warn("credential read failed", "key", key, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrNotFound, key, err)
}

// Write stores c. Control bytes are sanitized before writing. The result is
// nil only if both values and the commit succeeded.
func (s *CredentialStore) Write(c credential.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return fmt.Errorf("%w: %v", ErrWriteFailed, ErrNotInitialized)
	}

	c.Name = credential.Sanitize(c.Name)
	c.Secret = credential.Sanitize(c.Secret)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := s.engine.SetString(NameKey, c.Name); err != nil {
		s.discard()
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, NameKey, err)
	}
	if err := s.engine.SetString(SecretKey, c.Secret); err != nil {
		s.discard()
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, SecretKey, err)
	}
	if err := s.engine.Commit(); err != nil {
		s.discard()
		return fmt.Errorf("%w: commit: %v", ErrWriteFailed, err)
	}

	s.logger.Info("credential saved", "ssid", c.Name)
	return nil
}

// discard drops staged writes so a failed Write never leaves half a pair
// visible. The previously committed pair stays readable.
func (s *CredentialStore) discard() {
	if err := s.engine.Discard(); err != nil {
		s.logger.Error("credential store discard failed", "error", err)
		s.ready = false
	}
}

// Clear removes the stored credential.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotInitialized
	}
	if err := s.engine.EraseKey(NameKey); err != nil {
		return err
	}
	if err := s.engine.EraseKey(SecretKey); err != nil {
		return err
	}
	return s.engine.Commit()
}

// Close releases the engine.
func (s *CredentialStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = false
	return s.engine.Close()
}
