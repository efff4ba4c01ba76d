package credential

import (
	"errors"
	"fmt"
	"strings"
)

// Buffer capacities, including the terminator byte the driver reserves.
const (
	// NameCapacity is the size of the network name buffer.
	NameCapacity = 32

	// SecretCapacity is the size of the secret buffer.
	SecretCapacity = 64

	// MaxNameLen is the longest usable network name.
	MaxNameLen = NameCapacity - 1

	// MaxSecretLen is the longest usable secret.
	MaxSecretLen = SecretCapacity - 1
)

// Credential errors.
var (
	ErrEmptyName     = errors.New("network name is empty")
	ErrNameTooLong   = errors.New("network name too long")
	ErrSecretTooLong = errors.New("secret too long")
	ErrControlBytes  = errors.New("credential contains control bytes")
)

// Credential is a (network name, secret) pair for station mode.
// An empty Secret denotes an open network.
type Credential struct {
	Name   string
	Secret string
}

// Validate checks that c can be used for a connection attempt and stored.
func (c Credential) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrNameTooLong, len(c.Name), MaxNameLen)
	}
	if len(c.Secret) > MaxSecretLen {
		return fmt.Errorf("%w: %d bytes, max %d", ErrSecretTooLong, len(c.Secret), MaxSecretLen)
	}
	if hasControl(c.Name) || hasControl(c.Secret) {
		return ErrControlBytes
	}
	return nil
}

// IsOpen reports whether the credential targets an open network.
func (c Credential) IsOpen() bool {
	return c.Secret == ""
}

// Equal reports whether both fields match.
func (c Credential) Equal(other Credential) bool {
	return c.Name == other.Name && c.Secret == other.Secret
}

// String returns the network name with the secret masked.
func (c Credential) String() string {
	return fmt.Sprintf("%s/%s", c.Name, Redact(c.Secret))
}

// Redact masks a secret for logs, keeping only its length visible.
func Redact(secret string) string {
	if secret == "" {
		return "<open>"
	}
	return strings.Repeat("*", len(secret))
}

// Sanitize replaces every byte below 0x20 with '_'.
func Sanitize(s string) string {
	if !hasControl(s) {
		return s
	}
	b := []byte(s)
	sanitizeBytes(b)
	return string(b)
}

func sanitizeBytes(b []byte) {
	for i, c := range b {
		if c < 0x20 {
			b[i] = '_'
		}
	}
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 {
			return true
		}
	}
	return false
}
