package credential

import (
	"bytes"
	"errors"
)

// Keys searched in provisioning messages. The quotes are part of the key so
// that "wifi_name" never matches inside a longer identifier.
const (
	KeyName   = `"wifi_name"`
	KeySecret = `"wifi_password"`
)

// Extraction errors. Both are distinct from success; callers that only care
// about "malformed" can test for either.
var (
	ErrNotFound = errors.New("key or quoted value not found")
	ErrTooLong  = errors.New("value exceeds buffer capacity")
)

// Extract locates key in buf and copies the quoted value that follows it into
// out, replacing control bytes with '_'. It returns the value length.
//
// The value must be strictly shorter than len(out); the remaining byte mirrors
// the driver's terminator slot. out is not modified when an error is returned.
func Extract(buf []byte, key string, out []byte) (int, error) {
	if key == "" {
		return 0, ErrNotFound
	}

	i := bytes.Index(buf, []byte(key))
	if i < 0 {
		return 0, ErrNotFound
	}
	rest := buf[i:]

	colon := bytes.IndexByte(rest, ':')
	if colon < 0 {
		return 0, ErrNotFound
	}
	rest = rest[colon:]

	open := bytes.IndexByte(rest, '"')
	if open < 0 {
		return 0, ErrNotFound
	}
	rest = rest[open+1:]

	end := bytes.IndexByte(rest, '"')
	if end < 0 {
		return 0, ErrNotFound
	}

	if end >= len(out) {
		return 0, ErrTooLong
	}

	n := copy(out, rest[:end])
	sanitizeBytes(out[:n])
	return n, nil
}

// ExtractName extracts the network name from a provisioning message.
func ExtractName(msg []byte) (string, error) {
	var out [NameCapacity]byte
	n, err := Extract(msg, KeyName, out[:])
	if err != nil {
		return "", err
	}
	return string(out[:n]), nil
}

// ExtractSecret extracts the secret from a provisioning message.
func ExtractSecret(msg []byte) (string, error) {
	var out [SecretCapacity]byte
	n, err := Extract(msg, KeySecret, out[:])
	if err != nil {
		return "", err
	}
	return string(out[:n]), nil
}

// IsMalformed reports whether err is an extraction failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTooLong)
}
