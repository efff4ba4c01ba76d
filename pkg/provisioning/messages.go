package provisioning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wifiprov/wifiprov-go/pkg/credential"
)

// ErrUnencodable means a value cannot be carried in a provisioning message.
var ErrUnencodable = errors.New("value cannot be encoded")

// Response is a status line sent to the peer, without its terminator.
type Response string

// Status lines.
const (
	ResponseNameAccepted  Response = "SSID received. Waiting for password..."
	ResponseNameInvalid   Response = "Invalid or missing SSID information!"
	ResponseSecretInvalid Response = "Invalid or missing password information!"
	ResponseSaved         Response = "Connected to the network and information saved."
	ResponseSaveFailed    Response = "Connected but could not save information!"
	ResponseConnectFailed Response = "Failed to connect to the network. Please check the information."
)

// Line returns the response as sent on the wire.
func (r Response) Line() []byte {
	return []byte(string(r) + "\n")
}

// IsFinal reports whether the response ends a provisioning round.
func (r Response) IsFinal() bool {
	switch r {
	case ResponseSaved, ResponseSaveFailed, ResponseConnectFailed:
		return true
	default:
		return false
	}
}

// Connected reports whether the response means the device joined the network.
func (r Response) Connected() bool {
	return r == ResponseSaved || r == ResponseSaveFailed
}

// ParseResponse strips the line terminator and reports whether the line
// is a known status line.
func ParseResponse(line string) (Response, bool) {
	r := Response(strings.TrimRight(line, "\r\n"))
	switch r {
	case ResponseNameAccepted, ResponseNameInvalid, ResponseSecretInvalid,
		ResponseSaved, ResponseSaveFailed, ResponseConnectFailed:
		return r, true
	default:
		return r, false
	}
}

// NameMessage builds the message carrying a network name.
func NameMessage(name string) ([]byte, error) {
	return encode(credential.KeyName, name)
}

// SecretMessage builds the message carrying a secret.
func SecretMessage(secret string) ([]byte, error) {
	return encode(credential.KeySecret, secret)
}

// encode writes {key:"value"}. The device reads the value up to the next
// quote and has no escape sequences, so quotes cannot be sent.
func encode(key, value string) ([]byte, error) {
	if strings.ContainsRune(value, '"') {
		return nil, fmt.Errorf("%w: contains a double quote", ErrUnencodable)
	}
	return []byte("{" + key + ":\"" + value + "\"}"), nil
}
