package provisioning

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Client defaults.
const (
	DefaultDialTimeout = 5 * time.Second

	// DefaultReplyTimeout covers a full connection attempt on the device.
	DefaultReplyTimeout = 40 * time.Second
)

// Client errors.
var (
	ErrRejected     = errors.New("device rejected the message")
	ErrNotConnected = errors.New("device could not join the network")
	ErrUnknownReply = errors.New("unrecognized reply")
)

// ClientConfig configures a Client.
type ClientConfig struct {
	DialTimeout  time.Duration
	ReplyTimeout time.Duration

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger
}

// Client talks to a provisioning server.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	config ClientConfig
	logger *slog.Logger
}

// Dial connects to the provisioning server at addr.
func Dial(ctx context.Context, addr string, config ClientConfig) (*Client, error) {
	if config.DialTimeout <= 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	d := net.Dialer{Timeout: config.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewClient(conn, config), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, config ClientConfig) *Client {
	if config.ReplyTimeout <= 0 {
		config.ReplyTimeout = DefaultReplyTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		config: config,
		logger: logger.With("component", "provisioning-client", "remote", conn.RemoteAddr().String()),
	}
}

// Send writes one raw message and waits for the status line. The returned
// response is the line without its terminator, known or not.
func (c *Client) Send(ctx context.Context, msg []byte) (Response, error) {
	deadline := time.Now().Add(c.config.ReplyTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	// Unblock the read if ctx is cancelled before the deadline.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := c.conn.Write(msg); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("receive: %w", err)
	}

	resp, known := ParseResponse(line)
	c.logger.Debug("reply", "line", string(resp), "known", known)
	return resp, nil
}

// SendName sends the network name.
func (c *Client) SendName(ctx context.Context, name string) (Response, error) {
	msg, err := NameMessage(name)
	if err != nil {
		return "", err
	}
	return c.Send(ctx, msg)
}

// SendSecret sends the secret.
func (c *Client) SendSecret(ctx context.Context, secret string) (Response, error) {
	msg, err := SecretMessage(secret)
	if err != nil {
		return "", err
	}
	return c.Send(ctx, msg)
}

// Provision runs one name/secret round. It returns the last status line
// together with ErrRejected, ErrNotConnected or ErrUnknownReply when the
// device did not join the network. ResponseSaveFailed is returned without
// error: the device joined but did not persist the credentials.
func (c *Client) Provision(ctx context.Context, name, secret string) (Response, error) {
	resp, err := c.SendName(ctx, name)
	if err != nil {
		return resp, err
	}
	if resp != ResponseNameAccepted {
		return resp, replyError(resp)
	}

	resp, err = c.SendSecret(ctx, secret)
	if err != nil {
		return resp, err
	}
	if !resp.Connected() {
		return resp, replyError(resp)
	}
	return resp, nil
}

func replyError(resp Response) error {
	switch resp {
	case ResponseNameInvalid, ResponseSecretInvalid:
		return fmt.Errorf("%w: %s", ErrRejected, resp)
	case ResponseConnectFailed:
		return ErrNotConnected
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReply, string(resp))
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
