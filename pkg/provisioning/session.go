package provisioning

import (
	"context"
	"log/slog"
	"time"

	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/log"
)

// Connector attempts to join a network and returns the applied credentials.
type Connector interface {
	Connect(ctx context.Context, name, secret string) (credential.Credential, error)
}

// Store persists credentials.
type Store interface {
	Write(c credential.Credential) error
}

// Phase is the session's position in the exchange.
type Phase uint8

const (
	// PhaseAwaitingName expects a message carrying the network name.
	PhaseAwaitingName Phase = iota

	// PhaseAwaitingSecret expects a message carrying the secret.
	PhaseAwaitingSecret
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAwaitingName:
		return "AWAITING_NAME"
	case PhaseAwaitingSecret:
		return "AWAITING_SECRET"
	default:
		return "UNKNOWN"
	}
}

// AttemptResult describes a finished connection attempt.
type AttemptResult struct {
	// Credential is what the interface applied; zero on failure.
	Credential credential.Credential

	// ConnectErr is nil if the device joined the network.
	ConnectErr error

	// StoreErr is set if joining succeeded but persisting failed.
	StoreErr error
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// ID identifies the session in logs and events.
	ID string

	// RemoteAddr is the peer address, for logging.
	RemoteAddr string

	Connector Connector
	Store     Store

	// OnAttempt is called after every connection attempt, once the
	// outcome has been persisted and before the response is returned.
	OnAttempt func(AttemptResult)

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// EventLogger receives message and phase events. Nil disables capture.
	EventLogger log.Logger
}

// Session is the per-peer protocol state machine. It is not safe for
// concurrent use; the server drives it from a single goroutine.
type Session struct {
	config SessionConfig
	logger *slog.Logger
	events log.Logger

	phase Phase
	name  string
}

// NewSession creates a session waiting for a network name.
func NewSession(config SessionConfig) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		config: config,
		logger: logger.With("session", config.ID),
		events: log.OrNoop(config.EventLogger),
		phase:  PhaseAwaitingName,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Handle processes one complete message and returns the status line for
// the peer. In the secret phase it blocks for the duration of the
// connection attempt.
func (s *Session) Handle(ctx context.Context, msg []byte) Response {
	var resp Response
	switch s.phase {
	case PhaseAwaitingName:
		resp = s.handleName(msg)
	default:
		resp = s.handleSecret(ctx, msg)
	}

	s.logMessage(log.DirectionOut, log.MessageEvent{
		Kind: log.MessageKindResponse,
		Text: string(resp),
	})
	return resp
}

func (s *Session) handleName(msg []byte) Response {
	name, err := credential.ExtractName(msg)
	if err != nil {
		s.logger.Warn("invalid name message", "error", err)
		s.logMessage(log.DirectionIn, log.MessageEvent{Kind: log.MessageKindMalformed})
		return ResponseNameInvalid
	}

	s.logger.Info("network name received", "name", name)
	s.logMessage(log.DirectionIn, log.MessageEvent{Kind: log.MessageKindName, Name: name})

	s.name = name
	s.setPhase(PhaseAwaitingSecret, "")
	return ResponseNameAccepted
}

func (s *Session) handleSecret(ctx context.Context, msg []byte) Response {
	secret, err := credential.ExtractSecret(msg)
	if err != nil {
		s.logger.Warn("invalid secret message", "error", err)
		s.logMessage(log.DirectionIn, log.MessageEvent{Kind: log.MessageKindMalformed})
		return ResponseSecretInvalid
	}

	s.logMessage(log.DirectionIn, log.MessageEvent{
		Kind:   log.MessageKindSecret,
		Name:   s.name,
		Secret: credential.Redact(secret),
	})

	name := s.name
	s.name = ""

	result := s.attempt(ctx, name, secret)
	if s.config.OnAttempt != nil {
		s.config.OnAttempt(result)
	}

	var resp Response
	switch {
	case result.ConnectErr != nil:
		resp = ResponseConnectFailed
		s.setPhase(PhaseAwaitingName, "connect failed")
	case result.StoreErr != nil:
		resp = ResponseSaveFailed
		s.setPhase(PhaseAwaitingName, "save failed")
	default:
		resp = ResponseSaved
		s.setPhase(PhaseAwaitingName, "provisioned")
	}
	return resp
}

func (s *Session) attempt(ctx context.Context, name, secret string) AttemptResult {
	s.logger.Info("attempting connection", "name", name)

	active, err := s.config.Connector.Connect(ctx, name, secret)
	if err != nil {
		s.logger.Warn("connection attempt failed", "name", name, "error", err)
		return AttemptResult{ConnectErr: err}
	}

	result := AttemptResult{Credential: active}
	if err := s.config.Store.Write(active); err != nil {
		s.logger.Error("connected but credentials not saved", "name", active.Name, "error", err)
		s.logError("persist", err)
		result.StoreErr = err
		return result
	}

	s.logger.Info("credentials saved", "name", active.Name)
	return result
}

func (s *Session) setPhase(p Phase, reason string) {
	old := s.phase
	s.phase = p
	if old == p {
		return
	}
	s.events.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.config.ID,
		Direction:    log.DirectionNone,
		Layer:        log.LayerSession,
		Category:     log.CategoryState,
		RemoteAddr:   s.config.RemoteAddr,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: old.String(),
			NewState: p.String(),
			Reason:   reason,
		},
	})
}

func (s *Session) logMessage(dir log.Direction, msg log.MessageEvent) {
	msg.Phase = s.phase.String()
	s.events.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.config.ID,
		Direction:    dir,
		Layer:        log.LayerSession,
		Category:     log.CategoryMessage,
		RemoteAddr:   s.config.RemoteAddr,
		Message:      &msg,
	})
}

func (s *Session) logError(op string, err error) {
	s.events.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.config.ID,
		Direction:    log.DirectionNone,
		Layer:        log.LayerStorage,
		Category:     log.CategoryError,
		RemoteAddr:   s.config.RemoteAddr,
		Error: &log.ErrorEventData{
			Layer:   log.LayerStorage,
			Message: err.Error(),
			Context: op,
		},
	})
}
