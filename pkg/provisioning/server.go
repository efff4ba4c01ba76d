package provisioning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/wifiprov/wifiprov-go/pkg/log"
)

// Server defaults.
const (
	// DefaultPort is the provisioning TCP port.
	DefaultPort = 3333

	// ReceiveBufferSize is the per-read buffer; one byte is reserved so a
	// single message carries at most ReceiveBufferSize-1 bytes.
	ReceiveBufferSize = 512

	// DefaultMessageRate is the sustained inbound message rate per peer.
	DefaultMessageRate = 5

	// DefaultMessageBurst is the number of messages accepted back to back.
	DefaultMessageBurst = 5
)

// Server errors.
var (
	ErrServerRunning = errors.New("server already running")
	ErrNoConnector   = errors.New("connector is required")
	ErrNoStore       = errors.New("store is required")
)

// ServerConfig configures a provisioning server.
type ServerConfig struct {
	// Address to listen on. Defaults to ":3333".
	Address string

	// Connector runs connection attempts for sessions.
	Connector Connector

	// Store persists credentials after a successful attempt.
	Store Store

	// MessageRate and MessageBurst bound how fast a peer may send.
	// Messages over the limit are held back until the limiter allows them,
	// so every message still gets its status line. A negative MessageRate
	// disables limiting.
	MessageRate  rate.Limit
	MessageBurst int

	// OnAttempt is passed to every session.
	OnAttempt func(AttemptResult)

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// EventLogger receives transport, session and server events.
	EventLogger log.Logger
}

// Server accepts provisioning peers one at a time.
type Server struct {
	config ServerConfig
	logger *slog.Logger
	events log.Logger

	listener net.Listener

	// current is the connection being served, closed on Stop.
	currentMu sync.Mutex
	current   net.Conn

	sessions atomic.Uint64

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a provisioning server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Connector == nil {
		return nil, ErrNoConnector
	}
	if config.Store == nil {
		return nil, ErrNoStore
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MessageRate == 0 {
		config.MessageRate = DefaultMessageRate
	}
	if config.MessageBurst <= 0 {
		config.MessageBurst = DefaultMessageBurst
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config: config,
		logger: logger.With("component", "provisioning"),
		events: log.OrNoop(config.EventLogger),
	}, nil
}

// Start listens and begins accepting peers.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return ErrServerRunning
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.listener = listener
	s.running.Store(true)
	s.logState("", "LISTENING", listener.Addr().String())
	s.logger.Info("provisioning server started", "addr", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and the current peer, then waits for the
// accept loop to exit.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}

	s.cancel()
	s.listener.Close()

	s.currentMu.Lock()
	if s.current != nil {
		s.current.Close()
	}
	s.currentMu.Unlock()

	s.wg.Wait()
	s.logState("LISTENING", "STOPPED", "")
	s.logger.Info("provisioning server stopped")
	return nil
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// Sessions returns the number of peers served so far.
func (s *Server) Sessions() uint64 {
	return s.sessions.Load()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			s.logError("", log.LayerTransport, "accept", err)
			// Avoid a hot loop on persistent errors such as EMFILE.
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}

		s.serve(conn)
	}
}

// serve runs one session to completion on conn.
func (s *Server) serve(conn net.Conn) {
	connID := uuid.New().String()
	remote := conn.RemoteAddr().String()

	s.currentMu.Lock()
	if !s.running.Load() {
		s.currentMu.Unlock()
		conn.Close()
		return
	}
	s.current = conn
	s.currentMu.Unlock()

	defer func() {
		s.currentMu.Lock()
		s.current = nil
		s.currentMu.Unlock()
		conn.Close()
	}()

	s.sessions.Add(1)
	logger := s.logger.With("conn_id", connID, "remote", remote)
	logger.Info("peer connected")
	s.logConnState(connID, remote, "", "CONNECTED")

	session := NewSession(SessionConfig{
		ID:          connID,
		RemoteAddr:  remote,
		Connector:   s.config.Connector,
		Store:       s.config.Store,
		OnAttempt:   s.config.OnAttempt,
		Logger:      s.logger,
		EventLogger: s.events,
	})

	var limiter *rate.Limiter
	if s.config.MessageRate > 0 {
		limiter = rate.NewLimiter(s.config.MessageRate, s.config.MessageBurst)
	}

	buf := make([]byte, ReceiveBufferSize)
	reason := "peer closed"
	for {
		n, err := conn.Read(buf[:ReceiveBufferSize-1])
		if n > 0 {
			if !s.handleMessage(session, limiter, conn, connID, remote, buf[:n], logger) {
				reason = "write failed"
				if !s.running.Load() {
					reason = "server stopped"
				}
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && s.running.Load() {
				logger.Warn("receive failed", "error", err)
				s.logError(connID, log.LayerTransport, "receive", err)
				reason = "receive error"
			}
			break
		}
	}

	logger.Info("peer disconnected", "reason", reason)
	s.logConnState(connID, remote, "CONNECTED", "DISCONNECTED")
}

// handleMessage feeds one read to the session and writes the reply. It
// returns false if the connection should be torn down.
func (s *Server) handleMessage(session *Session, limiter *rate.Limiter, conn net.Conn, connID, remote string, msg []byte, logger *slog.Logger) bool {
	s.events.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   remote,
		Frame:        &log.FrameEvent{Size: len(msg), Truncated: len(msg) == ReceiveBufferSize-1},
	})

	if limiter != nil {
		if limiter.Tokens() < 1 {
			logger.Debug("pacing message", "size", len(msg))
		}
		// Wait only fails once the server is stopping.
		if err := limiter.Wait(s.ctx); err != nil {
			logger.Warn("message dropped", "size", len(msg), "error", err)
			s.events.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: connID,
				Direction:    log.DirectionIn,
				Layer:        log.LayerSession,
				Category:     log.CategoryMessage,
				RemoteAddr:   remote,
				Message:      &log.MessageEvent{Kind: log.MessageKindDropped, Phase: session.Phase().String()},
			})
			return false
		}
	}

	line := session.Handle(s.ctx, msg).Line()
	if _, err := conn.Write(line); err != nil {
		logger.Warn("send failed", "error", err)
		s.logError(connID, log.LayerTransport, "send", err)
		return false
	}

	s.events.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   remote,
		Frame:        &log.FrameEvent{Size: len(line)},
	})
	return true
}

func (s *Server) logState(oldState, newState, reason string) {
	s.events.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionNone,
		Layer:     log.LayerTransport,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityServer,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (s *Server) logConnState(connID, remote, oldState, newState string) {
	s.events.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionNone,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   remote,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: oldState,
			NewState: newState,
		},
	})
}

func (s *Server) logError(connID string, layer log.Layer, op string, err error) {
	s.events.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionNone,
		Layer:        layer,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: op,
		},
	})
}
