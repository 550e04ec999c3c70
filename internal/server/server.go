// Package server runs Berserk matches for remote players over TLS/TCP, with
// a WebSocket gateway, HTTP status endpoints and a gRPC health service on
// the side.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/config"
	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/dice"
	"github.com/berserkgame/berserk-server-go/internal/lobby"
	"github.com/berserkgame/berserk-server-go/internal/protocol"
	"github.com/berserkgame/berserk-server-go/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

var (
	ErrAlreadyStarted = errors.New("server already started")
	ErrNotStarted     = errors.New("server not started")
)

// Status values reported by Health.
const (
	StatusStopped  = "stopped"
	StatusServing  = "serving"
	StatusStopping = "stopping"
)

// Health is a point-in-time view of a running server.
type Health struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Address       string  `json:"address,omitempty"`
	TLS           bool    `json:"tls"`
	Sessions      int     `json:"sessions"`
	Matches       int     `json:"matches"`
	ActiveMatches int     `json:"active_matches"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Option configures a GameServer.
type Option func(*GameServer)

// WithResultStore persists finished matches.
func WithResultStore(store repository.ResultStore) Option {
	return func(s *GameServer) { s.store = store }
}

// WithReplayRecorder records the commands of every match.
func WithReplayRecorder(rec *game.ReplayRecorder) Option {
	return func(s *GameServer) { s.replays = rec }
}

// WithVersion sets the version reported in WELCOME and Health.
func WithVersion(version string) Option {
	return func(s *GameServer) { s.version = version }
}

// WithRollerFactory overrides the dice of new matches.
func WithRollerFactory(f func() *dice.Roller) Option {
	return func(s *GameServer) { s.lobby.SetRollerFactory(f) }
}

// GameServer is the handle of one running Berserk server. Nothing about it
// is global; tests start as many as they like on ephemeral ports.
type GameServer struct {
	cfg     *config.Config
	logger  *zap.Logger
	version string
	lobby   *lobby.Manager
	store   repository.ResultStore
	replays *game.ReplayRecorder

	mu       sync.RWMutex
	sessions map[string]*session
	status   string
	started  time.Time

	ctx        context.Context
	cancel     context.CancelFunc
	listener   net.Listener
	httpServer *http.Server
	httpLis    net.Listener
	grpcServer *grpc.Server
	grpcLis    net.Listener
	health     *health.Server
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// New creates a stopped server.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *GameServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	s := &GameServer{
		cfg:      cfg,
		logger:   logger,
		version:  "dev",
		lobby:    lobby.NewManager(logger),
		sessions: make(map[string]*session),
		status:   StatusStopped,
	}
	if cfg.Game.Seed != 0 {
		seed := cfg.Game.Seed
		s.lobby.SetRollerFactory(func() *dice.Roller { return dice.NewRoller(seed) })
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lobby exposes the match table.
func (s *GameServer) Lobby() *lobby.Manager { return s.lobby }

// Start opens every configured listener and the background loops. It
// returns once the listeners are bound.
func (s *GameServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusStopped || s.listener != nil {
		return ErrAlreadyStarted
	}

	lis, err := s.listen()
	if err != nil {
		return err
	}
	s.listener = lis
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.cfg.WebSocket.Enabled {
		if err := s.startHTTP(); err != nil {
			s.cancel()
			lis.Close()
			return err
		}
	}
	if s.cfg.Admin.Enabled {
		if err := s.startAdmin(); err != nil {
			s.cancel()
			lis.Close()
			if s.httpServer != nil {
				s.httpServer.Close()
			}
			return err
		}
	}

	s.status = StatusServing
	s.started = time.Now()

	s.wg.Add(3)
	go s.acceptLoop(lis)
	go s.heartbeatLoop(s.ctx)
	go s.cleanupLoop(s.ctx)

	s.logger.Info("game server started",
		zap.String("address", lis.Addr().String()),
		zap.Bool("tls", s.cfg.TLS.Enabled()),
		zap.String("version", s.version),
	)
	return nil
}

func (s *GameServer) listen() (net.Listener, error) {
	addr := s.cfg.Server.Address()
	if !s.cfg.TLS.Enabled() {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listen on %s: %w", addr, err)
		}
		return lis, nil
	}

	cert, err := tls.LoadX509KeyPair(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load tls key pair: %w", err)
	}
	lis, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return lis, nil
}

// Stop closes the listeners and every session, then waits for the
// connection goroutines to exit or ctx to expire. Calling it again is a
// no-op.
func (s *GameServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.mu.Unlock()

	var stopErr error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.status = StatusStopping
		sessions := make([]*session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.mu.Unlock()

		s.logger.Info("stopping game server", zap.Int("sessions", len(sessions)))
		s.cancel()
		s.listener.Close()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(ctx); err != nil {
				stopErr = errors.Join(stopErr, fmt.Errorf("shutdown http: %w", err))
			}
		}
		if s.grpcServer != nil {
			s.stopAdmin(ctx)
		}
		for _, sess := range sessions {
			sess.close()
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = errors.Join(stopErr, ctx.Err())
		}

		s.mu.Lock()
		s.status = StatusStopped
		s.mu.Unlock()
		s.logger.Info("game server stopped")
	})
	return stopErr
}

// Addr is the bound game listener address, or nil before Start.
func (s *GameServer) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// HTTPAddr is the bound WebSocket/HTTP address, or nil when disabled.
func (s *GameServer) HTTPAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.httpLis == nil {
		return nil
	}
	return s.httpLis.Addr()
}

// AdminAddr is the bound gRPC address, or nil when disabled.
func (s *GameServer) AdminAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.grpcLis == nil {
		return nil
	}
	return s.grpcLis.Addr()
}

// Health reports the server status and table sizes.
func (s *GameServer) Health() Health {
	s.mu.RLock()
	h := Health{
		Status:   s.status,
		Version:  s.version,
		TLS:      s.cfg.TLS.Enabled(),
		Sessions: len(s.sessions),
	}
	if s.listener != nil {
		h.Address = s.listener.Addr().String()
	}
	if s.status == StatusServing {
		h.UptimeSeconds = time.Since(s.started).Seconds()
	}
	s.mu.RUnlock()

	h.Matches = s.lobby.MatchCount()
	h.ActiveMatches = s.lobby.GetActiveMatchCount()
	return h
}

func (s *GameServer) acceptLoop(lis net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := lis.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(protocol.NewConn(conn))
		}()
	}
}

func (s *GameServer) addSession(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusServing {
		return false
	}
	if max := s.cfg.Server.MaxSessions; max > 0 && len(s.sessions) >= max {
		return false
	}
	s.sessions[sess.id] = sess
	return true
}

func (s *GameServer) removeSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *GameServer) sessionByID(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// serveConn runs one client until its connection ends.
func (s *GameServer) serveConn(t transport) {
	sess := newSession(uuid.NewString(), t, time.Now())
	if !s.addSession(sess) {
		sess.sendError("server is full")
		sess.close()
		return
	}
	s.logger.Info("client connected",
		zap.String("session_id", sess.id),
		zap.String("remote_addr", t.RemoteAddr()),
	)
	defer s.disconnect(sess)

	for {
		msg, err := t.Receive()
		if err != nil {
			if !errors.Is(err, io.EOF) && !sess.isClosed() {
				s.logger.Debug("connection read failed",
					zap.String("session_id", sess.id),
					zap.Error(err),
				)
			}
			return
		}
		sess.touch(time.Now())
		if err := s.dispatch(sess, msg); err != nil {
			if errors.Is(err, errCloseSession) {
				return
			}
			if sendErr := sess.sendError(err.Error()); sendErr != nil {
				return
			}
		}
	}
}

// disconnect drops the session and frees its seat.
func (s *GameServer) disconnect(sess *session) {
	sess.close()
	s.removeSession(sess.id)
	s.logger.Info("client disconnected",
		zap.String("session_id", sess.id),
		zap.String("player_name", sess.Name()),
	)
	mt, seat, err := s.lobby.LeaveMatch(sess.id)
	if err != nil {
		return
	}
	s.afterLeave(mt, seat, sess.Name())
}

func (s *GameServer) heartbeatLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Heartbeat.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.expireSilent(now)
		}
	}
}

// expireSilent closes sessions that sent nothing for the heartbeat timeout.
// Their connection goroutines then run the normal disconnect.
func (s *GameServer) expireSilent(now time.Time) int {
	s.mu.RLock()
	var stale []*session
	for _, sess := range s.sessions {
		if sess.silentFor(now) > s.cfg.Heartbeat.Timeout {
			stale = append(stale, sess)
		}
	}
	s.mu.RUnlock()

	for _, sess := range stale {
		s.logger.Warn("heartbeat timeout",
			zap.String("session_id", sess.id),
			zap.String("player_name", sess.Name()),
		)
		sess.close()
	}
	return len(stale)
}

func (s *GameServer) cleanupLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Cleanup.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.cleanupStale(now)
		}
	}
}

// cleanupStale drops empty and abandoned matches, telling anyone still
// seated that the match is gone.
func (s *GameServer) cleanupStale(now time.Time) int {
	removed := s.lobby.CleanupStale(now, s.cfg.Cleanup.MaxAge)
	for _, snap := range removed {
		if s.replays != nil {
			s.replays.ClearReplay(snap.ID)
		}
		for _, seat := range snap.Seats {
			if sess, ok := s.sessionByID(seat.PlayerID); ok {
				sess.send(protocol.TypeMatchLeft, snap.ID, nil)
			}
		}
	}
	return len(removed)
}
