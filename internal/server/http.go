package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/protocol"
	"github.com/berserkgame/berserk-server-go/internal/repository"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

// Handler routes the WebSocket gateway and the HTTP status endpoints.
func (s *GameServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.serveWebSocket)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/matches", s.handleMatches).Methods(http.MethodGet)
	r.HandleFunc("/matches/{id}", s.handleMatch).Methods(http.MethodGet)
	r.HandleFunc("/results", s.handleResults).Methods(http.MethodGet)
	r.HandleFunc("/players/{name}/record", s.handlePlayerRecord).Methods(http.MethodGet)
	return r
}

func (s *GameServer) startHTTP() error {
	lis, err := net.Listen("tcp", s.cfg.WebSocket.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.WebSocket.Address, err)
	}
	s.httpLis = lis
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting WebSocket server", zap.String("address", lis.Addr().String()))
	go func() {
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("WebSocket server error", zap.Error(err))
		}
	}()
	return nil
}

func (s *GameServer) upgrader() *websocket.Upgrader {
	allowed := s.cfg.WebSocket.AllowedOrigins
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowed {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
}

// serveWebSocket runs a client over a WebSocket with the same handlers as
// the TCP listener.
func (s *GameServer) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	s.serveConn(newWSTransport(conn, wsWriteTimeout))
}

func (s *GameServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	h := s.Health()
	status := http.StatusOK
	if h.Status != StatusServing {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h)
}

func (s *GameServer) handleMatches(w http.ResponseWriter, _ *http.Request) {
	snaps := s.lobby.Snapshots()
	out := make([]protocol.MatchInfo, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, matchInfo(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *GameServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(mux.Vars(r)["id"])
	if mt, ok := s.lobby.GetMatch(id); ok {
		writeJSON(w, http.StatusOK, matchInfo(mt.Snapshot()))
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	result, err := s.store.GetResult(r.Context(), id)
	if errors.Is(err, repository.ErrResultNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load result", zap.String("match_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load match")
		return
	}
	writeJSON(w, http.StatusOK, resultView(result))
}

func (s *GameServer) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	results, err := s.store.ListResults(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list results", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	out := make([]resultJSON, 0, len(results))
	for _, res := range results {
		out = append(out, resultView(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *GameServer) handlePlayerRecord(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no result store")
		return
	}
	name := mux.Vars(r)["name"]
	rec, err := s.store.PlayerRecord(r.Context(), name)
	if err != nil {
		s.logger.Error("failed to load player record", zap.String("player", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player": rec.Player,
		"wins":   rec.Wins,
		"losses": rec.Losses,
		"draws":  rec.Draws,
	})
}

type resultJSON struct {
	MatchID    string    `json:"match_id"`
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	Winner     int       `json:"winner"`
	Reason     string    `json:"reason"`
	Turns      int       `json:"turns"`
	Commands   int       `json:"commands"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func resultView(r repository.Result) resultJSON {
	return resultJSON{
		MatchID:    r.MatchID,
		Player1:    r.Player1,
		Player2:    r.Player2,
		Winner:     r.Winner,
		Reason:     r.Reason,
		Turns:      r.Turns,
		Commands:   r.Commands,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
