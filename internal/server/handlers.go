package server

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/lobby"
	"github.com/berserkgame/berserk-server-go/internal/match"
	"github.com/berserkgame/berserk-server-go/internal/protocol"
	"github.com/berserkgame/berserk-server-go/internal/repository"
	"go.uber.org/zap"
)

// errCloseSession ends the connection after the handler has replied.
var errCloseSession = errors.New("close session")

var errHelloRequired = errors.New("HELLO required")

// MaxChatLength bounds chat messages, in runes.
const MaxChatLength = 500

type handlerFunc func(sess *session, msg protocol.Message) error

func (s *GameServer) handler(t protocol.MessageType) (handlerFunc, bool) {
	switch t {
	case protocol.TypeHello:
		return s.handleHello, true
	case protocol.TypePing:
		return s.handlePing, true
	case protocol.TypeCreateMatch:
		return s.handleCreateMatch, true
	case protocol.TypeJoinMatch:
		return s.handleJoinMatch, true
	case protocol.TypeLeaveMatch:
		return s.handleLeaveMatch, true
	case protocol.TypeListMatches:
		return s.handleListMatches, true
	case protocol.TypePlayerReady:
		return s.handlePlayerReady, true
	case protocol.TypePlacementDone:
		return s.handlePlacementDone, true
	case protocol.TypeCommand:
		return s.handleCommand, true
	case protocol.TypeRequestResync:
		return s.handleRequestResync, true
	case protocol.TypeChat:
		return s.handleChat, true
	case protocol.TypeDrawOffer:
		return s.handleDrawOffer, true
	case protocol.TypeDrawAccept:
		return s.handleDrawAccept, true
	case protocol.TypeConcede:
		return s.handleConcede, true
	}
	return nil, false
}

// dispatch routes one message. A returned error is reported to the client
// as ERROR unless it is errCloseSession.
func (s *GameServer) dispatch(sess *session, msg protocol.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic handling message",
				zap.String("session_id", sess.id),
				zap.String("type", string(msg.Type)),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = errors.New("internal server error")
		}
	}()

	h, ok := s.handler(msg.Type)
	if !ok {
		s.logger.Debug("unknown message type",
			zap.String("session_id", sess.id),
			zap.String("type", string(msg.Type)),
		)
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	if msg.Type != protocol.TypeHello && msg.Type != protocol.TypePing && !sess.isGreeted() {
		return errHelloRequired
	}
	return h(sess, msg)
}

func (s *GameServer) handleHello(sess *session, msg protocol.Message) error {
	var p protocol.Hello
	if err := msg.Decode(&p); err != nil {
		return err
	}
	if p.ContentHash != "" && p.ContentHash != cards.ContentHash() {
		s.logger.Warn("content hash mismatch",
			zap.String("session_id", sess.id),
			zap.String("client_hash", p.ContentHash),
		)
		sess.sendError("Version mismatch: client card data differs from the server, please update")
		return errCloseSession
	}
	name := p.PlayerName
	if strings.TrimSpace(name) == "" {
		name = "Player"
	}
	name, err := lobby.NormalizeName(name)
	if err != nil {
		return err
	}
	sess.greet(name)
	s.logger.Info("player greeted",
		zap.String("session_id", sess.id),
		zap.String("player_name", name),
	)
	return sess.send(protocol.TypeWelcome, "", protocol.Welcome{
		PlayerID:      sess.id,
		ServerVersion: s.version,
	})
}

func (s *GameServer) handlePing(sess *session, _ protocol.Message) error {
	return sess.send(protocol.TypePong, "", nil)
}

func (s *GameServer) handleCreateMatch(sess *session, msg protocol.Message) error {
	var p protocol.CreateMatch
	if err := msg.Decode(&p); err != nil {
		return err
	}
	mt, err := s.lobby.CreateMatch(sess.id, sess.Name(), p.Password)
	if err != nil {
		return err
	}
	return sess.send(protocol.TypeMatchCreated, mt.ID, protocol.MatchCreated{MatchID: mt.ID, Player: 1})
}

func (s *GameServer) handleJoinMatch(sess *session, msg protocol.Message) error {
	var p protocol.JoinMatch
	if err := msg.Decode(&p); err != nil {
		return err
	}
	id := msg.MatchID
	if id == "" {
		id = p.MatchID
	}
	id = strings.ToUpper(strings.TrimSpace(id))

	mt, _, err := s.lobby.JoinMatch(id, sess.id, sess.Name(), p.Password)
	if err != nil {
		return err
	}

	seats := mt.Snapshot().Seats
	for _, seat := range seats {
		peer, ok := s.sessionByID(seat.PlayerID)
		if !ok {
			continue
		}
		peer.send(protocol.TypeMatchJoined, mt.ID, protocol.MatchJoined{Player: seat.Player})
		for _, other := range seats {
			if other.Player != seat.Player {
				peer.send(protocol.TypePlayerJoined, mt.ID, protocol.PlayerJoined{
					Player:     other.Player,
					PlayerName: other.Name,
				})
			}
		}
	}
	return nil
}

func (s *GameServer) handleLeaveMatch(sess *session, _ protocol.Message) error {
	mt, seat, err := s.lobby.LeaveMatch(sess.id)
	if err != nil {
		return err
	}
	sess.send(protocol.TypeMatchLeft, mt.ID, nil)
	s.afterLeave(mt, seat, sess.Name())
	return nil
}

// afterLeave tells the remaining player and drops the replay of a match
// nobody will finish.
func (s *GameServer) afterLeave(mt *lobby.Match, seat int, name string) {
	s.logger.Info("player left match",
		zap.String("match_id", mt.ID),
		zap.Int("player", seat),
		zap.String("player_name", name),
	)
	if s.replays != nil && mt.IsEmpty() && !mt.IsFinished() {
		s.replays.ClearReplay(mt.ID)
	}
	s.broadcast(mt, protocol.TypePlayerLeft, protocol.PlayerLeft{Player: seat, PlayerName: name})
}

func (s *GameServer) handleListMatches(sess *session, _ protocol.Message) error {
	open := s.lobby.ListOpen()
	list := protocol.MatchList{Matches: make([]protocol.MatchInfo, 0, len(open))}
	for _, snap := range open {
		list.Matches = append(list.Matches, matchInfo(snap))
	}
	return sess.send(protocol.TypeMatchList, "", list)
}

func matchInfo(snap lobby.MatchSnapshot) protocol.MatchInfo {
	return protocol.MatchInfo{
		MatchID:     snap.ID,
		HostName:    snap.HostName,
		PlayerCount: snap.PlayerCount,
		IsStarted:   snap.Started,
		Private:     snap.Private,
	}
}

// seated returns the sender's match and seat.
func (s *GameServer) seated(sess *session) (*lobby.Match, int, error) {
	mt, ok := s.lobby.MatchOf(sess.id)
	if !ok {
		return nil, 0, lobby.ErrNotInLobby
	}
	seat := mt.SeatOf(sess.id)
	if seat == 0 {
		return nil, 0, lobby.ErrNotInLobby
	}
	return mt, seat, nil
}

func (s *GameServer) handlePlayerReady(sess *session, msg protocol.Message) error {
	mt, _, err := s.seated(sess)
	if err != nil {
		return err
	}
	if mt.IsStarted() {
		return nil
	}
	var p protocol.PlayerReady
	if err := msg.Decode(&p); err != nil {
		return err
	}
	ready := p.Ready == nil || *p.Ready
	seat, err := mt.SetReady(sess.id, ready)
	if err != nil {
		return err
	}
	s.broadcast(mt, protocol.TypePlayerReadyStatus, protocol.PlayerReadyStatus{
		Player:     seat,
		Ready:      ready,
		PlayerName: sess.Name(),
	})
	return nil
}

func (s *GameServer) handlePlacementDone(sess *session, msg protocol.Message) error {
	mt, _, err := s.seated(sess)
	if err != nil {
		return err
	}
	var p protocol.PlacementDone
	if err := msg.Decode(&p); err != nil {
		return err
	}

	mt.Exclusive(func() {
		var started bool
		started, err = mt.SubmitPlacement(sess.id, p.PlacedCards)
		if started {
			s.startMatch(mt)
		}
	})
	if errors.Is(err, lobby.ErrMatchStarted) {
		return nil
	}
	return err
}

// startMatch sends each player their own view of the new game.
func (s *GameServer) startMatch(mt *lobby.Match) {
	srv := mt.Server()
	if s.replays != nil {
		s.replays.StartRecording(mt.ID, srv.Seed(), mt.Placement(1), mt.Placement(2))
	}
	hash := srv.StateHash()
	for seat := 1; seat <= 2; seat++ {
		if peer, ok := s.sessionByID(mt.PlayerAt(seat)); ok {
			peer.send(protocol.TypeGameStart, mt.ID, protocol.GameStart{
				Snapshot:     srv.Snapshot(seat),
				SnapshotHash: hash,
				Player:       seat,
			})
		}
	}
	s.logger.Info("match started",
		zap.String("match_id", mt.ID),
		zap.Int64("seed", srv.Seed()),
	)
}

func (s *GameServer) handleCommand(sess *session, msg protocol.Message) error {
	mt, seat, err := s.seated(sess)
	if err != nil {
		return err
	}
	if !mt.IsStarted() {
		return lobby.ErrMatchNotStarted
	}
	if sess.isDuplicate(msg.Seq) {
		s.logger.Warn("duplicate command ignored",
			zap.String("session_id", sess.id),
			zap.Int("seq", msg.Seq),
		)
		return nil
	}
	var p protocol.CommandPayload
	if err := msg.Decode(&p); err != nil {
		return errors.New("invalid command")
	}
	cmd := p.Command
	cmd.Player = seat

	mt.Exclusive(func() {
		srv := mt.Server()
		res := srv.Apply(s.ctx, cmd, true)
		hash := srv.StateHash()
		sess.send(protocol.TypeUpdate, mt.ID, protocol.Update{
			Accepted:     res.Accepted,
			Events:       res.Events,
			Snapshot:     res.Snapshot,
			SnapshotHash: hash,
			Error:        res.Error,
		})
		if !res.Accepted {
			return
		}
		mt.ClearDrawOffer()
		if s.replays != nil {
			s.replays.RecordCommand(mt.ID, cmd)
		}
		s.sendUpdate(mt, 3-seat, res, hash)
		s.checkGameOver(mt, "")
	})
	return nil
}

// sendUpdate sends the events of an accepted command to seat, with that
// seat's own snapshot.
func (s *GameServer) sendUpdate(mt *lobby.Match, seat int, res match.CommandResult, hash string) {
	peer, ok := s.sessionByID(mt.PlayerAt(seat))
	if !ok {
		return
	}
	st := mt.Server().Snapshot(seat)
	peer.send(protocol.TypeUpdate, mt.ID, protocol.Update{
		Accepted:     true,
		Events:       res.Events,
		Snapshot:     &st,
		SnapshotHash: hash,
	})
}

func (s *GameServer) handleRequestResync(sess *session, _ protocol.Message) error {
	mt, seat, err := s.seated(sess)
	if err != nil {
		return err
	}
	if !mt.IsStarted() {
		return lobby.ErrMatchNotStarted
	}
	srv := mt.Server()
	return sess.send(protocol.TypeResync, mt.ID, protocol.Resync{
		Snapshot:     srv.Snapshot(seat),
		SnapshotHash: srv.StateHash(),
	})
}

func (s *GameServer) handleChat(sess *session, msg protocol.Message) error {
	mt, seat, err := s.seated(sess)
	if err != nil {
		return err
	}
	var p protocol.Chat
	if err := msg.Decode(&p); err != nil {
		return err
	}
	text := lobby.NormalizeText(p.Text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		text = string([]rune(text)[:MaxChatLength])
	}
	s.broadcast(mt, protocol.TypeChat, protocol.Chat{
		Text:       text,
		PlayerName: sess.Name(),
		Player:     seat,
	})
	return nil
}

func (s *GameServer) handleDrawOffer(sess *session, _ protocol.Message) error {
	mt, _, err := s.seated(sess)
	if err != nil {
		return err
	}
	mt.Exclusive(func() {
		var (
			seat    int
			outcome lobby.DrawOutcome
		)
		seat, outcome, err = mt.OfferDraw(sess.id)
		if err != nil {
			return
		}
		switch outcome {
		case lobby.DrawOffered:
			if peer, ok := s.sessionByID(mt.PlayerAt(3 - seat)); ok {
				peer.send(protocol.TypeDrawOffered, mt.ID, protocol.DrawOffered{Player: seat})
			}
		case lobby.DrawAgreed:
			s.agreeDraw(mt)
		}
	})
	return err
}

func (s *GameServer) handleDrawAccept(sess *session, _ protocol.Message) error {
	mt, _, err := s.seated(sess)
	if err != nil {
		return err
	}
	mt.Exclusive(func() {
		var ok bool
		ok, err = mt.AcceptDraw(sess.id)
		if ok {
			s.agreeDraw(mt)
		}
	})
	return err
}

func (s *GameServer) agreeDraw(mt *lobby.Match) {
	if res := mt.Server().AgreeDraw(); res.Accepted {
		s.finishMatch(mt, 0, "draw")
	}
}

func (s *GameServer) handleConcede(sess *session, _ protocol.Message) error {
	mt, seat, err := s.seated(sess)
	if err != nil {
		return err
	}
	if !mt.IsStarted() {
		return lobby.ErrMatchNotStarted
	}
	mt.Exclusive(func() {
		srv := mt.Server()
		res := srv.Concede(seat)
		if !res.Accepted {
			err = errors.New(res.Error)
			return
		}
		if s.replays != nil {
			s.replays.RecordCommand(mt.ID, game.ConcedeCommand(seat))
		}
		hash := srv.StateHash()
		s.sendUpdate(mt, 1, res, hash)
		s.sendUpdate(mt, 2, res, hash)
		s.checkGameOver(mt, "concede")
	})
	return err
}

func (s *GameServer) checkGameOver(mt *lobby.Match, reason string) {
	winner := mt.Server().Winner()
	if winner == game.NoWinner {
		return
	}
	if reason == "" {
		reason = "victory"
		if winner == 0 {
			reason = "draw"
		}
	}
	s.finishMatch(mt, winner, reason)
}

// finishMatch persists the result once and announces it.
func (s *GameServer) finishMatch(mt *lobby.Match, winner int, reason string) {
	if !mt.Finish(winner) {
		return
	}
	s.logger.Info("match finished",
		zap.String("match_id", mt.ID),
		zap.Int("winner", winner),
		zap.String("reason", reason),
	)
	if s.replays != nil {
		if err := s.replays.SaveReplay(mt.ID); err != nil {
			s.logger.Warn("failed to save replay", zap.String("match_id", mt.ID), zap.Error(err))
		}
	}
	if s.store != nil {
		result := s.buildResult(mt, winner, reason)
		if err := s.store.SaveResult(s.ctx, result); err != nil {
			s.logger.Error("failed to save match result", zap.String("match_id", mt.ID), zap.Error(err))
		}
	}
	s.broadcast(mt, protocol.TypeGameOver, protocol.GameOver{Winner: winner, Reason: reason})
}

func (s *GameServer) buildResult(mt *lobby.Match, winner int, reason string) repository.Result {
	snap := mt.Snapshot()
	srv := mt.Server()
	result := repository.Result{
		MatchID:     mt.ID,
		Winner:      winner,
		Reason:      reason,
		Commands:    len(srv.CommandLog()),
		Seed:        srv.Seed(),
		ContentHash: srv.ContentHash(),
		FinishedAt:  time.Now(),
	}
	if g := srv.Game(); g != nil {
		result.Turns = g.TurnNumber()
	}
	for _, seat := range snap.Seats {
		switch seat.Player {
		case 1:
			result.Player1 = seat.Name
		case 2:
			result.Player2 = seat.Name
		}
	}
	if snap.StartTime != nil {
		result.StartedAt = *snap.StartTime
	}
	if snap.EndTime != nil {
		result.FinishedAt = *snap.EndTime
	}
	return result
}

// broadcast sends one message to every seated player of mt.
func (s *GameServer) broadcast(mt *lobby.Match, t protocol.MessageType, payload any) {
	for _, id := range mt.PlayerIDs() {
		if peer, ok := s.sessionByID(id); ok {
			peer.send(t, mt.ID, payload)
		}
	}
}
