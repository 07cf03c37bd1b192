package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"vocabduel/internal/engine"
	"vocabduel/internal/models"
)

const (
	wsWriteTimeout = 3 * time.Second
	wsPingInterval = 30 * time.Second
	wsOutboxSize   = 8
)

// ServerMessage is everything pushed down a duel socket
type ServerMessage struct {
	Type  string           `json:"type"`
	Duel  *models.DuelView `json:"duel,omitempty"`
	Error *ErrorResponse   `json:"error,omitempty"`
}

// ClientMessage is a command sent up a duel socket. Type is an engine command name
// such as "submit_answer".
type ClientMessage struct {
	Type              string   `json:"type" validate:"required"`
	Answer            string   `json:"answer" validate:"max=200"`
	QuestionIndex     int      `json:"question_index" validate:"gte=0"`
	HintType          string   `json:"hint_type" validate:"omitempty,hinttype"`
	Position          int      `json:"position" validate:"gte=0"`
	Option            string   `json:"option"`
	Options           []string `json:"options" validate:"max=10"`
	TypedLetters      []string `json:"typed_letters" validate:"max=200"`
	RevealedPositions []int    `json:"revealed_positions" validate:"max=200,dive,gte=0"`
	Effect            string   `json:"effect" validate:"omitempty,sabotage"`
}

var socketCommands = map[engine.CommandType]bool{
	engine.CmdSubmitAnswer: true, engine.CmdTimeout: true,
	engine.CmdRequestHintA: true, engine.CmdAcceptHintA: true, engine.CmdProvideHintA: true,
	engine.CmdUpdateHintStateA: true, engine.CmdCancelHintA: true,
	engine.CmdRequestHintB: true, engine.CmdAcceptHintB: true, engine.CmdEliminateOptionB: true,
	engine.CmdCancelHintB: true, engine.CmdSendSabotage: true,
	engine.CmdPauseCountdown: true, engine.CmdRequestUnpause: true, engine.CmdConfirmUnpause: true,
}

func (m ClientMessage) command(playerID string) (engine.Command, bool) {
	typ := engine.CommandType(m.Type)
	if !socketCommands[typ] {
		return engine.Command{}, false
	}
	return engine.Command{
		Type:              typ,
		PlayerID:          playerID,
		Answer:            m.Answer,
		QuestionIndex:     m.QuestionIndex,
		HintType:          models.HintType(m.HintType),
		Position:          m.Position,
		Option:            m.Option,
		Options:           m.Options,
		TypedLetters:      m.TypedLetters,
		RevealedPositions: m.RevealedPositions,
		Effect:            models.SabotageEffect(m.Effect),
	}, true
}

// Subscribe handles GET /api/duels/{id}/ws. The socket receives a snapshot on connect
// and after every committed change, and accepts in-game commands.
func (h *DuelHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	duelID := chi.URLParam(r, "id")
	playerID := GetPlayerFromContext(r.Context())

	initial, err := h.duels.Get(r.Context(), duelID, playerID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("Websocket upgrade failed", "duel_id", duelID, "error", err)
		return
	}
	defer conn.CloseNow()

	out := make(chan models.DuelView, wsOutboxSize)
	clientID := uuid.NewString()
	h.hub.Subscribe(duelID, clientID, initial, out)
	defer h.hub.Unsubscribe(duelID, clientID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine; errors from the reader are funnelled through it so writes never interleave
	replies := make(chan ErrorResponse, 4)
	go func() {
		defer cancel()
		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case view, ok := <-out:
				if !ok {
					if ctx.Err() == nil {
						conn.Close(websocket.StatusTryAgainLater, "subscriber fell behind")
					}
					return
				}
				view = view.For(playerID)
				if !h.write(ctx, conn, ServerMessage{Type: "snapshot", Duel: &view}) {
					return
				}
			case reply := <-replies:
				if !h.write(ctx, conn, ServerMessage{Type: "error", Error: &reply}) {
					return
				}
			case <-ping.C:
				pctx, pcancel := context.WithTimeout(ctx, wsWriteTimeout)
				err := conn.Ping(pctx)
				pcancel()
				if err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					slog.Debug("Websocket closed", "duel_id", duelID, "client_id", clientID, "error", err)
				}
			}
			return
		}

		reply, ok := h.handleMessage(ctx, duelID, playerID, data)
		if ok {
			continue
		}
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

// handleMessage executes one client message. Successful commands reach the socket as a
// hub snapshot, so only failures produce a direct reply.
func (h *DuelHandler) handleMessage(ctx context.Context, duelID, playerID string, data []byte) (ErrorResponse, bool) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ErrorResponse{Kind: KindInvalidRequest, Message: "bad json"}, false
	}
	if err := h.validate.Struct(msg); err != nil {
		return ErrorResponse{Kind: KindInvalidRequest, Message: err.Error()}, false
	}
	cmd, ok := msg.command(playerID)
	if !ok {
		return ErrorResponse{Kind: KindInvalidRequest, Message: "unknown type " + msg.Type}, false
	}

	if _, err := h.duels.Execute(ctx, duelID, cmd); err != nil {
		_, kind := classify(err)
		if kind == KindInternal {
			slog.Error("Websocket command failed", "duel_id", duelID, "command", cmd.Type, "error", err)
			return ErrorResponse{Kind: kind, Message: ErrInternalServerError}, false
		}
		return ErrorResponse{Kind: kind, Message: err.Error()}, false
	}
	return ErrorResponse{}, true
}

func (h *DuelHandler) write(ctx context.Context, conn *websocket.Conn, msg ServerMessage) bool {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode websocket message", "error", err)
		return true
	}
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, payload) == nil
}
