package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-inbox/internal/infrastructure/realtime"
	"go-inbox/internal/pkg/auth/presentation/middleware"
	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/usecase"
)

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
// The caller is identified by the session the gate resolved; rooms are
// joined per conversation and only after a participant check.
type ChatSocketController struct {
	router          *realtime.Router
	sendMessageUC   *usecase.SendMessageUseCase
	joinRoomUC      *usecase.JoinConversationUseCase
	readTimeout     time.Duration
	inflightTimeout time.Duration
	logger          *slog.Logger
}

// SocketOptions bounds the socket: ReadTimeout is the idle limit between
// client frames or pongs, InflightTimeout bounds each frame's backend work.
type SocketOptions struct {
	ReadTimeout     time.Duration
	InflightTimeout time.Duration
	Logger          *slog.Logger
}

func NewChatSocketController(router *realtime.Router, send *usecase.SendMessageUseCase, join *usecase.JoinConversationUseCase, opts SocketOptions) *ChatSocketController {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.InflightTimeout <= 0 {
		opts.InflightTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ChatSocketController{
		router:          router,
		sendMessageUC:   send,
		joinRoomUC:      join,
		readTimeout:     opts.ReadTimeout,
		inflightTimeout: opts.InflightTimeout,
		logger:          opts.Logger,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// same-origin browsers and non-browser clients; the session cookie is SameSite=Lax
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Type           string  `json:"type"`
	ConversationID string  `json:"conversation_id,omitempty"`
	Body           string  `json:"body,omitempty"`
	Kind           string  `json:"kind,omitempty"`
	ClientID       *string `json:"client_id,omitempty"`
}

type errorFrame struct {
	Type     string  `json:"type"`
	Code     string  `json:"code"`
	Error    string  `json:"error"`
	ClientID *string `json:"client_id,omitempty"`
}

type ackFrame struct {
	Type           string        `json:"type"`
	ConversationID string        `json:"conversation_id,omitempty"`
	UserID         string        `json:"user_id,omitempty"`
	Message        *chat.Message `json:"message,omitempty"`
}

// Handle upgrades HTTP connections to websocket and processes frames until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		if s == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			ctl.logger.DebugContext(c.Request.Context(), "websocket upgrade", "err", err)
			return
		}

		conn := realtime.NewConnection(s.UserID, ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(ctl.readTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(ctl.readTimeout))
		})

		ctl.reply(conn, ackFrame{Type: "connected", UserID: s.UserID})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.logger.DebugContext(c.Request.Context(), "websocket read", "user_id", s.UserID, "err", err)
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(ctl.readTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload", nil)
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c.Request.Context(), conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "message":
				ctl.handleMessage(c.Request.Context(), conn, s.UserID, s.FullName, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type", nil)
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(parent context.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required", nil)
		return
	}
	if !validConversationID(frame.ConversationID) {
		ctl.handleUseCaseError(conn, chat.ErrNotFound, nil)
		return
	}

	ctx, cancel := context.WithTimeout(parent, ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err, nil)
		return
	}

	ctl.router.Join(frame.ConversationID, conn)
	ctl.reply(conn, ackFrame{Type: "joined", ConversationID: frame.ConversationID})
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required", nil)
		return
	}
	ctl.router.Leave(frame.ConversationID, conn)
	ctl.reply(conn, ackFrame{Type: "left", ConversationID: frame.ConversationID})
}

// handleMessage stores the message and acks the sender with the stored
// row. Room delivery happens through the change feed, never from here.
func (ctl *ChatSocketController) handleMessage(parent context.Context, conn *realtime.Connection, userID, userName string, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required", frame.ClientID)
		return
	}
	if !validConversationID(frame.ConversationID) {
		ctl.handleUseCaseError(conn, chat.ErrNotFound, frame.ClientID)
		return
	}

	ctx, cancel := context.WithTimeout(parent, ctl.inflightTimeout)
	defer cancel()

	result, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.ConversationID,
		SenderID:       userID,
		SenderName:     userName,
		Body:           frame.Body,
		Kind:           chat.MessageKind(frame.Kind),
		ClientID:       frame.ClientID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err, frame.ClientID)
		return
	}
	ctl.reply(conn, ackFrame{Type: "sent", ConversationID: frame.ConversationID, Message: result})
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error, clientID *string) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.logger.Error("websocket frame", "user_id", conn.UserID, "err", err)
		ctl.replyError(conn, "internal_error", "unexpected persistence error", clientID)
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation", clientID)
	case errors.Is(err, chat.ErrNotFound):
		ctl.replyError(conn, "not_found", err.Error(), clientID)
	default:
		ctl.replyError(conn, "bad_request", err.Error(), clientID)
	}
}

func (ctl *ChatSocketController) reply(conn *realtime.Connection, frame ackFrame) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string, clientID *string) {
	frame := errorFrame{
		Type:     "error",
		Code:     code,
		Error:    message,
		ClientID: clientID,
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
