package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	feedport "go-inbox/internal/infrastructure/changefeed/port"
	qport "go-inbox/internal/infrastructure/queue/port"
	"go-inbox/internal/infrastructure/realtime"
	"go-inbox/internal/pkg/auth/presentation/middleware"
	"go-inbox/internal/pkg/chat/application/usecase"
	repository "go-inbox/internal/pkg/chat/persistence/repository/port"
	"go-inbox/internal/pkg/chat/presentation/controller"
)

// Deps is what the chat routes are built from.
type Deps struct {
	Repo            repository.ChatRepository
	Feed            feedport.Publisher
	Queue           qport.Client
	Router          *realtime.Router
	Logger          *slog.Logger
	ReadTimeout     time.Duration
	InflightTimeout time.Duration
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
// Every route requires a session.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	createCtl := controller.NewCreateChatController(usecase.NewCreateChatUseCase(d.Repo))
	listCtl := controller.NewListChatsController(usecase.NewListChatsUseCase(d.Repo), d.Logger)
	sendMsgUC := usecase.NewSendMessageUseCase(d.Repo, d.Feed, d.Logger)
	sendMsgCtl := controller.NewSendMessageController(sendMsgUC)
	getMsgCtl := controller.NewGetMessageController(usecase.NewGetMessageUseCase(d.Repo), d.Logger)
	membersCtl := controller.NewListParticipantsController(usecase.NewListParticipantsUseCase(d.Repo))
	attachCtl := controller.NewShareAttachmentController(usecase.NewShareAttachmentUseCase(d.Repo, d.Queue))
	socketCtl := controller.NewChatSocketController(d.Router, sendMsgUC, usecase.NewJoinConversationUseCase(d.Repo), controller.SocketOptions{
		ReadTimeout:     d.ReadTimeout,
		InflightTimeout: d.InflightTimeout,
		Logger:          d.Logger,
	})

	g = g.Group("", middleware.RequireSession())

	// GET /api/v1/chats -> conversations of the caller
	g.GET("/chats", listCtl.Handle())

	// POST /api/v1/chats -> create a chat
	g.POST("/chats", createCtl.Handle())

	// GET /api/v1/chats/:chatId/messages -> fetch messages by chat id
	g.GET("/chats/:chatId/messages", getMsgCtl.Handle())

	// POST /api/v1/chats/:chatId/messages -> send a message into a chat
	g.POST("/chats/:chatId/messages", sendMsgCtl.Handle())

	// GET /api/v1/chats/:chatId/participants -> member user ids
	g.GET("/chats/:chatId/participants", membersCtl.Handle())

	// POST /api/v1/chats/:chatId/attachments -> queue an attachment placeholder
	g.POST("/chats/:chatId/attachments", attachCtl.Handle())

	// GET /api/v1/realtime/ws -> websocket endpoint for realtime chat
	g.GET("/realtime/ws", socketCtl.Handle())
}

// RegisterPageRoutes binds the conversation view. The session gate must
// run before these handlers; it redirects anonymous callers.
func RegisterPageRoutes(r gin.IRouter, d Deps) {
	viewCtl := controller.NewChatViewController(usecase.NewListChatsUseCase(d.Repo), usecase.NewGetMessageUseCase(d.Repo), d.Logger)
	sendCtl := controller.NewSendFormController(usecase.NewSendMessageUseCase(d.Repo, d.Feed, d.Logger), d.Logger)

	// GET /chat?c=<id> -> conversation view
	r.GET("/chat", viewCtl.Handle())

	// POST /chat/send -> send from the view, then back to it
	r.POST("/chat/send", sendCtl.Handle())
}
