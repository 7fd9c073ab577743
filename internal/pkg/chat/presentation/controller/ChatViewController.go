package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-inbox/internal/pkg/auth/presentation/middleware"
	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/usecase"
	"go-inbox/internal/web"
)

// ChatViewController renders GET /chat: the caller's conversations and
// the messages of the one picked by ?c= (the first one by default).
// Query failures render as empty lists.
type ChatViewController struct {
	ListChats   *usecase.ListChatsUseCase
	GetMessages *usecase.GetMessageUseCase
	Logger      *slog.Logger
}

func NewChatViewController(listChats *usecase.ListChatsUseCase, getMessages *usecase.GetMessageUseCase, logger *slog.Logger) *ChatViewController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatViewController{ListChats: listChats, GetMessages: getMessages, Logger: logger}
}

func (h *ChatViewController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.ListChats.Execute(ctx, usecase.ListChatsInput{UserID: s.UserID})
		if err != nil {
			h.Logger.ErrorContext(ctx, "chat view: list chats", "err", err)
			convs = nil
		}

		selected := pickConversation(convs, c.Query("c"))
		var msgs []chat.Message
		selectedID := ""
		if selected != nil {
			selectedID = selected.ID
			msgs, err = h.GetMessages.Execute(ctx, usecase.GetMessageInput{ConversationID: selected.ID, UserID: s.UserID})
			if err != nil {
				h.Logger.ErrorContext(ctx, "chat view: list messages", "chat_id", selected.ID, "err", err)
				msgs = nil
			}
		}

		c.HTML(http.StatusOK, web.ChatView, gin.H{
			"Session":       s,
			"Conversations": convs,
			"Selected":      selected,
			"SelectedID":    selectedID,
			"Messages":      msgs,
			"ClientID":      uuid.NewString(),
		})
	}
}

func pickConversation(convs []chat.Conversation, id string) *chat.Conversation {
	if len(convs) == 0 {
		return nil
	}
	for i := range convs {
		if convs[i].ID == id {
			return &convs[i]
		}
	}
	return &convs[0]
}
