package controller

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/presentation/middleware"
	"go-inbox/internal/pkg/chat/application/usecase"
)

// SendFormController handles POST /chat/send from the conversation view.
// A failed send is logged and the view is shown again.
type SendFormController struct {
	UC     *usecase.SendMessageUseCase
	Logger *slog.Logger
}

func NewSendFormController(uc *usecase.SendMessageUseCase, logger *slog.Logger) *SendFormController {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendFormController{UC: uc, Logger: logger}
}

func (h *SendFormController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		chatID := c.PostForm("c")
		if !validConversationID(chatID) {
			c.Redirect(http.StatusSeeOther, "/chat")
			return
		}

		var clientID *string
		if v := c.PostForm("client_id"); v != "" {
			clientID = &v
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		_, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: chatID,
			SenderID:       s.UserID,
			SenderName:     s.FullName,
			Body:           c.PostForm("body"),
			ClientID:       clientID,
		})
		if err != nil {
			h.Logger.WarnContext(ctx, "chat view: send", "chat_id", chatID, "err", err)
		}
		c.Redirect(http.StatusSeeOther, "/chat?c="+url.QueryEscape(chatID))
	}
}
