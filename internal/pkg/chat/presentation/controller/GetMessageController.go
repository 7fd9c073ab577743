package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/presentation/middleware"
	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/usecase"
)

// GetMessageController handles fetching messages by chat ID (one controller per endpoint).
// Every message is returned, oldest first; a failed query degrades to [].
type GetMessageController struct {
	UC     *usecase.GetMessageUseCase
	Logger *slog.Logger
}

func NewGetMessageController(uc *usecase.GetMessageUseCase, logger *slog.Logger) *GetMessageController {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetMessageController{UC: uc, Logger: logger}
}

func (h *GetMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID, ok := chatIDParam(c)
		if !ok {
			return
		}
		s := middleware.SessionFrom(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessageInput{ConversationID: chatID, UserID: s.UserID})
		if err != nil {
			if !errors.Is(err, usecase.ErrPersistence) {
				writeChatError(c, err)
				return
			}
			h.Logger.ErrorContext(ctx, "list messages", "chat_id", chatID, "err", err)
			msgs = []chat.Message{}
		}
		c.JSON(http.StatusOK, msgs)
	}
}
