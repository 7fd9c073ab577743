package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/presentation/middleware"
	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/usecase"
)

// ListChatsController lists the caller's conversations. A failed query is
// logged and answered with an empty list.
type ListChatsController struct {
	UC     *usecase.ListChatsUseCase
	Logger *slog.Logger
}

func NewListChatsController(uc *usecase.ListChatsUseCase, logger *slog.Logger) *ListChatsController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListChatsController{UC: uc, Logger: logger}
}

func (h *ListChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.UC.Execute(ctx, usecase.ListChatsInput{UserID: s.UserID})
		if err != nil {
			h.Logger.ErrorContext(ctx, "list chats", "user_id", s.UserID, "err", err)
			convs = []chat.Conversation{}
		}
		c.JSON(http.StatusOK, convs)
	}
}
