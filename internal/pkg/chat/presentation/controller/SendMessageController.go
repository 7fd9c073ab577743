package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/presentation/middleware"
	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/usecase"
)

// SendMessageController handles the send-message endpoint only (one controller per endpoint)
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{UC: uc}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	Body     string  `json:"body" binding:"required"`
	Kind     string  `json:"kind"`
	ClientID *string `json:"client_id"`
}

// Handle stores the message and answers with the stored row. Resending a
// client_id answers with the row stored the first time.
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID, ok := chatIDParam(c)
		if !ok {
			return
		}
		s := middleware.SessionFrom(c)

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: chatID,
			SenderID:       s.UserID,
			SenderName:     s.FullName,
			Body:           req.Body,
			Kind:           chat.MessageKind(req.Kind),
			ClientID:       req.ClientID,
		})
		if err != nil {
			writeChatError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}
