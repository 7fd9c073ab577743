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

// CreateChatController handles the create-chat endpoint only (one controller per endpoint)
type CreateChatController struct {
	UC *usecase.CreateChatUseCase
}

func NewCreateChatController(uc *usecase.CreateChatUseCase) *CreateChatController {
	return &CreateChatController{UC: uc}
}

type createChatRequest struct {
	Name           string   `json:"name" binding:"required"`
	Kind           string   `json:"kind"`
	ParticipantIDs []string `json:"participant_ids"`
}

func (h *CreateChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		var req createChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.CreateChatInput{
			Name:           req.Name,
			Kind:           chat.ConversationKind(req.Kind),
			CreatorID:      s.UserID,
			ParticipantIDs: req.ParticipantIDs,
		})
		if err != nil {
			writeChatError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conv)
	}
}
