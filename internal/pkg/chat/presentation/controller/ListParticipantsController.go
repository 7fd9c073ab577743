package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/presentation/middleware"
	"go-inbox/internal/pkg/chat/application/usecase"
)

type ListParticipantsController struct {
	UC *usecase.ListParticipantsUseCase
}

func NewListParticipantsController(uc *usecase.ListParticipantsUseCase) *ListParticipantsController {
	return &ListParticipantsController{UC: uc}
}

func (h *ListParticipantsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID, ok := chatIDParam(c)
		if !ok {
			return
		}
		s := middleware.SessionFrom(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ids, err := h.UC.Execute(ctx, usecase.ListParticipantsInput{ConversationID: chatID, UserID: s.UserID})
		if err != nil {
			writeChatError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"participant_ids": ids})
	}
}
