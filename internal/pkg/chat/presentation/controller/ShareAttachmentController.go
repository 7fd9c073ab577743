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

// ShareAttachmentController accepts file metadata and queues the upload
// placeholder. Progress arrives on the realtime feed.
type ShareAttachmentController struct {
	UC *usecase.ShareAttachmentUseCase
}

func NewShareAttachmentController(uc *usecase.ShareAttachmentUseCase) *ShareAttachmentController {
	return &ShareAttachmentController{UC: uc}
}

type shareAttachmentRequest struct {
	FileName  string  `json:"file_name" binding:"required"`
	SizeBytes int64   `json:"size_bytes"`
	Kind      string  `json:"kind" binding:"required"`
	ClientID  *string `json:"client_id"`
}

func (h *ShareAttachmentController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID, ok := chatIDParam(c)
		if !ok {
			return
		}
		s := middleware.SessionFrom(c)

		var req shareAttachmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		res, err := h.UC.Execute(ctx, usecase.ShareAttachmentInput{
			ConversationID: chatID,
			SenderID:       s.UserID,
			SenderName:     s.FullName,
			Attachment: chat.Attachment{
				FileName:  req.FileName,
				SizeBytes: req.SizeBytes,
				Kind:      chat.MessageKind(req.Kind),
			},
			ClientID: req.ClientID,
		})
		if err != nil {
			writeChatError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":    "queued",
			"task_id":   res.TaskID,
			"client_id": res.ClientID,
			"chat_id":   chatID,
		})
	}
}
