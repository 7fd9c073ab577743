package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	chat "go-inbox/internal/pkg/chat/application/domain"
	"go-inbox/internal/pkg/chat/application/usecase"
)

func writeChatError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	msg := err.Error()
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		status, msg = http.StatusInternalServerError, "unexpected persistence error"
	case errors.Is(err, chat.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, chat.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": msg})
}

// chatIDParam reads :chatId. Anything that is not a conversation id is
// answered with 404 before it reaches the repository.
func chatIDParam(c *gin.Context) (string, bool) {
	id := c.Param("chatId")
	if !validConversationID(id) {
		writeChatError(c, chat.ErrNotFound)
		return "", false
	}
	return id, true
}

func validConversationID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
