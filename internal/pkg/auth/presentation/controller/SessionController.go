package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/presentation/middleware"
)

// SessionController reports the session resolved by the gate.
type SessionController struct{}

func NewSessionController() *SessionController { return &SessionController{} }

func (h *SessionController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		if s == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": s})
	}
}
