package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/application/usecase"
	"go-inbox/internal/pkg/auth/presentation/middleware"
)

// SignOutController revokes the caller's session (JSON API).
type SignOutController struct {
	UC     *usecase.SignOutUseCase
	Cookie CookieOptions
}

func NewSignOutController(uc *usecase.SignOutUseCase, cookie CookieOptions) *SignOutController {
	return &SignOutController{UC: uc, Cookie: cookie}
}

func (h *SignOutController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		if s == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, s.ID); err != nil {
			writeAuthError(c, err)
			return
		}
		middleware.ClearSessionCookie(c, h.Cookie.Secure)
		c.Status(http.StatusNoContent)
	}
}
