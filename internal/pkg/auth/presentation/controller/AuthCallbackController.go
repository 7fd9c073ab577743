package controller

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/application/usecase"
)

// AuthCallbackController is the target of the confirmation link. A valid
// token confirms the account and returns to the login view; anything
// else lands on the error view.
type AuthCallbackController struct {
	UC     *usecase.ConfirmEmailUseCase
	Logger *slog.Logger
}

func NewAuthCallbackController(uc *usecase.ConfirmEmailUseCase, logger *slog.Logger) *AuthCallbackController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthCallbackController{UC: uc, Logger: logger}
}

func (h *AuthCallbackController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if code := c.Query("error"); code != "" {
			c.Redirect(http.StatusFound, "/auth/error?error="+url.QueryEscape(code))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, c.Query("token")); err != nil {
			h.Logger.InfoContext(ctx, "email confirmation failed", "err", err)
			c.Redirect(http.StatusFound, "/auth/error?error="+CodeAuthError)
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}
