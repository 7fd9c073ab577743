package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/application/usecase"
	"go-inbox/internal/pkg/auth/presentation/middleware"
)

// LogoutFormController handles POST /logout from the conversation view.
// The cookie is cleared even when revoking the session fails.
type LogoutFormController struct {
	UC     *usecase.SignOutUseCase
	Cookie CookieOptions
	Logger *slog.Logger
}

func NewLogoutFormController(uc *usecase.SignOutUseCase, cookie CookieOptions, logger *slog.Logger) *LogoutFormController {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogoutFormController{UC: uc, Cookie: cookie, Logger: logger}
}

func (h *LogoutFormController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s := middleware.SessionFrom(c); s != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := h.UC.Execute(ctx, s.ID); err != nil {
				h.Logger.WarnContext(ctx, "sign out", "session_id", s.ID, "err", err)
			}
		}
		middleware.ClearSessionCookie(c, h.Cookie.Secure)
		c.Redirect(http.StatusSeeOther, "/")
	}
}
