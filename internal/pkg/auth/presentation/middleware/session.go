package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	auth "go-inbox/internal/pkg/auth/application/domain"
	"go-inbox/internal/pkg/auth/application/usecase"
)

// SessionCookie carries the bearer token for browser clients.
const SessionCookie = "inbox_session"

const sessionKey = "auth.session"

// SessionGate resolves the caller's session once per request and applies
// the page redirects: without a session any /chat path goes to "/", with
// a session "/" goes to "/chat". A failed lookup counts as no session.
func SessionGate(uc *usecase.GetSessionUseCase, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		if token := requestToken(c.Request); token != "" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			s, err := uc.Execute(ctx, token)
			cancel()
			if err != nil {
				logger.DebugContext(c.Request.Context(), "session rejected", "path", c.Request.URL.Path, "err", err)
			} else {
				SetSession(c, s)
			}
		}

		path := c.Request.URL.Path
		s := SessionFrom(c)
		switch {
		case s == nil && strings.HasPrefix(path, "/chat"):
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		case s != nil && path == "/":
			c.Redirect(http.StatusFound, "/chat")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSession answers 401 JSON when the gate found no session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Next()
	}
}

// SetSession stores a resolved session on the request context.
func SetSession(c *gin.Context, s *auth.Session) {
	c.Set(sessionKey, s)
}

// SessionFrom returns the session resolved by SessionGate, or nil.
func SessionFrom(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*auth.Session)
	return s
}

func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if ck, err := r.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}
