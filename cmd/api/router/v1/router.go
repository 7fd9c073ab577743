package v1

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	authHttp "go-inbox/internal/pkg/auth/presentation/http"
	"go-inbox/internal/pkg/auth/presentation/middleware"
	chatHttp "go-inbox/internal/pkg/chat/presentation/http"
	"go-inbox/internal/web"
)

// Deps collects what the routes are built from.
type Deps struct {
	Auth        *authHttp.Services
	AuthOptions authHttp.RouteOptions
	Chat        chatHttp.Deps
	Logger      *slog.Logger
}

// RegisterRoutes mounts the views and all version 1 API routes under /api/v1.
// Every route registered here runs behind the session gate.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.SetHTMLTemplate(web.Templates())
	r.Use(middleware.SessionGate(d.Auth.GetSession, d.Logger))

	authHttp.RegisterPageRoutes(r, d.Auth, d.AuthOptions)
	chatHttp.RegisterPageRoutes(r, d.Chat)

	v1 := r.Group("/api/v1")
	authHttp.RegisterAPIRoutes(v1, d.Auth, d.AuthOptions)
	chatHttp.RegisterRoutes(v1, d.Chat)
}
