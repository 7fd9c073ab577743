package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/application/usecase"
	"go-inbox/internal/pkg/auth/presentation/controller"
	"go-inbox/internal/pkg/auth/presentation/middleware"
)

// Services bundles the auth use cases shared by the pages, the JSON API
// and the session gate.
type Services struct {
	SignUp       *usecase.SignUpUseCase
	SignIn       *usecase.SignInUseCase
	SignOut      *usecase.SignOutUseCase
	GetSession   *usecase.GetSessionUseCase
	ConfirmEmail *usecase.ConfirmEmailUseCase
}

// RouteOptions carries what the controllers need beyond the use cases.
// Limiter guards the credential endpoints; nil disables it.
type RouteOptions struct {
	Cookie  controller.CookieOptions
	Limiter gin.HandlerFunc
	Logger  *slog.Logger
}

func (o RouteOptions) limited(h gin.HandlerFunc) []gin.HandlerFunc {
	if o.Limiter == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{o.Limiter, h}
}

// RegisterPageRoutes binds the browser views: login, logout, the email
// confirmation callback and the error view.
func RegisterPageRoutes(r gin.IRouter, svc *Services, opts RouteOptions) {
	loginPage := controller.NewLoginPageController()
	loginForm := controller.NewLoginFormController(svc.SignIn, svc.SignUp, opts.Cookie, opts.Logger)
	logoutForm := controller.NewLogoutFormController(svc.SignOut, opts.Cookie, opts.Logger)
	callback := controller.NewAuthCallbackController(svc.ConfirmEmail, opts.Logger)
	errorPage := controller.NewAuthErrorController()

	// GET / -> login view (the gate sends signed-in users to /chat)
	r.GET("/", loginPage.Handle())

	// POST /login -> mode=signin|signup
	r.POST("/login", opts.limited(loginForm.Handle())...)

	// POST /logout -> revoke session, back to /
	r.POST("/logout", logoutForm.Handle())

	// GET /auth/callback?token= -> email confirmation
	r.GET("/auth/callback", callback.Handle())

	// GET /auth/error?error=CODE -> error view
	r.GET("/auth/error", errorPage.Handle())
}

// RegisterAPIRoutes binds the JSON auth endpoints under g (/api/v1).
func RegisterAPIRoutes(g *gin.RouterGroup, svc *Services, opts RouteOptions) {
	signUp := controller.NewSignUpController(svc.SignUp)
	signIn := controller.NewSignInController(svc.SignIn)
	signOut := controller.NewSignOutController(svc.SignOut, opts.Cookie)
	session := controller.NewSessionController()

	a := g.Group("/auth")
	a.POST("/signup", opts.limited(signUp.Handle())...)
	a.POST("/signin", opts.limited(signIn.Handle())...)
	a.POST("/signout", middleware.RequireSession(), signOut.Handle())
	a.GET("/session", middleware.RequireSession(), session.Handle())
}
