package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/application/usecase"
	"go-inbox/internal/pkg/auth/presentation/middleware"
	"go-inbox/internal/web"
)

// LoginFormController handles POST /login for both sign-in and sign-up.
// Failures re-render the login view with the error text; only a
// successful sign-in navigates away.
type LoginFormController struct {
	SignIn *usecase.SignInUseCase
	SignUp *usecase.SignUpUseCase
	Cookie CookieOptions
	Logger *slog.Logger
}

func NewLoginFormController(signIn *usecase.SignInUseCase, signUp *usecase.SignUpUseCase, cookie CookieOptions, logger *slog.Logger) *LoginFormController {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginFormController{SignIn: signIn, SignUp: signUp, Cookie: cookie, Logger: logger}
}

func (h *LoginFormController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := c.DefaultPostForm("mode", "signin")
		email := c.PostForm("email")
		password := c.PostForm("password")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		switch mode {
		case "signin":
			res, err := h.SignIn.Execute(ctx, usecase.SignInInput{Email: email, Password: password})
			if err != nil {
				h.fail(c, email, err)
				return
			}
			middleware.SetSessionCookie(c, res.Token, h.Cookie.TTL, h.Cookie.Secure)
			c.Redirect(http.StatusSeeOther, "/chat")
		case "signup":
			res, err := h.SignUp.Execute(ctx, usecase.SignUpInput{Email: email, Password: password})
			if err != nil {
				h.fail(c, email, err)
				return
			}
			msg := accountReadyMessage
			if res.ConfirmationSent {
				msg = ConfirmationPendingMessage
			}
			c.HTML(http.StatusOK, web.LoginView, loginView(email, "", msg))
		default:
			c.HTML(http.StatusBadRequest, web.LoginView, loginView(email, "unknown mode", ""))
		}
	}
}

func (h *LoginFormController) fail(c *gin.Context, email string, err error) {
	text := err.Error()
	if !userFacing(err) {
		h.Logger.ErrorContext(c.Request.Context(), "login form", "err", err)
		text = unexpectedErrorMessage
	}
	c.HTML(http.StatusOK, web.LoginView, loginView(email, text, ""))
}
