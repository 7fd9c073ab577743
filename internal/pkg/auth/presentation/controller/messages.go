package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auth "go-inbox/internal/pkg/auth/application/domain"
)

const (
	// ConfirmationPendingMessage is shown after a sign-up that needs email confirmation.
	ConfirmationPendingMessage = "✅ Check your email for the confirmation link! After clicking it, you'll be redirected back here."
	accountReadyMessage        = "✅ Account created. You can sign in now."
	unexpectedErrorMessage     = "An unexpected error occurred. Please try again."
)

// Error codes understood by the error view.
const (
	CodeAuthError    = "auth_error"
	CodeAccessDenied = "access_denied"
)

// ErrorMessage maps an error code to the text of the error view.
func ErrorMessage(code string) string {
	switch code {
	case CodeAuthError:
		return "There was an error confirming your email. Please try signing up again."
	case CodeAccessDenied:
		return "Access was denied. Please check your email and try again."
	default:
		return "An unexpected error occurred during authentication."
	}
}

// CookieOptions configures the browser session cookie.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

// userFacing reports whether err carries text meant for the user.
func userFacing(err error) bool {
	for _, e := range []error{
		auth.ErrInvalidCredentials,
		auth.ErrEmailNotConfirmed,
		auth.ErrUserExists,
		auth.ErrWeakPassword,
		auth.ErrInvalidEmail,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func writeAuthError(c *gin.Context, err error) {
	if userFacing(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": unexpectedErrorMessage})
}

func loginView(email, errText, message string) gin.H {
	return gin.H{"Email": email, "Error": errText, "Message": message}
}
