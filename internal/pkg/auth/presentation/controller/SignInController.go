package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/application/usecase"
)

// SignInController handles the JSON sign-in endpoint and returns a bearer token.
type SignInController struct {
	UC *usecase.SignInUseCase
}

func NewSignInController(uc *usecase.SignInUseCase) *SignInController {
	return &SignInController{UC: uc}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *SignInController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		res, err := h.UC.Execute(ctx, usecase.SignInInput{Email: req.Email, Password: req.Password})
		if err != nil {
			writeAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": res.Token,
			"token_type":   "bearer",
			"expires_at":   res.Session.ExpiresAt,
			"session":      res.Session,
		})
	}
}
