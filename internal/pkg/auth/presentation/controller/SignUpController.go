package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/pkg/auth/application/usecase"
)

// SignUpController handles the JSON sign-up endpoint.
type SignUpController struct {
	UC *usecase.SignUpUseCase
}

func NewSignUpController(uc *usecase.SignUpUseCase) *SignUpController {
	return &SignUpController{UC: uc}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

func (h *SignUpController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		res, err := h.UC.Execute(ctx, usecase.SignUpInput{Email: req.Email, Password: req.Password, FullName: req.FullName})
		if err != nil {
			writeAuthError(c, err)
			return
		}

		msg := accountReadyMessage
		if res.ConfirmationSent {
			msg = ConfirmationPendingMessage
		}
		c.JSON(http.StatusCreated, gin.H{
			"user":              res.User,
			"confirmation_sent": res.ConfirmationSent,
			"message":           msg,
		})
	}
}
