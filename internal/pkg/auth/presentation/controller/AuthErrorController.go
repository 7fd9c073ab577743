package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/web"
)

// AuthErrorController renders the error view for ?error=CODE.
type AuthErrorController struct{}

func NewAuthErrorController() *AuthErrorController { return &AuthErrorController{} }

func (h *AuthErrorController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, web.ErrorView, gin.H{"Message": ErrorMessage(c.Query("error"))})
	}
}
