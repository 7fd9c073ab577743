package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-inbox/internal/web"
)

// LoginPageController renders the login view.
type LoginPageController struct{}

func NewLoginPageController() *LoginPageController { return &LoginPageController{} }

func (h *LoginPageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, web.LoginView, loginView("", "", ""))
	}
}
