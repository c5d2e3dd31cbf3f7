package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/service"
	appErrors "github.com/colegio-sanjuan/portal-api/pkg/errors"
	"github.com/colegio-sanjuan/portal-api/pkg/response"
)

// AuthHandler serves authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login authenticates a user and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid login payload"))
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}
