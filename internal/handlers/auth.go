// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/balaguruva/admin-backend/internal/services"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req services.AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, authResponse)
}
