// internal/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/balaguruva/admin-backend/internal/i18n"
	"github.com/balaguruva/admin-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	CodeAuthRequired = "AUTH_REQUIRED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeForbidden    = "FORBIDDEN"
)

// AuthRequired verifies the bearer token. A missing token is 401
// AUTH_REQUIRED, an expired one 401 TOKEN_EXPIRED and anything else 403
// INVALID_TOKEN.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, CodeAuthRequired, i18n.T(lang, i18n.KeyAuthRequired))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			utils.AbortWithError(c, http.StatusForbidden, CodeInvalidToken, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		claims, err := utils.ValidateJWT(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				utils.AbortWithError(c, http.StatusUnauthorized, CodeTokenExpired, i18n.T(lang, i18n.KeyAuthTokenExpired))
				return
			}
			utils.AbortWithError(c, http.StatusForbidden, CodeInvalidToken, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		// Set user info in context
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetRoleFromContext(c)
		if role != utils.RoleAdmin {
			lang := utils.GetLangFromContext(c)
			utils.AbortWithError(c, http.StatusForbidden, CodeForbidden, i18n.T(lang, i18n.KeyAdminAccessDenied))
			return
		}
		c.Next()
	}
}

// AdminGate guards the back-office routes. They stay open unless required
// is set.
func AdminGate(required bool) []gin.HandlerFunc {
	if !required {
		return nil
	}
	return []gin.HandlerFunc{AuthRequired(), AdminRequired()}
}
