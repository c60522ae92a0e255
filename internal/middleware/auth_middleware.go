package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auto_service_backend/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "userRole"
)

var (
	errMissingToken    = errors.New("authorization header required")
	errMalformedHeader = errors.New("invalid authorization header format, use Bearer <token>")
)

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on websocket upgrades, so those requests may pass ?access_token=.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("access_token"); token != "" && c.IsWebsocket() {
			return token, nil
		}
		return "", errMissingToken
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errMalformedHeader
	}
	return parts[1], nil
}

// AuthMiddleware verifies access tokens issued by the hosted auth provider.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), ""))
			return
		}

		claims, err := utils.ValidateToken(tokenString, key)
		if err != nil {
			utils.LogDebug("Rejected access token", map[string]interface{}{"path": c.FullPath(), "reason": err.Error()})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// StaffEmail returns the authenticated user's email, or "" when unknown.
func StaffEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}
