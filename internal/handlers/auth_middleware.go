package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/identity"
	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

const contextSubjectKey = "user_sub"

// AuthMiddleware authenticates bearer tokens through the configured
// identity provider
type AuthMiddleware struct {
	auth   services.AuthService
	logger utils.Logger
}

func NewAuthMiddleware(auth services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// RequireAuth rejects the request with 401 unless it carries a valid
// bearer token. The token's subject is stored in the gin context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from "Bearer <token>" format
		token, err := identity.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msgUnauthorized})
			return
		}

		sub, err := am.auth.Subject(c.Request.Context(), token)
		if err != nil {
			utils.FromContext(c, am.logger).Debug("Token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msgUnauthorized})
			return
		}

		c.Set(contextSubjectKey, sub)
		c.Next()
	}
}

// GetSubjectFromContext extracts the caller's subject from the gin context
func GetSubjectFromContext(c *gin.Context) (string, error) {
	v, exists := c.Get(contextSubjectKey)
	if !exists {
		return "", fmt.Errorf("subject not found in context")
	}

	sub, ok := v.(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("invalid subject in context")
	}

	return sub, nil
}
