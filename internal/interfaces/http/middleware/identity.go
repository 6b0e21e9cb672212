package middleware

import (
	"net/http"
	"strings"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/infrastructure/auth"
	"github.com/b2bmarket/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Identity context keys
const (
	IdentityKey   = "identity"
	RoleKey       = "identity_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Identity resolves the caller's identity alias set from the bearer token
// and stores it in the request context. Requests without a valid token are
// rejected with 401.
func Identity(tokens *auth.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthenticated(c, "Missing bearer token")
			return
		}

		tokenString := strings.TrimPrefix(header, BearerPrefix)
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("token validation failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			message := "Invalid token"
			if err == auth.ErrExpiredToken {
				message = "Token has expired"
			}
			abortUnauthenticated(c, message)
			return
		}

		identities := claims.Identities()
		if identities.IsEmpty() {
			abortUnauthenticated(c, "Token carries no identity")
			return
		}

		c.Set(IdentityKey, identities)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthenticated, message, c.GetString("request_id")))
}

// GetIdentity returns the caller's identity set from the gin context
func GetIdentity(c *gin.Context) shared.IdentitySet {
	if v, exists := c.Get(IdentityKey); exists {
		if ids, ok := v.(shared.IdentitySet); ok {
			return ids
		}
	}
	return shared.IdentitySet{}
}

// GetRole returns the caller's role from the gin context
func GetRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}
