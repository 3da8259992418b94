package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/octostats/octostats/internal/models"
)

const credentialKey = "credential"

// SessionResolver maps a bearer token to the credential it was issued for,
// implemented by services.AuthService.
type SessionResolver interface {
	ResolveSession(tokenString string) (models.Credential, error)
}

// AuthRequired rejects requests without a valid bearer token and binds the
// resolved credential to the request context for downstream handlers.
func AuthRequired(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		cred, err := sessions.ResolveSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set(credentialKey, cred)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// GetCredential retrieves the credential bound by AuthRequired. The zero
// value and false are returned on routes that skipped the middleware.
func GetCredential(c *gin.Context) (models.Credential, bool) {
	value, exists := c.Get(credentialKey)
	if !exists {
		return models.Credential{}, false
	}

	cred, ok := value.(models.Credential)
	return cred, ok
}
