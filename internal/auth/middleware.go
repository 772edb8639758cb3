package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/paper-trader/internal/models"
)

const identityKey = "identity"

// RequireSession rejects requests without a valid session before any handler runs.
func RequireSession(sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := sessions.FromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireSession.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
