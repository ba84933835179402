package middleware

import (
	"net/http"

	"github.com/arcollect/backend/internal/domain/identity"
	"github.com/arcollect/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Actor identification headers. Authentication happens upstream; the gateway
// strips any caller-supplied values and injects the authenticated identity.
const (
	ActorIDHeader   = "X-Actor-ID"
	ActorRoleHeader = "X-Actor-Role"
)

// actorContextKey is the gin context key holding the resolved actor
const actorContextKey = "actor"

// ResolveActor resolves the acting user from the identity headers and stores
// it in the request context. Requests without the headers pass through
// unauthenticated; handlers that need an actor reject them there. Malformed
// headers are rejected outright.
func ResolveActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		idValue := c.GetHeader(ActorIDHeader)
		roleValue := c.GetHeader(ActorRoleHeader)
		if idValue == "" && roleValue == "" {
			c.Next()
			return
		}
		if idValue == "" || roleValue == "" {
			abortUnauthorized(c, "Both actor identity headers must be set")
			return
		}

		actorID, err := uuid.Parse(idValue)
		if err != nil {
			abortUnauthorized(c, "Actor ID is not a valid UUID")
			return
		}

		actor, err := identity.NewActor(actorID, identity.Role(roleValue))
		if err != nil {
			abortUnauthorized(c, "Actor role is not recognized")
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// GetActor returns the actor resolved by the ResolveActor middleware
func GetActor(c *gin.Context) (identity.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := value.(identity.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, GetRequestID(c),
	))
}
