package handlers

import (
	"net/http"
	"strings"

	"mechmarket/internal/domain/entities"
	"mechmarket/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
	actorContextKey = "actor"
)

var errMissingActor = apperrors.Authorization("MISSING_ACTOR", "X-Actor-Id and X-Actor-Role headers are required")

// ActorMiddleware resolves the acting identity from the gateway headers.
// The system role is reserved for internal callers and never accepted from
// the outside.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerActorID))
		role := entities.Role(strings.TrimSpace(c.GetHeader(headerActorRole)))

		if id == "" || !role.Valid() || role == entities.RoleSystem {
			c.AbortWithStatusJSON(http.StatusForbidden, errMissingActor.ToHTTPError())
			return
		}

		c.Set(actorContextKey, entities.Actor{ID: id, Role: role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) entities.Actor {
	v, _ := c.Get(actorContextKey)
	actor, _ := v.(entities.Actor)
	return actor
}

func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
