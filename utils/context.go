package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/shared_models"
)

// ActorContextKey is where the auth middleware stores the verified Actor.
const ActorContextKey = "actor"

// Actor is the verified caller. Handlers pull it out of the gin context once and
// pass it explicitly to the workflow.
type Actor struct {
	UserID uuid.UUID
	Role   shared_models.Role
	ClubID uuid.UUID
	Email  string
}

func (a Actor) IsAdmin() bool { return a.Role == shared_models.RoleAdmin }

// IsClub reports whether the actor books on behalf of a club.
func (a Actor) IsClub() bool { return a.Role == shared_models.RoleClub && a.ClubID != uuid.Nil }

// GetActorFromContext extracts the Actor set by the auth middleware.
func GetActorFromContext(c *gin.Context) (Actor, error) {
	raw, exists := c.Get(ActorContextKey)
	if !exists {
		logger.ErrorLogger.Error("Actor not found in context.")
		return Actor{}, ErrUserIDNotFound
	}
	actor, ok := raw.(Actor)
	if !ok || actor.UserID == uuid.Nil {
		logger.ErrorLogger.Errorf("Actor in context has unexpected type %T", raw)
		return Actor{}, ErrUnauthorized
	}
	return actor, nil
}
