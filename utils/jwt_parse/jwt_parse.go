package jwt_parse

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/shared_models"
	"github.com/joy095/venue/utils"
)

var ErrNoSecret = errors.New("jwt secret is not configured")

// ParseActor verifies an HS256 access token and turns its claims into an Actor.
func ParseActor(tokenString string, secret []byte) (utils.Actor, error) {
	if len(secret) == 0 {
		return utils.Actor{}, ErrNoSecret
	}
	claims := &shared_models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return utils.Actor{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return utils.Actor{}, errors.New("token is not valid")
	}
	userID := claims.ActorID()
	if userID == uuid.Nil {
		return utils.Actor{}, errors.New("token does not contain a subject")
	}

	role, err := shared_models.ParseRole(claims.Role)
	if err != nil {
		return utils.Actor{}, err
	}

	actor := utils.Actor{UserID: userID, Role: role, Email: claims.Email}
	if claims.ClubID != "" {
		clubID, err := uuid.Parse(claims.ClubID)
		if err != nil {
			return utils.Actor{}, fmt.Errorf("invalid club_id claim: %w", err)
		}
		actor.ClubID = clubID
	}
	if role == shared_models.RoleClub && actor.ClubID == uuid.Nil {
		return utils.Actor{}, errors.New("club token without club_id")
	}
	return actor, nil
}

// ParseJWTToken parses and validates the bearer token, storing the Actor in the context.
func ParseJWTToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.ErrorLogger.Error("No authorization header provided")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "NO_TOKEN", "error": "No authorization token"})
			return
		}

		if len(authHeader) <= 7 || strings.ToLower(authHeader[:7]) != "bearer " {
			logger.ErrorLogger.Error("Invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_AUTH_FORMAT", "error": "Invalid authorization format"})
			return
		}

		actor, err := ParseActor(authHeader[7:], utils.GetJWTSecret())
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to parse JWT token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token"})
			return
		}

		c.Set(utils.ActorContextKey, actor)
		c.Set("actor_id", actor.UserID.String())
		c.Next()
	}
}
