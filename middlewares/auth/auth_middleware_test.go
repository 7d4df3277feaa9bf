package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/venue/models/shared_models"
	"github.com/joy095/venue/utils"
	"github.com/stretchr/testify/assert"
)

func withActor(role shared_models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ActorContextKey, utils.Actor{UserID: uuid.New(), Role: role, ClubID: uuid.New()})
		c.Next()
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	tests := []struct {
		name  string
		setup gin.HandlerFunc
		want  int
	}{
		{"Admin", withActor(shared_models.RoleAdmin), http.StatusNoContent},
		{"Club", withActor(shared_models.RoleClub), http.StatusForbidden},
		{"Anonymous", func(c *gin.Context) { c.Next() }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", tt.setup, RequireRole(shared_models.RoleAdmin), ok)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/bookings", AuthMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
