package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/venue/controllers/booking_controller"
	"github.com/joy095/venue/controllers/venue_controller"
	middleware "github.com/joy095/venue/middlewares"
	"github.com/joy095/venue/models/shared_models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limits := middleware.NewRateLimiters(nil)
	bc := booking_controller.NewBookingController(booking_controller.NewBookingService(nil, nil, nil))
	vc := venue_controller.NewVenueController(nil)
	RegisterVenueRoutes(r, vc, bc, limits)
	RegisterBookingRoutes(r, bc, limits)
	return r
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := shared_models.Claims{
		UserID: uuid.New(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	if role == "club" {
		claims.ClubID = uuid.NewString()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("routes-test-secret"))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestRouteTable(t *testing.T) {
	r := newTestEngine()
	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /venues",
		"GET /venues/:venue_id",
		"GET /venues/:venue_id/availability",
		"GET /venues/:venue_id/bookings",
		"POST /admin/venues",
		"PATCH /admin/venues/:venue_id",
		"PATCH /admin/venues/:venue_id/maintenance",
		"POST /bookings",
		"GET /bookings/mine",
		"GET /bookings/:booking_id",
		"PATCH /bookings/:booking_id/reschedule",
		"PATCH /bookings/:booking_id/cancel",
		"PATCH /admin/bookings/:booking_id/status",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestRoutesRequireAuthAndRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "routes-test-secret")
	r := newTestEngine()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"no token", http.MethodGet, "/venues", "", http.StatusUnauthorized},
		{"garbage token", http.MethodPost, "/bookings", "Bearer nope", http.StatusUnauthorized},
		{"student cannot book", http.MethodPost, "/bookings", token(t, "student"), http.StatusForbidden},
		{"club cannot approve", http.MethodPatch, "/admin/bookings/" + uuid.NewString() + "/status", token(t, "club"), http.StatusForbidden},
		{"club cannot create venues", http.MethodPost, "/admin/venues", token(t, "club"), http.StatusForbidden},
		{"admin has no club bookings", http.MethodGet, "/bookings/mine", token(t, "admin"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
