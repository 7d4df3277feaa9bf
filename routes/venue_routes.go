package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/venue/controllers/booking_controller"
	"github.com/joy095/venue/controllers/venue_controller"
	middleware "github.com/joy095/venue/middlewares"
	"github.com/joy095/venue/middlewares/auth"
	"github.com/joy095/venue/models/shared_models"
)

// RegisterVenueRoutes registers the venue catalogue, the availability preview and
// the admin venue operations.
func RegisterVenueRoutes(router *gin.Engine, venueController *venue_controller.VenueController,
	bookingController *booking_controller.BookingController, limits *middleware.RateLimiters) {
	venues := router.Group("/venues")
	venues.Use(auth.AuthMiddleware())
	{
		venues.GET("", limits.NewRateLimiter("30-1m", "list-venues"), venueController.ListVenues)
		venues.GET("/:venue_id", limits.NewRateLimiter("30-1m", "get-venue"), venueController.GetVenue)
		venues.GET("/:venue_id/availability",
			limits.CombinedRateLimiter("check-availability", "30-1m", "300-1h"),
			bookingController.CheckAvailability)
		venues.GET("/:venue_id/bookings", limits.NewRateLimiter("20-1m", "venue-bookings"), bookingController.ListVenueBookings)
	}

	admin := router.Group("/admin/venues")
	admin.Use(auth.AuthMiddleware(), auth.RequireRole(shared_models.RoleAdmin))
	{
		admin.POST("", limits.NewRateLimiter("10-1m", "create-venue"), venueController.CreateVenue)
		admin.PATCH("/:venue_id", limits.NewRateLimiter("20-1m", "update-venue"), venueController.UpdateVenue)
		admin.PATCH("/:venue_id/maintenance", limits.NewRateLimiter("20-1m", "venue-maintenance"), venueController.SetMaintenance)
	}
}
