package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/venue/controllers/booking_controller"
	middleware "github.com/joy095/venue/middlewares"
	"github.com/joy095/venue/middlewares/auth"
	"github.com/joy095/venue/models/shared_models"
)

// RegisterBookingRoutes registers all booking-related routes.
func RegisterBookingRoutes(router *gin.Engine, bookingController *booking_controller.BookingController, limits *middleware.RateLimiters) {
	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			auth.RequireRole(shared_models.RoleClub),
			limits.CombinedRateLimiter("create-booking", "5-1m", "20-10m"),
			bookingController.CreateBooking)

		protected.GET("/mine",
			auth.RequireRole(shared_models.RoleClub),
			limits.NewRateLimiter("20-1m", "my-bookings"),
			bookingController.GetMyBookings)

		protected.GET("/:booking_id",
			limits.NewRateLimiter("15-30s", "get-booking"),
			bookingController.GetBooking)

		protected.PATCH("/:booking_id/reschedule",
			auth.RequireRole(shared_models.RoleClub),
			limits.CombinedRateLimiter("reschedule-booking", "3-1m", "10-10m"),
			bookingController.RescheduleBooking)

		protected.PATCH("/:booking_id/cancel",
			auth.RequireRole(shared_models.RoleClub, shared_models.RoleAdmin),
			limits.CombinedRateLimiter("cancel-booking", "3-1m", "10-10m"),
			bookingController.CancelBooking)
	}

	admin := router.Group("/admin/bookings")
	admin.Use(auth.AuthMiddleware(), auth.RequireRole(shared_models.RoleAdmin))
	{
		admin.PATCH("/:booking_id/status",
			limits.CombinedRateLimiter("update-booking-status", "10-1m", "60-10m"),
			bookingController.UpdateBookingStatus)
	}
}
