package booking_controller

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joy095/venue/availability"
	"github.com/joy095/venue/badwords"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/booking_models"
	"github.com/joy095/venue/models/shared_models"
	"github.com/joy095/venue/models/venue_models"
	"github.com/joy095/venue/utils"
)

var registerOnce sync.Once

// RegisterValidators adds the isodate and clock tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.ErrorLogger.Error("gin validator engine is not go-playground/validator")
			return
		}
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(availability.DateLayout, fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if len(s) != len(availability.ClockLayout) {
				return false
			}
			_, err := time.Parse(availability.ClockLayout, s)
			return err == nil
		})
	})
}

// BookingController exposes BookingService over HTTP.
type BookingController struct {
	Service *BookingService
}

func NewBookingController(service *BookingService) *BookingController {
	RegisterValidators()
	return &BookingController{Service: service}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected cancelled"`
}

// respondError maps workflow errors onto HTTP statuses.
func (bc *BookingController) respondError(c *gin.Context, err error) {
	var (
		conflict   *booking_models.ConflictError
		rangeError *availability.InvalidRangeError
	)
	switch {
	case errors.As(err, &conflict):
		body := gin.H{"error": booking_models.ErrBookingConflict.Error()}
		if conflict.Result.ConflictingBookingID != uuid.Nil {
			body["error"] = conflict.Result.Message(bc.Service.Checker.Location())
			body["conflictingBookingId"] = conflict.Result.ConflictingBookingID
			body["conflictingWindow"] = bc.Service.Checker.FormatInterval(conflict.Result.ConflictingInterval)
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &rangeError):
		c.JSON(http.StatusBadRequest, gin.H{"error": rangeError.Error(), "field": rangeError.Field})
	case errors.Is(err, availability.ErrInvalidRange),
		errors.Is(err, badwords.ErrBadWords),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, booking_models.ErrInvalidBooking),
		errors.Is(err, shared_models.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking_models.ErrBookingNotFound), errors.Is(err, venue_models.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking_models.ErrVenueUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrUserIDNotFound), errors.Is(err, utils.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, booking_models.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.ErrorLogger.Errorf("Unhandled booking error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

func actorOrAbort(c *gin.Context) (utils.Actor, bool) {
	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return utils.Actor{}, false
	}
	return actor, true
}

// redact hides contact details from callers who neither own nor administer the booking.
func redact(actor utils.Actor, bookings []booking_models.Booking) []booking_models.Booking {
	if actor.IsAdmin() {
		return bookings
	}
	out := make([]booking_models.Booking, len(bookings))
	for i, b := range bookings {
		if !(actor.IsClub() && b.ClubID == actor.ClubID) {
			b.RequesterEmail = ""
			b.ContactNumber = ""
		}
		out[i] = b
	}
	return out
}

// CreateBooking handles POST /bookings.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid booking request from %s: %v", actor.UserID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, _, err := bc.Service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		bc.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking request submitted and awaiting approval",
		"booking": booking,
	})
}

// CheckAvailability handles GET /venues/:venue_id/availability.
func (bc *BookingController) CheckAvailability(c *gin.Context) {
	venueID, ok := parseIDParam(c, "venue_id")
	if !ok {
		return
	}

	var window availability.Window
	if err := c.ShouldBindQuery(&window); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return
	}

	result, err := bc.Service.PreviewAvailability(c.Request.Context(), venueID, window)
	if err != nil {
		bc.respondError(c, err)
		return
	}

	body := gin.H{
		"available": result.IsAvailable(),
		"message":   result.Message(bc.Service.Checker.Location()),
		"venueId":   result.VenueID,
		"window":    window,
	}
	if !result.IsAvailable() {
		body["conflictingBookingId"] = result.ConflictingBookingID
		body["conflictingWindow"] = bc.Service.Checker.FormatInterval(result.ConflictingInterval)
	}
	c.JSON(http.StatusOK, body)
}

// ListVenueBookings handles GET /venues/:venue_id/bookings?all=true.
func (bc *BookingController) ListVenueBookings(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	venueID, ok := parseIDParam(c, "venue_id")
	if !ok {
		return
	}
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))

	bookings, err := bc.Service.ListVenueBookings(c.Request.Context(), venueID, all)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": redact(actor, bookings)})
}

// GetMyBookings handles GET /bookings/mine?status=&page=&limit=.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))

	bookings, total, err := bc.Service.ListClubBookings(c.Request.Context(), actor, c.Query("status"), page, limit)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": max(page, 1)})
}

// GetBooking handles GET /bookings/:booking_id.
func (bc *BookingController) GetBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "booking_id")
	if !ok {
		return
	}

	booking, err := bc.Service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// RescheduleBooking handles PATCH /bookings/:booking_id/reschedule.
func (bc *BookingController) RescheduleBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "booking_id")
	if !ok {
		return
	}

	var window availability.Window
	if err := c.ShouldBindJSON(&window); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, _, err := bc.Service.RescheduleBooking(c.Request.Context(), actor, bookingID, window)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking rescheduled", "booking": booking})
}

// CancelBooking handles PATCH /bookings/:booking_id/cancel.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	bc.setStatus(c, shared_models.BookingStatusCancelled)
}

// UpdateBookingStatus handles PATCH /admin/bookings/:booking_id/status.
func (bc *BookingController) UpdateBookingStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	status, err := shared_models.ParseBookingStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bc.setStatus(c, status)
}

func (bc *BookingController) setStatus(c *gin.Context, status shared_models.BookingStatus) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "booking_id")
	if !ok {
		return
	}

	booking, err := bc.Service.UpdateStatus(c.Request.Context(), actor, bookingID, status)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking " + string(status), "booking": booking})
}
