package venue_controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/venue_models"
	"github.com/joy095/venue/utils"
)

type VenueStore interface {
	Create(ctx context.Context, v *venue_models.Venue) (*venue_models.Venue, error)
	Get(ctx context.Context, id uuid.UUID) (*venue_models.Venue, error)
	List(ctx context.Context, f venue_models.ListFilter) ([]venue_models.Venue, error)
	Update(ctx context.Context, v *venue_models.Venue) (*venue_models.Venue, error)
	SetMaintenance(ctx context.Context, id uuid.UUID, maintenance bool) error
}

// VenueController serves the venue catalogue and its admin operations.
type VenueController struct {
	Store VenueStore
}

func NewVenueController(store VenueStore) *VenueController {
	return &VenueController{Store: store}
}

type CreateVenueRequest struct {
	Name            string   `json:"name" binding:"required,max=120"`
	Type            string   `json:"type" binding:"required"`
	Department      string   `json:"department" binding:"max=120"`
	Capacity        int      `json:"capacity" binding:"required,gt=0"`
	FacultyInCharge string   `json:"facultyInCharge" binding:"max=120"`
	FacultyContact  string   `json:"facultyContact" binding:"max=20"`
	Features        []string `json:"features" binding:"dive,max=60"`
}

// UpdateVenueRequest is a partial update; nil fields are left unchanged.
type UpdateVenueRequest struct {
	Name            *string   `json:"name" binding:"omitempty,max=120"`
	Type            *string   `json:"type"`
	Department      *string   `json:"department" binding:"omitempty,max=120"`
	Capacity        *int      `json:"capacity" binding:"omitempty,gt=0"`
	FacultyInCharge *string   `json:"facultyInCharge" binding:"omitempty,max=120"`
	FacultyContact  *string   `json:"facultyContact" binding:"omitempty,max=20"`
	Features        *[]string `json:"features"`
}

type MaintenanceRequest struct {
	Maintenance *bool `json:"maintenance" binding:"required"`
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, venue_models.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, venue_models.ErrVenueNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, venue_models.ErrInvalidVenue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.ErrorLogger.Errorf("Unhandled venue error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func venueIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("venue_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue_id format"})
		return uuid.Nil, false
	}
	return id, true
}

// ListVenues handles GET /venues?type=&department=&minSeats=&features=a,b.
// Venues under maintenance are only listed for admins.
func (vc *VenueController) ListVenues(c *gin.Context) {
	filter := venue_models.ListFilter{
		Department: strings.TrimSpace(c.Query("department")),
		ActiveOnly: true,
	}
	if t := c.Query("type"); t != "" {
		vt, err := venue_models.ParseVenueType(t)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Type = vt
	}
	if s := c.Query("minSeats"); s != "" {
		seats, err := strconv.Atoi(s)
		if err != nil || seats < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minSeats must be a non-negative integer"})
			return
		}
		filter.MinSeats = seats
	}
	if actor, err := utils.GetActorFromContext(c); err == nil && actor.IsAdmin() {
		filter.ActiveOnly = c.Query("includeInactive") != "true"
	}

	venues, err := vc.Store.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	if f := c.Query("features"); f != "" {
		required := strings.Split(f, ",")
		matched := venues[:0]
		for _, v := range venues {
			if v.HasFeatures(required) {
				matched = append(matched, v)
			}
		}
		venues = matched
	}

	c.JSON(http.StatusOK, gin.H{"venues": venues})
}

// GetVenue handles GET /venues/:venue_id.
func (vc *VenueController) GetVenue(c *gin.Context) {
	id, ok := venueIDParam(c)
	if !ok {
		return
	}
	venue, err := vc.Store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venue": venue})
}

// CreateVenue handles POST /admin/venues.
func (vc *VenueController) CreateVenue(c *gin.Context) {
	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	vt, err := venue_models.ParseVenueType(req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	venue, err := venue_models.NewVenue(req.Name, vt, req.Department, req.Capacity, req.FacultyInCharge, req.FacultyContact, req.Features)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := vc.Store.Create(c.Request.Context(), venue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Venue created", "venue": created})
}

// UpdateVenue handles PATCH /admin/venues/:venue_id.
func (vc *VenueController) UpdateVenue(c *gin.Context) {
	id, ok := venueIDParam(c)
	if !ok {
		return
	}
	var req UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	venue, err := vc.Store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Name != nil {
		venue.Name = strings.TrimSpace(*req.Name)
		if venue.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
			return
		}
	}
	if req.Type != nil {
		vt, err := venue_models.ParseVenueType(*req.Type)
		if err != nil {
			respondError(c, err)
			return
		}
		venue.Type = vt
	}
	if req.Department != nil {
		venue.Department = strings.TrimSpace(*req.Department)
	}
	if req.Capacity != nil {
		venue.Capacity = *req.Capacity
	}
	if req.FacultyInCharge != nil {
		venue.FacultyInCharge = strings.TrimSpace(*req.FacultyInCharge)
	}
	if req.FacultyContact != nil {
		venue.FacultyContact = strings.TrimSpace(*req.FacultyContact)
	}
	if req.Features != nil {
		venue.Features = venue_models.NormalizeFeatures(*req.Features)
	}

	updated, err := vc.Store.Update(c.Request.Context(), venue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Venue updated", "venue": updated})
}

// SetMaintenance handles PATCH /admin/venues/:venue_id/maintenance.
func (vc *VenueController) SetMaintenance(c *gin.Context) {
	id, ok := venueIDParam(c)
	if !ok {
		return
	}
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := vc.Store.SetMaintenance(c.Request.Context(), id, *req.Maintenance); err != nil {
		respondError(c, err)
		return
	}
	venue, err := vc.Store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Venue maintenance updated", "venue": venue})
}
