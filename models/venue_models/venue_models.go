package venue_models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/venue/logger"
)

// VenueType is the closed set of bookable venue kinds.
type VenueType string

const (
	VenueTypeComputerCenter   VenueType = "computer-center"
	VenueTypeSeminarHall      VenueType = "seminar-hall"
	VenueTypeMaharajaHall     VenueType = "maharaja-hall"
	VenueTypeConventionCenter VenueType = "convention-center"
	VenueTypeOther            VenueType = "other"
)

var (
	ErrVenueNotFound  = errors.New("venue not found")
	ErrVenueNameTaken = errors.New("a venue with this name already exists")
	ErrInvalidVenue   = errors.New("invalid venue")
)

// ParseVenueType converts wire text into a VenueType.
func ParseVenueType(s string) (VenueType, error) {
	switch vt := VenueType(strings.ToLower(strings.TrimSpace(s))); vt {
	case VenueTypeComputerCenter, VenueTypeSeminarHall, VenueTypeMaharajaHall, VenueTypeConventionCenter, VenueTypeOther:
		return vt, nil
	default:
		return "", fmt.Errorf("%w: unknown venue type %q", ErrInvalidVenue, s)
	}
}

// Venue is a bookable hall or lab. Venues in maintenance stay in the table with IsActive=false.
type Venue struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Type            VenueType `json:"type"`
	Department      string    `json:"department"`
	Capacity        int       `json:"capacity"`
	FacultyInCharge string    `json:"facultyInCharge"`
	FacultyContact  string    `json:"facultyContact"`
	Features        []string  `json:"features"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewVenue validates the attributes and returns an active venue with a fresh ID.
func NewVenue(name string, venueType VenueType, department string, capacity int, facultyInCharge, facultyContact string, features []string) (*Venue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidVenue)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidVenue)
	}
	if _, err := ParseVenueType(string(venueType)); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for venue: %w", err)
	}
	now := time.Now()
	return &Venue{
		ID:              id,
		Name:            name,
		Type:            venueType,
		Department:      strings.TrimSpace(department),
		Capacity:        capacity,
		FacultyInCharge: strings.TrimSpace(facultyInCharge),
		FacultyContact:  strings.TrimSpace(facultyContact),
		Features:        NormalizeFeatures(features),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NormalizeFeatures lower-cases, trims and de-duplicates feature tags, keeping order.
func NormalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// HasFeatures reports whether the venue offers every requested feature.
func (v *Venue) HasFeatures(required []string) bool {
	have := make(map[string]struct{}, len(v.Features))
	for _, f := range v.Features {
		have[f] = struct{}{}
	}
	for _, f := range NormalizeFeatures(required) {
		if _, ok := have[f]; !ok {
			return false
		}
	}
	return true
}

// ListFilter narrows ListVenues. Zero values mean "any".
type ListFilter struct {
	Type       VenueType
	Department string
	MinSeats   int
	ActiveOnly bool
}

const venueColumns = `id, name, venue_type, department, capacity, faculty_in_charge, faculty_contact, features, is_active, created_at, updated_at`

func scanVenue(row pgx.Row) (*Venue, error) {
	v := &Venue{}
	var venueType string
	err := row.Scan(&v.ID, &v.Name, &venueType, &v.Department, &v.Capacity,
		&v.FacultyInCharge, &v.FacultyContact, &v.Features, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Type = VenueType(venueType)
	if v.Features == nil {
		v.Features = []string{}
	}
	return v, nil
}

// CreateVenue inserts a new venue.
func CreateVenue(ctx context.Context, db *pgxpool.Pool, v *Venue) (*Venue, error) {
	logger.InfoLogger.Infof("Attempting to create venue %q", v.Name)

	query := `
		INSERT INTO venues (` + venueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := db.Exec(ctx, query,
		v.ID, v.Name, string(v.Type), v.Department, v.Capacity,
		v.FacultyInCharge, v.FacultyContact, v.Features, v.IsActive, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrVenueNameTaken
		}
		logger.ErrorLogger.Errorf("Failed to insert venue %q: %v", v.Name, err)
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	logger.InfoLogger.Infof("Venue %s (%s) created", v.ID, v.Name)
	return v, nil
}

// GetVenueByID fetches one venue.
func GetVenueByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Venue, error) {
	row := db.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id)
	v, err := scanVenue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Venue with ID %s not found", id)
			return nil, ErrVenueNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch venue %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching venue: %w", err)
	}
	return v, nil
}

// ListVenues returns venues ordered by name.
func ListVenues(ctx context.Context, db *pgxpool.Pool, f ListFilter) ([]Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE 1=1`
	var args []interface{}

	if f.Type != "" {
		args = append(args, string(f.Type))
		query += fmt.Sprintf(" AND venue_type = $%d", len(args))
	}
	if f.Department != "" {
		args = append(args, f.Department)
		query += fmt.Sprintf(" AND department ILIKE $%d", len(args))
	}
	if f.MinSeats > 0 {
		args = append(args, f.MinSeats)
		query += fmt.Sprintf(" AND capacity >= $%d", len(args))
	}
	if f.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY name ASC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list venues: %v", err)
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	venues := []Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan venue row: %v", err)
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading venues: %w", err)
	}
	return venues, nil
}

// UpdateVenue persists the mutable attributes. The ID never changes.
func UpdateVenue(ctx context.Context, db *pgxpool.Pool, v *Venue) (*Venue, error) {
	v.UpdatedAt = time.Now()
	query := `
		UPDATE venues
		SET name = $2, venue_type = $3, department = $4, capacity = $5,
		    faculty_in_charge = $6, faculty_contact = $7, features = $8, updated_at = $9
		WHERE id = $1`

	cmdTag, err := db.Exec(ctx, query, v.ID, v.Name, string(v.Type), v.Department, v.Capacity,
		v.FacultyInCharge, v.FacultyContact, v.Features, v.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrVenueNameTaken
		}
		logger.ErrorLogger.Errorf("Failed to update venue %s: %v", v.ID, err)
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, ErrVenueNotFound
	}
	logger.InfoLogger.Infof("Venue %s updated", v.ID)
	return v, nil
}

// SetVenueMaintenance toggles maintenance mode. A venue under maintenance is inactive
// and refuses new bookings; existing bookings are left for the admins to resolve.
func SetVenueMaintenance(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, maintenance bool) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE venues SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, !maintenance)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to set maintenance=%t on venue %s: %v", maintenance, id, err)
		return fmt.Errorf("failed to update venue status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrVenueNotFound
	}
	logger.InfoLogger.Infof("Venue %s maintenance set to %t", id, maintenance)
	return nil
}

// Store adapts the package functions to the venue workflow's interface.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) Create(ctx context.Context, v *Venue) (*Venue, error) {
	return CreateVenue(ctx, s.DB, v)
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Venue, error) {
	return GetVenueByID(ctx, s.DB, id)
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Venue, error) {
	return ListVenues(ctx, s.DB, f)
}

func (s *Store) Update(ctx context.Context, v *Venue) (*Venue, error) {
	return UpdateVenue(ctx, s.DB, v)
}

func (s *Store) SetMaintenance(ctx context.Context, id uuid.UUID, maintenance bool) error {
	return SetVenueMaintenance(ctx, s.DB, id, maintenance)
}
