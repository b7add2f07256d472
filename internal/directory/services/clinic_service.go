package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/c14220110/findmyclinic-backend/internal/models"
	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

const (
	DefaultRadiusKm    = 5.0
	DefaultNearbyLimit = 20
	MaxNearbyLimit     = 100
)

type ClinicService struct {
	Store  storage.Storage
	Logger zerolog.Logger
}

func NewClinicService(store storage.Storage, logger zerolog.Logger) *ClinicService {
	return &ClinicService{Store: store, Logger: logger}
}

func (s *ClinicService) ListClinics(ctx context.Context, query models.ClinicQuery) ([]models.Clinic, error) {
	return s.Store.SearchClinics(ctx, query)
}

func (s *ClinicService) GetClinic(ctx context.Context, id string) (models.Clinic, error) {
	return s.Store.GetClinic(ctx, id)
}

func (s *ClinicService) CreateClinic(ctx context.Context, input models.NewClinic) (models.Clinic, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.Area = strings.TrimSpace(input.Area)
	if input.Name == "" || input.Address == "" || input.Phone == "" || input.Email == "" ||
		input.Latitude == "" || input.Longitude == "" {
		return models.Clinic{}, fmt.Errorf("%w: name, address, phone, email, latitude and longitude are required", ErrValidation)
	}
	if _, _, ok := parseCoordinates(input.Latitude, input.Longitude); !ok {
		return models.Clinic{}, fmt.Errorf("%w: invalid coordinates", ErrValidation)
	}
	if input.Area == "" {
		input.Area = areaFromAddress(input.Address)
	}

	clinic, err := s.Store.CreateClinic(ctx, input)
	if err != nil {
		return models.Clinic{}, err
	}
	s.Logger.Info().Str("clinicId", clinic.ID).Str("name", clinic.Name).Msg("clinic created")
	return clinic, nil
}

// UpdateClinic applies a partial update on behalf of the staff member
// identified by staffUserID, who must work at that clinic.
func (s *ClinicService) UpdateClinic(ctx context.Context, staffUserID, id string, update models.ClinicUpdate) (models.Clinic, error) {
	if update.Status != nil && !models.ValidClinicStatus(*update.Status) {
		return models.Clinic{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *update.Status)
	}
	if (update.CurrentWaitTime != nil && *update.CurrentWaitTime < 0) || (update.QueueSize != nil && *update.QueueSize < 0) {
		return models.Clinic{}, fmt.Errorf("%w: counters must not be negative", ErrValidation)
	}

	if _, err := s.Store.GetClinic(ctx, id); err != nil {
		return models.Clinic{}, err
	}
	staff, err := s.Store.GetClinicStaffByUserID(ctx, staffUserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.Clinic{}, fmt.Errorf("staff lookup: %w", err)
	}
	if err != nil || !staff.IsActive || staff.ClinicID != id {
		return models.Clinic{}, fmt.Errorf("%w: not staff of clinic %s", ErrForbidden, id)
	}

	clinic, err := s.Store.UpdateClinic(ctx, id, update)
	if err != nil {
		return models.Clinic{}, err
	}
	s.Logger.Info().Str("clinicId", id).Str("staffId", staff.ID).Str("status", clinic.Status).Msg("clinic updated")
	return clinic, nil
}

type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
}

// NearbyClinic is a clinic annotated with its distance from the query point.
type NearbyClinic struct {
	models.Clinic
	DistanceKm float64 `json:"distanceKm"`
}

// Nearby lists active clinics within the radius, nearest first.
func (s *ClinicService) Nearby(ctx context.Context, q NearbyQuery) ([]NearbyClinic, error) {
	if !validLatLng(q.Lat, q.Lng) {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	if !finite(q.RadiusKm) {
		return nil, fmt.Errorf("%w: radius must be a finite number", ErrValidation)
	}
	if q.RadiusKm <= 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	if q.Limit <= 0 {
		q.Limit = DefaultNearbyLimit
	}
	if q.Limit > MaxNearbyLimit {
		q.Limit = MaxNearbyLimit
	}

	clinics, err := s.Store.GetClinics(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyClinic, 0)
	for _, c := range clinics {
		lat, lng, ok := parseCoordinates(c.Latitude, c.Longitude)
		if !ok {
			continue
		}
		d := haversineKm(q.Lat, q.Lng, lat, lng)
		if d <= q.RadiusKm {
			out = append(out, NearbyClinic{Clinic: c, DistanceKm: math.Round(d*100) / 100})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func parseCoordinates(latStr, lngStr string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, validLatLng(lat, lng)
}

// validLatLng rejects NaN and infinities along with out-of-range values.
func validLatLng(lat, lng float64) bool {
	return finite(lat) && finite(lng) && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// areaFromAddress takes the first comma separated part of the address.
func areaFromAddress(address string) string {
	area, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(area)
}
