// Package service contains the business logic for the trip membership API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	tx  repo.Transactor
	log *slog.Logger
}

// NewTripService constructs a TripService backed by the provided Transactor.
func NewTripService(tx repo.Transactor, log *slog.Logger) *TripService {
	return &TripService{tx: tx, log: log}
}

// Create validates and persists a new trip hosted by host.
// The trip row and the host's roster row are written in one transaction.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, host domain.Identity, trip domain.Trip) (domain.Trip, error) {
	trip.HostID = host.UserID
	trip.GroupName = strings.TrimSpace(trip.GroupName)
	trip.DestinationID = strings.TrimSpace(trip.DestinationID)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	var created domain.Trip
	err := s.tx.WithinTx(ctx, func(st repo.Stores) error {
		t, err := st.Trips.Create(ctx, trip)
		if err != nil {
			return err
		}
		if _, err := st.Roster.AddHost(ctx, domain.Member{
			TripID:      t.ID,
			UserID:      host.UserID,
			Role:        domain.RoleHost,
			DisplayName: host.DisplayName,
		}); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	s.log.InfoContext(ctx, "trip created", "trip_id", created.ID, "host_id", created.HostID,
		"required_members", created.RequiredMembers)
	return created, nil
}

// GetByID returns a single trip by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.tx.Stores().Trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListPaged returns one page of the trips matching f, including past ones, and
// the total count. A MemberID filter lists the trips a user hosts or has joined.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	f.DestinationID = strings.TrimSpace(f.DestinationID)
	trips, total, err := s.tx.Stores().Trips.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// UpdateItinerary replaces the itinerary of a trip. Only the host may do this.
// Returns domain.ErrNotFound, domain.ErrNotHost, or domain.ErrValidation.
func (s *TripService) UpdateItinerary(ctx context.Context, actor domain.Identity, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error) {
	if err := validateItinerary(days); err != nil {
		return domain.Trip{}, err
	}

	stores := s.tx.Stores()
	trip, err := stores.Trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateItinerary: %w", err)
	}
	if err := requireHost(trip, actor.UserID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateItinerary: %w", err)
	}

	updated, err := stores.Trips.UpdateItinerary(ctx, id, days)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateItinerary: %w", err)
	}
	return updated, nil
}

// validateTrip enforces the business rules for a new trip.
//   - GroupName and DestinationID must be non-empty.
//   - EndDate must not be before StartDate (same-day trips are allowed).
//   - RequiredMembers must be at least 2, counting the host.
//   - 0 <= MinAge <= MaxAge.
//   - The itinerary must pass validateItinerary.
func validateTrip(t domain.Trip) error {
	if t.GroupName == "" {
		return fmt.Errorf("%w: group_name is required", domain.ErrValidation)
	}
	if t.DestinationID == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	if t.RequiredMembers < domain.MinRequiredMembers {
		return fmt.Errorf("%w: required_members must be at least %d", domain.ErrValidation, domain.MinRequiredMembers)
	}
	if t.MinAge < 0 || t.MaxAge < t.MinAge {
		return fmt.Errorf("%w: age range must satisfy 0 <= min_age <= max_age", domain.ErrValidation)
	}
	return validateItinerary(t.Itinerary)
}

// validateItinerary requires 1..7 days numbered 1..n in order, each with a
// non-empty description.
func validateItinerary(days []domain.ItineraryDay) error {
	if len(days) < domain.MinItineraryDays || len(days) > domain.MaxItineraryDays {
		return fmt.Errorf("%w: itinerary must have between %d and %d days",
			domain.ErrValidation, domain.MinItineraryDays, domain.MaxItineraryDays)
	}
	for i, d := range days {
		if d.Day != i+1 {
			return fmt.Errorf("%w: itinerary days must be numbered 1..%d in order", domain.ErrValidation, len(days))
		}
		if strings.TrimSpace(d.Description) == "" {
			return fmt.Errorf("%w: itinerary day %d needs a description", domain.ErrValidation, d.Day)
		}
	}
	return nil
}
