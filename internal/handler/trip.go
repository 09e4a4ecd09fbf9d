package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// Form defaults for a new trip.
const (
	defaultMinAge          = 18
	defaultMaxAge          = 65
	defaultRequiredMembers = domain.MinRequiredMembers
)

// CreateTrip handles POST /trips. The caller becomes the host.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	host, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var body CreateTripRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	created, err := s.trips.Create(r.Context(), host, requestToTrip(body))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100)
// and an optional ?destination_id= filter.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var destination *string
	if err := queryParam(r, "destination_id", &destination); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var f domain.TripFilter
	if destination != nil {
		f.DestinationID = *destination
	}
	s.listTrips(w, r, f)
}

// ListDestinationTrips handles GET /destinations/{destinationId}/trips.
func (s *Server) ListDestinationTrips(w http.ResponseWriter, r *http.Request) {
	destination := chi.URLParam(r, "destinationId")
	if strings.TrimSpace(destination) == "" {
		s.writeServiceError(w, r, fmt.Errorf("%w: destinationId is required", errBadRequest))
		return
	}
	s.listTrips(w, r, domain.TripFilter{DestinationID: destination})
}

// ListUserTrips handles GET /users/{userId}/trips: the trips the user hosts
// or has been accepted into.
func (s *Server) ListUserTrips(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.listTrips(w, r, domain.TripFilter{MemberID: userID})
}

// listTrips binds the pagination parameters and writes one page of trips
// matching f.
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request, f domain.TripFilter) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.ListPaged(r.Context(), f, params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateItinerary handles PUT /trips/{tripId}/itinerary. Host only.
func (s *Server) UpdateItinerary(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var body UpdateItineraryRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	updated, err := s.trips.UpdateItinerary(r.Context(), actor, id, itineraryFromRequest(body.Itinerary))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// requireIdentity returns the authenticated caller or writes a 401.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := identity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
	}
	return id, ok
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a CreateTripRequest into a domain.Trip, applying the
// form defaults for omitted fields.
func requestToTrip(body CreateTripRequest) domain.Trip {
	t := domain.Trip{
		GroupName:       body.GroupName,
		DestinationID:   body.DestinationID,
		StartDate:       body.StartDate.Time,
		EndDate:         body.EndDate.Time,
		MinAge:          defaultMinAge,
		MaxAge:          defaultMaxAge,
		RequiredMembers: defaultRequiredMembers,
		Itinerary:       itineraryFromRequest(body.Itinerary),
	}
	if body.Description != nil {
		t.Description = strings.TrimSpace(*body.Description)
	}
	if body.MinAge != nil {
		t.MinAge = *body.MinAge
	}
	if body.MaxAge != nil {
		t.MaxAge = *body.MaxAge
	}
	if body.RequiredMembers != nil {
		t.RequiredMembers = *body.RequiredMembers
	}
	return t
}

func itineraryFromRequest(days []ItineraryDay) []domain.ItineraryDay {
	out := make([]domain.ItineraryDay, len(days))
	for i, d := range days {
		out[i] = domain.ItineraryDay{Day: d.Day, Description: strings.TrimSpace(d.Description)}
	}
	return out
}

// tripToResponse converts a domain.Trip into its wire form.
func tripToResponse(t domain.Trip) Trip {
	days := make([]ItineraryDay, len(t.Itinerary))
	for i, d := range t.Itinerary {
		days[i] = ItineraryDay{Day: d.Day, Description: d.Description}
	}
	return Trip{
		ID:                  t.ID,
		HostID:              t.HostID,
		GroupName:           t.GroupName,
		DestinationID:       t.DestinationID,
		Description:         t.Description,
		StartDate:           openapi_types.Date{Time: t.StartDate},
		EndDate:             openapi_types.Date{Time: t.EndDate},
		MinAge:              t.MinAge,
		MaxAge:              t.MaxAge,
		RequiredMembers:     t.RequiredMembers,
		CurrentMembersCount: t.CurrentMembersCount,
		IsFull:              t.IsFull(),
		Itinerary:           days,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}
