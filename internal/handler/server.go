// Package handler implements the HTTP handlers for the trip membership API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, membership.go, chat.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, host domain.Identity, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	UpdateItinerary(ctx context.Context, actor domain.Identity, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error)
}

// MembershipServicer defines the join-request and roster operations.
type MembershipServicer interface {
	RequestToJoin(ctx context.Context, tripID uuid.UUID, applicant domain.Identity) (domain.JoinRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error)
	Status(ctx context.Context, tripID, userID uuid.UUID) (domain.JoinStatus, error)
	PendingRequests(ctx context.Context, tripID uuid.UUID, actor domain.Identity) ([]domain.JoinRequest, error)
	Members(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)
}

// ChatServicer defines the chat log operations.
type ChatServicer interface {
	Append(ctx context.Context, tripID uuid.UUID, author domain.Identity, text, clientMessageID string) (domain.ChatMessage, error)
	FetchSince(ctx context.Context, tripID uuid.UUID, reader domain.Identity, w domain.FetchWindow) ([]domain.ChatMessage, error)
	Transcript(ctx context.Context, tripID uuid.UUID, reader domain.Identity) ([]domain.TranscriptRow, error)
}

// Server holds the handler dependencies.
type Server struct {
	trips        TripServicer
	membership   MembershipServicer
	chat         ChatServicer
	pollInterval time.Duration
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies. pollInterval is
// advertised to chat clients in the X-Poll-Interval response header.
func NewServer(trips TripServicer, membership MembershipServicer, chat ChatServicer, pollInterval time.Duration, log *slog.Logger) *Server {
	return &Server{
		trips:        trips,
		membership:   membership,
		chat:         chat,
		pollInterval: pollInterval,
		log:          log,
	}
}

// Routes registers every endpoint on a chi router. Reads of public trip data
// are open; everything that acts as or for a user goes through authn.
func (s *Server) Routes(authn func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/trips", s.ListTrips)
	r.Get("/trips/{tripId}", s.GetTrip)
	r.Get("/trips/{tripId}/members", s.ListMembers)
	r.Get("/users/{userId}/trips", s.ListUserTrips)
	r.Get("/destinations/{destinationId}/trips", s.ListDestinationTrips)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Post("/trips", s.CreateTrip)
		r.Put("/trips/{tripId}/itinerary", s.UpdateItinerary)

		r.Post("/trips/{tripId}/join-request", s.RequestToJoin)
		r.Get("/trips/{tripId}/join-status", s.GetJoinStatus)
		r.Get("/trips/{tripId}/pending-requests", s.ListPendingRequests)
		r.Post("/trip-requests/{requestId}/approve", s.ApproveRequest)
		r.Post("/trip-requests/{requestId}/reject", s.RejectRequest)

		r.Post("/trips/{tripId}/messages", s.PostMessage)
		r.Get("/trips/{tripId}/messages", s.ListMessages)
		r.Get("/trips/{tripId}/messages/export", s.ExportTranscript)
	})

	return r
}
