package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func ptr[T any](v T) *T { return &v }

func identity(name string, age int) domain.Identity {
	return domain.Identity{UserID: uuid.New(), DisplayName: name, Age: age}
}

func validTrip() domain.Trip {
	return domain.Trip{
		GroupName:       "Lisbon Crew",
		DestinationID:   "city-lisbon",
		StartDate:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
		MinAge:          18,
		MaxAge:          65,
		RequiredMembers: 4,
		Itinerary: []domain.ItineraryDay{
			{Day: 1, Description: "Arrive, walk Alfama"},
			{Day: 2, Description: "Day trip to Sintra"},
		},
	}
}

// fixture bundles the services over one in-memory database.
type fixture struct {
	db         *memDB
	trips      *service.TripService
	membership *service.MembershipService
	chat       *service.ChatService
}

func newFixture() fixture {
	db := newMemDB()
	log := discardLogger()
	return fixture{
		db:         db,
		trips:      service.NewTripService(db, log),
		membership: service.NewMembershipService(db, log),
		chat:       service.NewChatService(db, log),
	}
}

// createTrip creates a trip hosted by host with the given capacity.
func (f fixture) createTrip(t *testing.T, host domain.Identity, requiredMembers int) domain.Trip {
	t.Helper()
	trip := validTrip()
	trip.RequiredMembers = requiredMembers
	created, err := f.trips.Create(context.Background(), host, trip)
	require.NoError(t, err)
	return created
}

// join files and approves a request so user becomes a member.
func (f fixture) join(t *testing.T, tripID uuid.UUID, host, user domain.Identity) {
	t.Helper()
	ctx := context.Background()
	req, err := f.membership.RequestToJoin(ctx, tripID, user)
	require.NoError(t, err)
	_, err = f.membership.Approve(ctx, req.ID, host)
	require.NoError(t, err)
}
