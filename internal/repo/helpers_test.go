package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/repo"
	"github.com/pkordes/tripmates/backend/testutil"
)

// newTestStores returns stores bound to a transaction that is rolled back when
// the test finishes, giving free per-test isolation.
//
// A statement that fails inside the transaction aborts it, so tests that
// expect a database error make that call last.
func newTestStores(t *testing.T) repo.Stores {
	t.Helper()
	return repo.NewStores(testutil.NewTx(t))
}

// tripFixture returns a domain.Trip with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func tripFixture(host uuid.UUID) domain.Trip {
	return domain.Trip{
		HostID:          host,
		GroupName:       "Lisbon Crew",
		DestinationID:   "city-lisbon",
		Description:     "Food and fado",
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

// seedTrip creates a trip with requiredMembers slots and its host roster row.
func seedTrip(t *testing.T, s repo.Stores, requiredMembers int) domain.Trip {
	t.Helper()
	ctx := context.Background()

	trip := tripFixture(uuid.New())
	trip.RequiredMembers = requiredMembers
	created, err := s.Trips.Create(ctx, trip)
	require.NoError(t, err)

	_, err = s.Roster.AddHost(ctx, domain.Member{TripID: created.ID, UserID: created.HostID, DisplayName: "Hana"})
	require.NoError(t, err)
	return created
}

func newMember(tripID uuid.UUID, name string) domain.Member {
	return domain.Member{TripID: tripID, UserID: uuid.New(), DisplayName: name}
}

// deleteTripOnCleanup removes everything a committed-data test wrote for tripID.
func deleteTripOnCleanup(t *testing.T, pool *pgxpool.Pool, tripID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		ctx := context.Background()
		for _, q := range []string{
			`DELETE FROM chat_messages WHERE trip_id = $1`,
			`DELETE FROM join_requests WHERE trip_id = $1`,
			`DELETE FROM trip_members WHERE trip_id = $1`,
			`DELETE FROM trips WHERE id = $1`,
		} {
			if _, err := pool.Exec(ctx, q, tripID); err != nil {
				t.Errorf("cleanup %q: %v", q, err)
			}
		}
	})
}
