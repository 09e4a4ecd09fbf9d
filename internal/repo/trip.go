package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
//
// Trips are never deleted, and the roster counter is owned by RosterRepo:
// nothing here writes current_members_count.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated). current_members_count starts at 1
	// for the host; the host's roster row is added separately by RosterRepo.AddHost.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of the trips matching f, ordered by start_date
	// descending, plus the total number of matches.
	ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// UpdateItinerary replaces the trip's itinerary and returns the updated record.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	UpdateItinerary(ctx context.Context, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `
	id, host_id, group_name, destination_id, description, start_date, end_date,
	min_age, max_age, required_members, current_members_count, itinerary,
	created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (host_id, group_name, destination_id, description, start_date,
		                   end_date, min_age, max_age, required_members, itinerary)
		VALUES (@host_id, @group_name, @destination_id, @description, @start_date,
		        @end_date, @min_age, @max_age, @required_members, @itinerary)
		RETURNING` + tripColumns

	args := pgx.NamedArgs{
		"host_id":          trip.HostID,
		"group_name":       trip.GroupName,
		"destination_id":   trip.DestinationID,
		"description":      trip.Description,
		"start_date":       trip.StartDate,
		"end_date":         trip.EndDate,
		"min_age":          trip.MinAge,
		"max_age":          trip.MaxAge,
		"required_members": trip.RequiredMembers,
		"itinerary":        trip.Itinerary,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of matching trips, most recent start first.
func (r *pgTripRepo) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	where, args := tripFilterClause(f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	q := `SELECT` + tripColumns + `
		FROM trips` + where + `
		ORDER BY start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}

	return trips, total, nil
}

// UpdateItinerary overwrites the itinerary column and bumps updated_at.
func (r *pgTripRepo) UpdateItinerary(ctx context.Context, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET itinerary  = @itinerary,
		    updated_at = now()
		WHERE id = @id
		RETURNING` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "itinerary": days}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateItinerary: %w", err)
	}
	return result, nil
}

// tripFilterClause renders f as a WHERE clause over trips and its named args.
// Membership is a semi-join on trip_members, which holds one row per user and
// trip, so no trip is counted twice.
func tripFilterClause(f domain.TripFilter) (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	var conds []string
	if f.DestinationID != "" {
		conds = append(conds, "destination_id = @destination_id")
		args["destination_id"] = f.DestinationID
	}
	if f.MemberID != uuid.Nil {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM trip_members m
			WHERE m.trip_id = trips.id AND m.user_id = @member_id)`)
		args["member_id"] = f.MemberID
	}
	if len(conds) == 0 {
		return "", args
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, date, and jsonb itinerary conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id, host  pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
	)

	err := s.Scan(
		&id, &host, &t.GroupName, &t.DestinationID, &t.Description, &startDate, &endDate,
		&t.MinAge, &t.MaxAge, &t.RequiredMembers, &t.CurrentMembersCount, &t.Itinerary,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.HostID = uuid.UUID(host.Bytes)
	t.StartDate = startDate.Time
	t.EndDate = endDate.Time

	return t, nil
}
