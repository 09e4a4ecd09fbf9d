package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// RosterRepo owns trip memberships and the trip's current_members_count.
// It is the single source of truth for who is on a trip.
type RosterRepo interface {
	// AddHost inserts the host's roster row for a newly created trip.
	// It does not touch current_members_count, which starts at 1.
	AddHost(ctx context.Context, m domain.Member) (domain.Member, error)

	// TryAddMember claims one free slot and inserts the membership row in a
	// single statement. capacity is the required_members value the caller
	// validated against; if the trip's capacity differs the slot is not claimed.
	//
	// Returns domain.ErrTripFull if no slot is free, domain.ErrAlreadyMember if
	// the user is already on the roster, and domain.ErrNotFound if the trip does
	// not exist. Both conflict errors wrap domain.ErrConflict.
	TryAddMember(ctx context.Context, m domain.Member, capacity int) (domain.Member, error)

	// CurrentMembers returns the roster: host first, then members by join order.
	CurrentMembers(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)

	// Role returns the user's role on the trip.
	// Returns domain.ErrNotFound if the user is not on the roster.
	Role(ctx context.Context, tripID, userID uuid.UUID) (domain.Role, error)
}

type pgRosterRepo struct {
	db db
}

// NewRosterRepo constructs a RosterRepo backed by the provided db connection.
func NewRosterRepo(db db) RosterRepo {
	return &pgRosterRepo{db: db}
}

func (r *pgRosterRepo) AddHost(ctx context.Context, m domain.Member) (domain.Member, error) {
	const q = `
		INSERT INTO trip_members (trip_id, user_id, role, display_name)
		VALUES (@trip_id, @user_id, 'host', @display_name)
		RETURNING trip_id, user_id, role, display_name, joined_at`

	args := pgx.NamedArgs{
		"trip_id":      m.TripID,
		"user_id":      m.UserID,
		"display_name": m.DisplayName,
	}

	result, err := scanMember(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Member{}, fmt.Errorf("repo.RosterRepo.AddHost: %w", domain.ErrConflict)
		}
		return domain.Member{}, fmt.Errorf("repo.RosterRepo.AddHost: %w", err)
	}
	return result, nil
}

// TryAddMember uses a data-modifying CTE so the capacity check, the counter
// increment, and the insert are one statement. Concurrent callers racing for
// the last slot serialize on the trip row lock; once the winner commits, the
// losers re-evaluate the WHERE clause, match nothing, and insert nothing.
func (r *pgRosterRepo) TryAddMember(ctx context.Context, m domain.Member, capacity int) (domain.Member, error) {
	const q = `
		WITH slot AS (
			UPDATE trips
			SET current_members_count = current_members_count + 1,
			    updated_at = now()
			WHERE id = @trip_id
			  AND required_members = @capacity
			  AND current_members_count < required_members
			RETURNING id
		)
		INSERT INTO trip_members (trip_id, user_id, role, display_name)
		SELECT id, @user_id::uuid, 'member', @display_name::text FROM slot
		RETURNING trip_id, user_id, role, display_name, joined_at`

	args := pgx.NamedArgs{
		"trip_id":      m.TripID,
		"user_id":      m.UserID,
		"display_name": m.DisplayName,
		"capacity":     capacity,
	}

	result, err := scanMember(r.db.QueryRow(ctx, q, args))
	switch {
	case err == nil:
		return result, nil
	case isUniqueViolation(err):
		return domain.Member{}, fmt.Errorf("repo.RosterRepo.TryAddMember: %w", domain.ErrAlreadyMember)
	case errors.Is(err, domain.ErrNotFound):
		// No slot was claimed: either the trip does not exist or it is full.
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`,
			pgx.NamedArgs{"id": m.TripID}).Scan(&exists); err != nil {
			return domain.Member{}, fmt.Errorf("repo.RosterRepo.TryAddMember: exists: %w", err)
		}
		if !exists {
			return domain.Member{}, fmt.Errorf("repo.RosterRepo.TryAddMember: %w", domain.ErrNotFound)
		}
		return domain.Member{}, fmt.Errorf("repo.RosterRepo.TryAddMember: %w", domain.ErrTripFull)
	default:
		return domain.Member{}, fmt.Errorf("repo.RosterRepo.TryAddMember: %w", err)
	}
}

func (r *pgRosterRepo) CurrentMembers(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	const q = `
		SELECT trip_id, user_id, role, display_name, joined_at
		FROM trip_members
		WHERE trip_id = @trip_id
		ORDER BY (role = 'host') DESC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.RosterRepo.CurrentMembers: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RosterRepo.CurrentMembers: scan: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RosterRepo.CurrentMembers: rows: %w", err)
	}
	return members, nil
}

func (r *pgRosterRepo) Role(ctx context.Context, tripID, userID uuid.UUID) (domain.Role, error) {
	const q = `SELECT role FROM trip_members WHERE trip_id = @trip_id AND user_id = @user_id`

	var role string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("repo.RosterRepo.Role: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("repo.RosterRepo.Role: %w", err)
	}
	return domain.Role(role), nil
}

func scanMember(s scanner) (domain.Member, error) {
	var (
		m            domain.Member
		tripID, user pgtype.UUID
		role         string
	)
	if err := s.Scan(&tripID, &user, &role, &m.DisplayName, &m.JoinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, domain.ErrNotFound
		}
		return domain.Member{}, err
	}
	m.TripID = uuid.UUID(tripID.Bytes)
	m.UserID = uuid.UUID(user.Bytes)
	m.Role = domain.Role(role)
	return m, nil
}
