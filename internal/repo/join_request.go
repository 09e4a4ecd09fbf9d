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

// JoinRequestRepo is the join-request ledger.
//
// InsertPendingIfAbsent and TransitionIfPending are the only mutations; each
// is a single conditional statement, so callers never read-then-write.
type JoinRequestRepo interface {
	// InsertPendingIfAbsent inserts a pending request for (TripID, ApplicantID).
	// Returns domain.ErrConflict if a pending request already exists for the pair.
	InsertPendingIfAbsent(ctx context.Context, req domain.JoinRequest) (domain.JoinRequest, error)

	// TransitionIfPending moves a pending request to a terminal status.
	// Returns domain.ErrConflict if the request is no longer pending,
	// domain.ErrNotFound if it does not exist, and domain.ErrValidation if
	// status is not terminal.
	TransitionIfPending(ctx context.Context, id uuid.UUID, status domain.RequestStatus) (domain.JoinRequest, error)

	// GetByID retrieves a request by primary key.
	// Returns domain.ErrNotFound if no request with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.JoinRequest, error)

	// LatestFor returns the most recent request for the pair.
	// Returns domain.ErrNotFound if the applicant never applied.
	LatestFor(ctx context.Context, tripID, applicantID uuid.UUID) (domain.JoinRequest, error)

	// ListPending returns the trip's pending requests, oldest first.
	ListPending(ctx context.Context, tripID uuid.UUID) ([]domain.JoinRequest, error)
}

type pgJoinRequestRepo struct {
	db db
}

// NewJoinRequestRepo constructs a JoinRequestRepo backed by the provided db connection.
func NewJoinRequestRepo(db db) JoinRequestRepo {
	return &pgJoinRequestRepo{db: db}
}

const joinRequestColumns = `
	id, trip_id, applicant_id, applicant_name, status, created_at, responded_at`

// InsertPendingIfAbsent relies on the partial unique index
// join_requests_one_pending; a concurrent duplicate blocks on the index entry
// and fails with a unique violation once the first insert commits.
func (r *pgJoinRequestRepo) InsertPendingIfAbsent(ctx context.Context, req domain.JoinRequest) (domain.JoinRequest, error) {
	q := `
		INSERT INTO join_requests (trip_id, applicant_id, applicant_name, status)
		VALUES (@trip_id, @applicant_id, @applicant_name, 'pending')
		RETURNING` + joinRequestColumns

	args := pgx.NamedArgs{
		"trip_id":        req.TripID,
		"applicant_id":   req.ApplicantID,
		"applicant_name": req.ApplicantName,
	}

	result, err := scanJoinRequest(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.InsertPendingIfAbsent: %w", domain.ErrConflict)
		}
		return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.InsertPendingIfAbsent: %w", err)
	}
	return result, nil
}

func (r *pgJoinRequestRepo) TransitionIfPending(ctx context.Context, id uuid.UUID, status domain.RequestStatus) (domain.JoinRequest, error) {
	if status != domain.RequestAccepted && status != domain.RequestRejected {
		return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.TransitionIfPending: %w: status %q is not terminal",
			domain.ErrValidation, status)
	}

	q := `
		UPDATE join_requests
		SET status       = @status,
		    responded_at = now()
		WHERE id = @id
		  AND status = 'pending'
		RETURNING` + joinRequestColumns

	result, err := scanJoinRequest(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.TransitionIfPending: %w", err)
	}

	// Nothing matched: tell a missing request apart from a resolved one.
	if _, err := r.GetByID(ctx, id); err != nil {
		return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.TransitionIfPending: %w", err)
	}
	return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.TransitionIfPending: %w", domain.ErrConflict)
}

func (r *pgJoinRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.JoinRequest, error) {
	q := `SELECT` + joinRequestColumns + ` FROM join_requests WHERE id = @id`

	result, err := scanJoinRequest(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgJoinRequestRepo) LatestFor(ctx context.Context, tripID, applicantID uuid.UUID) (domain.JoinRequest, error) {
	q := `SELECT` + joinRequestColumns + `
		FROM join_requests
		WHERE trip_id = @trip_id AND applicant_id = @applicant_id
		ORDER BY created_at DESC
		LIMIT 1`

	result, err := scanJoinRequest(r.db.QueryRow(ctx, q,
		pgx.NamedArgs{"trip_id": tripID, "applicant_id": applicantID}))
	if err != nil {
		return domain.JoinRequest{}, fmt.Errorf("repo.JoinRequestRepo.LatestFor: %w", err)
	}
	return result, nil
}

func (r *pgJoinRequestRepo) ListPending(ctx context.Context, tripID uuid.UUID) ([]domain.JoinRequest, error) {
	q := `SELECT` + joinRequestColumns + `
		FROM join_requests
		WHERE trip_id = @trip_id AND status = 'pending'
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.JoinRequestRepo.ListPending: %w", err)
	}
	defer rows.Close()

	var out []domain.JoinRequest
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.JoinRequestRepo.ListPending: scan: %w", err)
		}
		out = append(out, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.JoinRequestRepo.ListPending: rows: %w", err)
	}
	return out, nil
}

func scanJoinRequest(s scanner) (domain.JoinRequest, error) {
	var (
		jr                  domain.JoinRequest
		id, trip, applicant pgtype.UUID
		status              string
		respondedAt         pgtype.Timestamptz
	)
	err := s.Scan(&id, &trip, &applicant, &jr.ApplicantName, &status, &jr.CreatedAt, &respondedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JoinRequest{}, domain.ErrNotFound
		}
		return domain.JoinRequest{}, err
	}

	jr.ID = uuid.UUID(id.Bytes)
	jr.TripID = uuid.UUID(trip.Bytes)
	jr.ApplicantID = uuid.UUID(applicant.Bytes)
	jr.Status = domain.RequestStatus(status)
	if respondedAt.Valid {
		ts := respondedAt.Time
		jr.RespondedAt = &ts
	}
	return jr, nil
}
