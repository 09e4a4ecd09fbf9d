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

// MessageRepo is the append-only chat log. Messages are never updated or deleted.
type MessageRepo interface {
	// Append assigns the trip's next sequence number and stores the message.
	// Returns domain.ErrNotFound if the trip does not exist and
	// domain.ErrConflict if the author already posted ClientMessageID on this trip.
	Append(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)

	// FindByClientID returns the message an author posted with clientMessageID.
	// Returns domain.ErrNotFound if there is none.
	FindByClientID(ctx context.Context, tripID, authorID uuid.UUID, clientMessageID string) (domain.ChatMessage, error)

	// FetchSince returns up to w.Limit messages with seq > w.AfterSeq in
	// ascending seq order. It takes no locks.
	FetchSince(ctx context.Context, tripID uuid.UUID, w domain.FetchWindow) ([]domain.ChatMessage, error)
}

type pgMessageRepo struct {
	db db
}

// NewMessageRepo constructs a MessageRepo backed by the provided db connection.
func NewMessageRepo(db db) MessageRepo {
	return &pgMessageRepo{db: db}
}

const messageColumns = `
	id, trip_id, seq, author_id, author_name, body, client_message_id, created_at`

// Append bumps trips.last_message_seq and inserts the message in one
// statement. The row lock on the trip serializes appends per trip, and a
// failed insert rolls the counter back, so sequence numbers stay gapless.
func (r *pgMessageRepo) Append(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	q := `
		WITH next AS (
			UPDATE trips
			SET last_message_seq = last_message_seq + 1
			WHERE id = @trip_id
			RETURNING last_message_seq
		)
		INSERT INTO chat_messages (trip_id, seq, author_id, author_name, body, client_message_id)
		SELECT @trip_id::uuid, last_message_seq, @author_id::uuid, @author_name::text, @body::text,
		       @client_message_id::text
		FROM next
		RETURNING` + messageColumns

	var clientID *string
	if msg.ClientMessageID != "" {
		clientID = &msg.ClientMessageID
	}

	args := pgx.NamedArgs{
		"trip_id":           msg.TripID,
		"author_id":         msg.AuthorID,
		"author_name":       msg.AuthorName,
		"body":              msg.Text,
		"client_message_id": clientID,
	}

	result, err := scanMessage(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ChatMessage{}, fmt.Errorf("repo.MessageRepo.Append: %w", domain.ErrConflict)
		}
		return domain.ChatMessage{}, fmt.Errorf("repo.MessageRepo.Append: %w", err)
	}
	return result, nil
}

func (r *pgMessageRepo) FindByClientID(ctx context.Context, tripID, authorID uuid.UUID, clientMessageID string) (domain.ChatMessage, error) {
	q := `SELECT` + messageColumns + `
		FROM chat_messages
		WHERE trip_id = @trip_id AND author_id = @author_id AND client_message_id = @client_message_id`

	args := pgx.NamedArgs{
		"trip_id":           tripID,
		"author_id":         authorID,
		"client_message_id": clientMessageID,
	}

	result, err := scanMessage(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("repo.MessageRepo.FindByClientID: %w", err)
	}
	return result, nil
}

func (r *pgMessageRepo) FetchSince(ctx context.Context, tripID uuid.UUID, w domain.FetchWindow) ([]domain.ChatMessage, error) {
	q := `SELECT` + messageColumns + `
		FROM chat_messages
		WHERE trip_id = @trip_id AND seq > @after_seq
		ORDER BY seq ASC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"trip_id":   tripID,
		"after_seq": w.AfterSeq,
		"limit":     w.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.MessageRepo.FetchSince: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.MessageRepo.FetchSince: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MessageRepo.FetchSince: rows: %w", err)
	}
	return out, nil
}

func scanMessage(s scanner) (domain.ChatMessage, error) {
	var (
		m                domain.ChatMessage
		id, trip, author pgtype.UUID
		clientID         pgtype.Text
	)
	err := s.Scan(&id, &trip, &m.Seq, &author, &m.AuthorName, &m.Text, &clientID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ChatMessage{}, domain.ErrNotFound
		}
		return domain.ChatMessage{}, err
	}
	m.ID = uuid.UUID(id.Bytes)
	m.TripID = uuid.UUID(trip.Bytes)
	m.AuthorID = uuid.UUID(author.Bytes)
	if clientID.Valid {
		m.ClientMessageID = clientID.String
	}
	return m, nil
}
