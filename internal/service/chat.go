package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/repo"
)

// ChatService is the trip chat: an append-only log that members post to and
// poll incrementally by sequence number.
type ChatService struct {
	tx  repo.Transactor
	log *slog.Logger
}

// NewChatService constructs a ChatService backed by the provided Transactor.
func NewChatService(tx repo.Transactor, log *slog.Logger) *ChatService {
	return &ChatService{tx: tx, log: log}
}

// Append posts text to the trip's chat as author.
//
// Returns domain.ErrValidation for blank or over-long text, domain.ErrNotFound
// for an unknown trip, and domain.ErrNotMember if author is not on the roster.
// When clientMessageID is set, a retried post returns the original message
// instead of appending a duplicate.
func (s *ChatService) Append(ctx context.Context, tripID uuid.UUID, author domain.Identity, text, clientMessageID string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, fmt.Errorf("%w: message text is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return domain.ChatMessage{}, fmt.Errorf("%w: message text exceeds %d characters",
			domain.ErrValidation, domain.MaxMessageLength)
	}
	clientMessageID = strings.TrimSpace(clientMessageID)

	st := s.tx.Stores()
	if err := s.authorize(ctx, st, tripID, author.UserID); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Append: %w", err)
	}

	if clientMessageID != "" {
		existing, err := st.Messages.FindByClientID(ctx, tripID, author.UserID, clientMessageID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Append: %w", err)
		}
	}

	msg, err := st.Messages.Append(ctx, domain.ChatMessage{
		TripID:          tripID,
		AuthorID:        author.UserID,
		AuthorName:      author.DisplayName,
		Text:            text,
		ClientMessageID: clientMessageID,
	})
	if err != nil {
		// A concurrent retry with the same client id won the insert.
		if errors.Is(err, domain.ErrConflict) && clientMessageID != "" {
			existing, findErr := st.Messages.FindByClientID(ctx, tripID, author.UserID, clientMessageID)
			if findErr == nil {
				return existing, nil
			}
		}
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Append: %w", err)
	}

	s.log.DebugContext(ctx, "chat message appended", "trip_id", tripID, "seq", msg.Seq, "user_id", author.UserID)
	return msg, nil
}

// FetchSince returns messages with seq > w.AfterSeq in ascending order, at
// most w.Limit of them. Each call is independent; clients poll with the last
// seq they saw. Always returns a non-nil slice.
func (s *ChatService) FetchSince(ctx context.Context, tripID uuid.UUID, reader domain.Identity, w domain.FetchWindow) ([]domain.ChatMessage, error) {
	st := s.tx.Stores()
	if err := s.authorize(ctx, st, tripID, reader.UserID); err != nil {
		return nil, fmt.Errorf("service.ChatService.FetchSince: %w", err)
	}

	msgs, err := st.Messages.FetchSince(ctx, tripID, w)
	if err != nil {
		return nil, fmt.Errorf("service.ChatService.FetchSince: %w", err)
	}
	if msgs == nil {
		return []domain.ChatMessage{}, nil
	}
	return msgs, nil
}

// authorize checks the trip exists and userID is on its roster.
func (s *ChatService) authorize(ctx context.Context, st repo.Stores, tripID, userID uuid.UUID) error {
	if _, err := st.Trips.GetByID(ctx, tripID); err != nil {
		return err
	}
	return requireMember(ctx, st.Roster, tripID, userID)
}
