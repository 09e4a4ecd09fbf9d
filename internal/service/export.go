package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// transcriptPageSize is how many messages Transcript reads per round trip.
const transcriptPageSize = domain.MaxFetchLimit

// Transcript returns the trip's whole chat as flat rows in seq order.
// Members only.
func (s *ChatService) Transcript(ctx context.Context, tripID uuid.UUID, reader domain.Identity) ([]domain.TranscriptRow, error) {
	st := s.tx.Stores()
	if err := s.authorize(ctx, st, tripID, reader.UserID); err != nil {
		return nil, fmt.Errorf("service.ChatService.Transcript: %w", err)
	}

	rows := []domain.TranscriptRow{}
	w := domain.FetchWindow{AfterSeq: 0, Limit: transcriptPageSize}
	for {
		page, err := st.Messages.FetchSince(ctx, tripID, w)
		if err != nil {
			return nil, fmt.Errorf("service.ChatService.Transcript: %w", err)
		}
		for _, m := range page {
			rows = append(rows, domain.TranscriptRow{
				Seq:        m.Seq,
				AuthorID:   m.AuthorID.String(),
				AuthorName: m.AuthorName,
				Text:       m.Text,
				CreatedAt:  m.CreatedAt,
			})
		}
		if len(page) < w.Limit {
			return rows, nil
		}
		w.AfterSeq = page[len(page)-1].Seq
	}
}
