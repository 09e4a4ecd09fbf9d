package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength caps the text of a single chat message, in characters.
const MaxMessageLength = 2000

// ChatMessage is one immutable entry in a trip's chat log.
// Seq is gapless and strictly increasing per trip; it, not CreatedAt, defines
// the order of messages.
type ChatMessage struct {
	ID              uuid.UUID
	TripID          uuid.UUID
	Seq             int64
	AuthorID        uuid.UUID
	AuthorName      string
	Text            string
	ClientMessageID string // optional, makes retried posts idempotent
	CreatedAt       time.Time
}

// FetchWindow bounds one incremental read of a chat log.
type FetchWindow struct {
	// AfterSeq is the last sequence number the caller has already seen.
	AfterSeq int64
	// Limit is the maximum number of messages to return.
	Limit int
}

// NewFetchWindow builds a FetchWindow from optional query params.
// Nil or negative values fall back to afterSeq=0 and DefaultFetchLimit; the
// limit is capped at MaxFetchLimit.
func NewFetchWindow(afterSeq *int64, limit *int) FetchWindow {
	w := FetchWindow{Limit: clampLimit(limit, DefaultFetchLimit, MaxFetchLimit)}
	if afterSeq != nil && *afterSeq > 0 {
		w.AfterSeq = *afterSeq
	}
	return w
}
