package domain

import "time"

// TranscriptRow is a single row in a chat transcript export.
// It is a flat view of one message, suitable for CSV.
type TranscriptRow struct {
	Seq        int64
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
