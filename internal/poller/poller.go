// Package poller is the client side of the chat sync contract: it re-fetches
// a trip's messages on a fixed interval and advances a last-seen sequence
// cursor so every message is delivered exactly once, in order.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// DefaultInterval matches the server's advertised staleness bound.
const DefaultInterval = 5 * time.Second

// Fetcher reads one window of a trip's chat log.
type Fetcher interface {
	FetchSince(ctx context.Context, tripID uuid.UUID, w domain.FetchWindow) ([]domain.ChatMessage, error)
}

// Handler receives each non-empty batch of new messages in seq order.
type Handler func(msgs []domain.ChatMessage)

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithBatchSize sets how many messages are requested per fetch.
func WithBatchSize(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.batch = min(n, domain.MaxFetchLimit)
		}
	}
}

// WithCursor resumes polling after seq, e.g. from a locally cached history.
func WithCursor(seq int64) Option {
	return func(p *Poller) { p.lastSeq = seq }
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(log *slog.Logger) Option {
	return func(p *Poller) { p.log = log }
}

// Poller follows one trip's chat. It is not safe for concurrent Run calls.
type Poller struct {
	fetch    Fetcher
	tripID   uuid.UUID
	interval time.Duration
	batch    int
	lastSeq  int64
	log      *slog.Logger
}

// New creates a Poller for tripID starting from seq 0.
func New(fetch Fetcher, tripID uuid.UUID, opts ...Option) *Poller {
	p := &Poller{
		fetch:    fetch,
		tripID:   tripID,
		interval: DefaultInterval,
		batch:    domain.DefaultFetchLimit,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LastSeq returns the highest sequence number delivered so far.
func (p *Poller) LastSeq() int64 { return p.lastSeq }

// PollOnce fetches everything newer than the cursor, following full pages
// until the log is drained, and advances the cursor past what it returns.
func (p *Poller) PollOnce(ctx context.Context) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for {
		start := p.lastSeq
		page, err := p.fetch.FetchSince(ctx, p.tripID, domain.FetchWindow{AfterSeq: p.lastSeq, Limit: p.batch})
		if err != nil {
			return out, fmt.Errorf("poller.Poller.PollOnce: %w", err)
		}
		for _, m := range page {
			// Guard against a server replaying a window we already consumed.
			if m.Seq <= p.lastSeq {
				continue
			}
			out = append(out, m)
			p.lastSeq = m.Seq
		}
		// A short page means the log is drained. A full page that moved the
		// cursor nowhere is a replay; fetching it again would loop forever.
		if len(page) < p.batch || p.lastSeq == start {
			return out, nil
		}
	}
}

// Run polls immediately and then once per interval until ctx is cancelled.
// Fetch errors are logged and retried on the next tick; the cursor only moves
// forward on success so nothing is skipped. Returns ctx.Err() on exit.
func (p *Poller) Run(ctx context.Context, handle Handler) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		msgs, err := p.PollOnce(ctx)
		if len(msgs) > 0 {
			handle(msgs)
		}
		if err != nil && ctx.Err() == nil {
			p.log.WarnContext(ctx, "chat poll failed", "trip_id", p.tripID, "last_seq", p.lastSeq, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
