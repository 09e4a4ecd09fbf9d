package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// HTTPFetcher reads chat windows from the API's
// GET /trips/{tripId}/messages endpoint.
type HTTPFetcher struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher against baseURL that authenticates with a
// bearer token. A nil client uses http.DefaultClient.
func NewHTTPFetcher(baseURL, token string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

type wireMessage struct {
	ID              uuid.UUID `json:"id"`
	TripID          uuid.UUID `json:"trip_id"`
	Seq             int64     `json:"seq"`
	AuthorID        uuid.UUID `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	Text            string    `json:"text"`
	ClientMessageID string    `json:"client_message_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type wirePage struct {
	Data    []wireMessage `json:"data"`
	LastSeq int64         `json:"last_seq"`
}

// FetchSince implements Fetcher.
func (f *HTTPFetcher) FetchSince(ctx context.Context, tripID uuid.UUID, w domain.FetchWindow) ([]domain.ChatMessage, error) {
	q := url.Values{}
	q.Set("after_seq", strconv.FormatInt(w.AfterSeq, 10))
	q.Set("limit", strconv.Itoa(w.Limit))
	u := fmt.Sprintf("%s/trips/%s/messages?%s", f.baseURL, tripID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch messages returned %s", resp.Status)
	}

	var page wirePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	msgs := make([]domain.ChatMessage, 0, len(page.Data))
	for _, m := range page.Data {
		msgs = append(msgs, domain.ChatMessage{
			ID:              m.ID,
			TripID:          m.TripID,
			Seq:             m.Seq,
			AuthorID:        m.AuthorID,
			AuthorName:      m.AuthorName,
			Text:            m.Text,
			ClientMessageID: m.ClientMessageID,
			CreatedAt:       m.CreatedAt,
		})
	}
	return msgs, nil
}
