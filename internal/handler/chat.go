package handler

import (
	"net/http"
	"strconv"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// PostMessage handles POST /trips/{tripId}/messages. Members only.
// A repeated client_message_id returns the original message with 201 again.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	author, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var body PostMessageRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var clientID string
	if body.ClientMessageID != nil {
		clientID = *body.ClientMessageID
	}

	msg, err := s.chat.Append(r.Context(), tripID, author, body.Text, clientID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageToResponse(msg))
}

// ListMessages handles GET /trips/{tripId}/messages?after_seq=&limit=.
// Members only. The response carries the cursor for the next poll and the
// X-Poll-Interval header tells clients how long to wait before it.
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	reader, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var afterSeq *int64
	var limit *int
	if err := queryParam(r, "after_seq", &afterSeq); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	window := domain.NewFetchWindow(afterSeq, limit)
	msgs, err := s.chat.FetchSince(r.Context(), tripID, reader, window)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	page := MessagePage{Data: make([]ChatMessage, len(msgs)), LastSeq: window.AfterSeq}
	for i, m := range msgs {
		page.Data[i] = messageToResponse(m)
	}
	if len(msgs) > 0 {
		page.LastSeq = msgs[len(msgs)-1].Seq
	}
	if s.pollInterval > 0 {
		w.Header().Set("X-Poll-Interval", strconv.FormatInt(s.pollInterval.Milliseconds(), 10))
	}
	writeJSON(w, http.StatusOK, page)
}

func messageToResponse(m domain.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:              m.ID,
		TripID:          m.TripID,
		Seq:             m.Seq,
		AuthorID:        m.AuthorID,
		AuthorName:      m.AuthorName,
		Text:            m.Text,
		ClientMessageID: m.ClientMessageID,
		CreatedAt:       m.CreatedAt,
	}
}
