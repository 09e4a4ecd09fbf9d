package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripmates/backend/internal/auth"
	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/handler"
	"github.com/pkordes/tripmates/backend/internal/middleware"
)

// Test doubles for the handler's service interfaces.
// Set only the method fields your test needs.

type mockTripServicer struct {
	create          func(ctx context.Context, host domain.Identity, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged       func(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	updateItinerary func(ctx context.Context, actor domain.Identity, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error)
}

func (m *mockTripServicer) Create(ctx context.Context, host domain.Identity, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, host, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTripServicer) UpdateItinerary(ctx context.Context, actor domain.Identity, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error) {
	return m.updateItinerary(ctx, actor, id, days)
}

type mockMembershipServicer struct {
	requestToJoin   func(ctx context.Context, tripID uuid.UUID, applicant domain.Identity) (domain.JoinRequest, error)
	approve         func(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error)
	reject          func(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error)
	status          func(ctx context.Context, tripID, userID uuid.UUID) (domain.JoinStatus, error)
	pendingRequests func(ctx context.Context, tripID uuid.UUID, actor domain.Identity) ([]domain.JoinRequest, error)
	members         func(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)
}

func (m *mockMembershipServicer) RequestToJoin(ctx context.Context, tripID uuid.UUID, applicant domain.Identity) (domain.JoinRequest, error) {
	return m.requestToJoin(ctx, tripID, applicant)
}
func (m *mockMembershipServicer) Approve(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error) {
	return m.approve(ctx, requestID, actor)
}
func (m *mockMembershipServicer) Reject(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error) {
	return m.reject(ctx, requestID, actor)
}
func (m *mockMembershipServicer) Status(ctx context.Context, tripID, userID uuid.UUID) (domain.JoinStatus, error) {
	return m.status(ctx, tripID, userID)
}
func (m *mockMembershipServicer) PendingRequests(ctx context.Context, tripID uuid.UUID, actor domain.Identity) ([]domain.JoinRequest, error) {
	return m.pendingRequests(ctx, tripID, actor)
}
func (m *mockMembershipServicer) Members(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	return m.members(ctx, tripID)
}

type mockChatServicer struct {
	appendMsg  func(ctx context.Context, tripID uuid.UUID, author domain.Identity, text, clientMessageID string) (domain.ChatMessage, error)
	fetchSince func(ctx context.Context, tripID uuid.UUID, reader domain.Identity, w domain.FetchWindow) ([]domain.ChatMessage, error)
	transcript func(ctx context.Context, tripID uuid.UUID, reader domain.Identity) ([]domain.TranscriptRow, error)
}

func (m *mockChatServicer) Append(ctx context.Context, tripID uuid.UUID, author domain.Identity, text, clientMessageID string) (domain.ChatMessage, error) {
	return m.appendMsg(ctx, tripID, author, text, clientMessageID)
}
func (m *mockChatServicer) FetchSince(ctx context.Context, tripID uuid.UUID, reader domain.Identity, w domain.FetchWindow) ([]domain.ChatMessage, error) {
	return m.fetchSince(ctx, tripID, reader, w)
}
func (m *mockChatServicer) Transcript(ctx context.Context, tripID uuid.UUID, reader domain.Identity) ([]domain.TranscriptRow, error) {
	return m.transcript(ctx, tripID, reader)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TripServicer       = (*mockTripServicer)(nil)
	_ handler.MembershipServicer = (*mockMembershipServicer)(nil)
	_ handler.ChatServicer       = (*mockChatServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

const testSecret = "handler-test-secret"

var testTokens = auth.NewTokens(testSecret)

// services groups the mocks; nil fields are replaced with empty mocks.
type services struct {
	trips      *mockTripServicer
	membership *mockMembershipServicer
	chat       *mockChatServicer
}

// newHTTPHandler wires a Server with the given mocks behind the real
// authentication middleware, mirroring main.go.
func newHTTPHandler(s services) http.Handler {
	if s.trips == nil {
		s.trips = &mockTripServicer{}
	}
	if s.membership == nil {
		s.membership = &mockMembershipServicer{}
	}
	if s.chat == nil {
		s.chat = &mockChatServicer{}
	}
	srv := handler.NewServer(s.trips, s.membership, s.chat, 5*time.Second, slog.New(slog.DiscardHandler))
	return srv.Routes(middleware.NewAuthenticator(testTokens))
}

func newIdentity(name string, age int) domain.Identity {
	return domain.Identity{UserID: uuid.New(), DisplayName: name, Age: age}
}

// do sends a request as id (or anonymously when id is nil) and records the response.
func do(t *testing.T, h http.Handler, method, path string, id *domain.Identity, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		tok, err := testTokens.Issue(*id, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// errorCode decodes an ErrorResponse and returns its code.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}
