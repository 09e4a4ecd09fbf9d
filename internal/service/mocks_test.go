package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field; set only the ones your test needs.

type mockTripRepo struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged       func(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	updateItinerary func(ctx context.Context, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTripRepo) UpdateItinerary(ctx context.Context, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error) {
	return m.updateItinerary(ctx, id, days)
}

type mockRosterRepo struct {
	addHost        func(ctx context.Context, m domain.Member) (domain.Member, error)
	tryAddMember   func(ctx context.Context, m domain.Member, capacity int) (domain.Member, error)
	currentMembers func(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)
	role           func(ctx context.Context, tripID, userID uuid.UUID) (domain.Role, error)
}

func (m *mockRosterRepo) AddHost(ctx context.Context, mem domain.Member) (domain.Member, error) {
	return m.addHost(ctx, mem)
}
func (m *mockRosterRepo) TryAddMember(ctx context.Context, mem domain.Member, capacity int) (domain.Member, error) {
	return m.tryAddMember(ctx, mem, capacity)
}
func (m *mockRosterRepo) CurrentMembers(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	return m.currentMembers(ctx, tripID)
}
func (m *mockRosterRepo) Role(ctx context.Context, tripID, userID uuid.UUID) (domain.Role, error) {
	return m.role(ctx, tripID, userID)
}

type mockJoinRequestRepo struct {
	insertPendingIfAbsent func(ctx context.Context, req domain.JoinRequest) (domain.JoinRequest, error)
	transitionIfPending   func(ctx context.Context, id uuid.UUID, status domain.RequestStatus) (domain.JoinRequest, error)
	getByID               func(ctx context.Context, id uuid.UUID) (domain.JoinRequest, error)
	latestFor             func(ctx context.Context, tripID, applicantID uuid.UUID) (domain.JoinRequest, error)
	listPending           func(ctx context.Context, tripID uuid.UUID) ([]domain.JoinRequest, error)
}

func (m *mockJoinRequestRepo) InsertPendingIfAbsent(ctx context.Context, req domain.JoinRequest) (domain.JoinRequest, error) {
	return m.insertPendingIfAbsent(ctx, req)
}
func (m *mockJoinRequestRepo) TransitionIfPending(ctx context.Context, id uuid.UUID, status domain.RequestStatus) (domain.JoinRequest, error) {
	return m.transitionIfPending(ctx, id, status)
}
func (m *mockJoinRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.JoinRequest, error) {
	return m.getByID(ctx, id)
}
func (m *mockJoinRequestRepo) LatestFor(ctx context.Context, tripID, applicantID uuid.UUID) (domain.JoinRequest, error) {
	return m.latestFor(ctx, tripID, applicantID)
}
func (m *mockJoinRequestRepo) ListPending(ctx context.Context, tripID uuid.UUID) ([]domain.JoinRequest, error) {
	return m.listPending(ctx, tripID)
}

type mockMessageRepo struct {
	appendMsg      func(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)
	findByClientID func(ctx context.Context, tripID, authorID uuid.UUID, clientMessageID string) (domain.ChatMessage, error)
	fetchSince     func(ctx context.Context, tripID uuid.UUID, w domain.FetchWindow) ([]domain.ChatMessage, error)
}

func (m *mockMessageRepo) Append(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	return m.appendMsg(ctx, msg)
}
func (m *mockMessageRepo) FindByClientID(ctx context.Context, tripID, authorID uuid.UUID, clientMessageID string) (domain.ChatMessage, error) {
	return m.findByClientID(ctx, tripID, authorID, clientMessageID)
}
func (m *mockMessageRepo) FetchSince(ctx context.Context, tripID uuid.UUID, w domain.FetchWindow) ([]domain.ChatMessage, error) {
	return m.fetchSince(ctx, tripID, w)
}

// mockTransactor hands the same stores to reads and transactions and records
// whether the transaction function failed.
type mockTransactor struct {
	stores     repo.Stores
	rolledBack bool
}

func (m *mockTransactor) Stores() repo.Stores { return m.stores }

func (m *mockTransactor) WithinTx(_ context.Context, fn func(repo.Stores) error) error {
	if err := fn(m.stores); err != nil {
		m.rolledBack = true
		return err
	}
	return nil
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.TripRepo        = (*mockTripRepo)(nil)
	_ repo.RosterRepo      = (*mockRosterRepo)(nil)
	_ repo.JoinRequestRepo = (*mockJoinRequestRepo)(nil)
	_ repo.MessageRepo     = (*mockMessageRepo)(nil)
	_ repo.Transactor      = (*mockTransactor)(nil)
)
