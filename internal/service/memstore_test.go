package service_test

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/repo"
)

// memDB is an in-memory stand-in for Postgres that honours the same
// conditional-write contracts as the pg repos. WithinTx runs fn under one
// mutex and restores a snapshot if fn fails, which gives the service tests
// real all-or-nothing semantics without a database.
type memDB struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	trips    map[uuid.UUID]domain.Trip
	members  []domain.Member
	requests []domain.JoinRequest
	messages []domain.ChatMessage
	lastSeq  map[uuid.UUID]int64
}

func (s memState) clone() memState {
	return memState{
		trips:    maps.Clone(s.trips),
		members:  slices.Clone(s.members),
		requests: slices.Clone(s.requests),
		messages: slices.Clone(s.messages),
		lastSeq:  maps.Clone(s.lastSeq),
	}
}

func newMemDB() *memDB {
	return &memDB{state: memState{
		trips:   map[uuid.UUID]domain.Trip{},
		lastSeq: map[uuid.UUID]int64{},
	}}
}

var _ repo.Transactor = (*memDB)(nil)

func (d *memDB) Stores() repo.Stores { return d.stores(false) }

func (d *memDB) WithinTx(_ context.Context, fn func(repo.Stores) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	saved := d.state.clone()
	if err := fn(d.stores(true)); err != nil {
		d.state = saved
		return err
	}
	return nil
}

func (d *memDB) stores(inTx bool) repo.Stores {
	v := &memView{db: d, inTx: inTx}
	return repo.Stores{
		Trips:    memTrips{v},
		Roster:   memRoster{v},
		Requests: memRequests{v},
		Messages: memMessages{v},
	}
}

// memView locks the database for each call unless it is already inside WithinTx.
type memView struct {
	db   *memDB
	inTx bool
}

func (v *memView) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.db.mu.Lock()
	return v.db.mu.Unlock
}

// ---- trips -----------------------------------------------------------------

type memTrips struct{ *memView }

func (m memTrips) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	defer m.lock()()
	t.ID = uuid.New()
	t.CurrentMembersCount = 1
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	m.db.state.trips[t.ID] = t
	return t, nil
}

func (m memTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	defer m.lock()()
	t, ok := m.db.state.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (m memTrips) ListPaged(_ context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	defer m.lock()()
	all := slices.DeleteFunc(slices.Collect(maps.Values(m.db.state.trips)), func(t domain.Trip) bool {
		if f.DestinationID != "" && t.DestinationID != f.DestinationID {
			return true
		}
		return f.MemberID != uuid.Nil && !slices.ContainsFunc(m.db.state.members, func(mem domain.Member) bool {
			return mem.TripID == t.ID && mem.UserID == f.MemberID
		})
	})
	sort.Slice(all, func(i, j int) bool { return all[i].StartDate.After(all[j].StartDate) })
	total := int64(len(all))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], total, nil
}

func (m memTrips) UpdateItinerary(_ context.Context, id uuid.UUID, days []domain.ItineraryDay) (domain.Trip, error) {
	defer m.lock()()
	t, ok := m.db.state.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	t.Itinerary = days
	t.UpdatedAt = time.Now().UTC()
	m.db.state.trips[id] = t
	return t, nil
}

// ---- roster ----------------------------------------------------------------

type memRoster struct{ *memView }

func (m memRoster) AddHost(_ context.Context, mem domain.Member) (domain.Member, error) {
	defer m.lock()()
	mem.Role = domain.RoleHost
	mem.JoinedAt = time.Now().UTC()
	m.db.state.members = append(m.db.state.members, mem)
	return mem, nil
}

func (m memRoster) TryAddMember(_ context.Context, mem domain.Member, capacity int) (domain.Member, error) {
	defer m.lock()()
	t, ok := m.db.state.trips[mem.TripID]
	if !ok {
		return domain.Member{}, domain.ErrNotFound
	}
	if t.RequiredMembers != capacity || t.CurrentMembersCount >= t.RequiredMembers {
		return domain.Member{}, domain.ErrTripFull
	}
	for _, existing := range m.db.state.members {
		if existing.TripID == mem.TripID && existing.UserID == mem.UserID {
			return domain.Member{}, domain.ErrAlreadyMember
		}
	}
	t.CurrentMembersCount++
	m.db.state.trips[t.ID] = t
	mem.Role = domain.RoleMember
	mem.JoinedAt = time.Now().UTC()
	m.db.state.members = append(m.db.state.members, mem)
	return mem, nil
}

func (m memRoster) CurrentMembers(_ context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	defer m.lock()()
	var out []domain.Member
	for _, mem := range m.db.state.members {
		if mem.TripID == tripID {
			out = append(out, mem)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Role == domain.RoleHost && out[j].Role != domain.RoleHost
	})
	return out, nil
}

func (m memRoster) Role(_ context.Context, tripID, userID uuid.UUID) (domain.Role, error) {
	defer m.lock()()
	for _, mem := range m.db.state.members {
		if mem.TripID == tripID && mem.UserID == userID {
			return mem.Role, nil
		}
	}
	return "", domain.ErrNotFound
}

// ---- join requests ---------------------------------------------------------

type memRequests struct{ *memView }

func (m memRequests) InsertPendingIfAbsent(_ context.Context, req domain.JoinRequest) (domain.JoinRequest, error) {
	defer m.lock()()
	for _, r := range m.db.state.requests {
		if r.TripID == req.TripID && r.ApplicantID == req.ApplicantID && r.Status == domain.RequestPending {
			return domain.JoinRequest{}, domain.ErrConflict
		}
	}
	req.ID = uuid.New()
	req.Status = domain.RequestPending
	req.CreatedAt = time.Now().UTC()
	req.RespondedAt = nil
	m.db.state.requests = append(m.db.state.requests, req)
	return req, nil
}

func (m memRequests) TransitionIfPending(_ context.Context, id uuid.UUID, status domain.RequestStatus) (domain.JoinRequest, error) {
	defer m.lock()()
	for i, r := range m.db.state.requests {
		if r.ID != id {
			continue
		}
		if r.Status != domain.RequestPending {
			return domain.JoinRequest{}, domain.ErrConflict
		}
		now := time.Now().UTC()
		r.Status = status
		r.RespondedAt = &now
		m.db.state.requests[i] = r
		return r, nil
	}
	return domain.JoinRequest{}, domain.ErrNotFound
}

func (m memRequests) GetByID(_ context.Context, id uuid.UUID) (domain.JoinRequest, error) {
	defer m.lock()()
	for _, r := range m.db.state.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.JoinRequest{}, domain.ErrNotFound
}

func (m memRequests) LatestFor(_ context.Context, tripID, applicantID uuid.UUID) (domain.JoinRequest, error) {
	defer m.lock()()
	for i := len(m.db.state.requests) - 1; i >= 0; i-- {
		r := m.db.state.requests[i]
		if r.TripID == tripID && r.ApplicantID == applicantID {
			return r, nil
		}
	}
	return domain.JoinRequest{}, domain.ErrNotFound
}

func (m memRequests) ListPending(_ context.Context, tripID uuid.UUID) ([]domain.JoinRequest, error) {
	defer m.lock()()
	var out []domain.JoinRequest
	for _, r := range m.db.state.requests {
		if r.TripID == tripID && r.Status == domain.RequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// ---- messages --------------------------------------------------------------

type memMessages struct{ *memView }

func (m memMessages) Append(_ context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	defer m.lock()()
	if _, ok := m.db.state.trips[msg.TripID]; !ok {
		return domain.ChatMessage{}, domain.ErrNotFound
	}
	if msg.ClientMessageID != "" {
		for _, existing := range m.db.state.messages {
			if existing.TripID == msg.TripID && existing.AuthorID == msg.AuthorID &&
				existing.ClientMessageID == msg.ClientMessageID {
				return domain.ChatMessage{}, domain.ErrConflict
			}
		}
	}
	m.db.state.lastSeq[msg.TripID]++
	msg.ID = uuid.New()
	msg.Seq = m.db.state.lastSeq[msg.TripID]
	msg.CreatedAt = time.Now().UTC()
	m.db.state.messages = append(m.db.state.messages, msg)
	return msg, nil
}

func (m memMessages) FindByClientID(_ context.Context, tripID, authorID uuid.UUID, clientMessageID string) (domain.ChatMessage, error) {
	defer m.lock()()
	for _, existing := range m.db.state.messages {
		if existing.TripID == tripID && existing.AuthorID == authorID && existing.ClientMessageID == clientMessageID {
			return existing, nil
		}
	}
	return domain.ChatMessage{}, domain.ErrNotFound
}

func (m memMessages) FetchSince(_ context.Context, tripID uuid.UUID, w domain.FetchWindow) ([]domain.ChatMessage, error) {
	defer m.lock()()
	var out []domain.ChatMessage
	for _, msg := range m.db.state.messages {
		if msg.TripID == tripID && msg.Seq > w.AfterSeq {
			out = append(out, msg)
			if len(out) == w.Limit {
				break
			}
		}
	}
	return out, nil
}
