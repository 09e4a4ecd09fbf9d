package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/repo"
)

// MembershipService coordinates join-requests and the trip roster.
// It owns no storage: every decision is made by the ledger's and roster's
// conditional writes, and multi-step transitions run in one transaction so a
// failure leaves both stores untouched.
type MembershipService struct {
	tx  repo.Transactor
	log *slog.Logger
}

// NewMembershipService constructs a MembershipService backed by the provided Transactor.
func NewMembershipService(tx repo.Transactor, log *slog.Logger) *MembershipService {
	return &MembershipService{tx: tx, log: log}
}

// RequestToJoin files a pending join-request for applicant.
//
// Checks, in order: the trip exists (domain.ErrNotFound), the applicant is not
// already on the roster (domain.ErrAlreadyMember), has no pending request
// (domain.ErrPendingRequestExists), is within the age range
// (domain.ErrAgeRestriction), and the trip has a free slot (domain.ErrTripFull).
// The ledger's conditional insert is the final guard against a concurrent
// duplicate, so retrying a submission is safe.
func (s *MembershipService) RequestToJoin(ctx context.Context, tripID uuid.UUID, applicant domain.Identity) (domain.JoinRequest, error) {
	var created domain.JoinRequest
	err := s.tx.WithinTx(ctx, func(st repo.Stores) error {
		trip, err := st.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}

		role, err := roleOf(ctx, st.Roster, tripID, applicant.UserID)
		if err != nil {
			return err
		}
		if role != "" || trip.HostID == applicant.UserID {
			return domain.ErrAlreadyMember
		}

		latest, err := st.Requests.LatestFor(ctx, tripID, applicant.UserID)
		switch {
		case err == nil && latest.Status == domain.RequestPending:
			return domain.ErrPendingRequestExists
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if !trip.AcceptsAge(applicant.Age) {
			return domain.ErrAgeRestriction
		}
		if trip.IsFull() {
			return domain.ErrTripFull
		}

		jr, err := st.Requests.InsertPendingIfAbsent(ctx, domain.JoinRequest{
			TripID:        tripID,
			ApplicantID:   applicant.UserID,
			ApplicantName: applicant.DisplayName,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrPendingRequestExists
			}
			return err
		}
		created = jr
		return nil
	})
	if err != nil {
		return domain.JoinRequest{}, fmt.Errorf("service.MembershipService.RequestToJoin: %w", err)
	}

	s.log.InfoContext(ctx, "join request created",
		"trip_id", tripID, "request_id", created.ID, "user_id", applicant.UserID)
	return created, nil
}

// Approve accepts a pending request and adds the applicant to the roster.
//
// The ledger transition and the roster insert commit together or not at all.
// Returns domain.ErrNotFound, domain.ErrNotHost, domain.ErrRequestNotPending
// (already resolved, possibly by a concurrent call), or domain.ErrTripFull
// (another approval took the last slot; the request stays pending).
func (s *MembershipService) Approve(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error) {
	var accepted domain.JoinRequest
	err := s.tx.WithinTx(ctx, func(st repo.Stores) error {
		req, trip, err := s.loadForHost(ctx, st, requestID, actor)
		if err != nil {
			return err
		}

		jr, err := st.Requests.TransitionIfPending(ctx, req.ID, domain.RequestAccepted)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrRequestNotPending
			}
			return err
		}

		if _, err := st.Roster.TryAddMember(ctx, domain.Member{
			TripID:      trip.ID,
			UserID:      jr.ApplicantID,
			Role:        domain.RoleMember,
			DisplayName: jr.ApplicantName,
		}, trip.RequiredMembers); err != nil {
			return err
		}

		accepted = jr
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrTripFull) {
			s.log.WarnContext(ctx, "join request approval lost capacity race",
				"request_id", requestID, "user_id", actor.UserID)
		}
		return domain.JoinRequest{}, fmt.Errorf("service.MembershipService.Approve: %w", err)
	}

	s.log.InfoContext(ctx, "join request approved",
		"trip_id", accepted.TripID, "request_id", accepted.ID, "user_id", accepted.ApplicantID)
	return accepted, nil
}

// Reject declines a pending request. Rejecting twice returns
// domain.ErrRequestNotPending so double submissions surface to the caller.
func (s *MembershipService) Reject(ctx context.Context, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, error) {
	var rejected domain.JoinRequest
	err := s.tx.WithinTx(ctx, func(st repo.Stores) error {
		req, _, err := s.loadForHost(ctx, st, requestID, actor)
		if err != nil {
			return err
		}

		jr, err := st.Requests.TransitionIfPending(ctx, req.ID, domain.RequestRejected)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrRequestNotPending
			}
			return err
		}
		rejected = jr
		return nil
	})
	if err != nil {
		return domain.JoinRequest{}, fmt.Errorf("service.MembershipService.Reject: %w", err)
	}

	s.log.InfoContext(ctx, "join request rejected",
		"trip_id", rejected.TripID, "request_id", rejected.ID, "user_id", rejected.ApplicantID)
	return rejected, nil
}

// Status reports the user's relationship to the trip. Roster membership wins
// over the ledger: an accepted applicant reads as member.
func (s *MembershipService) Status(ctx context.Context, tripID, userID uuid.UUID) (domain.JoinStatus, error) {
	st := s.tx.Stores()

	trip, err := st.Trips.GetByID(ctx, tripID)
	if err != nil {
		return "", fmt.Errorf("service.MembershipService.Status: %w", err)
	}
	if trip.HostID == userID {
		return domain.JoinStatusHost, nil
	}

	role, err := roleOf(ctx, st.Roster, tripID, userID)
	if err != nil {
		return "", fmt.Errorf("service.MembershipService.Status: %w", err)
	}
	switch role {
	case domain.RoleHost:
		return domain.JoinStatusHost, nil
	case domain.RoleMember:
		return domain.JoinStatusMember, nil
	}

	latest, err := st.Requests.LatestFor(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.JoinStatusNone, nil
		}
		return "", fmt.Errorf("service.MembershipService.Status: %w", err)
	}
	return domain.JoinStatus(latest.Status), nil
}

// PendingRequests lists the trip's pending requests, oldest first. Host only.
// Always returns a non-nil slice so callers can safely range over it.
func (s *MembershipService) PendingRequests(ctx context.Context, tripID uuid.UUID, actor domain.Identity) ([]domain.JoinRequest, error) {
	st := s.tx.Stores()

	trip, err := st.Trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MembershipService.PendingRequests: %w", err)
	}
	if err := requireHost(trip, actor.UserID); err != nil {
		return nil, fmt.Errorf("service.MembershipService.PendingRequests: %w", err)
	}

	reqs, err := st.Requests.ListPending(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MembershipService.PendingRequests: %w", err)
	}
	if reqs == nil {
		return []domain.JoinRequest{}, nil
	}
	return reqs, nil
}

// Members returns the roster: host first, then members in join order.
func (s *MembershipService) Members(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	st := s.tx.Stores()

	if _, err := st.Trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.MembershipService.Members: %w", err)
	}
	members, err := st.Roster.CurrentMembers(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MembershipService.Members: %w", err)
	}
	if members == nil {
		return []domain.Member{}, nil
	}
	return members, nil
}

// loadForHost fetches a request and its trip and checks that actor hosts it.
func (s *MembershipService) loadForHost(ctx context.Context, st repo.Stores, requestID uuid.UUID, actor domain.Identity) (domain.JoinRequest, domain.Trip, error) {
	req, err := st.Requests.GetByID(ctx, requestID)
	if err != nil {
		return domain.JoinRequest{}, domain.Trip{}, err
	}
	trip, err := st.Trips.GetByID(ctx, req.TripID)
	if err != nil {
		return domain.JoinRequest{}, domain.Trip{}, err
	}
	if err := requireHost(trip, actor.UserID); err != nil {
		return domain.JoinRequest{}, domain.Trip{}, err
	}
	return req, trip, nil
}
