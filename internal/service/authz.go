package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
	"github.com/pkordes/tripmates/backend/internal/repo"
)

// Host and member checks live here so every operation applies them the same way.

// requireHost returns domain.ErrNotHost unless userID is the trip's host.
func requireHost(trip domain.Trip, userID uuid.UUID) error {
	if trip.HostID != userID {
		return domain.ErrNotHost
	}
	return nil
}

// roleOf returns the user's roster role, or "" if they are not on the roster.
func roleOf(ctx context.Context, roster repo.RosterRepo, tripID, userID uuid.UUID) (domain.Role, error) {
	role, err := roster.Role(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return role, nil
}

// requireMember returns domain.ErrNotMember unless userID is the host or a
// member of the trip.
func requireMember(ctx context.Context, roster repo.RosterRepo, tripID, userID uuid.UUID) error {
	role, err := roleOf(ctx, roster, tripID, userID)
	if err != nil {
		return err
	}
	if role == "" {
		return domain.ErrNotMember
	}
	return nil
}
