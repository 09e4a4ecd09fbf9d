package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the state of a JoinRequest.
// pending is the only non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// JoinRequest is an applicant's petition to join a trip.
// Rows are never deleted; a rejected applicant may apply again, which creates
// a new row.
type JoinRequest struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	ApplicantID   uuid.UUID
	ApplicantName string
	Status        RequestStatus
	CreatedAt     time.Time
	RespondedAt   *time.Time // nil while pending
}

// JoinStatus is what a user sees about their relationship to a trip.
// Roster membership takes precedence over any ledger entry.
type JoinStatus string

const (
	JoinStatusNone     JoinStatus = "none"
	JoinStatusPending  JoinStatus = "pending"
	JoinStatusAccepted JoinStatus = "accepted"
	JoinStatusRejected JoinStatus = "rejected"
	JoinStatusMember   JoinStatus = "member"
	JoinStatusHost     JoinStatus = "host"
)
