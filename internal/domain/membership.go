package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's position on a trip roster.
type Role string

const (
	RoleHost   Role = "host"
	RoleMember Role = "member"
)

// Member is one row of a trip roster.
// DisplayName is copied from the identity token at join time and is only used
// for presentation.
type Member struct {
	TripID      uuid.UUID
	UserID      uuid.UUID
	Role        Role
	DisplayName string
	JoinedAt    time.Time
}

// Identity is the authenticated caller as supplied by the identity provider.
type Identity struct {
	UserID      uuid.UUID
	DisplayName string
	Age         int
}
