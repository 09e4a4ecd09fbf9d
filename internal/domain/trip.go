// Package domain contains the core data types for the trip membership service.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Itinerary limits. A trip plan covers at least one and at most seven days.
const (
	MinItineraryDays = 1
	MaxItineraryDays = 7
)

// MinRequiredMembers is the smallest group a trip may ask for: the host plus one.
const MinRequiredMembers = 2

// Trip is a group trip organised by a single host.
// RequiredMembers is the roster capacity and counts the host, so a freshly
// created trip has CurrentMembersCount == 1.
type Trip struct {
	ID                  uuid.UUID
	HostID              uuid.UUID
	GroupName           string
	DestinationID       string // opaque reference into the destination catalog
	Description         string
	StartDate           time.Time
	EndDate             time.Time
	MinAge              int
	MaxAge              int
	RequiredMembers     int
	CurrentMembersCount int
	Itinerary           []ItineraryDay
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ItineraryDay is one entry of a trip plan. Days are numbered from 1.
type ItineraryDay struct {
	Day         int    `json:"day"`
	Description string `json:"description"`
}

// TripFilter narrows a trip listing. Zero fields match every trip.
type TripFilter struct {
	DestinationID string
	// MemberID keeps trips whose roster holds this user, as host or member.
	MemberID uuid.UUID
}

// IsFull reports whether the roster has no free slot left.
func (t Trip) IsFull() bool {
	return t.CurrentMembersCount >= t.RequiredMembers
}

// AcceptsAge reports whether age falls inside [MinAge, MaxAge].
func (t Trip) AcceptsAge(age int) bool {
	return age >= t.MinAge && age <= t.MaxAge
}
