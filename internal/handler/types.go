package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types for the JSON API. Field names and shapes follow api/openapi.yaml.

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail under "error".
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// OKResponse acknowledges approve and reject.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ItineraryDay is one day of a trip plan.
type ItineraryDay struct {
	Day         int    `json:"day"`
	Description string `json:"description"`
}

// CreateTripRequest is the body of POST /trips. Omitted age bounds and group
// size take the form defaults.
type CreateTripRequest struct {
	GroupName       string             `json:"group_name"`
	DestinationID   string             `json:"destination_id"`
	Description     *string            `json:"description,omitempty"`
	StartDate       openapi_types.Date `json:"start_date"`
	EndDate         openapi_types.Date `json:"end_date"`
	MinAge          *int               `json:"min_age,omitempty"`
	MaxAge          *int               `json:"max_age,omitempty"`
	RequiredMembers *int               `json:"required_members,omitempty"`
	Itinerary       []ItineraryDay     `json:"itinerary"`
}

// UpdateItineraryRequest is the body of PUT /trips/{tripId}/itinerary.
type UpdateItineraryRequest struct {
	Itinerary []ItineraryDay `json:"itinerary"`
}

// Trip is the public view of a trip.
type Trip struct {
	ID                  openapi_types.UUID `json:"id"`
	HostID              openapi_types.UUID `json:"host_id"`
	GroupName           string             `json:"group_name"`
	DestinationID       string             `json:"destination_id"`
	Description         string             `json:"description"`
	StartDate           openapi_types.Date `json:"start_date"`
	EndDate             openapi_types.Date `json:"end_date"`
	MinAge              int                `json:"min_age"`
	MaxAge              int                `json:"max_age"`
	RequiredMembers     int                `json:"required_members"`
	CurrentMembersCount int                `json:"current_members_count"`
	IsFull              bool               `json:"is_full"`
	Itinerary           []ItineraryDay     `json:"itinerary"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripList is returned by GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// JoinRequest is a ledger entry.
type JoinRequest struct {
	ID            openapi_types.UUID `json:"id"`
	TripID        openapi_types.UUID `json:"trip_id"`
	ApplicantID   openapi_types.UUID `json:"applicant_id"`
	ApplicantName string             `json:"applicant_name"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	RespondedAt   *time.Time         `json:"responded_at,omitempty"`
}

// JoinStatusResponse is returned by GET /trips/{tripId}/join-status.
type JoinStatusResponse struct {
	Status string `json:"status"`
}

// Member is one roster row.
type Member struct {
	UserID      openapi_types.UUID `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Role        string             `json:"role"`
	JoinedAt    time.Time          `json:"joined_at"`
}

// PostMessageRequest is the body of POST /trips/{tripId}/messages.
type PostMessageRequest struct {
	Text            string  `json:"text"`
	ClientMessageID *string `json:"client_message_id,omitempty"`
}

// ChatMessage is one chat log entry.
type ChatMessage struct {
	ID              openapi_types.UUID `json:"id"`
	TripID          openapi_types.UUID `json:"trip_id"`
	Seq             int64              `json:"seq"`
	AuthorID        openapi_types.UUID `json:"author_id"`
	AuthorName      string             `json:"author_name"`
	Text            string             `json:"text"`
	ClientMessageID string             `json:"client_message_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// MessagePage is returned by GET /trips/{tripId}/messages. LastSeq is the
// cursor for the next poll: the seq of the last message returned, or the
// request's after_seq when nothing new arrived.
type MessagePage struct {
	Data    []ChatMessage `json:"data"`
	LastSeq int64         `json:"last_seq"`
}

// TranscriptRow is one row of GET /trips/{tripId}/messages/export.
type TranscriptRow struct {
	Seq        int64     `json:"seq"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
