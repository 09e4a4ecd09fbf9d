package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// RequestToJoin handles POST /trips/{tripId}/join-request.
// The caller's age from the token is checked against the trip's range.
func (s *Server) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	applicant, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	req, err := s.membership.RequestToJoin(r.Context(), tripID, applicant)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, joinRequestToResponse(req))
}

// ApproveRequest handles POST /trip-requests/{requestId}/approve. Host only.
func (s *Server) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	s.resolveRequest(w, r, s.membership.Approve)
}

// RejectRequest handles POST /trip-requests/{requestId}/reject. Host only.
func (s *Server) RejectRequest(w http.ResponseWriter, r *http.Request) {
	s.resolveRequest(w, r, s.membership.Reject)
}

// resolveRequest runs an approve or reject transition and answers {"ok":true}.
func (s *Server) resolveRequest(w http.ResponseWriter, r *http.Request,
	resolve func(context.Context, uuid.UUID, domain.Identity) (domain.JoinRequest, error),
) {
	actor, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	requestID, err := pathUUID(r, "requestId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if _, err := resolve(r.Context(), requestID, actor); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// GetJoinStatus handles GET /trips/{tripId}/join-status for the caller.
func (s *Server) GetJoinStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	status, err := s.membership.Status(r.Context(), tripID, caller.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, JoinStatusResponse{Status: string(status)})
}

// ListPendingRequests handles GET /trips/{tripId}/pending-requests. Host only.
func (s *Server) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	reqs, err := s.membership.PendingRequests(r.Context(), tripID, actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]JoinRequest, len(reqs))
	for i, jr := range reqs {
		out[i] = joinRequestToResponse(jr)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListMembers handles GET /trips/{tripId}/members: host first, then members
// in join order.
func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "tripId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	members, err := s.membership.Members(r.Context(), tripID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]Member, len(members))
	for i, m := range members {
		out[i] = Member{UserID: m.UserID, DisplayName: m.DisplayName, Role: string(m.Role), JoinedAt: m.JoinedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

func joinRequestToResponse(jr domain.JoinRequest) JoinRequest {
	return JoinRequest{
		ID:            jr.ID,
		TripID:        jr.TripID,
		ApplicantID:   jr.ApplicantID,
		ApplicantName: jr.ApplicantName,
		Status:        string(jr.Status),
		CreatedAt:     jr.CreatedAt,
		RespondedAt:   jr.RespondedAt,
	}
}
