package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/tripmates/backend/internal/domain"
)

// errorMapping ties a domain error to its HTTP status and error code.
// Specific errors come before the kinds they wrap so the most precise code wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrTripFull, http.StatusConflict, "trip_full"},
	{domain.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{domain.ErrPendingRequestExists, http.StatusConflict, "pending_request_exists"},
	{domain.ErrRequestNotPending, http.StatusConflict, "request_not_pending"},
	{domain.ErrAgeRestriction, http.StatusUnprocessableEntity, "age_restriction"},
	{domain.ErrNotHost, http.StatusForbidden, "not_host"},
	{domain.ErrNotMember, http.StatusForbidden, "not_member"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrAuthorization, http.StatusForbidden, "forbidden"},
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an ErrorResponse.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeServiceError maps err to a status and code. Anything unrecognised is
// logged and reported as a 500 without leaking its text.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", unwrapMessage(err))
		return
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, unwrapMessage(err))
			return
		}
	}

	s.log.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// kindPrefixes are the texts of the error kinds and the handler's own marker.
var kindPrefixes = []string{
	domain.ErrValidation.Error() + ": ",
	domain.ErrConflict.Error() + ": ",
	domain.ErrAuthorization.Error() + ": ",
	errBadRequest.Error() + ": ",
}

// unwrapMessage extracts the human-readable part from a wrapped error.
// e.g. "service.TripService.Create: validation error: group_name is required"
// becomes "group_name is required".
func unwrapMessage(err error) string {
	msg := err.Error()
	// Drop "pkg.Type.Method: " wrap prefixes.
	for {
		head, rest, ok := strings.Cut(msg, ": ")
		if !ok || strings.Count(head, ".") < 2 || strings.ContainsAny(head, " \t") {
			break
		}
		msg = rest
	}
	for _, prefix := range kindPrefixes {
		if rest, ok := strings.CutPrefix(msg, prefix); ok {
			return rest
		}
	}
	return msg
}
