package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by repo and service functions wraps
// exactly one of these so callers can decide how to react with errors.Is.

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a state-machine rule rejects a mutation:
// a duplicate pending request, a transition out of a non-pending state, or a
// lost race for the last free slot. Conflicts are expected under concurrent
// load; callers must re-read state before retrying.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrAuthorization is returned when the acting user is not allowed to perform
// the operation on the trip (not the host, not a member).
// Handlers should map this to HTTP 403.
var ErrAuthorization = errors.New("not authorized")

// Specific failures. Each wraps one kind above.
var (
	ErrAlreadyMember        = fmt.Errorf("%w: already a member of this trip", ErrConflict)
	ErrPendingRequestExists = fmt.Errorf("%w: a pending request already exists", ErrConflict)
	ErrRequestNotPending    = fmt.Errorf("%w: request is not pending", ErrConflict)
	ErrTripFull             = fmt.Errorf("%w: trip is full", ErrConflict)
	ErrAgeRestriction       = fmt.Errorf("%w: applicant age is outside the trip's age range", ErrValidation)
	ErrNotHost              = fmt.Errorf("%w: only the trip host may do this", ErrAuthorization)
	ErrNotMember            = fmt.Errorf("%w: only trip members may do this", ErrAuthorization)
)
