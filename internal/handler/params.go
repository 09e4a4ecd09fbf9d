package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripmates/backend/internal/auth"
	"github.com/pkordes/tripmates/backend/internal/domain"
)

// errBadRequest marks request-shape problems caught before the service layer.
var errBadRequest = errors.New("bad request")

// pathUUID binds a {name} path segment as a UUID.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, fmt.Errorf("%w: invalid format for parameter %s: %w", errBadRequest, name, err)
	}
	return id, nil
}

// queryParam binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer so absence stays nil.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("%w: invalid format for parameter %s: %w", errBadRequest, name, err)
	}
	return nil
}

// decodeJSON reads the request body into dest.
func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is required", errBadRequest)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: can't decode JSON body: %w", errBadRequest, err)
	}
	return nil
}

// identity returns the caller set by the authentication middleware.
func identity(r *http.Request) (domain.Identity, bool) {
	return auth.IdentityFrom(r.Context())
}
