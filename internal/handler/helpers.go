package handler

import (
	"errors"
	"net/http"

	"blenderforge/internal/domain"
	"blenderforge/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	// Field-level validation failures carry the whole error map so the
	// editor can mark every bad field in one round trip.
	var fieldErrs domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		extras := map[string]interface{}{"errors": fieldErrs}
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "validation failed", extras)
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUpload):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409
// If the error is a ConflictError, it calls fetchFn to retrieve the existing resource
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func() (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		existing, fetchErr := fetchFn()
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}

		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	handleError(w, err)
}

// requireUser extracts the authenticated user ID from the request context,
// responding 401 when the request is anonymous.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}
