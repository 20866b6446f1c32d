package httpadapter

import (
	"net/http"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrContextExpired):
		return http.StatusGone
	case domain.IsKind(err, domain.ErrInvalidCriteria):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrMissingExplanation):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(w, status, errorBody(message))
}
