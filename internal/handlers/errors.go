package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"vocabduel/internal/engine"
	"vocabduel/internal/repository"
	"vocabduel/internal/validation"
)

// ErrorResponse is the body of every non-2xx JSON reply
type ErrorResponse struct {
	Kind    string                       `json:"kind"`
	Message string                       `json:"message"`
	Fields  []validation.ValidationError `json:"fields,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, kind, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		slog.Error(logMsg, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Kind: kind, Message: userMsg})
}

// respondWithDomainError maps rejected operations onto HTTP statuses.
// Anything unclassified is logged and reported as a 500.
func respondWithDomainError(w http.ResponseWriter, err error) {
	status, kind := classify(err)

	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Kind: KindInvalidRequest, Message: ErrInvalidRequest, Fields: fieldErrs})
	case status == http.StatusInternalServerError:
		respondWithError(w, status, kind, ErrInternalServerError, "Request failed", err)
	default:
		writeJSON(w, status, ErrorResponse{Kind: kind, Message: err.Error()})
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden, engine.ErrorKind(err)
	case errors.Is(err, engine.ErrInvalidState):
		return http.StatusConflict, engine.ErrorKind(err)
	case errors.Is(err, engine.ErrPreconditionFailed):
		return http.StatusUnprocessableEntity, engine.ErrorKind(err)
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, engine.ErrorKind(err)
	case errors.Is(err, repository.ErrVersionConflict):
		return http.StatusServiceUnavailable, KindBusy
	}
	return http.StatusInternalServerError, KindInternal
}
