package httpapi

import (
	"errors"
	"net/http"

	"github.com/aminus007/fintrack/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not_found", "not_found")
}

// svcErr maps service-layer sentinel errors onto HTTP statuses. Anything
// unrecognized becomes a 500 without leaking internals.
func (s *Server) svcErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrForbidden):
		writeErr(w, http.StatusForbidden, err.Error(), "forbidden")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, errs.ErrAccountInUse):
		writeErr(w, http.StatusConflict, err.Error(), "account_in_use")
	case errors.Is(err, errs.ErrInsufficientFunds):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_funds")
	case errors.Is(err, errs.ErrUnprocessable):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "unprocessable")
	case errors.Is(err, errs.ErrImmutable):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "immutable")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "validation_error")
	default:
		s.log.Error("internal error", "err", err)
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
	}
}
