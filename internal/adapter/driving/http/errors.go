package httphandler

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/lovejar/internal/application"
	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// errorStatus pairs a sentinel with the status and client message it maps to.
type errorStatus struct {
	err     error
	status  int
	message string
}

// errorTable is checked in order; the first errors.Is match wins.
var errorTable = []errorStatus{
	{driven.ErrAccountNotFound, http.StatusNotFound, "account not found"},
	{model.ErrNotLinked, http.StatusNotFound, "account is not linked to a partner"},
	{driven.ErrJarItemNotFound, http.StatusNotFound, "jar item not found"},
	{model.ErrSelfLink, http.StatusBadRequest, "cannot link an account to itself"},
	{application.ErrInvalidDate, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD"},
	{application.ErrInvalidInput, http.StatusBadRequest, "invalid input"},
	{model.ErrAlreadyLinkedElsewhere, http.StatusConflict, "account is already linked to someone else"},
	{driven.ErrHandleTaken, http.StatusConflict, "handle already taken"},
	{application.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{driven.ErrInvalidIdentityToken, http.StatusUnauthorized, "invalid identity token"},
	{application.ErrFederationUnavailable, http.StatusServiceUnavailable, "federated sign-in is not configured"},
	{application.ErrGeneratorUnavailable, http.StatusServiceUnavailable, "idea generator is not configured"},
	{application.ErrRateLimited, http.StatusTooManyRequests, "too many requests, try again shortly"},
	{application.ErrGeneratorFailed, http.StatusBadGateway, "idea generator failed"},
}

// statusFor maps err onto a status code and a client-safe message.
func statusFor(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.message
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeServiceError writes the mapped error response and logs anything that
// maps to a 5xx.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "error", err)
	}
	writeError(w, status, message)
}
