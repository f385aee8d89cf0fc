package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/bookmark-sync/internal/app"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/service"
	"github.com/MKhiriev/bookmark-sync/internal/store"
)

// errorResponse is the status and body written for a service error. The
// body is one of the app messages the client matches on.
type errorResponse struct {
	status  int
	message string
}

var (
	internalServerError = errorResponse{http.StatusInternalServerError, app.MsgInternalServerError}
	registrationFailed  = errorResponse{http.StatusBadGateway, app.MsgRegistrationFailed}
	loginFailed         = errorResponse{http.StatusBadGateway, app.MsgLoginFailed}
)

var errorResponseMap = map[error]errorResponse{
	service.ErrInvalidDataProvided: {http.StatusBadRequest, app.MsgInvalidDataProvided},
	store.ErrInvalidCursor:         {http.StatusBadRequest, app.MsgInvalidCursor},

	service.ErrWrongPassword:           {http.StatusUnauthorized, app.MsgInvalidLoginPassword},
	store.ErrNoUserWasFound:            {http.StatusUnauthorized, app.MsgInvalidLoginPassword},
	service.ErrTokenIsExpiredOrInvalid: {http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid},

	store.ErrAccountRevoked: {http.StatusForbidden, app.MsgAccountRevoked},

	store.ErrLoginAlreadyExists: {http.StatusConflict, app.MsgLoginAlreadyExists},
}

// responseFromError returns the response registered for the first sentinel
// err wraps, or fallback.
func responseFromError(err error, fallback errorResponse) errorResponse {
	for target, resp := range errorResponseMap {
		if errors.Is(err, target) {
			return resp
		}
	}
	return fallback
}

// writeError logs err and answers with its mapped status and message.
func writeError(w http.ResponseWriter, r *http.Request, funcName string, err error, fallback errorResponse) {
	resp := responseFromError(err, fallback)

	log := logger.FromRequest(r)
	event := log.Warn()
	if resp.status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("func", funcName).Int("status", resp.status).Msg(resp.message)

	http.Error(w, resp.message, resp.status)
}
