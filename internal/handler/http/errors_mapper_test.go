package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MKhiriev/bookmark-sync/internal/app"
	"github.com/MKhiriev/bookmark-sync/internal/service"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestResponseFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errorResponse
	}{
		{"wrapped invalid data", fmt.Errorf("%w: bad", service.ErrInvalidDataProvided), errorResponse{http.StatusBadRequest, app.MsgInvalidDataProvided}},
		{"invalid cursor", store.ErrInvalidCursor, errorResponse{http.StatusBadRequest, app.MsgInvalidCursor}},
		{"token", service.ErrTokenIsExpiredOrInvalid, errorResponse{http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid}},
		{"revoked", store.ErrAccountRevoked, errorResponse{http.StatusForbidden, app.MsgAccountRevoked}},
		{"conflict", store.ErrLoginAlreadyExists, errorResponse{http.StatusConflict, app.MsgLoginAlreadyExists}},
		{"unknown falls back", errors.New("boom"), loginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, responseFromError(tt.err, loginFailed))
		})
	}
}
