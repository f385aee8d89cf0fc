package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/bookmark-sync/internal/app"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/utils"
	"github.com/MKhiriev/bookmark-sync/models"
)

// syncBookmarks stores the submitted changes and answers with the delta
// since the request cursor.
func (h *Handler) syncBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Err(ErrNoUserIDInContext).Str("func", "*Handler.syncBookmarks").Send()
		http.Error(w, app.MsgNoTokenProvided, http.StatusUnauthorized)
		return
	}

	var req models.BookmarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.syncBookmarks").Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	resp, err := h.services.SyncService.SyncBookmarks(ctx, userID, req)
	if err != nil {
		writeError(w, r, "*Handler.syncBookmarks", err, internalServerError)
		return
	}

	if _, err = utils.WriteJSON(w, resp, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.syncBookmarks").Msg("failed to write response")
	}
}
