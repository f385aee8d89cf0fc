package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/bookmark-sync/internal/app"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/utils"
	"github.com/MKhiriev/bookmark-sync/models"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Str("func", "*Handler.signup").Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	registeredUser, err := h.services.AuthService.RegisterUser(ctx, user)
	if err != nil {
		writeError(w, r, "*Handler.signup", err, registrationFailed)
		return
	}

	h.writeToken(w, r, registeredUser)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Str("func", "*Handler.login").Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	foundUser, err := h.services.AuthService.Login(ctx, user)
	if err != nil {
		writeError(w, r, "*Handler.login", err, loginFailed)
		return
	}

	log.Debug().Int64("id", foundUser.UserID).Msg("user successfully logged in")

	h.writeToken(w, r, foundUser)
}

// writeToken issues a token for user and returns it in the Authorization
// response header.
func (h *Handler) writeToken(w http.ResponseWriter, r *http.Request, user models.User) {
	token, err := h.services.AuthService.CreateToken(r.Context(), user)
	if err != nil {
		writeError(w, r, "*Handler.writeToken", err, internalServerError)
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Err(ErrNoUserIDInContext).Str("func", "*Handler.deleteAccount").Send()
		http.Error(w, app.MsgNoTokenProvided, http.StatusUnauthorized)
		return
	}

	if err := h.services.AuthService.RevokeAccount(ctx, userID); err != nil {
		writeError(w, r, "*Handler.deleteAccount", err, internalServerError)
		return
	}

	log.Info().Int64("id", userID).Msg("account revoked")
	w.WriteHeader(http.StatusNoContent)
}
