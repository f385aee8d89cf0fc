package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/utils"
	"github.com/MKhiriev/bookmark-sync/models"
)

const (
	signupPath        = "/api/auth/signup"
	loginPath         = "/api/auth/login"
	accountPath       = "/api/auth/account"
	syncBookmarksPath = "/api/sync/bookmarks"
	versionPath       = "/api/version/"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs the HTTP implementation of [ServerAdapter].
// The base URL comes from adapterCfg.HTTPAddress; a bare host:port gets the
// http scheme. Returns an error if the address is empty or not a URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Signup implements [ServerAdapter]. POST /api/auth/signup.
func (h *httpServerAdapter) Signup(ctx context.Context, user models.User) (models.User, error) {
	return h.authenticate(ctx, signupPath, user)
}

// Login implements [ServerAdapter]. POST /api/auth/login.
func (h *httpServerAdapter) Login(ctx context.Context, user models.User) (models.User, error) {
	return h.authenticate(ctx, loginPath, user)
}

// authenticate posts the credentials, stores the bearer token from the
// Authorization response header and reads the user id from its subject.
func (h *httpServerAdapter) authenticate(ctx context.Context, path string, user models.User) (models.User, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post(path)
	if err != nil {
		h.logger.Err(err).Str("func", "httpServerAdapter.authenticate").Str("path", path).Msg("request failed")
		return models.User{}, fmt.Errorf("%s request: %w", path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.User{}, fmt.Errorf("%s parse bearer token: %w", path, err)
	}
	userID, err := utils.ParseUserIDFromJWT(token)
	if err != nil {
		return models.User{}, fmt.Errorf("%s parse user id: %w", path, err)
	}

	h.SetToken(token)
	return models.User{UserID: userID, Login: user.Login}, nil
}

// DeleteAccount implements [ServerAdapter]. DELETE /api/auth/account.
func (h *httpServerAdapter) DeleteAccount(ctx context.Context) error {
	resp, err := h.authedRequest(ctx).Delete(accountPath)
	if err != nil {
		return fmt.Errorf("delete account request: %w", err)
	}

	return mapHTTPError(resp)
}

// SyncBookmarks implements [ServerAdapter]. PATCH /api/sync/bookmarks.
func (h *httpServerAdapter) SyncBookmarks(ctx context.Context, req models.BookmarksRequest) (models.BookmarksResponse, error) {
	if req.Updates == nil {
		req.Updates = []models.Syncable{}
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Patch(syncBookmarksPath)
	if err != nil {
		h.logger.Err(err).Str("func", "httpServerAdapter.SyncBookmarks").Int("updates", len(req.Updates)).Msg("request failed")
		return models.BookmarksResponse{}, fmt.Errorf("sync bookmarks request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.BookmarksResponse{}, err
	}

	var out models.BookmarksResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.BookmarksResponse{}, fmt.Errorf("decode sync bookmarks response: %w", err)
	}

	h.logger.Debug().
		Str("func", "httpServerAdapter.SyncBookmarks").
		Int("sent", len(req.Updates)).
		Int("received", len(out.Entries)).
		Str("last_modified", out.LastModified).
		Msg("bookmarks synced")

	return out, nil
}

// ServerVersion implements [ServerAdapter]. GET /api/version/.
func (h *httpServerAdapter) ServerVersion(ctx context.Context) (string, error) {
	resp, err := h.client.R().SetContext(ctx).Get(versionPath)
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(string(resp.Body())), nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
