package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/mock"
	"github.com/MKhiriev/bookmark-sync/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// testServices bundles the service mocks behind a Handler.
type testServices struct {
	auth    *mock.MockAuthService
	sync    *mock.MockSyncService
	appInfo *mock.MockAppInfoService
}

func newMockedHandler(t *testing.T) (*Handler, testServices) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := testServices{
		auth:    mock.NewMockAuthService(ctrl),
		sync:    mock.NewMockSyncService(ctrl),
		appInfo: mock.NewMockAppInfoService(ctrl),
	}

	h := NewHandler(&service.Services{
		AuthService:    m.auth,
		SyncService:    m.sync,
		AppInfoService: m.appInfo,
	}, logger.Nop())
	return h, m
}

// ─────────────────────────────────────────────
// NewHandler
// ─────────────────────────────────────────────

func TestNewHandler_StoresDependencies(t *testing.T) {
	svc := &service.Services{}
	log := logger.Nop()

	h := NewHandler(svc, log)

	require.NotNil(t, h)
	assert.Equal(t, svc, h.services)
	assert.Equal(t, log, h.logger)
}

// ─────────────────────────────────────────────
// Init: route registration
// ─────────────────────────────────────────────

func TestInit_RegistersAllRoutes(t *testing.T) {
	h, m := newMockedHandler(t)
	m.appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("test-version").AnyTimes()
	router := h.Init()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/signup"},
		{http.MethodPost, "/api/auth/login"},
		{http.MethodGet, "/api/version/"},
		// protected routes answer 401 without a token, which still proves they exist
		{http.MethodDelete, "/api/auth/account"},
		{http.MethodPatch, "/api/sync/bookmarks"},
	}

	for _, tc := range routes {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.NotEqual(t, http.StatusNotFound, rec.Code, "route not found: %s %s", tc.method, tc.path)
			assert.NotEqual(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestInit_ProtectedRoutesRequireToken(t *testing.T) {
	h, _ := newMockedHandler(t)
	router := h.Init()

	req := httptest.NewRequest(http.MethodPatch, "/api/sync/bookmarks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInit_UnknownRouteReturns404(t *testing.T) {
	h, _ := newMockedHandler(t)
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInit_WrongMethodReturns404(t *testing.T) {
	h, _ := newMockedHandler(t)
	router := h.Init()

	// only GET is registered for the version route
	req := httptest.NewRequest(http.MethodPost, "/api/version/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInit_SetsTraceIDHeader(t *testing.T) {
	h, m := newMockedHandler(t)
	m.appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("v1")
	router := h.Init()

	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
}
