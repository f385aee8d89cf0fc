package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const syncDelta = `{"entries":[{"id":"b1","title":"c2VjcmV0","url":"dXJs"}],"last_modified":"42"}`

func gzipBytes(t *testing.T, data string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return &buf
}

func gunzip(t *testing.T, r io.Reader) string {
	t.Helper()
	zr, err := gzip.NewReader(r)
	require.NoError(t, err)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

// echo answers with the request body it received.
var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
})

func TestWithGZip_Response(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		wantGzip       bool
	}{
		{name: "gzip accepted", acceptEncoding: "gzip", wantGzip: true},
		{name: "gzip among others", acceptEncoding: "deflate, gzip, br", wantGzip: true},
		{name: "gzip with quality", acceptEncoding: "gzip;q=0.8, identity;q=0.5", wantGzip: true},
		{name: "gzip refused", acceptEncoding: "gzip;q=0, identity", wantGzip: false},
		{name: "no header", acceptEncoding: "", wantGzip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/sync/bookmarks", strings.NewReader(syncDelta))
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rr := httptest.NewRecorder()

			withGZip(echo).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "Accept-Encoding", rr.Header().Get("Vary"))
			if tt.wantGzip {
				assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
				assert.Equal(t, syncDelta, gunzip(t, rr.Body))
				return
			}
			assert.Empty(t, rr.Header().Get("Content-Encoding"))
			assert.Equal(t, syncDelta, rr.Body.String())
		})
	}
}

func TestWithGZip_CompressedRequestBody(t *testing.T) {
	var gotEncoding string
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEncoding = r.Header.Get("Content-Encoding")
		echo(w, r)
	}))

	req := httptest.NewRequest(http.MethodPatch, "/api/sync/bookmarks", gzipBytes(t, syncDelta))
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, syncDelta, rr.Body.String())
	assert.Empty(t, gotEncoding, "the inflated body is plain")
}

func TestWithGZip_InvalidRequestBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/sync/bookmarks", strings.NewReader(syncDelta))
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()

	withGZip(echo).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWithGZip_NoContentIsNotEncoded(t *testing.T) {
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/api/auth/account", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Zero(t, rr.Body.Len())
}

func TestWithGZip_ImplicitStatus(t *testing.T) {
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("v1.2.3"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v1.2.3", gunzip(t, rr.Body))
}

func TestWithGZip_LargeDeltaShrinks(t *testing.T) {
	delta := `{"entries":[` + strings.Repeat(`{"id":"b","is_folder":false},`, 2000) + `{}]}`
	handler := withGZip(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(delta))
	}))
	req := httptest.NewRequest(http.MethodPatch, "/api/sync/bookmarks", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Less(t, rr.Body.Len(), len(delta)/10)
	assert.Equal(t, delta, gunzip(t, rr.Body))
}

func TestWithGZip_ConcurrentRequestsReusePool(t *testing.T) {
	handler := withGZip(echo)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPatch, "/api/sync/bookmarks", gzipBytes(t, syncDelta))
			req.Header.Set("Content-Encoding", "gzip")
			req.Header.Set("Accept-Encoding", "gzip")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, syncDelta, gunzip(t, rr.Body))
		}()
	}
	wg.Wait()
}

func TestPooledReader_CloseOnce(t *testing.T) {
	calls := 0
	r := &pooledReader{Reader: strings.NewReader("x"), release: func() { calls++ }}

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, calls)

	assert.NoError(t, (&pooledReader{Reader: strings.NewReader("x")}).Close())
}
