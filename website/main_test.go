package website

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/ingest"
	"github.com/kotone-fm/kotone/mocks"
	v1 "github.com/kotone-fm/kotone/website/api/v1"
	"github.com/kotone-fm/kotone/website/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripRemotePort(t *testing.T) {
	cases := []struct {
		remote string
		want   string
	}{
		{"127.0.0.1:8000", "127.0.0.1"},
		{"127.0.0.1", "127.0.0.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"2001:db8::1", "2001:db8::1"},
		{"localhost:65555", "localhost"},
		{"", ""},
	}

	for _, c := range cases {
		t.Run(c.remote, func(t *testing.T) {
			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = c.remote
			stripRemotePort(next).ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := newServer(ctx, config.TestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout * 2):
		t.Fatal("serve did not return after cancel")
	}
}

func testRouter(t *testing.T) http.Handler {
	cfg := config.TestConfig()
	songs := mocks.NewSongStore()
	blobs := mocks.NewBlobStore()
	ss := songs.StorageService(t)

	ingester := ingest.NewIngester(ss, blobs, &mocks.TagExtractorMock{}, nil, &mocks.FingerprintGeneratorMock{})
	api := v1.NewAPI(context.Background(), cfg, ingester, ss, blobs)
	return Router(context.Background(), cfg, api)
}

func TestRouter(t *testing.T) {
	r := testRouter(t)

	cases := []struct {
		method string
		url    string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/does-not-exist", http.StatusNotFound},
		{http.MethodGet, "/v1/songs/1", http.StatusNotFound},
		{http.MethodPut, "/v1/songs/", http.StatusMethodNotAllowed},
	}

	for _, c := range cases {
		t.Run(c.method+c.url, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(c.method, c.url, nil))
			assert.Equal(t, c.status, w.Code)
		})
	}
}

func TestRouterRequestID(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get("Request-Id"))

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "not found", resp.Error)
	assert.Equal(t, w.Header().Get("Request-Id"), resp.RequestID)
}
