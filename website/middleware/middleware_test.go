package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/mocks"
	"github.com/kotone-fm/kotone/website/shared"
	"github.com/rs/zerolog/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func songRouter(t *testing.T, store *mocks.SongStore) (chi.Router, *library.Song) {
	got := new(library.Song)
	r := chi.NewRouter()
	r.With(SongCtx(store.StorageService(t), shared.ErrorHandler)).
		Get("/songs/{SongID}", func(w http.ResponseWriter, r *http.Request) {
			song, ok := GetSong(r.Context())
			if !ok {
				t.Error("song missing from context")
			}
			*got = song
		})
	return r, got
}

func TestSongCtx(t *testing.T) {
	store := mocks.NewSongStore()
	inserted, err := store.Insert(library.Song{
		Title:       "Title",
		Artist:      "Artist",
		Fingerprint: library.NewHashFingerprint([]byte("audio")),
	})
	require.NoError(t, err)

	r, got := songRouter(t, store)

	t.Run("known", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/songs/"+inserted.ID.String(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, inserted.ID, got.ID)
		assert.Equal(t, "Title", got.Title)
	})

	t.Run("unknown", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/songs/500", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/songs/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "invalid song id", resp.Error)
	})
}

func TestSongCtxStorageError(t *testing.T) {
	ss := &mocks.StorageServiceMock{
		SongFunc: func(ctx context.Context) library.SongStorage {
			return &mocks.SongStorageMock{
				GetFunc: func(id library.SongID) (*library.Song, error) {
					return nil, errors.E(errors.Testing)
				},
			}
		},
	}

	r := chi.NewRouter()
	r.With(SongCtx(ss, shared.ErrorHandler)).Get("/songs/{SongID}", func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/songs/1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUploader(t *testing.T) {
	header := func() string { return "X-Proxy-User" }

	var identity string
	h := Uploader(header)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity = GetUploader(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Proxy-User", " alice ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "alice", identity)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1"
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "addr:10.0.0.1", identity)
}

func TestGetUploaderMissing(t *testing.T) {
	assert.Empty(t, GetUploader(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("oops")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRecovererRequestID(t *testing.T) {
	h := hlog.RequestIDHandler("req_id", "Request-Id")(Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("oops")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, w.Header().Get("Request-Id"), resp.RequestID)
	assert.NotContains(t, resp.Error, "oops")
}

func TestRecovererAbortHandler(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
