package v1

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/website/middleware"
	"github.com/kotone-fm/kotone/website/shared"
)

// maxEditSize is the maximum size of an edit request body
const maxEditSize = 1 << 16

// SongResponse is the JSON form of a library.Song
type SongResponse struct {
	ID          library.SongID `json:"id"`
	Title       string         `json:"title"`
	Artist      string         `json:"artist"`
	Artists     []string       `json:"artists"`
	Album       string         `json:"album,omitempty"`
	Year        int            `json:"year,omitempty"`
	Genres      []string       `json:"genres"`
	DurationMs  int64          `json:"duration_ms,omitempty"`
	MimeType    string         `json:"mime_type"`
	UploadedBy  string         `json:"uploaded_by"`
	Fingerprint string         `json:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewSongResponse(song library.Song) SongResponse {
	return SongResponse{
		ID:          song.ID,
		Title:       song.Title,
		Artist:      song.Artist,
		Artists:     nonNil(song.Artists),
		Album:       song.Album,
		Year:        song.Year,
		Genres:      nonNil(song.Genres),
		DurationMs:  song.Duration.Milliseconds(),
		MimeType:    song.MimeType,
		UploadedBy:  song.UploadedBy,
		Fingerprint: song.Fingerprint.Short(),
		CreatedAt:   song.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// EditRequest is the body of a song edit, fields left out keep their
// current value
type EditRequest struct {
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Album  string   `json:"album"`
	Year   int      `json:"year"`
	Genres []string `json:"genres"`
}

func (er EditRequest) Metadata() library.Metadata {
	return library.Metadata{
		Title:  er.Title,
		Artist: er.Artist,
		Album:  er.Album,
		Year:   er.Year,
		Genres: library.Genres(er.Genres).Normalize(),
	}
}

func (a *API) GetSong(w http.ResponseWriter, r *http.Request) {
	song, ok := middleware.GetSong(r.Context())
	if !ok {
		shared.ErrorHandler(w, r, shared.ErrNotFound)
		return
	}

	shared.WriteJSON(w, r, http.StatusOK, NewSongResponse(song))
}

func (a *API) PatchSong(w http.ResponseWriter, r *http.Request) {
	const op errors.Op = "website/api/v1/API.PatchSong"
	ctx := r.Context()

	song, ok := middleware.GetSong(ctx)
	if !ok {
		shared.ErrorHandler(w, r, shared.ErrNotFound)
		return
	}

	var req EditRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxEditSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err, errors.InvalidForm, errors.Info("edit body")))
		return
	}
	if req.Year < 0 {
		shared.ErrorHandler(w, r, errors.E(op, errors.InvalidForm, errors.Info("year")))
		return
	}

	updated, err := a.ingester.Edit(ctx, song.ID, req.Metadata())
	if err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err))
		return
	}

	shared.WriteJSON(w, r, http.StatusOK, NewSongResponse(*updated))
}

func (a *API) DeleteSong(w http.ResponseWriter, r *http.Request) {
	const op errors.Op = "website/api/v1/API.DeleteSong"
	ctx := r.Context()

	song, ok := middleware.GetSong(ctx)
	if !ok {
		shared.ErrorHandler(w, r, shared.ErrNotFound)
		return
	}

	err := a.ingester.Delete(ctx, song.ID)
	if err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
