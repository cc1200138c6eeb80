package v1

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/ingest"
	"github.com/kotone-fm/kotone/website/middleware"
	"github.com/kotone-fm/kotone/website/shared"
	"github.com/rs/zerolog/hlog"
)

const (
	formMaxFieldLength = 512
	formMaxMIMEParts   = 8
	// multipartOverhead is the allowance for the non-file parts of an
	// upload on top of the maximum file size
	multipartOverhead = 1 << 16
)

// UploadResponse is the response to a successful upload
type UploadResponse struct {
	Outcome ingest.Outcome `json:"outcome"`
	Song    SongResponse   `json:"song"`
}

func (a *API) PostSong(w http.ResponseWriter, r *http.Request) {
	const op errors.Op = "website/api/v1/API.PostSong"
	ctx := r.Context()

	maxSize := a.Config.Conf().Website.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err, errors.InvalidForm, errors.Info("multipart body")))
		return
	}

	var form UploadForm
	err = form.ParseForm(mr, maxSize)
	if err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err))
		return
	}

	hlog.FromRequest(r).Info().
		Str("filename", form.Filename).
		Str("content_type", form.ContentType).
		Str("size", humanize.IBytes(uint64(len(form.Data)))).
		Msg("received upload")

	res, err := a.ingester.Ingest(ctx, form.Request(middleware.GetUploader(ctx)))
	if err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err))
		return
	}

	shared.WriteJSON(w, r, OutcomeStatus(res.Outcome), UploadResponse{
		Outcome: res.Outcome,
		Song:    NewSongResponse(*res.Song),
	})
}

// OutcomeStatus returns the HTTP status code used for the outcome
func OutcomeStatus(o ingest.Outcome) int {
	switch o {
	case ingest.AcceptNew, ingest.ReplaceOrphan:
		return http.StatusCreated
	case ingest.UpdateMetadata:
		return http.StatusOK
	case ingest.RejectDuplicate:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// UploadForm is the multipart form of an upload
type UploadForm struct {
	Data        []byte
	Filename    string
	ContentType string

	Metadata library.Metadata
}

// Request returns the ingestion request of the form
func (uf UploadForm) Request(uploader string) ingest.Request {
	return ingest.Request{
		Blob: library.AudioBlob{
			Data:        uf.Data,
			ContentType: uf.ContentType,
			Filename:    uf.Filename,
		},
		Metadata:   uf.Metadata,
		UploadedBy: uploader,
	}
}

func (uf *UploadForm) ParseForm(mr *multipart.Reader, maxFileSize int64) error {
	const op errors.Op = "website/api/v1/UploadForm.ParseForm"

	for i := 0; i < formMaxMIMEParts; i++ {
		part, err := mr.NextPart()
		if errors.IsE(err, io.EOF) {
			// finished reading parts
			break
		}
		if err != nil {
			return errors.E(op, err, errors.InvalidForm)
		}

		switch part.FormName() {
		case "file":
			err = uf.readFile(part, maxFileSize)
		case "title":
			uf.Metadata.Title, err = readString(part, formMaxFieldLength)
		case "artist":
			uf.Metadata.Artist, err = readString(part, formMaxFieldLength)
		case "album":
			uf.Metadata.Album, err = readString(part, formMaxFieldLength)
		case "genres":
			var s string
			s, err = readString(part, formMaxFieldLength)
			uf.Metadata.Genres = library.ParseGenres(s)
		case "year":
			var s string
			s, err = readString(part, formMaxFieldLength)
			if err == nil && s != "" {
				uf.Metadata.Year, err = parseYear(s)
			}
		default:
			// unknown form field, bail early and tell the client it's bad
			return errors.E(op, errors.InvalidForm, errors.Info("field "+part.FormName()))
		}
		if err != nil {
			return errors.E(op, err)
		}
	}

	if len(uf.Data) == 0 {
		return errors.E(op, errors.InvalidArgument, library.ErrMissingFile)
	}
	return nil
}

func (uf *UploadForm) readFile(part *multipart.Part, maxFileSize int64) error {
	const op errors.Op = "website/api/v1/UploadForm.readFile"

	// read one byte more than allowed so we can tell if the limit was hit
	data, err := io.ReadAll(io.LimitReader(part, maxFileSize+1))
	if err != nil {
		return errors.E(op, err)
	}
	if int64(len(data)) > maxFileSize {
		return errors.E(op, errors.InvalidArgument, library.ErrFileTooLarge)
	}

	uf.Data = data
	uf.Filename = filepath.Base(part.FileName())
	blob := library.AudioBlob{
		Data:        data,
		ContentType: part.Header.Get("Content-Type"),
		Filename:    uf.Filename,
	}
	ct, ok := blob.DetectContentType()
	if !ok {
		return errors.E(op, errors.InvalidArgument, library.ErrUnsupportedType)
	}
	uf.ContentType = ct
	return nil
}

func parseYear(s string) (int, error) {
	const op errors.Op = "website/api/v1/parseYear"

	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.E(op, err, errors.InvalidForm, errors.Info("year"))
	}
	if year < 0 {
		return 0, errors.E(op, errors.InvalidForm, errors.Info("year"))
	}
	return year, nil
}

func readString(r io.Reader, maxSize int64) (string, error) {
	r = io.LimitReader(r, maxSize)
	if b, err := io.ReadAll(r); err != nil {
		return "", err
	} else {
		return strings.TrimSpace(string(b)), nil
	}
}
