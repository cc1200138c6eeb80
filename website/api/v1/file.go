package v1

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/util"
	"github.com/kotone-fm/kotone/website/middleware"
	"github.com/kotone-fm/kotone/website/shared"
	"github.com/rs/zerolog/hlog"
)

var errUnsatisfiableRange = errors.New("range not satisfiable")

func (a *API) GetSongFile(w http.ResponseWriter, r *http.Request) {
	const op errors.Op = "website/api/v1/API.GetSongFile"
	ctx := r.Context()

	song, ok := middleware.GetSong(ctx)
	if !ok {
		shared.ErrorHandler(w, r, shared.ErrNotFound)
		return
	}

	info, err := a.blobs.Stat(ctx, song.FileKey)
	if err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err, song))
		return
	}

	br, err := ParseRange(r.Header.Get("Range"), info.Size)
	if err != nil {
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(info.Size, 10))
		shared.WriteJSON(w, r, http.StatusRequestedRangeNotSatisfiable, shared.ErrorResponse{
			Error: errUnsatisfiableRange.Error(),
		})
		return
	}

	rc, err := a.blobs.Get(ctx, song.FileKey, br)
	if err != nil {
		shared.ErrorHandler(w, r, errors.E(op, err, song))
		return
	}
	defer rc.Close()

	if info.ContentType != "" && song.MimeType == "" {
		song.MimeType = info.ContentType
	}
	util.AddContentDispositionSong(w, song)

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	status := http.StatusOK
	length := info.Size
	if br != nil {
		status = http.StatusPartialContent
		length = br.End - br.Start + 1
		h.Set("Content-Range", "bytes "+
			strconv.FormatInt(br.Start, 10)+"-"+
			strconv.FormatInt(br.End, 10)+"/"+
			strconv.FormatInt(info.Size, 10))
	}
	h.Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}

	_, err = io.CopyN(w, rc, length)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Uint64("song_id", uint64(song.ID)).Msg("failed to send file")
	}
}

// ParseRange parses a Range header value for a blob of the size given. It
// returns nil if the whole blob should be sent, which is the case for an
// empty header and for headers we don't support such as multiple ranges.
// The returned range always has an inclusive End within the blob
func ParseRange(header string, size int64) (*library.ByteRange, error) {
	const op errors.Op = "website/api/v1/ParseRange"

	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return nil, nil
	}

	first, last, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, errors.E(op, errUnsatisfiableRange, errors.InvalidArgument)
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		// suffix range, the last n bytes
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 || size == 0 {
			return nil, errors.E(op, errUnsatisfiableRange, errors.InvalidArgument)
		}
		return &library.ByteRange{Start: max(size-n, 0), End: size - 1}, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 || start >= size {
		return nil, errors.E(op, errUnsatisfiableRange, errors.InvalidArgument)
	}

	end := size - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return nil, errors.E(op, errUnsatisfiableRange, errors.InvalidArgument)
		}
		end = min(end, size-1)
	}
	return &library.ByteRange{Start: start, End: end}, nil
}
