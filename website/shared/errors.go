package shared

import (
	"encoding/json"
	"net/http"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler writes an error response for err, only errors meant for the
// user have their message included in the response
func ErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFromError(err)

	level := zerolog.InfoLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	hlog.FromRequest(r).WithLevel(level).Err(err).Int("status_code", status).Msg("request failed")

	var resp = ErrorResponse{Error: msg}
	if rid, ok := hlog.IDFromRequest(r); ok {
		resp.RequestID = rid.String()
	}

	WriteJSON(w, r, status, resp)
}

// StatusFromError returns the status code and user facing message for err
func StatusFromError(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	var userErr library.UserError

	switch {
	case errors.IsE(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.IsE(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed"
	case errors.AsE(err, &maxBytes), errors.IsE(err, library.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, library.ErrFileTooLarge.UserError()
	case errors.AsE(err, &userErr) && userErr.Public():
		return http.StatusBadRequest, userErr.UserError()
	case errors.Is(errors.SongUnknown, err):
		return http.StatusNotFound, "song not found"
	case errors.Is(errors.BlobUnknown, err):
		return http.StatusNotFound, "file not found"
	case errors.Is(errors.InvalidForm, err), errors.Is(errors.InvalidArgument, err):
		if info := errorInfo(err); info != "" {
			return http.StatusBadRequest, "invalid " + string(info)
		}
		return http.StatusBadRequest, "invalid request"
	}
	return http.StatusInternalServerError, "internal server error"
}

// errorInfo returns the first Info found in the chain of err
func errorInfo(err error) errors.Info {
	for e, ok := err.(*errors.Error); ok; e, ok = e.Err.(*errors.Error) {
		if e.Info != "" {
			return e.Info
		}
	}
	return ""
}

// WriteJSON writes v as JSON with the status code given
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
	}
}
