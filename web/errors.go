package web

import (
	"errors"
	"net/http"

	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/types"
)

var (
	errBadRequest = errors.New("bad request")
	errTooLarge   = errors.New("request body too large")
	errNoRoute    = types.ErrNotFound
)

const loginFailedMessage = "Email OR password does not exist"

func logError(msg string, args ...interface{}) {
	globals.AppLogger.Error(msg, args...)
}

// statusOf maps the error kinds to http status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) handleError(w http.ResponseWriter, rc *RequestContext, err error) {
	status := statusOf(err)
	page := &Page{View: "error", Message: err.Error()}
	switch status {
	case http.StatusNotFound:
		page.Message = "Not found."
	case http.StatusForbidden:
		page.Message = "You are not allowed here!"
	case http.StatusUnauthorized:
		page.Message = loginFailedMessage
	case http.StatusInternalServerError:
		logError("request failed", "error", err)
		page.Message = "Something went wrong."
	}
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		page.Errors = ve.Fields
	}
	if s.render(w, rc, status, page) != nil {
		http.Error(w, page.Message, status)
	}
}

// renderInvalid re-renders view with the field errors of a validation failure and reports success; any other error
// is returned unchanged.
func (s *Server) renderInvalid(w http.ResponseWriter, rc *RequestContext, view string, data interface{}, message string, err error) error {
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return s.render(w, rc, http.StatusUnprocessableEntity, &Page{View: view, Data: data, Errors: ve.Fields, Message: message})
}
