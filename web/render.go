package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tcriess/lightspeed-rooms/types"
)

// Page is what a handler hands to the Renderer: the name of the view, the view data and, for re-rendered forms,
// the field errors.
type Page struct {
	View    string            `json:"view"`
	User    *types.Account    `json:"user"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Renderer turns a page into the response body. A Renderer should fail before writing anything if it can, so the
// request can still be answered with an error page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page *Page) error
}

// JSONRenderer renders pages as JSON documents.
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, status int, page *Page) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(append(raw, '\n'))
	return err
}

func (s *Server) render(w http.ResponseWriter, rc *RequestContext, status int, page *Page) error {
	page.User = rc.User.Account()
	rec := &statusRecorder{ResponseWriter: w}
	err := s.Renderer.Render(rec, status, page)
	if err == nil {
		return nil
	}
	if rec.status == 0 {
		return fmt.Errorf("could not render %s: %w", page.View, err)
	}
	// headers are out already, nothing left to report to the client
	logError("could not render page", "view", page.View, "error", err)
	return nil
}
