package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tcriess/lightspeed-rooms/auth"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/storage"
	"github.com/tcriess/lightspeed-rooms/types"
)

// in-memory part of multipart forms, the rest goes to temp files
const multipartMemory = 1 << 20

// RequestContext carries everything a handler needs to know about the request: the authenticated user (nil for
// anonymous requests), route variables, query and the decoded form payload.
type RequestContext struct {
	User      *types.User
	SessionID string
	Vars      map[string]string
	Query     url.Values
	Form      url.Values
	Files     map[string]*storage.Upload
	// TooLarge is set instead of Form and Files when an upload form exceeded the size limit.
	TooLarge bool

	closers []io.Closer
}

func (rc *RequestContext) close() {
	for _, c := range rc.closers {
		_ = c.Close()
	}
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error

// wrap builds the RequestContext for h and turns the error returned by h into a response.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return s.wrapForm(h, false)
}

// wrapUpload is wrap for the handlers of upload forms. They are called with rc.TooLarge set for oversized requests,
// so they can re-render their form.
func (s *Server) wrapUpload(h handlerFunc) http.HandlerFunc {
	return s.wrapForm(h, true)
}

func (s *Server) wrapForm(h handlerFunc, uploads bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, err := s.newRequestContext(w, r)
		defer rc.close()
		if uploads && errors.Is(err, errTooLarge) {
			rc.TooLarge = true
			err = nil
		}
		if err == nil {
			err = h(w, r, rc)
		}
		if err != nil {
			s.handleError(w, rc, err)
		}
	}
}

// requireLogin sends anonymous users to the login page.
func requireLogin(h handlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
		if rc.User == nil {
			http.Redirect(w, r, "/login/", http.StatusFound)
			return nil
		}
		return h(w, r, rc)
	}
}

func (s *Server) newRequestContext(w http.ResponseWriter, r *http.Request) (*RequestContext, error) {
	rc := &RequestContext{
		Vars:  mux.Vars(r),
		Query: r.URL.Query(),
		Form:  url.Values{},
		Files: make(map[string]*storage.Upload),
	}
	if cookie, err := r.Cookie(s.Cfg.SessionConfig.CookieName); err == nil {
		rc.SessionID = cookie.Value
		rc.User = s.sessionUser(r.Context(), cookie.Value)
	}
	if r.Method != http.MethodPost {
		return rc, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.Cfg.StorageConfig.MaxUploadSize+multipartMemory)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return rc, errTooLarge
	}
	if err != nil {
		return rc, fmt.Errorf("%w: %s", errBadRequest, err)
	}
	rc.Form = r.PostForm
	if r.MultipartForm == nil {
		return rc, nil
	}
	rc.closers = append(rc.closers, closerFunc(r.MultipartForm.RemoveAll))
	for name, headers := range r.MultipartForm.File {
		// browsers send an empty part for file inputs left blank
		if len(headers) == 0 || headers[0].Filename == "" || headers[0].Size == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return rc, err
		}
		rc.closers = append(rc.closers, f)
		rc.Files[name] = &storage.Upload{Filename: headers[0].Filename, Body: f}
	}
	return rc, nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// sessionUser resolves a session id to its user, going through the user cache. Unknown or expired sessions and
// deleted users yield nil.
func (s *Server) sessionUser(ctx context.Context, sid string) *types.User {
	userID, err := s.Sessions.Get(sid)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			globals.AppLogger.Error("could not read session", "error", err)
		}
		return nil
	}
	if cached, ok := s.users.Get(userID); ok {
		return cached.(*types.User)
	}
	user, err := s.Accounts.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			globals.AppLogger.Error("could not load session user", "user", userID, "error", err)
		}
		return nil
	}
	s.users.Add(userID, user)
	return user
}

// startSession logs user in by setting a fresh session cookie. A previous session of the request is ended.
func (s *Server) startSession(w http.ResponseWriter, rc *RequestContext, user *types.User) error {
	if rc.SessionID != "" {
		_ = s.Sessions.Delete(rc.SessionID)
	}
	sid, err := s.Sessions.Create(user.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.Cfg.SessionConfig.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(s.Sessions.MaxAge().Seconds()),
		HttpOnly: true,
		Secure:   s.Cfg.SessionConfig.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	rc.SessionID = sid
	rc.User = user
	s.users.Add(user.ID, user)
	return nil
}

func (s *Server) endSession(w http.ResponseWriter, rc *RequestContext) error {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Cfg.SessionConfig.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Cfg.SessionConfig.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	if rc.SessionID == "" {
		return nil
	}
	err := s.Sessions.Delete(rc.SessionID)
	rc.SessionID = ""
	rc.User = nil
	return err
}
