package web

import (
	"errors"
	"net/http"

	"github.com/tcriess/lightspeed-rooms/auth"
	"github.com/tcriess/lightspeed-rooms/types"
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	if rc.User != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil
	}
	if r.Method != http.MethodPost {
		return s.render(w, rc, http.StatusOK, &Page{View: "login"})
	}
	in := auth.LoginInput{}
	err := decodeForm(rc.Form, &in)
	if err != nil {
		return err
	}
	user, err := s.Accounts.Login(r.Context(), in)
	return s.loggedIn(w, r, rc, user, err)
}

// oidcLogin logs in with an ID token of a configured OpenID Connect provider.
func (s *Server) oidcLogin(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	if rc.User != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil
	}
	user, err := s.Accounts.LoginWithIDToken(r.Context(), rc.Form.Get("provider"), rc.Form.Get("id_token"))
	return s.loggedIn(w, r, rc, user, err)
}

func (s *Server) loggedIn(w http.ResponseWriter, r *http.Request, rc *RequestContext, user *types.User, err error) error {
	if errors.Is(err, types.ErrAuthFailed) {
		return s.render(w, rc, http.StatusUnauthorized, &Page{View: "login", Message: loginFailedMessage})
	}
	if err != nil {
		return err
	}
	err = s.startSession(w, rc, user)
	if err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	err := s.endSession(w, rc)
	if err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	if r.Method != http.MethodPost {
		return s.render(w, rc, http.StatusOK, &Page{View: "register"})
	}
	in := auth.RegisterInput{}
	err := decodeForm(rc.Form, &in)
	if err != nil {
		return err
	}
	user, err := s.Accounts.Register(r.Context(), in)
	if err != nil {
		return s.renderInvalid(w, rc, "register", nil, "An error occurred during registration", err)
	}
	err = s.startSession(w, rc, user)
	if err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}
