package web

import (
	"net/http"
	"strconv"

	"github.com/tcriess/lightspeed-rooms/room"
)

func (s *Server) userProfile(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := rc.idVar("id")
	if err != nil {
		return err
	}
	view, err := s.Rooms.Profile(r.Context(), id)
	if err != nil {
		return err
	}
	return s.render(w, rc, http.StatusOK, &Page{View: "profile", Data: view})
}

// updateUser edits the profile of the logged in user. Only submitted fields change.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	if r.Method != http.MethodPost {
		return s.render(w, rc, http.StatusOK, &Page{View: "edit-user", Data: rc.User.Account()})
	}
	if rc.TooLarge {
		return s.renderInvalid(w, rc, "edit-user", rc.User.Account(), "", room.UploadTooLarge("avatar"))
	}
	in := room.ProfileInput{}
	err := decodeForm(rc.Form, &in)
	if err != nil {
		return err
	}
	in.Avatar = rc.Files["avatar"]
	user, err := s.Rooms.UpdateProfile(r.Context(), rc.User, in)
	if err != nil {
		return s.renderInvalid(w, rc, "edit-user", rc.User.Account(), "", err)
	}
	s.users.Remove(user.ID)
	http.Redirect(w, r, "/profile/"+strconv.FormatUint(uint64(user.ID), 10)+"/", http.StatusFound)
	return nil
}
