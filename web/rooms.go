package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/room"
	"github.com/tcriess/lightspeed-rooms/types"
	"github.com/tcriess/lightspeed-rooms/ws"
)

type roomFormData struct {
	Room   *types.Room    `json:"room,omitempty"`
	Topics []*types.Topic `json:"topics"`
	Form   url.Values     `json:"form,omitempty"`
}

type deleteData struct {
	Obj interface{} `json:"obj"`
}

func (s *Server) home(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	view, err := s.Rooms.Home(r.Context(), rc.Query.Get("q"))
	if err != nil {
		return err
	}
	return s.render(w, rc, http.StatusOK, &Page{View: "home", Data: view})
}

func (s *Server) activityPage(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	messages, err := s.Rooms.Activity(r.Context(), rc.Query.Get("q"))
	if err != nil {
		return err
	}
	return s.render(w, rc, http.StatusOK, &Page{View: "activity", Data: map[string]interface{}{"room_messages": messages}})
}

func (s *Server) topicPage(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	topics, err := s.Rooms.Topics(r.Context(), rc.Query.Get("q"))
	if err != nil {
		return err
	}
	return s.render(w, rc, http.StatusOK, &Page{View: "topics", Data: map[string]interface{}{"topics": topics}})
}

// roomPage shows a room. Posting to it adds a message, which requires a session.
func (s *Server) roomPage(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := rc.idVar("id")
	if err != nil {
		return err
	}
	ctx := r.Context()
	if r.Method == http.MethodPost {
		if rc.User == nil {
			http.Redirect(w, r, "/login/", http.StatusFound)
			return nil
		}
		in := room.MessageInput{}
		err = decodeForm(rc.Form, &in)
		if err != nil {
			return err
		}
		message, err := s.Rooms.PostMessage(ctx, rc.User, id, in)
		if err == nil {
			s.publish(id, types.WireEventMessage, message)
			http.Redirect(w, r, roomURL(id), http.StatusFound)
			return nil
		}
		view, viewErr := s.Rooms.Room(ctx, id)
		if viewErr != nil {
			return viewErr
		}
		return s.renderInvalid(w, rc, "room", view, "", err)
	}
	view, err := s.Rooms.Room(ctx, id)
	if err != nil {
		return err
	}
	return s.render(w, rc, http.StatusOK, &Page{View: "room", Data: view})
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	ctx := r.Context()
	topics, err := s.Rooms.AllTopics(ctx)
	if err != nil {
		return err
	}
	if r.Method != http.MethodPost {
		return s.render(w, rc, http.StatusOK, &Page{View: "room_form", Data: roomFormData{Topics: topics}})
	}
	in, err := roomInput(rc)
	if err == nil {
		_, err = s.Rooms.CreateRoom(ctx, rc.User, in)
	}
	if err != nil {
		return s.renderInvalid(w, rc, "room_form", roomFormData{Topics: topics, Form: rc.Form}, "", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) updateRoom(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := rc.idVar("id")
	if err != nil {
		return err
	}
	ctx := r.Context()
	current, err := s.Rooms.RoomForEdit(ctx, rc.User, id)
	if err != nil {
		return err
	}
	topics, err := s.Rooms.AllTopics(ctx)
	if err != nil {
		return err
	}
	if r.Method != http.MethodPost {
		return s.render(w, rc, http.StatusOK, &Page{View: "room_form", Data: roomFormData{Room: current, Topics: topics}})
	}
	in, err := roomInput(rc)
	if err == nil {
		_, err = s.Rooms.UpdateRoom(ctx, rc.User, id, in)
	}
	if err != nil {
		return s.renderInvalid(w, rc, "room_form", roomFormData{Room: current, Topics: topics, Form: rc.Form}, "", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) deleteRoom(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := rc.idVar("id")
	if err != nil {
		return err
	}
	ctx := r.Context()
	if r.Method != http.MethodPost {
		current, err := s.Rooms.RoomForEdit(ctx, rc.User, id)
		if err != nil {
			return err
		}
		return s.render(w, rc, http.StatusOK, &Page{View: "delete", Data: deleteData{Obj: current}})
	}
	deleted, err := s.Rooms.DeleteRoom(ctx, rc.User, id)
	if err != nil {
		return err
	}
	s.publish(deleted.ID, types.WireEventRoomDeleted, deleted)
	if s.Hub != nil {
		s.Hub.CloseRoom(deleted.ID)
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := rc.idVar("id")
	if err != nil {
		return err
	}
	ctx := r.Context()
	if r.Method != http.MethodPost {
		message, err := s.Rooms.MessageForDelete(ctx, rc.User, id)
		if err != nil {
			return err
		}
		return s.render(w, rc, http.StatusOK, &Page{View: "delete", Data: deleteData{Obj: message}})
	}
	deleted, err := s.Rooms.DeleteMessage(ctx, rc.User, id)
	if err != nil {
		return err
	}
	s.publish(deleted.RoomID, types.WireEventMessageDeleted, map[string]uint{"id": deleted.ID})
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

// websocketHandler attaches the connection to the live feed of a room.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 0)
	if err != nil || s.Hub == nil {
		http.NotFound(w, r)
		return
	}
	_, err = s.Rooms.GetRoom(r.Context(), uint(id))
	if err != nil {
		http.Error(w, http.StatusText(statusOf(err)), statusOf(err))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		globals.AppLogger.Error("websocket upgrade error", "error", err)
		return
	}
	ws.Serve(s.Hub, conn, uint(id))
}

func (s *Server) publish(roomID uint, event string, data interface{}) {
	if s.Hub == nil {
		return
	}
	msg, err := types.NewWebsocketMessage(event, data)
	if err != nil {
		globals.AppLogger.Error("could not build ws message", "event", event, "error", err)
		return
	}
	s.Hub.Publish(roomID, msg)
}

func roomInput(rc *RequestContext) (room.RoomInput, error) {
	in := room.RoomInput{}
	if rc.TooLarge {
		return in, room.UploadTooLarge("image")
	}
	err := decodeForm(rc.Form, &in)
	if err != nil {
		return in, err
	}
	in.Image = rc.Files["image"]
	return in, nil
}

func roomURL(id uint) string {
	return "/room/" + strconv.FormatUint(uint64(id), 10) + "/"
}
