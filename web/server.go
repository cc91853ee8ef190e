package web

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tcriess/lightspeed-rooms/auth"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/room"
	"github.com/tcriess/lightspeed-rooms/ws"
)

// Server is the http surface of the application. It resolves the session user, decodes forms into typed inputs
// and maps error kinds to responses; everything else is delegated to the services.
type Server struct {
	Cfg      *config.Config
	Rooms    *room.Service
	Accounts *auth.Service
	Sessions *auth.SessionStore
	Hub      *ws.Hub
	Renderer Renderer

	// MediaDir is served below Cfg.StorageConfig.URLPrefix, no media are served if empty.
	MediaDir string

	users    *lru.Cache
	router   *mux.Router
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, rooms *room.Service, accounts *auth.Service, sessions *auth.SessionStore, hub *ws.Hub, mediaDir string) (*Server, error) {
	size := cfg.UserCacheSize
	if size <= 0 {
		size = 1
	}
	users, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	s := &Server{
		Cfg:      cfg,
		Rooms:    rooms,
		Accounts: accounts,
		Sessions: sessions,
		Hub:      hub,
		Renderer: JSONRenderer{},
		MediaDir: mediaDir,
		users:    users,
		router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	get := []string{http.MethodGet, http.MethodHead}
	form := []string{http.MethodGet, http.MethodHead, http.MethodPost}

	router := s.router
	router.Use(logRequests)
	router.HandleFunc("/login/", s.wrap(s.loginPage)).Methods(form...)
	router.HandleFunc("/login/oidc/", s.wrap(s.oidcLogin)).Methods(http.MethodPost)
	router.HandleFunc("/logout/", s.wrap(s.logout))
	router.HandleFunc("/register/", s.wrap(s.registerPage)).Methods(form...)

	router.HandleFunc("/", s.wrap(s.home)).Methods(get...)
	router.HandleFunc("/room/{id:[0-9]+}/", s.wrap(s.roomPage)).Methods(form...)
	router.HandleFunc("/room/{id:[0-9]+}/ws", s.websocketHandler).Methods(http.MethodGet)
	router.HandleFunc("/activities/", s.wrap(s.activityPage)).Methods(get...)
	router.HandleFunc("/topics/", s.wrap(s.topicPage)).Methods(get...)
	router.HandleFunc("/profile/{id:[0-9]+}/", s.wrap(s.userProfile)).Methods(get...)
	router.HandleFunc("/edit-user/", s.wrapUpload(requireLogin(s.updateUser))).Methods(form...)

	router.HandleFunc("/create-room", s.wrapUpload(requireLogin(s.createRoom))).Methods(form...)
	router.HandleFunc("/update-room/{id:[0-9]+}/", s.wrapUpload(requireLogin(s.updateRoom))).Methods(form...)
	router.HandleFunc("/delete-room/{id:[0-9]+}/", s.wrap(requireLogin(s.deleteRoom))).Methods(form...)
	router.HandleFunc("/delete-message/{id:[0-9]+}/", s.wrap(requireLogin(s.deleteMessage))).Methods(form...)

	if s.MediaDir != "" {
		prefix := path.Join("/", s.Cfg.StorageConfig.URLPrefix) + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(s.MediaDir))))).Methods(get...)
	}
	router.NotFoundHandler = s.wrap(func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
		return errNoRoute
	})
}

func noDirListing(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Hijack passes the websocket upgrade through to the underlying writer.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		globals.AppLogger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
