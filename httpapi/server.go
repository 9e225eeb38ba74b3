package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	sessionguard "github.com/gallerium/sessionguard"
	"github.com/gallerium/sessionguard/middleware"
	"github.com/gallerium/sessionguard/permission"
)

// Server exposes the engine over HTTP/JSON. Build it with New and mount
// Handler() wherever the application serves its API.
type Server struct {
	engine *sessionguard.Engine
	cookie sessionguard.CookieConfig
	log    zerolog.Logger
}

// New wires a Server around an already-built engine. The cookie settings
// must match the config the engine was built with.
func New(engine *sessionguard.Engine, cookie sessionguard.CookieConfig, log zerolog.Logger) *Server {
	return &Server{engine: engine, cookie: cookie, log: log}
}

// Handler builds the route table. Authentication and CSRF enforcement live
// in the middleware chain; user administration additionally requires the
// manage-users capability.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	guard := middleware.Guard(s.engine, s.cookie.Name)
	manage := middleware.Require(s.engine, permission.CapManageUsers)

	router.Handler(http.MethodPost, "/api/login", http.HandlerFunc(s.handleLogin))
	router.Handler(http.MethodPost, "/api/logout", http.HandlerFunc(s.handleLogout))
	router.Handler(http.MethodGet, "/api/me", guard(http.HandlerFunc(s.handleMe)))
	router.Handler(http.MethodPost, "/api/change-password",
		guard(http.HandlerFunc(s.handleChangePassword)))

	router.Handler(http.MethodPost, "/api/users",
		guard(manage(http.HandlerFunc(s.handleCreateUser))))
	router.Handler(http.MethodDelete, "/api/users/:username",
		guard(manage(http.HandlerFunc(s.handleDeleteUser))))
	router.Handler(http.MethodPut, "/api/users/:username/permissions",
		guard(manage(http.HandlerFunc(s.handleUpdatePermissions))))

	router.Handler(http.MethodGet, "/api/metrics", s.metricsHandler())

	return s.withRequestLog(withClientIP(router))
}

// withClientIP stamps the remote address into the context so audit events
// carry it without the engine knowing about HTTP.
func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := sessionguard.WithClientIP(r.Context(), remoteIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func remoteIP(r *http.Request) string {
	host := r.RemoteAddr
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    value,
		Path:     s.cookie.Path,
		Domain:   s.cookie.Domain,
		Expires:  expires,
		Secure:   s.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     s.cookie.Path,
		Domain:   s.cookie.Domain,
		MaxAge:   -1,
		Secure:   s.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError keeps failure bodies generic so responses leak nothing about
// which check failed beyond the status code itself.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
