// Package mockapi serves record sets over HTTP the way the httpjson source
// expects them: GET /{object} returns a JSON array of objects.
//
// It backs the fdw-mockapi command and the httpjson tests.
package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
	"github.com/koustreak/fdw/internal/source/static"
)

// BrokenObject always answers 200 with a body that is not valid JSON.
const BrokenObject = "broken"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Server holds the objects it serves.
type Server struct {
	objects map[string][]source.Record
	apiKey  string
	log     *logger.Logger
}

type Option func(*Server)

// WithObject serves records at /{name}.
func WithObject(name string, records []source.Record) Option {
	return func(s *Server) {
		s.objects[name] = records
	}
}

// WithAPIKey requires "Authorization: Bearer <key>" on every request.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// New returns a Server that serves the static events at /events plus
// whatever objects opts add.
func New(opts ...Option) *Server {
	s := &Server{
		objects: map[string][]source.Record{"events": static.Records()},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	if s.apiKey != "" {
		r.Use(s.requireKey)
	}

	r.Get("/"+BrokenObject, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "12345", "type": `))
	})
	r.Get("/{object}", s.serveObject)
	return r
}

func (s *Server) serveObject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "object")
	records, ok := s.objects[name]
	if !ok {
		logger.FromContext(r.Context()).Warn("unknown object " + name)
		http.Error(w, "object not found", http.StatusNotFound)
		return
	}

	body, err := jsonAPI.Marshal(records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token != s.apiKey {
			logger.FromContext(r.Context()).Warn("rejected request without a valid bearer token")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger attaches a request-scoped logger to the context and logs
// every response at debug.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := s.log.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Any("query", r.URL.Query()).
			Logger()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))
		reqLog.DebugWith("request served", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start).String(),
		})
	})
}
