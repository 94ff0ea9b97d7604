package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"picstash/internal/config"
	"picstash/internal/picstash"
)

// Server is the REST surface over a Library. It is a thin collaborator:
// all invariants live in the domain engine, the server only translates
// between HTTP and domain operations.
type Server struct {
	lib       *picstash.Library
	logger    picstash.Logger
	maxUpload int64
	router    chi.Router
}

// NewServer builds the router and handlers over the given Library.
func NewServer(lib *picstash.Library, logger picstash.Logger, cfg config.APIConfig) *Server {
	if logger == nil {
		logger = picstash.NewNopLogger()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}

	s := &Server{lib: lib, logger: logger, maxUpload: maxUpload}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		if cfg.RequestsPerMinute > 0 {
			r.Use(httprate.Limit(
				cfg.RequestsPerMinute,
				1*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
		}
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", s.listCollections)
			r.Post("/", s.createCollection)
			r.Route("/{collection}", func(r chi.Router) {
				r.Get("/", s.getCollection)
				r.Delete("/", s.deleteCollection)
				r.Post("/archives", s.exportArchive)
				r.Route("/images", func(r chi.Router) {
					r.Get("/", s.listImages)
					r.Post("/", s.addImage)
					r.Patch("/status", s.batchUpdateStatus)
					r.Route("/{image}", func(r chi.Router) {
						r.Get("/", s.getImage)
						r.Delete("/", s.deleteImage)
						r.Patch("/status", s.updateStatus)
						r.Get("/original", s.serveOriginal)
						r.Get("/thumbnail", s.serveThumbnail)
						r.Get("/download", s.downloadImage)
					})
				})
			})
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests logs each request through the domain logger with its
// request id, keeping one log pipeline for the whole process.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// writeJSON renders v as a JSON response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeError maps a domain error onto the wire. Internal failures are
// logged with full detail but surface only the generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error",
			"method", r.Method, "path", r.URL.Path, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
	}
	s.writeJSON(w, status, map[string]string{"error": message})
}
