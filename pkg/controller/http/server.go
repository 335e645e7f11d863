package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/model"
	"github.com/secmon-lab/isogap/pkg/service/metrics"
	"github.com/secmon-lab/isogap/pkg/usecase"
	"github.com/secmon-lab/isogap/pkg/utils/errutil"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
	"github.com/secmon-lab/isogap/pkg/utils/safe"
)

// DefaultMaxUploadSize bounds one evidence upload request
const DefaultMaxUploadSize int64 = 32 << 20

// errBadRequest marks malformed request bodies and parameters
var errBadRequest = errors.New("bad request")

type Server struct {
	router        *chi.Mux
	session       *usecase.Session
	maxUploadSize int64
	enableMetrics bool
}

type Options func(*Server)

func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		if size > 0 {
			s.maxUploadSize = size
		}
	}
}

func WithMetrics(enabled bool) Options {
	return func(s *Server) {
		s.enableMetrics = enabled
	}
}

func New(session *usecase.Session, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		session:       session,
		maxUploadSize: DefaultMaxUploadSize,
		enableMetrics: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/page", s.pageHandler)
		r.Get("/routes", s.routesHandler)

		r.Route("/navigation", func(r chi.Router) {
			r.Get("/", s.navigationHandler)
			r.Post("/location", s.visitHandler)
			r.Post("/back", s.backHandler)
			r.Post("/forward", s.forwardHandler)
			r.Post("/view", s.requestViewHandler)
		})

		r.Route("/assessments", func(r chi.Router) {
			r.Get("/", s.catalogHandler)
			r.Route("/{domain}", func(r chi.Router) {
				r.Get("/draft", s.draftHandler)
				r.Delete("/draft", s.resetDraftHandler)
				r.Patch("/draft/sections/{section}", s.updateFieldHandler)
				r.Put("/draft/sections/{section}/evidence", s.evidenceUploadHandler)
				r.Post("/submissions", s.submitHandler)
				r.Get("/submissions", s.submissionsHandler)
				r.Get("/submissions/{id}/evidence/{file}", s.evidenceDownloadHandler)
			})
		})
	})

	if s.enableMetrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	} else {
		r.Get("/metrics", http.NotFound)
	}

	// Any other path is a location of the dashboard (catch-all, must be last)
	r.Get("/*", s.locationHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger binds a logger carrying the request ID to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("error", err.Error()))
	}
	return nil
}

// handleError maps use case errors to HTTP status codes
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrRequirementsNotAnswered):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrUnknownDomain),
		errors.Is(err, usecase.ErrSubmissionNotFound),
		errors.Is(err, usecase.ErrEvidenceNotFound):
		return http.StatusNotFound

	case errors.Is(err, model.ErrUnknownSection),
		errors.Is(err, model.ErrInvalidAnswer),
		errors.Is(err, usecase.ErrUnknownField),
		errors.Is(err, usecase.ErrUnknownView),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrPersistenceWrite),
		errors.Is(err, usecase.ErrPersistenceRead):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
