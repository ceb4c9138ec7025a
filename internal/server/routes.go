package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"launch-tracker/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// RegisterRoutes sets up the router with all endpoints.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.corsHandler())
	r.Use(s.limiter.middleware)

	r.Get("/health", s.healthHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/launches", s.GetAllLaunchesHandler)
		r.Post("/launches", s.CreateLaunchHandler)
	})

	// everything else belongs to the frontend bundle
	r.NotFound(s.staticHandler)

	return r
}

// healthHandler provides health information.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// GetAllLaunchesHandler lists every launch.
func (s *Server) GetAllLaunchesHandler(w http.ResponseWriter, r *http.Request) {
	launches, err := s.db.ListLaunches(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, launches)
}

// CreateLaunchHandler handles launch creation.
func (s *Server) CreateLaunchHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input models.LaunchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.log.Debug().Err(err).Msg("Invalid launch payload")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request payload"})
		return
	}

	launch, err := s.db.CreateLaunch(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, launch)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps store errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid launch", Fields: verr.Fields})
	case errors.Is(err, models.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	case errors.Is(err, models.ErrPersistenceUnavailable):
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Launch store unavailable")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Service Unavailable"})
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Launch store failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
