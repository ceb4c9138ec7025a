package server

import (
	"fmt"
	"net/http"
	"time"

	"launch-tracker/internal/config"
	"launch-tracker/internal/database"

	"github.com/rs/zerolog"
)

type Server struct {
	port           int
	db             database.Service
	log            zerolog.Logger
	staticDir      string
	allowedOrigins []string
	allowAnyOrigin bool
	trustProxy     bool
	limiter        *visitorLimiter
}

// NewServer wires the launch store into an http.Server listening on cfg.Port.
func NewServer(cfg config.Config, db database.Service, log zerolog.Logger) *http.Server {
	s := &Server{
		port:           cfg.Port,
		db:             db,
		log:            log,
		staticDir:      cfg.StaticDir,
		allowedOrigins: cfg.AllowedOrigins(),
		allowAnyOrigin: cfg.IsDevelopment(),
		trustProxy:     cfg.TrustProxy,
		limiter:        newVisitorLimiter(cfg.RateLimit, cfg.RateBurst),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
