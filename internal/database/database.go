package database

import (
	"context"
	"fmt"

	"launch-tracker/internal/config"
	"launch-tracker/internal/models"

	"github.com/rs/zerolog"
)

// Service represents a store of launch records.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health(ctx context.Context) map[string]string

	// Close releases the backend connection.
	// It returns an error if the connection cannot be closed.
	Close(ctx context.Context) error

	// ListLaunches returns every launch in insertion order.
	ListLaunches(ctx context.Context) ([]models.Launch, error)

	// CreateLaunch applies the creation policy to the candidate, assigns the
	// next flight number and stores the result. Invalid candidates are
	// rejected with models.ErrInvalidInput before a number is allocated.
	CreateLaunch(ctx context.Context, input models.LaunchInput) (models.Launch, error)
}

// Open returns the store selected by cfg.StoreDriver, connected and seeded.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (Service, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Info().Msg("Using in-memory launch store")
		return NewMemoryStore(), nil
	case config.DriverMongo:
		s, err := ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDatabase, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := ConnectPostgres(ctx, cfg.DatabaseURL, cfg.MigrationsPath, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, models.ErrPersistenceUnavailable, err)
}
