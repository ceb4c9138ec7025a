package database

import (
	"context"
	"strconv"
	"sync"

	"launch-tracker/internal/models"
)

// MemoryStore keeps launches in process memory. All access is serialized by
// a single mutex, so number allocation and insertion happen as one step.
type MemoryStore struct {
	mu       sync.Mutex
	launches map[int64]models.Launch
	order    []int64
	latest   int64
}

// NewMemoryStore returns a store holding only the seed launch.
func NewMemoryStore() *MemoryStore {
	seed := models.SeedLaunch()
	return &MemoryStore{
		launches: map[int64]models.Launch{seed.FlightNumber: seed},
		order:    []int64{seed.FlightNumber},
		latest:   seed.FlightNumber,
	}
}

func (s *MemoryStore) Health(ctx context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]string{
		"status":               "up",
		"driver":               "memory",
		"launches":             strconv.Itoa(len(s.order)),
		"latest_flight_number": strconv.FormatInt(s.latest, 10),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) ListLaunches(ctx context.Context) ([]models.Launch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	launches := make([]models.Launch, 0, len(s.order))
	for _, n := range s.order {
		launches = append(launches, clone(s.launches[n]))
	}
	return launches, nil
}

func (s *MemoryStore) CreateLaunch(ctx context.Context, input models.LaunchInput) (models.Launch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	launch, err := models.NewLaunch(input, s.latest+1)
	if err != nil {
		return models.Launch{}, err
	}

	s.latest = launch.FlightNumber
	s.launches[launch.FlightNumber] = launch
	s.order = append(s.order, launch.FlightNumber)
	return clone(launch), nil
}

// clone copies the customer slice so callers never share backing arrays
// with the store.
func clone(l models.Launch) models.Launch {
	l.Customer = append([]string(nil), l.Customer...)
	return l
}
