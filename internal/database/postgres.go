package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"launch-tracker/internal/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	// PostgreSQL driver
	_ "github.com/jackc/pgx/v5/stdlib"

	// Migration libraries
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// PostgresStore keeps launches in a PostgreSQL table. Flight numbers come
// from a sequence starting after the seed launch.
type PostgresStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// ConnectPostgres applies pending migrations from migrationsPath and opens a
// connection pool to databaseURL.
func ConnectPostgres(ctx context.Context, databaseURL, migrationsPath string, log zerolog.Logger) (*PostgresStore, error) {
	if err := Migrate(migrationsPath, databaseURL, log); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("ping postgres", err)
	}
	log.Info().Msg("Postgres connection established")

	return newPostgresStore(db, log), nil
}

func newPostgresStore(db *sql.DB, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log}
}

// Migrate brings the schema up to date. Running it against a current schema
// is a no-op.
func Migrate(migrationsPath, databaseURL string, log zerolog.Logger) error {
	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return sqlErr("init migrations", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Closing migrator failed")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return sqlErr("apply migrations", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema migrated")
	}
	return nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *PostgresStore) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := map[string]string{"driver": "postgres"}

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.log.Error().Err(err).Msg("Postgres health check failed")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}
	return stats
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.log.Info().Msg("Disconnected from postgres")
	return s.db.Close()
}

func (s *PostgresStore) ListLaunches(ctx context.Context) ([]models.Launch, error) {
	query := `
		SELECT flight_number, mission, rocket, launch_date, destination, customer, upcoming, success
		FROM launches
		ORDER BY flight_number
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, sqlErr("query launches", err)
	}
	defer rows.Close()

	launches := []models.Launch{}
	for rows.Next() {
		var (
			launch   models.Launch
			customer []byte
		)
		err := rows.Scan(
			&launch.FlightNumber,
			&launch.Mission,
			&launch.Rocket,
			&launch.LaunchDate,
			&launch.Destination,
			&customer,
			&launch.Upcoming,
			&launch.Success,
		)
		if err != nil {
			return nil, sqlErr("scan launch", err)
		}
		if err := json.Unmarshal(customer, &launch.Customer); err != nil {
			return nil, fmt.Errorf("decode customer of flight %d: %w", launch.FlightNumber, err)
		}
		launch.LaunchDate = launch.LaunchDate.UTC()
		launches = append(launches, launch)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlErr("iterate launches", err)
	}
	return launches, nil
}

func (s *PostgresStore) CreateLaunch(ctx context.Context, input models.LaunchInput) (models.Launch, error) {
	// the sequence assigns the real number in the INSERT below
	launch, err := models.NewLaunch(input, 0)
	if err != nil {
		return models.Launch{}, err
	}

	customer, err := json.Marshal(launch.Customer)
	if err != nil {
		return models.Launch{}, fmt.Errorf("encode customer: %w", err)
	}

	query := `
		INSERT INTO launches (mission, rocket, launch_date, destination, customer, upcoming, success)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING flight_number
	`
	err = s.db.QueryRowContext(ctx, query,
		launch.Mission,
		launch.Rocket,
		launch.LaunchDate,
		launch.Destination,
		string(customer),
		launch.Upcoming,
		launch.Success,
	).Scan(&launch.FlightNumber)
	if err != nil {
		return models.Launch{}, sqlErr("insert launch", err)
	}
	return launch, nil
}

func sqlErr(op string, err error) error {
	var (
		netErr     net.Error
		connectErr *pgconn.ConnectError
	)
	if errors.As(err, &netErr) ||
		errors.As(err, &connectErr) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
