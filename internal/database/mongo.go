package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"launch-tracker/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	launchesCollection = "launches"
	countersCollection = "counters"
	flightNumberKey    = "flightNumber"
)

// MongoStore keeps launches in a MongoDB collection. Flight numbers come from
// an atomically incremented counter document, so concurrent writers in any
// number of processes never share a number.
type MongoStore struct {
	client   *mongo.Client
	launches *mongo.Collection
	counters *mongo.Collection
	log      zerolog.Logger
}

type flightCounter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// ConnectMongo dials uri, verifies the connection and seeds the database.
func ConnectMongo(ctx context.Context, uri, database string, log zerolog.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("connect mongo", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable("ping mongo", err)
	}
	log.Info().Str("database", database).Msg("MongoDB connectivity is ready")

	s := newMongoStore(client.Database(database), log)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := s.seed(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func newMongoStore(db *mongo.Database, log zerolog.Logger) *MongoStore {
	return &MongoStore{
		client:   db.Client(),
		launches: db.Collection(launchesCollection),
		counters: db.Collection(countersCollection),
		log:      log,
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.launches.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: flightNumberKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return mongoErr("create launch index", err)
	}
	return nil
}

// seed inserts the seed launch if absent and makes sure the counter never
// sits below its flight number.
func (s *MongoStore) seed(ctx context.Context) error {
	seed := models.SeedLaunch()
	upsert := options.Update().SetUpsert(true)

	_, err := s.launches.UpdateOne(ctx,
		bson.D{{Key: flightNumberKey, Value: seed.FlightNumber}},
		bson.D{{Key: "$setOnInsert", Value: seed}},
		upsert,
	)
	if err != nil {
		return mongoErr("seed launch", err)
	}

	_, err = s.counters.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: flightNumberKey}},
		bson.D{{Key: "$max", Value: bson.D{{Key: "seq", Value: seed.FlightNumber}}}},
		upsert,
	)
	if err != nil {
		return mongoErr("seed flight counter", err)
	}
	return nil
}

func (s *MongoStore) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := map[string]string{"driver": "mongo"}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.log.Error().Err(err).Msg("MongoDB health check failed")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	if n, err := s.launches.EstimatedDocumentCount(ctx); err == nil {
		stats["launches"] = strconv.FormatInt(n, 10)
	}
	return stats
}

func (s *MongoStore) Close(ctx context.Context) error {
	s.log.Info().Msg("Disconnecting from MongoDB")
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) ListLaunches(ctx context.Context) ([]models.Launch, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: flightNumberKey, Value: 1}}).
		SetProjection(bson.D{{Key: "_id", Value: 0}})

	cursor, err := s.launches.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, mongoErr("find launches", err)
	}

	launches := []models.Launch{}
	if err := cursor.All(ctx, &launches); err != nil {
		return nil, mongoErr("decode launches", err)
	}
	return launches, nil
}

func (s *MongoStore) CreateLaunch(ctx context.Context, input models.LaunchInput) (models.Launch, error) {
	if err := input.Validate(); err != nil {
		return models.Launch{}, err
	}

	flightNumber, err := s.nextFlightNumber(ctx)
	if err != nil {
		return models.Launch{}, err
	}

	launch, err := models.NewLaunch(input, flightNumber)
	if err != nil {
		return models.Launch{}, err
	}

	if err := s.saveLaunch(ctx, launch); err != nil {
		return models.Launch{}, err
	}
	s.log.Debug().Int64("flight_number", flightNumber).Msg("Launch stored")
	return launch, nil
}

func (s *MongoStore) nextFlightNumber(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter flightCounter
	err := s.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: flightNumberKey}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, mongoErr("allocate flight number", err)
	}
	return counter.Seq, nil
}

// saveLaunch upserts the launch keyed by its flight number.
func (s *MongoStore) saveLaunch(ctx context.Context, launch models.Launch) error {
	_, err := s.launches.UpdateOne(ctx,
		bson.D{{Key: flightNumberKey, Value: launch.FlightNumber}},
		bson.D{{Key: "$set", Value: launch}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return mongoErr("save launch", err)
	}
	return nil
}

func mongoErr(op string, err error) error {
	if mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded) {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
