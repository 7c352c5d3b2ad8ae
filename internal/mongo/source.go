package mongo

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/turbolytics/scribe/internal"
)

const DefaultBatchSize = 1000

type SourceOption func(*Source)

func WithLogger(logger *zap.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

func WithBatchSize(batchSize int32) SourceOption {
	return func(s *Source) {
		s.batchSize = batchSize
	}
}

// WithLimit caps the number of documents read per collection. 0 means no
// limit.
func WithLimit(limit int64) SourceOption {
	return func(s *Source) {
		s.limit = limit
	}
}

type Source struct {
	client    *mongo.Client
	database  string
	batchSize int32
	limit     int64
	logger    *zap.Logger
}

// NewSource connects to the document store and verifies it is reachable.
func NewSource(ctx context.Context, uri string, database string, opts ...SourceOption) (*Source, error) {
	s := &Source{
		database:  database,
		batchSize: DefaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrSourceUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", internal.ErrSourceUnavailable, err)
	}

	s.client = client
	return s, nil
}

func (s *Source) Database() string {
	return s.database
}

func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Collections returns every collection name known to the database, sorted.
func (s *Source) Collections(ctx context.Context) ([]string, error) {
	names, err := s.client.Database(s.database).ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrSourceUnavailable, err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Source) Count(ctx context.Context, collection string) (int64, error) {
	return s.client.Database(s.database).Collection(collection).CountDocuments(ctx, bson.M{})
}

// Snapshot opens a forward-only cursor over the collection's documents in
// the store's natural order.
func (s *Source) Snapshot(ctx context.Context, collection string) (*Snapshot, error) {
	names, err := s.client.Database(s.database).ListCollectionNames(ctx, bson.M{"name": collection})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", internal.ErrCollectionNotFound, collection)
	}

	findOpts := options.Find().SetBatchSize(s.batchSize)
	if s.limit > 0 {
		findOpts.SetLimit(s.limit)
	}

	cursor, err := s.client.Database(s.database).Collection(collection).Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("snapshot opened",
		zap.String("collection", collection),
		zap.Int32("batch_size", s.batchSize),
		zap.Int64("limit", s.limit),
	)

	return &Snapshot{
		cursor:     cursor,
		collection: collection,
	}, nil
}

type Snapshot struct {
	cursor     *mongo.Cursor
	collection string
}

func (s *Snapshot) Collection() string {
	return s.collection
}

func (s *Snapshot) Next(ctx context.Context) (*internal.Record, error) {
	if !s.cursor.Next(ctx) {
		if err := s.cursor.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var doc bson.M
	if err := s.cursor.Decode(&doc); err != nil {
		return nil, err
	}

	return internal.NewRecordFromMap(doc), nil
}

func (s *Snapshot) Close(ctx context.Context) error {
	return s.cursor.Close(ctx)
}
