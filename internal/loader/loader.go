package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const DefaultBatchSize = 1000

// indexColumns get a single field index when present in the CSV header.
var indexColumns = []string{"order_id", "customer_id", "product_id", "seller_id"}

type Option func(*Loader)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func WithBatchSize(batchSize int) Option {
	return func(l *Loader) {
		l.batchSize = batchSize
	}
}

// Loader seeds a document store database from CSV files, one collection per
// file. Loading a collection replaces it wholesale.
type Loader struct {
	client    *mongo.Client
	database  string
	batchSize int
	logger    *zap.Logger
}

func New(ctx context.Context, uri string, database string, opts ...Option) (*Loader, error) {
	l := &Loader{
		database:  database,
		batchSize: DefaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	l.client = client
	return l, nil
}

func (l *Loader) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

// Result describes one imported collection.
type Result struct {
	Collection string
	Documents  int
	Indexes    []string
}

// Load reads one CSV file and replaces the named collection with its rows.
func (l *Loader) Load(ctx context.Context, csvPath string, collection string) (*Result, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return l.load(ctx, f, collection)
}

func (l *Loader) load(ctx context.Context, r io.Reader, collection string) (*Result, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("no header row for collection %s", collection)
	}
	if err != nil {
		return nil, err
	}

	coll := l.client.Database(l.database).Collection(collection)

	if err := coll.Drop(ctx); err != nil {
		return nil, err
	}

	var (
		batch []interface{}
		total int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := coll.InsertMany(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		doc := make(map[string]any, len(header))
		for i, column := range header {
			if i < len(row) {
				doc[column] = inferValue(row[i])
			}
		}
		batch = append(batch, doc)

		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	indexes, err := l.createIndexes(ctx, coll, header)
	if err != nil {
		return nil, err
	}

	l.logger.Info("collection loaded",
		zap.String("collection", collection),
		zap.Int("documents", total),
		zap.Strings("indexes", indexes),
	)

	return &Result{
		Collection: collection,
		Documents:  total,
		Indexes:    indexes,
	}, nil
}

func (l *Loader) createIndexes(ctx context.Context, coll *mongo.Collection, header []string) ([]string, error) {
	present := map[string]bool{}
	for _, h := range header {
		present[h] = true
	}

	var created []string
	for _, column := range indexColumns {
		if !present[column] {
			continue
		}
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: column, Value: 1}},
		})
		if err != nil {
			return created, err
		}
		created = append(created, column)
	}
	return created, nil
}

// inferValue maps a CSV cell back to a typed value. Empty cells become
// nulls and integers stay integers.
func inferValue(s string) any {
	if s == "" {
		return nil
	}

	switch s {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}
