package mongo

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/turbolytics/scribe/internal"
)

func startMongo(t *testing.T, ctx context.Context) string {
	t.Helper()

	mongoContainer, err := mongodb.Run(ctx, "mongo:6",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate mongoContainer: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

func seedCustomers(t *testing.T, ctx context.Context, uri string, database string) {
	t.Helper()

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	_, err = client.Database(database).Collection("customers").InsertMany(ctx, []interface{}{
		bson.M{"customer_id": "c1", "name": "ada", "address": bson.M{"city": "sao paulo", "state": "SP"}},
		bson.M{"customer_id": "c2", "name": "grace", "address": bson.M{"city": "rio de janeiro", "state": "RJ"}},
		bson.M{"customer_id": "c3", "name": "lin", "address": bson.M{"city": "campinas", "state": "SP"}},
	})
	require.NoError(t, err)
}

func TestSourceSnapshotReadsAllDocuments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	uri := startMongo(t, ctx)
	seedCustomers(t, ctx, uri, "shop")

	source, err := NewSource(ctx, uri, "shop", WithBatchSize(2))
	require.NoError(t, err)
	defer source.Close(ctx)

	collections, err := source.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers"}, collections)

	count, err := source.Count(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	snapshot, err := source.Snapshot(ctx, "customers")
	require.NoError(t, err)
	defer snapshot.Close(ctx)

	var records []*internal.Record
	for {
		record, err := snapshot.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		records = append(records, record)
	}

	require.Len(t, records, 3)
	for _, record := range records {
		m := record.Map()
		assert.Contains(t, m, "_id")
		assert.Contains(t, m, "customer_id")
		assert.Contains(t, m, "address")
	}
}

func TestSourceSnapshotHonorsLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	uri := startMongo(t, ctx)
	seedCustomers(t, ctx, uri, "shop")

	source, err := NewSource(ctx, uri, "shop", WithLimit(2))
	require.NoError(t, err)
	defer source.Close(ctx)

	snapshot, err := source.Snapshot(ctx, "customers")
	require.NoError(t, err)
	defer snapshot.Close(ctx)

	var n int
	for {
		_, err := snapshot.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)
}

func TestSourceSnapshotMissingCollection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	uri := startMongo(t, ctx)
	seedCustomers(t, ctx, uri, "shop")

	source, err := NewSource(ctx, uri, "shop")
	require.NoError(t, err)
	defer source.Close(ctx)

	_, err = source.Snapshot(ctx, "no_such_collection")
	assert.True(t, errors.Is(err, internal.ErrCollectionNotFound))
}

func TestNewSourceUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	_, err := NewSource(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=500&connectTimeoutMS=500", "shop")
	assert.True(t, errors.Is(err, internal.ErrSourceUnavailable))
}
