package loader

import (
	"context"
	"os"
	"path/filepath"
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
)

func TestInferValue(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"129.9", 129.9},
		{"sao paulo", "sao paulo"},
		{"2017-10-02 10:56:33", "2017-10-02 10:56:33"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, inferValue(c.in), "input %q", c.in)
	}
}

func TestLoaderLoadReplacesCollection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

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

	csvPath := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"order_id,price,approved,note\n"+
			"o1,129.9,true,gift wrap\n"+
			"o2,,false,\n",
	), 0644))

	loader, err := New(ctx, uri, "shop", WithBatchSize(1))
	require.NoError(t, err)
	defer loader.Close(ctx)

	// preexisting documents are replaced by the load
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)
	coll := client.Database("shop").Collection("orders")
	_, err = coll.InsertOne(ctx, bson.M{"order_id": "stale"})
	require.NoError(t, err)

	result, err := loader.Load(ctx, csvPath, "orders")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, []string{"order_id"}, result.Indexes)

	count, err := coll.CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var doc bson.M
	require.NoError(t, coll.FindOne(ctx, bson.M{"order_id": "o1"}).Decode(&doc))
	assert.Equal(t, 129.9, doc["price"])
	assert.Equal(t, true, doc["approved"])
	assert.Equal(t, "gift wrap", doc["note"])

	require.NoError(t, coll.FindOne(ctx, bson.M{"order_id": "o2"}).Decode(&doc))
	assert.Nil(t, doc["price"])
	assert.Nil(t, doc["note"])

	cursor, err := coll.Indexes().List(ctx)
	require.NoError(t, err)
	var indexes []bson.M
	require.NoError(t, cursor.All(ctx, &indexes))
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx["name"].(string))
	}
	assert.Contains(t, names, "order_id_1")
}
