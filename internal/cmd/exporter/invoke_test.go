package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"text/template"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/turbolytics/scribe/internal/catalog"
)

func TestIntegrationExporterInvoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	t.Run("partial failure", func(t *testing.T) {
		ctx := context.Background()

		// Start a MongoDB container
		mongoContainer, err := mongodb.Run(ctx, "mongo:6",
			testcontainers.WithWaitStrategy(
				wait.ForLog("Waiting for connections").
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err)

		t.Cleanup(func() {
			if err := mongoContainer.Terminate(ctx); err != nil {
				t.Fatalf("failed to terminate mongoContainer: %s", err)
			}
		})

		connStr, err := mongoContainer.ConnectionString(ctx)
		require.NoError(t, err)

		// Seed two collections. The second order introduces a column the
		// first one lacks.
		client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(connStr))
		require.NoError(t, err)
		defer client.Disconnect(ctx)

		db := client.Database("shop")
		_, err = db.Collection("customers").InsertMany(ctx, []interface{}{
			bson.M{"customer_id": "c1", "name": "ada", "address": bson.M{"city": "sao paulo", "state": "SP"}},
			bson.M{"customer_id": "c2", "name": "grace", "address": bson.M{"city": "rio de janeiro", "state": "RJ"}},
			bson.M{"customer_id": "c3", "name": "lin", "address": bson.M{"city": "campinas", "state": "SP"}},
		})
		require.NoError(t, err)
		_, err = db.Collection("orders").InsertMany(ctx, []interface{}{
			bson.M{"order_id": "o1", "price": 129.9, "approved": true},
			bson.M{"order_id": "o2", "price": 45.0, "approved": false, "note": "rush"},
		})
		require.NoError(t, err)

		// Create a temporary directory for the export
		tempDir, err := os.MkdirTemp("", "export")
		require.NoError(t, err)
		defer os.RemoveAll(tempDir)

		// Create a YAML config file in the temporary directory
		configPath := filepath.Join(tempDir, "config.yml")
		configTemplate := `
exporter:
  source:
    uri: "{{.ConnStr}}"
    database: shop

  transform:
    max_depth: 3

  preserver:
    type: csv

  repository:
    type: local
    local:
      path: "{{.TempDir}}"`

		tmpl, err := template.New("config").Parse(configTemplate)
		require.NoError(t, err)

		configData := struct {
			ConnStr string
			TempDir string
		}{
			ConnStr: connStr,
			TempDir: tempDir,
		}

		configFile, err := os.Create(configPath)
		require.NoError(t, err)
		defer configFile.Close()

		err = tmpl.Execute(configFile, configData)
		require.NoError(t, err)

		bs, err := os.ReadFile(configPath)
		assert.NoError(t, err)
		fmt.Println(string(bs))

		// Call the Cobra invoke command entry point. One of the requested
		// collections does not exist, so the command reports a failure but
		// still exports the others.
		cmd := newInvokeCommand()
		cmd.SetArgs([]string{
			"--config", configPath,
			"--collections", "customers,orders,missing",
		})
		err = cmd.ExecuteContext(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 failed")

		// Verify the customers artifact
		customers := readArtifact(t, filepath.Join(tempDir, "customers.csv"))
		require.Len(t, customers, 4)
		assert.Equal(t, []string{"_id", "address_city", "address_state", "customer_id", "name"}, customers[0])

		// Verify the orders artifact grew the note column for every row
		orders := readArtifact(t, filepath.Join(tempDir, "orders.csv"))
		require.Len(t, orders, 3)
		assert.Equal(t, []string{"_id", "approved", "note", "order_id", "price"}, orders[0])
		assert.Equal(t, []string{"true", "", "o1", "129.9"}, orders[1][1:])
		assert.Equal(t, []string{"false", "rush", "o2", "45"}, orders[2][1:])

		// No artifact for the missing collection
		_, err = os.Stat(filepath.Join(tempDir, "missing.csv"))
		assert.True(t, os.IsNotExist(err))

		// Verify the catalog.json written to the temp directory
		catalogPath := filepath.Join(tempDir, "catalog.json")
		data, err := os.ReadFile(catalogPath)
		require.NoError(t, err)

		var cat catalog.Catalog
		err = json.Unmarshal(data, &cat)
		require.NoError(t, err)

		assert.Equal(t, true, cat.Completed)
		assert.Equal(t, 2, cat.Succeeded)
		assert.Equal(t, 1, cat.Failed)
		assert.Equal(t, 5, cat.TotalDocuments)
		require.Len(t, cat.Collections, 3)
		assert.Equal(t, catalog.StatusSucceeded, cat.Collections[0].Status)
		assert.NotZero(t, cat.Collections[0].SizeBytes)
		assert.Equal(t, "missing", cat.Collections[2].Name)
		assert.Equal(t, catalog.StatusFailed, cat.Collections[2].Status)
		assert.Contains(t, cat.Collections[2].Error, "collection not found")
	})
}

func readArtifact(t *testing.T, path string) [][]string {
	t.Helper()
	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(bs)).ReadAll()
	require.NoError(t, err)
	return rows
}
