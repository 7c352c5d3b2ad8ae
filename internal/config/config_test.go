package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewScribeFromFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		scribe, err := NewScribeFromFile("../../dev/examples/scribe.yml")
		assert.NoError(t, err)
		assert.NotNil(t, scribe)
		assert.Equal(t, "ecommerce-example-1", scribe.Exporter.Name)
		assert.Equal(t, "brazilian-ecommerce", scribe.Exporter.Source.Database)
		assert.Len(t, scribe.Exporter.Source.Collections, 9)
		assert.Equal(t, int32(1000), scribe.Exporter.Source.BatchSize)
		assert.Equal(t, 3, scribe.Exporter.Transform.MaxDepth)
		assert.Equal(t, "csv", scribe.Exporter.Preserver.Type)
		assert.Equal(t, "local", scribe.Exporter.Repository.Type)
		assert.Equal(t, "exports", scribe.Exporter.Repository.Local.Path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewScribeFromFile("nope.yml")
		assert.Error(t, err)
	})
}
