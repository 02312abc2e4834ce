package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "gymdesk", Level: DEBUG})

	log.Component("inventory").Info("Rental recorded", "item_id", "i-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "gymdesk", record[SERVICE])
	assert.Equal(t, "inventory", record[COMPONENT])
	assert.Equal(t, "i-1", record["item_id"])
	assert.Equal(t, "Rental recorded", record["msg"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Level: "WARN", Format: TEXT})

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
