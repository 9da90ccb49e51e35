package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, "json")

	l.Info("search completed", "query", "climate", "processed_count", 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "search completed", entry["msg"])
	assert.Equal(t, "climate", entry["query"])
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false, "text").Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true, "text").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, Logger, OrDefault(nil))
}
