package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.WithField("route", "chat").Debug("entered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "entered", entry["msg"])
	assert.Equal(t, "chat", entry["route"])
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNewAppendsToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "pot.log")
	logger, closer, err := New(Options{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	t.Parallel()

	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)

	_, _, err = New(Options{Format: "xml"})
	require.Error(t, err)
}
