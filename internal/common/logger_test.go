package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	assert.NoError(t, SetupLogger("debug", "json"))
	assert.NoError(t, SetupLogger("", ""))
	assert.Error(t, SetupLogger("verbose", "console"))
	assert.Error(t, SetupLogger("info", "xml"))
}

func TestLogErrorIncludesFields(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))
	defer slog.SetDefault(prev)

	LogError(errors.New("disk full"), "Import failed", Fields{"path": "/tmp/hts.jsonl"})

	out := buf.String()
	require.Contains(t, out, "Import failed")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "/tmp/hts.jsonl")
}

func TestLogInfoIncludesFields(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))
	defer slog.SetDefault(prev)

	LogInfo("Catalog import complete", Fields{"imported": 42})

	out := buf.String()
	require.Contains(t, out, "Catalog import complete")
	assert.Contains(t, out, "imported=42")
}
