package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ConvertLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ConvertLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ConvertLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ConvertLogLevel("bogus"))
}

func TestLogrusHandler(t *testing.T) {
	var buf bytes.Buffer
	lr := logrus.New()
	lr.SetOutput(&buf)
	lr.SetFormatter(&logrus.JSONFormatter{})
	lr.SetLevel(logrus.InfoLevel)

	log := slog.New(NewLogrusHandler(lr)).With("relay", 3).WithGroup("peel")
	log.Debug("hidden")
	log.Warn("rejected", "err", errors.New("bad tag"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rejected", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, float64(3), entry["relay"])
	assert.Equal(t, "bad tag", entry["peel.err"])
}
