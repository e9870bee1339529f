package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "info", "json"))

	log.Info("order created", "order_id", "o1")

	assert.Contains(t, buf.String(), `"msg":"order created"`)
	assert.Contains(t, buf.String(), `"order_id":"o1"`)
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, "info", "pretty")).With("component", "cleanup")

	log.Debug("hidden")
	log.Error("purge failed", "error", errors.New("boom"), slog.Group("job", "name", "notifications"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "purge failed")
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "job.name")
}
