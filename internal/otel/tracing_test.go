package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_SDK_DISABLED", "")

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), "test", slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tracing_configured", entry["msg"])
	assert.Equal(t, false, entry["tracing_enabled"])
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	t.Setenv("OTEL_SDK_DISABLED", "")

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), "test", slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracing_init_failed")
}

func TestEnabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "")
	assert.False(t, enabled(""))
	assert.True(t, enabled("http://collector:4317"))

	t.Setenv("OTEL_SDK_DISABLED", "true")
	assert.False(t, enabled("http://collector:4317"))

	t.Setenv("OTEL_SDK_DISABLED", "false")
	assert.True(t, enabled(""))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler("always_on", "").Description(), "AlwaysOn")
	assert.Contains(t, sampler("always_off", "").Description(), "AlwaysOff")
	assert.Contains(t, sampler("traceidratio", "0.25").Description(), "0.25")
	assert.Contains(t, sampler("parentbased_traceidratio", "bogus").Description(), "ParentBased")
	assert.Contains(t, sampler("unknown", "").Description(), "ParentBased")
}
