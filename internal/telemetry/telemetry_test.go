package telemetry

import (
	"bytes"
	"context"
	"testing"

	"ctchen222/tictactoe-engine/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitOtel_Disabled(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), config.Telemetry{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitOtel_StdoutTracesOnly(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := InitOtel(context.Background(), config.Telemetry{
		Enabled:        true,
		ServiceName:    "tic-tac-toe-test",
		ServiceVersion: "v0.0.0",
		StdoutTraces:   true,
	}, WithTraceWriter(&buf))
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "session.Move")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "session.Move")
	assert.Contains(t, buf.String(), "tic-tac-toe-test")
}
