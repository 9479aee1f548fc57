package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"linkshelf/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		observability.Tracer = prev
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingMiddleware(t *testing.T) {
	sr := recordSpans(t)

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/playlists/:id", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/boom", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusServiceUnavailable, "down") })

	do := func(path string) *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp
	}

	t.Run("named by route template", func(t *testing.T) {
		resp := do("/playlists/42")
		assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

		spans := sr.Ended()
		require.NotEmpty(t, spans)
		span := spans[len(spans)-1]
		assert.Equal(t, "GET /playlists/:id", span.Name())

		route, ok := spanAttr(span, "http.route")
		require.True(t, ok)
		assert.Equal(t, "/playlists/:id", route.AsString())
		user, ok := spanAttr(span, "user.id")
		require.True(t, ok)
		assert.Equal(t, int64(7), user.AsInt64())
		assert.Equal(t, resp.Header.Get("X-Trace-ID"), span.SpanContext().TraceID().String())
	})

	t.Run("server errors mark the span", func(t *testing.T) {
		do("/boom")
		spans := sr.Ended()
		span := spans[len(spans)-1]

		status, ok := spanAttr(span, "http.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(fiber.StatusServiceUnavailable), status.AsInt64())
		assert.Equal(t, codes.Error, span.Status().Code)
	})

	t.Run("unmatched paths keep the raw name", func(t *testing.T) {
		do("/missing")
		spans := sr.Ended()
		span := spans[len(spans)-1]

		assert.Equal(t, "GET /missing", span.Name())
		_, ok := spanAttr(span, "http.route")
		assert.False(t, ok)
		status, _ := spanAttr(span, "http.status_code")
		assert.Equal(t, int64(fiber.StatusNotFound), status.AsInt64())
		assert.Equal(t, codes.Unset, span.Status().Code)
	})

	t.Run("health checks are not traced", func(t *testing.T) {
		before := len(sr.Ended())
		resp := do("/health/live")
		assert.Empty(t, resp.Header.Get("X-Trace-ID"))
		assert.Len(t, sr.Ended(), before)
	})
}
