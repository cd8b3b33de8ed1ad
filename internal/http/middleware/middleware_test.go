package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	t.Run("propagates the incoming header", func(t *testing.T) {
		app := fiber.New()
		app.Use(RequestID())
		app.Get("/", func(c *fiber.Ctx) error {
			rid, _ := c.Locals(RequestIDLocalKey).(string)
			return c.SendString(rid)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-42")

		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, "req-42", resp.Header.Get(RequestIDHeader))

		var body bytes.Buffer
		_, err = body.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "req-42", body.String())
	})

	t.Run("generates an id when missing", func(t *testing.T) {
		app := fiber.New()
		app.Use(RequestID())
		app.Get("/", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, err)
		rid := resp.Header.Get(RequestIDHeader)
		_, err = uuid.Parse(rid)
		assert.NoError(t, err, "generated request id should be a UUID, got %q", rid)
	})
}

func TestLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer

	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Post("/groups", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/groups?limit=5", nil)
	req.Header.Set(RequestIDHeader, "req-42")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, http.MethodPost, entry["method"])
	assert.Equal(t, "/groups", entry["path"], "query string is not logged")
	assert.Equal(t, float64(fiber.StatusCreated), entry["status"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)

	latency, ok := entry["latency"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, latency, float64(0))
}
