package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumentedApp(t *testing.T) (*fiber.App, *PrometheusMiddleware) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/pipelines/:name", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, m
}

func TestPrometheusMiddleware_Handler(t *testing.T) {
	t.Run("counts requests by route pattern", func(t *testing.T) {
		app, m := newInstrumentedApp(t)

		for _, target := range []string{"/pipelines/churn-build", "/pipelines/fraud-build"} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
		}

		// Both requests fold into the same route pattern label.
		count := testutil.ToFloat64(m.requestCount.WithLabelValues(http.MethodGet, "/pipelines/:name", "200"))
		assert.Equal(t, float64(2), count)
		assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
	})

	t.Run("errored requests carry the error status", func(t *testing.T) {
		app, m := newInstrumentedApp(t)
		app.Get("/boom", func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTeapot, "boom")
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusTeapot, resp.StatusCode)

		count := testutil.ToFloat64(m.requestCount.WithLabelValues(http.MethodGet, "/boom", "418"))
		assert.Equal(t, float64(1), count)
	})

	t.Run("the metrics endpoint is not counted", func(t *testing.T) {
		app, m := newInstrumentedApp(t)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
	})
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
