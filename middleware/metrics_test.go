package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fazamuttaqien/cards/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type RequestMetricsTestSuite struct {
	suite.Suite
	app    *fiber.App
	reader *sdkmetric.ManualReader
}

func (suite *RequestMetricsTestSuite) SetupTest() {
	suite.reader = sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(suite.reader))

	metrics, err := middleware.NewRequestMetrics(provider.Meter("test-cards-http"))
	require.NoError(suite.T(), err)

	suite.app = fiber.New()
	suite.app.Use(metrics.Handle())
	suite.app.Get("/api/fetch", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"cardNumber": "100646930341"})
	})
	suite.app.Delete("/api/delete", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "Mobile number must be 10 digits")
	})
}

func TestRequestMetricsSuite(t *testing.T) {
	suite.Run(t, new(RequestMetricsTestSuite))
}

// requestCounts sums cards.http.requests by route and status.
func (suite *RequestMetricsTestSuite) requestCounts() map[string]int64 {
	var rm metricdata.ResourceMetrics
	require.NoError(suite.T(), suite.reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "cards.http.requests" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(suite.T(), ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(attribute.Key("http.route"))
				status, _ := dp.Attributes.Value(attribute.Key("http.status_code"))
				counts[route.AsString()+" "+status.Emit()] += dp.Value
			}
		}
	}
	return counts
}

func (suite *RequestMetricsTestSuite) TestCountsSuccessByRoute() {
	for range 2 {
		resp, err := suite.app.Test(httptest.NewRequest(http.MethodGet, "/api/fetch?mobileNumber=4354437687", nil))
		require.NoError(suite.T(), err)
		resp.Body.Close()
		assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	}

	assert.Equal(suite.T(), int64(2), suite.requestCounts()["/api/fetch 200"])
}

func (suite *RequestMetricsTestSuite) TestRecordsRenderedErrorStatus() {
	resp, err := suite.app.Test(httptest.NewRequest(http.MethodDelete, "/api/delete?mobileNumber=1", nil))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(suite.T(), int64(1), suite.requestCounts()["/api/delete 400"])
}
