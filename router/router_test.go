package router_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fazamuttaqien/cards/internal/dto"
	"github.com/fazamuttaqien/cards/router"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: router.ErrorCustomHandler(zap.NewNop())})
	app.Get("/api/plain", func(c *fiber.Ctx) error { return errors.New("connection refused") })
	app.Get("/api/client", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "Mobile number must be 10 digits")
	})
	return app
}

func errorBody(t *testing.T, resp *http.Response) dto.ErrorResponseDto {
	t.Helper()
	defer resp.Body.Close()
	var body dto.ErrorResponseDto
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorCustomHandler(t *testing.T) {
	app := newApp()

	t.Run("plain error becomes 500", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/plain", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := errorBody(t, resp)
		assert.Equal(t, "uri=/api/plain", body.ApiPath)
		assert.Equal(t, http.StatusInternalServerError, body.ErrorCode)
		assert.Equal(t, "connection refused", body.ErrorMessage)
		assert.False(t, body.ErrorTime.IsZero())
	})

	t.Run("fiber error keeps its status", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/client", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := errorBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, body.ErrorCode)
		assert.Equal(t, "Mobile number must be 10 digits", body.ErrorMessage)
	})

	t.Run("unknown route renders as error response", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/missing", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := errorBody(t, resp)
		assert.Equal(t, "uri=/api/missing", body.ApiPath)
	})
}
