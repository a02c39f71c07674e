package middleware

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"url2pdf/internal/auth"
	"url2pdf/internal/config"
)

func TestRegister_AddsHealthAndRequestID(t *testing.T) {
	app := fiber.New()
	Register(app, config.Default())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	healthReq, _ := http.NewRequest(http.MethodGet, "/ops/health", nil)
	healthResp, err := app.Test(healthReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, healthResp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestRegister_ReadinessProbe(t *testing.T) {
	app := fiber.New()
	Register(app, config.Default(), Options{Ready: func(*fiber.Ctx) bool { return false }})

	req, _ := http.NewRequest(http.MethodGet, "/ops/ready", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRegister_RecoversFromPanics(t *testing.T) {
	app := fiber.New()
	Register(app, config.Default())
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRegister_RateLimiterWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimiter.Enabled = true
	cfg.RateLimiter.Max = 1
	cfg.RateLimiter.Interval = time.Hour

	app := fiber.New()
	Register(app, cfg, Options{Storage: memoryStorage.New()})
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "public-client")
	resp1, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp1.StatusCode)

	resp2, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp2.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	assert.Equal(t, "Too Many Requests", body["error"])
}

func TestRegister_NoRateLimitByDefault(t *testing.T) {
	app := fiber.New()
	Register(app, config.Default())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 100; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func newProtectedApp(iss *auth.Issuer) *fiber.App {
	app := fiber.New()
	app.Post("/gerar-pdf", RequireBearer(iss), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestRequireBearer(t *testing.T) {
	cfg := config.Default().Auth
	cfg.Secret = "bearer-test"
	iss := auth.NewIssuer(cfg)
	app := newProtectedApp(iss)

	token, err := iss.Issue("admin")
	require.NoError(t, err)

	other := cfg
	other.Secret = "someone-else"
	foreign, err := auth.NewIssuer(other).Issue("admin")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
		msg    string
	}{
		{"valid", "Bearer " + token, fiber.StatusOK, ""},
		{"missing", "", fiber.StatusUnauthorized, "Missing or malformed"},
		{"wrong scheme", "Basic " + token, fiber.StatusUnauthorized, "Missing or malformed"},
		{"garbage", "Bearer abc.def.ghi", fiber.StatusUnauthorized, "unauthorized"},
		{"bad signature", "Bearer " + foreign, fiber.StatusUnauthorized, "signature"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "/gerar-pdf", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
			if tc.code != fiber.StatusUnauthorized {
				return
			}
			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, float64(fiber.StatusUnauthorized), body["statusCode"])
			assert.Equal(t, "Unauthorized", body["error"])
			assert.Contains(t, body["message"], tc.msg)
		})
	}
}
