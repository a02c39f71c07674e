package handlers

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"url2pdf/internal/auth"
	"url2pdf/internal/config"
)

func newLoginApp(issuer TokenIssuer) *fiber.App {
	app := fiber.New()
	app.Post("/login", NewAuthHandler(issuer).HandleLogin)
	return app
}

func TestHandleLogin_IssuesToken(t *testing.T) {
	iss := auth.NewIssuer(config.Default().Auth)
	app := newLoginApp(iss)

	resp, err := app.Test(postJSON("/login", `{"usuario":"admin","senha":"admin123"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["token"])
	_, err = iss.Verify(out["token"])
	assert.NoError(t, err)
}

func TestHandleLogin_RejectsWithGenericMessage(t *testing.T) {
	app := newLoginApp(auth.NewIssuer(config.Default().Auth))

	for _, body := range []string{
		`{"usuario":"admin","senha":"nope"}`,
		`{"usuario":"root","senha":"admin123"}`,
		`{}`,
	} {
		resp, err := app.Test(postJSON("/login", body))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, InvalidCredentialsMessage, out["message"])
		assert.NotContains(t, out, "token")
	}
}

type brokenIssuer struct{}

func (brokenIssuer) Login(string, string) (string, error) { return "", errors.New("sign failed") }

func TestHandleLogin_UnexpectedErrorsPropagate(t *testing.T) {
	app := newLoginApp(brokenIssuer{})
	resp, err := app.Test(postJSON("/login", `{"usuario":"a","senha":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(postJSON("/login", `{"usuario":`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
