package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkshelf/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 100, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=0", 100, 0},
		{"?limit=-5&offset=-1", 100, 0},
		{"?limit=9999", maxPaginationLimit, 0},
	}

	for _, tc := range cases {
		app := fiber.New()
		var got Pagination
		app.Get("/", func(c *fiber.Ctx) error {
			got = parsePagination(c, 100)
			return nil
		})
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.limit, got.Limit, tc.query)
		assert.Equal(t, tc.offset, got.Offset, tc.query)
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, raw := range []string{"0", "-3", "abc"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+raw, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)

		body := decodeError(t, resp)
		assert.Equal(t, "Invalid ID", body.Error)
		assert.Equal(t, models.CodeValidation, body.Code)
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "link ID", humanizeParam("linkId"))
	assert.Equal(t, "playlist item ID", humanizeParam("playlistItemId"))
	assert.Equal(t, "slug", humanizeParam("slug"))
}

func TestMapServiceError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation":   {models.NewValidationError("x"), http.StatusBadRequest},
		"unauthorized": {models.NewUnauthorizedError("x"), http.StatusUnauthorized},
		"forbidden":    {models.NewForbiddenError("x"), http.StatusForbidden},
		"not found":    {models.NewNotFoundError("Playlist", 1), http.StatusNotFound},
		"conflict":     {models.NewConflictError("x"), http.StatusConflict},
		"internal":     {models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		"plain":        {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, mapServiceError(tc.err))
		})
	}
}
