package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-go-api/internal/utils"
)

func respond(t *testing.T, handler fiber.Handler) (int, map[string]interface{}) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestEnvelopeShapes(t *testing.T) {
	cases := []struct {
		name       string
		handler    fiber.Handler
		status     int
		success    bool
		message    string
		presentKey string
		absentKeys []string
	}{
		{
			name: "ok with meta",
			handler: func(c *fiber.Ctx) error {
				return utils.OK(c, []int{1, 2}, "", fiber.Map{"page": 1, "total": 2})
			},
			status: fiber.StatusOK, success: true, message: "success",
			presentKey: "meta", absentKeys: []string{"details"},
		},
		{
			name: "created",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "survey created", fiber.Map{"id": 7})
			},
			status: fiber.StatusCreated, success: true, message: "survey created",
			presentKey: "data", absentKeys: []string{"meta", "details"},
		},
		{
			name: "zero status falls back to 200",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, 0, "", nil)
			},
			status: fiber.StatusOK, success: true, message: "success",
			absentKeys: []string{"data"},
		},
		{
			name: "error",
			handler: func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusNotFound, "survey not found")
			},
			status: fiber.StatusNotFound, success: false, message: "survey not found",
			absentKeys: []string{"data", "details"},
		},
		{
			name: "fail with details",
			handler: func(c *fiber.Ctx) error {
				return utils.Fail(c, fiber.StatusBadRequest, "", []fiber.Map{{"field": "SurveyID", "rule": "required"}})
			},
			status: fiber.StatusBadRequest, success: false, message: "error",
			presentKey: "details", absentKeys: []string{"data"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := respond(t, tc.handler)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.success, body["success"])
			assert.Equal(t, tc.message, body["message"])
			if tc.presentKey != "" {
				assert.Contains(t, body, tc.presentKey)
			}
			for _, key := range tc.absentKeys {
				assert.NotContains(t, body, key)
			}
		})
	}
}
