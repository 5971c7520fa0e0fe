package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/handler"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/service"
)

type mockFaqService struct {
	lastCategory string
	lastActive   *bool
	lastCaller   service.Principal
	created      dto.FaqCreateRequest
	items        []dto.FaqResponse
	err          error
}

func (m *mockFaqService) List(_ context.Context, category string, isActive *bool) ([]dto.FaqResponse, error) {
	m.lastCategory = category
	m.lastActive = isActive
	return m.items, m.err
}

func (m *mockFaqService) Categories(context.Context) ([]string, error) {
	return []string{"account"}, m.err
}

func (m *mockFaqService) Get(_ context.Context, id uint) (dto.FaqResponse, error) {
	if m.err != nil {
		return dto.FaqResponse{}, m.err
	}
	return dto.FaqResponse{ID: id, Question: "How?"}, nil
}

func (m *mockFaqService) Create(_ context.Context, caller service.Principal, req dto.FaqCreateRequest) (dto.FaqResponse, error) {
	m.lastCaller = caller
	m.created = req
	if m.err != nil {
		return dto.FaqResponse{}, m.err
	}
	return dto.FaqResponse{ID: 7, Question: req.Question, CreatedBy: caller.UserID}, nil
}

func (m *mockFaqService) Update(_ context.Context, _ service.Principal, id uint, _ dto.FaqUpdateRequest) (dto.FaqResponse, error) {
	return dto.FaqResponse{ID: id}, m.err
}

func (m *mockFaqService) Delete(context.Context, service.Principal, uint) error {
	return m.err
}

func newFaqApp(svc service.FaqService, auth fiber.Handler) *fiber.App {
	app := fiber.New()
	handler.NewFaqHandler(svc, testLogger()).Register(app.Group("/api/faqs"), auth)
	return app
}

func TestFaqHandler_PublicListPassesFilters(t *testing.T) {
	svc := &mockFaqService{items: []dto.FaqResponse{{ID: 1, Question: "How?"}}}
	app := newFaqApp(svc, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/faqs?category=account&isActive=false", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "account", svc.lastCategory)
	require.NotNil(t, svc.lastActive)
	require.False(t, *svc.lastActive)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/faqs/by-category/general", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "general", svc.lastCategory)
	require.Nil(t, svc.lastActive)
}

func TestFaqHandler_InvalidFilter(t *testing.T) {
	app := newFaqApp(&mockFaqService{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/faqs?isActive=maybe", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFaqHandler_CreateRequiresAdmin(t *testing.T) {
	svc := &mockFaqService{}
	app := newFaqApp(svc, asUser(5, models.RoleStudent))

	req := httptest.NewRequest(http.MethodPost, "/api/faqs", strings.NewReader(`{"question":"Q","answer":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Empty(t, svc.created.Question)
}

func TestFaqHandler_CreateAsAdmin(t *testing.T) {
	svc := &mockFaqService{}
	app := newFaqApp(svc, asUser(1, models.RoleAdmin))

	req := httptest.NewRequest(http.MethodPost, "/api/faqs", strings.NewReader(`{"question":"Q","answer":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	var created dto.FaqResponse
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.Equal(t, uint(1), created.CreatedBy)
	require.Equal(t, uint(1), svc.lastCaller.UserID)
	require.Equal(t, models.RoleAdmin, svc.lastCaller.Role)
}

func TestFaqHandler_ErrorMapping(t *testing.T) {
	validationErr := validator.New(validator.WithRequiredStructEnabled()).Struct(dto.FaqCreateRequest{})
	require.Error(t, validationErr)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "not found", err: service.ErrFaqNotFound, status: fiber.StatusNotFound, message: "faq not found"},
		{name: "forbidden", err: service.ErrAccessDenied, status: fiber.StatusForbidden, message: "you do not have access to this resource"},
		{name: "business rule", err: service.ErrEmptyAfterSanitize, status: fiber.StatusBadRequest, message: "content is empty after sanitization"},
		{name: "validation", err: validationErr, status: fiber.StatusBadRequest, message: "validation failed"},
		{name: "unexpected", err: errors.New("connection reset by peer"), status: fiber.StatusInternalServerError, message: "failed to create faq"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newFaqApp(&mockFaqService{err: tc.err}, asUser(1, models.RoleAdmin))

			req := httptest.NewRequest(http.MethodPost, "/api/faqs", strings.NewReader(`{"question":"Q","answer":"A"}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var body envelope
			decodeResponse(t, resp, &body)
			require.False(t, body.Success)
			require.Equal(t, tc.message, body.Message)
			if tc.name == "validation" {
				var details []map[string]string
				require.NoError(t, json.Unmarshal(body.Details, &details))
				require.NotEmpty(t, details)
				require.Equal(t, "required", details[0]["rule"])
			}
		})
	}
}

func TestFaqHandler_RejectsMalformedID(t *testing.T) {
	app := newFaqApp(&mockFaqService{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/faqs/abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
