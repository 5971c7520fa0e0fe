package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/handler"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/service"
)

type mockAuditLogService struct {
	lastRequest dto.AuditLogListRequest
	lastDays    int
}

func (m *mockAuditLogService) List(_ context.Context, _ service.Principal, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	m.lastRequest = req
	return dto.AuditLogListResponse{Pagination: dto.NewPaginationMeta(1, 50, 0)}, nil
}

func (m *mockAuditLogService) Get(_ context.Context, _ service.Principal, id uint) (dto.AuditLogResponse, error) {
	return dto.AuditLogResponse{ID: id}, nil
}

func (m *mockAuditLogService) Tables(context.Context, service.Principal) ([]string, error) {
	return []string{"users"}, nil
}

func (m *mockAuditLogService) Actions(context.Context, service.Principal) ([]string, error) {
	return []string{models.AuditInsert}, nil
}

func (m *mockAuditLogService) Statistics(context.Context, service.Principal, *time.Time, *time.Time) (dto.AuditStatisticsResponse, error) {
	return dto.AuditStatisticsResponse{}, nil
}

func (m *mockAuditLogService) Cleanup(_ context.Context, _ service.Principal, days int) (dto.AuditCleanupResponse, error) {
	m.lastDays = days
	return dto.AuditCleanupResponse{DeletedCount: 3}, nil
}

func newAuditApp(svc service.AuditLogService, role string) *fiber.App {
	app := fiber.New()
	handler.NewAuditLogHandler(svc, testLogger()).Register(app.Group("/api/auditlogs"), asUser(1, role))
	return app
}

func TestAuditLogHandler_ListFilters(t *testing.T) {
	svc := &mockAuditLogService{}
	app := newAuditApp(svc, models.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auditlogs?tableName=faqs&userId=3&action=UPD&fromDate=2024-03-01&pageSize=20", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "faqs", svc.lastRequest.TableName)
	require.Equal(t, "UPD", svc.lastRequest.Action)
	require.Equal(t, 20, svc.lastRequest.PageSize)
	require.NotNil(t, svc.lastRequest.UserID)
	require.Equal(t, uint(3), *svc.lastRequest.UserID)
	require.NotNil(t, svc.lastRequest.From)
	require.Nil(t, svc.lastRequest.To)
}

func TestAuditLogHandler_ScopedRoutes(t *testing.T) {
	svc := &mockAuditLogService{}
	app := newAuditApp(svc, models.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auditlogs/table/surveys?recordId=14", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "surveys", svc.lastRequest.TableName)
	require.NotNil(t, svc.lastRequest.RecordID)
	require.Equal(t, uint(14), *svc.lastRequest.RecordID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/auditlogs/user/8", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(8), *svc.lastRequest.UserID)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/auditlogs/cleanup?daysToKeep=30", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 30, svc.lastDays)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/auditlogs/tables", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuditLogHandler_AdminOnly(t *testing.T) {
	app := newAuditApp(&mockAuditLogService{}, models.RoleFaculty)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auditlogs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuditLogHandler_RejectsBadFilters(t *testing.T) {
	app := newAuditApp(&mockAuditLogService{}, models.RoleAdmin)

	for _, target := range []string{
		"/api/auditlogs?userId=abc",
		"/api/auditlogs?toDate=soon",
		"/api/auditlogs/table/users?recordId=-1",
		"/api/auditlogs/user/0",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}
}
