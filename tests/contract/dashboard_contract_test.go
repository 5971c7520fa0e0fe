package contract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/handler"
	"github.com/noah-isme/survey-go-api/internal/service"
)

type stubDashboardService struct {
	overview dto.DashboardOverview
}

func (s stubDashboardService) Overview(context.Context, service.Principal) (dto.DashboardOverview, error) {
	return s.overview, nil
}

func (stubDashboardService) RecentActivities(context.Context, service.Principal, int) ([]dto.RecentActivity, error) {
	return nil, nil
}

func (stubDashboardService) Statistics(context.Context, service.Principal, *time.Time, *time.Time) (dto.DashboardStatistics, error) {
	return dto.DashboardStatistics{}, nil
}

func (stubDashboardService) UserGrowth(context.Context, service.Principal, int) ([]dto.DailyCount, error) {
	return nil, nil
}

func (stubDashboardService) ResponsesTrend(context.Context, service.Principal, int) ([]dto.DailyCount, error) {
	return nil, nil
}

func (stubDashboardService) TopSurveys(context.Context, service.Principal, int) ([]dto.TopSurvey, error) {
	return nil, nil
}

func (stubDashboardService) UserDistribution(context.Context, service.Principal) ([]dto.RoleDistribution, error) {
	return nil, nil
}

func (stubDashboardService) PendingApprovals(context.Context, service.Principal) (dto.PendingApprovals, error) {
	return dto.PendingApprovals{}, nil
}

func (stubDashboardService) SystemHealth(context.Context, service.Principal) (dto.SystemHealth, error) {
	return dto.SystemHealth{}, nil
}

func TestDashboardOverviewContract(t *testing.T) {
	schema := compileSchema(t, "dashboard_overview.schema.json")

	svc := stubDashboardService{overview: dto.DashboardOverview{
		TotalUsers:          42,
		PendingSurveys:      3,
		OngoingSurveys:      2,
		OngoingCompetitions: 1,
		GeneratedAt:         time.Now().UTC(),
		CacheHit:            true,
	}}

	app := fiber.New()
	handler.NewDashboardHandler(svc, zerolog.Nop()).Register(app.Group("/api/dashboard"), asAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, schema.Validate(decodePayload(t, resp)))
}

func TestDashboardForbiddenEnvelopeContract(t *testing.T) {
	schema := compileSchema(t, "envelope.schema.json")

	app := fiber.New()
	student := func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(9))
		c.Locals("user_role", "student")
		return c.Next()
	}
	handler.NewDashboardHandler(stubDashboardService{}, zerolog.Nop()).Register(app.Group("/api/dashboard"), student)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	payload := decodePayload(t, resp)
	require.NoError(t, schema.Validate(payload))
	require.Equal(t, false, payload.(map[string]interface{})["success"])
}
