package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// DashboardHandler exposes the admin dashboard aggregates.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register wires the dashboard routes behind admin auth.
func (h *DashboardHandler) Register(router fiber.Router, auth fiber.Handler) {
	guarded := router.Group("", withAuth(auth), adminOnly)

	guarded.Get("/overview", h.overview)
	guarded.Get("/recent-activities", h.recentActivities)
	guarded.Get("/statistics", h.statistics)
	guarded.Get("/user-growth", h.userGrowth)
	guarded.Get("/survey-responses-trend", h.responsesTrend)
	guarded.Get("/top-surveys", h.topSurveys)
	guarded.Get("/user-distribution", h.userDistribution)
	guarded.Get("/pending-approvals", h.pendingApprovals)
	guarded.Get("/system-health", h.systemHealth)
}

func (h *DashboardHandler) overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard overview")
	}

	setCacheHeader(c, overview.CacheHit)
	return utils.SendSuccess(c, "dashboard overview", overview)
}

func (h *DashboardHandler) recentActivities(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	activities, err := h.service.RecentActivities(requestContext(c), principal(c), limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load recent activities")
	}
	return utils.SendSuccess(c, "recent activities", activities)
}

func (h *DashboardHandler) statistics(c *fiber.Ctx) error {
	from, err := parseQueryTime(c, "fromDate")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid fromDate")
	}
	to, err := parseQueryTime(c, "toDate")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid toDate")
	}

	stats, err := h.service.Statistics(requestContext(c), principal(c), from, to)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard statistics")
	}
	return utils.SendSuccess(c, "dashboard statistics", stats)
}

func (h *DashboardHandler) userGrowth(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "days")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	growth, err := h.service.UserGrowth(requestContext(c), principal(c), days)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load user growth")
	}
	return utils.SendSuccess(c, "user growth", growth)
}

func (h *DashboardHandler) responsesTrend(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "days")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	trend, err := h.service.ResponsesTrend(requestContext(c), principal(c), days)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load response trend")
	}
	return utils.SendSuccess(c, "survey responses trend", trend)
}

func (h *DashboardHandler) topSurveys(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	surveys, err := h.service.TopSurveys(requestContext(c), principal(c), limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load top surveys")
	}
	return utils.SendSuccess(c, "top surveys", surveys)
}

func (h *DashboardHandler) userDistribution(c *fiber.Ctx) error {
	distribution, err := h.service.UserDistribution(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load user distribution")
	}
	return utils.SendSuccess(c, "user distribution", distribution)
}

func (h *DashboardHandler) pendingApprovals(c *fiber.Ctx) error {
	pending, err := h.service.PendingApprovals(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load pending approvals")
	}
	return utils.SendSuccess(c, "pending approvals", pending)
}

func (h *DashboardHandler) systemHealth(c *fiber.Ctx) error {
	health, err := h.service.SystemHealth(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load system health")
	}
	return utils.SendSuccess(c, "system health", health)
}
