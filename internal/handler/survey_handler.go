package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// SurveyHandler serves survey listing, authoring and statistics.
type SurveyHandler struct {
	service service.SurveyService
	logger  zerolog.Logger
}

// NewSurveyHandler constructs the handler.
func NewSurveyHandler(service service.SurveyService, logger zerolog.Logger) *SurveyHandler {
	return &SurveyHandler{
		service: service,
		logger:  logger.With().Str("component", "survey_handler").Logger(),
	}
}

// Register wires the survey routes.
func (h *SurveyHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/", auth, h.list)
	router.Get("/my-surveys", auth, h.mine)
	router.Get("/available", auth, h.available)
	router.Get("/:id/statistics", auth, h.statistics)
	router.Get("/:id", auth, h.get)
	router.Post("/", auth, staffReviewers, h.create)
	router.Put("/:id", auth, staffReviewers, h.update)
	router.Delete("/:id", auth, adminOnly, h.delete)
}

func (h *SurveyHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	isActive, err := parseQueryBool(c, "isActive")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid isActive filter")
	}

	result, err := h.service.List(requestContext(c), dto.SurveyListRequest{
		TargetAudience: c.Query("targetAudience"),
		IsActive:       isActive,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list surveys")
	}

	return utils.OK(c, result.Items, "surveys retrieved", result.Pagination)
}

func (h *SurveyHandler) mine(c *fiber.Ctx) error {
	surveys, err := h.service.ListMine(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list surveys")
	}
	return utils.SendSuccess(c, "surveys retrieved", surveys)
}

func (h *SurveyHandler) available(c *fiber.Ctx) error {
	surveys, err := h.service.ListAvailable(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list available surveys")
	}
	return utils.SendSuccess(c, "available surveys retrieved", surveys)
}

func (h *SurveyHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	survey, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load survey")
	}
	return utils.SendSuccess(c, "survey retrieved", survey)
}

func (h *SurveyHandler) statistics(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	stats, err := h.service.Statistics(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load survey statistics")
	}
	return utils.SendSuccess(c, "survey statistics retrieved", stats)
}

func (h *SurveyHandler) create(c *fiber.Ctx) error {
	var req dto.SurveyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	survey, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create survey")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "survey created", survey)
}

func (h *SurveyHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	var req dto.SurveyUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	survey, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update survey")
	}
	return utils.SendSuccess(c, "survey updated", survey)
}

func (h *SurveyHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete survey")
	}
	return utils.SendSuccess(c, "survey deleted", nil)
}
