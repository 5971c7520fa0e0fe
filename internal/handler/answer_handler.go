package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// AnswerHandler manages individual answers and answer analytics.
type AnswerHandler struct {
	service service.AnswerService
	logger  zerolog.Logger
}

// NewAnswerHandler constructs the handler.
func NewAnswerHandler(service service.AnswerService, logger zerolog.Logger) *AnswerHandler {
	return &AnswerHandler{
		service: service,
		logger:  logger.With().Str("component", "answer_handler").Logger(),
	}
}

// Register wires the answer routes.
func (h *AnswerHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/response/:responseId", auth, h.listByResponse)
	router.Get("/question/:questionId/statistics", auth, h.questionStatistics)
	router.Get("/survey/:surveyId/summary", auth, h.surveySummary)
	router.Get("/:id", auth, h.get)
	router.Post("/", auth, h.create)
	router.Put("/:id", auth, h.update)
	router.Delete("/:id", auth, h.delete)
}

func (h *AnswerHandler) listByResponse(c *fiber.Ctx) error {
	responseID, err := parseIDParam(c, "responseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid response id")
	}

	answers, err := h.service.ListByResponse(requestContext(c), principal(c), responseID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list answers")
	}
	return utils.SendSuccess(c, "answers retrieved", answers)
}

func (h *AnswerHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid answer id")
	}

	answer, err := h.service.Get(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load answer")
	}
	return utils.SendSuccess(c, "answer retrieved", answer)
}

func (h *AnswerHandler) create(c *fiber.Ctx) error {
	var req dto.AnswerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	answer, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create answer")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "answer created", answer)
}

func (h *AnswerHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid answer id")
	}

	var req dto.AnswerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	answer, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update answer")
	}
	return utils.SendSuccess(c, "answer updated", answer)
}

func (h *AnswerHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid answer id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete answer")
	}
	return utils.SendSuccess(c, "answer deleted", nil)
}

func (h *AnswerHandler) questionStatistics(c *fiber.Ctx) error {
	questionID, err := parseIDParam(c, "questionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	stats, err := h.service.QuestionStatistics(requestContext(c), principal(c), questionID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load answer statistics")
	}
	return utils.SendSuccess(c, "answer statistics retrieved", stats)
}

func (h *AnswerHandler) surveySummary(c *fiber.Ctx) error {
	surveyID, err := parseIDParam(c, "surveyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	summary, err := h.service.SurveySummary(requestContext(c), principal(c), surveyID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load survey summary")
	}
	return utils.SendSuccess(c, "survey summary retrieved", summary)
}
