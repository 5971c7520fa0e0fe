package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// QuestionHandler manages survey questions and their options.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register wires the question routes. Ownership of the survey is checked by
// the service.
func (h *QuestionHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/survey/:surveyId", auth, h.listBySurvey)
	router.Delete("/options/:optionId", auth, staffReviewers, h.deleteOption)
	router.Get("/:id", auth, h.get)
	router.Post("/", auth, staffReviewers, h.create)
	router.Post("/:id/options", auth, staffReviewers, h.addOption)
	router.Put("/:id", auth, staffReviewers, h.update)
	router.Delete("/:id", auth, staffReviewers, h.delete)
}

func (h *QuestionHandler) listBySurvey(c *fiber.Ctx) error {
	surveyID, err := parseIDParam(c, "surveyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	questions, err := h.service.ListBySurvey(requestContext(c), surveyID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list questions")
	}
	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *QuestionHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	question, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load question")
	}
	return utils.SendSuccess(c, "question retrieved", question)
}

func (h *QuestionHandler) create(c *fiber.Ctx) error {
	var req dto.QuestionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create question")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question created", question)
}

func (h *QuestionHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	var req dto.QuestionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update question")
	}
	return utils.SendSuccess(c, "question updated", question)
}

func (h *QuestionHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete question")
	}
	return utils.SendSuccess(c, "question deleted", nil)
}

func (h *QuestionHandler) addOption(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	var req dto.OptionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	option, err := h.service.AddOption(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to add option")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "option added", option)
}

func (h *QuestionHandler) deleteOption(c *fiber.Ctx) error {
	optionID, err := parseIDParam(c, "optionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid option id")
	}

	if err := h.service.DeleteOption(requestContext(c), principal(c), optionID); err != nil {
		return respondError(c, h.logger, err, "failed to delete option")
	}
	return utils.SendSuccess(c, "option deleted", nil)
}
