package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// ResponseHandler accepts survey submissions and exposes stored responses.
type ResponseHandler struct {
	service service.ResponseService
	logger  zerolog.Logger
}

// NewResponseHandler constructs the handler.
func NewResponseHandler(service service.ResponseService, logger zerolog.Logger) *ResponseHandler {
	return &ResponseHandler{
		service: service,
		logger:  logger.With().Str("component", "response_handler").Logger(),
	}
}

// Register wires the survey response routes.
func (h *ResponseHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/survey/:surveyId", auth, staffReviewers, h.listBySurvey)
	router.Get("/my-responses", auth, h.mine)
	router.Get("/:id", auth, h.get)
	router.Post("/", auth, h.submit)
	router.Delete("/:id", auth, adminOnly, h.delete)
}

func (h *ResponseHandler) listBySurvey(c *fiber.Ctx) error {
	surveyID, err := parseIDParam(c, "surveyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid survey id")
	}

	responses, err := h.service.ListBySurvey(requestContext(c), principal(c), surveyID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list responses")
	}
	return utils.SendSuccess(c, "responses retrieved", responses)
}

func (h *ResponseHandler) mine(c *fiber.Ctx) error {
	responses, err := h.service.ListMine(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list responses")
	}
	return utils.SendSuccess(c, "responses retrieved", responses)
}

func (h *ResponseHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid response id")
	}

	response, err := h.service.Get(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load response")
	}
	return utils.SendSuccess(c, "response retrieved", response)
}

func (h *ResponseHandler) submit(c *fiber.Ctx) error {
	var req dto.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Submit(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit response")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "response submitted", response)
}

func (h *ResponseHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid response id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete response")
	}
	return utils.SendSuccess(c, "response deleted", nil)
}
