package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// FaqHandler serves public FAQ reads and admin FAQ maintenance.
type FaqHandler struct {
	service service.FaqService
	logger  zerolog.Logger
}

// NewFaqHandler constructs the handler.
func NewFaqHandler(service service.FaqService, logger zerolog.Logger) *FaqHandler {
	return &FaqHandler{
		service: service,
		logger:  logger.With().Str("component", "faq_handler").Logger(),
	}
}

// Register wires the FAQ routes.
func (h *FaqHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/", h.list)
	router.Get("/categories", h.categories)
	router.Get("/by-category/:category", h.byCategory)
	router.Get("/:id", h.get)
	router.Post("/", auth, adminOnly, h.create)
	router.Put("/:id", auth, adminOnly, h.update)
	router.Delete("/:id", auth, adminOnly, h.delete)
}

func (h *FaqHandler) list(c *fiber.Ctx) error {
	isActive, err := parseQueryBool(c, "isActive")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid isActive filter")
	}

	faqs, err := h.service.List(requestContext(c), c.Query("category"), isActive)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list faqs")
	}
	return utils.SendSuccess(c, "faqs retrieved", faqs)
}

func (h *FaqHandler) categories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list faq categories")
	}
	return utils.SendSuccess(c, "faq categories retrieved", categories)
}

func (h *FaqHandler) byCategory(c *fiber.Ctx) error {
	faqs, err := h.service.List(requestContext(c), c.Params("category"), nil)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list faqs")
	}
	return utils.SendSuccess(c, "faqs retrieved", faqs)
}

func (h *FaqHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faq id")
	}

	faq, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load faq")
	}
	return utils.SendSuccess(c, "faq retrieved", faq)
}

func (h *FaqHandler) create(c *fiber.Ctx) error {
	var req dto.FaqCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	faq, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create faq")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "faq created", faq)
}

func (h *FaqHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faq id")
	}

	var req dto.FaqUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	faq, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update faq")
	}
	return utils.SendSuccess(c, "faq updated", faq)
}

func (h *FaqHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid faq id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete faq")
	}
	return utils.SendSuccess(c, "faq deleted", nil)
}
