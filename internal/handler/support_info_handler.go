package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// SupportInfoHandler serves support contact details.
type SupportInfoHandler struct {
	service service.SupportInfoService
	logger  zerolog.Logger
}

// NewSupportInfoHandler constructs the handler.
func NewSupportInfoHandler(service service.SupportInfoService, logger zerolog.Logger) *SupportInfoHandler {
	return &SupportInfoHandler{
		service: service,
		logger:  logger.With().Str("component", "support_info_handler").Logger(),
	}
}

// Register wires the support info routes.
func (h *SupportInfoHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/", h.list)
	router.Get("/types", h.types)
	router.Get("/:id", h.get)
	router.Post("/", auth, adminOnly, h.create)
	router.Put("/:id", auth, adminOnly, h.update)
	router.Delete("/:id", auth, adminOnly, h.delete)
}

func (h *SupportInfoHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(requestContext(c), c.Query("contactType"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list support info")
	}
	return utils.SendSuccess(c, "support info retrieved", items)
}

func (h *SupportInfoHandler) types(c *fiber.Ctx) error {
	types, err := h.service.Types(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list contact types")
	}
	return utils.SendSuccess(c, "contact types retrieved", types)
}

func (h *SupportInfoHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid support info id")
	}

	item, err := h.service.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load support info")
	}
	return utils.SendSuccess(c, "support info retrieved", item)
}

func (h *SupportInfoHandler) create(c *fiber.Ctx) error {
	var req dto.SupportInfoCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create support info")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "support info created", item)
}

func (h *SupportInfoHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid support info id")
	}

	var req dto.SupportInfoUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update support info")
	}
	return utils.SendSuccess(c, "support info updated", item)
}

func (h *SupportInfoHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid support info id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete support info")
	}
	return utils.SendSuccess(c, "support info deleted", nil)
}
