package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// ParticipationHandler manages effective participation records.
type ParticipationHandler struct {
	service service.ParticipationService
	logger  zerolog.Logger
}

// NewParticipationHandler constructs the handler.
func NewParticipationHandler(service service.ParticipationService, logger zerolog.Logger) *ParticipationHandler {
	return &ParticipationHandler{
		service: service,
		logger:  logger.With().Str("component", "participation_handler").Logger(),
	}
}

// Register wires the participation routes.
func (h *ParticipationHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/", auth, staffReviewers, h.list)
	router.Get("/pending", auth, staffReviewers, h.pending)
	router.Get("/my-participations", auth, h.mine)
	router.Get("/:id", auth, h.get)
	router.Post("/", auth, h.create)
	router.Put("/:id/approve", auth, staffReviewers, h.review(models.ApprovalApproved))
	router.Put("/:id/reject", auth, staffReviewers, h.review(models.ApprovalRejected))
	router.Put("/:id", auth, h.update)
	router.Delete("/:id", auth, h.delete)
}

func (h *ParticipationHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(requestContext(c), principal(c), c.Query("approvalStatus"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list participations")
	}
	return utils.SendSuccess(c, "participations retrieved", items)
}

func (h *ParticipationHandler) pending(c *fiber.Ctx) error {
	items, err := h.service.List(requestContext(c), principal(c), models.ApprovalPending)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list pending participations")
	}
	return utils.SendSuccess(c, "pending participations retrieved", items)
}

func (h *ParticipationHandler) mine(c *fiber.Ctx) error {
	items, err := h.service.ListMine(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list participations")
	}
	return utils.SendSuccess(c, "participations retrieved", items)
}

func (h *ParticipationHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid participation id")
	}

	item, err := h.service.Get(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load participation")
	}
	return utils.SendSuccess(c, "participation retrieved", item)
}

func (h *ParticipationHandler) create(c *fiber.Ctx) error {
	var req dto.ParticipationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create participation")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "participation submitted", item)
}

func (h *ParticipationHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid participation id")
	}

	var req dto.ParticipationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update participation")
	}
	return utils.SendSuccess(c, "participation updated", item)
}

func (h *ParticipationHandler) review(status string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid participation id")
		}

		item, err := h.service.Review(requestContext(c), principal(c), id, status)
		if err != nil {
			return respondError(c, h.logger, err, "failed to review participation")
		}
		return utils.SendSuccess(c, "participation "+status, item)
	}
}

func (h *ParticipationHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid participation id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete participation")
	}
	return utils.SendSuccess(c, "participation deleted", nil)
}
