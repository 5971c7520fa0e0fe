package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// CompetitionHandler serves competitions and their winners.
type CompetitionHandler struct {
	competitions service.CompetitionService
	winners      service.WinnerService
	logger       zerolog.Logger
}

// NewCompetitionHandler constructs the handler.
func NewCompetitionHandler(competitions service.CompetitionService, winners service.WinnerService, logger zerolog.Logger) *CompetitionHandler {
	return &CompetitionHandler{
		competitions: competitions,
		winners:      winners,
		logger:       logger.With().Str("component", "competition_handler").Logger(),
	}
}

// Register wires /competitions.
func (h *CompetitionHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/", auth, h.list)
	router.Get("/active", auth, h.active)
	router.Get("/:id", auth, h.get)
	router.Post("/", auth, adminOnly, h.create)
	router.Put("/:id", auth, adminOnly, h.update)
	router.Delete("/:id", auth, adminOnly, h.delete)
}

// RegisterWinners wires /competitionwinners.
func (h *CompetitionHandler) RegisterWinners(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/competition/:competitionId", auth, h.winnersByCompetition)
	router.Get("/leaderboard", auth, h.leaderboard)
	router.Get("/:id", auth, h.getWinner)
	router.Post("/", auth, adminOnly, h.createWinner)
	router.Delete("/:id", auth, adminOnly, h.deleteWinner)
}

func (h *CompetitionHandler) list(c *fiber.Ctx) error {
	competitions, err := h.competitions.List(requestContext(c), c.Query("status"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list competitions")
	}
	return utils.SendSuccess(c, "competitions retrieved", competitions)
}

func (h *CompetitionHandler) active(c *fiber.Ctx) error {
	competitions, err := h.competitions.ListActive(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list active competitions")
	}
	return utils.SendSuccess(c, "active competitions retrieved", competitions)
}

func (h *CompetitionHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid competition id")
	}

	competition, err := h.competitions.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load competition")
	}
	return utils.SendSuccess(c, "competition retrieved", competition)
}

func (h *CompetitionHandler) create(c *fiber.Ctx) error {
	var req dto.CompetitionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	competition, err := h.competitions.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create competition")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "competition created", competition)
}

func (h *CompetitionHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid competition id")
	}

	var req dto.CompetitionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	competition, err := h.competitions.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update competition")
	}
	return utils.SendSuccess(c, "competition updated", competition)
}

func (h *CompetitionHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid competition id")
	}

	if err := h.competitions.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete competition")
	}
	return utils.SendSuccess(c, "competition deleted", nil)
}

func (h *CompetitionHandler) winnersByCompetition(c *fiber.Ctx) error {
	competitionID, err := parseIDParam(c, "competitionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid competition id")
	}

	winners, err := h.winners.ListByCompetition(requestContext(c), competitionID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list winners")
	}
	return utils.SendSuccess(c, "winners retrieved", winners)
}

func (h *CompetitionHandler) leaderboard(c *fiber.Ctx) error {
	board, err := h.winners.Leaderboard(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load leaderboard")
	}

	setCacheHeader(c, board.CacheHit)
	return utils.SendSuccess(c, "leaderboard retrieved", board)
}

func (h *CompetitionHandler) getWinner(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid winner id")
	}

	winner, err := h.winners.Get(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load winner")
	}
	return utils.SendSuccess(c, "winner retrieved", winner)
}

func (h *CompetitionHandler) createWinner(c *fiber.Ctx) error {
	var req dto.WinnerCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	winner, err := h.winners.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create winner")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "winner announced", winner)
}

func (h *CompetitionHandler) deleteWinner(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid winner id")
	}

	if err := h.winners.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete winner")
	}
	return utils.SendSuccess(c, "winner deleted", nil)
}
