package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/middleware"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// UserHandler exposes account registration, login and administration.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires the user routes. register and login stay public; the rest
// run behind auth.
func (h *UserHandler) Register(router fiber.Router, auth fiber.Handler, credentialLimit fiber.Handler) {
	auth = withAuth(auth)
	if credentialLimit == nil {
		credentialLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Post("/register", credentialLimit, h.register)
	router.Post("/login", credentialLimit, h.login)

	router.Get("/", auth, adminOnly, h.list)
	router.Get("/pending", auth, adminOnly, h.pending)
	router.Get("/:id", auth, h.get)
	router.Get("/:id/statistics", auth, h.statistics)
	router.Put("/:id/approve", auth, adminOnly, h.setStatus(models.RegistrationApproved))
	router.Put("/:id/reject", auth, adminOnly, h.setStatus(models.RegistrationRejected))
	router.Put("/:id/activate", auth, adminOnly, h.setActive(true))
	router.Put("/:id/deactivate", auth, adminOnly, h.setActive(false))
	router.Put("/:id/change-password", auth, h.changePassword)
	router.Put("/:id", auth, h.update)
	router.Delete("/:id", auth, adminOnly, h.delete)
}

func (h *UserHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(requestContext(c), middleware.AuditActor(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration submitted, awaiting approval", user)
}

func (h *UserHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Login(requestContext(c), req)
	if err != nil {
		if !isValidationError(err) {
			requestLogger(h.logger, c).Info().Str("username", req.Username).Msg("login rejected")
		}
		return respondError(c, h.logger, err, "failed to log in")
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.List(requestContext(c), dto.UserListRequest{
		Role:               c.Query("role"),
		RegistrationStatus: c.Query("registrationStatus"),
		Page:               page,
		PageSize:           pageSize,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list users")
	}

	return utils.OK(c, result.Items, "users retrieved", result.Pagination)
}

func (h *UserHandler) pending(c *fiber.Ctx) error {
	users, err := h.service.ListPending(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list pending users")
	}
	return utils.SendSuccess(c, "pending users retrieved", users)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.service.Get(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load user")
	}
	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) statistics(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	stats, err := h.service.Statistics(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load user statistics")
	}
	return utils.SendSuccess(c, "user statistics retrieved", stats)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Update(requestContext(c), principal(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update user")
	}
	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) setStatus(status string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
		}

		user, err := h.service.SetRegistrationStatus(requestContext(c), principal(c), id, status)
		if err != nil {
			return respondError(c, h.logger, err, "failed to update registration status")
		}
		return utils.SendSuccess(c, "user "+status, user)
	}
}

func (h *UserHandler) setActive(active bool) fiber.Handler {
	message := "user deactivated"
	if active {
		message = "user activated"
	}
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
		}

		user, err := h.service.SetActive(requestContext(c), principal(c), id, active)
		if err != nil {
			return respondError(c, h.logger, err, "failed to update user state")
		}
		return utils.SendSuccess(c, message, user)
	}
}

func (h *UserHandler) changePassword(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ChangePassword(requestContext(c), principal(c), id, req); err != nil {
		return respondError(c, h.logger, err, "failed to change password")
	}
	return utils.SendSuccess(c, "password changed", nil)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete user")
	}
	return utils.SendSuccess(c, "user deleted", nil)
}
