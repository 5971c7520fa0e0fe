package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// AuditLogHandler exposes the audit trail to administrators.
type AuditLogHandler struct {
	service service.AuditLogService
	logger  zerolog.Logger
}

// NewAuditLogHandler constructs the handler.
func NewAuditLogHandler(service service.AuditLogService, logger zerolog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_log_handler").Logger(),
	}
}

// Register wires the audit log routes. Every route is admin only.
func (h *AuditLogHandler) Register(router fiber.Router, auth fiber.Handler) {
	guarded := router.Group("", withAuth(auth), adminOnly)

	guarded.Get("/", h.list)
	guarded.Get("/tables", h.tables)
	guarded.Get("/actions", h.actions)
	guarded.Get("/statistics", h.statistics)
	guarded.Get("/user/:userId", h.byUser)
	guarded.Get("/table/:tableName", h.byTable)
	guarded.Delete("/cleanup", h.cleanup)
	guarded.Get("/:id", h.get)
}

func (h *AuditLogHandler) list(c *fiber.Ctx) error {
	req, err := auditListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.respondList(c, req)
}

func (h *AuditLogHandler) byUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	req, err := auditListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	req.UserID = &userID
	return h.respondList(c, req)
}

func (h *AuditLogHandler) byTable(c *fiber.Ctx) error {
	req, err := auditListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	req.TableName = c.Params("tableName")

	recordID, err := parseQueryUint(c, "recordId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid recordId")
	}
	req.RecordID = recordID
	return h.respondList(c, req)
}

func (h *AuditLogHandler) respondList(c *fiber.Ctx, req dto.AuditLogListRequest) error {
	result, err := h.service.List(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list audit logs")
	}
	return utils.OK(c, result.Items, "audit logs retrieved", result.Pagination)
}

func (h *AuditLogHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid audit log id")
	}

	entry, err := h.service.Get(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load audit log")
	}
	return utils.SendSuccess(c, "audit log retrieved", entry)
}

func (h *AuditLogHandler) tables(c *fiber.Ctx) error {
	tables, err := h.service.Tables(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list audited tables")
	}
	return utils.SendSuccess(c, "audited tables retrieved", tables)
}

func (h *AuditLogHandler) actions(c *fiber.Ctx) error {
	actions, err := h.service.Actions(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list audit actions")
	}
	return utils.SendSuccess(c, "audit actions retrieved", actions)
}

func (h *AuditLogHandler) statistics(c *fiber.Ctx) error {
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
		return respondError(c, h.logger, err, "failed to load audit statistics")
	}
	return utils.SendSuccess(c, "audit statistics retrieved", stats)
}

func (h *AuditLogHandler) cleanup(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "daysToKeep")
	if err != nil || days < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid daysToKeep")
	}

	result, err := h.service.Cleanup(requestContext(c), principal(c), days)
	if err != nil {
		return respondError(c, h.logger, err, "failed to clean up audit logs")
	}
	requestLogger(h.logger, c).Info().Int64("deleted", result.DeletedCount).Msg("audit logs cleaned up")
	return utils.SendSuccess(c, "audit logs cleaned up", result)
}

type queryError string

func (e queryError) Error() string { return string(e) }

func auditListRequest(c *fiber.Ctx) (dto.AuditLogListRequest, error) {
	var req dto.AuditLogListRequest
	var err error

	if req.Page, err = parseQueryInt(c, "page"); err != nil {
		return req, queryError("invalid page")
	}
	if req.PageSize, err = parseQueryInt(c, "pageSize"); err != nil {
		return req, queryError("invalid page size")
	}
	if req.UserID, err = parseQueryUint(c, "userId"); err != nil {
		return req, queryError("invalid userId")
	}
	if req.From, err = parseQueryTime(c, "fromDate"); err != nil {
		return req, queryError("invalid fromDate")
	}
	if req.To, err = parseQueryTime(c, "toDate"); err != nil {
		return req, queryError("invalid toDate")
	}
	req.TableName = c.Query("tableName")
	req.Action = c.Query("action")
	return req, nil
}
