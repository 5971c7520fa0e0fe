package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/middleware"
	"github.com/noah-isme/survey-go-api/internal/service"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

const (
	defaultNotificationLimit = 50
	wsUserKey                = "ws_user_id"
	wsContextKey             = "ws_request_ctx"
)

// NotificationHandler manages notification CRUD and the SSE and websocket push streams.
type NotificationHandler struct {
	service   service.NotificationService
	logger    zerolog.Logger
	keepAlive time.Duration
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger, keepAlive time.Duration) *NotificationHandler {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &NotificationHandler{
		service:   service,
		logger:    logger.With().Str("component", "notification_handler").Logger(),
		keepAlive: keepAlive,
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router, auth fiber.Handler) {
	auth = withAuth(auth)

	router.Get("/my-notifications", auth, h.mine)
	router.Get("/unread-count", auth, h.unreadCount)
	router.Get("/stream", auth, h.stream)
	router.Get("/ws", auth, h.upgrade, websocket.New(h.serveSocket))
	router.Put("/mark-all-read", auth, h.markAllRead)
	router.Delete("/clear-all", auth, h.clearAll)
	router.Post("/broadcast", auth, adminOnly, h.broadcast)
	router.Post("/", auth, adminOnly, h.create)
	router.Get("/:id", auth, h.get)
	router.Put("/:id/read", auth, h.markRead)
	router.Delete("/:id", auth, h.delete)
}

func (h *NotificationHandler) mine(c *fiber.Ctx) error {
	isRead, err := parseQueryBool(c, "isRead")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid isRead filter")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	notifications, err := h.service.ListMine(requestContext(c), principal(c), isRead, limit)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list notifications")
	}
	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to count notifications")
	}
	return utils.SendSuccess(c, "unread count", count)
}

func (h *NotificationHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := h.service.Get(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load notification")
	}
	return utils.SendSuccess(c, "notification retrieved", notification)
}

func (h *NotificationHandler) create(c *fiber.Ctx) error {
	var req dto.NotificationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.service.Create(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create notification")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "notification sent", notification)
}

func (h *NotificationHandler) broadcast(c *fiber.Ctx) error {
	var req dto.NotificationBroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Broadcast(requestContext(c), principal(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to broadcast notification")
	}
	return utils.SendSuccess(c, fmt.Sprintf("notification sent to %d users", result.Count), result)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := h.service.MarkRead(requestContext(c), principal(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update notification")
	}
	return utils.SendSuccess(c, "notification updated", notification)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	result, err := h.service.MarkAllRead(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update notifications")
	}
	return utils.SendSuccess(c, "notifications marked as read", result)
}

func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	if err := h.service.Delete(requestContext(c), principal(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete notification")
	}
	return utils.SendSuccess(c, "notification deleted", nil)
}

func (h *NotificationHandler) clearAll(c *fiber.Ctx) error {
	result, err := h.service.ClearAll(requestContext(c), principal(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to clear notifications")
	}
	return utils.SendSuccess(c, "notifications cleared", result)
}

func (h *NotificationHandler) stream(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(requestContext(c))
	stream, cleanup := h.service.Subscribe(userID, "sse")
	logger := requestLogger(h.logger, c).With().Uint("user_id", userID).Logger()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		if err := writeKeepAlive(w); err != nil {
			return
		}

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-stream:
				if !ok {
					return
				}
				if err := writeNotificationEvent(w, notification); err != nil {
					logger.Debug().Err(err).Msg("failed to write notification event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					logger.Debug().Err(err).Msg("notification stream closed")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

// upgrade captures the caller before the websocket handshake hands off the connection.
func (h *NotificationHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return utils.SendError(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
	}
	c.Locals(wsUserKey, middleware.UserID(c))
	c.Locals(wsContextKey, requestContext(c))
	return c.Next()
}

func (h *NotificationHandler) serveSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals(wsUserKey).(uint)
	if userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	baseCtx, _ := conn.Locals(wsContextKey).(context.Context)
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	stream, cleanup := h.service.Subscribe(userID, "websocket")
	defer cleanup()

	logger := h.logger.With().Uint("user_id", userID).Str("correlation_id", middleware.CorrelationIDFromContext(ctx)).Logger()
	logger.Info().Msg("notification websocket connected")
	defer logger.Info().Msg("notification websocket disconnected")

	if err := conn.WriteJSON(notificationFrame{Event: "connected"}); err != nil {
		return
	}

	// The read loop only detects client close; inbound frames are ignored.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case notification, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(notificationFrame{Event: "notification", Data: &notification}); err != nil {
				logger.Debug().Err(err).Msg("failed to write websocket notification")
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.keepAlive / 2)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

type notificationFrame struct {
	Event string                    `json:"event"`
	Data  *dto.NotificationResponse `json:"data,omitempty"`
}

func writeNotificationEvent(w *bufio.Writer, notification dto.NotificationResponse) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "id: %d\nevent: notification\n", notification.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
