package service

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/observability"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

// NotificationService stores notifications and pushes them to connected
// SSE and websocket clients. Redis pub/sub and NATS fan out across nodes
// when configured.
type NotificationService interface {
	ListMine(ctx context.Context, caller Principal, isRead *bool, limit int) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, caller Principal) (dto.CountResponse, error)
	Get(ctx context.Context, caller Principal, id uint) (dto.NotificationResponse, error)
	Create(ctx context.Context, caller Principal, req dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	Broadcast(ctx context.Context, caller Principal, req dto.NotificationBroadcastRequest) (dto.CountResponse, error)
	MarkRead(ctx context.Context, caller Principal, id uint) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, caller Principal) (dto.CountResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
	ClearAll(ctx context.Context, caller Principal) (dto.CountResponse, error)
	Subscribe(userID uint, transport string) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	hub       *notificationHub
	relays    []notificationRelay
	nodeID    string
}

// NewNotificationService constructs a notification service. redisClient and
// natsConn are optional; without them delivery stays on this node.
func NewNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	redisClient *redis.Client,
	channelBase string,
	natsConn *nats.Conn,
	validate *validator.Validate,
	logger zerolog.Logger,
) NotificationService {
	logger = logger.With().Str("component", "notification_service").Logger()
	return &notificationService{
		repo:      repo,
		users:     users,
		validator: validate,
		logger:    logger,
		tracer:    otel.Tracer("github.com/noah-isme/survey-go-api/internal/service/notification"),
		sanitizer: bluemonday.StrictPolicy(),
		hub:       newNotificationHub(),
		relays:    relaysFor(channelBase, redisClient, natsConn, logger),
		nodeID:    uuid.NewString(),
	}
}

// Start listens on every configured relay until ctx is cancelled.
func (s *notificationService) Start(ctx context.Context) {
	for _, relay := range s.relays {
		go relay.listen(ctx, s.receive)
	}
}

func (s *notificationService) ListMine(ctx context.Context, caller Principal, isRead *bool, limit int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, caller.UserID, isRead, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, caller Principal) (dto.CountResponse, error) {
	count, err := s.repo.CountUnread(ctx, caller.UserID)
	if err != nil {
		return dto.CountResponse{}, err
	}
	return dto.CountResponse{Count: count}, nil
}

func (s *notificationService) Get(ctx context.Context, caller Principal, id uint) (dto.NotificationResponse, error) {
	notification, err := s.owned(ctx, caller, id)
	if err != nil {
		return dto.NotificationResponse{}, err
	}
	return dto.NewNotificationResponse(*notification), nil
}

func (s *notificationService) Create(ctx context.Context, caller Principal, req dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if !caller.IsAdmin() {
		return dto.NotificationResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.NotificationResponse{}, err
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return dto.NotificationResponse{}, translate(err, ErrUserNotFound)
	}

	title, message, err := s.clean(req.Title, req.Message)
	if err != nil {
		return dto.NotificationResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(req.UserID)),
		attribute.String("notification.type", notificationType(req.Type)),
	))
	defer span.End()

	model := models.Notification{
		UserID:  req.UserID,
		Title:   title,
		Message: message,
		Type:    notificationType(req.Type),
	}
	if err := s.repo.Create(spanCtx, caller.Actor, &model); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(model)
	s.deliver(spanCtx, response)
	return response, nil
}

func (s *notificationService) Broadcast(ctx context.Context, caller Principal, req dto.NotificationBroadcastRequest) (dto.CountResponse, error) {
	if !caller.IsAdmin() {
		return dto.CountResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.CountResponse{}, err
	}

	title, message, err := s.clean(req.Title, req.Message)
	if err != nil {
		return dto.CountResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.broadcast", trace.WithAttributes(
		attribute.String("notification.target_role", req.TargetRole),
	))
	defer span.End()

	recipients, err := s.users.ListActiveApproved(spanCtx, req.TargetRole)
	if err != nil {
		span.RecordError(err)
		return dto.CountResponse{}, err
	}

	batch := make([]models.Notification, 0, len(recipients))
	for _, user := range recipients {
		batch = append(batch, models.Notification{
			UserID:  user.ID,
			Title:   title,
			Message: message,
			Type:    notificationType(req.Type),
		})
	}
	if err := s.repo.CreateBatch(spanCtx, caller.Actor, batch); err != nil {
		span.RecordError(err)
		return dto.CountResponse{}, err
	}

	for _, model := range batch {
		s.deliver(spanCtx, dto.NewNotificationResponse(model))
	}
	span.SetAttributes(attribute.Int("notification.recipients", len(batch)))

	s.logger.Info().Int("recipients", len(batch)).Str("target_role", req.TargetRole).Msg("notification broadcast")
	return dto.CountResponse{Count: int64(len(batch))}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, caller Principal, id uint) (dto.NotificationResponse, error) {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return dto.NotificationResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.mark_read", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(caller.UserID)),
	))
	defer span.End()

	notification, err := s.repo.MarkRead(spanCtx, caller.Actor, id)
	if err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, translate(err, ErrNotificationNotFound)
	}
	return dto.NewNotificationResponse(*notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, caller Principal) (dto.CountResponse, error) {
	count, err := s.repo.MarkAllRead(ctx, caller.Actor, caller.UserID)
	if err != nil {
		return dto.CountResponse{}, err
	}
	return dto.CountResponse{Count: count}, nil
}

func (s *notificationService) Delete(ctx context.Context, caller Principal, id uint) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	return translate(s.repo.Delete(ctx, caller.Actor, id), ErrNotificationNotFound)
}

func (s *notificationService) ClearAll(ctx context.Context, caller Principal) (dto.CountResponse, error) {
	count, err := s.repo.DeleteAll(ctx, caller.Actor, caller.UserID)
	if err != nil {
		return dto.CountResponse{}, err
	}
	return dto.CountResponse{Count: count}, nil
}

func (s *notificationService) Subscribe(userID uint, transport string) (<-chan dto.NotificationResponse, func()) {
	ch := s.hub.join(userID)
	gauge := observability.StreamClients().WithLabelValues(transport)
	gauge.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.hub.leave(userID, ch)
			gauge.Dec()
		})
	}
}

func (s *notificationService) owned(ctx context.Context, caller Principal, id uint) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrNotificationNotFound)
	}
	if notification.UserID != caller.UserID {
		return nil, ErrAccessDenied
	}
	return notification, nil
}

func (s *notificationService) clean(title, message string) (string, string, error) {
	cleanTitle := strings.TrimSpace(s.sanitizer.Sanitize(title))
	cleanMessage := strings.TrimSpace(s.sanitizer.Sanitize(message))
	if cleanTitle == "" || cleanMessage == "" {
		return "", "", ErrEmptyAfterSanitize
	}
	return cleanTitle, cleanMessage, nil
}

func notificationType(value string) string {
	if value == "" {
		return models.NotificationInfo
	}
	return value
}

// deliver pushes to local clients and then to the other nodes.
func (s *notificationService) deliver(ctx context.Context, notification dto.NotificationResponse) {
	s.hub.send(notification)
	observability.NotificationsPublished().WithLabelValues(notification.Type).Inc()
	if len(s.relays) == 0 {
		return
	}

	payload, err := encodeRelayEnvelope(s.nodeID, notification)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode notification for relay")
		return
	}
	for _, relay := range s.relays {
		if err := relay.publish(ctx, payload); err != nil {
			s.logger.Warn().Err(err).Str("relay", relay.name()).Msg("failed to relay notification")
		}
	}
}

// receive handles a payload relayed by another node. Our own payloads are
// dropped since deliver already reached local clients.
func (s *notificationService) receive(payload []byte) {
	envelope, err := decodeRelayEnvelope(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("invalid relayed notification")
		return
	}
	if envelope.Origin == s.nodeID {
		return
	}

	notification := envelope.Notification
	notification.Type = notificationType(notification.Type)
	s.hub.send(notification)
}
