package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
)

const notificationBufferSize = 16

// notificationHub holds the stream clients connected to this node, keyed by user.
type notificationHub struct {
	mu      sync.RWMutex
	clients map[uint]map[chan dto.NotificationResponse]struct{}
}

func newNotificationHub() *notificationHub {
	return &notificationHub{clients: make(map[uint]map[chan dto.NotificationResponse]struct{})}
}

func (h *notificationHub) join(userID uint) chan dto.NotificationResponse {
	ch := make(chan dto.NotificationResponse, notificationBufferSize)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[chan dto.NotificationResponse]struct{})
	}
	h.clients[userID][ch] = struct{}{}
	return ch
}

func (h *notificationHub) leave(userID uint, ch chan dto.NotificationResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[userID]
	if _, ok := clients[ch]; !ok {
		return
	}
	delete(clients, ch)
	close(ch)
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
}

// send hands the notification to every client of its recipient. A client with
// a full buffer misses it; the row stays readable through the API.
func (h *notificationHub) send(notification dto.NotificationResponse) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.clients[notification.UserID] {
		select {
		case ch <- notification:
			delivered++
		default:
		}
	}
	return delivered
}

// relayEnvelope is the payload exchanged between nodes.
type relayEnvelope struct {
	Origin       string                   `json:"origin"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// notificationRelay carries notifications between API nodes.
type notificationRelay interface {
	name() string
	publish(ctx context.Context, payload []byte) error
	// listen blocks until ctx is done, passing every received payload to deliver.
	listen(ctx context.Context, deliver func([]byte))
}

// relaysFor builds the relays available for the configured channel base.
// Redis uses "<base>:notifications" and NATS "<base>.notifications".
func relaysFor(channelBase string, client *redis.Client, conn *nats.Conn, logger zerolog.Logger) []notificationRelay {
	if channelBase == "" {
		return nil
	}
	var relays []notificationRelay
	if client != nil {
		relays = append(relays, &redisRelay{client: client, channel: channelBase + ":notifications"})
	}
	if conn != nil {
		relays = append(relays, &natsRelay{
			conn:    conn,
			subject: strings.ReplaceAll(channelBase, ":", ".") + ".notifications",
			logger:  logger,
		})
	}
	return relays
}

type redisRelay struct {
	client  *redis.Client
	channel string
}

func (r *redisRelay) name() string { return "redis" }

func (r *redisRelay) publish(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, r.channel, payload).Err()
}

func (r *redisRelay) listen(ctx context.Context, deliver func([]byte)) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = pubsub.Close() }()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			deliver([]byte(msg.Payload))
		}
	}
}

type natsRelay struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

func (r *natsRelay) name() string { return "nats" }

func (r *natsRelay) publish(_ context.Context, payload []byte) error {
	return r.conn.Publish(r.subject, payload)
}

func (r *natsRelay) listen(ctx context.Context, deliver func([]byte)) {
	sub, err := r.conn.Subscribe(r.subject, func(msg *nats.Msg) { deliver(msg.Data) })
	if err != nil {
		r.logger.Error().Err(err).Str("subject", r.subject).Msg("failed to subscribe to notification subject")
		return
	}
	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		r.logger.Warn().Err(err).Msg("failed to drain notification subscription")
	}
}

func encodeRelayEnvelope(origin string, notification dto.NotificationResponse) ([]byte, error) {
	return json.Marshal(relayEnvelope{Origin: origin, Notification: notification, SentAt: time.Now().UTC()})
}

func decodeRelayEnvelope(payload []byte) (relayEnvelope, error) {
	var envelope relayEnvelope
	err := json.Unmarshal(payload, &envelope)
	return envelope, err
}
