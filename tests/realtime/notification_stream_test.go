package realtime_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/handler"
	"github.com/noah-isme/survey-go-api/internal/middleware"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
	"github.com/noah-isme/survey-go-api/internal/service"
)

const streamSecret = "realtime-secret"

type streamFixture struct {
	addr          string
	notifications service.NotificationService
	student       models.User
	token         string
}

func (f streamFixture) notify(t *testing.T, title string) {
	t.Helper()
	admin := service.Principal{UserID: 1, Role: models.RoleAdmin, Actor: audit.System}
	_, err := f.notifications.Create(context.Background(), admin, dto.NotificationCreateRequest{
		UserID:  f.student.ID,
		Title:   title,
		Message: "A new survey is waiting for you",
		Type:    "info",
	})
	require.NoError(t, err)
}

func startServer(t *testing.T) streamFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	student := models.User{
		Username:           "bob",
		PasswordHash:       "hash",
		Email:              "bob@example.com",
		FullName:           "Bob Student",
		Role:               models.RoleStudent,
		RegistrationStatus: models.RegistrationApproved,
		IsActive:           true,
	}
	require.NoError(t, db.Create(&student).Error)

	logger := zerolog.New(io.Discard)
	notifications := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		nil, "", nil,
		validator.New(validator.WithRequiredStructEnabled()),
		logger,
	)

	token, _, err := service.NewTokenIssuer(service.TokenConfig{Secret: streamSecret}).Issue(student)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	auth := middleware.JWTProtected(middleware.JWTConfig{Secret: streamSecret, RequireUser: true})
	handler.NewNotificationHandler(notifications, logger, time.Second).Register(app.Group("/api/notifications"), auth)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(listener)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	return streamFixture{
		addr:          listener.Addr().String(),
		notifications: notifications,
		student:       student,
		token:         token,
	}
}

func TestWebsocketDeliversNotifications(t *testing.T) {
	fixture := startServer(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+fixture.token)
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+fixture.addr+"/api/notifications/ws", header)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame struct {
		Event string                    `json:"event"`
		Data  *dto.NotificationResponse `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "connected", frame.Event)

	fixture.notify(t, "Survey reminder")

	frame.Data = nil
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "notification", frame.Event)
	require.NotNil(t, frame.Data)
	require.Equal(t, "Survey reminder", frame.Data.Title)
	require.Equal(t, fixture.student.ID, frame.Data.UserID)
}

func TestWebsocketRejectsMissingToken(t *testing.T) {
	fixture := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+fixture.addr+"/api/notifications/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServerSentEventsDeliverNotifications(t *testing.T) {
	fixture := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+fixture.addr+"/api/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+fixture.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)

	// The stream opens with a keep-alive comment once the subscription exists.
	first, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first, ": keep-alive"))

	fixture.notify(t, "Competition results")

	var event string
	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}

	require.Equal(t, "notification", event)
	var notification dto.NotificationResponse
	require.NoError(t, json.Unmarshal([]byte(data), &notification))
	require.Equal(t, "Competition results", notification.Title)
}
