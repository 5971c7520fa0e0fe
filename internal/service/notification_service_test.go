package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

func TestNotificationServiceBroadcastTargetsApprovedUsers(t *testing.T) {
	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	alice := seedAccount(t, db, "alice", models.RoleStudent)
	seedAccount(t, db, "bob", models.RoleStudent)
	seedAccount(t, db, "carol", models.RoleFaculty)
	pending := seedAccount(t, db, "dave", models.RoleStudent)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", pending.ID).Update("registration_status", models.RegistrationPending).Error)

	svc := NewNotificationService(repository.NewNotificationRepository(db), repository.NewUserRepository(db), nil, "", nil, testValidator(), testLogger())
	ctx := context.Background()

	stream, cleanup := svc.Subscribe(alice.ID, "test")
	defer cleanup()

	result, err := svc.Broadcast(ctx, principalOf(admin), dto.NotificationBroadcastRequest{
		Title:      "Survey week",
		Message:    "<script>x</script>Please answer the <b>campus</b> survey",
		TargetRole: models.RoleStudent,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Count)

	select {
	case notification := <-stream:
		require.Equal(t, alice.ID, notification.UserID)
		require.Equal(t, "Please answer the campus survey", notification.Message)
		require.Equal(t, models.NotificationInfo, notification.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a pushed notification")
	}

	unread, err := svc.UnreadCount(ctx, principalOf(alice))
	require.NoError(t, err)
	require.Equal(t, int64(1), unread.Count)

	pendingUnread, err := svc.UnreadCount(ctx, principalOf(pending))
	require.NoError(t, err)
	require.Zero(t, pendingUnread.Count)

	_, err = svc.Broadcast(ctx, principalOf(alice), dto.NotificationBroadcastRequest{Title: "x", Message: "y"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestNotificationServiceOwnership(t *testing.T) {
	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	alice := seedAccount(t, db, "alice", models.RoleStudent)
	bob := seedAccount(t, db, "bob", models.RoleStudent)
	svc := NewNotificationService(repository.NewNotificationRepository(db), repository.NewUserRepository(db), nil, "", nil, testValidator(), testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, principalOf(admin), dto.NotificationCreateRequest{
		UserID:  alice.ID,
		Title:   "Approved",
		Message: "Your seminar was approved",
		Type:    models.NotificationSuccess,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, principalOf(admin), dto.NotificationCreateRequest{UserID: 9999, Title: "x", Message: "y"})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.MarkRead(ctx, principalOf(bob), created.ID)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, principalOf(bob), created.ID), ErrForbidden)

	read, err := svc.MarkRead(ctx, principalOf(alice), created.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)

	unreadOnly := false
	items, err := svc.ListMine(ctx, principalOf(alice), &unreadOnly, 50)
	require.NoError(t, err)
	require.Empty(t, items)

	cleared, err := svc.ClearAll(ctx, principalOf(alice))
	require.NoError(t, err)
	require.Equal(t, int64(1), cleared.Count)

	_, err = svc.Get(ctx, principalOf(alice), created.ID)
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationServiceFansOutAcrossNodes(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	alice := seedAccount(t, db, "alice", models.RoleStudent)
	notifications := repository.NewNotificationRepository(db)
	users := repository.NewUserRepository(db)

	sender := NewNotificationService(notifications, users, client, "survey", nil, testValidator(), testLogger())
	receiver := NewNotificationService(notifications, users, client, "survey", nil, testValidator(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	receiver.Start(ctx)

	stream, cleanup := receiver.Subscribe(alice.ID, "test")
	defer cleanup()

	require.Eventually(t, func() bool {
		return len(server.PubSubChannels("survey:*")) > 0
	}, time.Second, 10*time.Millisecond)

	_, err = sender.Create(ctx, principalOf(admin), dto.NotificationCreateRequest{UserID: alice.ID, Title: "Hello", Message: "From another node"})
	require.NoError(t, err)

	select {
	case notification := <-stream:
		require.Equal(t, "Hello", notification.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("expected notification relayed through redis")
	}
}

func TestNotificationHubDeliversPerUserAndDropsWhenFull(t *testing.T) {
	hub := newNotificationHub()
	alice := hub.join(1)
	bob := hub.join(2)

	for i := 0; i < notificationBufferSize; i++ {
		require.Equal(t, 1, hub.send(dto.NotificationResponse{UserID: 1, Title: "fill"}))
	}
	require.Equal(t, 0, hub.send(dto.NotificationResponse{UserID: 1, Title: "overflow"}))
	require.Len(t, bob, 0)

	hub.leave(1, alice)
	hub.leave(1, alice)
	_, open := <-alice
	for open {
		_, open = <-alice
	}
	require.Equal(t, 0, hub.send(dto.NotificationResponse{UserID: 1}))
}

func TestRelaysForChannelBase(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	require.Empty(t, relaysFor("", client, nil, testLogger()))

	relays := relaysFor("survey", client, nil, testLogger())
	require.Len(t, relays, 1)
	require.Equal(t, "redis", relays[0].name())
	require.Equal(t, "survey:notifications", relays[0].(*redisRelay).channel)
}
