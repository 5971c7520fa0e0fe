package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

const testSecret = "test-secret"

func buildUserService(t *testing.T) (UserService, repository.UserRepository, models.User) {
	t.Helper()
	db := setupServiceDB(t)
	repo := repository.NewUserRepository(db)
	tokens := NewTokenIssuer(TokenConfig{Secret: testSecret, Issuer: "survey-api", Audience: "survey-clients", Expiry: time.Hour})
	svc := NewUserService(repo, tokens, nil, testValidator(), testLogger())
	svc.(*userService).cost = bcrypt.MinCost
	admin := seedAccount(t, db, "root", models.RoleAdmin)
	return svc, repo, admin
}

func aliceRegistration() dto.RegisterRequest {
	return dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		FullName: "Alice Liddell",
		Role:     models.RoleStudent,
	}
}

func TestUserServiceRegisterLoginFlow(t *testing.T) {
	svc, _, admin := buildUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, audit.System, aliceRegistration())
	require.NoError(t, err)
	require.Equal(t, models.RegistrationPending, registered.RegistrationStatus)
	require.True(t, registered.IsActive)

	_, err = svc.Register(ctx, audit.System, aliceRegistration())
	require.ErrorIs(t, err, ErrDuplicateUsername)
	require.ErrorIs(t, err, ErrInvalid)

	other := aliceRegistration()
	other.Username = "alice2"
	_, err = svc.Register(ctx, audit.System, other)
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.ErrorIs(t, err, ErrAccountPending)

	_, err = svc.SetRegistrationStatus(ctx, principalOf(admin), registered.ID, models.RegistrationApproved)
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "alice", login.User.Username)
	require.True(t, login.ExpiresAt.After(time.Now()))

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(login.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithIssuer("survey-api"), jwt.WithAudience("survey-clients"))
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, claims["role"])
	require.Equal(t, "alice", claims["username"])
}

func TestUserServiceLoginRejectsInactiveAccount(t *testing.T) {
	svc, _, admin := buildUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, audit.System, aliceRegistration())
	require.NoError(t, err)
	_, err = svc.SetRegistrationStatus(ctx, principalOf(admin), registered.ID, models.RegistrationApproved)
	require.NoError(t, err)
	_, err = svc.SetActive(ctx, principalOf(admin), registered.ID, false)
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.ErrorIs(t, err, ErrAccountInactive)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserServiceStudentCannotReadOthers(t *testing.T) {
	svc, _, admin := buildUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, audit.System, aliceRegistration())
	require.NoError(t, err)
	student := Principal{UserID: registered.ID, Role: models.RoleStudent}

	_, err = svc.Get(ctx, student, admin.ID)
	require.ErrorIs(t, err, ErrForbidden)

	self, err := svc.Get(ctx, student, registered.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", self.Username)

	_, err = svc.SetRegistrationStatus(ctx, student, registered.ID, models.RegistrationApproved)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUserServiceChangePassword(t *testing.T) {
	svc, _, admin := buildUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, audit.System, aliceRegistration())
	require.NoError(t, err)
	_, err = svc.SetRegistrationStatus(ctx, principalOf(admin), registered.ID, models.RegistrationApproved)
	require.NoError(t, err)
	self := Principal{UserID: registered.ID, Role: models.RoleStudent}

	err = svc.ChangePassword(ctx, self, registered.ID, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "another1"})
	require.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, principalOf(admin), registered.ID, dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1"})
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.ChangePassword(ctx, self, registered.ID, dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1"}))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "another1"})
	require.NoError(t, err)
}
