package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

// UserService manages accounts, their approval and authentication.
type UserService interface {
	List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error)
	ListPending(ctx context.Context) ([]dto.UserResponse, error)
	Get(ctx context.Context, caller Principal, id uint) (dto.UserResponse, error)
	Register(ctx context.Context, actor audit.Actor, req dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error)
	SetRegistrationStatus(ctx context.Context, caller Principal, id uint, status string) (dto.UserResponse, error)
	SetActive(ctx context.Context, caller Principal, id uint, active bool) (dto.UserResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
	Statistics(ctx context.Context, caller Principal, id uint) (dto.UserStatisticsResponse, error)
	ChangePassword(ctx context.Context, caller Principal, id uint, req dto.ChangePasswordRequest) error
}

type userService struct {
	repo      repository.UserRepository
	tokens    *TokenIssuer
	views     *CacheInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
	cost      int
}

// NewUserService constructs the user service. views may be nil when no cache is configured.
func NewUserService(repo repository.UserRepository, tokens *TokenIssuer, views *CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		tokens:    tokens,
		views:     views,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
		cost:      bcrypt.DefaultCost,
	}
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize, 10)

	users, total, err := s.repo.List(ctx, repository.UserFilter{
		Role:               strings.ToLower(strings.TrimSpace(req.Role)),
		RegistrationStatus: strings.ToLower(strings.TrimSpace(req.RegistrationStatus)),
		Page:               page,
		PageSize:           pageSize,
	})
	if err != nil {
		return dto.UserListResponse{}, err
	}

	return dto.UserListResponse{
		Items:      dto.NewUserResponseSlice(users),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *userService) ListPending(ctx context.Context) ([]dto.UserResponse, error) {
	users, _, err := s.repo.List(ctx, repository.UserFilter{RegistrationStatus: models.RegistrationPending})
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, caller Principal, id uint) (dto.UserResponse, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return dto.UserResponse{}, ErrAccessDenied
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translate(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(*user), nil
}

func (s *userService) Register(ctx context.Context, actor audit.Actor, req dto.RegisterRequest) (dto.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if err := s.ensureUnique(ctx, req.Username, req.Email, 0); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Username:           req.Username,
		PasswordHash:       string(hash),
		Email:              req.Email,
		FullName:           req.FullName,
		Role:               req.Role,
		RollNumber:         req.RollNumber,
		EmployeeNumber:     req.EmployeeNumber,
		Class:              req.Class,
		Specification:      req.Specification,
		Section:            req.Section,
		AdmissionDate:      req.AdmissionDate,
		JoiningDate:        req.JoiningDate,
		RegistrationStatus: models.RegistrationPending,
		IsActive:           true,
	}
	if err := s.repo.Create(ctx, actor, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return dto.NewUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return dto.LoginResponse{}, translate(err, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return dto.LoginResponse{}, ErrAccountInactive
	}
	if user.RegistrationStatus != models.RegistrationApproved {
		return dto.LoginResponse{}, ErrAccountPending
	}

	token, expiresAt, err := s.tokens.Issue(*user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		Token:     token,
		User:      dto.NewUserResponse(*user),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *userService) Update(ctx context.Context, caller Principal, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return dto.UserResponse{}, ErrAccessDenied
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if req.Email != nil {
		if err := s.ensureUnique(ctx, "", *req.Email, id); err != nil {
			return dto.UserResponse{}, err
		}
	}

	user, err := s.repo.Update(ctx, caller.Actor, id, func(user *models.User) error {
		if req.FullName != nil {
			user.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.RollNumber != nil {
			user.RollNumber = req.RollNumber
		}
		if req.EmployeeNumber != nil {
			user.EmployeeNumber = req.EmployeeNumber
		}
		if req.Class != nil {
			user.Class = req.Class
		}
		if req.Specification != nil {
			user.Specification = req.Specification
		}
		if req.Section != nil {
			user.Section = req.Section
		}
		if req.AdmissionDate != nil {
			user.AdmissionDate = req.AdmissionDate
		}
		if req.JoiningDate != nil {
			user.JoiningDate = req.JoiningDate
		}
		return nil
	})
	if err != nil {
		return dto.UserResponse{}, translate(err, ErrUserNotFound)
	}
	s.views.leaderboard(ctx)
	return dto.NewUserResponse(*user), nil
}

func (s *userService) SetRegistrationStatus(ctx context.Context, caller Principal, id uint, status string) (dto.UserResponse, error) {
	if !caller.IsAdmin() {
		return dto.UserResponse{}, ErrAccessDenied
	}
	user, err := s.repo.Update(ctx, caller.Actor, id, func(user *models.User) error {
		user.RegistrationStatus = status
		return nil
	})
	if err != nil {
		return dto.UserResponse{}, translate(err, ErrUserNotFound)
	}
	s.views.dashboard(ctx)

	s.logger.Info().Uint("user_id", id).Str("status", status).Msg("registration status changed")
	return dto.NewUserResponse(*user), nil
}

func (s *userService) SetActive(ctx context.Context, caller Principal, id uint, active bool) (dto.UserResponse, error) {
	if !caller.IsAdmin() {
		return dto.UserResponse{}, ErrAccessDenied
	}
	user, err := s.repo.Update(ctx, caller.Actor, id, func(user *models.User) error {
		user.IsActive = active
		return nil
	})
	if err != nil {
		return dto.UserResponse{}, translate(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(*user), nil
}

func (s *userService) Delete(ctx context.Context, caller Principal, id uint) error {
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translate(err, ErrUserNotFound)
	}

	authored, err := s.repo.CountAuthored(ctx, id)
	if err != nil {
		return err
	}
	if authored > 0 {
		return ErrUserHasContent
	}

	if err := s.repo.Delete(ctx, caller.Actor, id); err != nil {
		return translate(err, ErrUserNotFound)
	}
	s.views.all(ctx)
	return nil
}

func (s *userService) Statistics(ctx context.Context, caller Principal, id uint) (dto.UserStatisticsResponse, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return dto.UserStatisticsResponse{}, ErrAccessDenied
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.UserStatisticsResponse{}, translate(err, ErrUserNotFound)
	}
	stats, err := s.repo.Statistics(ctx, id)
	if err != nil {
		return dto.UserStatisticsResponse{}, err
	}

	return dto.UserStatisticsResponse{
		UserID:                  user.ID,
		FullName:                user.FullName,
		Role:                    user.Role,
		SurveysParticipated:     stats.SurveysParticipated,
		AverageScore:            stats.AverageScore,
		LastParticipation:       stats.LastParticipation,
		CompetitionsWon:         stats.CompetitionsWon,
		ParticipationsSubmitted: stats.ParticipationsSubmitted,
	}, nil
}

func (s *userService) ChangePassword(ctx context.Context, caller Principal, id uint, req dto.ChangePasswordRequest) error {
	if caller.UserID != id {
		return ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(ctx, caller.Actor, id, func(user *models.User) error {
		user.PasswordHash = string(hash)
		return nil
	})
	return translate(err, ErrUserNotFound)
}

// ensureUnique rejects a username or email held by an account other than exceptID.
func (s *userService) ensureUnique(ctx context.Context, username, email string, exceptID uint) error {
	if username != "" {
		existing, err := s.repo.FindByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != exceptID:
			return ErrDuplicateUsername
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != exceptID:
			return ErrDuplicateEmail
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	return nil
}
