package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

// ParticipationService records seminars and their review.
type ParticipationService interface {
	List(ctx context.Context, caller Principal, approvalStatus string) ([]dto.ParticipationResponse, error)
	ListMine(ctx context.Context, caller Principal) ([]dto.ParticipationResponse, error)
	Get(ctx context.Context, caller Principal, id uint) (dto.ParticipationResponse, error)
	Create(ctx context.Context, caller Principal, req dto.ParticipationCreateRequest) (dto.ParticipationResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.ParticipationUpdateRequest) (dto.ParticipationResponse, error)
	Review(ctx context.Context, caller Principal, id uint, status string) (dto.ParticipationResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
}

type participationService struct {
	repo      repository.ParticipationRepository
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
}

// NewParticipationService constructs the participation service.
func NewParticipationService(repo repository.ParticipationRepository, validate *validator.Validate, logger zerolog.Logger) ParticipationService {
	return &participationService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "participation_service").Logger(),
		policy:    bluemonday.StrictPolicy(),
	}
}

func (s *participationService) List(ctx context.Context, caller Principal, approvalStatus string) ([]dto.ParticipationResponse, error) {
	if !caller.isStaffReviewer() {
		return nil, ErrAccessDenied
	}
	items, err := s.repo.List(ctx, strings.ToLower(strings.TrimSpace(approvalStatus)))
	if err != nil {
		return nil, err
	}
	return dto.NewParticipationResponseSlice(items), nil
}

func (s *participationService) ListMine(ctx context.Context, caller Principal) ([]dto.ParticipationResponse, error) {
	items, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return dto.NewParticipationResponseSlice(items), nil
}

func (s *participationService) Get(ctx context.Context, caller Principal, id uint) (dto.ParticipationResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.ParticipationResponse{}, translate(err, ErrParticipationNotFound)
	}
	if !caller.isStaffReviewer() && item.UserID != caller.UserID {
		return dto.ParticipationResponse{}, ErrAccessDenied
	}
	return dto.NewParticipationResponse(*item), nil
}

func (s *participationService) Create(ctx context.Context, caller Principal, req dto.ParticipationCreateRequest) (dto.ParticipationResponse, error) {
	req.SeminarTitle = strings.TrimSpace(req.SeminarTitle)
	req.Location = strings.TrimSpace(req.Location)
	if err := s.validator.Struct(req); err != nil {
		return dto.ParticipationResponse{}, err
	}

	item := models.EffectiveParticipation{
		UserID:               caller.UserID,
		SeminarTitle:         req.SeminarTitle,
		Location:             req.Location,
		DateConducted:        req.DateConducted,
		NumberOfParticipants: req.NumberOfParticipants,
		Description:          s.sanitize(req.Description),
		ApprovalStatus:       models.ApprovalPending,
	}
	if err := s.repo.Create(ctx, caller.Actor, &item); err != nil {
		return dto.ParticipationResponse{}, err
	}
	return s.Get(ctx, caller, item.ID)
}

func (s *participationService) Update(ctx context.Context, caller Principal, id uint, req dto.ParticipationUpdateRequest) (dto.ParticipationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ParticipationResponse{}, err
	}

	_, err := s.repo.Update(ctx, caller.Actor, id, func(item *models.EffectiveParticipation) error {
		if !caller.IsAdmin() && item.UserID != caller.UserID {
			return ErrAccessDenied
		}
		if req.SeminarTitle != nil {
			item.SeminarTitle = strings.TrimSpace(*req.SeminarTitle)
		}
		if req.Location != nil {
			item.Location = strings.TrimSpace(*req.Location)
		}
		if req.DateConducted != nil {
			item.DateConducted = *req.DateConducted
		}
		if req.NumberOfParticipants != nil {
			item.NumberOfParticipants = req.NumberOfParticipants
		}
		if req.Description != nil {
			item.Description = s.sanitize(req.Description)
		}
		return nil
	})
	if err != nil {
		return dto.ParticipationResponse{}, translate(err, ErrParticipationNotFound)
	}
	return s.Get(ctx, caller, id)
}

// Review approves or rejects a record and stamps the reviewer.
func (s *participationService) Review(ctx context.Context, caller Principal, id uint, status string) (dto.ParticipationResponse, error) {
	if !caller.isStaffReviewer() {
		return dto.ParticipationResponse{}, ErrAccessDenied
	}
	if status != models.ApprovalApproved && status != models.ApprovalRejected {
		return dto.ParticipationResponse{}, ErrInvalidReviewStatus
	}
	reviewer := caller.UserID
	_, err := s.repo.Update(ctx, caller.Actor, id, func(item *models.EffectiveParticipation) error {
		item.ApprovalStatus = status
		item.ApprovedBy = &reviewer
		return nil
	})
	if err != nil {
		return dto.ParticipationResponse{}, translate(err, ErrParticipationNotFound)
	}

	s.logger.Info().Uint("participation_id", id).Str("status", status).Uint("reviewer", reviewer).Msg("participation reviewed")
	return s.Get(ctx, caller, id)
}

func (s *participationService) Delete(ctx context.Context, caller Principal, id uint) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, ErrParticipationNotFound)
	}
	if !caller.IsAdmin() && item.UserID != caller.UserID {
		return ErrAccessDenied
	}
	return translate(s.repo.Delete(ctx, caller.Actor, id), ErrParticipationNotFound)
}

func (s *participationService) sanitize(value *string) *string {
	if value == nil {
		return nil
	}
	clean := strings.TrimSpace(s.policy.Sanitize(*value))
	return &clean
}
