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

// SupportInfoService manages support contact channels.
type SupportInfoService interface {
	List(ctx context.Context, contactType string) ([]dto.SupportInfoResponse, error)
	Types(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id uint) (dto.SupportInfoResponse, error)
	Create(ctx context.Context, caller Principal, req dto.SupportInfoCreateRequest) (dto.SupportInfoResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.SupportInfoUpdateRequest) (dto.SupportInfoResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
}

type supportInfoService struct {
	repo      repository.SupportInfoRepository
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
}

// NewSupportInfoService constructs the support info service.
func NewSupportInfoService(repo repository.SupportInfoRepository, validate *validator.Validate, logger zerolog.Logger) SupportInfoService {
	return &supportInfoService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "support_info_service").Logger(),
		policy:    bluemonday.StrictPolicy(),
	}
}

func (s *supportInfoService) List(ctx context.Context, contactType string) ([]dto.SupportInfoResponse, error) {
	items, err := s.repo.ListActive(ctx, strings.ToLower(strings.TrimSpace(contactType)))
	if err != nil {
		return nil, err
	}
	return dto.NewSupportInfoResponseSlice(items), nil
}

func (s *supportInfoService) Types(ctx context.Context) ([]string, error) {
	types, err := s.repo.Types(ctx)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

func (s *supportInfoService) Get(ctx context.Context, id uint) (dto.SupportInfoResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.SupportInfoResponse{}, translate(err, ErrSupportInfoNotFound)
	}
	return dto.NewSupportInfoResponse(*item), nil
}

func (s *supportInfoService) Create(ctx context.Context, caller Principal, req dto.SupportInfoCreateRequest) (dto.SupportInfoResponse, error) {
	if !caller.IsAdmin() {
		return dto.SupportInfoResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SupportInfoResponse{}, err
	}

	value := s.clean(&req.ContactValue)
	if value == nil || *value == "" {
		return dto.SupportInfoResponse{}, ErrEmptyAfterSanitize
	}
	contactType := req.ContactType
	item := models.SupportInfo{
		ContactType:  &contactType,
		ContactValue: value,
		Description:  s.clean(req.Description),
		IsActive:     true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, caller.Actor, &item); err != nil {
		return dto.SupportInfoResponse{}, err
	}
	return dto.NewSupportInfoResponse(item), nil
}

func (s *supportInfoService) Update(ctx context.Context, caller Principal, id uint, req dto.SupportInfoUpdateRequest) (dto.SupportInfoResponse, error) {
	if !caller.IsAdmin() {
		return dto.SupportInfoResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SupportInfoResponse{}, err
	}

	item, err := s.repo.Update(ctx, caller.Actor, id, func(item *models.SupportInfo) error {
		if req.ContactType != nil {
			contactType := *req.ContactType
			item.ContactType = &contactType
		}
		if req.ContactValue != nil {
			item.ContactValue = s.clean(req.ContactValue)
		}
		if req.Description != nil {
			item.Description = s.clean(req.Description)
		}
		if req.IsActive != nil {
			item.IsActive = *req.IsActive
		}
		return nil
	})
	if err != nil {
		return dto.SupportInfoResponse{}, translate(err, ErrSupportInfoNotFound)
	}
	return dto.NewSupportInfoResponse(*item), nil
}

func (s *supportInfoService) Delete(ctx context.Context, caller Principal, id uint) error {
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	return translate(s.repo.Delete(ctx, caller.Actor, id), ErrSupportInfoNotFound)
}

func (s *supportInfoService) clean(value *string) *string {
	if value == nil {
		return nil
	}
	clean := strings.TrimSpace(s.policy.Sanitize(*value))
	return &clean
}
