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

// FaqService manages the public FAQ.
type FaqService interface {
	List(ctx context.Context, category string, isActive *bool) ([]dto.FaqResponse, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id uint) (dto.FaqResponse, error)
	Create(ctx context.Context, caller Principal, req dto.FaqCreateRequest) (dto.FaqResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.FaqUpdateRequest) (dto.FaqResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
}

type faqService struct {
	repo      repository.FaqRepository
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	strict    *bluemonday.Policy
}

// NewFaqService constructs the FAQ service. Answers keep basic formatting.
func NewFaqService(repo repository.FaqRepository, validate *validator.Validate, logger zerolog.Logger) FaqService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("p", "strong", "em", "a", "ul", "ol", "li", "br")
	policy.AllowAttrs("href", "title", "target").OnElements("a")
	return &faqService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "faq_service").Logger(),
		policy:    policy,
		strict:    bluemonday.StrictPolicy(),
	}
}

// List defaults to active entries when isActive is nil.
func (s *faqService) List(ctx context.Context, category string, isActive *bool) ([]dto.FaqResponse, error) {
	if isActive == nil {
		active := true
		isActive = &active
	}
	items, err := s.repo.List(ctx, repository.FaqFilter{
		Category: strings.TrimSpace(category),
		IsActive: isActive,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewFaqResponseSlice(items), nil
}

func (s *faqService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *faqService) Get(ctx context.Context, id uint) (dto.FaqResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.FaqResponse{}, translate(err, ErrFaqNotFound)
	}
	return dto.NewFaqResponse(*item), nil
}

func (s *faqService) Create(ctx context.Context, caller Principal, req dto.FaqCreateRequest) (dto.FaqResponse, error) {
	if !caller.IsAdmin() {
		return dto.FaqResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.FaqResponse{}, err
	}

	question := strings.TrimSpace(s.strict.Sanitize(req.Question))
	answer := strings.TrimSpace(s.policy.Sanitize(req.Answer))
	if question == "" || answer == "" {
		return dto.FaqResponse{}, ErrEmptyAfterSanitize
	}

	item := models.Faq{
		Question:    question,
		Answer:      answer,
		Category:    s.category(req.Category),
		OrderNumber: req.OrderNumber,
		IsActive:    true,
		CreatedBy:   caller.UserID,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, caller.Actor, &item); err != nil {
		return dto.FaqResponse{}, err
	}
	return dto.NewFaqResponse(item), nil
}

func (s *faqService) Update(ctx context.Context, caller Principal, id uint, req dto.FaqUpdateRequest) (dto.FaqResponse, error) {
	if !caller.IsAdmin() {
		return dto.FaqResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.FaqResponse{}, err
	}

	item, err := s.repo.Update(ctx, caller.Actor, id, func(item *models.Faq) error {
		if req.Question != nil {
			item.Question = strings.TrimSpace(s.strict.Sanitize(*req.Question))
		}
		if req.Answer != nil {
			item.Answer = strings.TrimSpace(s.policy.Sanitize(*req.Answer))
		}
		if item.Question == "" || item.Answer == "" {
			return ErrEmptyAfterSanitize
		}
		if req.Category != nil {
			item.Category = s.category(req.Category)
		}
		if req.OrderNumber != nil {
			item.OrderNumber = *req.OrderNumber
		}
		if req.IsActive != nil {
			item.IsActive = *req.IsActive
		}
		return nil
	})
	if err != nil {
		return dto.FaqResponse{}, translate(err, ErrFaqNotFound)
	}
	return dto.NewFaqResponse(*item), nil
}

func (s *faqService) Delete(ctx context.Context, caller Principal, id uint) error {
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	return translate(s.repo.Delete(ctx, caller.Actor, id), ErrFaqNotFound)
}

func (s *faqService) category(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
