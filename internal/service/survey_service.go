package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

// SurveyService exposes survey authoring and discovery.
type SurveyService interface {
	List(ctx context.Context, req dto.SurveyListRequest) (dto.SurveyListResponse, error)
	ListMine(ctx context.Context, caller Principal) ([]dto.SurveyResponse, error)
	ListAvailable(ctx context.Context, caller Principal) ([]dto.SurveyResponse, error)
	Get(ctx context.Context, id uint) (dto.SurveyDetailResponse, error)
	Create(ctx context.Context, caller Principal, req dto.SurveyCreateRequest) (dto.SurveyResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.SurveyUpdateRequest) (dto.SurveyResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
	Statistics(ctx context.Context, id uint) (dto.SurveyStatisticsResponse, error)
}

type surveyService struct {
	repo      repository.SurveyRepository
	views     *CacheInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewSurveyService constructs the survey service.
func NewSurveyService(repo repository.SurveyRepository, views *CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) SurveyService {
	return &surveyService{
		repo:      repo,
		views:     views,
		validator: validate,
		logger:    logger.With().Str("component", "survey_service").Logger(),
		policy:    bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

func (s *surveyService) List(ctx context.Context, req dto.SurveyListRequest) (dto.SurveyListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize, 10)

	surveys, total, err := s.repo.List(ctx, repository.SurveyFilter{
		TargetAudience: strings.ToLower(strings.TrimSpace(req.TargetAudience)),
		IsActive:       req.IsActive,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return dto.SurveyListResponse{}, err
	}

	return dto.SurveyListResponse{
		Items:      dto.NewSurveyResponseSlice(surveys),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *surveyService) ListMine(ctx context.Context, caller Principal) ([]dto.SurveyResponse, error) {
	creator := caller.UserID
	surveys, _, err := s.repo.List(ctx, repository.SurveyFilter{CreatedBy: &creator})
	if err != nil {
		return nil, err
	}
	return dto.NewSurveyResponseSlice(surveys), nil
}

func (s *surveyService) ListAvailable(ctx context.Context, caller Principal) ([]dto.SurveyResponse, error) {
	surveys, err := s.repo.ListAvailable(ctx, caller.Role, s.now())
	if err != nil {
		return nil, err
	}
	return dto.NewSurveyResponseSlice(surveys), nil
}

func (s *surveyService) Get(ctx context.Context, id uint) (dto.SurveyDetailResponse, error) {
	survey, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return dto.SurveyDetailResponse{}, translate(err, ErrSurveyNotFound)
	}
	return dto.NewSurveyDetailResponse(*survey), nil
}

func (s *surveyService) Create(ctx context.Context, caller Principal, req dto.SurveyCreateRequest) (dto.SurveyResponse, error) {
	if !caller.isStaffReviewer() {
		return dto.SurveyResponse{}, ErrAccessDenied
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return dto.SurveyResponse{}, err
	}
	if !req.StartDate.Before(req.EndDate) {
		return dto.SurveyResponse{}, ErrInvalidDateRange
	}

	survey := models.Survey{
		Title:          req.Title,
		Description:    s.sanitize(req.Description),
		TargetAudience: req.TargetAudience,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsActive:       true,
		CreatedBy:      caller.UserID,
	}
	if req.IsActive != nil {
		survey.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, caller.Actor, &survey); err != nil {
		return dto.SurveyResponse{}, err
	}
	s.views.dashboard(ctx)

	s.logger.Info().Uint("survey_id", survey.ID).Uint("created_by", caller.UserID).Msg("survey created")
	return dto.NewSurveyResponse(survey), nil
}

func (s *surveyService) Update(ctx context.Context, caller Principal, id uint, req dto.SurveyUpdateRequest) (dto.SurveyResponse, error) {
	if !caller.isStaffReviewer() {
		return dto.SurveyResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SurveyResponse{}, err
	}

	survey, err := s.repo.Update(ctx, caller.Actor, id, func(survey *models.Survey) error {
		if !caller.IsAdmin() && survey.CreatedBy != caller.UserID {
			return ErrAccessDenied
		}
		if req.Title != nil {
			survey.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			survey.Description = s.sanitize(req.Description)
		}
		if req.TargetAudience != nil {
			survey.TargetAudience = *req.TargetAudience
		}
		if req.StartDate != nil {
			survey.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			survey.EndDate = *req.EndDate
		}
		if req.IsActive != nil {
			survey.IsActive = *req.IsActive
		}
		if !survey.StartDate.Before(survey.EndDate) {
			return ErrInvalidDateRange
		}
		return nil
	})
	if err != nil {
		return dto.SurveyResponse{}, translate(err, ErrSurveyNotFound)
	}
	s.views.dashboard(ctx)
	return dto.NewSurveyResponse(*survey), nil
}

func (s *surveyService) Delete(ctx context.Context, caller Principal, id uint) error {
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	if err := s.repo.Delete(ctx, caller.Actor, id); err != nil {
		return translate(err, ErrSurveyNotFound)
	}
	s.views.all(ctx)
	s.logger.Info().Uint("survey_id", id).Msg("survey deleted")
	return nil
}

func (s *surveyService) Statistics(ctx context.Context, id uint) (dto.SurveyStatisticsResponse, error) {
	survey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.SurveyStatisticsResponse{}, translate(err, ErrSurveyNotFound)
	}
	stats, err := s.repo.Statistics(ctx, id)
	if err != nil {
		return dto.SurveyStatisticsResponse{}, err
	}

	response := dto.SurveyStatisticsResponse{
		SurveyID:       survey.ID,
		Title:          survey.Title,
		TotalResponses: stats.TotalResponses,
		TotalQuestions: stats.TotalQuestions,
		AverageScore:   stats.AverageScore,
	}
	if stats.TotalResponses > 0 {
		response.CompletionRate = models.Round2(float64(stats.ScoredResponses) / float64(stats.TotalResponses) * 100)
	}
	return response, nil
}

func (s *surveyService) sanitize(value *string) *string {
	if value == nil {
		return nil
	}
	clean := strings.TrimSpace(s.policy.Sanitize(*value))
	return &clean
}
