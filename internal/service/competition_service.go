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

// CompetitionService manages competitions tied to surveys.
type CompetitionService interface {
	List(ctx context.Context, status string) ([]dto.CompetitionResponse, error)
	ListActive(ctx context.Context) ([]dto.CompetitionResponse, error)
	Get(ctx context.Context, id uint) (dto.CompetitionResponse, error)
	Create(ctx context.Context, caller Principal, req dto.CompetitionCreateRequest) (dto.CompetitionResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.CompetitionUpdateRequest) (dto.CompetitionResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
}

type competitionService struct {
	repo      repository.CompetitionRepository
	surveys   repository.SurveyRepository
	views     *CacheInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewCompetitionService constructs the competition service.
func NewCompetitionService(repo repository.CompetitionRepository, surveys repository.SurveyRepository, views *CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) CompetitionService {
	return &competitionService{
		repo:      repo,
		surveys:   surveys,
		views:     views,
		validator: validate,
		logger:    logger.With().Str("component", "competition_service").Logger(),
		policy:    bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

func (s *competitionService) List(ctx context.Context, status string) ([]dto.CompetitionResponse, error) {
	competitions, err := s.repo.List(ctx, strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		return nil, err
	}
	return dto.NewCompetitionResponseSlice(competitions), nil
}

func (s *competitionService) ListActive(ctx context.Context) ([]dto.CompetitionResponse, error) {
	competitions, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return dto.NewCompetitionResponseSlice(competitions), nil
}

func (s *competitionService) Get(ctx context.Context, id uint) (dto.CompetitionResponse, error) {
	competition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CompetitionResponse{}, translate(err, ErrCompetitionNotFound)
	}
	return dto.NewCompetitionResponse(*competition), nil
}

func (s *competitionService) Create(ctx context.Context, caller Principal, req dto.CompetitionCreateRequest) (dto.CompetitionResponse, error) {
	if !caller.IsAdmin() {
		return dto.CompetitionResponse{}, ErrAccessDenied
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return dto.CompetitionResponse{}, err
	}
	if !req.StartDate.Before(req.EndDate) {
		return dto.CompetitionResponse{}, ErrInvalidDateRange
	}
	if err := s.ensureSurvey(ctx, req.RelatedSurveyID); err != nil {
		return dto.CompetitionResponse{}, err
	}

	competition := models.Competition{
		Title:            req.Title,
		Description:      s.sanitize(req.Description),
		RelatedSurveyID:  req.RelatedSurveyID,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		PrizeDescription: s.sanitize(req.PrizeDescription),
		Status:           models.CompetitionStatusAt(req.StartDate, req.EndDate, s.now()),
	}
	if err := s.repo.Create(ctx, caller.Actor, &competition); err != nil {
		return dto.CompetitionResponse{}, err
	}
	s.views.dashboard(ctx)

	s.logger.Info().Uint("competition_id", competition.ID).Str("status", competition.Status).Msg("competition created")
	return s.Get(ctx, competition.ID)
}

func (s *competitionService) Update(ctx context.Context, caller Principal, id uint, req dto.CompetitionUpdateRequest) (dto.CompetitionResponse, error) {
	if !caller.IsAdmin() {
		return dto.CompetitionResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.CompetitionResponse{}, err
	}
	if err := s.ensureSurvey(ctx, req.RelatedSurveyID); err != nil {
		return dto.CompetitionResponse{}, err
	}

	competition, err := s.repo.Update(ctx, caller.Actor, id, func(competition *models.Competition) error {
		if req.Title != nil {
			competition.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			competition.Description = s.sanitize(req.Description)
		}
		if req.RelatedSurveyID != nil {
			competition.RelatedSurveyID = req.RelatedSurveyID
		}
		if req.PrizeDescription != nil {
			competition.PrizeDescription = s.sanitize(req.PrizeDescription)
		}
		datesChanged := false
		if req.StartDate != nil {
			competition.StartDate = *req.StartDate
			datesChanged = true
		}
		if req.EndDate != nil {
			competition.EndDate = *req.EndDate
			datesChanged = true
		}
		if !competition.StartDate.Before(competition.EndDate) {
			return ErrInvalidDateRange
		}

		switch {
		case req.Status != nil:
			competition.Status = *req.Status
		case datesChanged:
			competition.Status = models.CompetitionStatusAt(competition.StartDate, competition.EndDate, s.now())
		}
		return nil
	})
	if err != nil {
		return dto.CompetitionResponse{}, translate(err, ErrCompetitionNotFound)
	}
	s.views.all(ctx)
	return dto.NewCompetitionResponse(*competition), nil
}

func (s *competitionService) Delete(ctx context.Context, caller Principal, id uint) error {
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	if err := s.repo.Delete(ctx, caller.Actor, id); err != nil {
		return translate(err, ErrCompetitionNotFound)
	}
	s.views.all(ctx)
	s.logger.Info().Uint("competition_id", id).Msg("competition deleted")
	return nil
}

func (s *competitionService) ensureSurvey(ctx context.Context, surveyID *uint) error {
	if surveyID == nil {
		return nil
	}
	if _, err := s.surveys.FindByID(ctx, *surveyID); err != nil {
		return translate(err, ErrSurveyNotFound)
	}
	return nil
}

func (s *competitionService) sanitize(value *string) *string {
	if value == nil {
		return nil
	}
	clean := strings.TrimSpace(s.policy.Sanitize(*value))
	return &clean
}
