package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

// QuestionService manages the questions and options of a survey.
type QuestionService interface {
	ListBySurvey(ctx context.Context, surveyID uint) ([]dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	Create(ctx context.Context, caller Principal, req dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
	AddOption(ctx context.Context, caller Principal, questionID uint, req dto.OptionRequest) (dto.OptionResponse, error)
	DeleteOption(ctx context.Context, caller Principal, optionID uint) error
}

type questionService struct {
	repo      repository.QuestionRepository
	surveys   repository.SurveyRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuestionService constructs the question service.
func NewQuestionService(repo repository.QuestionRepository, surveys repository.SurveyRepository, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		surveys:   surveys,
		validator: validate,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) ListBySurvey(ctx context.Context, surveyID uint) ([]dto.QuestionResponse, error) {
	if _, err := s.surveys.FindByID(ctx, surveyID); err != nil {
		return nil, translate(err, ErrSurveyNotFound)
	}
	questions, err := s.repo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, translate(err, ErrQuestionNotFound)
	}
	return dto.NewQuestionResponse(*question), nil
}

func (s *questionService) Create(ctx context.Context, caller Principal, req dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuestionResponse{}, err
	}
	if err := s.authorize(ctx, caller, req.SurveyID); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := models.Question{
		SurveyID:     req.SurveyID,
		QuestionText: strings.TrimSpace(req.QuestionText),
		QuestionType: req.QuestionType,
		IsRequired:   req.IsRequired,
		OrderNumber:  req.OrderNumber,
	}
	for _, option := range req.Options {
		question.Options = append(question.Options, models.QuestionOption{
			OptionText:  strings.TrimSpace(option.OptionText),
			OrderNumber: option.OrderNumber,
			IsCorrect:   option.IsCorrect,
		})
	}

	if err := s.repo.Create(ctx, caller.Actor, &question); err != nil {
		return dto.QuestionResponse{}, err
	}
	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Update(ctx context.Context, caller Principal, id uint, req dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuestionResponse{}, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, translate(err, ErrQuestionNotFound)
	}
	if err := s.authorize(ctx, caller, existing.SurveyID); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.repo.Update(ctx, caller.Actor, id, func(question *models.Question) error {
		if req.QuestionText != nil {
			question.QuestionText = strings.TrimSpace(*req.QuestionText)
		}
		if req.QuestionType != nil {
			question.QuestionType = *req.QuestionType
		}
		if req.IsRequired != nil {
			question.IsRequired = *req.IsRequired
		}
		if req.OrderNumber != nil {
			question.OrderNumber = *req.OrderNumber
		}
		return nil
	})
	if err != nil {
		return dto.QuestionResponse{}, translate(err, ErrQuestionNotFound)
	}
	return dto.NewQuestionResponse(*question), nil
}

func (s *questionService) Delete(ctx context.Context, caller Principal, id uint) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, ErrQuestionNotFound)
	}
	if err := s.authorize(ctx, caller, existing.SurveyID); err != nil {
		return err
	}
	return translate(s.repo.Delete(ctx, caller.Actor, id), ErrQuestionNotFound)
}

func (s *questionService) AddOption(ctx context.Context, caller Principal, questionID uint, req dto.OptionRequest) (dto.OptionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OptionResponse{}, err
	}
	question, err := s.repo.FindByID(ctx, questionID)
	if err != nil {
		return dto.OptionResponse{}, translate(err, ErrQuestionNotFound)
	}
	if err := s.authorize(ctx, caller, question.SurveyID); err != nil {
		return dto.OptionResponse{}, err
	}

	option := models.QuestionOption{
		QuestionID:  question.ID,
		OptionText:  strings.TrimSpace(req.OptionText),
		OrderNumber: req.OrderNumber,
		IsCorrect:   req.IsCorrect,
	}
	if err := s.repo.AddOption(ctx, caller.Actor, &option); err != nil {
		return dto.OptionResponse{}, err
	}
	return dto.NewOptionResponse(option), nil
}

func (s *questionService) DeleteOption(ctx context.Context, caller Principal, optionID uint) error {
	option, err := s.repo.FindOption(ctx, optionID)
	if err != nil {
		return translate(err, ErrOptionNotFound)
	}
	question, err := s.repo.FindByID(ctx, option.QuestionID)
	if err != nil {
		return translate(err, ErrQuestionNotFound)
	}
	if err := s.authorize(ctx, caller, question.SurveyID); err != nil {
		return err
	}
	return translate(s.repo.DeleteOption(ctx, caller.Actor, optionID), ErrOptionNotFound)
}

// authorize allows administrators and the faculty member who owns the survey.
func (s *questionService) authorize(ctx context.Context, caller Principal, surveyID uint) error {
	if !caller.isStaffReviewer() {
		return ErrAccessDenied
	}
	survey, err := s.surveys.FindByID(ctx, surveyID)
	if err != nil {
		return translate(err, ErrSurveyNotFound)
	}
	if !caller.IsAdmin() && survey.CreatedBy != caller.UserID {
		return ErrAccessDenied
	}
	return nil
}
