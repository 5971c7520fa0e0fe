package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/observability"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

// ResponseService collects and exposes survey submissions.
type ResponseService interface {
	ListBySurvey(ctx context.Context, caller Principal, surveyID uint) ([]dto.SurveyResponseSummary, error)
	ListMine(ctx context.Context, caller Principal) ([]dto.SurveyResponseSummary, error)
	Get(ctx context.Context, caller Principal, id uint) (dto.SurveyResponseDetail, error)
	Submit(ctx context.Context, caller Principal, req dto.SubmitResponseRequest) (dto.SurveyResponseDetail, error)
	Delete(ctx context.Context, caller Principal, id uint) error
}

type responseService struct {
	repo      repository.ResponseRepository
	surveys   repository.SurveyRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewResponseService constructs the response service.
func NewResponseService(repo repository.ResponseRepository, surveys repository.SurveyRepository, validate *validator.Validate, logger zerolog.Logger) ResponseService {
	return &responseService{
		repo:      repo,
		surveys:   surveys,
		validator: validate,
		logger:    logger.With().Str("component", "response_service").Logger(),
		now:       time.Now,
	}
}

func (s *responseService) ListBySurvey(ctx context.Context, caller Principal, surveyID uint) ([]dto.SurveyResponseSummary, error) {
	if !caller.isStaffReviewer() {
		return nil, ErrAccessDenied
	}
	if _, err := s.surveys.FindByID(ctx, surveyID); err != nil {
		return nil, translate(err, ErrSurveyNotFound)
	}
	responses, err := s.repo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return dto.NewSurveyResponseSummarySlice(responses), nil
}

func (s *responseService) ListMine(ctx context.Context, caller Principal) ([]dto.SurveyResponseSummary, error) {
	responses, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return dto.NewSurveyResponseSummarySlice(responses), nil
}

func (s *responseService) Get(ctx context.Context, caller Principal, id uint) (dto.SurveyResponseDetail, error) {
	response, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.SurveyResponseDetail{}, translate(err, ErrResponseNotFound)
	}
	if !canReadResponse(caller, response) {
		return dto.SurveyResponseDetail{}, ErrAccessDenied
	}
	return dto.NewSurveyResponseDetail(*response), nil
}

func (s *responseService) Submit(ctx context.Context, caller Principal, req dto.SubmitResponseRequest) (dto.SurveyResponseDetail, error) {
	result := "rejected"
	defer func() {
		observability.SurveySubmissions().WithLabelValues(result).Inc()
	}()

	if err := s.validator.Struct(req); err != nil {
		return dto.SurveyResponseDetail{}, err
	}

	survey, err := s.surveys.FindDetail(ctx, req.SurveyID)
	if err != nil {
		return dto.SurveyResponseDetail{}, translate(err, ErrSurveyNotFound)
	}
	if !survey.AcceptsResponses(s.now()) {
		return dto.SurveyResponseDetail{}, ErrSurveyUnavailable
	}

	exists, err := s.repo.Exists(ctx, survey.ID, caller.UserID)
	if err != nil {
		return dto.SurveyResponseDetail{}, err
	}
	if exists {
		return dto.SurveyResponseDetail{}, ErrDuplicateResponse
	}

	questions := make(map[uint]*models.Question, len(survey.Questions))
	for i := range survey.Questions {
		questions[survey.Questions[i].ID] = &survey.Questions[i]
	}

	seen := make(map[uint]struct{}, len(req.Answers))
	answers := make([]models.Answer, 0, len(req.Answers))
	for _, submitted := range req.Answers {
		question, ok := questions[submitted.QuestionID]
		if !ok {
			return dto.SurveyResponseDetail{}, ErrWrongSurvey
		}
		if _, dup := seen[question.ID]; dup {
			return dto.SurveyResponseDetail{}, ErrDuplicateAnswer
		}
		seen[question.ID] = struct{}{}

		answer, err := buildAnswer(question, submitted.OptionID, submitted.TextAnswer)
		if err != nil {
			return dto.SurveyResponseDetail{}, err
		}
		answers = append(answers, answer)
	}

	response := models.SurveyResponse{
		SurveyID:    survey.ID,
		UserID:      caller.UserID,
		SubmittedAt: s.now().UTC(),
		Answers:     answers,
	}
	if err := s.repo.Submit(ctx, caller.Actor, &response); err != nil {
		return dto.SurveyResponseDetail{}, err
	}
	result = "accepted"

	s.logger.Info().
		Uint("survey_id", survey.ID).
		Uint("user_id", caller.UserID).
		Uint("response_id", response.ID).
		Msg("survey response submitted")

	stored, err := s.repo.FindByID(ctx, response.ID)
	if err != nil {
		return dto.SurveyResponseDetail{}, err
	}
	return dto.NewSurveyResponseDetail(*stored), nil
}

func (s *responseService) Delete(ctx context.Context, caller Principal, id uint) error {
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	return translate(s.repo.Delete(ctx, caller.Actor, id), ErrResponseNotFound)
}

// canReadResponse allows reviewers, the respondent and the survey author.
func canReadResponse(caller Principal, response *models.SurveyResponse) bool {
	if caller.isStaffReviewer() || response.UserID == caller.UserID {
		return true
	}
	return response.Survey != nil && response.Survey.CreatedBy == caller.UserID
}

// buildAnswer validates a selection against the question. Text questions
// need text; every other type needs one of the question's own options.
func buildAnswer(question *models.Question, optionID *uint, text *string) (models.Answer, error) {
	answer := models.Answer{QuestionID: question.ID}

	if question.IsFreeText() {
		if text == nil || strings.TrimSpace(*text) == "" {
			return models.Answer{}, ErrTextAnswerRequired
		}
		trimmed := strings.TrimSpace(*text)
		answer.TextAnswer = &trimmed
		return answer, nil
	}

	if optionID == nil || !hasOption(question, *optionID) {
		return models.Answer{}, ErrOptionRequired
	}
	selected := *optionID
	answer.OptionID = &selected
	if text != nil && strings.TrimSpace(*text) != "" {
		trimmed := strings.TrimSpace(*text)
		answer.TextAnswer = &trimmed
	}
	return answer, nil
}

func hasOption(question *models.Question, optionID uint) bool {
	for _, option := range question.Options {
		if option.ID == optionID {
			return true
		}
	}
	return false
}
