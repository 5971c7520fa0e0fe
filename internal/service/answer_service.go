package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

// AnswerService manages individual answers and their aggregates.
type AnswerService interface {
	ListByResponse(ctx context.Context, caller Principal, responseID uint) ([]dto.AnswerResponse, error)
	Get(ctx context.Context, caller Principal, id uint) (dto.AnswerResponse, error)
	Create(ctx context.Context, caller Principal, req dto.AnswerCreateRequest) (dto.AnswerResponse, error)
	Update(ctx context.Context, caller Principal, id uint, req dto.AnswerUpdateRequest) (dto.AnswerResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
	QuestionStatistics(ctx context.Context, caller Principal, questionID uint) (dto.AnswerStatisticsResponse, error)
	SurveySummary(ctx context.Context, caller Principal, surveyID uint) (dto.SurveyAnswerSummaryResponse, error)
}

type answerService struct {
	repo      repository.AnswerRepository
	responses repository.ResponseRepository
	questions repository.QuestionRepository
	surveys   repository.SurveyRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAnswerService constructs the answer service.
func NewAnswerService(
	repo repository.AnswerRepository,
	responses repository.ResponseRepository,
	questions repository.QuestionRepository,
	surveys repository.SurveyRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AnswerService {
	return &answerService{
		repo:      repo,
		responses: responses,
		questions: questions,
		surveys:   surveys,
		validator: validate,
		logger:    logger.With().Str("component", "answer_service").Logger(),
	}
}

func (s *answerService) ListByResponse(ctx context.Context, caller Principal, responseID uint) ([]dto.AnswerResponse, error) {
	response, err := s.responses.FindByID(ctx, responseID)
	if err != nil {
		return nil, translate(err, ErrResponseNotFound)
	}
	if !canReadResponse(caller, response) {
		return nil, ErrAccessDenied
	}
	answers, err := s.repo.ListByResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	return dto.NewAnswerResponseSlice(answers), nil
}

func (s *answerService) Get(ctx context.Context, caller Principal, id uint) (dto.AnswerResponse, error) {
	answer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrAnswerNotFound)
	}
	response, err := s.responses.FindByID(ctx, answer.ResponseID)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrResponseNotFound)
	}
	if !canReadResponse(caller, response) {
		return dto.AnswerResponse{}, ErrAccessDenied
	}
	return dto.NewAnswerResponse(*answer), nil
}

func (s *answerService) Create(ctx context.Context, caller Principal, req dto.AnswerCreateRequest) (dto.AnswerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AnswerResponse{}, err
	}

	response, err := s.responses.FindByID(ctx, req.ResponseID)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrResponseNotFound)
	}
	if response.UserID != caller.UserID {
		return dto.AnswerResponse{}, ErrAccessDenied
	}

	question, err := s.questions.FindByID(ctx, req.QuestionID)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrQuestionNotFound)
	}
	if question.SurveyID != response.SurveyID {
		return dto.AnswerResponse{}, ErrWrongSurvey
	}

	exists, err := s.repo.Exists(ctx, response.ID, question.ID)
	if err != nil {
		return dto.AnswerResponse{}, err
	}
	if exists {
		return dto.AnswerResponse{}, ErrDuplicateAnswer
	}

	answer, err := buildAnswer(question, req.OptionID, req.TextAnswer)
	if err != nil {
		return dto.AnswerResponse{}, err
	}
	answer.ResponseID = response.ID

	if err := s.repo.Create(ctx, caller.Actor, &answer); err != nil {
		return dto.AnswerResponse{}, err
	}
	return s.load(ctx, answer.ID)
}

func (s *answerService) Update(ctx context.Context, caller Principal, id uint, req dto.AnswerUpdateRequest) (dto.AnswerResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AnswerResponse{}, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrAnswerNotFound)
	}
	response, err := s.responses.FindByID(ctx, existing.ResponseID)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrResponseNotFound)
	}
	if response.UserID != caller.UserID {
		return dto.AnswerResponse{}, ErrAccessDenied
	}
	question, err := s.questions.FindByID(ctx, existing.QuestionID)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrQuestionNotFound)
	}

	optionID := existing.OptionID
	if req.OptionID != nil {
		optionID = req.OptionID
	}
	text := existing.TextAnswer
	if req.TextAnswer != nil {
		text = req.TextAnswer
	}
	validated, err := buildAnswer(question, optionID, text)
	if err != nil {
		return dto.AnswerResponse{}, err
	}

	_, err = s.repo.Update(ctx, caller.Actor, id, func(answer *models.Answer) error {
		answer.OptionID = validated.OptionID
		answer.TextAnswer = validated.TextAnswer
		return nil
	})
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrAnswerNotFound)
	}
	return s.load(ctx, id)
}

func (s *answerService) Delete(ctx context.Context, caller Principal, id uint) error {
	answer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, ErrAnswerNotFound)
	}
	if !caller.IsAdmin() {
		response, err := s.responses.FindByID(ctx, answer.ResponseID)
		if err != nil {
			return translate(err, ErrResponseNotFound)
		}
		if response.UserID != caller.UserID {
			return ErrAccessDenied
		}
	}
	return translate(s.repo.Delete(ctx, caller.Actor, id), ErrAnswerNotFound)
}

func (s *answerService) QuestionStatistics(ctx context.Context, caller Principal, questionID uint) (dto.AnswerStatisticsResponse, error) {
	if !caller.isStaffReviewer() {
		return dto.AnswerStatisticsResponse{}, ErrAccessDenied
	}
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return dto.AnswerStatisticsResponse{}, translate(err, ErrQuestionNotFound)
	}

	answers, err := s.repo.ListByQuestion(ctx, questionID)
	if err != nil {
		return dto.AnswerStatisticsResponse{}, err
	}

	statistics := dto.AnswerStatisticsResponse{
		QuestionID:   question.ID,
		QuestionText: question.QuestionText,
		QuestionType: question.QuestionType,
		TotalAnswers: len(answers),
	}

	if question.IsFreeText() {
		texts := make([]string, 0, len(answers))
		for _, answer := range answers {
			if answer.TextAnswer != nil && *answer.TextAnswer != "" {
				texts = append(texts, *answer.TextAnswer)
			}
		}
		statistics.TextAnswers = texts
		return statistics, nil
	}

	counts := make(map[uint]int, len(question.Options))
	for _, answer := range answers {
		if answer.OptionID != nil {
			counts[*answer.OptionID]++
		}
	}
	options := make([]dto.OptionCount, 0, len(question.Options))
	for _, option := range question.Options {
		count := counts[option.ID]
		options = append(options, dto.OptionCount{
			OptionID:   option.ID,
			OptionText: option.OptionText,
			IsCorrect:  option.IsCorrect,
			Count:      count,
			Percentage: percentage(count, len(answers)),
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Count > options[j].Count
	})
	statistics.Options = options
	return statistics, nil
}

func (s *answerService) SurveySummary(ctx context.Context, caller Principal, surveyID uint) (dto.SurveyAnswerSummaryResponse, error) {
	if !caller.isStaffReviewer() {
		return dto.SurveyAnswerSummaryResponse{}, ErrAccessDenied
	}
	survey, err := s.surveys.FindByID(ctx, surveyID)
	if err != nil {
		return dto.SurveyAnswerSummaryResponse{}, translate(err, ErrSurveyNotFound)
	}
	if !caller.IsAdmin() && survey.CreatedBy != caller.UserID {
		return dto.SurveyAnswerSummaryResponse{}, ErrAccessDenied
	}

	questions, err := s.questions.ListBySurvey(ctx, surveyID)
	if err != nil {
		return dto.SurveyAnswerSummaryResponse{}, err
	}
	answers, err := s.repo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return dto.SurveyAnswerSummaryResponse{}, err
	}

	byQuestion := make(map[uint][]models.Answer, len(questions))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = append(byQuestion[answer.QuestionID], answer)
	}

	summaries := make([]dto.QuestionSummary, 0, len(questions))
	for _, question := range questions {
		given := byQuestion[question.ID]
		summary := dto.QuestionSummary{
			QuestionID:   question.ID,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			TotalAnswers: len(given),
		}
		if !question.IsFreeText() {
			for _, answer := range given {
				if answer.Option == nil {
					continue
				}
				if answer.Option.IsCorrect {
					summary.CorrectAnswers++
				} else {
					summary.IncorrectAnswers++
				}
			}
		}
		summary.CorrectPercentage = percentage(summary.CorrectAnswers, summary.TotalAnswers)
		summaries = append(summaries, summary)
	}

	return dto.SurveyAnswerSummaryResponse{
		SurveyID:  survey.ID,
		Title:     survey.Title,
		Questions: summaries,
	}, nil
}

func (s *answerService) load(ctx context.Context, id uint) (dto.AnswerResponse, error) {
	answer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.AnswerResponse{}, translate(err, ErrAnswerNotFound)
	}
	return dto.NewAnswerResponse(*answer), nil
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return models.Round2(float64(part) / float64(total) * 100)
}
