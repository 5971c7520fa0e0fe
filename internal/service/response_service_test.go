package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

type surveyFixture struct {
	db        *gorm.DB
	responses ResponseService
	answers   AnswerService
	owner     models.User
	student   models.User
	survey    models.Survey
	choice    models.Question
	text      models.Question
}

func newSurveyFixture(t *testing.T) surveyFixture {
	t.Helper()
	db := setupServiceDB(t)
	surveys := repository.NewSurveyRepository(db)
	questions := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	answerRepo := repository.NewAnswerRepository(db)

	owner := seedAccount(t, db, "faculty", models.RoleFaculty)
	student := seedAccount(t, db, "student", models.RoleStudent)
	survey, choice, text := seedQuiz(t, db, owner)

	return surveyFixture{
		db:        db,
		responses: NewResponseService(responseRepo, surveys, testValidator(), testLogger()),
		answers:   NewAnswerService(answerRepo, responseRepo, questions, surveys, testValidator(), testLogger()),
		owner:     owner,
		student:   student,
		survey:    survey,
		choice:    choice,
		text:      text,
	}
}

func (f surveyFixture) option(correct bool) uint {
	for _, option := range f.choice.Options {
		if option.IsCorrect == correct {
			return option.ID
		}
	}
	return 0
}

func (f surveyFixture) submission(optionID uint) dto.SubmitResponseRequest {
	return dto.SubmitResponseRequest{
		SurveyID: f.survey.ID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: f.choice.ID, OptionID: uintPtr(optionID)},
			{QuestionID: f.text.ID, TextAnswer: strPtr("  compost more  ")},
		},
	}
}

func TestResponseServiceSubmitScoresAndRejectsDuplicate(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	caller := principalOf(f.student)

	detail, err := f.responses.Submit(ctx, caller, f.submission(f.option(true)))
	require.NoError(t, err)
	require.NotNil(t, detail.Score)
	require.InDelta(t, 100.0, *detail.Score, 0.001)
	require.Len(t, detail.Answers, 2)

	_, err = f.responses.Submit(ctx, caller, f.submission(f.option(false)))
	require.ErrorIs(t, err, ErrDuplicateResponse)

	var count int64
	require.NoError(t, f.db.Model(&models.SurveyResponse{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestResponseServiceSubmitValidatesAnswers(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	caller := principalOf(f.student)

	missingText := dto.SubmitResponseRequest{
		SurveyID: f.survey.ID,
		Answers:  []dto.AnswerSubmission{{QuestionID: f.text.ID}},
	}
	_, err := f.responses.Submit(ctx, caller, missingText)
	require.ErrorIs(t, err, ErrTextAnswerRequired)

	foreignOption := dto.SubmitResponseRequest{
		SurveyID: f.survey.ID,
		Answers:  []dto.AnswerSubmission{{QuestionID: f.choice.ID, OptionID: uintPtr(9999)}},
	}
	_, err = f.responses.Submit(ctx, caller, foreignOption)
	require.ErrorIs(t, err, ErrOptionRequired)

	repeated := dto.SubmitResponseRequest{
		SurveyID: f.survey.ID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: f.choice.ID, OptionID: uintPtr(f.option(true))},
			{QuestionID: f.choice.ID, OptionID: uintPtr(f.option(false))},
		},
	}
	_, err = f.responses.Submit(ctx, caller, repeated)
	require.ErrorIs(t, err, ErrDuplicateAnswer)
}

func TestResponseServiceRejectsClosedSurvey(t *testing.T) {
	f := newSurveyFixture(t)
	require.NoError(t, f.db.Model(&models.Survey{}).Where("id = ?", f.survey.ID).Update("is_active", false).Error)

	_, err := f.responses.Submit(context.Background(), principalOf(f.student), f.submission(f.option(true)))
	require.ErrorIs(t, err, ErrSurveyUnavailable)
	require.Equal(t, "survey is not available", err.Error())
}

func TestResponseServiceAccessRules(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	outsider := seedAccount(t, f.db, "outsider", models.RoleStudent)

	detail, err := f.responses.Submit(ctx, principalOf(f.student), f.submission(f.option(false)))
	require.NoError(t, err)

	_, err = f.responses.Get(ctx, principalOf(outsider), detail.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.responses.ListBySurvey(ctx, principalOf(outsider), f.survey.ID)
	require.ErrorIs(t, err, ErrForbidden)

	owned, err := f.responses.Get(ctx, principalOf(f.owner), detail.ID)
	require.NoError(t, err)
	require.Equal(t, detail.ID, owned.ID)

	require.ErrorIs(t, f.responses.Delete(ctx, principalOf(f.student), detail.ID), ErrForbidden)
}

func TestAnswerServiceUpdateRecomputesScore(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	caller := principalOf(f.student)

	detail, err := f.responses.Submit(ctx, caller, f.submission(f.option(true)))
	require.NoError(t, err)

	var choiceAnswer dto.AnswerResponse
	for _, answer := range detail.Answers {
		if answer.QuestionID == f.choice.ID {
			choiceAnswer = answer
		}
	}
	require.NotZero(t, choiceAnswer.ID)

	_, err = f.answers.Update(ctx, caller, choiceAnswer.ID, dto.AnswerUpdateRequest{OptionID: uintPtr(f.option(false))})
	require.NoError(t, err)

	var stored models.SurveyResponse
	require.NoError(t, f.db.First(&stored, detail.ID).Error)
	require.NotNil(t, stored.Score)
	require.InDelta(t, 0.0, *stored.Score, 0.001)

	outsider := seedAccount(t, f.db, "outsider", models.RoleStudent)
	_, err = f.answers.Update(ctx, principalOf(outsider), choiceAnswer.ID, dto.AnswerUpdateRequest{OptionID: uintPtr(f.option(true))})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.answers.Create(ctx, caller, dto.AnswerCreateRequest{ResponseID: detail.ID, QuestionID: f.choice.ID, OptionID: uintPtr(f.option(true))})
	require.ErrorIs(t, err, ErrDuplicateAnswer)
}

func TestAnswerServiceStatisticsAndSummary(t *testing.T) {
	f := newSurveyFixture(t)
	ctx := context.Background()
	second := seedAccount(t, f.db, "second", models.RoleStudent)
	third := seedAccount(t, f.db, "third", models.RoleStudent)

	_, err := f.responses.Submit(ctx, principalOf(f.student), f.submission(f.option(true)))
	require.NoError(t, err)
	_, err = f.responses.Submit(ctx, principalOf(second), f.submission(f.option(false)))
	require.NoError(t, err)
	_, err = f.responses.Submit(ctx, principalOf(third), f.submission(f.option(false)))
	require.NoError(t, err)

	stats, err := f.answers.QuestionStatistics(ctx, principalOf(f.owner), f.choice.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalAnswers)
	require.Len(t, stats.Options, 2)
	require.Equal(t, "Black", stats.Options[0].OptionText)
	require.Equal(t, 2, stats.Options[0].Count)
	require.InDelta(t, 66.67, stats.Options[0].Percentage, 0.001)
	require.InDelta(t, 33.33, stats.Options[1].Percentage, 0.001)

	texts, err := f.answers.QuestionStatistics(ctx, principalOf(f.owner), f.text.ID)
	require.NoError(t, err)
	require.Len(t, texts.TextAnswers, 3)
	require.Equal(t, "compost more", texts.TextAnswers[0])

	_, err = f.answers.QuestionStatistics(ctx, principalOf(second), f.choice.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.answers.QuestionStatistics(ctx, principalOf(second), 9999)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.answers.SurveySummary(ctx, principalOf(second), f.survey.ID)
	require.ErrorIs(t, err, ErrForbidden)

	colleague := seedAccount(t, f.db, "colleague", models.RoleFaculty)
	shared, err := f.answers.QuestionStatistics(ctx, principalOf(colleague), f.choice.ID)
	require.NoError(t, err)
	require.Equal(t, 3, shared.TotalAnswers)
	_, err = f.answers.QuestionStatistics(ctx, principalOf(colleague), 9999)
	require.ErrorIs(t, err, ErrQuestionNotFound)

	summary, err := f.answers.SurveySummary(ctx, principalOf(f.owner), f.survey.ID)
	require.NoError(t, err)
	require.Len(t, summary.Questions, 2)
	choice := summary.Questions[0]
	require.Equal(t, f.choice.ID, choice.QuestionID)
	require.Equal(t, 1, choice.CorrectAnswers)
	require.Equal(t, 2, choice.IncorrectAnswers)
	require.InDelta(t, 33.33, choice.CorrectPercentage, 0.001)
	require.Zero(t, summary.Questions[1].CorrectAnswers)
}
