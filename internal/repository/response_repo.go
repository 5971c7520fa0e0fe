package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// ResponseRepository persists survey responses.
type ResponseRepository interface {
	ListBySurvey(ctx context.Context, surveyID uint) ([]models.SurveyResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]models.SurveyResponse, error)
	FindByID(ctx context.Context, id uint) (*models.SurveyResponse, error)
	Exists(ctx context.Context, surveyID, userID uint) (bool, error)
	Submit(ctx context.Context, actor audit.Actor, response *models.SurveyResponse) error
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository constructs the response repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) ListBySurvey(ctx context.Context, surveyID uint) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	err := r.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Preload("User").
		Preload("Survey").
		Order("submitted_at DESC, id DESC").
		Find(&responses).Error
	return responses, err
}

func (r *responseRepository) ListByUser(ctx context.Context, userID uint) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("User").
		Preload("Survey").
		Order("submitted_at DESC, id DESC").
		Find(&responses).Error
	return responses, err
}

// FindByID loads the response with its survey, user and answers.
func (r *responseRepository) FindByID(ctx context.Context, id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := r.db.WithContext(ctx).
		Preload("Survey").
		Preload("User").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Answers.Question").
		Preload("Answers.Option").
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) Exists(ctx context.Context, surveyID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ? AND user_id = ?", surveyID, userID).
		Count(&count).Error
	return count > 0, err
}

// Submit stores the response and its answers. The score is computed from the
// selected options before the response row is written.
func (r *responseRepository) Submit(ctx context.Context, actor audit.Actor, response *models.SurveyResponse) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		answers := response.Answers
		if err := attachOptions(tx, answers); err != nil {
			return err
		}
		response.Score = models.ScoreOf(answers)

		if err := insert(tx, response); err != nil {
			return err
		}
		rec.Inserted(response)

		for i := range answers {
			answer := &answers[i]
			answer.ResponseID = response.ID
			if err := insert(tx, answer); err != nil {
				return err
			}
			rec.Inserted(answer)
		}
		return nil
	})
}

func (r *responseRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var response models.SurveyResponse
		if err := tx.First(&response, id).Error; err != nil {
			return err
		}
		return deleteResponse(tx, rec, &response)
	})
}

// attachOptions loads the selected option of every option-backed answer.
func attachOptions(tx *gorm.DB, answers []models.Answer) error {
	ids := make([]uint, 0, len(answers))
	for _, answer := range answers {
		if answer.OptionID != nil {
			ids = append(ids, *answer.OptionID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var options []models.QuestionOption
	if err := tx.Where("id IN ?", ids).Find(&options).Error; err != nil {
		return err
	}
	byID := make(map[uint]*models.QuestionOption, len(options))
	for i := range options {
		byID[options[i].ID] = &options[i]
	}
	for i := range answers {
		if answers[i].OptionID != nil {
			answers[i].Option = byID[*answers[i].OptionID]
		}
	}
	return nil
}
