package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// AnswerRepository persists individual answers. Every mutation refreshes the
// owning response score in the same transaction.
type AnswerRepository interface {
	ListByResponse(ctx context.Context, responseID uint) ([]models.Answer, error)
	ListByQuestion(ctx context.Context, questionID uint) ([]models.Answer, error)
	ListBySurvey(ctx context.Context, surveyID uint) ([]models.Answer, error)
	FindByID(ctx context.Context, id uint) (*models.Answer, error)
	Exists(ctx context.Context, responseID, questionID uint) (bool, error)
	Create(ctx context.Context, actor audit.Actor, answer *models.Answer) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(answer *models.Answer) error) (*models.Answer, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository constructs the answer repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) ListByResponse(ctx context.Context, responseID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Preload("Question").
		Preload("Option").
		Order("id ASC").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) ListByQuestion(ctx context.Context, questionID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Preload("Option").
		Order("id ASC").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) ListBySurvey(ctx context.Context, surveyID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("questions.survey_id = ?", surveyID).
		Preload("Question").
		Preload("Option").
		Order("answers.id ASC").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) FindByID(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := r.db.WithContext(ctx).Preload("Question").Preload("Option").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) Exists(ctx context.Context, responseID, questionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("response_id = ? AND question_id = ?", responseID, questionID).
		Count(&count).Error
	return count > 0, err
}

func (r *answerRepository) Create(ctx context.Context, actor audit.Actor, answer *models.Answer) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, answer); err != nil {
			return err
		}
		rec.Inserted(answer)
		return recomputeScore(tx, rec, answer.ResponseID)
	})
}

func (r *answerRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(answer *models.Answer) error) (*models.Answer, error) {
	var updated models.Answer
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.Answer
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}
		updated = current
		if err := mutate(&updated); err != nil {
			return err
		}
		rec.Updated(&current, &updated)
		if err := persist(tx, &updated); err != nil {
			return err
		}
		return recomputeScore(tx, rec, updated.ResponseID)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, updated.ID)
}

func (r *answerRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var answer models.Answer
		if err := tx.First(&answer, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&answer).Error; err != nil {
			return err
		}
		rec.Deleted(&answer)
		return recomputeScore(tx, rec, answer.ResponseID)
	})
}
