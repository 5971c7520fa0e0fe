package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// QuestionRepository persists survey questions and their options.
type QuestionRepository interface {
	ListBySurvey(ctx context.Context, surveyID uint) ([]models.Question, error)
	FindByID(ctx context.Context, id uint) (*models.Question, error)
	FindOption(ctx context.Context, id uint) (*models.QuestionOption, error)
	Create(ctx context.Context, actor audit.Actor, question *models.Question) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(question *models.Question) error) (*models.Question, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	AddOption(ctx context.Context, actor audit.Actor, option *models.QuestionOption) error
	DeleteOption(ctx context.Context, actor audit.Actor, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository constructs the question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("order_number ASC, id ASC")
}

func (r *questionRepository) ListBySurvey(ctx context.Context, surveyID uint) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Preload("Options", orderedOptions).
		Order("order_number ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).Preload("Options", orderedOptions).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindOption(ctx context.Context, id uint) (*models.QuestionOption, error) {
	var option models.QuestionOption
	if err := r.db.WithContext(ctx).First(&option, id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

// Create inserts the question followed by its inline options.
func (r *questionRepository) Create(ctx context.Context, actor audit.Actor, question *models.Question) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, question); err != nil {
			return err
		}
		rec.Inserted(question)

		for i := range question.Options {
			option := &question.Options[i]
			option.QuestionID = question.ID
			if err := insert(tx, option); err != nil {
				return err
			}
			rec.Inserted(option)
		}
		return nil
	})
}

func (r *questionRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(question *models.Question) error) (*models.Question, error) {
	var updated models.Question
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.Question
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}
		updated = current
		if err := mutate(&updated); err != nil {
			return err
		}
		rec.Updated(&current, &updated)
		return persist(tx, &updated)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, updated.ID)
}

func (r *questionRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var question models.Question
		if err := tx.First(&question, id).Error; err != nil {
			return err
		}
		return deleteQuestion(tx, rec, &question)
	})
}

func (r *questionRepository) AddOption(ctx context.Context, actor audit.Actor, option *models.QuestionOption) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, option); err != nil {
			return err
		}
		rec.Inserted(option)
		return nil
	})
}

// DeleteOption removes an option and the answers that selected it.
func (r *questionRepository) DeleteOption(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var option models.QuestionOption
		if err := tx.First(&option, id).Error; err != nil {
			return err
		}

		var responseIDs []uint
		if err := tx.Model(&models.Answer{}).Where("option_id = ?", id).Distinct().Pluck("response_id", &responseIDs).Error; err != nil {
			return err
		}
		if err := deleteWhere[models.Answer](tx, rec, "option_id = ?", id); err != nil {
			return err
		}

		if err := tx.Delete(&option).Error; err != nil {
			return err
		}
		rec.Deleted(&option)

		for _, responseID := range responseIDs {
			if err := recomputeScore(tx, rec, responseID); err != nil {
				return err
			}
		}
		return nil
	})
}
