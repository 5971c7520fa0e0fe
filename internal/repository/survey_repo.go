package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// SurveyFilter narrows survey listings.
type SurveyFilter struct {
	TargetAudience string
	IsActive       *bool
	CreatedBy      *uint
	Page           int
	PageSize       int
}

// SurveyStatistics aggregates the responses collected by a survey.
type SurveyStatistics struct {
	TotalResponses  int64
	TotalQuestions  int64
	ScoredResponses int64
	AverageScore    *float64
}

// SurveyRepository persists surveys.
type SurveyRepository interface {
	List(ctx context.Context, filter SurveyFilter) ([]models.Survey, int64, error)
	ListAvailable(ctx context.Context, role string, now time.Time) ([]models.Survey, error)
	FindByID(ctx context.Context, id uint) (*models.Survey, error)
	FindDetail(ctx context.Context, id uint) (*models.Survey, error)
	Create(ctx context.Context, actor audit.Actor, survey *models.Survey) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(survey *models.Survey) error) (*models.Survey, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	Statistics(ctx context.Context, id uint) (SurveyStatistics, error)
}

type surveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository constructs the survey repository.
func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &surveyRepository{db: db}
}

func (r *surveyRepository) List(ctx context.Context, filter SurveyFilter) ([]models.Survey, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Survey{})
	if filter.TargetAudience != "" {
		query = query.Where("target_audience = ?", filter.TargetAudience)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}

	return countAndFind[models.Survey](query, filter.Page, filter.PageSize, "created_at DESC, id DESC", "Creator")
}

func (r *surveyRepository) ListAvailable(ctx context.Context, role string, now time.Time) ([]models.Survey, error) {
	var surveys []models.Survey
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("target_audience = ? OR target_audience = ?", models.AudienceAll, role).
		Preload("Creator").
		Order("end_date ASC, id ASC").
		Find(&surveys).Error
	return surveys, err
}

func (r *surveyRepository) FindByID(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := r.db.WithContext(ctx).Preload("Creator").First(&survey, id).Error; err != nil {
		return nil, err
	}
	return &survey, nil
}

// FindDetail loads the survey with its questions and their options in order.
func (r *surveyRepository) FindDetail(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number ASC, id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number ASC, id ASC")
		}).
		First(&survey, id).Error
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *surveyRepository) Create(ctx context.Context, actor audit.Actor, survey *models.Survey) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, survey); err != nil {
			return err
		}
		rec.Inserted(survey)
		return nil
	})
}

func (r *surveyRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(survey *models.Survey) error) (*models.Survey, error) {
	var updated models.Survey
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.Survey
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
	return &updated, nil
}

func (r *surveyRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var survey models.Survey
		if err := tx.First(&survey, id).Error; err != nil {
			return err
		}
		return deleteSurvey(tx, rec, &survey)
	})
}

func (r *surveyRepository) Statistics(ctx context.Context, id uint) (SurveyStatistics, error) {
	db := r.db.WithContext(ctx)
	var stats SurveyStatistics

	if err := db.Model(&models.Question{}).Where("survey_id = ?", id).Count(&stats.TotalQuestions).Error; err != nil {
		return SurveyStatistics{}, err
	}

	var responses []models.SurveyResponse
	if err := db.Where("survey_id = ?", id).Find(&responses).Error; err != nil {
		return SurveyStatistics{}, err
	}
	stats.TotalResponses = int64(len(responses))
	for _, response := range responses {
		if response.Score != nil {
			stats.ScoredResponses++
		}
	}
	stats.AverageScore = averageScore(responses)

	return stats, nil
}
