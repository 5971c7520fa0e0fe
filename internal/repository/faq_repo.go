package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// FaqFilter narrows FAQ listings.
type FaqFilter struct {
	Category string
	IsActive *bool
}

// FaqRepository persists frequently asked questions.
type FaqRepository interface {
	List(ctx context.Context, filter FaqFilter) ([]models.Faq, error)
	Categories(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id uint) (*models.Faq, error)
	Create(ctx context.Context, actor audit.Actor, faq *models.Faq) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(faq *models.Faq) error) (*models.Faq, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type faqRepository struct {
	db *gorm.DB
}

// NewFaqRepository constructs the FAQ repository.
func NewFaqRepository(db *gorm.DB) FaqRepository {
	return &faqRepository{db: db}
}

func (r *faqRepository) List(ctx context.Context, filter FaqFilter) ([]models.Faq, error) {
	query := r.db.WithContext(ctx).Model(&models.Faq{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var faqs []models.Faq
	err := query.Order("order_number ASC, id ASC").Find(&faqs).Error
	return faqs, err
}

// Categories lists the distinct categories of active FAQs.
func (r *faqRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Faq{}).
		Where("is_active = ?", true).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *faqRepository) FindByID(ctx context.Context, id uint) (*models.Faq, error) {
	var faq models.Faq
	if err := r.db.WithContext(ctx).First(&faq, id).Error; err != nil {
		return nil, err
	}
	return &faq, nil
}

func (r *faqRepository) Create(ctx context.Context, actor audit.Actor, faq *models.Faq) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, faq); err != nil {
			return err
		}
		rec.Inserted(faq)
		return nil
	})
}

func (r *faqRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(faq *models.Faq) error) (*models.Faq, error) {
	var updated models.Faq
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.Faq
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

func (r *faqRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var faq models.Faq
		if err := tx.First(&faq, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&faq).Error; err != nil {
			return err
		}
		rec.Deleted(&faq)
		return nil
	})
}
