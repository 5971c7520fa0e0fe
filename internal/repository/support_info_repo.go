package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// SupportInfoRepository persists support contact channels.
type SupportInfoRepository interface {
	ListActive(ctx context.Context, contactType string) ([]models.SupportInfo, error)
	Types(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id uint) (*models.SupportInfo, error)
	Create(ctx context.Context, actor audit.Actor, info *models.SupportInfo) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(info *models.SupportInfo) error) (*models.SupportInfo, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type supportInfoRepository struct {
	db *gorm.DB
}

// NewSupportInfoRepository constructs the support info repository.
func NewSupportInfoRepository(db *gorm.DB) SupportInfoRepository {
	return &supportInfoRepository{db: db}
}

func (r *supportInfoRepository) ListActive(ctx context.Context, contactType string) ([]models.SupportInfo, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if contactType != "" {
		query = query.Where("contact_type = ?", contactType)
	}

	var items []models.SupportInfo
	err := query.Order("contact_type ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *supportInfoRepository) Types(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&models.SupportInfo{}).
		Where("is_active = ?", true).
		Where("contact_type IS NOT NULL").
		Distinct().
		Order("contact_type ASC").
		Pluck("contact_type", &types).Error
	return types, err
}

func (r *supportInfoRepository) FindByID(ctx context.Context, id uint) (*models.SupportInfo, error) {
	var info models.SupportInfo
	if err := r.db.WithContext(ctx).First(&info, id).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *supportInfoRepository) Create(ctx context.Context, actor audit.Actor, info *models.SupportInfo) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, info); err != nil {
			return err
		}
		rec.Inserted(info)
		return nil
	})
}

func (r *supportInfoRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(info *models.SupportInfo) error) (*models.SupportInfo, error) {
	var updated models.SupportInfo
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.SupportInfo
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

func (r *supportInfoRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var info models.SupportInfo
		if err := tx.First(&info, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&info).Error; err != nil {
			return err
		}
		rec.Deleted(&info)
		return nil
	})
}
