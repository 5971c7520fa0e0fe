package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// ParticipationRepository persists effective participation records.
type ParticipationRepository interface {
	List(ctx context.Context, approvalStatus string) ([]models.EffectiveParticipation, error)
	ListByUser(ctx context.Context, userID uint) ([]models.EffectiveParticipation, error)
	FindByID(ctx context.Context, id uint) (*models.EffectiveParticipation, error)
	Create(ctx context.Context, actor audit.Actor, participation *models.EffectiveParticipation) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(participation *models.EffectiveParticipation) error) (*models.EffectiveParticipation, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type participationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository constructs the participation repository.
func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepository{db: db}
}

func (r *participationRepository) List(ctx context.Context, approvalStatus string) ([]models.EffectiveParticipation, error) {
	query := r.db.WithContext(ctx).Model(&models.EffectiveParticipation{})
	if approvalStatus != "" {
		query = query.Where("approval_status = ?", approvalStatus)
	}

	var items []models.EffectiveParticipation
	err := query.Preload("User").Preload("Approver").Order("date_conducted DESC, id DESC").Find(&items).Error
	return items, err
}

func (r *participationRepository) ListByUser(ctx context.Context, userID uint) ([]models.EffectiveParticipation, error) {
	var items []models.EffectiveParticipation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("User").
		Preload("Approver").
		Order("date_conducted DESC, id DESC").
		Find(&items).Error
	return items, err
}

func (r *participationRepository) FindByID(ctx context.Context, id uint) (*models.EffectiveParticipation, error) {
	var item models.EffectiveParticipation
	if err := r.db.WithContext(ctx).Preload("User").Preload("Approver").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *participationRepository) Create(ctx context.Context, actor audit.Actor, participation *models.EffectiveParticipation) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, participation); err != nil {
			return err
		}
		rec.Inserted(participation)
		return nil
	})
}

func (r *participationRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(participation *models.EffectiveParticipation) error) (*models.EffectiveParticipation, error) {
	var updated models.EffectiveParticipation
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.EffectiveParticipation
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

func (r *participationRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var item models.EffectiveParticipation
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		rec.Deleted(&item)
		return nil
	})
}
