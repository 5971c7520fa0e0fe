package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// CompetitionRepository persists competitions and their winners.
type CompetitionRepository interface {
	List(ctx context.Context, status string) ([]models.Competition, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Competition, error)
	FindByID(ctx context.Context, id uint) (*models.Competition, error)
	Create(ctx context.Context, actor audit.Actor, competition *models.Competition) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(competition *models.Competition) error) (*models.Competition, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error

	ListWinners(ctx context.Context, competitionID uint) ([]models.CompetitionWinner, error)
	Leaderboard(ctx context.Context, limit int) ([]models.CompetitionWinner, error)
	FindWinner(ctx context.Context, id uint) (*models.CompetitionWinner, error)
	RankTaken(ctx context.Context, competitionID uint, rank int) (bool, error)
	AddWinner(ctx context.Context, actor audit.Actor, winner *models.CompetitionWinner) error
	DeleteWinner(ctx context.Context, actor audit.Actor, id uint) error
}

type competitionRepository struct {
	db *gorm.DB
}

// NewCompetitionRepository constructs the competition repository.
func NewCompetitionRepository(db *gorm.DB) CompetitionRepository {
	return &competitionRepository{db: db}
}

func winnersByRank(db *gorm.DB) *gorm.DB {
	return db.Order("rank ASC")
}

func (r *competitionRepository) List(ctx context.Context, status string) ([]models.Competition, error) {
	query := r.db.WithContext(ctx).Model(&models.Competition{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var competitions []models.Competition
	err := query.
		Preload("RelatedSurvey").
		Preload("Winners", winnersByRank).
		Preload("Winners.User").
		Order("start_date DESC, id DESC").
		Find(&competitions).Error
	return competitions, err
}

func (r *competitionRepository) ListActive(ctx context.Context, now time.Time) ([]models.Competition, error) {
	var competitions []models.Competition
	err := r.db.WithContext(ctx).
		Where("status = ?", models.CompetitionOngoing).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Preload("RelatedSurvey").
		Order("end_date ASC, id ASC").
		Find(&competitions).Error
	return competitions, err
}

func (r *competitionRepository) FindByID(ctx context.Context, id uint) (*models.Competition, error) {
	var competition models.Competition
	err := r.db.WithContext(ctx).
		Preload("RelatedSurvey").
		Preload("Winners", winnersByRank).
		Preload("Winners.User").
		First(&competition, id).Error
	if err != nil {
		return nil, err
	}
	return &competition, nil
}

func (r *competitionRepository) Create(ctx context.Context, actor audit.Actor, competition *models.Competition) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, competition); err != nil {
			return err
		}
		rec.Inserted(competition)
		return nil
	})
}

func (r *competitionRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(competition *models.Competition) error) (*models.Competition, error) {
	var updated models.Competition
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.Competition
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

// Delete removes the competition and its winners together.
func (r *competitionRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var competition models.Competition
		if err := tx.First(&competition, id).Error; err != nil {
			return err
		}
		if err := deleteWhere[models.CompetitionWinner](tx, rec, "competition_id = ?", id); err != nil {
			return err
		}
		if err := tx.Delete(&competition).Error; err != nil {
			return err
		}
		rec.Deleted(&competition)
		return nil
	})
}

func (r *competitionRepository) ListWinners(ctx context.Context, competitionID uint) ([]models.CompetitionWinner, error) {
	var winners []models.CompetitionWinner
	err := r.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Preload("User").
		Preload("Competition").
		Order("rank ASC").
		Find(&winners).Error
	return winners, err
}

// Leaderboard returns the most recently announced winners.
func (r *competitionRepository) Leaderboard(ctx context.Context, limit int) ([]models.CompetitionWinner, error) {
	var winners []models.CompetitionWinner
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Competition").
		Order("announced_at DESC, rank ASC, id ASC").
		Limit(limit).
		Find(&winners).Error
	return winners, err
}

func (r *competitionRepository) FindWinner(ctx context.Context, id uint) (*models.CompetitionWinner, error) {
	var winner models.CompetitionWinner
	if err := r.db.WithContext(ctx).Preload("User").Preload("Competition").First(&winner, id).Error; err != nil {
		return nil, err
	}
	return &winner, nil
}

func (r *competitionRepository) RankTaken(ctx context.Context, competitionID uint, rank int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompetitionWinner{}).
		Where("competition_id = ? AND rank = ?", competitionID, rank).
		Count(&count).Error
	return count > 0, err
}

func (r *competitionRepository) AddWinner(ctx context.Context, actor audit.Actor, winner *models.CompetitionWinner) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, winner); err != nil {
			return err
		}
		rec.Inserted(winner)
		return nil
	})
}

func (r *competitionRepository) DeleteWinner(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var winner models.CompetitionWinner
		if err := tx.First(&winner, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&winner).Error; err != nil {
			return err
		}
		rec.Deleted(&winner)
		return nil
	})
}
