package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role               string
	RegistrationStatus string
	Page               int
	PageSize           int
}

// UserStatistics aggregates a user's activity.
type UserStatistics struct {
	SurveysParticipated     int64
	AverageScore            *float64
	LastParticipation       *time.Time
	CompetitionsWon         int64
	ParticipationsSubmitted int64
}

// UserRepository persists user accounts.
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	ListActiveApproved(ctx context.Context, role string) ([]models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CountAuthored(ctx context.Context, id uint) (int64, error)
	Create(ctx context.Context, actor audit.Actor, user *models.User) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(user *models.User) error) (*models.User, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	Statistics(ctx context.Context, id uint) (UserStatistics, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.RegistrationStatus != "" {
		query = query.Where("registration_status = ?", filter.RegistrationStatus)
	}

	return countAndFind[models.User](query, filter.Page, filter.PageSize, "created_at DESC, id DESC")
}

func (r *userRepository) ListActiveApproved(ctx context.Context, role string) ([]models.User, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("registration_status = ?", models.RegistrationApproved)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	err := query.Order("id ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountAuthored counts surveys and FAQs created by the user.
func (r *userRepository) CountAuthored(ctx context.Context, id uint) (int64, error) {
	db := r.db.WithContext(ctx)
	var surveys, faqs int64
	if err := db.Model(&models.Survey{}).Where("created_by = ?", id).Count(&surveys).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&models.Faq{}).Where("created_by = ?", id).Count(&faqs).Error; err != nil {
		return 0, err
	}
	return surveys + faqs, nil
}

func (r *userRepository) Create(ctx context.Context, actor audit.Actor, user *models.User) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, user); err != nil {
			return err
		}
		rec.Inserted(user)
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(user *models.User) error) (*models.User, error) {
	var updated models.User
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.User
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

// Delete removes the user together with every personal row that references it.
func (r *userRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		var responses []models.SurveyResponse
		if err := tx.Where("user_id = ?", id).Find(&responses).Error; err != nil {
			return err
		}
		for i := range responses {
			if err := deleteResponse(tx, rec, &responses[i]); err != nil {
				return err
			}
		}

		if err := deleteWhere[models.CompetitionWinner](tx, rec, "user_id = ?", id); err != nil {
			return err
		}
		if err := deleteWhere[models.Notification](tx, rec, "user_id = ?", id); err != nil {
			return err
		}
		if err := deleteWhere[models.EffectiveParticipation](tx, rec, "user_id = ?", id); err != nil {
			return err
		}

		var approved []models.EffectiveParticipation
		if err := tx.Where("approved_by = ?", id).Find(&approved).Error; err != nil {
			return err
		}
		for i := range approved {
			before := approved[i]
			approved[i].ApprovedBy = nil
			rec.Updated(&before, &approved[i])
			if err := persist(tx, &approved[i]); err != nil {
				return err
			}
		}

		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		rec.Deleted(&user)
		return nil
	})
}

func (r *userRepository) Statistics(ctx context.Context, id uint) (UserStatistics, error) {
	db := r.db.WithContext(ctx)
	var stats UserStatistics

	if err := db.Model(&models.SurveyResponse{}).Where("user_id = ?", id).Count(&stats.SurveysParticipated).Error; err != nil {
		return UserStatistics{}, err
	}

	var scores []models.SurveyResponse
	if err := db.Where("user_id = ?", id).Order("submitted_at DESC").Find(&scores).Error; err != nil {
		return UserStatistics{}, err
	}
	if len(scores) > 0 {
		last := scores[0].SubmittedAt
		stats.LastParticipation = &last
	}
	stats.AverageScore = averageScore(scores)

	if err := db.Model(&models.CompetitionWinner{}).Where("user_id = ?", id).Count(&stats.CompetitionsWon).Error; err != nil {
		return UserStatistics{}, err
	}
	if err := db.Model(&models.EffectiveParticipation{}).Where("user_id = ?", id).Count(&stats.ParticipationsSubmitted).Error; err != nil {
		return UserStatistics{}, err
	}

	return stats, nil
}

// averageScore averages the scored responses, rounded to two decimals.
func averageScore(responses []models.SurveyResponse) *float64 {
	var sum float64
	var count int
	for _, response := range responses {
		if response.Score == nil {
			continue
		}
		sum += *response.Score
		count++
	}
	if count == 0 {
		return nil
	}
	avg := models.Round2(sum / float64(count))
	return &avg
}

// deleteWhere removes every matching row, recording one delete per row.
func deleteWhere[T any, PT interface {
	*T
	audit.Snapshot
}](tx *gorm.DB, rec *audit.Recorder, condition string, args ...interface{}) error {
	var rows []T
	if err := tx.Where(condition, args...).Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		row := PT(&rows[i])
		if err := tx.Delete(row).Error; err != nil {
			return err
		}
		rec.Deleted(row)
	}
	return nil
}
