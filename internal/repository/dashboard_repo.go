package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// SurveyResponseCount pairs a survey with the number of responses it received.
type SurveyResponseCount struct {
	Survey        models.Survey
	ResponseCount int64
}

// RoleCount is the number of users holding a role.
type RoleCount struct {
	Role  string
	Count int64
}

// DashboardRepository supplies aggregates for the administrator dashboard.
type DashboardRepository interface {
	CountUsers(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error)
	CountSurveys(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error)
	CountResponses(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error)
	CountCompetitions(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error)
	CountParticipations(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error)

	RecentPendingUsers(ctx context.Context, limit int) ([]models.User, error)
	RecentSurveys(ctx context.Context, limit int) ([]models.Survey, error)
	RecentlyUpdatedCompetitions(ctx context.Context, limit int) ([]models.Competition, error)
	RecentUserApprovals(ctx context.Context, limit int) ([]models.AuditLog, error)
	UsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)

	UserCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error)
	ResponseSubmissionTimes(ctx context.Context, since time.Time) ([]time.Time, error)
	TopSurveys(ctx context.Context, limit int) ([]SurveyResponseCount, error)
	ApprovedUsersByRole(ctx context.Context) ([]RoleCount, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository constructs the dashboard repository.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// Condition returns a scope applying a single where clause.
func Condition(condition string, args ...interface{}) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(condition, args...)
	}
}

func (r *dashboardRepository) count(ctx context.Context, model interface{}, scopes []func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(model).Scopes(scopes...).Count(&total).Error
	return total, err
}

func (r *dashboardRepository) CountUsers(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	return r.count(ctx, &models.User{}, scopes)
}

func (r *dashboardRepository) CountSurveys(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	return r.count(ctx, &models.Survey{}, scopes)
}

func (r *dashboardRepository) CountResponses(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	return r.count(ctx, &models.SurveyResponse{}, scopes)
}

func (r *dashboardRepository) CountCompetitions(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	return r.count(ctx, &models.Competition{}, scopes)
}

func (r *dashboardRepository) CountParticipations(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	return r.count(ctx, &models.EffectiveParticipation{}, scopes)
}

func (r *dashboardRepository) RecentPendingUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("registration_status = ?", models.RegistrationPending).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *dashboardRepository) RecentSurveys(ctx context.Context, limit int) ([]models.Survey, error) {
	var surveys []models.Survey
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&surveys).Error
	return surveys, err
}

func (r *dashboardRepository) RecentlyUpdatedCompetitions(ctx context.Context, limit int) ([]models.Competition, error) {
	var competitions []models.Competition
	err := r.db.WithContext(ctx).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Find(&competitions).Error
	return competitions, err
}

// RecentUserApprovals returns users-table updates whose new image mentions an approval.
func (r *dashboardRepository) RecentUserApprovals(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("action = ? AND table_name = ?", models.AuditUpdate, models.User{}.TableName()).
		Where("new_value IS NOT NULL").
		Where("CAST(new_value AS TEXT) LIKE ?", "%"+models.RegistrationApproved+"%").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *dashboardRepository) UsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *dashboardRepository) UserCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &times).Error
	return times, err
}

func (r *dashboardRepository) ResponseSubmissionTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("submitted_at >= ?", since).
		Pluck("submitted_at", &times).Error
	return times, err
}

// TopSurveys ranks surveys by their response count.
func (r *dashboardRepository) TopSurveys(ctx context.Context, limit int) ([]SurveyResponseCount, error) {
	type row struct {
		SurveyID      uint
		ResponseCount int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Select("survey_id, COUNT(*) AS response_count").
		Group("survey_id").
		Order("response_count DESC, survey_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, item := range rows {
		ids = append(ids, item.SurveyID)
	}
	var surveys []models.Survey
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&surveys).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Survey, len(surveys))
	for _, survey := range surveys {
		byID[survey.ID] = survey
	}

	result := make([]SurveyResponseCount, 0, len(rows))
	for _, item := range rows {
		survey, ok := byID[item.SurveyID]
		if !ok {
			continue
		}
		result = append(result, SurveyResponseCount{Survey: survey, ResponseCount: item.ResponseCount})
	}
	return result, nil
}

func (r *dashboardRepository) ApprovedUsersByRole(ctx context.Context) ([]RoleCount, error) {
	var rows []RoleCount
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Where("registration_status = ?", models.RegistrationApproved).
		Group("role").
		Order("role ASC").
		Scan(&rows).Error
	return rows, err
}
