package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// AuditLogFilter narrows audit log queries.
type AuditLogFilter struct {
	Page      int
	PageSize  int
	UserID    *uint
	Action    string
	TableName string
	RecordID  *uint
	From      *time.Time
	To        *time.Time
}

// AuditStatistics summarises audit activity over a period.
type AuditStatistics struct {
	Total        int64
	UniqueUsers  int64
	ActionCounts map[string]int64
	TableCounts  map[string]int64
}

// AuditLogRepository reads the audit trail. Rows are only written by audit.Save.
type AuditLogRepository interface {
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error)
	FindByID(ctx context.Context, id uint) (*models.AuditLog, error)
	Tables(ctx context.Context) ([]string, error)
	Actions(ctx context.Context) ([]string, error)
	Count(ctx context.Context, since *time.Time) (int64, error)
	Statistics(ctx context.Context, from, to time.Time) (AuditStatistics, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action LIKE ?", "%"+filter.Action+"%")
	}
	if filter.TableName != "" {
		query = query.Where("table_name = ?", filter.TableName)
	}
	if filter.RecordID != nil {
		query = query.Where("record_id = ?", *filter.RecordID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	return countAndFind[models.AuditLog](query, filter.Page, filter.PageSize, "created_at DESC, id DESC", "User")
}

func (r *auditLogRepository) FindByID(ctx context.Context, id uint) (*models.AuditLog, error) {
	var entry models.AuditLog
	if err := r.db.WithContext(ctx).Preload("User").First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *auditLogRepository) Tables(ctx context.Context) ([]string, error) {
	var tables []string
	err := r.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Distinct().
		Order("table_name ASC").
		Pluck("table_name", &tables).Error
	return tables, err
}

func (r *auditLogRepository) Actions(ctx context.Context) ([]string, error) {
	var actions []string
	err := r.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Distinct().
		Order("action ASC").
		Pluck("action", &actions).Error
	return actions, err
}

// Count returns the number of rows, optionally limited to those created since.
func (r *auditLogRepository) Count(ctx context.Context, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

type groupCount struct {
	Label string
	Count int64
}

func (r *auditLogRepository) Statistics(ctx context.Context, from, to time.Time) (AuditStatistics, error) {
	base := r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("created_at >= ? AND created_at <= ?", from, to)
	stats := AuditStatistics{
		ActionCounts: map[string]int64{},
		TableCounts:  map[string]int64{},
	}

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return AuditStatistics{}, err
	}
	if err := base.Session(&gorm.Session{}).Where("user_id IS NOT NULL").Distinct("user_id").Count(&stats.UniqueUsers).Error; err != nil {
		return AuditStatistics{}, err
	}

	var actions []groupCount
	if err := base.Session(&gorm.Session{}).Select("action AS label, COUNT(*) AS count").Group("action").Scan(&actions).Error; err != nil {
		return AuditStatistics{}, err
	}
	for _, row := range actions {
		stats.ActionCounts[row.Label] = row.Count
	}

	var tables []groupCount
	if err := base.Session(&gorm.Session{}).Select("table_name AS label, COUNT(*) AS count").Group("table_name").Scan(&tables).Error; err != nil {
		return AuditStatistics{}, err
	}
	for _, row := range tables {
		stats.TableCounts[row.Label] = row.Count
	}

	return stats, nil
}

func (r *auditLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}
