package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// NotificationRepository handles persistence for notification entities.
type NotificationRepository interface {
	Create(ctx context.Context, actor audit.Actor, notification *models.Notification) error
	CreateBatch(ctx context.Context, actor audit.Actor, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID uint, isRead *bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	MarkRead(ctx context.Context, actor audit.Actor, id uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, actor audit.Actor, userID uint) (int64, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	DeleteAll(ctx context.Context, actor audit.Actor, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, actor audit.Actor, notification *models.Notification) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := insert(tx, notification); err != nil {
			return err
		}
		rec.Inserted(notification)
		return nil
	})
}

func (r *notificationRepository) CreateBatch(ctx context.Context, actor audit.Actor, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		for i := range notifications {
			if err := insert(tx, &notifications[i]); err != nil {
				return err
			}
			rec.Inserted(&notifications[i])
		}
		return nil
	})
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, isRead *bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, actor audit.Actor, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := tx.First(&notification, id).Error; err != nil {
			return err
		}
		if notification.IsRead {
			return nil
		}
		before := notification
		notification.IsRead = true
		rec.Updated(&before, &notification)
		return persist(tx, &notification)
	})
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, actor audit.Actor, userID uint) (int64, error) {
	var count int64
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var unread []models.Notification
		if err := tx.Where("user_id = ? AND is_read = ?", userID, false).Find(&unread).Error; err != nil {
			return err
		}
		for i := range unread {
			before := unread[i]
			unread[i].IsRead = true
			rec.Updated(&before, &unread[i])
			if err := persist(tx, &unread[i]); err != nil {
				return err
			}
		}
		count = int64(len(unread))
		return nil
	})
	return count, err
}

func (r *notificationRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var notification models.Notification
		if err := tx.First(&notification, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&notification).Error; err != nil {
			return err
		}
		rec.Deleted(&notification)
		return nil
	})
}

func (r *notificationRepository) DeleteAll(ctx context.Context, actor audit.Actor, userID uint) (int64, error) {
	var count int64
	err := audit.Save(ctx, r.db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		before := rec.Len()
		if err := deleteWhere[models.Notification](tx, rec, "user_id = ?", userID); err != nil {
			return err
		}
		count = int64(rec.Len() - before)
		return nil
	})
	return count, err
}
