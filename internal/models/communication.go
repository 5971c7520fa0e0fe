package models

import "time"

// Notification types.
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification represents a message targeted to a specific user.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:20" json:"type"`
	IsRead    bool      `gorm:"not null;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the notifications table name.
func (Notification) TableName() string { return "notifications" }

func (n *Notification) AuditTable() string { return n.TableName() }

func (n *Notification) AuditKey() uint { return n.ID }

func (n *Notification) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":         n.ID,
		"user_id":    n.UserID,
		"title":      n.Title,
		"message":    n.Message,
		"type":       n.Type,
		"is_read":    n.IsRead,
		"created_at": n.CreatedAt,
	}
}

// Faq is a frequently asked question shown on the help pages.
type Faq struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Question    string    `gorm:"size:500;not null" json:"question"`
	Answer      string    `gorm:"type:text;not null" json:"answer"`
	Category    *string   `gorm:"size:50;index" json:"category,omitempty"`
	OrderNumber int       `gorm:"not null" json:"order_number"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the faqs table name.
func (Faq) TableName() string { return "faqs" }

func (f *Faq) AuditTable() string { return f.TableName() }

func (f *Faq) AuditKey() uint { return f.ID }

func (f *Faq) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":           f.ID,
		"question":     f.Question,
		"answer":       f.Answer,
		"category":     f.Category,
		"order_number": f.OrderNumber,
		"is_active":    f.IsActive,
		"created_by":   f.CreatedBy,
		"created_at":   f.CreatedAt,
		"updated_at":   f.UpdatedAt,
	}
}

// Contact types for support info.
const (
	ContactPhone   = "phone"
	ContactEmail   = "email"
	ContactAddress = "address"
	ContactOther   = "other"
)

// SupportInfo is a support contact channel.
type SupportInfo struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ContactType  *string   `gorm:"size:20;index" json:"contact_type,omitempty"`
	ContactValue *string   `gorm:"size:200" json:"contact_value,omitempty"`
	Description  *string   `gorm:"size:500" json:"description,omitempty"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName pins the support_info table name.
func (SupportInfo) TableName() string { return "support_info" }

func (s *SupportInfo) AuditTable() string { return s.TableName() }

func (s *SupportInfo) AuditKey() uint { return s.ID }

func (s *SupportInfo) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":            s.ID,
		"contact_type":  s.ContactType,
		"contact_value": s.ContactValue,
		"description":   s.Description,
		"is_active":     s.IsActive,
		"updated_at":    s.UpdatedAt,
	}
}
