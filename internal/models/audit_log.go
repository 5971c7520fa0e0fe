package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions.
const (
	AuditInsert = "INSERT"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// AuditLog is an append-only record of a single entity mutation.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id,omitempty"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Action    string         `gorm:"size:100;not null;index" json:"action"`
	Table     string         `gorm:"column:table_name;size:50;not null;index" json:"table_name"`
	RecordID  *uint          `gorm:"index" json:"record_id,omitempty"`
	OldValue  datatypes.JSON `json:"old_value,omitempty"`
	NewValue  datatypes.JSON `json:"new_value,omitempty"`
	IPAddress *string        `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
