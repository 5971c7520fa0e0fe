package models

import "time"

// Approval states for effective participation records.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// EffectiveParticipation is a seminar a user conducted, pending review.
type EffectiveParticipation struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;index" json:"user_id"`
	User                 *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SeminarTitle         string    `gorm:"size:200;not null" json:"seminar_title"`
	Location             string    `gorm:"size:200;not null" json:"location"`
	DateConducted        time.Time `gorm:"not null" json:"date_conducted"`
	NumberOfParticipants *int      `json:"number_of_participants,omitempty"`
	Description          *string   `gorm:"type:text" json:"description,omitempty"`
	ApprovalStatus       string    `gorm:"size:20;not null;index" json:"approval_status"`
	ApprovedBy           *uint     `json:"approved_by,omitempty"`
	Approver             *User     `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// TableName pins the effective_participation table name.
func (EffectiveParticipation) TableName() string { return "effective_participation" }

func (p *EffectiveParticipation) AuditTable() string { return p.TableName() }

func (p *EffectiveParticipation) AuditKey() uint { return p.ID }

func (p *EffectiveParticipation) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":                     p.ID,
		"user_id":                p.UserID,
		"seminar_title":          p.SeminarTitle,
		"location":               p.Location,
		"date_conducted":         p.DateConducted,
		"number_of_participants": p.NumberOfParticipants,
		"description":            p.Description,
		"approval_status":        p.ApprovalStatus,
		"approved_by":            p.ApprovedBy,
		"created_at":             p.CreatedAt,
	}
}
