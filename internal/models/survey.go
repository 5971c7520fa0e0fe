package models

import "time"

// Survey audiences.
const (
	AudienceStudent = "student"
	AudienceFaculty = "faculty"
	AudienceStaff   = "staff"
	AudienceAll     = "all"
)

// Question types.
const (
	QuestionTypeText           = "text"
	QuestionTypeTextarea       = "textarea"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeCheckbox       = "checkbox"
)

// Survey is a questionnaire published to an audience for a date window.
type Survey struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Description    *string    `gorm:"type:text" json:"description,omitempty"`
	TargetAudience string     `gorm:"size:20;not null;index" json:"target_audience"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	EndDate        time.Time  `gorm:"not null" json:"end_date"`
	IsActive       bool       `gorm:"not null;index" json:"is_active"`
	CreatedBy      uint       `gorm:"not null;index" json:"created_by"`
	Creator        *User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Questions      []Question `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName pins the surveys table name.
func (Survey) TableName() string { return "surveys" }

// AcceptsResponses reports whether a submission is allowed at the given instant.
func (s Survey) AcceptsResponses(now time.Time) bool {
	return s.IsActive && !s.EndDate.Before(now)
}

func (s *Survey) AuditTable() string { return s.TableName() }

func (s *Survey) AuditKey() uint { return s.ID }

func (s *Survey) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":              s.ID,
		"title":           s.Title,
		"description":     s.Description,
		"target_audience": s.TargetAudience,
		"start_date":      s.StartDate,
		"end_date":        s.EndDate,
		"is_active":       s.IsActive,
		"created_by":      s.CreatedBy,
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
	}
}

// Question belongs to a survey and optionally carries selectable options.
type Question struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	SurveyID     uint             `gorm:"not null;index" json:"survey_id"`
	QuestionText string           `gorm:"type:text;not null" json:"question_text"`
	QuestionType string           `gorm:"size:20;not null" json:"question_type"`
	IsRequired   bool             `gorm:"not null" json:"is_required"`
	OrderNumber  int              `gorm:"not null" json:"order_number"`
	Options      []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TableName pins the questions table name.
func (Question) TableName() string { return "questions" }

// IsFreeText reports whether answers carry text rather than an option.
func (q Question) IsFreeText() bool {
	return q.QuestionType == QuestionTypeText
}

func (q *Question) AuditTable() string { return q.TableName() }

func (q *Question) AuditKey() uint { return q.ID }

func (q *Question) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":            q.ID,
		"survey_id":     q.SurveyID,
		"question_text": q.QuestionText,
		"question_type": q.QuestionType,
		"is_required":   q.IsRequired,
		"order_number":  q.OrderNumber,
		"created_at":    q.CreatedAt,
	}
}

// QuestionOption is a selectable choice; IsCorrect drives scoring.
type QuestionOption struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	QuestionID  uint   `gorm:"not null;index" json:"question_id"`
	OptionText  string `gorm:"size:500;not null" json:"option_text"`
	OrderNumber int    `gorm:"not null" json:"order_number"`
	IsCorrect   bool   `gorm:"not null" json:"is_correct"`
}

// TableName pins the question_options table name.
func (QuestionOption) TableName() string { return "question_options" }

func (o *QuestionOption) AuditTable() string { return o.TableName() }

func (o *QuestionOption) AuditKey() uint { return o.ID }

func (o *QuestionOption) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":           o.ID,
		"question_id":  o.QuestionID,
		"option_text":  o.OptionText,
		"order_number": o.OrderNumber,
		"is_correct":   o.IsCorrect,
	}
}
