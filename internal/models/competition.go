package models

import "time"

// Competition statuses.
const (
	CompetitionUpcoming  = "upcoming"
	CompetitionOngoing   = "ongoing"
	CompetitionCompleted = "completed"
)

// Competition is a time-boxed contest, optionally tied to a survey.
type Competition struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	Title            string              `gorm:"size:200;not null" json:"title"`
	Description      *string             `gorm:"type:text" json:"description,omitempty"`
	RelatedSurveyID  *uint               `gorm:"index" json:"related_survey_id,omitempty"`
	RelatedSurvey    *Survey             `gorm:"foreignKey:RelatedSurveyID" json:"related_survey,omitempty"`
	StartDate        time.Time           `gorm:"not null" json:"start_date"`
	EndDate          time.Time           `gorm:"not null" json:"end_date"`
	PrizeDescription *string             `gorm:"type:text" json:"prize_description,omitempty"`
	Status           string              `gorm:"size:20;not null;index" json:"status"`
	Winners          []CompetitionWinner `gorm:"foreignKey:CompetitionID" json:"winners,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TableName pins the competitions table name.
func (Competition) TableName() string { return "competitions" }

// CompetitionStatusAt derives the status of a competition window at now.
func CompetitionStatusAt(start, end, now time.Time) string {
	switch {
	case start.After(now):
		return CompetitionUpcoming
	case end.Before(now):
		return CompetitionCompleted
	default:
		return CompetitionOngoing
	}
}

func (c *Competition) AuditTable() string { return c.TableName() }

func (c *Competition) AuditKey() uint { return c.ID }

func (c *Competition) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":                c.ID,
		"title":             c.Title,
		"description":       c.Description,
		"related_survey_id": c.RelatedSurveyID,
		"start_date":        c.StartDate,
		"end_date":          c.EndDate,
		"prize_description": c.PrizeDescription,
		"status":            c.Status,
		"created_at":        c.CreatedAt,
		"updated_at":        c.UpdatedAt,
	}
}

// CompetitionWinner places a user at rank 1..3 of a competition.
type CompetitionWinner struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	CompetitionID uint         `gorm:"not null;uniqueIndex:idx_competition_winners_rank" json:"competition_id"`
	UserID        uint         `gorm:"not null;index" json:"user_id"`
	Rank          int          `gorm:"not null;uniqueIndex:idx_competition_winners_rank" json:"rank"`
	Score         float64      `gorm:"type:decimal(5,2);not null" json:"score"`
	PrizeDetails  *string      `gorm:"size:200" json:"prize_details,omitempty"`
	AnnouncedAt   time.Time    `gorm:"not null;index" json:"announced_at"`
	Competition   *Competition `gorm:"foreignKey:CompetitionID" json:"competition,omitempty"`
	User          *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName pins the competition_winners table name.
func (CompetitionWinner) TableName() string { return "competition_winners" }

func (w *CompetitionWinner) AuditTable() string { return w.TableName() }

func (w *CompetitionWinner) AuditKey() uint { return w.ID }

func (w *CompetitionWinner) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":             w.ID,
		"competition_id": w.CompetitionID,
		"user_id":        w.UserID,
		"rank":           w.Rank,
		"score":          w.Score,
		"prize_details":  w.PrizeDetails,
		"announced_at":   w.AnnouncedAt,
	}
}
