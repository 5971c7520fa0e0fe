package models

import (
	"math"
	"time"
)

// SurveyResponse is a single user's submission to a survey.
type SurveyResponse struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SurveyID    uint      `gorm:"not null;uniqueIndex:idx_survey_responses_survey_user" json:"survey_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_survey_responses_survey_user;index" json:"user_id"`
	Survey      *Survey   `gorm:"foreignKey:SurveyID" json:"survey,omitempty"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Answers     []Answer  `gorm:"foreignKey:ResponseID" json:"answers,omitempty"`
	SubmittedAt time.Time `gorm:"not null;index" json:"submitted_at"`
	Score       *float64  `gorm:"type:decimal(5,2)" json:"score,omitempty"`
}

// TableName pins the survey_responses table name.
func (SurveyResponse) TableName() string { return "survey_responses" }

func (r *SurveyResponse) AuditTable() string { return r.TableName() }

func (r *SurveyResponse) AuditKey() uint { return r.ID }

func (r *SurveyResponse) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":           r.ID,
		"survey_id":    r.SurveyID,
		"user_id":      r.UserID,
		"submitted_at": r.SubmittedAt,
		"score":        r.Score,
	}
}

// Answer records the selected option or free text for one question.
type Answer struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ResponseID uint            `gorm:"not null;uniqueIndex:idx_answers_response_question" json:"response_id"`
	QuestionID uint            `gorm:"not null;uniqueIndex:idx_answers_response_question;index" json:"question_id"`
	OptionID   *uint           `gorm:"index" json:"option_id,omitempty"`
	TextAnswer *string         `gorm:"type:text" json:"text_answer,omitempty"`
	Question   *Question       `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Option     *QuestionOption `gorm:"foreignKey:OptionID" json:"option,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName pins the answers table name.
func (Answer) TableName() string { return "answers" }

func (a *Answer) AuditTable() string { return a.TableName() }

func (a *Answer) AuditKey() uint { return a.ID }

func (a *Answer) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":          a.ID,
		"response_id": a.ResponseID,
		"question_id": a.QuestionID,
		"option_id":   a.OptionID,
		"text_answer": a.TextAnswer,
		"created_at":  a.CreatedAt,
	}
}

// ScoreOf returns the percentage of option-backed answers that picked a
// correct option, rounded to two decimals. Answers must have Option loaded.
// Nil means no option-backed answer exists.
func ScoreOf(answers []Answer) *float64 {
	total := 0
	correct := 0
	for _, answer := range answers {
		if answer.OptionID == nil || answer.Option == nil {
			continue
		}
		total++
		if answer.Option.IsCorrect {
			correct++
		}
	}
	if total == 0 {
		return nil
	}

	score := Round2(float64(correct) / float64(total) * 100)
	return &score
}

// Round2 rounds half away from zero to two decimals.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
