package dto

import (
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// OptionResponse is a selectable option of a question.
type OptionResponse struct {
	ID          uint   `json:"id"`
	QuestionID  uint   `json:"question_id"`
	OptionText  string `json:"option_text"`
	OrderNumber int    `json:"order_number"`
	IsCorrect   bool   `json:"is_correct"`
}

// QuestionResponse projects a question with its options.
type QuestionResponse struct {
	ID           uint             `json:"id"`
	SurveyID     uint             `json:"survey_id"`
	QuestionText string           `json:"question_text"`
	QuestionType string           `json:"question_type"`
	IsRequired   bool             `json:"is_required"`
	OrderNumber  int              `json:"order_number"`
	Options      []OptionResponse `json:"options"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewOptionResponse maps a question option.
func NewOptionResponse(option models.QuestionOption) OptionResponse {
	return OptionResponse{
		ID:          option.ID,
		QuestionID:  option.QuestionID,
		OptionText:  option.OptionText,
		OrderNumber: option.OrderNumber,
		IsCorrect:   option.IsCorrect,
	}
}

// NewQuestionResponse maps a question and its loaded options.
func NewQuestionResponse(question models.Question) QuestionResponse {
	options := make([]OptionResponse, 0, len(question.Options))
	for _, option := range question.Options {
		options = append(options, NewOptionResponse(option))
	}
	return QuestionResponse{
		ID:           question.ID,
		SurveyID:     question.SurveyID,
		QuestionText: question.QuestionText,
		QuestionType: question.QuestionType,
		IsRequired:   question.IsRequired,
		OrderNumber:  question.OrderNumber,
		Options:      options,
		CreatedAt:    question.CreatedAt,
	}
}

// NewQuestionResponseSlice maps a slice of questions.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}
	return responses
}

// OptionRequest describes an option to create.
type OptionRequest struct {
	OptionText  string `json:"option_text" validate:"required,min=1,max=500"`
	OrderNumber int    `json:"order_number" validate:"gte=0"`
	IsCorrect   bool   `json:"is_correct"`
}

// QuestionCreateRequest creates a question with optional inline options.
type QuestionCreateRequest struct {
	SurveyID     uint            `json:"survey_id" validate:"required"`
	QuestionText string          `json:"question_text" validate:"required,min=1,max=2000"`
	QuestionType string          `json:"question_type" validate:"required,oneof=text textarea multiple_choice checkbox"`
	IsRequired   bool            `json:"is_required"`
	OrderNumber  int             `json:"order_number" validate:"gte=0"`
	Options      []OptionRequest `json:"options" validate:"omitempty,dive"`
}

// QuestionUpdateRequest is a partial question update.
type QuestionUpdateRequest struct {
	QuestionText *string `json:"question_text" validate:"omitempty,min=1,max=2000"`
	QuestionType *string `json:"question_type" validate:"omitempty,oneof=text textarea multiple_choice checkbox"`
	IsRequired   *bool   `json:"is_required"`
	OrderNumber  *int    `json:"order_number" validate:"omitempty,gte=0"`
}
