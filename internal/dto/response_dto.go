package dto

import (
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// AnswerSubmission is one answer inside a survey submission.
type AnswerSubmission struct {
	QuestionID uint    `json:"question_id" validate:"required"`
	OptionID   *uint   `json:"option_id"`
	TextAnswer *string `json:"text_answer" validate:"omitempty,max=5000"`
}

// SubmitResponseRequest submits a complete set of answers to a survey.
type SubmitResponseRequest struct {
	SurveyID uint               `json:"survey_id" validate:"required"`
	Answers  []AnswerSubmission `json:"answers" validate:"required,min=1,dive"`
}

// AnswerCreateRequest adds an answer to an existing response.
type AnswerCreateRequest struct {
	ResponseID uint    `json:"response_id" validate:"required"`
	QuestionID uint    `json:"question_id" validate:"required"`
	OptionID   *uint   `json:"option_id"`
	TextAnswer *string `json:"text_answer" validate:"omitempty,max=5000"`
}

// AnswerUpdateRequest replaces the selection or text of an answer.
type AnswerUpdateRequest struct {
	OptionID   *uint   `json:"option_id"`
	TextAnswer *string `json:"text_answer" validate:"omitempty,max=5000"`
}

// AnswerResponse projects a stored answer.
type AnswerResponse struct {
	ID           uint      `json:"id"`
	ResponseID   uint      `json:"response_id"`
	QuestionID   uint      `json:"question_id"`
	QuestionText string    `json:"question_text,omitempty"`
	QuestionType string    `json:"question_type,omitempty"`
	OptionID     *uint     `json:"option_id,omitempty"`
	OptionText   *string   `json:"option_text,omitempty"`
	IsCorrect    *bool     `json:"is_correct,omitempty"`
	TextAnswer   *string   `json:"text_answer,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAnswerResponse maps an answer and its loaded question and option.
func NewAnswerResponse(answer models.Answer) AnswerResponse {
	response := AnswerResponse{
		ID:         answer.ID,
		ResponseID: answer.ResponseID,
		QuestionID: answer.QuestionID,
		OptionID:   answer.OptionID,
		TextAnswer: answer.TextAnswer,
		CreatedAt:  answer.CreatedAt,
	}
	if answer.Question != nil {
		response.QuestionText = answer.Question.QuestionText
		response.QuestionType = answer.Question.QuestionType
	}
	if answer.Option != nil {
		text := answer.Option.OptionText
		correct := answer.Option.IsCorrect
		response.OptionText = &text
		response.IsCorrect = &correct
	}
	return response
}

// NewAnswerResponseSlice maps a slice of answers.
func NewAnswerResponseSlice(answers []models.Answer) []AnswerResponse {
	responses := make([]AnswerResponse, 0, len(answers))
	for _, answer := range answers {
		responses = append(responses, NewAnswerResponse(answer))
	}
	return responses
}

// SurveyResponseSummary projects a response without its answers.
type SurveyResponseSummary struct {
	ID          uint      `json:"id"`
	SurveyID    uint      `json:"survey_id"`
	SurveyTitle string    `json:"survey_title,omitempty"`
	UserID      uint      `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Score       *float64  `json:"score"`
}

// SurveyResponseDetail adds the answers of a response.
type SurveyResponseDetail struct {
	SurveyResponseSummary
	Answers []AnswerResponse `json:"answers"`
}

// NewSurveyResponseSummary maps a response model.
func NewSurveyResponseSummary(response models.SurveyResponse) SurveyResponseSummary {
	summary := SurveyResponseSummary{
		ID:          response.ID,
		SurveyID:    response.SurveyID,
		UserID:      response.UserID,
		SubmittedAt: response.SubmittedAt,
		Score:       response.Score,
	}
	if response.Survey != nil {
		summary.SurveyTitle = response.Survey.Title
	}
	if response.User != nil {
		summary.UserName = response.User.FullName
	}
	return summary
}

// NewSurveyResponseSummarySlice maps a slice of responses.
func NewSurveyResponseSummarySlice(responses []models.SurveyResponse) []SurveyResponseSummary {
	items := make([]SurveyResponseSummary, 0, len(responses))
	for _, response := range responses {
		items = append(items, NewSurveyResponseSummary(response))
	}
	return items
}

// NewSurveyResponseDetail maps a response with its loaded answers.
func NewSurveyResponseDetail(response models.SurveyResponse) SurveyResponseDetail {
	return SurveyResponseDetail{
		SurveyResponseSummary: NewSurveyResponseSummary(response),
		Answers:               NewAnswerResponseSlice(response.Answers),
	}
}

// OptionCount is the number of answers that selected an option.
type OptionCount struct {
	OptionID   uint    `json:"option_id"`
	OptionText string  `json:"option_text"`
	IsCorrect  bool    `json:"is_correct"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AnswerStatisticsResponse aggregates the answers given to one question.
type AnswerStatisticsResponse struct {
	QuestionID   uint          `json:"question_id"`
	QuestionText string        `json:"question_text"`
	QuestionType string        `json:"question_type"`
	TotalAnswers int           `json:"total_answers"`
	Options      []OptionCount `json:"options,omitempty"`
	TextAnswers  []string      `json:"text_answers,omitempty"`
}

// QuestionSummary counts correct and incorrect answers for a question.
type QuestionSummary struct {
	QuestionID        uint    `json:"question_id"`
	QuestionText      string  `json:"question_text"`
	QuestionType      string  `json:"question_type"`
	TotalAnswers      int     `json:"total_answers"`
	CorrectAnswers    int     `json:"correct_answers"`
	IncorrectAnswers  int     `json:"incorrect_answers"`
	CorrectPercentage float64 `json:"correct_percentage"`
}

// SurveyAnswerSummaryResponse summarises correctness per question.
type SurveyAnswerSummaryResponse struct {
	SurveyID  uint              `json:"survey_id"`
	Title     string            `json:"title"`
	Questions []QuestionSummary `json:"questions"`
}
