package dto

import (
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// SurveyListRequest filters survey listings.
type SurveyListRequest struct {
	TargetAudience string
	IsActive       *bool
	Page           int
	PageSize       int
}

// SurveyResponse is the summary projection of a survey.
type SurveyResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	TargetAudience string    `json:"target_audience"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      uint      `json:"created_by"`
	CreatorName    string    `json:"creator_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SurveyDetailResponse embeds the ordered questions of a survey.
type SurveyDetailResponse struct {
	SurveyResponse
	Questions []QuestionResponse `json:"questions"`
}

// SurveyListResponse wraps a paginated survey listing.
type SurveyListResponse struct {
	Items      []SurveyResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// NewSurveyResponse maps a survey model.
func NewSurveyResponse(survey models.Survey) SurveyResponse {
	response := SurveyResponse{
		ID:             survey.ID,
		Title:          survey.Title,
		Description:    survey.Description,
		TargetAudience: survey.TargetAudience,
		StartDate:      survey.StartDate,
		EndDate:        survey.EndDate,
		IsActive:       survey.IsActive,
		CreatedBy:      survey.CreatedBy,
		CreatedAt:      survey.CreatedAt,
		UpdatedAt:      survey.UpdatedAt,
	}
	if survey.Creator != nil {
		response.CreatorName = survey.Creator.FullName
	}
	return response
}

// NewSurveyResponseSlice maps a slice of surveys.
func NewSurveyResponseSlice(surveys []models.Survey) []SurveyResponse {
	responses := make([]SurveyResponse, 0, len(surveys))
	for _, survey := range surveys {
		responses = append(responses, NewSurveyResponse(survey))
	}
	return responses
}

// NewSurveyDetailResponse maps a survey with its loaded questions.
func NewSurveyDetailResponse(survey models.Survey) SurveyDetailResponse {
	return SurveyDetailResponse{
		SurveyResponse: NewSurveyResponse(survey),
		Questions:      NewQuestionResponseSlice(survey.Questions),
	}
}

// SurveyCreateRequest is the payload for creating a survey.
type SurveyCreateRequest struct {
	Title          string    `json:"title" validate:"required,min=1,max=200"`
	Description    *string   `json:"description" validate:"omitempty,max=5000"`
	TargetAudience string    `json:"target_audience" validate:"required,oneof=student faculty staff all"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	IsActive       *bool     `json:"is_active"`
}

// SurveyUpdateRequest is a partial survey update.
type SurveyUpdateRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=5000"`
	TargetAudience *string    `json:"target_audience" validate:"omitempty,oneof=student faculty staff all"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	IsActive       *bool      `json:"is_active"`
}

// SurveyStatisticsResponse summarises the responses a survey has collected.
type SurveyStatisticsResponse struct {
	SurveyID       uint     `json:"survey_id"`
	Title          string   `json:"title"`
	TotalResponses int64    `json:"total_responses"`
	TotalQuestions int64    `json:"total_questions"`
	AverageScore   *float64 `json:"average_score"`
	CompletionRate float64  `json:"completion_rate"`
}
