package dto

import (
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// WinnerResponse projects a competition winner.
type WinnerResponse struct {
	ID               uint      `json:"id"`
	CompetitionID    uint      `json:"competition_id"`
	CompetitionTitle string    `json:"competition_title,omitempty"`
	UserID           uint      `json:"user_id"`
	UserName         string    `json:"user_name,omitempty"`
	Rank             int       `json:"rank"`
	Score            float64   `json:"score"`
	PrizeDetails     *string   `json:"prize_details,omitempty"`
	AnnouncedAt      time.Time `json:"announced_at"`
}

// NewWinnerResponse maps a winner and its loaded relations.
func NewWinnerResponse(winner models.CompetitionWinner) WinnerResponse {
	response := WinnerResponse{
		ID:            winner.ID,
		CompetitionID: winner.CompetitionID,
		UserID:        winner.UserID,
		Rank:          winner.Rank,
		Score:         winner.Score,
		PrizeDetails:  winner.PrizeDetails,
		AnnouncedAt:   winner.AnnouncedAt,
	}
	if winner.Competition != nil {
		response.CompetitionTitle = winner.Competition.Title
	}
	if winner.User != nil {
		response.UserName = winner.User.FullName
	}
	return response
}

// NewWinnerResponseSlice maps a slice of winners.
func NewWinnerResponseSlice(winners []models.CompetitionWinner) []WinnerResponse {
	responses := make([]WinnerResponse, 0, len(winners))
	for _, winner := range winners {
		responses = append(responses, NewWinnerResponse(winner))
	}
	return responses
}

// CompetitionResponse projects a competition with its winners.
type CompetitionResponse struct {
	ID                 uint             `json:"id"`
	Title              string           `json:"title"`
	Description        *string          `json:"description,omitempty"`
	RelatedSurveyID    *uint            `json:"related_survey_id,omitempty"`
	RelatedSurveyTitle string           `json:"related_survey_title,omitempty"`
	StartDate          time.Time        `json:"start_date"`
	EndDate            time.Time        `json:"end_date"`
	PrizeDescription   *string          `json:"prize_description,omitempty"`
	Status             string           `json:"status"`
	Winners            []WinnerResponse `json:"winners"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NewCompetitionResponse maps a competition model.
func NewCompetitionResponse(competition models.Competition) CompetitionResponse {
	response := CompetitionResponse{
		ID:               competition.ID,
		Title:            competition.Title,
		Description:      competition.Description,
		RelatedSurveyID:  competition.RelatedSurveyID,
		StartDate:        competition.StartDate,
		EndDate:          competition.EndDate,
		PrizeDescription: competition.PrizeDescription,
		Status:           competition.Status,
		Winners:          NewWinnerResponseSlice(competition.Winners),
		CreatedAt:        competition.CreatedAt,
		UpdatedAt:        competition.UpdatedAt,
	}
	if competition.RelatedSurvey != nil {
		response.RelatedSurveyTitle = competition.RelatedSurvey.Title
	}
	return response
}

// NewCompetitionResponseSlice maps a slice of competitions.
func NewCompetitionResponseSlice(competitions []models.Competition) []CompetitionResponse {
	responses := make([]CompetitionResponse, 0, len(competitions))
	for _, competition := range competitions {
		responses = append(responses, NewCompetitionResponse(competition))
	}
	return responses
}

// CompetitionCreateRequest creates a competition.
type CompetitionCreateRequest struct {
	Title            string    `json:"title" validate:"required,min=1,max=200"`
	Description      *string   `json:"description" validate:"omitempty,max=5000"`
	RelatedSurveyID  *uint     `json:"related_survey_id"`
	StartDate        time.Time `json:"start_date" validate:"required"`
	EndDate          time.Time `json:"end_date" validate:"required"`
	PrizeDescription *string   `json:"prize_description" validate:"omitempty,max=5000"`
}

// CompetitionUpdateRequest is a partial competition update. An explicit
// status overrides the one derived from the dates.
type CompetitionUpdateRequest struct {
	Title            *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string    `json:"description" validate:"omitempty,max=5000"`
	RelatedSurveyID  *uint      `json:"related_survey_id"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	PrizeDescription *string    `json:"prize_description" validate:"omitempty,max=5000"`
	Status           *string    `json:"status" validate:"omitempty,oneof=upcoming ongoing completed"`
}

// WinnerCreateRequest announces a winner.
type WinnerCreateRequest struct {
	CompetitionID uint    `json:"competition_id" validate:"required"`
	UserID        uint    `json:"user_id" validate:"required"`
	Rank          int     `json:"rank" validate:"required,min=1,max=3"`
	Score         float64 `json:"score" validate:"gte=0,lte=100"`
	PrizeDetails  *string `json:"prize_details" validate:"omitempty,max=200"`
}

// LeaderboardResponse lists recently announced winners.
type LeaderboardResponse struct {
	Items       []WinnerResponse `json:"items"`
	GeneratedAt time.Time        `json:"generated_at"`
	CacheHit    bool             `json:"-"`
}
