package dto

import (
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// ParticipationResponse projects an effective participation record.
type ParticipationResponse struct {
	ID                   uint      `json:"id"`
	UserID               uint      `json:"user_id"`
	UserName             string    `json:"user_name,omitempty"`
	SeminarTitle         string    `json:"seminar_title"`
	Location             string    `json:"location"`
	DateConducted        time.Time `json:"date_conducted"`
	NumberOfParticipants *int      `json:"number_of_participants,omitempty"`
	Description          *string   `json:"description,omitempty"`
	ApprovalStatus       string    `json:"approval_status"`
	ApprovedBy           *uint     `json:"approved_by,omitempty"`
	ApproverName         string    `json:"approver_name,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewParticipationResponse maps a participation model.
func NewParticipationResponse(item models.EffectiveParticipation) ParticipationResponse {
	response := ParticipationResponse{
		ID:                   item.ID,
		UserID:               item.UserID,
		SeminarTitle:         item.SeminarTitle,
		Location:             item.Location,
		DateConducted:        item.DateConducted,
		NumberOfParticipants: item.NumberOfParticipants,
		Description:          item.Description,
		ApprovalStatus:       item.ApprovalStatus,
		ApprovedBy:           item.ApprovedBy,
		CreatedAt:            item.CreatedAt,
	}
	if item.User != nil {
		response.UserName = item.User.FullName
	}
	if item.Approver != nil {
		response.ApproverName = item.Approver.FullName
	}
	return response
}

// NewParticipationResponseSlice maps a slice of participation records.
func NewParticipationResponseSlice(items []models.EffectiveParticipation) []ParticipationResponse {
	responses := make([]ParticipationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewParticipationResponse(item))
	}
	return responses
}

// ParticipationCreateRequest records a seminar conducted by the caller.
type ParticipationCreateRequest struct {
	SeminarTitle         string    `json:"seminar_title" validate:"required,min=1,max=200"`
	Location             string    `json:"location" validate:"required,min=1,max=200"`
	DateConducted        time.Time `json:"date_conducted" validate:"required"`
	NumberOfParticipants *int      `json:"number_of_participants" validate:"omitempty,gte=0"`
	Description          *string   `json:"description" validate:"omitempty,max=5000"`
}

// ParticipationUpdateRequest is a partial participation update.
type ParticipationUpdateRequest struct {
	SeminarTitle         *string    `json:"seminar_title" validate:"omitempty,min=1,max=200"`
	Location             *string    `json:"location" validate:"omitempty,min=1,max=200"`
	DateConducted        *time.Time `json:"date_conducted"`
	NumberOfParticipants *int       `json:"number_of_participants" validate:"omitempty,gte=0"`
	Description          *string    `json:"description" validate:"omitempty,max=5000"`
}
