package dto

import (
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// NotificationCreateRequest describes the payload to notify one user.
type NotificationCreateRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1,max=2000"`
	Type    string `json:"type" validate:"omitempty,oneof=info warning success error"`
}

// NotificationBroadcastRequest notifies every active, approved user,
// optionally restricted to a role.
type NotificationBroadcastRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Message    string `json:"message" validate:"required,min=1,max=2000"`
	Type       string `json:"type" validate:"omitempty,oneof=info warning success error"`
	TargetRole string `json:"target_role" validate:"omitempty,oneof=student faculty admin"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Title:     model.Title,
		Message:   model.Message,
		Type:      model.Type,
		IsRead:    model.IsRead,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// FaqResponse is the public projection of a FAQ entry.
type FaqResponse struct {
	ID          uint      `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Category    *string   `json:"category,omitempty"`
	OrderNumber int       `json:"order_number"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFaqResponse converts a FAQ model.
func NewFaqResponse(model models.Faq) FaqResponse {
	return FaqResponse{
		ID:          model.ID,
		Question:    model.Question,
		Answer:      model.Answer,
		Category:    model.Category,
		OrderNumber: model.OrderNumber,
		IsActive:    model.IsActive,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewFaqResponseSlice converts FAQ models.
func NewFaqResponseSlice(items []models.Faq) []FaqResponse {
	out := make([]FaqResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewFaqResponse(item))
	}
	return out
}

// FaqCreateRequest creates a FAQ entry.
type FaqCreateRequest struct {
	Question    string  `json:"question" validate:"required,min=1,max=500"`
	Answer      string  `json:"answer" validate:"required,min=1,max=10000"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	OrderNumber int     `json:"order_number" validate:"gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// FaqUpdateRequest is a partial FAQ update.
type FaqUpdateRequest struct {
	Question    *string `json:"question" validate:"omitempty,min=1,max=500"`
	Answer      *string `json:"answer" validate:"omitempty,min=1,max=10000"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	OrderNumber *int    `json:"order_number" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// SupportInfoResponse is the public projection of a support contact.
type SupportInfoResponse struct {
	ID           uint      `json:"id"`
	ContactType  *string   `json:"contact_type,omitempty"`
	ContactValue *string   `json:"contact_value,omitempty"`
	Description  *string   `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSupportInfoResponse converts a support info model.
func NewSupportInfoResponse(model models.SupportInfo) SupportInfoResponse {
	return SupportInfoResponse{
		ID:           model.ID,
		ContactType:  model.ContactType,
		ContactValue: model.ContactValue,
		Description:  model.Description,
		IsActive:     model.IsActive,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewSupportInfoResponseSlice converts support info models.
func NewSupportInfoResponseSlice(items []models.SupportInfo) []SupportInfoResponse {
	out := make([]SupportInfoResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewSupportInfoResponse(item))
	}
	return out
}

// SupportInfoCreateRequest creates a support contact.
type SupportInfoCreateRequest struct {
	ContactType  string  `json:"contact_type" validate:"required,oneof=phone email address other"`
	ContactValue string  `json:"contact_value" validate:"required,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	IsActive     *bool   `json:"is_active"`
}

// SupportInfoUpdateRequest is a partial support contact update.
type SupportInfoUpdateRequest struct {
	ContactType  *string `json:"contact_type" validate:"omitempty,oneof=phone email address other"`
	ContactValue *string `json:"contact_value" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	IsActive     *bool   `json:"is_active"`
}
