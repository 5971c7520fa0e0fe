package dto

import (
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// UserResponse is the public projection of a user account.
type UserResponse struct {
	ID                 uint       `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	Role               string     `json:"role"`
	RollNumber         *string    `json:"roll_number,omitempty"`
	EmployeeNumber     *string    `json:"employee_number,omitempty"`
	Class              *string    `json:"class,omitempty"`
	Specification      *string    `json:"specification,omitempty"`
	Section            *string    `json:"section,omitempty"`
	AdmissionDate      *time.Time `json:"admission_date,omitempty"`
	JoiningDate        *time.Time `json:"joining_date,omitempty"`
	RegistrationStatus string     `json:"registration_status"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewUserResponse maps a user model.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		FullName:           user.FullName,
		Role:               user.Role,
		RollNumber:         user.RollNumber,
		EmployeeNumber:     user.EmployeeNumber,
		Class:              user.Class,
		Specification:      user.Specification,
		Section:            user.Section,
		AdmissionDate:      user.AdmissionDate,
		JoiningDate:        user.JoiningDate,
		RegistrationStatus: user.RegistrationStatus,
		IsActive:           user.IsActive,
		CreatedAt:          user.CreatedAt,
	}
}

// NewUserResponseSlice maps a slice of users.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}

// UserListRequest filters the admin user listing.
type UserListRequest struct {
	Role               string
	RegistrationStatus string
	Page               int
	PageSize           int
}

// UserListResponse wraps a paginated user listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Username       string     `json:"username" validate:"required,min=3,max=50"`
	Email          string     `json:"email" validate:"required,email,max=100"`
	Password       string     `json:"password" validate:"required,min=6,max=100"`
	FullName       string     `json:"full_name" validate:"required,max=100"`
	Role           string     `json:"role" validate:"required,oneof=admin faculty staff student"`
	RollNumber     *string    `json:"roll_number" validate:"omitempty,max=50"`
	EmployeeNumber *string    `json:"employee_number" validate:"omitempty,max=50"`
	Class          *string    `json:"class" validate:"omitempty,max=50"`
	Specification  *string    `json:"specification" validate:"omitempty,max=100"`
	Section        *string    `json:"section" validate:"omitempty,max=10"`
	AdmissionDate  *time.Time `json:"admission_date"`
	JoiningDate    *time.Time `json:"joining_date"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued bearer token.
type LoginResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// UserUpdateRequest is a partial profile update.
type UserUpdateRequest struct {
	FullName       *string    `json:"full_name" validate:"omitempty,min=1,max=100"`
	Email          *string    `json:"email" validate:"omitempty,email,max=100"`
	RollNumber     *string    `json:"roll_number" validate:"omitempty,max=50"`
	EmployeeNumber *string    `json:"employee_number" validate:"omitempty,max=50"`
	Class          *string    `json:"class" validate:"omitempty,max=50"`
	Specification  *string    `json:"specification" validate:"omitempty,max=100"`
	Section        *string    `json:"section" validate:"omitempty,max=10"`
	AdmissionDate  *time.Time `json:"admission_date"`
	JoiningDate    *time.Time `json:"joining_date"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=100"`
}

// UserStatisticsResponse summarises a user's participation.
type UserStatisticsResponse struct {
	UserID                  uint       `json:"user_id"`
	FullName                string     `json:"full_name"`
	Role                    string     `json:"role"`
	SurveysParticipated     int64      `json:"surveys_participated"`
	AverageScore            *float64   `json:"average_score"`
	LastParticipation       *time.Time `json:"last_participation"`
	CompetitionsWon         int64      `json:"competitions_won"`
	ParticipationsSubmitted int64      `json:"participations_submitted"`
}
