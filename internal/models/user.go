package models

import "time"

// Roles recognised by the API.
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

// Registration states for user accounts.
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// User is an account able to author or answer surveys.
type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Username           string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash       string     `gorm:"size:255;not null" json:"-"`
	Email              string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FullName           string     `gorm:"size:100;not null" json:"full_name"`
	Role               string     `gorm:"size:20;not null;index" json:"role"`
	RollNumber         *string    `gorm:"size:50" json:"roll_number,omitempty"`
	EmployeeNumber     *string    `gorm:"size:50" json:"employee_number,omitempty"`
	Class              *string    `gorm:"size:50" json:"class,omitempty"`
	Specification      *string    `gorm:"size:100" json:"specification,omitempty"`
	Section            *string    `gorm:"size:10" json:"section,omitempty"`
	AdmissionDate      *time.Time `json:"admission_date,omitempty"`
	JoiningDate        *time.Time `json:"joining_date,omitempty"`
	RegistrationStatus string     `gorm:"size:20;not null;default:pending;index" json:"registration_status"`
	IsActive           bool       `gorm:"not null" json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName pins the users table name.
func (User) TableName() string { return "users" }

// IsApproved reports whether the account may log in.
func (u User) IsApproved() bool {
	return u.IsActive && u.RegistrationStatus == RegistrationApproved
}

func (u *User) AuditTable() string { return u.TableName() }

func (u *User) AuditKey() uint { return u.ID }

// AuditFields excludes the password hash.
func (u *User) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":                  u.ID,
		"username":            u.Username,
		"email":               u.Email,
		"full_name":           u.FullName,
		"role":                u.Role,
		"roll_number":         u.RollNumber,
		"employee_number":     u.EmployeeNumber,
		"class":               u.Class,
		"specification":       u.Specification,
		"section":             u.Section,
		"admission_date":      u.AdmissionDate,
		"joining_date":        u.JoiningDate,
		"registration_status": u.RegistrationStatus,
		"is_active":           u.IsActive,
		"created_at":          u.CreatedAt,
		"updated_at":          u.UpdatedAt,
	}
}
