package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
)

type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string { return e.msg }

func (e *serviceError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &serviceError{kind: kind, msg: msg}
}

var (
	ErrUserNotFound          = newError(ErrNotFound, "user not found")
	ErrSurveyNotFound        = newError(ErrNotFound, "survey not found")
	ErrQuestionNotFound      = newError(ErrNotFound, "question not found")
	ErrOptionNotFound        = newError(ErrNotFound, "option not found")
	ErrResponseNotFound      = newError(ErrNotFound, "response not found")
	ErrAnswerNotFound        = newError(ErrNotFound, "answer not found")
	ErrCompetitionNotFound   = newError(ErrNotFound, "competition not found")
	ErrWinnerNotFound        = newError(ErrNotFound, "winner not found")
	ErrParticipationNotFound = newError(ErrNotFound, "participation not found")
	ErrNotificationNotFound  = newError(ErrNotFound, "notification not found")
	ErrFaqNotFound           = newError(ErrNotFound, "faq not found")
	ErrSupportInfoNotFound   = newError(ErrNotFound, "support info not found")
	ErrAuditLogNotFound      = newError(ErrNotFound, "audit log not found")

	ErrAccessDenied = newError(ErrForbidden, "you do not have access to this resource")

	ErrDuplicateUsername   = newError(ErrInvalid, "username already exists")
	ErrDuplicateEmail      = newError(ErrInvalid, "email already exists")
	ErrDuplicateResponse   = newError(ErrInvalid, "you have already responded to this survey")
	ErrDuplicateAnswer     = newError(ErrInvalid, "question already answered in this response")
	ErrRankTaken           = newError(ErrInvalid, "rank already assigned for this competition")
	ErrSurveyUnavailable   = newError(ErrInvalid, "survey is not available")
	ErrInvalidDateRange    = newError(ErrInvalid, "start date must be before end date")
	ErrWrongSurvey         = newError(ErrInvalid, "question does not belong to this survey")
	ErrTextAnswerRequired  = newError(ErrInvalid, "text answer is required for text questions")
	ErrOptionRequired      = newError(ErrInvalid, "a valid option of the question is required")
	ErrUserHasContent      = newError(ErrInvalid, "user has authored surveys or faqs")
	ErrWrongPassword       = newError(ErrInvalid, "current password is incorrect")
	ErrEmptyAfterSanitize  = newError(ErrInvalid, "content is empty after sanitization")
	ErrInvalidReviewStatus = newError(ErrInvalid, "review status must be approved or rejected")

	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid username or password")
	ErrAccountInactive    = newError(ErrUnauthorized, "account is deactivated")
	ErrAccountPending     = newError(ErrUnauthorized, "account is pending approval")
)

// translate maps a missing row onto the resource sentinel.
func translate(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID uint
	Role   string
	Actor  audit.Actor
}

// IsAdmin reports whether the caller is an administrator.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// HasRole reports whether the caller holds one of roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, role := range roles {
		if strings.EqualFold(p.Role, role) {
			return true
		}
	}
	return false
}

func (p Principal) isStaffReviewer() bool {
	return p.HasRole(models.RoleAdmin, models.RoleFaculty)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampPageSize(size, fallback int) int {
	if size <= 0 {
		return fallback
	}
	if size > 100 {
		return 100
	}
	return size
}
