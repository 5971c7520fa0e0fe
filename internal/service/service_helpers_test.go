package service

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{
		Username:           username,
		PasswordHash:       "hash",
		Email:              username + "@example.com",
		FullName:           strings.ToUpper(username[:1]) + username[1:],
		Role:               role,
		RegistrationStatus: models.RegistrationApproved,
		IsActive:           true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func principalOf(user models.User) Principal {
	id := user.ID
	return Principal{UserID: user.ID, Role: user.Role, Actor: audit.Actor{UserID: &id, IP: "127.0.0.1"}}
}

// seedQuiz creates an open survey with one scored choice question and one text question.
func seedQuiz(t *testing.T, db *gorm.DB, owner models.User) (models.Survey, models.Question, models.Question) {
	t.Helper()
	now := time.Now().UTC()
	survey := models.Survey{
		Title:          "Recycling habits",
		TargetAudience: models.AudienceAll,
		StartDate:      now.Add(-time.Hour),
		EndDate:        now.Add(24 * time.Hour),
		IsActive:       true,
		CreatedBy:      owner.ID,
	}
	require.NoError(t, db.Create(&survey).Error)

	choice := models.Question{
		SurveyID:     survey.ID,
		QuestionText: "Which bin takes glass?",
		QuestionType: models.QuestionTypeMultipleChoice,
		OrderNumber:  1,
		Options: []models.QuestionOption{
			{OptionText: "Green", OrderNumber: 1, IsCorrect: true},
			{OptionText: "Black", OrderNumber: 2},
		},
	}
	require.NoError(t, db.Create(&choice).Error)

	text := models.Question{
		SurveyID:     survey.ID,
		QuestionText: "Any ideas?",
		QuestionType: models.QuestionTypeText,
		OrderNumber:  2,
	}
	require.NoError(t, db.Create(&text).Error)
	return survey, choice, text
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
