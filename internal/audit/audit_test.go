package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestSaveWritesOneRowPerChange(t *testing.T) {
	db := setupTestDB(t)
	actor := audit.ActorFromRequest(7, "10.0.0.1, 172.16.0.2", "127.0.0.1:5000")

	survey := models.Survey{
		Title:          "Campus life",
		TargetAudience: models.AudienceAll,
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(time.Hour),
		IsActive:       true,
		CreatedBy:      7,
	}
	question := models.Question{QuestionText: "Favourite spot?", QuestionType: models.QuestionTypeText, OrderNumber: 1}

	err := audit.Save(context.Background(), db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := tx.Create(&survey).Error; err != nil {
			return err
		}
		rec.Inserted(&survey)

		question.SurveyID = survey.ID
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		rec.Inserted(&question)
		return nil
	})
	require.NoError(t, err)

	err = audit.Save(context.Background(), db, actor, func(tx *gorm.DB, rec *audit.Recorder) error {
		var current models.Survey
		if err := tx.First(&current, survey.ID).Error; err != nil {
			return err
		}
		updated := current
		updated.Title = "Campus life 2"
		rec.Updated(&current, &updated)
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}

		if err := tx.Delete(&question).Error; err != nil {
			return err
		}
		rec.Deleted(&question)
		return nil
	})
	require.NoError(t, err)

	var rows []models.AuditLog
	require.NoError(t, db.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 4)

	require.Equal(t, models.AuditInsert, rows[0].Action)
	require.Equal(t, "surveys", rows[0].Table)
	require.NotNil(t, rows[0].RecordID)
	require.Equal(t, survey.ID, *rows[0].RecordID)
	require.True(t, emptySnapshot(rows[0].OldValue))
	require.NotNil(t, rows[0].UserID)
	require.Equal(t, uint(7), *rows[0].UserID)
	require.NotNil(t, rows[0].IPAddress)
	require.Equal(t, "10.0.0.1", *rows[0].IPAddress)

	require.Equal(t, models.AuditInsert, rows[1].Action)
	require.Equal(t, "questions", rows[1].Table)

	require.Equal(t, models.AuditUpdate, rows[2].Action)
	oldValue := decodeSnapshot(t, rows[2].OldValue)
	newValue := decodeSnapshot(t, rows[2].NewValue)
	require.Equal(t, "Campus life", oldValue["title"])
	require.Equal(t, "Campus life 2", newValue["title"])

	require.Equal(t, models.AuditDelete, rows[3].Action)
	require.Equal(t, "questions", rows[3].Table)
	require.True(t, emptySnapshot(rows[3].NewValue))
	require.Equal(t, "Favourite spot?", decodeSnapshot(t, rows[3].OldValue)["question_text"])
}

func TestSaveRollsBackDataAndAuditTogether(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("boom")

	err := audit.Save(context.Background(), db, audit.System, func(tx *gorm.DB, rec *audit.Recorder) error {
		faq := models.Faq{Question: "Q", Answer: "A", OrderNumber: 1, IsActive: true, CreatedBy: 1}
		if err := tx.Create(&faq).Error; err != nil {
			return err
		}
		rec.Inserted(&faq)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var faqs, logs int64
	require.NoError(t, db.Model(&models.Faq{}).Count(&faqs).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&logs).Error)
	require.Zero(t, faqs)
	require.Zero(t, logs)
}

func TestSnapshotsOmitNullsAndSecrets(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{
		Username:           "alice",
		Email:              "alice@example.com",
		PasswordHash:       "secret-hash",
		FullName:           "Alice",
		Role:               models.RoleStudent,
		RegistrationStatus: models.RegistrationPending,
		IsActive:           true,
	}
	err := audit.Save(context.Background(), db, audit.System, func(tx *gorm.DB, rec *audit.Recorder) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		rec.Inserted(&user)
		return nil
	})
	require.NoError(t, err)

	var row models.AuditLog
	require.NoError(t, db.First(&row).Error)
	require.Nil(t, row.UserID)
	require.Nil(t, row.IPAddress)

	snapshot := decodeSnapshot(t, row.NewValue)
	require.Equal(t, "alice", snapshot["username"])
	require.NotContains(t, snapshot, "roll_number")
	require.NotContains(t, snapshot, "password_hash")
	require.NotContains(t, snapshot, "PasswordHash")
}

type auditRowStub struct{}

func (auditRowStub) AuditTable() string                  { return "audit_logs" }
func (auditRowStub) AuditKey() uint                      { return 1 }
func (auditRowStub) AuditFields() map[string]interface{} { return map[string]interface{}{"id": 1} }

func TestSaveSkipsAuditTable(t *testing.T) {
	db := setupTestDB(t)

	err := audit.Save(context.Background(), db, audit.System, func(_ *gorm.DB, rec *audit.Recorder) error {
		rec.Inserted(auditRowStub{})
		require.Equal(t, 1, rec.Len())
		return nil
	})
	require.NoError(t, err)

	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&logs).Error)
	require.Zero(t, logs)
}

func TestActorFromRequest(t *testing.T) {
	actor := audit.ActorFromRequest(0, "", "192.168.1.4:8080")
	require.Nil(t, actor.UserID)
	require.Equal(t, "192.168.1.4", actor.IP)

	actor = audit.ActorFromRequest(3, " 203.0.113.9 ,10.0.0.1", "192.168.1.4:8080")
	require.NotNil(t, actor.UserID)
	require.Equal(t, uint(3), *actor.UserID)
	require.Equal(t, "203.0.113.9", actor.IP)

	actor = audit.ActorFromRequest(0, "", "")
	require.Empty(t, actor.IP)
}

func decodeSnapshot(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, raw)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload
}

func emptySnapshot(raw []byte) bool {
	return len(raw) == 0 || string(raw) == "null"
}
