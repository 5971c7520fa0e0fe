package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

func TestParticipationServiceReviewFlow(t *testing.T) {
	db := setupServiceDB(t)
	faculty := seedAccount(t, db, "faculty", models.RoleFaculty)
	student := seedAccount(t, db, "student", models.RoleStudent)
	peer := seedAccount(t, db, "peer", models.RoleStudent)
	svc := NewParticipationService(repository.NewParticipationRepository(db), testValidator(), testLogger())
	ctx := context.Background()

	attendees := 40
	created, err := svc.Create(ctx, principalOf(student), dto.ParticipationCreateRequest{
		SeminarTitle:         "  Zero waste week ",
		Location:             "Hall B",
		DateConducted:        time.Now().UTC().AddDate(0, 0, -3),
		NumberOfParticipants: &attendees,
		Description:          strPtr("<script>x()</script>Sorting workshop"),
	})
	require.NoError(t, err)
	require.Equal(t, "Zero waste week", created.SeminarTitle)
	require.Equal(t, models.ApprovalPending, created.ApprovalStatus)
	require.Equal(t, "Sorting workshop", *created.Description)

	_, err = svc.Get(ctx, principalOf(peer), created.ID)
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.List(ctx, principalOf(student), "")
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.Review(ctx, principalOf(student), created.ID, models.ApprovalApproved)
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.Review(ctx, principalOf(faculty), created.ID, models.ApprovalPending)
	require.ErrorIs(t, err, ErrInvalidReviewStatus)

	pending, err := svc.List(ctx, principalOf(faculty), models.ApprovalPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	reviewed, err := svc.Review(ctx, principalOf(faculty), created.ID, models.ApprovalApproved)
	require.NoError(t, err)
	require.Equal(t, models.ApprovalApproved, reviewed.ApprovalStatus)
	require.NotNil(t, reviewed.ApprovedBy)
	require.Equal(t, faculty.ID, *reviewed.ApprovedBy)

	pending, err = svc.List(ctx, principalOf(faculty), models.ApprovalPending)
	require.NoError(t, err)
	require.Empty(t, pending)

	_, err = svc.Update(ctx, principalOf(peer), created.ID, dto.ParticipationUpdateRequest{Location: strPtr("Elsewhere")})
	require.ErrorIs(t, err, ErrAccessDenied)

	mine, err := svc.ListMine(ctx, principalOf(student))
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.ErrorIs(t, svc.Delete(ctx, principalOf(peer), created.ID), ErrAccessDenied)
	require.NoError(t, svc.Delete(ctx, principalOf(student), created.ID))
	_, err = svc.Get(ctx, principalOf(student), created.ID)
	require.ErrorIs(t, err, ErrParticipationNotFound)
}

func TestFaqServiceSanitizesAndFilters(t *testing.T) {
	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	faculty := seedAccount(t, db, "faculty", models.RoleFaculty)
	svc := NewFaqService(repository.NewFaqRepository(db), testValidator(), testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, principalOf(faculty), dto.FaqCreateRequest{Question: "Q", Answer: "A"})
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Create(ctx, principalOf(admin), dto.FaqCreateRequest{Question: "<script>alert(1)</script>", Answer: "Answer"})
	require.ErrorIs(t, err, ErrEmptyAfterSanitize)

	first, err := svc.Create(ctx, principalOf(admin), dto.FaqCreateRequest{
		Question:    "How do I <b>register</b>?",
		Answer:      "<p>Use the <a href=\"/register\" onclick=\"x()\">form</a></p>",
		Category:    strPtr(" Accounts "),
		OrderNumber: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "How do I register?", first.Question)
	require.NotContains(t, first.Answer, "onclick")
	require.Contains(t, first.Answer, "<a href=\"/register\"")
	require.Equal(t, "Accounts", *first.Category)

	_, err = svc.Create(ctx, principalOf(admin), dto.FaqCreateRequest{
		Question:    "Who sees results?",
		Answer:      "Administrators",
		Category:    strPtr("Surveys"),
		OrderNumber: 1,
		IsActive:    boolPtr(false),
	})
	require.NoError(t, err)

	active, err := svc.List(ctx, "", boolPtr(true))
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := svc.List(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Who sees results?", all[0].Question)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Accounts"}, categories)

	_, err = svc.Update(ctx, principalOf(admin), first.ID, dto.FaqUpdateRequest{Answer: strPtr("<iframe></iframe>")})
	require.ErrorIs(t, err, ErrEmptyAfterSanitize)

	require.NoError(t, svc.Delete(ctx, principalOf(admin), first.ID))
	_, err = svc.Get(ctx, first.ID)
	require.ErrorIs(t, err, ErrFaqNotFound)
}

func TestAuditLogServiceCleanupHonoursRetention(t *testing.T) {
	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	faculty := seedAccount(t, db, "faculty", models.RoleFaculty)
	now := time.Now().UTC()

	rows := []models.AuditLog{
		{Action: models.AuditInsert, Table: "surveys", CreatedAt: now.AddDate(0, 0, -100)},
		{Action: models.AuditInsert, Table: "surveys", CreatedAt: now.AddDate(0, 0, -40)},
		{Action: models.AuditInsert, Table: "faqs", CreatedAt: now.AddDate(0, 0, -1)},
	}
	require.NoError(t, db.Create(&rows).Error)

	svc := NewAuditLogService(repository.NewAuditLogRepository(db), testLogger())
	ctx := context.Background()

	_, err := svc.Cleanup(ctx, principalOf(faculty), 30)
	require.ErrorIs(t, err, ErrAccessDenied)

	result, err := svc.Cleanup(ctx, principalOf(admin), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.DeletedCount)

	result, err = svc.Cleanup(ctx, principalOf(admin), 30)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.DeletedCount)
	require.WithinDuration(t, now.AddDate(0, 0, -30), result.Cutoff, time.Minute)

	var remaining int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&remaining).Error)
	require.Equal(t, int64(1), remaining)
}

func TestSupportInfoServiceChannels(t *testing.T) {
	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	student := seedAccount(t, db, "student", models.RoleStudent)
	svc := NewSupportInfoService(repository.NewSupportInfoRepository(db), testValidator(), testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, principalOf(student), dto.SupportInfoCreateRequest{ContactType: "email", ContactValue: "help@example.com"})
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Create(ctx, principalOf(admin), dto.SupportInfoCreateRequest{ContactType: "fax", ContactValue: "123"})
	var violations validator.ValidationErrors
	require.ErrorAs(t, err, &violations)

	_, err = svc.Create(ctx, principalOf(admin), dto.SupportInfoCreateRequest{ContactType: "email", ContactValue: "<b></b>"})
	require.ErrorIs(t, err, ErrEmptyAfterSanitize)

	email, err := svc.Create(ctx, principalOf(admin), dto.SupportInfoCreateRequest{
		ContactType:  "email",
		ContactValue: "<em>help@example.com</em>",
		Description:  strPtr("Office <script>x()</script>hours"),
	})
	require.NoError(t, err)
	require.Equal(t, "help@example.com", *email.ContactValue)
	require.Equal(t, "Office hours", *email.Description)

	phone, err := svc.Create(ctx, principalOf(admin), dto.SupportInfoCreateRequest{ContactType: "phone", ContactValue: "+1 555 0100"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, principalOf(admin), dto.SupportInfoCreateRequest{ContactType: "address", ContactValue: "Old campus", IsActive: boolPtr(false)})
	require.NoError(t, err)

	types, err := svc.Types(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"email", "phone"}, types)

	phones, err := svc.List(ctx, " PHONE ")
	require.NoError(t, err)
	require.Len(t, phones, 1)

	_, err = svc.Update(ctx, principalOf(admin), phone.ID, dto.SupportInfoUpdateRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	active, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, email.ID, active[0].ID)

	require.NoError(t, svc.Delete(ctx, principalOf(admin), email.ID))
	_, err = svc.Get(ctx, email.ID)
	require.ErrorIs(t, err, ErrSupportInfoNotFound)
}
