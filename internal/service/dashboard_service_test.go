package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

func TestDashboardServiceOverviewCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	seedQuiz(t, db, admin)
	svc := NewDashboardService(repository.NewDashboardRepository(db), repository.NewAuditLogRepository(db), client, time.Minute, testLogger())
	ctx := context.Background()

	first, err := svc.Overview(ctx, principalOf(admin))
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, int64(1), first.TotalUsers)
	require.Equal(t, int64(1), first.PendingSurveys)
	require.Equal(t, int64(1), first.OngoingSurveys)
	require.Zero(t, first.OngoingCompetitions)

	// Rows written outside the services are only picked up once the TTL lapses.
	seedAccount(t, db, "late", models.RoleStudent)

	second, err := svc.Overview(ctx, principalOf(admin))
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, int64(1), second.TotalUsers)

	server.FastForward(2 * time.Minute)

	third, err := svc.Overview(ctx, principalOf(admin))
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, int64(2), third.TotalUsers)
}

func TestDashboardOverviewInvalidatedByWrites(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	pending := seedAccount(t, db, "pending", models.RoleStudent)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", pending.ID).Update("registration_status", models.RegistrationPending).Error)

	views := NewCacheInvalidator(client, testLogger())
	users := NewUserService(repository.NewUserRepository(db), NewTokenIssuer(TokenConfig{Secret: testSecret}), views, testValidator(), testLogger())
	surveys := NewSurveyService(repository.NewSurveyRepository(db), views, testValidator(), testLogger())
	competitions := NewCompetitionService(repository.NewCompetitionRepository(db), repository.NewSurveyRepository(db), views, testValidator(), testLogger())
	svc := NewDashboardService(repository.NewDashboardRepository(db), repository.NewAuditLogRepository(db), client, time.Hour, testLogger())
	ctx := context.Background()
	caller := principalOf(admin)

	overview := func() dto.DashboardOverview {
		t.Helper()
		result, err := svc.Overview(ctx, caller)
		require.NoError(t, err)
		return result
	}

	require.Equal(t, int64(1), overview().TotalUsers)
	require.True(t, overview().CacheHit)

	_, err = users.SetRegistrationStatus(ctx, caller, pending.ID, models.RegistrationApproved)
	require.NoError(t, err)
	require.False(t, server.Exists(dashboardOverviewKey))
	approved := overview()
	require.False(t, approved.CacheHit)
	require.Equal(t, int64(2), approved.TotalUsers)

	now := time.Now().UTC()
	created, err := surveys.Create(ctx, caller, dto.SurveyCreateRequest{
		Title:          "Canteen feedback",
		TargetAudience: models.AudienceAll,
		StartDate:      now.Add(-time.Hour),
		EndDate:        now.Add(time.Hour),
	})
	require.NoError(t, err)
	withSurvey := overview()
	require.False(t, withSurvey.CacheHit)
	require.Equal(t, int64(1), withSurvey.OngoingSurveys)

	_, err = competitions.Create(ctx, caller, dto.CompetitionCreateRequest{
		Title:     "Bike week",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})
	require.NoError(t, err)
	withCompetition := overview()
	require.False(t, withCompetition.CacheHit)
	require.Equal(t, int64(1), withCompetition.OngoingCompetitions)

	require.NoError(t, surveys.Delete(ctx, caller, created.ID))
	afterDelete := overview()
	require.False(t, afterDelete.CacheHit)
	require.Zero(t, afterDelete.OngoingSurveys)

	require.NoError(t, users.Delete(ctx, caller, pending.ID))
	require.Equal(t, int64(1), overview().TotalUsers)
}

func TestDashboardServiceForbidsNonAdmins(t *testing.T) {
	db := setupServiceDB(t)
	student := seedAccount(t, db, "student", models.RoleStudent)
	svc := NewDashboardService(repository.NewDashboardRepository(db), repository.NewAuditLogRepository(db), nil, 0, testLogger())
	ctx := context.Background()
	caller := principalOf(student)

	_, err := svc.Overview(ctx, caller)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.SystemHealth(ctx, caller)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.RecentActivities(ctx, caller, 5)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDashboardServiceRecentActivitiesIncludesApprovals(t *testing.T) {
	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	users := repository.NewUserRepository(db)
	userSvc := NewUserService(users, NewTokenIssuer(TokenConfig{Secret: testSecret}), nil, testValidator(), testLogger())
	userSvc.(*userService).cost = bcrypt.MinCost
	ctx := context.Background()

	registered, err := userSvc.Register(ctx, audit.System, aliceRegistration())
	require.NoError(t, err)
	pendingOnly, err := userSvc.Register(ctx, audit.System, dto.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "secret123", FullName: "Bob Builder", Role: models.RoleStaff,
	})
	require.NoError(t, err)
	_, err = userSvc.SetRegistrationStatus(ctx, principalOf(admin), registered.ID, models.RegistrationApproved)
	require.NoError(t, err)
	_, err = userSvc.Update(ctx, principalOf(admin), registered.ID, dto.UserUpdateRequest{FullName: strPtr("Alice L.")})
	require.NoError(t, err)

	svc := NewDashboardService(repository.NewDashboardRepository(db), repository.NewAuditLogRepository(db), nil, 0, testLogger())
	activities, err := svc.RecentActivities(ctx, principalOf(admin), 10)
	require.NoError(t, err)

	types := map[string]int{}
	for _, activity := range activities {
		types[activity.Type]++
		assert.Equal(t, "Just now", activity.TimeAgo)
	}
	require.Equal(t, 1, types["user_approved"])
	require.Equal(t, 1, types["user_registration"])

	for _, activity := range activities {
		if activity.Type == "user_registration" {
			require.Equal(t, pendingOnly.ID, activity.RecordID)
		}
	}
	for i := 1; i < len(activities); i++ {
		require.False(t, activities[i].Timestamp.After(activities[i-1].Timestamp))
	}
}

func TestDashboardServiceTrendsAndHealth(t *testing.T) {
	db := setupServiceDB(t)
	admin := seedAccount(t, db, "admin", models.RoleAdmin)
	student := seedAccount(t, db, "student", models.RoleStudent)
	survey, choice, _ := seedQuiz(t, db, admin)

	response := models.SurveyResponse{SurveyID: survey.ID, UserID: student.ID, SubmittedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&response).Error)
	require.NoError(t, db.Create(&models.Answer{ResponseID: response.ID, QuestionID: choice.ID, OptionID: &choice.Options[0].ID}).Error)

	svc := NewDashboardService(repository.NewDashboardRepository(db), repository.NewAuditLogRepository(db), nil, 0, testLogger())
	ctx := context.Background()
	caller := principalOf(admin)

	trend, err := svc.ResponsesTrend(ctx, caller, 7)
	require.NoError(t, err)
	require.Len(t, trend, 8)
	require.Equal(t, int64(1), trend[len(trend)-1].Count)
	require.Equal(t, time.Now().UTC().Format("02/01"), trend[len(trend)-1].DateLabel)

	growth, err := svc.UserGrowth(ctx, caller, 0)
	require.NoError(t, err)
	require.Len(t, growth, defaultTrendDays+1)
	require.Equal(t, int64(2), growth[len(growth)-1].Count)

	top, err := svc.TopSurveys(ctx, caller, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, survey.ID, top[0].ID)
	require.Equal(t, int64(1), top[0].ResponseCount)

	distribution, err := svc.UserDistribution(ctx, caller)
	require.NoError(t, err)
	require.Len(t, distribution, 2)
	require.Equal(t, "Admin", distribution[0].RoleLabel)
	require.Equal(t, "Student", distribution[1].RoleLabel)

	health, err := svc.SystemHealth(ctx, caller)
	require.NoError(t, err)
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, 100.0, health.UserActivityRate)
	require.Equal(t, int64(1), health.ResponsesLast24h)
	require.Equal(t, int64(1), health.ResponsesLast7d)

	stats, err := svc.Statistics(ctx, caller, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Users.Total)
	require.Equal(t, int64(1), stats.Surveys.Active)
	require.Equal(t, int64(1), stats.Surveys.PeriodResponses)
	require.WithinDuration(t, time.Now().UTC().AddDate(0, -1, 0), stats.PeriodStart, time.Minute)

	from := time.Now().UTC()
	to := from.Add(-time.Hour)
	_, err = svc.Statistics(ctx, caller, &from, &to)
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestTimeAgoLabels(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	cases := map[time.Duration]string{
		30 * time.Second:    "Just now",
		5 * time.Minute:     "5 minutes ago",
		3 * time.Hour:       "3 hours ago",
		2 * 24 * time.Hour:  "2 days ago",
		15 * 24 * time.Hour: "2 weeks ago",
		65 * 24 * time.Hour: "2 months ago",
	}
	for ago, expected := range cases {
		assert.Equal(t, expected, timeAgo(now, now.Add(-ago)), ago.String())
	}
}

func TestApprovalTransition(t *testing.T) {
	approved := models.AuditLog{
		OldValue: datatypes.JSON(`{"registration_status":"pending"}`),
		NewValue: datatypes.JSON(`{"registration_status":"approved"}`),
	}
	assert.True(t, approvalTransition(approved))

	unchanged := models.AuditLog{
		OldValue: datatypes.JSON(`{"registration_status":"approved","full_name":"A"}`),
		NewValue: datatypes.JSON(`{"registration_status":"approved","full_name":"B"}`),
	}
	assert.False(t, approvalTransition(unchanged))

	mentionOnly := models.AuditLog{NewValue: datatypes.JSON(`{"full_name":"approved"}`)}
	assert.False(t, approvalTransition(mentionOnly))
}
