package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/observability"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

const (
	defaultActivityLimit   = 10
	defaultTrendDays       = 30
	maxTrendDays           = 365
	defaultTopSurveysLimit = 5
)

// DashboardService aggregates administrator dashboard views.
type DashboardService interface {
	Overview(ctx context.Context, caller Principal) (dto.DashboardOverview, error)
	RecentActivities(ctx context.Context, caller Principal, limit int) ([]dto.RecentActivity, error)
	Statistics(ctx context.Context, caller Principal, from, to *time.Time) (dto.DashboardStatistics, error)
	UserGrowth(ctx context.Context, caller Principal, days int) ([]dto.DailyCount, error)
	ResponsesTrend(ctx context.Context, caller Principal, days int) ([]dto.DailyCount, error)
	TopSurveys(ctx context.Context, caller Principal, limit int) ([]dto.TopSurvey, error)
	UserDistribution(ctx context.Context, caller Principal) ([]dto.RoleDistribution, error)
	PendingApprovals(ctx context.Context, caller Principal) (dto.PendingApprovals, error)
	SystemHealth(ctx context.Context, caller Principal) (dto.SystemHealth, error)
}

type dashboardService struct {
	repo     repository.DashboardRepository
	audit    repository.AuditLogRepository
	cache    *redis.Client
	cacheTTL time.Duration
	tracer   trace.Tracer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. A nil cache client
// disables overview caching.
func NewDashboardService(repo repository.DashboardRepository, auditLogs repository.AuditLogRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &dashboardService{
		repo:     repo,
		audit:    auditLogs,
		cache:    cache,
		cacheTTL: ttl,
		tracer:   otel.Tracer("github.com/noah-isme/survey-go-api/internal/service/dashboard"),
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) Overview(ctx context.Context, caller Principal) (dto.DashboardOverview, error) {
	if !caller.IsAdmin() {
		return dto.DashboardOverview{}, ErrAccessDenied
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.overview", trace.WithAttributes(
		attribute.String("dashboard.cache_key", dashboardOverviewKey),
	))
	defer span.End()

	if cached, ok := s.cachedOverview(ctx, span); ok {
		return cached, nil
	}

	now := s.now().UTC()
	var overview dto.DashboardOverview
	var err error
	if overview.TotalUsers, err = s.repo.CountUsers(ctx, repository.Condition("registration_status = ?", models.RegistrationApproved)); err != nil {
		return s.failOverview(span, "count_users_failed", err)
	}
	if overview.PendingSurveys, err = s.repo.CountSurveys(ctx, repository.Condition("is_active = ? AND end_date >= ?", true, now)); err != nil {
		return s.failOverview(span, "count_pending_surveys_failed", err)
	}
	if overview.OngoingSurveys, err = s.repo.CountSurveys(ctx, repository.Condition("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now)); err != nil {
		return s.failOverview(span, "count_ongoing_surveys_failed", err)
	}
	if overview.OngoingCompetitions, err = s.repo.CountCompetitions(ctx, repository.Condition("status = ?", models.CompetitionOngoing)); err != nil {
		return s.failOverview(span, "count_competitions_failed", err)
	}
	overview.GeneratedAt = now

	if s.cache != nil {
		if payload, err := json.Marshal(overview); err == nil {
			if err := s.cache.Set(ctx, dashboardOverviewKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}
	return overview, nil
}

func (s *dashboardService) cachedOverview(ctx context.Context, span trace.Span) (dto.DashboardOverview, bool) {
	if s.cache == nil {
		return dto.DashboardOverview{}, false
	}
	cached, err := s.cache.Get(ctx, dashboardOverviewKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
		observability.CacheRequests().WithLabelValues("dashboard", "miss").Inc()
		return dto.DashboardOverview{}, false
	}
	var overview dto.DashboardOverview
	if err := json.Unmarshal([]byte(cached), &overview); err != nil {
		observability.CacheRequests().WithLabelValues("dashboard", "miss").Inc()
		return dto.DashboardOverview{}, false
	}
	observability.CacheRequests().WithLabelValues("dashboard", "hit").Inc()
	span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
	overview.CacheHit = true
	return overview, true
}

func (s *dashboardService) failOverview(span trace.Span, status string, err error) (dto.DashboardOverview, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return dto.DashboardOverview{}, err
}

// RecentActivities merges registrations, new surveys, competition updates and
// user approvals into one feed, newest first.
func (s *dashboardService) RecentActivities(ctx context.Context, caller Principal, limit int) ([]dto.RecentActivity, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	limit = clampPageSize(limit, defaultActivityLimit)

	ctx, span := s.tracer.Start(ctx, "dashboard.recent_activities", trace.WithAttributes(attribute.Int("dashboard.limit", limit)))
	defer span.End()

	activities := make([]dto.RecentActivity, 0, limit*4)

	pending, err := s.repo.RecentPendingUsers(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, user := range pending {
		activities = append(activities, dto.RecentActivity{
			Type:        "user_registration",
			Title:       "New user registration",
			Description: user.FullName,
			UserName:    user.FullName,
			RecordID:    user.ID,
			Timestamp:   user.CreatedAt,
		})
	}

	surveys, err := s.repo.RecentSurveys(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, survey := range surveys {
		creator := "Unknown"
		if survey.Creator != nil {
			creator = survey.Creator.FullName
		}
		activities = append(activities, dto.RecentActivity{
			Type:        "survey_created",
			Title:       "Survey created",
			Description: survey.Title,
			UserName:    creator,
			RecordID:    survey.ID,
			Timestamp:   survey.CreatedAt,
		})
	}

	competitions, err := s.repo.RecentlyUpdatedCompetitions(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, competition := range competitions {
		activities = append(activities, dto.RecentActivity{
			Type:        "competition_updated",
			Title:       "Competition updated",
			Description: competition.Title,
			RecordID:    competition.ID,
			Timestamp:   competition.UpdatedAt,
		})
	}

	approvals, err := s.approvalActivities(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	activities = append(activities, approvals...)

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}

	now := s.now()
	for i := range activities {
		activities[i].TimeAgo = timeAgo(now, activities[i].Timestamp)
	}
	return activities, nil
}

type registrationSnapshot struct {
	RegistrationStatus string `json:"registration_status"`
}

// approvalActivities keeps only audit rows where registration_status moved to approved.
func (s *dashboardService) approvalActivities(ctx context.Context, limit int) ([]dto.RecentActivity, error) {
	entries, err := s.repo.RecentUserApprovals(ctx, limit)
	if err != nil {
		return nil, err
	}

	approved := make([]models.AuditLog, 0, len(entries))
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		if entry.RecordID == nil || !approvalTransition(entry) {
			continue
		}
		approved = append(approved, entry)
		ids = append(ids, *entry.RecordID)
	}
	if len(approved) == 0 {
		return nil, nil
	}

	users, err := s.repo.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	activities := make([]dto.RecentActivity, 0, len(approved))
	for _, entry := range approved {
		user, ok := byID[*entry.RecordID]
		if !ok {
			continue
		}
		activities = append(activities, dto.RecentActivity{
			Type:        "user_approved",
			Title:       "Approved users",
			Description: user.FullName,
			UserName:    user.FullName,
			RecordID:    user.ID,
			Timestamp:   entry.CreatedAt,
		})
	}
	return activities, nil
}

func approvalTransition(entry models.AuditLog) bool {
	var next registrationSnapshot
	if err := json.Unmarshal(entry.NewValue, &next); err != nil || next.RegistrationStatus != models.RegistrationApproved {
		return false
	}
	var previous registrationSnapshot
	if len(entry.OldValue) > 0 {
		if err := json.Unmarshal(entry.OldValue, &previous); err == nil && previous.RegistrationStatus == models.RegistrationApproved {
			return false
		}
	}
	return true
}

func timeAgo(now, at time.Time) string {
	span := now.Sub(at)
	switch {
	case span < time.Minute:
		return "Just now"
	case span < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(span.Minutes()))
	case span < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(span.Hours()))
	}
	days := int(span.Hours() / 24)
	switch {
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return fmt.Sprintf("%d months ago", days/30)
	}
}

// Statistics covers the last month when no bounds are given.
func (s *dashboardService) Statistics(ctx context.Context, caller Principal, from, to *time.Time) (dto.DashboardStatistics, error) {
	if !caller.IsAdmin() {
		return dto.DashboardStatistics{}, ErrAccessDenied
	}

	now := s.now().UTC()
	end := now
	if to != nil {
		end = *to
	}
	start := now.AddDate(0, -1, 0)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		return dto.DashboardStatistics{}, ErrInvalidDateRange
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.statistics")
	defer span.End()

	type counter struct {
		target *int64
		count  func(context.Context, ...func(*gorm.DB) *gorm.DB) (int64, error)
		scopes []func(*gorm.DB) *gorm.DB
	}
	stats := dto.DashboardStatistics{PeriodStart: start, PeriodEnd: end}
	counters := []counter{
		{&stats.Users.Total, s.repo.CountUsers, nil},
		{&stats.Users.Active, s.repo.CountUsers, scopes("is_active = ?", true)},
		{&stats.Users.Pending, s.repo.CountUsers, scopes("registration_status = ?", models.RegistrationPending)},
		{&stats.Users.NewUsers, s.repo.CountUsers, scopes("created_at >= ? AND created_at <= ?", start, end)},
		{&stats.Surveys.Total, s.repo.CountSurveys, nil},
		{&stats.Surveys.Active, s.repo.CountSurveys, scopes("is_active = ? AND end_date >= ?", true, now)},
		{&stats.Surveys.Completed, s.repo.CountSurveys, scopes("end_date < ?", now)},
		{&stats.Surveys.TotalResponses, s.repo.CountResponses, nil},
		{&stats.Surveys.PeriodResponses, s.repo.CountResponses, scopes("submitted_at >= ? AND submitted_at <= ?", start, end)},
		{&stats.Competitions.Total, s.repo.CountCompetitions, nil},
		{&stats.Competitions.Ongoing, s.repo.CountCompetitions, scopes("status = ?", models.CompetitionOngoing)},
		{&stats.Competitions.Completed, s.repo.CountCompetitions, scopes("status = ?", models.CompetitionCompleted)},
		{&stats.Participations.Total, s.repo.CountParticipations, nil},
		{&stats.Participations.Pending, s.repo.CountParticipations, scopes("approval_status = ?", models.ApprovalPending)},
		{&stats.Participations.Approved, s.repo.CountParticipations, scopes("approval_status = ?", models.ApprovalApproved)},
	}
	for _, c := range counters {
		value, err := c.count(ctx, c.scopes...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "count_failed")
			return dto.DashboardStatistics{}, err
		}
		*c.target = value
	}
	return stats, nil
}

func scopes(condition string, args ...interface{}) []func(*gorm.DB) *gorm.DB {
	return []func(*gorm.DB) *gorm.DB{repository.Condition(condition, args...)}
}

func (s *dashboardService) UserGrowth(ctx context.Context, caller Principal, days int) ([]dto.DailyCount, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}
	days = trendDays(days)
	start := startOfDay(s.now().UTC()).AddDate(0, 0, -days)
	times, err := s.repo.UserCreationTimes(ctx, start)
	if err != nil {
		return nil, err
	}
	return bucketByDay(start, days, times), nil
}

func (s *dashboardService) ResponsesTrend(ctx context.Context, caller Principal, days int) ([]dto.DailyCount, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}
	days = trendDays(days)
	start := startOfDay(s.now().UTC()).AddDate(0, 0, -days)
	times, err := s.repo.ResponseSubmissionTimes(ctx, start)
	if err != nil {
		return nil, err
	}
	return bucketByDay(start, days, times), nil
}

func trendDays(days int) int {
	if days <= 0 {
		return defaultTrendDays
	}
	if days > maxTrendDays {
		return maxTrendDays
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// bucketByDay returns days+1 consecutive daily counts starting at start.
func bucketByDay(start time.Time, days int, times []time.Time) []dto.DailyCount {
	series := make([]dto.DailyCount, days+1)
	for i := range series {
		date := start.AddDate(0, 0, i)
		series[i] = dto.DailyCount{Date: date, DateLabel: date.Format("02/01")}
	}
	for _, at := range times {
		index := int(startOfDay(at.UTC()).Sub(start).Hours() / 24)
		if index < 0 || index >= len(series) {
			continue
		}
		series[index].Count++
	}
	return series
}

func (s *dashboardService) TopSurveys(ctx context.Context, caller Principal, limit int) ([]dto.TopSurvey, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}
	if limit <= 0 {
		limit = defaultTopSurveysLimit
	}
	limit = clampPageSize(limit, defaultTopSurveysLimit)

	rows, err := s.repo.TopSurveys(ctx, limit)
	if err != nil {
		return nil, err
	}
	result := make([]dto.TopSurvey, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.TopSurvey{
			ID:             row.Survey.ID,
			Title:          row.Survey.Title,
			ResponseCount:  row.ResponseCount,
			TargetAudience: row.Survey.TargetAudience,
			IsActive:       row.Survey.IsActive,
			StartDate:      row.Survey.StartDate,
			EndDate:        row.Survey.EndDate,
		})
	}
	return result, nil
}

var roleLabels = map[string]string{
	models.RoleAdmin:   "Admin",
	models.RoleFaculty: "Faculty",
	models.RoleStaff:   "Staff",
	models.RoleStudent: "Student",
}

func (s *dashboardService) UserDistribution(ctx context.Context, caller Principal) ([]dto.RoleDistribution, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}
	rows, err := s.repo.ApprovedUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.RoleDistribution, 0, len(rows))
	for _, row := range rows {
		label, ok := roleLabels[row.Role]
		if !ok {
			label = row.Role
		}
		result = append(result, dto.RoleDistribution{Role: row.Role, Count: row.Count, RoleLabel: label})
	}
	return result, nil
}

func (s *dashboardService) PendingApprovals(ctx context.Context, caller Principal) (dto.PendingApprovals, error) {
	if !caller.IsAdmin() {
		return dto.PendingApprovals{}, ErrAccessDenied
	}
	users, err := s.repo.CountUsers(ctx, repository.Condition("registration_status = ?", models.RegistrationPending))
	if err != nil {
		return dto.PendingApprovals{}, err
	}
	participations, err := s.repo.CountParticipations(ctx, repository.Condition("approval_status = ?", models.ApprovalPending))
	if err != nil {
		return dto.PendingApprovals{}, err
	}
	return dto.PendingApprovals{
		PendingUsers:          users,
		PendingParticipations: participations,
		TotalPending:          users + participations,
	}, nil
}

func (s *dashboardService) SystemHealth(ctx context.Context, caller Principal) (dto.SystemHealth, error) {
	if !caller.IsAdmin() {
		return dto.SystemHealth{}, ErrAccessDenied
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.system_health")
	defer span.End()

	now := s.now().UTC()
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)

	health := dto.SystemHealth{Status: "healthy", LastUpdated: now}
	fail := func(err error) (dto.SystemHealth, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "system_health_failed")
		return dto.SystemHealth{}, err
	}

	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return fail(err)
	}
	activeUsers, err := s.repo.CountUsers(ctx, repository.Condition("is_active = ?", true))
	if err != nil {
		return fail(err)
	}
	totalSurveys, err := s.repo.CountSurveys(ctx)
	if err != nil {
		return fail(err)
	}
	activeSurveys, err := s.repo.CountSurveys(ctx, repository.Condition("is_active = ?", true))
	if err != nil {
		return fail(err)
	}
	if health.ResponsesLast24h, err = s.repo.CountResponses(ctx, repository.Condition("submitted_at >= ?", dayAgo)); err != nil {
		return fail(err)
	}
	if health.ResponsesLast7d, err = s.repo.CountResponses(ctx, repository.Condition("submitted_at >= ?", weekAgo)); err != nil {
		return fail(err)
	}
	if health.TotalAuditLogs, err = s.audit.Count(ctx, nil); err != nil {
		return fail(err)
	}
	if health.RecentActivityCount, err = s.audit.Count(ctx, &dayAgo); err != nil {
		return fail(err)
	}

	health.UserActivityRate = rate(activeUsers, totalUsers)
	health.SurveyActivityRate = rate(activeSurveys, totalSurveys)
	return health, nil
}

func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return models.Round2(float64(part) / float64(total) * 100)
}
