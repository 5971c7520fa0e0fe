package dto

import "time"

// DashboardOverview holds the headline counters.
type DashboardOverview struct {
	TotalUsers          int64     `json:"total_users"`
	PendingSurveys      int64     `json:"pending_surveys"`
	OngoingSurveys      int64     `json:"ongoing_surveys"`
	OngoingCompetitions int64     `json:"ongoing_competitions"`
	GeneratedAt         time.Time `json:"generated_at"`
	CacheHit            bool      `json:"-"`
}

// RecentActivity is one entry of the merged activity feed.
type RecentActivity struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserName    string    `json:"user_name,omitempty"`
	RecordID    uint      `json:"record_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	TimeAgo     string    `json:"time_ago"`
}

// UserStatisticsBlock counts users for the statistics view.
type UserStatisticsBlock struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Pending  int64 `json:"pending"`
	NewUsers int64 `json:"new_users"`
}

// SurveyStatisticsBlock counts surveys and responses.
type SurveyStatisticsBlock struct {
	Total           int64 `json:"total"`
	Active          int64 `json:"active"`
	Completed       int64 `json:"completed"`
	TotalResponses  int64 `json:"total_responses"`
	PeriodResponses int64 `json:"period_responses"`
}

// CompetitionStatisticsBlock counts competitions by state.
type CompetitionStatisticsBlock struct {
	Total     int64 `json:"total"`
	Ongoing   int64 `json:"ongoing"`
	Completed int64 `json:"completed"`
}

// ParticipationStatisticsBlock counts participation records.
type ParticipationStatisticsBlock struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}

// DashboardStatistics is the period statistics view.
type DashboardStatistics struct {
	Users          UserStatisticsBlock          `json:"users"`
	Surveys        SurveyStatisticsBlock        `json:"surveys"`
	Competitions   CompetitionStatisticsBlock   `json:"competitions"`
	Participations ParticipationStatisticsBlock `json:"participations"`
	PeriodStart    time.Time                    `json:"period_start"`
	PeriodEnd      time.Time                    `json:"period_end"`
}

// DailyCount is one day of a growth or trend series.
type DailyCount struct {
	Date      time.Time `json:"date"`
	Count     int64     `json:"count"`
	DateLabel string    `json:"date_label"`
}

// TopSurvey ranks a survey by response count.
type TopSurvey struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	ResponseCount  int64     `json:"response_count"`
	TargetAudience string    `json:"target_audience"`
	IsActive       bool      `json:"is_active"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// RoleDistribution counts approved users for one role.
type RoleDistribution struct {
	Role      string `json:"role"`
	Count     int64  `json:"count"`
	RoleLabel string `json:"role_label"`
}

// PendingApprovals counts items awaiting review.
type PendingApprovals struct {
	PendingUsers          int64 `json:"pending_users"`
	PendingParticipations int64 `json:"pending_participations"`
	TotalPending          int64 `json:"total_pending"`
}

// SystemHealth summarises activity rates and audit volume.
type SystemHealth struct {
	UserActivityRate    float64   `json:"user_activity_rate"`
	SurveyActivityRate  float64   `json:"survey_activity_rate"`
	ResponsesLast24h    int64     `json:"responses_last_24h"`
	ResponsesLast7d     int64     `json:"responses_last_7d"`
	TotalAuditLogs      int64     `json:"total_audit_logs"`
	RecentActivityCount int64     `json:"recent_activity_count"`
	Status              string    `json:"status"`
	LastUpdated         time.Time `json:"last_updated"`
}
