package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

const (
	defaultAuditPageSize  = 50
	defaultAuditRetention = 90
)

// AuditLogService exposes the audit trail to administrators.
type AuditLogService interface {
	List(ctx context.Context, caller Principal, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error)
	Get(ctx context.Context, caller Principal, id uint) (dto.AuditLogResponse, error)
	Tables(ctx context.Context, caller Principal) ([]string, error)
	Actions(ctx context.Context, caller Principal) ([]string, error)
	Statistics(ctx context.Context, caller Principal, from, to *time.Time) (dto.AuditStatisticsResponse, error)
	Cleanup(ctx context.Context, caller Principal, daysToKeep int) (dto.AuditCleanupResponse, error)
}

type auditLogService struct {
	repo   repository.AuditLogRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewAuditLogService constructs the audit log service.
func NewAuditLogService(repo repository.AuditLogRepository, logger zerolog.Logger) AuditLogService {
	return &auditLogService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_log_service").Logger(),
		now:    time.Now,
	}
}

func (s *auditLogService) List(ctx context.Context, caller Principal, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	if !caller.IsAdmin() {
		return dto.AuditLogListResponse{}, ErrAccessDenied
	}

	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize, defaultAuditPageSize)
	items, total, err := s.repo.List(ctx, repository.AuditLogFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    req.UserID,
		Action:    strings.TrimSpace(req.Action),
		TableName: strings.TrimSpace(req.TableName),
		RecordID:  req.RecordID,
		From:      req.From,
		To:        req.To,
	})
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}
	return dto.AuditLogListResponse{
		Items:      dto.NewAuditLogResponseSlice(items),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *auditLogService) Get(ctx context.Context, caller Principal, id uint) (dto.AuditLogResponse, error) {
	if !caller.IsAdmin() {
		return dto.AuditLogResponse{}, ErrAccessDenied
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.AuditLogResponse{}, translate(err, ErrAuditLogNotFound)
	}
	return dto.NewAuditLogResponse(*entry), nil
}

func (s *auditLogService) Tables(ctx context.Context, caller Principal) ([]string, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}
	tables, err := s.repo.Tables(ctx)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

func (s *auditLogService) Actions(ctx context.Context, caller Principal) ([]string, error) {
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}
	actions, err := s.repo.Actions(ctx)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []string{}
	}
	return actions, nil
}

// Statistics covers the last month when no bounds are given.
func (s *auditLogService) Statistics(ctx context.Context, caller Principal, from, to *time.Time) (dto.AuditStatisticsResponse, error) {
	if !caller.IsAdmin() {
		return dto.AuditStatisticsResponse{}, ErrAccessDenied
	}

	end := s.now().UTC()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, -1, 0)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		return dto.AuditStatisticsResponse{}, ErrInvalidDateRange
	}

	stats, err := s.repo.Statistics(ctx, start, end)
	if err != nil {
		return dto.AuditStatisticsResponse{}, err
	}
	return dto.AuditStatisticsResponse{
		TotalLogs:    stats.Total,
		UniqueUsers:  stats.UniqueUsers,
		ActionCounts: stats.ActionCounts,
		TableCounts:  stats.TableCounts,
		PeriodStart:  &start,
		PeriodEnd:    &end,
	}, nil
}

// Cleanup removes rows older than daysToKeep days, 90 by default.
func (s *auditLogService) Cleanup(ctx context.Context, caller Principal, daysToKeep int) (dto.AuditCleanupResponse, error) {
	if !caller.IsAdmin() {
		return dto.AuditCleanupResponse{}, ErrAccessDenied
	}
	if daysToKeep <= 0 {
		daysToKeep = defaultAuditRetention
	}

	cutoff := s.now().UTC().AddDate(0, 0, -daysToKeep)
	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return dto.AuditCleanupResponse{}, err
	}

	s.logger.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Uint("admin_id", caller.UserID).
		Msg("audit logs cleaned up")
	return dto.AuditCleanupResponse{DeletedCount: deleted, Cutoff: cutoff}, nil
}
