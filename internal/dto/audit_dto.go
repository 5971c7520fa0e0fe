package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// AuditLogListRequest filters the audit trail.
type AuditLogListRequest struct {
	Page      int
	PageSize  int
	UserID    *uint
	Action    string
	TableName string
	RecordID  *uint
	From      *time.Time
	To        *time.Time
}

// AuditLogResponse is one audit row with the acting user's name.
type AuditLogResponse struct {
	ID        uint            `json:"id"`
	UserID    *uint           `json:"user_id,omitempty"`
	UserName  string          `json:"user_name,omitempty"`
	Action    string          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  *uint           `json:"record_id,omitempty"`
	OldValue  json.RawMessage `json:"old_value,omitempty"`
	NewValue  json.RawMessage `json:"new_value,omitempty"`
	IPAddress *string         `json:"ip_address,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditLogListResponse wraps a page of audit rows.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewAuditLogResponse converts an audit row.
func NewAuditLogResponse(model models.AuditLog) AuditLogResponse {
	response := AuditLogResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Action:    model.Action,
		TableName: model.Table,
		RecordID:  model.RecordID,
		OldValue:  rawSnapshot(model.OldValue),
		NewValue:  rawSnapshot(model.NewValue),
		IPAddress: model.IPAddress,
		CreatedAt: model.CreatedAt,
	}
	if model.User != nil {
		response.UserName = model.User.FullName
	}
	return response
}

// NewAuditLogResponseSlice converts audit rows.
func NewAuditLogResponseSlice(items []models.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewAuditLogResponse(item))
	}
	return out
}

func rawSnapshot(value []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.RawMessage(trimmed)
}

// AuditStatisticsResponse aggregates the audit trail over a period.
type AuditStatisticsResponse struct {
	TotalLogs    int64            `json:"total_logs"`
	UniqueUsers  int64            `json:"unique_users"`
	ActionCounts map[string]int64 `json:"action_counts"`
	TableCounts  map[string]int64 `json:"table_counts"`
	PeriodStart  *time.Time       `json:"period_start,omitempty"`
	PeriodEnd    *time.Time       `json:"period_end,omitempty"`
}

// AuditCleanupResponse reports how many rows a cleanup removed.
type AuditCleanupResponse struct {
	DeletedCount int64     `json:"deleted_count"`
	Cutoff       time.Time `json:"cutoff"`
}
