// Package audit records entity mutations as audit_logs rows inside the
// transaction that performs them.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/observability"
)

const auditTable = "audit_logs"

var tracer = otel.Tracer("github.com/noah-isme/survey-go-api/internal/audit")

// Actor identifies who performed a mutation and from where. Both fields are optional.
type Actor struct {
	UserID *uint
	IP     string
}

// System is the actor used for writes without an authenticated caller.
var System = Actor{}

// ActorFromRequest resolves the actor from request metadata. The first
// X-Forwarded-For entry wins over the peer address.
func ActorFromRequest(userID uint, forwardedFor, remoteAddr string) Actor {
	actor := Actor{}
	if userID > 0 {
		id := userID
		actor.UserID = &id
	}

	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			actor.IP = truncateIP(first)
			return actor
		}
	}

	remote := strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	actor.IP = truncateIP(remote)
	return actor
}

func truncateIP(ip string) string {
	if len(ip) > 45 {
		return ip[:45]
	}
	return ip
}

// Snapshot is implemented by audited entities. AuditFields must list only
// scalar columns; relations and collections never belong in it.
type Snapshot interface {
	AuditTable() string
	AuditKey() uint
	AuditFields() map[string]interface{}
}

type change struct {
	action string
	table  string
	key    uint
	before map[string]interface{}
	after  Snapshot
}

// Recorder collects the changes made inside one Save call.
type Recorder struct {
	changes []change
}

// Inserted records a new entity. Its after-image is read at flush so
// generated keys are included.
func (r *Recorder) Inserted(entity Snapshot) {
	r.changes = append(r.changes, change{
		action: models.AuditInsert,
		table:  entity.AuditTable(),
		after:  entity,
	})
}

// Updated records a modification. before is frozen immediately.
func (r *Recorder) Updated(before, after Snapshot) {
	r.changes = append(r.changes, change{
		action: models.AuditUpdate,
		table:  after.AuditTable(),
		key:    before.AuditKey(),
		before: copyFields(before.AuditFields()),
		after:  after,
	})
}

// Deleted records a removed entity.
func (r *Recorder) Deleted(entity Snapshot) {
	r.changes = append(r.changes, change{
		action: models.AuditDelete,
		table:  entity.AuditTable(),
		key:    entity.AuditKey(),
		before: copyFields(entity.AuditFields()),
	})
}

// Len reports the number of recorded changes.
func (r *Recorder) Len() int {
	return len(r.changes)
}

// Save runs fn in a transaction and appends one audit row per recorded change
// before commit. Data rows and audit rows succeed or fail together.
func Save(ctx context.Context, db *gorm.DB, actor Actor, fn func(tx *gorm.DB, rec *Recorder) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []attribute.KeyValue{attribute.String("audit.ip", actor.IP)}
	if actor.UserID != nil {
		attrs = append(attrs, attribute.Int64("audit.user_id", int64(*actor.UserID)))
	}
	spanCtx, span := tracer.Start(ctx, "audit.save", trace.WithAttributes(attrs...))
	defer span.End()

	err := db.WithContext(spanCtx).Transaction(func(tx *gorm.DB) error {
		rec := &Recorder{}
		if err := fn(tx, rec); err != nil {
			return err
		}

		entries, err := rec.entries(actor)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("write audit rows: %w", err)
		}

		observability.AuditRowsWritten().Add(float64(len(entries)))
		span.SetAttributes(attribute.Int("audit.rows", len(entries)))
		return nil
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *Recorder) entries(actor Actor) ([]models.AuditLog, error) {
	entries := make([]models.AuditLog, 0, len(r.changes))
	for _, c := range r.changes {
		if c.table == auditTable {
			continue
		}

		entry := models.AuditLog{
			UserID: actor.UserID,
			Action: c.action,
			Table:  c.table,
		}
		if actor.IP != "" {
			ip := actor.IP
			entry.IPAddress = &ip
		}

		key := c.key
		if c.after != nil && key == 0 {
			key = c.after.AuditKey()
		}
		if key > 0 {
			recordID := key
			entry.RecordID = &recordID
		}

		if c.before != nil {
			encoded, err := encode(c.before)
			if err != nil {
				return nil, err
			}
			entry.OldValue = encoded
		}
		if c.after != nil {
			encoded, err := encode(c.after.AuditFields())
			if err != nil {
				return nil, err
			}
			entry.NewValue = encoded
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if scalar, ok := dereference(value); ok {
			copied[key] = scalar
		}
	}
	return copied
}

func encode(fields map[string]interface{}) (datatypes.JSON, error) {
	payload := copyFields(fields)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode audit snapshot: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// dereference unwraps the pointer kinds entities use for nullable columns.
// The boolean is false for nil values, which are omitted from snapshots.
func dereference(value interface{}) (interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *string:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *uint:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *int:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *float64:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *bool:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *time.Time:
		if v == nil {
			return nil, false
		}
		return *v, true
	default:
		return value, true
	}
}
