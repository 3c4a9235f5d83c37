package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/darisadam/cardbrand/internal/domain/audit"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
	"github.com/google/uuid"
)

type AuditRepository interface {
	Create(ctx context.Context, log *audit.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]*audit.AuditLog, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, log *audit.AuditLog) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert", "audit_logs", time.Since(start).Seconds())
	}()

	if log.EventID == uuid.Nil {
		log.EventID = uuid.New()
	}
	metadataJSON, err := json.Marshal(log.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_logs (event_id, client_id, merchant, action, resource, ip_address,
		                       user_agent, status, status_code, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, timestamp
	`

	err = r.db.QueryRowContext(ctx, query,
		log.EventID,
		log.ClientID,
		log.Merchant,
		log.Action,
		log.Resource,
		log.IPAddress,
		log.UserAgent,
		log.Status,
		log.StatusCode,
		string(metadataJSON),
	).Scan(&log.ID, &log.Timestamp)

	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// List returns the newest entries first.
func (r *auditRepository) List(ctx context.Context, limit, offset int) ([]*audit.AuditLog, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", "audit_logs", time.Since(start).Seconds())
	}()

	query := `
		SELECT id, event_id, timestamp, client_id, merchant, action, resource,
		       ip_address, user_agent, status, status_code, metadata
		FROM audit_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []*audit.AuditLog{}
	for rows.Next() {
		var (
			log      audit.AuditLog
			clientID uuid.NullUUID
			metadata []byte
		)
		if err := rows.Scan(
			&log.ID,
			&log.EventID,
			&log.Timestamp,
			&clientID,
			&log.Merchant,
			&log.Action,
			&log.Resource,
			&log.IPAddress,
			&log.UserAgent,
			&log.Status,
			&log.StatusCode,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		if clientID.Valid {
			id := clientID.UUID
			log.ClientID = &id
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &log.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, nil
}
