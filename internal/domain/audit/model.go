package audit

import (
	"time"

	"github.com/google/uuid"
)

// Admin actions recorded in the audit trail.
const (
	ActionBinRangeCreate = "BIN_RANGE_CREATE"
	ActionBinRangeDelete = "BIN_RANGE_DELETE"
	ActionMaintenanceSet = "MAINTENANCE_SET"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type AuditLog struct {
	ID         int64                  `json:"id"`
	EventID    uuid.UUID              `json:"event_id"`
	Timestamp  time.Time              `json:"timestamp"`
	ClientID   *uuid.UUID             `json:"client_id,omitempty"`
	Merchant   string                 `json:"merchant,omitempty"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Status     string                 `json:"status"`
	StatusCode int                    `json:"status_code"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type ListAuditLogsRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// StatusFor maps an HTTP status code to an audit status.
func StatusFor(code int) string {
	if code >= 200 && code < 300 {
		return StatusSuccess
	}
	return StatusFailure
}
