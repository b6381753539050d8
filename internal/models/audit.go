package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin               = "LOGIN"
	AuditActionRegister            = "REGISTER"
	AuditActionFileUpload          = "FILE_UPLOAD"
	AuditActionFileApprove         = "FILE_APPROVE"
	AuditActionFileReject          = "FILE_REJECT"
	AuditActionAdminRequestApprove = "ADMIN_REQUEST_APPROVE"
	AuditActionAdminRequestDeny    = "ADMIN_REQUEST_DENY"
	AuditActionRoleChange          = "ROLE_CHANGE"
)

// AuditLog represents an audit trail record. Writes are best effort; a failed
// audit insert never fails the request that produced it.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
