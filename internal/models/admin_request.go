package models

import "time"

// AdminRequestStatus is the review state of a promotion request.
type AdminRequestStatus string

const (
	AdminRequestPending  AdminRequestStatus = "pending"
	AdminRequestApproved AdminRequestStatus = "approved"
	AdminRequestDenied   AdminRequestStatus = "denied"
)

// AdminRequest asks a superadmin to promote a regular user to admin.
// Approval promotes the requester as a side effect of the review.
type AdminRequest struct {
	ID          string             `db:"id" json:"id"`
	UserID      string             `db:"user_id" json:"userId"`
	Message     string             `db:"message" json:"message"`
	Status      AdminRequestStatus `db:"status" json:"status"`
	RequestedAt time.Time          `db:"requested_at" json:"requestedAt"`
	ReviewedBy  *string            `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time         `db:"reviewed_at" json:"reviewedAt,omitempty"`
}
