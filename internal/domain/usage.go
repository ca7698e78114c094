package domain

import "time"

// SessionUsage consumes exactly one unit of supply of its kind. A canceled
// usage no longer counts against the balance; rows are never deleted so the
// audit history stays intact.
type SessionUsage struct {
	ID           uint        `json:"id"`
	MemberID     uint        `json:"member_id"`
	Kind         SessionKind `json:"sale_type"`
	SaleID       *uint       `json:"sale_id,omitempty"`
	EnrollmentID *uint       `json:"enrollment_id,omitempty"`
	UsedAt       time.Time   `json:"used_at"`
	IsCanceled   bool        `json:"is_canceled"`
}
