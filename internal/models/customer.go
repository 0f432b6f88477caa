package models

import "time"

// Segment is the customer class a promotion can be restricted to.
type Segment string

const (
	SegmentRetail Segment = "RETAIL"
	SegmentBulk   Segment = "BULK"
)

func (s Segment) Valid() bool {
	return s == SegmentRetail || s == SegmentBulk
}

type Customer struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Segment   Segment   `json:"segment"`
	CreatedAt time.Time `json:"created_at"`
}
