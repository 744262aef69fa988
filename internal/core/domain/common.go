package domain

import "time"

// AuditFields holds standard audit information for persisted rate rows.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
