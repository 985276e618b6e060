package models

import "time"

// AuditRecord is an append-only row recording an admin action (PostgreSQL).
// Written best-effort alongside the workflow's primary write; a failed audit
// insert never fails the workflow.
type AuditRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AdminID    string    `json:"admin_id" gorm:"size:24;index"` // ObjectID hex
	Action     string    `json:"action" gorm:"size:40;index"`   // e.g. campaign_approved, report_resolved
	TargetType string    `json:"target_type" gorm:"size:20"`
	TargetID   string    `json:"target_id" gorm:"size:24"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
