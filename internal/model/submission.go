package model

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus enum constants
const (
	SubmissionStatusAccepted = "ACCEPTED"
	SubmissionStatusRejected = "REJECTED"
	SubmissionStatusFailed   = "FAILED" // no response received
)

// Submission is one entry of the append-only submission history. Resubmissions add rows; nothing is overwritten.
type Submission struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(64);not null;index:idx_sub_key" json:"user_id"`
	BusinessID    string    `gorm:"type:varchar(64);not null;index:idx_sub_key" json:"business_id"`
	BusinessType  string    `gorm:"type:varchar(30);not null" json:"business_type"`
	TaxYear       string    `gorm:"type:varchar(7);not null;index:idx_sub_key" json:"tax_year"`
	PeriodKey     string    `gorm:"type:varchar(21);not null;index:idx_sub_key" json:"period_key"`
	Strategy      string    `gorm:"type:varchar(20);not null" json:"strategy"` // cumulative or discrete
	Method        string    `gorm:"type:varchar(10);not null" json:"method"`
	APIVersion    string    `gorm:"type:varchar(10);not null" json:"api_version"`
	PeriodID      string    `gorm:"type:varchar(64)" json:"period_id,omitempty"` // authority id of a discrete period summary
	Reference     string    `gorm:"type:varchar(128)" json:"reference,omitempty"`
	Status        string    `gorm:"type:varchar(20);not null;index" json:"status"`
	ErrorCode     string    `gorm:"type:varchar(100)" json:"error_code,omitempty"`
	CorrelationID string    `gorm:"type:varchar(64)" json:"correlation_id,omitempty"`
	RequestBody   string    `gorm:"type:jsonb" json:"request_body"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}
