package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionSubmitPeriod      = "SUBMIT_PERIOD"
	ActionSubmitRejected    = "SUBMIT_REJECTED"
	ActionCreateAdjustment  = "CREATE_ADJUSTMENT"
	ActionRegisterDevice    = "REGISTER_DEVICE"
	ActionFraudHeadersBlock = "FRAUD_HEADERS_BLOCKED"
)

// AuditLog tracks Who, What, and When for filing activity
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(64);index" json:"user_id"` // Empty for automated jobs
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(64);index" json:"entity_id"`        // Reference string (uuid/business id)
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
